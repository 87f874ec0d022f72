package characters_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/grimoire-rpg/encounter-api/internal/entities/dnd5e"
	"github.com/grimoire-rpg/encounter-api/internal/errors"
	"github.com/grimoire-rpg/encounter-api/internal/pkg/clock"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/characters"
	"github.com/grimoire-rpg/encounter-api/internal/testutils"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	repo    characters.Repository
	clock   *clock.Fixed
	cleanup func()
	ctx     context.Context
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.clock = clock.NewFixed(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))

	repo, err := characters.NewRedis(&characters.RedisConfig{
		Client: client,
		Clock:  s.clock,
	})
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisRepositoryTestSuite) newCharacter(id string) *dnd5e.Character {
	return &dnd5e.Character{
		ID:               id,
		CampaignID:       "CPN-1",
		Name:             "Mordenkainen",
		CreatedAt:        s.clock.Now(),
		ModifiedAt:       s.clock.Now(),
		Stats:            dnd5e.DefaultCharacterStats(),
		CurrentHitPoints: 10,
		MaximumHitPoints: 10,
	}
}

func (s *RedisRepositoryTestSuite) TestCreateAndGet() {
	character := s.newCharacter("CHR-1")

	_, err := s.repo.Create(s.ctx, characters.CreateInput{Character: character})
	s.Require().NoError(err)

	output, err := s.repo.Get(s.ctx, characters.GetInput{CampaignID: "CPN-1", CharacterID: "CHR-1"})
	s.Require().NoError(err)
	s.Equal("Mordenkainen", output.Character.Name)
	s.Equal(10, output.Character.CurrentHitPoints)
}

func (s *RedisRepositoryTestSuite) TestCreateDuplicateFails() {
	character := s.newCharacter("CHR-1")

	_, err := s.repo.Create(s.ctx, characters.CreateInput{Character: character})
	s.Require().NoError(err)

	_, err = s.repo.Create(s.ctx, characters.CreateInput{Character: character})
	s.True(errors.IsAlreadyExists(err))
}

func (s *RedisRepositoryTestSuite) TestGetScopedToCampaign() {
	character := s.newCharacter("CHR-1")

	_, err := s.repo.Create(s.ctx, characters.CreateInput{Character: character})
	s.Require().NoError(err)

	_, err = s.repo.Get(s.ctx, characters.GetInput{CampaignID: "CPN-other", CharacterID: "CHR-1"})
	s.True(errors.IsNotFound(err))
}

func (s *RedisRepositoryTestSuite) TestListByCampaign() {
	for _, id := range []string{"CHR-1", "CHR-2"} {
		_, err := s.repo.Create(s.ctx, characters.CreateInput{Character: s.newCharacter(id)})
		s.Require().NoError(err)
	}

	output, err := s.repo.ListByCampaign(s.ctx, characters.ListByCampaignInput{CampaignID: "CPN-1"})
	s.Require().NoError(err)
	s.Len(output.Characters, 2)
}

func (s *RedisRepositoryTestSuite) TestUpdatePosition() {
	character := s.newCharacter("CHR-1")
	_, err := s.repo.Create(s.ctx, characters.CreateInput{Character: character})
	s.Require().NoError(err)

	s.clock.Advance(time.Second)
	output, err := s.repo.UpdatePosition(s.ctx, characters.UpdatePositionInput{
		Character: character,
		Position:  dnd5e.Position{X: 5, Y: 0, Z: 0},
	})
	s.Require().NoError(err)
	s.Require().NotNil(output.Character.Position)
	s.Equal(5.0, output.Character.Position.X)
	s.True(output.Character.ModifiedAt.After(character.ModifiedAt))

	fetched, err := s.repo.Get(s.ctx, characters.GetInput{CampaignID: "CPN-1", CharacterID: "CHR-1"})
	s.Require().NoError(err)
	s.Require().NotNil(fetched.Character.Position)
	s.Equal(5.0, fetched.Character.Position.X)
}

func (s *RedisRepositoryTestSuite) TestUpdatePositionStaleTokenAborts() {
	character := s.newCharacter("CHR-1")
	_, err := s.repo.Create(s.ctx, characters.CreateInput{Character: character})
	s.Require().NoError(err)

	s.clock.Advance(time.Second)
	_, err = s.repo.UpdatePosition(s.ctx, characters.UpdatePositionInput{
		Character: character,
		Position:  dnd5e.Position{X: 5},
	})
	s.Require().NoError(err)

	// Second write from the same stale fetch must lose
	s.clock.Advance(time.Second)
	_, err = s.repo.UpdatePosition(s.ctx, characters.UpdatePositionInput{
		Character: character,
		Position:  dnd5e.Position{X: 10},
	})
	s.True(errors.IsAborted(err))
}

func (s *RedisRepositoryTestSuite) TestUpdateHitPoints() {
	character := s.newCharacter("CHR-1")
	_, err := s.repo.Create(s.ctx, characters.CreateInput{Character: character})
	s.Require().NoError(err)

	s.clock.Advance(time.Second)
	output, err := s.repo.UpdateHitPoints(s.ctx, characters.UpdateHitPointsInput{
		Character: character,
		HitPoints: 2,
	})
	s.Require().NoError(err)
	s.Equal(2, output.Character.CurrentHitPoints)
}

func TestRedisRepositorySuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}
