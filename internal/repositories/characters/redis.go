package characters

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"

	"github.com/grimoire-rpg/encounter-api/internal/entities/dnd5e"
	"github.com/grimoire-rpg/encounter-api/internal/errors"
	"github.com/grimoire-rpg/encounter-api/internal/pkg/clock"
	redisclient "github.com/grimoire-rpg/encounter-api/internal/redis"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/record"
)

const (
	characterKeyPrefix  = "chr:"
	campaignIndexPrefix = "cpn:characters:"

	errCharacterNil     = "character cannot be nil"
	errCharacterIDEmpty = "character ID cannot be empty"
	errCampaignIDEmpty  = "campaign ID cannot be empty"
)

type redisRepository struct {
	client redisclient.Client
	clock  clock.Clock
}

// RedisConfig contains configuration for the Redis character repository.
type RedisConfig struct {
	Client redisclient.Client
	Clock  clock.Clock
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

// NewRedis creates a new Redis-backed character repository
func NewRedis(cfg *RedisConfig) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &redisRepository{
		client: cfg.Client,
		clock:  c,
	}, nil
}

func (r *redisRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	if input.Character.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	if input.Character.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	key := record.Key(input.Character)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check existence")
	}
	if exists > 0 {
		return nil, errors.AlreadyExistsf("character with ID %s already exists", input.Character.ID)
	}

	data, err := json.Marshal(input.Character)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal character")
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, key, data, 0)
	pipe.SAdd(ctx, campaignIndexPrefix+input.Character.CampaignID, input.Character.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to create character")
	}

	return &CreateOutput{Character: input.Character}, nil
}

func (r *redisRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}
	if input.CharacterID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	character, err := r.fetch(ctx, input.CharacterID)
	if err != nil {
		return nil, err
	}
	if character.CampaignID != input.CampaignID {
		return nil, errors.NotFoundf("character with ID %s not found in campaign %s", input.CharacterID, input.CampaignID)
	}

	return &GetOutput{Character: character}, nil
}

func (r *redisRepository) ListByCampaign(ctx context.Context, input ListByCampaignInput) (*ListByCampaignOutput, error) {
	if input.CampaignID == "" {
		return nil, errors.InvalidArgument(errCampaignIDEmpty)
	}

	ids, err := r.client.SMembers(ctx, campaignIndexPrefix+input.CampaignID).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list campaign characters")
	}

	characters := make([]*dnd5e.Character, 0, len(ids))
	for _, id := range ids {
		character, err := r.fetch(ctx, id)
		if err != nil {
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		characters = append(characters, character)
	}

	return &ListByCampaignOutput{Characters: characters}, nil
}

func (r *redisRepository) UpdatePosition(ctx context.Context, input UpdatePositionInput) (*UpdatePositionOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}

	updated := *input.Character
	position := input.Position
	updated.Position = &position
	updated.ModifiedAt = r.clock.Now()

	if err := record.CompareAndSwap(ctx, r.client, record.Key(&updated), input.Character.ModifiedAt, &updated); err != nil {
		return nil, err
	}

	return &UpdatePositionOutput{Character: &updated}, nil
}

func (r *redisRepository) UpdateHitPoints(ctx context.Context, input UpdateHitPointsInput) (*UpdateHitPointsOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}

	updated := *input.Character
	updated.CurrentHitPoints = input.HitPoints
	updated.ModifiedAt = r.clock.Now()

	if err := record.CompareAndSwap(ctx, r.client, record.Key(&updated), input.Character.ModifiedAt, &updated); err != nil {
		return nil, err
	}

	return &UpdateHitPointsOutput{Character: &updated}, nil
}

func (r *redisRepository) fetch(ctx context.Context, id string) (*dnd5e.Character, error) {
	result, err := r.client.Get(ctx, characterKeyPrefix+id).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NotFoundf("character with ID %s not found", id)
		}
		return nil, errors.Wrapf(err, "failed to get character")
	}

	var character dnd5e.Character
	if err := json.Unmarshal([]byte(result), &character); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal character")
	}

	return &character, nil
}
