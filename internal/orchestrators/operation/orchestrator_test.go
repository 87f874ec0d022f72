package operation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/grimoire-rpg/encounter-api/internal/entities/dnd5e"
	"github.com/grimoire-rpg/encounter-api/internal/errors"
	"github.com/grimoire-rpg/encounter-api/internal/orchestrators/operation"
	"github.com/grimoire-rpg/encounter-api/internal/pkg/clock"
	"github.com/grimoire-rpg/encounter-api/internal/pkg/idgen"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/characters"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/encounters"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/items"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/operations"
	"github.com/grimoire-rpg/encounter-api/internal/testutils"
)

// scriptedRoller returns a fixed sequence of roll totals
type scriptedRoller struct {
	results []int
	next    int
}

func (r *scriptedRoller) Roll(_, _ int) (int, error) {
	if r.next >= len(r.results) {
		return 0, errors.Internal("scripted roller exhausted")
	}
	result := r.results[r.next]
	r.next++
	return result, nil
}

type OrchestratorTestSuite struct {
	suite.Suite
	service       operation.Service
	characterRepo characters.Repository
	encounterRepo encounters.Repository
	operationRepo operations.Repository
	itemRepo      items.Repository
	roller        *scriptedRoller
	clock         *clock.Fixed
	cleanup       func()
	ctx           context.Context
}

func (s *OrchestratorTestSuite) SetupTest() {
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup
	s.clock = clock.NewFixed(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC))
	s.roller = &scriptedRoller{}
	s.ctx = context.Background()

	var err error
	s.characterRepo, err = characters.NewRedis(&characters.RedisConfig{Client: client, Clock: s.clock})
	s.Require().NoError(err)
	s.encounterRepo, err = encounters.NewRedis(&encounters.RedisConfig{Client: client, Clock: s.clock})
	s.Require().NoError(err)
	s.operationRepo, err = operations.NewRedis(&operations.RedisConfig{Client: client, Clock: s.clock})
	s.Require().NoError(err)
	s.itemRepo, err = items.NewRedis(&items.RedisConfig{Client: client})
	s.Require().NoError(err)

	service, err := operation.NewOrchestrator(&operation.Config{
		CharacterRepo:          s.characterRepo,
		EncounterRepo:          s.encounterRepo,
		OperationRepo:          s.operationRepo,
		ItemRepo:               s.itemRepo,
		OperationIDGenerator:   idgen.NewSequential("opr"),
		InteractionIDGenerator: idgen.NewSequential("itr"),
		Roller:                 s.roller,
		Clock:                  s.clock,
	})
	s.Require().NoError(err)
	s.service = service
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.cleanup()
}

// seedCharacter stores a character at the given position with speed 30,
// AC 15, 10 HP.
func (s *OrchestratorTestSuite) seedCharacter(id string, position dnd5e.Position) *dnd5e.Character {
	now := s.clock.Now()
	stats := dnd5e.DefaultCharacterStats()
	stats.Initiative = 2
	stats.ArmorClass = 15
	pos := position
	character := &dnd5e.Character{
		ID:               id,
		CampaignID:       "CPN-1",
		Name:             "Fighter " + id,
		CreatedAt:        now,
		ModifiedAt:       now,
		Stats:            stats,
		Position:         &pos,
		CurrentHitPoints: 10,
		MaximumHitPoints: 10,
	}
	_, err := s.characterRepo.Create(s.ctx, characters.CreateInput{Character: character})
	s.Require().NoError(err)
	return character
}

func (s *OrchestratorTestSuite) seedEncounter(state dnd5e.EncounterState, characterIDs ...string) *dnd5e.Encounter {
	now := s.clock.Now()
	encounter := &dnd5e.Encounter{
		ID:           "ENC-1",
		CampaignID:   "CPN-1",
		CreatedAt:    now,
		ModifiedAt:   now,
		CharacterIDs: characterIDs,
		State:        state,
	}
	_, err := s.encounterRepo.Create(s.ctx, encounters.CreateInput{Encounter: encounter})
	s.Require().NoError(err)
	return encounter
}

func (s *OrchestratorTestSuite) getCharacter(id string) *dnd5e.Character {
	output, err := s.characterRepo.Get(s.ctx, characters.GetInput{CampaignID: "CPN-1", CharacterID: id})
	s.Require().NoError(err)
	return output.Character
}

func (s *OrchestratorTestSuite) TestMoveOverBudgetFailsWithoutOverride() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1")

	s.clock.Advance(time.Second)
	_, err := s.service.SubmitMove(s.ctx, &operation.SubmitMoveInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		ToPosition:  dnd5e.Position{X: 35},
	})
	s.Require().True(errors.IsFailedPrecondition(err))

	violations, ok := errors.GetMeta(err)["violations"].([]dnd5e.Violation)
	s.Require().True(ok)
	s.Require().Len(violations, 1)
	s.Equal(dnd5e.ViolationCharacterMovementExceeded, violations[0].Type)
	s.Equal(30.0, violations[0].CharacterMovementExceeded.MaximumMovement)
	s.Equal(0.0, violations[0].CharacterMovementExceeded.CurrentMovement)
	s.Equal(35.0, violations[0].CharacterMovementExceeded.RequestMovement)

	// Nothing persisted, position unchanged
	listed, err := s.operationRepo.ListByEncounter(s.ctx, operations.ListByEncounterInput{EncounterID: "ENC-1"})
	s.Require().NoError(err)
	s.Empty(listed.Operations)
	s.Equal(0.0, s.getCharacter("CHR-1").Position.X)
}

func (s *OrchestratorTestSuite) TestMoveOverBudgetPersistsWithOverride() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1")

	s.clock.Advance(time.Second)
	output, err := s.service.SubmitMove(s.ctx, &operation.SubmitMoveInput{
		CampaignID:       "CPN-1",
		CharacterID:      "CHR-1",
		ToPosition:       dnd5e.Position{X: 35},
		IgnoreViolations: true,
	})
	s.Require().NoError(err)

	s.Equal(dnd5e.LegalityIllegalPending, output.Operation.Legality.Type)
	s.Len(output.Operation.Legality.Violations, 1)
	s.Equal(35.0, s.getCharacter("CHR-1").Position.X)
}

func (s *OrchestratorTestSuite) TestMovementBudgetAccumulatesWithinTurn() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1")

	s.clock.Advance(time.Second)
	_, err := s.service.SubmitMove(s.ctx, &operation.SubmitMoveInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		ToPosition:  dnd5e.Position{X: 20},
	})
	s.Require().NoError(err)

	s.clock.Advance(time.Second)
	_, err = s.service.SubmitMove(s.ctx, &operation.SubmitMoveInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		ToPosition:  dnd5e.Position{X: 40},
	})
	s.Require().True(errors.IsFailedPrecondition(err))

	violations := errors.GetMeta(err)["violations"].([]dnd5e.Violation)
	s.Require().Len(violations, 1)
	s.Equal(20.0, violations[0].CharacterMovementExceeded.CurrentMovement)
}

func (s *OrchestratorTestSuite) TestMoveOutOfTurnFails() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedCharacter("CHR-2", dnd5e.Position{X: 5})
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1", "CHR-2")

	s.clock.Advance(time.Second)
	_, err := s.service.SubmitMove(s.ctx, &operation.SubmitMoveInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-2",
		ToPosition:  dnd5e.Position{X: 10},
	})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestMoveAllowedDuringInitiativePhase() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedEncounter(dnd5e.InitiativeState(), "CHR-1")

	// No budget check outside of turns, even for long moves
	s.clock.Advance(time.Second)
	output, err := s.service.SubmitMove(s.ctx, &operation.SubmitMoveInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		ToPosition:  dnd5e.Position{X: 50},
	})
	s.Require().NoError(err)
	s.Equal(dnd5e.LegalityLegal, output.Operation.Legality.Type)
}

func (s *OrchestratorTestSuite) TestInitiativeRoll() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedEncounter(dnd5e.InitiativeState(), "CHR-1")
	s.roller.results = []int{13}

	s.clock.Advance(time.Second)
	output, err := s.service.SubmitRoll(s.ctx, &operation.SubmitRollInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		RollType:    dnd5e.RollTypeInitiative,
	})
	s.Require().NoError(err)

	rollType, result, ok := output.Operation.Type.AsRoll()
	s.Require().True(ok)
	s.Equal(dnd5e.RollTypeInitiative, rollType)
	s.Equal(15, result, "d20 result plus initiative modifier")
}

func (s *OrchestratorTestSuite) TestDuplicateInitiativeRollFails() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedEncounter(dnd5e.InitiativeState(), "CHR-1")
	s.roller.results = []int{13, 7}

	s.clock.Advance(time.Second)
	_, err := s.service.SubmitRoll(s.ctx, &operation.SubmitRollInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		RollType:    dnd5e.RollTypeInitiative,
	})
	s.Require().NoError(err)

	s.clock.Advance(time.Second)
	_, err = s.service.SubmitRoll(s.ctx, &operation.SubmitRollInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		RollType:    dnd5e.RollTypeInitiative,
	})
	s.True(errors.IsAlreadyExists(err))
}

func (s *OrchestratorTestSuite) TestAttackOutOfRangeSeedsHitWithOverride() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedCharacter("CHR-2", dnd5e.Position{X: 10})
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1", "CHR-2")

	attack := dnd5e.Action{
		Type: dnd5e.ActionKindAttack,
		Attack: &dnd5e.Attack{
			Method:  dnd5e.UnarmedAttackMethod(dnd5e.DamageTypeBludgeoning),
			Targets: []string{"CHR-2"},
		},
	}

	s.clock.Advance(time.Second)
	_, err := s.service.SubmitAction(s.ctx, &operation.SubmitActionInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		Action:      attack,
	})
	s.Require().True(errors.IsFailedPrecondition(err))

	violations := errors.GetMeta(err)["violations"].([]dnd5e.Violation)
	s.Require().Len(violations, 1)
	s.Equal(dnd5e.ViolationAttackNotInRange, violations[0].Type)
	s.Equal(5.0, violations[0].AttackNotInRange.AttackRange)
	s.Equal(10.0, violations[0].AttackNotInRange.CurrentRange)

	s.clock.Advance(time.Second)
	output, err := s.service.SubmitAction(s.ctx, &operation.SubmitActionInput{
		CampaignID:       "CPN-1",
		CharacterID:      "CHR-1",
		Action:           attack,
		IgnoreViolations: true,
	})
	s.Require().NoError(err)
	s.Require().Len(output.Operation.Interactions, 1)
	s.Equal(dnd5e.RollTypeHit, output.Operation.Interactions[0].RollType)
	s.Equal("CHR-1", output.Operation.Interactions[0].CharacterID)
}

func (s *OrchestratorTestSuite) TestAttackResolvesThroughHitAndDamage() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedCharacter("CHR-2", dnd5e.Position{X: 5})
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1", "CHR-2")

	s.clock.Advance(time.Second)
	submitted, err := s.service.SubmitAction(s.ctx, &operation.SubmitActionInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		Action: dnd5e.Action{
			Type: dnd5e.ActionKindAttack,
			Attack: &dnd5e.Attack{
				Method:  dnd5e.UnarmedAttackMethod(dnd5e.DamageTypeBludgeoning),
				Targets: []string{"CHR-2"},
			},
		},
	})
	s.Require().NoError(err)
	operationID := submitted.Operation.ID
	hitID := submitted.Operation.Interactions[0].ID

	// Hit roll equal to AC hits
	s.clock.Advance(time.Second)
	afterHit, err := s.service.SubmitInteractionResult(s.ctx, &operation.SubmitInteractionResultInput{
		CampaignID:    "CPN-1",
		OperationID:   operationID,
		InteractionID: hitID,
		CharacterID:   "CHR-1",
		Result:        15,
	})
	s.Require().NoError(err)
	s.Require().Len(afterHit.Operation.Interactions, 2)
	damage := afterHit.Operation.Interactions[1]
	s.Equal(dnd5e.RollTypeDamage, damage.RollType)
	s.Equal("CHR-1", damage.CharacterID)

	s.clock.Advance(time.Second)
	afterDamage, err := s.service.SubmitInteractionResult(s.ctx, &operation.SubmitInteractionResultInput{
		CampaignID:    "CPN-1",
		OperationID:   operationID,
		InteractionID: damage.ID,
		CharacterID:   "CHR-1",
		Result:        8,
	})
	s.Require().NoError(err)
	s.Len(afterDamage.Operation.Interactions, 2)
	s.Equal(2, s.getCharacter("CHR-2").CurrentHitPoints)
}

func (s *OrchestratorTestSuite) TestMissedHitSeedsNothing() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedCharacter("CHR-2", dnd5e.Position{X: 5})
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1", "CHR-2")

	s.clock.Advance(time.Second)
	submitted, err := s.service.SubmitAction(s.ctx, &operation.SubmitActionInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		Action: dnd5e.Action{
			Type: dnd5e.ActionKindAttack,
			Attack: &dnd5e.Attack{
				Method:  dnd5e.UnarmedAttackMethod(dnd5e.DamageTypeBludgeoning),
				Targets: []string{"CHR-2"},
			},
		},
	})
	s.Require().NoError(err)

	s.clock.Advance(time.Second)
	afterHit, err := s.service.SubmitInteractionResult(s.ctx, &operation.SubmitInteractionResultInput{
		CampaignID:    "CPN-1",
		OperationID:   submitted.Operation.ID,
		InteractionID: submitted.Operation.Interactions[0].ID,
		CharacterID:   "CHR-1",
		Result:        14,
	})
	s.Require().NoError(err)
	s.Len(afterHit.Operation.Interactions, 1)
	s.Equal(10, s.getCharacter("CHR-2").CurrentHitPoints)
}

func (s *OrchestratorTestSuite) TestDamageFloorsAtZero() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedCharacter("CHR-2", dnd5e.Position{X: 5})
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1", "CHR-2")

	s.clock.Advance(time.Second)
	submitted, err := s.service.SubmitAction(s.ctx, &operation.SubmitActionInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		Action: dnd5e.Action{
			Type: dnd5e.ActionKindAttack,
			Attack: &dnd5e.Attack{
				Method:  dnd5e.UnarmedAttackMethod(dnd5e.DamageTypeBludgeoning),
				Targets: []string{"CHR-2"},
			},
		},
	})
	s.Require().NoError(err)

	s.clock.Advance(time.Second)
	afterHit, err := s.service.SubmitInteractionResult(s.ctx, &operation.SubmitInteractionResultInput{
		CampaignID:    "CPN-1",
		OperationID:   submitted.Operation.ID,
		InteractionID: submitted.Operation.Interactions[0].ID,
		CharacterID:   "CHR-1",
		Result:        20,
	})
	s.Require().NoError(err)

	s.clock.Advance(time.Second)
	_, err = s.service.SubmitInteractionResult(s.ctx, &operation.SubmitInteractionResultInput{
		CampaignID:    "CPN-1",
		OperationID:   submitted.Operation.ID,
		InteractionID: afterHit.Operation.Interactions[1].ID,
		CharacterID:   "CHR-1",
		Result:        20,
	})
	s.Require().NoError(err)
	s.Equal(0, s.getCharacter("CHR-2").CurrentHitPoints)
}

func (s *OrchestratorTestSuite) TestWeaponAttackByItemID() {
	longbow := &dnd5e.Item{
		ID:   "ITM-1",
		Name: "Longbow",
		Type: dnd5e.WeaponItemType(dnd5e.Weapon{
			DamageAmount: dnd5e.DiceD8,
			DamageType:   dnd5e.DamageTypePiercing,
			Properties: []dnd5e.WeaponProperty{
				{Type: dnd5e.WeaponPropertyAmmunition, Range: &dnd5e.Range{Normal: 150, Long: 600}},
			},
		}),
	}
	_, err := s.itemRepo.Create(s.ctx, items.CreateInput{Item: longbow})
	s.Require().NoError(err)

	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedCharacter("CHR-2", dnd5e.Position{X: 100})
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1", "CHR-2")

	s.clock.Advance(time.Second)
	output, err := s.service.SubmitAction(s.ctx, &operation.SubmitActionInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		Action: dnd5e.Action{
			Type: dnd5e.ActionKindAttack,
			Attack: &dnd5e.Attack{
				Method:  dnd5e.AttackMethod{Type: dnd5e.AttackMethodWeapon, ItemID: "ITM-1"},
				Targets: []string{"CHR-2"},
			},
		},
	})
	s.Require().NoError(err)
	s.Equal(dnd5e.LegalityLegal, output.Operation.Legality.Type)

	method := output.Operation.Type.AsAction().Attack.Method
	s.Require().NotNil(method.Weapon, "weapon resolved from the item catalog")
	s.Equal(150.0, method.Weapon.NormalRange())
}

func (s *OrchestratorTestSuite) TestInteractionResultIsWriteOnce() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedCharacter("CHR-2", dnd5e.Position{X: 5})
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1", "CHR-2")

	s.clock.Advance(time.Second)
	submitted, err := s.service.SubmitAction(s.ctx, &operation.SubmitActionInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		Action: dnd5e.Action{
			Type: dnd5e.ActionKindAttack,
			Attack: &dnd5e.Attack{
				Method:  dnd5e.UnarmedAttackMethod(dnd5e.DamageTypeBludgeoning),
				Targets: []string{"CHR-2"},
			},
		},
	})
	s.Require().NoError(err)
	hitID := submitted.Operation.Interactions[0].ID

	s.clock.Advance(time.Second)
	_, err = s.service.SubmitInteractionResult(s.ctx, &operation.SubmitInteractionResultInput{
		CampaignID:    "CPN-1",
		OperationID:   submitted.Operation.ID,
		InteractionID: hitID,
		CharacterID:   "CHR-1",
		Result:        3,
	})
	s.Require().NoError(err)

	s.clock.Advance(time.Second)
	_, err = s.service.SubmitInteractionResult(s.ctx, &operation.SubmitInteractionResultInput{
		CampaignID:    "CPN-1",
		OperationID:   submitted.Operation.ID,
		InteractionID: hitID,
		CharacterID:   "CHR-1",
		Result:        18,
	})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestWrongCharacterCannotSubmitResult() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedCharacter("CHR-2", dnd5e.Position{X: 5})
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1", "CHR-2")

	s.clock.Advance(time.Second)
	submitted, err := s.service.SubmitAction(s.ctx, &operation.SubmitActionInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		Action: dnd5e.Action{
			Type: dnd5e.ActionKindAttack,
			Attack: &dnd5e.Attack{
				Method:  dnd5e.UnarmedAttackMethod(dnd5e.DamageTypeBludgeoning),
				Targets: []string{"CHR-2"},
			},
		},
	})
	s.Require().NoError(err)

	_, err = s.service.SubmitInteractionResult(s.ctx, &operation.SubmitInteractionResultInput{
		CampaignID:    "CPN-1",
		OperationID:   submitted.Operation.ID,
		InteractionID: submitted.Operation.Interactions[0].ID,
		CharacterID:   "CHR-2",
		Result:        15,
	})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestApproveAndReject() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1")

	s.clock.Advance(time.Second)
	first, err := s.service.SubmitMove(s.ctx, &operation.SubmitMoveInput{
		CampaignID:       "CPN-1",
		CharacterID:      "CHR-1",
		ToPosition:       dnd5e.Position{X: 35},
		IgnoreViolations: true,
	})
	s.Require().NoError(err)

	// A legal operation is not reviewable
	_, err = s.service.ApproveOperation(s.ctx, &operation.ApproveOperationInput{
		CampaignID:  "CPN-1",
		OperationID: "OPR-missing",
	})
	s.True(errors.IsNotFound(err))

	s.clock.Advance(time.Second)
	approved, err := s.service.ApproveOperation(s.ctx, &operation.ApproveOperationInput{
		CampaignID:  "CPN-1",
		OperationID: first.Operation.ID,
	})
	s.Require().NoError(err)
	s.Equal(dnd5e.LegalityIllegalApproved, approved.Operation.Legality.Type)
	s.Len(approved.Operation.Legality.Violations, 1)

	// Approved operations can no longer be approved or rejected
	_, err = s.service.RejectOperation(s.ctx, &operation.RejectOperationInput{
		CampaignID:  "CPN-1",
		OperationID: first.Operation.ID,
	})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *OrchestratorTestSuite) TestRejectDeletesWithoutRevertingEffects() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1")

	s.clock.Advance(time.Second)
	submitted, err := s.service.SubmitMove(s.ctx, &operation.SubmitMoveInput{
		CampaignID:       "CPN-1",
		CharacterID:      "CHR-1",
		ToPosition:       dnd5e.Position{X: 35},
		IgnoreViolations: true,
	})
	s.Require().NoError(err)

	s.clock.Advance(time.Second)
	_, err = s.service.RejectOperation(s.ctx, &operation.RejectOperationInput{
		CampaignID:  "CPN-1",
		OperationID: submitted.Operation.ID,
	})
	s.Require().NoError(err)

	_, err = s.service.GetOperation(s.ctx, &operation.GetOperationInput{
		CampaignID:  "CPN-1",
		OperationID: submitted.Operation.ID,
	})
	s.True(errors.IsNotFound(err))

	// The move's position change stays applied
	s.Equal(35.0, s.getCharacter("CHR-1").Position.X)
}

func (s *OrchestratorTestSuite) TestFireballFansOutSavesAndSplitsDamage() {
	s.seedCharacter("CHR-1", dnd5e.Position{})             // caster, out of blast
	s.seedCharacter("CHR-2", dnd5e.Position{X: 95})        // in blast
	s.seedCharacter("CHR-3", dnd5e.Position{X: 110})       // in blast
	s.seedCharacter("CHR-4", dnd5e.Position{X: 95, Y: 40}) // out of blast
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1", "CHR-2", "CHR-3", "CHR-4")

	s.clock.Advance(time.Second)
	submitted, err := s.service.SubmitAction(s.ctx, &operation.SubmitActionInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		Action: dnd5e.Action{
			Type: dnd5e.ActionKindCastSpell,
			CastSpell: &dnd5e.Cast{
				Spell:  "Fireball",
				Target: dnd5e.PositionSpellTarget(dnd5e.Position{X: 100}),
			},
		},
	})
	s.Require().NoError(err)
	s.Require().Len(submitted.Operation.Interactions, 1)
	s.Equal(dnd5e.RollTypeDamage, submitted.Operation.Interactions[0].RollType)
	s.Equal("CHR-1", submitted.Operation.Interactions[0].CharacterID)

	// The rolled pool fans out one dexterity save per character in radius
	s.clock.Advance(time.Second)
	afterDamage, err := s.service.SubmitInteractionResult(s.ctx, &operation.SubmitInteractionResultInput{
		CampaignID:    "CPN-1",
		OperationID:   submitted.Operation.ID,
		InteractionID: submitted.Operation.Interactions[0].ID,
		CharacterID:   "CHR-1",
		Result:        9,
	})
	s.Require().NoError(err)
	s.Require().Len(afterDamage.Operation.Interactions, 3)

	saves := afterDamage.Operation.Interactions[1:]
	var saverIDs []string
	for _, save := range saves {
		s.Equal(dnd5e.SaveRoll(dnd5e.AbilityDexterity), save.RollType)
		saverIDs = append(saverIDs, save.CharacterID)
	}
	s.ElementsMatch([]string{"CHR-2", "CHR-3"}, saverIDs)

	// Successful save takes half the pool, rounded down
	s.clock.Advance(time.Second)
	_, err = s.service.SubmitInteractionResult(s.ctx, &operation.SubmitInteractionResultInput{
		CampaignID:    "CPN-1",
		OperationID:   submitted.Operation.ID,
		InteractionID: saves[0].ID,
		CharacterID:   saves[0].CharacterID,
		Result:        12,
	})
	s.Require().NoError(err)
	s.Equal(6, s.getCharacter(saves[0].CharacterID).CurrentHitPoints)

	// Failed save takes the full pool
	s.clock.Advance(time.Second)
	_, err = s.service.SubmitInteractionResult(s.ctx, &operation.SubmitInteractionResultInput{
		CampaignID:    "CPN-1",
		OperationID:   submitted.Operation.ID,
		InteractionID: saves[1].ID,
		CharacterID:   saves[1].CharacterID,
		Result:        4,
	})
	s.Require().NoError(err)
	s.Equal(1, s.getCharacter(saves[1].CharacterID).CurrentHitPoints)
}

func (s *OrchestratorTestSuite) TestFireballRequiresPositionTarget() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedCharacter("CHR-2", dnd5e.Position{X: 5})
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1", "CHR-2")

	s.clock.Advance(time.Second)
	_, err := s.service.SubmitAction(s.ctx, &operation.SubmitActionInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		Action: dnd5e.Action{
			Type: dnd5e.ActionKindCastSpell,
			CastSpell: &dnd5e.Cast{
				Spell:  "Fireball",
				Target: dnd5e.CreatureSpellTarget("CHR-2"),
			},
		},
	})
	s.True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestFireballOutOfRangeViolation() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1")

	s.clock.Advance(time.Second)
	_, err := s.service.SubmitAction(s.ctx, &operation.SubmitActionInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		Action: dnd5e.Action{
			Type: dnd5e.ActionKindCastSpell,
			CastSpell: &dnd5e.Cast{
				Spell:  "Fireball",
				Target: dnd5e.PositionSpellTarget(dnd5e.Position{X: 200}),
			},
		},
	})
	s.Require().True(errors.IsFailedPrecondition(err))

	violations := errors.GetMeta(err)["violations"].([]dnd5e.Violation)
	s.Require().Len(violations, 1)
	s.Equal(dnd5e.ViolationCastNotInRange, violations[0].Type)
	s.Equal(150.0, violations[0].CastNotInRange.SpellRange)
}

func (s *OrchestratorTestSuite) TestUnknownSpellFails() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1")

	s.clock.Advance(time.Second)
	_, err := s.service.SubmitAction(s.ctx, &operation.SubmitActionInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		Action: dnd5e.Action{
			Type: dnd5e.ActionKindCastSpell,
			CastSpell: &dnd5e.Cast{
				Spell:  "Wish",
				Target: dnd5e.PositionSpellTarget(dnd5e.Position{X: 10}),
			},
		},
	})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestListOperations() {
	s.seedCharacter("CHR-1", dnd5e.Position{})
	s.seedEncounter(dnd5e.TurnState(0, "CHR-1"), "CHR-1")

	s.clock.Advance(time.Second)
	_, err := s.service.SubmitMove(s.ctx, &operation.SubmitMoveInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		ToPosition:  dnd5e.Position{X: 10},
	})
	s.Require().NoError(err)

	s.clock.Advance(time.Second)
	_, err = s.service.SubmitMove(s.ctx, &operation.SubmitMoveInput{
		CampaignID:  "CPN-1",
		CharacterID: "CHR-1",
		ToPosition:  dnd5e.Position{X: 20},
	})
	s.Require().NoError(err)

	listed, err := s.service.ListOperations(s.ctx, &operation.ListOperationsInput{CampaignID: "CPN-1"})
	s.Require().NoError(err)
	s.Len(listed.Operations, 2)
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}
