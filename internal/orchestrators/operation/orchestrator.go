// Package operation implements the operation ledger: every move,
// action, and roll a player submits is validated, persisted with its
// legality, and progressed through pending interactions until none
// remain outstanding.
package operation

import (
	"context"
	"log/slog"

	"github.com/grimoire-rpg/encounter-api/internal/entities/dnd5e"
	"github.com/grimoire-rpg/encounter-api/internal/errors"
	"github.com/grimoire-rpg/encounter-api/internal/pkg/clock"
	"github.com/grimoire-rpg/encounter-api/internal/pkg/idgen"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/characters"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/encounters"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/items"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/operations"
	"github.com/grimoire-rpg/encounter-api/internal/rules"
)

// Service defines the interface for the operation ledger
type Service interface {
	// SubmitMove validates and records a character move. Violations are
	// fatal unless IgnoreViolations is set, in which case the operation
	// is persisted as pending-illegal with its side effects applied.
	SubmitMove(ctx context.Context, input *SubmitMoveInput) (*SubmitMoveOutput, error)

	// SubmitAction validates and records an attack or spell cast,
	// seeding the initial interactions. Same violation gate as moves.
	SubmitAction(ctx context.Context, input *SubmitActionInput) (*SubmitActionOutput, error)

	// SubmitRoll rolls initiative for a character and records the result
	SubmitRoll(ctx context.Context, input *SubmitRollInput) (*SubmitRollOutput, error)

	// SubmitInteractionResult records a pending interaction's result,
	// applies its game effect, and appends any follow-up interactions
	SubmitInteractionResult(ctx context.Context, input *SubmitInteractionResultInput) (*SubmitInteractionResultOutput, error)

	// ApproveOperation flips a pending-illegal operation to approved
	ApproveOperation(ctx context.Context, input *ApproveOperationInput) (*ApproveOperationOutput, error)

	// RejectOperation deletes a pending-illegal operation. Side effects
	// already applied are not rolled back.
	RejectOperation(ctx context.Context, input *RejectOperationInput) (*RejectOperationOutput, error)

	// ListOperations returns the current encounter's ledger in submission order
	ListOperations(ctx context.Context, input *ListOperationsInput) (*ListOperationsOutput, error)

	// GetOperation returns a single operation by id
	GetOperation(ctx context.Context, input *GetOperationInput) (*GetOperationOutput, error)
}

// SubmitMoveInput defines the input for submitting a move
type SubmitMoveInput struct {
	CampaignID       string
	CharacterID      string
	ToPosition       dnd5e.Position
	IgnoreViolations bool
}

// SubmitMoveOutput defines the output for submitting a move
type SubmitMoveOutput struct {
	Operation *dnd5e.Operation
}

// SubmitActionInput defines the input for submitting an action
type SubmitActionInput struct {
	CampaignID       string
	CharacterID      string
	Action           dnd5e.Action
	IgnoreViolations bool
}

// SubmitActionOutput defines the output for submitting an action
type SubmitActionOutput struct {
	Operation *dnd5e.Operation
}

// SubmitRollInput defines the input for submitting a roll
type SubmitRollInput struct {
	CampaignID  string
	CharacterID string
	RollType    dnd5e.RollType
}

// SubmitRollOutput defines the output for submitting a roll
type SubmitRollOutput struct {
	Operation *dnd5e.Operation
}

// SubmitInteractionResultInput defines the input for resolving an interaction
type SubmitInteractionResultInput struct {
	CampaignID    string
	OperationID   string
	InteractionID string
	CharacterID   string
	Result        int
}

// SubmitInteractionResultOutput defines the output for resolving an interaction
type SubmitInteractionResultOutput struct {
	Operation *dnd5e.Operation
}

// ApproveOperationInput defines the input for approving a pending operation
type ApproveOperationInput struct {
	CampaignID  string
	OperationID string
}

// ApproveOperationOutput defines the output for approving a pending operation
type ApproveOperationOutput struct {
	Operation *dnd5e.Operation
}

// RejectOperationInput defines the input for rejecting a pending operation
type RejectOperationInput struct {
	CampaignID  string
	OperationID string
}

// RejectOperationOutput defines the output for rejecting a pending operation
type RejectOperationOutput struct{}

// ListOperationsInput defines the input for listing the current ledger
type ListOperationsInput struct {
	CampaignID string
}

// ListOperationsOutput defines the output for listing the current ledger
type ListOperationsOutput struct {
	Operations []*dnd5e.Operation
}

// GetOperationInput defines the input for getting an operation
type GetOperationInput struct {
	CampaignID  string
	OperationID string
}

// GetOperationOutput defines the output for getting an operation
type GetOperationOutput struct {
	Operation *dnd5e.Operation
}

// Config holds the dependencies for the operation orchestrator
type Config struct {
	CharacterRepo          characters.Repository
	EncounterRepo          encounters.Repository
	OperationRepo          operations.Repository
	ItemRepo               items.Repository
	OperationIDGenerator   idgen.Generator
	InteractionIDGenerator idgen.Generator
	Roller                 Roller
	Clock                  clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.EncounterRepo == nil {
		vb.RequiredField("EncounterRepo")
	}
	if c.OperationRepo == nil {
		vb.RequiredField("OperationRepo")
	}
	if c.ItemRepo == nil {
		vb.RequiredField("ItemRepo")
	}
	if c.OperationIDGenerator == nil {
		vb.RequiredField("OperationIDGenerator")
	}
	if c.InteractionIDGenerator == nil {
		vb.RequiredField("InteractionIDGenerator")
	}

	return vb.Build()
}

type orchestrator struct {
	characterRepo characters.Repository
	encounterRepo encounters.Repository
	operationRepo operations.Repository
	itemRepo      items.Repository
	operationIDs  idgen.Generator
	interactionID idgen.Generator
	roller        Roller
	clock         clock.Clock
}

// NewOrchestrator creates a new operation orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	r := cfg.Roller
	if r == nil {
		r = NewRoller()
	}

	return &orchestrator{
		characterRepo: cfg.CharacterRepo,
		encounterRepo: cfg.EncounterRepo,
		operationRepo: cfg.OperationRepo,
		itemRepo:      cfg.ItemRepo,
		operationIDs:  cfg.OperationIDGenerator,
		interactionID: cfg.InteractionIDGenerator,
		roller:        r,
		clock:         c,
	}, nil
}

func (o *orchestrator) SubmitMove(ctx context.Context, input *SubmitMoveInput) (*SubmitMoveOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	encounter, character, err := o.submissionContext(ctx, input.CampaignID, input.CharacterID)
	if err != nil {
		return nil, err
	}
	if character.Position == nil {
		return nil, errors.FailedPreconditionf("character %s does not have a position", character.ID)
	}
	if err := o.checkTurnHolder(encounter, character.ID); err != nil {
		return nil, err
	}

	feet := character.Position.Distance(input.ToPosition)

	var violations []dnd5e.Violation
	if round, turnHolder, ok := encounter.State.AsTurn(); ok && turnHolder == character.ID {
		alreadyMoved, err := o.movedThisTurn(ctx, encounter.ID, round, character.ID)
		if err != nil {
			return nil, err
		}
		violations = rules.CheckMovement(character.ID, character.Stats.Speed, alreadyMoved, feet)
	}

	legality, err := gateViolations(violations, input.IgnoreViolations)
	if err != nil {
		return nil, err
	}

	operation := o.newOperation(encounter, character.ID)
	operation.Type = dnd5e.MoveOperation(dnd5e.Move{
		ToPosition: input.ToPosition,
		Feet:       feet,
	})
	operation.Legality = legality

	created, err := o.operationRepo.Create(ctx, operations.CreateInput{Operation: operation})
	if err != nil {
		return nil, err
	}

	// The position change applies even for pending-illegal moves; the
	// referee decides afterwards. Note the two writes are not atomic
	// across records.
	if _, err := o.characterRepo.UpdatePosition(ctx, characters.UpdatePositionInput{
		Character: character,
		Position:  input.ToPosition,
	}); err != nil {
		return nil, err
	}

	slog.Info("move submitted",
		"operation_id", operation.ID,
		"character_id", character.ID,
		"feet", feet,
		"legality", operation.Legality.Type,
	)

	return &SubmitMoveOutput{Operation: created.Operation}, nil
}

func (o *orchestrator) SubmitAction(ctx context.Context, input *SubmitActionInput) (*SubmitActionOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	encounter, character, err := o.submissionContext(ctx, input.CampaignID, input.CharacterID)
	if err != nil {
		return nil, err
	}
	if err := o.checkTurnHolder(encounter, character.ID); err != nil {
		return nil, err
	}

	var (
		action       dnd5e.Action
		interactions []dnd5e.Interaction
		violations   []dnd5e.Violation
	)
	switch input.Action.Type {
	case dnd5e.ActionKindAttack:
		action, interactions, violations, err = o.submitAttack(ctx, input.CampaignID, encounter, character, input.Action.Attack)
	case dnd5e.ActionKindCastSpell:
		action, interactions, violations, err = o.submitCast(ctx, character, input.Action.CastSpell)
	default:
		return nil, errors.Unimplemented("action type not supported yet: " + string(input.Action.Type))
	}
	if err != nil {
		return nil, err
	}

	legality, err := gateViolations(violations, input.IgnoreViolations)
	if err != nil {
		return nil, err
	}

	operation := o.newOperation(encounter, character.ID)
	operation.Type = dnd5e.ActionOperation(action)
	operation.Interactions = interactions
	operation.Legality = legality

	created, err := o.operationRepo.Create(ctx, operations.CreateInput{Operation: operation})
	if err != nil {
		return nil, err
	}

	slog.Info("action submitted",
		"operation_id", operation.ID,
		"character_id", character.ID,
		"action_type", action.Type,
		"interaction_count", len(interactions),
		"legality", operation.Legality.Type,
	)

	return &SubmitActionOutput{Operation: created.Operation}, nil
}

func (o *orchestrator) SubmitRoll(ctx context.Context, input *SubmitRollInput) (*SubmitRollOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.RollType != dnd5e.RollTypeInitiative {
		return nil, errors.InvalidArgumentf("only %s rolls can be submitted directly", dnd5e.RollTypeInitiative)
	}

	encounter, character, err := o.submissionContext(ctx, input.CampaignID, input.CharacterID)
	if err != nil {
		return nil, err
	}

	already, err := o.hasInitiativeRoll(ctx, encounter.ID, character.ID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, errors.AlreadyExistsf("character %s has already rolled initiative for encounter %s", character.ID, encounter.ID)
	}

	die, err := o.roller.Roll(1, 20)
	if err != nil {
		return nil, err
	}
	result := die + character.Stats.Initiative

	operation := o.newOperation(encounter, character.ID)
	operation.Type = dnd5e.RollOperation(dnd5e.RollTypeInitiative, result)
	operation.Legality = dnd5e.Legal()

	created, err := o.operationRepo.Create(ctx, operations.CreateInput{Operation: operation})
	if err != nil {
		return nil, err
	}

	slog.Info("initiative rolled",
		"operation_id", operation.ID,
		"character_id", character.ID,
		"result", result,
	)

	return &SubmitRollOutput{Operation: created.Operation}, nil
}

func (o *orchestrator) SubmitInteractionResult(ctx context.Context, input *SubmitInteractionResultInput) (*SubmitInteractionResultOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	fetched, err := o.operationRepo.Get(ctx, operations.GetInput{
		CampaignID:  input.CampaignID,
		OperationID: input.OperationID,
	})
	if err != nil {
		return nil, err
	}
	operation := fetched.Operation

	_, interaction := operation.FindInteraction(input.InteractionID)
	if interaction == nil {
		return nil, errors.NotFoundf("interaction with ID %s not found on operation %s", input.InteractionID, operation.ID)
	}
	if interaction.CharacterID != input.CharacterID {
		return nil, errors.FailedPreconditionf("interaction %s belongs to character %s", interaction.ID, interaction.CharacterID)
	}
	if interaction.Result != nil {
		return nil, errors.FailedPreconditionf("interaction %s already has a result", interaction.ID)
	}

	newInteractions, err := o.resolveInteraction(ctx, input.CampaignID, operation, interaction, input.Result)
	if err != nil {
		return nil, err
	}

	resolved, err := o.operationRepo.ResolveInteraction(ctx, operations.ResolveInteractionInput{
		Operation:       operation,
		InteractionID:   interaction.ID,
		Result:          input.Result,
		NewInteractions: newInteractions,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("interaction resolved",
		"operation_id", operation.ID,
		"interaction_id", interaction.ID,
		"roll_type", interaction.RollType,
		"result", input.Result,
		"new_interactions", len(newInteractions),
	)

	return &SubmitInteractionResultOutput{Operation: resolved.Operation}, nil
}

func (o *orchestrator) ApproveOperation(ctx context.Context, input *ApproveOperationInput) (*ApproveOperationOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	fetched, err := o.operationRepo.Get(ctx, operations.GetInput{
		CampaignID:  input.CampaignID,
		OperationID: input.OperationID,
	})
	if err != nil {
		return nil, err
	}
	operation := fetched.Operation

	if !operation.Legality.IsPending() {
		return nil, errors.FailedPreconditionf("operation %s is not pending review", operation.ID)
	}

	updated, err := o.operationRepo.UpdateLegality(ctx, operations.UpdateLegalityInput{
		Operation: operation,
		Legality:  dnd5e.IllegalApproved(operation.Legality.Violations),
	})
	if err != nil {
		return nil, err
	}

	slog.Info("operation approved", "operation_id", operation.ID)

	return &ApproveOperationOutput{Operation: updated.Operation}, nil
}

func (o *orchestrator) RejectOperation(ctx context.Context, input *RejectOperationInput) (*RejectOperationOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	fetched, err := o.operationRepo.Get(ctx, operations.GetInput{
		CampaignID:  input.CampaignID,
		OperationID: input.OperationID,
	})
	if err != nil {
		return nil, err
	}
	operation := fetched.Operation

	if !operation.Legality.IsPending() {
		return nil, errors.FailedPreconditionf("operation %s is not pending review", operation.ID)
	}

	// Side effects already applied by the rejected operation stay in
	// place; only the ledger record is removed.
	if _, err := o.operationRepo.Delete(ctx, operations.DeleteInput{Operation: operation}); err != nil {
		return nil, err
	}

	slog.Info("operation rejected", "operation_id", operation.ID)

	return &RejectOperationOutput{}, nil
}

func (o *orchestrator) ListOperations(ctx context.Context, input *ListOperationsInput) (*ListOperationsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	current, err := o.encounterRepo.GetCurrentByCampaign(ctx, encounters.GetCurrentByCampaignInput{
		CampaignID: input.CampaignID,
	})
	if err != nil {
		return nil, err
	}

	listed, err := o.operationRepo.ListByEncounter(ctx, operations.ListByEncounterInput{
		EncounterID: current.Encounter.ID,
	})
	if err != nil {
		return nil, err
	}

	return &ListOperationsOutput{Operations: listed.Operations}, nil
}

func (o *orchestrator) GetOperation(ctx context.Context, input *GetOperationInput) (*GetOperationOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	fetched, err := o.operationRepo.Get(ctx, operations.GetInput{
		CampaignID:  input.CampaignID,
		OperationID: input.OperationID,
	})
	if err != nil {
		return nil, err
	}

	return &GetOperationOutput{Operation: fetched.Operation}, nil
}

// submissionContext fetches the campaign's current encounter and the
// acting character, and checks encounter membership.
func (o *orchestrator) submissionContext(ctx context.Context, campaignID, characterID string) (*dnd5e.Encounter, *dnd5e.Character, error) {
	current, err := o.encounterRepo.GetCurrentByCampaign(ctx, encounters.GetCurrentByCampaignInput{
		CampaignID: campaignID,
	})
	if err != nil {
		return nil, nil, err
	}
	encounter := current.Encounter

	fetched, err := o.characterRepo.Get(ctx, characters.GetInput{
		CampaignID:  campaignID,
		CharacterID: characterID,
	})
	if err != nil {
		return nil, nil, err
	}
	character := fetched.Character

	if !encounter.HasCharacter(character.ID) {
		return nil, nil, errors.FailedPreconditionf("character %s is not in encounter %s", character.ID, encounter.ID)
	}

	return encounter, character, nil
}

// checkTurnHolder enforces the turn-holder rule. It only applies while
// the encounter is mid-turn; during the initiative phase anyone may act.
func (o *orchestrator) checkTurnHolder(encounter *dnd5e.Encounter, characterID string) error {
	if _, turnHolder, ok := encounter.State.AsTurn(); ok && turnHolder != characterID {
		return errors.FailedPreconditionf("it is not character %s's turn", characterID)
	}
	return nil
}

// movedThisTurn sums the feet covered by the character's prior moves in
// the given round.
func (o *orchestrator) movedThisTurn(ctx context.Context, encounterID string, round int, characterID string) (float64, error) {
	listed, err := o.operationRepo.ListByTurn(ctx, operations.ListByTurnInput{
		EncounterID: encounterID,
		Round:       round,
		CharacterID: characterID,
	})
	if err != nil {
		return 0, err
	}

	var total float64
	for _, op := range listed.Operations {
		if move := op.Type.AsMove(); move != nil {
			total += move.Feet
		}
	}

	return total, nil
}

func (o *orchestrator) hasInitiativeRoll(ctx context.Context, encounterID, characterID string) (bool, error) {
	listed, err := o.operationRepo.ListByEncounter(ctx, operations.ListByEncounterInput{
		EncounterID: encounterID,
	})
	if err != nil {
		return false, err
	}

	for _, op := range listed.Operations {
		if op.CharacterID != characterID {
			continue
		}
		if rollType, _, ok := op.Type.AsRoll(); ok && rollType == dnd5e.RollTypeInitiative {
			return true, nil
		}
	}

	return false, nil
}

// newOperation builds an operation shell with a snapshot of the
// encounter's state at submission time.
func (o *orchestrator) newOperation(encounter *dnd5e.Encounter, characterID string) *dnd5e.Operation {
	now := o.clock.Now()
	state := encounter.State

	return &dnd5e.Operation{
		ID:             o.operationIDs.Generate(),
		CampaignID:     encounter.CampaignID,
		EncounterID:    encounter.ID,
		EncounterState: &state,
		CharacterID:    characterID,
		CreatedAt:      now,
		ModifiedAt:     now,
	}
}

// gateViolations turns the violation list into a legality, or into an
// error when the caller did not opt to override.
func gateViolations(violations []dnd5e.Violation, ignore bool) (dnd5e.Legality, error) {
	if len(violations) == 0 {
		return dnd5e.Legal(), nil
	}
	if !ignore {
		return dnd5e.Legality{}, errors.FailedPrecondition("submission violates the rules").
			WithMeta("violations", violations)
	}
	return dnd5e.IllegalPending(violations), nil
}
