// Package encounter implements the encounter lifecycle: creation,
// the initiative phase, the transition into turns, and finishing.
package encounter

import (
	"context"
	"log/slog"
	"sort"

	"github.com/grimoire-rpg/encounter-api/internal/entities/dnd5e"
	"github.com/grimoire-rpg/encounter-api/internal/errors"
	"github.com/grimoire-rpg/encounter-api/internal/pkg/clock"
	"github.com/grimoire-rpg/encounter-api/internal/pkg/idgen"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/campaigns"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/characters"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/encounters"
	"github.com/grimoire-rpg/encounter-api/internal/repositories/operations"
)

// Service defines the interface for encounter lifecycle operations
type Service interface {
	// CreateEncounter opens a new encounter for a campaign. Fails when
	// the campaign already has a non-finished encounter or any requested
	// character is not a campaign member.
	CreateEncounter(ctx context.Context, input *CreateEncounterInput) (*CreateEncounterOutput, error)

	// ListEncounters returns a campaign's encounters, newest first
	ListEncounters(ctx context.Context, input *ListEncountersInput) (*ListEncountersOutput, error)

	// GetCurrentEncounter returns the campaign's active encounter
	GetCurrentEncounter(ctx context.Context, input *GetCurrentEncounterInput) (*GetCurrentEncounterOutput, error)

	// BeginEncounter derives the turn order from recorded initiative
	// rolls and moves the encounter into its first turn
	BeginEncounter(ctx context.Context, input *BeginEncounterInput) (*BeginEncounterOutput, error)

	// FinishEncounter moves the current encounter to its terminal state
	FinishEncounter(ctx context.Context, input *FinishEncounterInput) (*FinishEncounterOutput, error)
}

// CreateEncounterInput defines the input for creating an encounter
type CreateEncounterInput struct {
	CampaignID   string
	CharacterIDs []string
}

// CreateEncounterOutput defines the output for creating an encounter
type CreateEncounterOutput struct {
	Encounter *dnd5e.Encounter
}

// ListEncountersInput defines the input for listing encounters
type ListEncountersInput struct {
	CampaignID string
}

// ListEncountersOutput defines the output for listing encounters
type ListEncountersOutput struct {
	Encounters []*dnd5e.Encounter
}

// GetCurrentEncounterInput defines the input for the current-encounter lookup
type GetCurrentEncounterInput struct {
	CampaignID string
}

// GetCurrentEncounterOutput defines the output for the current-encounter lookup
type GetCurrentEncounterOutput struct {
	Encounter *dnd5e.Encounter
}

// BeginEncounterInput defines the input for beginning an encounter
type BeginEncounterInput struct {
	CampaignID string
}

// BeginEncounterOutput defines the output for beginning an encounter
type BeginEncounterOutput struct {
	Encounter *dnd5e.Encounter
}

// FinishEncounterInput defines the input for finishing an encounter
type FinishEncounterInput struct {
	CampaignID string
}

// FinishEncounterOutput defines the output for finishing an encounter
type FinishEncounterOutput struct {
	Encounter *dnd5e.Encounter
}

// Config holds the dependencies for the encounter orchestrator
type Config struct {
	CampaignRepo  campaigns.Repository
	CharacterRepo characters.Repository
	EncounterRepo encounters.Repository
	OperationRepo operations.Repository
	IDGenerator   idgen.Generator
	Clock         clock.Clock
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.CampaignRepo == nil {
		vb.RequiredField("CampaignRepo")
	}
	if c.CharacterRepo == nil {
		vb.RequiredField("CharacterRepo")
	}
	if c.EncounterRepo == nil {
		vb.RequiredField("EncounterRepo")
	}
	if c.OperationRepo == nil {
		vb.RequiredField("OperationRepo")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}

	return vb.Build()
}

type orchestrator struct {
	campaignRepo  campaigns.Repository
	characterRepo characters.Repository
	encounterRepo encounters.Repository
	operationRepo operations.Repository
	idGen         idgen.Generator
	clock         clock.Clock
}

// NewOrchestrator creates a new encounter orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &orchestrator{
		campaignRepo:  cfg.CampaignRepo,
		characterRepo: cfg.CharacterRepo,
		encounterRepo: cfg.EncounterRepo,
		operationRepo: cfg.OperationRepo,
		idGen:         cfg.IDGenerator,
		clock:         c,
	}, nil
}

func (o *orchestrator) CreateEncounter(ctx context.Context, input *CreateEncounterInput) (*CreateEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	if _, err := o.campaignRepo.Get(ctx, campaigns.GetInput{ID: input.CampaignID}); err != nil {
		return nil, err
	}

	// At most one active encounter per campaign
	current, err := o.encounterRepo.GetCurrentByCampaign(ctx, encounters.GetCurrentByCampaignInput{
		CampaignID: input.CampaignID,
	})
	if err != nil && !errors.IsNotFound(err) {
		return nil, err
	}
	if err == nil {
		return nil, errors.AlreadyExistsf("campaign %s already has a current encounter %s", input.CampaignID, current.Encounter.ID)
	}

	for _, characterID := range input.CharacterIDs {
		if _, err := o.characterRepo.Get(ctx, characters.GetInput{
			CampaignID:  input.CampaignID,
			CharacterID: characterID,
		}); err != nil {
			if errors.IsNotFound(err) {
				return nil, errors.FailedPreconditionf("character %s is not a member of campaign %s", characterID, input.CampaignID)
			}
			return nil, err
		}
	}

	now := o.clock.Now()
	encounter := &dnd5e.Encounter{
		ID:           o.idGen.Generate(),
		CampaignID:   input.CampaignID,
		CreatedAt:    now,
		ModifiedAt:   now,
		CharacterIDs: input.CharacterIDs,
		State:        dnd5e.InitiativeState(),
	}

	created, err := o.encounterRepo.Create(ctx, encounters.CreateInput{Encounter: encounter})
	if err != nil {
		return nil, err
	}

	slog.Info("encounter created",
		"encounter_id", encounter.ID,
		"campaign_id", input.CampaignID,
		"character_count", len(input.CharacterIDs),
	)

	return &CreateEncounterOutput{Encounter: created.Encounter}, nil
}

func (o *orchestrator) ListEncounters(ctx context.Context, input *ListEncountersInput) (*ListEncountersOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	listed, err := o.encounterRepo.ListByCampaign(ctx, encounters.ListByCampaignInput{
		CampaignID: input.CampaignID,
	})
	if err != nil {
		return nil, err
	}

	return &ListEncountersOutput{Encounters: listed.Encounters}, nil
}

func (o *orchestrator) GetCurrentEncounter(ctx context.Context, input *GetCurrentEncounterInput) (*GetCurrentEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	current, err := o.encounterRepo.GetCurrentByCampaign(ctx, encounters.GetCurrentByCampaignInput{
		CampaignID: input.CampaignID,
	})
	if err != nil {
		return nil, err
	}

	return &GetCurrentEncounterOutput{Encounter: current.Encounter}, nil
}

func (o *orchestrator) BeginEncounter(ctx context.Context, input *BeginEncounterInput) (*BeginEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	current, err := o.encounterRepo.GetCurrentByCampaign(ctx, encounters.GetCurrentByCampaignInput{
		CampaignID: input.CampaignID,
	})
	if err != nil {
		return nil, err
	}
	encounter := current.Encounter

	if encounter.State.Type != dnd5e.EncounterStateInitiative {
		return nil, errors.FailedPreconditionf("encounter %s has already begun", encounter.ID)
	}
	if len(encounter.CharacterIDs) == 0 {
		return nil, errors.FailedPreconditionf("encounter %s has no characters", encounter.ID)
	}

	initiatives, err := o.initiativeResults(ctx, encounter)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, characterID := range encounter.CharacterIDs {
		if _, ok := initiatives[characterID]; !ok {
			missing = append(missing, characterID)
		}
	}
	if len(missing) > 0 {
		return nil, errors.FailedPreconditionf("not all characters have rolled initiative for encounter %s", encounter.ID).
			WithMeta("missing_character_ids", missing)
	}

	// Descending by roll result; ties keep roster order
	turnOrder := make([]string, len(encounter.CharacterIDs))
	copy(turnOrder, encounter.CharacterIDs)
	sort.SliceStable(turnOrder, func(i, j int) bool {
		return initiatives[turnOrder[i]] > initiatives[turnOrder[j]]
	})

	updated, err := o.encounterRepo.UpdateState(ctx, encounters.UpdateStateInput{
		Encounter: encounter,
		State:     dnd5e.TurnState(0, turnOrder[0]),
		TurnOrder: turnOrder,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("encounter began",
		"encounter_id", encounter.ID,
		"campaign_id", input.CampaignID,
		"first_turn", turnOrder[0],
	)

	return &BeginEncounterOutput{Encounter: updated.Encounter}, nil
}

func (o *orchestrator) FinishEncounter(ctx context.Context, input *FinishEncounterInput) (*FinishEncounterOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	current, err := o.encounterRepo.GetCurrentByCampaign(ctx, encounters.GetCurrentByCampaignInput{
		CampaignID: input.CampaignID,
	})
	if err != nil {
		return nil, err
	}

	updated, err := o.encounterRepo.UpdateState(ctx, encounters.UpdateStateInput{
		Encounter: current.Encounter,
		State:     dnd5e.FinishedState(),
	})
	if err != nil {
		return nil, err
	}

	slog.Info("encounter finished",
		"encounter_id", current.Encounter.ID,
		"campaign_id", input.CampaignID,
	)

	return &FinishEncounterOutput{Encounter: updated.Encounter}, nil
}

// initiativeResults maps each character id to its recorded initiative
// roll for the encounter.
func (o *orchestrator) initiativeResults(ctx context.Context, encounter *dnd5e.Encounter) (map[string]int, error) {
	listed, err := o.operationRepo.ListByEncounter(ctx, operations.ListByEncounterInput{
		EncounterID: encounter.ID,
	})
	if err != nil {
		return nil, err
	}

	results := make(map[string]int)
	for _, operation := range listed.Operations {
		rollType, result, ok := operation.Type.AsRoll()
		if !ok || rollType != dnd5e.RollTypeInitiative {
			continue
		}
		results[operation.CharacterID] = result
	}

	return results, nil
}
