// Package encounters defines the interface for encounter persistence.
// State transitions go through compare-and-swap on the encounter's
// modified_at token so two racing transitions cannot both win.
package encounters

import (
	"context"

	"github.com/grimoire-rpg/encounter-api/internal/entities/dnd5e"
)

// Repository defines the interface for encounter persistence
type Repository interface {
	// Create stores a new encounter and indexes it under its campaign
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if the id is taken
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves an encounter scoped to a campaign
	// Returns errors.NotFound if the encounter doesn't exist in that campaign
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// ListByCampaign retrieves a campaign's encounters, newest first
	ListByCampaign(ctx context.Context, input ListByCampaignInput) (*ListByCampaignOutput, error)

	// GetCurrentByCampaign retrieves the newest non-finished encounter
	// Returns errors.NotFound when the campaign has no active encounter
	GetCurrentByCampaign(ctx context.Context, input GetCurrentByCampaignInput) (*GetCurrentByCampaignOutput, error)

	// UpdateState sets the encounter state via CAS on modified_at.
	// When TurnOrder is non-nil it also overwrites the encounter's
	// character id list in the same write.
	// Returns errors.Aborted on a concurrent modification
	UpdateState(ctx context.Context, input UpdateStateInput) (*UpdateStateOutput, error)
}

// CreateInput defines the input for creating an encounter
type CreateInput struct {
	Encounter *dnd5e.Encounter
}

// CreateOutput defines the output for creating an encounter
type CreateOutput struct {
	Encounter *dnd5e.Encounter
}

// GetInput defines the input for getting an encounter within a campaign
type GetInput struct {
	CampaignID  string
	EncounterID string
}

// GetOutput defines the output for getting an encounter
type GetOutput struct {
	Encounter *dnd5e.Encounter
}

// ListByCampaignInput defines the input for listing a campaign's encounters
type ListByCampaignInput struct {
	CampaignID string
}

// ListByCampaignOutput defines the output for listing a campaign's encounters
type ListByCampaignOutput struct {
	Encounters []*dnd5e.Encounter
}

// GetCurrentByCampaignInput defines the input for the current-encounter lookup
type GetCurrentByCampaignInput struct {
	CampaignID string
}

// GetCurrentByCampaignOutput defines the output for the current-encounter lookup
type GetCurrentByCampaignOutput struct {
	Encounter *dnd5e.Encounter
}

// UpdateStateInput carries the fetched encounter, the new state, and
// optionally the turn order to overwrite character ids with. The
// encounter's ModifiedAt is the CAS token.
type UpdateStateInput struct {
	Encounter *dnd5e.Encounter
	State     dnd5e.EncounterState
	TurnOrder []string
}

// UpdateStateOutput returns the encounter as written
type UpdateStateOutput struct {
	Encounter *dnd5e.Encounter
}
