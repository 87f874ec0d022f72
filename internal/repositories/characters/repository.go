// Package characters defines the interface for character persistence.
// Position and hit point updates go through compare-and-swap on the
// character's modified_at token.
package characters

import (
	"context"

	"github.com/grimoire-rpg/encounter-api/internal/entities/dnd5e"
)

// Repository defines the interface for character persistence
type Repository interface {
	// Create stores a new character and indexes it under its campaign
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if the id is taken
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a character scoped to a campaign
	// Returns errors.NotFound if the character doesn't exist in that campaign
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// ListByCampaign retrieves every character in a campaign
	ListByCampaign(ctx context.Context, input ListByCampaignInput) (*ListByCampaignOutput, error)

	// UpdatePosition sets the character's position via CAS on modified_at
	// Returns errors.Aborted on a concurrent modification
	UpdatePosition(ctx context.Context, input UpdatePositionInput) (*UpdatePositionOutput, error)

	// UpdateHitPoints sets the character's current hit points via CAS
	// Returns errors.Aborted on a concurrent modification
	UpdateHitPoints(ctx context.Context, input UpdateHitPointsInput) (*UpdateHitPointsOutput, error)
}

// CreateInput defines the input for creating a character
type CreateInput struct {
	Character *dnd5e.Character
}

// CreateOutput defines the output for creating a character
type CreateOutput struct {
	Character *dnd5e.Character
}

// GetInput defines the input for getting a character within a campaign
type GetInput struct {
	CampaignID  string
	CharacterID string
}

// GetOutput defines the output for getting a character
type GetOutput struct {
	Character *dnd5e.Character
}

// ListByCampaignInput defines the input for listing a campaign's characters
type ListByCampaignInput struct {
	CampaignID string
}

// ListByCampaignOutput defines the output for listing a campaign's characters
type ListByCampaignOutput struct {
	Characters []*dnd5e.Character
}

// UpdatePositionInput carries the fetched character and the new position.
// The character's ModifiedAt is the CAS token.
type UpdatePositionInput struct {
	Character *dnd5e.Character
	Position  dnd5e.Position
}

// UpdatePositionOutput returns the character as written
type UpdatePositionOutput struct {
	Character *dnd5e.Character
}

// UpdateHitPointsInput carries the fetched character and the new hit
// point total. The character's ModifiedAt is the CAS token.
type UpdateHitPointsInput struct {
	Character *dnd5e.Character
	HitPoints int
}

// UpdateHitPointsOutput returns the character as written
type UpdateHitPointsOutput struct {
	Character *dnd5e.Character
}
