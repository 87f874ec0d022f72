// Package campaigns defines the interface for campaign persistence
package campaigns

import (
	"context"

	"github.com/grimoire-rpg/encounter-api/internal/entities/dnd5e"
)

// Repository defines the interface for campaign persistence
type Repository interface {
	// Create stores a new campaign
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if the id is taken
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a campaign by ID
	// Returns errors.NotFound if the campaign doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// List retrieves all campaigns, newest first
	List(ctx context.Context, input ListInput) (*ListOutput, error)
}

// CreateInput defines the input for creating a campaign
type CreateInput struct {
	Campaign *dnd5e.Campaign
}

// CreateOutput defines the output for creating a campaign
type CreateOutput struct {
	Campaign *dnd5e.Campaign
}

// GetInput defines the input for getting a campaign
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a campaign
type GetOutput struct {
	Campaign *dnd5e.Campaign
}

// ListInput defines the input for listing campaigns
type ListInput struct{}

// ListOutput defines the output for listing campaigns
type ListOutput struct {
	Campaigns []*dnd5e.Campaign
}
