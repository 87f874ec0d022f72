// Package items defines the interface for item catalog persistence
package items

import (
	"context"

	"github.com/grimoire-rpg/encounter-api/internal/entities/dnd5e"
)

// Repository defines the interface for item persistence
type Repository interface {
	// Create stores a new item
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if the id is taken
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves an item by ID
	// Returns errors.NotFound if the item doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)
}

// CreateInput defines the input for creating an item
type CreateInput struct {
	Item *dnd5e.Item
}

// CreateOutput defines the output for creating an item
type CreateOutput struct {
	Item *dnd5e.Item
}

// GetInput defines the input for getting an item
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting an item
type GetOutput struct {
	Item *dnd5e.Item
}
