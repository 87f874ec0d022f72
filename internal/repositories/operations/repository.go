// Package operations defines the interface for operation persistence.
// Operations are the append-only ledger of everything players submit;
// records never change after insert except through ResolveInteraction
// and UpdateLegality, both compare-and-swap guarded, and Delete for
// rejected pending operations.
package operations

import (
	"context"

	"github.com/grimoire-rpg/encounter-api/internal/entities/dnd5e"
)

// Repository defines the interface for operation persistence
type Repository interface {
	// Create stores a new operation and indexes it under its encounter
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if the id is taken
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves an operation scoped to a campaign
	// Returns errors.NotFound if the operation doesn't exist in that campaign
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// ListByEncounter retrieves an encounter's operations in submission order
	ListByEncounter(ctx context.Context, input ListByEncounterInput) (*ListByEncounterOutput, error)

	// ListByTurn retrieves the operations whose recorded encounter state
	// snapshot matches the given round and turn-holder
	ListByTurn(ctx context.Context, input ListByTurnInput) (*ListByTurnOutput, error)

	// ResolveInteraction records an interaction's result and appends any
	// follow-up interactions in a single CAS write on modified_at
	// Returns errors.Aborted on a concurrent modification
	ResolveInteraction(ctx context.Context, input ResolveInteractionInput) (*ResolveInteractionOutput, error)

	// UpdateLegality replaces the operation's legality via CAS
	// Returns errors.Aborted on a concurrent modification
	UpdateLegality(ctx context.Context, input UpdateLegalityInput) (*UpdateLegalityOutput, error)

	// Delete removes an operation and its index entry
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)
}

// CreateInput defines the input for creating an operation
type CreateInput struct {
	Operation *dnd5e.Operation
}

// CreateOutput defines the output for creating an operation
type CreateOutput struct {
	Operation *dnd5e.Operation
}

// GetInput defines the input for getting an operation within a campaign
type GetInput struct {
	CampaignID  string
	OperationID string
}

// GetOutput defines the output for getting an operation
type GetOutput struct {
	Operation *dnd5e.Operation
}

// ListByEncounterInput defines the input for listing an encounter's operations
type ListByEncounterInput struct {
	EncounterID string
}

// ListByEncounterOutput defines the output for listing an encounter's operations
type ListByEncounterOutput struct {
	Operations []*dnd5e.Operation
}

// ListByTurnInput defines the input for listing one turn's operations
type ListByTurnInput struct {
	EncounterID string
	Round       int
	CharacterID string
}

// ListByTurnOutput defines the output for listing one turn's operations
type ListByTurnOutput struct {
	Operations []*dnd5e.Operation
}

// ResolveInteractionInput carries the fetched operation, the interaction
// to resolve, its result, and the follow-up interactions to append. The
// operation's ModifiedAt is the CAS token.
type ResolveInteractionInput struct {
	Operation       *dnd5e.Operation
	InteractionID   string
	Result          int
	NewInteractions []dnd5e.Interaction
}

// ResolveInteractionOutput returns the operation as written
type ResolveInteractionOutput struct {
	Operation *dnd5e.Operation
}

// UpdateLegalityInput carries the fetched operation and its new
// legality. The operation's ModifiedAt is the CAS token.
type UpdateLegalityInput struct {
	Operation *dnd5e.Operation
	Legality  dnd5e.Legality
}

// UpdateLegalityOutput returns the operation as written
type UpdateLegalityOutput struct {
	Operation *dnd5e.Operation
}

// DeleteInput defines the input for deleting an operation
type DeleteInput struct {
	Operation *dnd5e.Operation
}

// DeleteOutput defines the output for deleting an operation
type DeleteOutput struct{}
