// Package dnd5e defines the entities the encounter engine operates on:
// campaigns, characters, encounters, operations, items, and spells.
package dnd5e

import "time"

// Campaign groups characters and encounters. The engine never mutates
// campaigns; it only verifies they exist and scopes lookups by them.
type Campaign struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}
