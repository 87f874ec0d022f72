package dnd5e

import "github.com/KirkDiggler/rpg-toolkit/core"

// Entity type tags used for id prefixes and storage keys
const (
	EntityTypeCampaign  = "CPN"
	EntityTypeCharacter = "CHR"
	EntityTypeEncounter = "ENC"
	EntityTypeOperation = "OPR"
	EntityTypeItem      = "ITM"
)

// Compile-time checks that the stored entities implement core.Entity
var (
	_ core.Entity = (*Campaign)(nil)
	_ core.Entity = (*Character)(nil)
	_ core.Entity = (*Encounter)(nil)
	_ core.Entity = (*Operation)(nil)
	_ core.Entity = (*Item)(nil)
)

// GetID returns the campaign's ID
func (c *Campaign) GetID() string { return c.ID }

// GetType returns the entity type tag
func (c *Campaign) GetType() string { return EntityTypeCampaign }

// GetID returns the character's ID
func (c *Character) GetID() string { return c.ID }

// GetType returns the entity type tag
func (c *Character) GetType() string { return EntityTypeCharacter }

// GetID returns the encounter's ID
func (e *Encounter) GetID() string { return e.ID }

// GetType returns the entity type tag
func (e *Encounter) GetType() string { return EntityTypeEncounter }

// GetID returns the operation's ID
func (o *Operation) GetID() string { return o.ID }

// GetType returns the entity type tag
func (o *Operation) GetType() string { return EntityTypeOperation }

// GetID returns the item's ID
func (i *Item) GetID() string { return i.ID }

// GetType returns the entity type tag
func (i *Item) GetType() string { return EntityTypeItem }
