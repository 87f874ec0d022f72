package dnd5e

import "time"

// Character is a campaign member that can participate in encounters.
// The engine mutates only Position and CurrentHitPoints, both behind
// compare-and-swap on ModifiedAt; everything else belongs to the
// character management surface.
type Character struct {
	ID               string           `json:"id"`
	CampaignID       string           `json:"campaign_id"`
	Name             string           `json:"name"`
	CreatedAt        time.Time        `json:"created_at"`
	ModifiedAt       time.Time        `json:"modified_at"`
	Stats            CharacterStats   `json:"stats"`
	Equipment        []EquipmentEntry `json:"equipment"`
	Position         *Position        `json:"position,omitempty"`
	CurrentHitPoints int              `json:"current_hit_points"`
	MaximumHitPoints int              `json:"maximum_hit_points"`
	Proficiencies    Proficiencies    `json:"proficiencies"`
}

// RecalculateArmorClass recomputes armor class from the given equipped
// items. Unarmored is 10 plus the dexterity modifier; equipped body
// armor replaces that base with its own effective armor class, and
// shields stack on top. Non-armor items are ignored. Callers resolve
// the character's equipped EquipmentEntry list to items first.
func (c *Character) RecalculateArmorClass(equipped []*Item) {
	base := 10 + c.Stats.Abilities.DexterityModifier()
	shieldBonus := 0
	for _, item := range equipped {
		if item == nil {
			continue
		}
		armor := item.Type.AsArmor()
		if armor == nil {
			continue
		}
		if armor.ArmorType == ArmorTypeShield {
			shieldBonus += armor.EffectiveArmorClass(c)
			continue
		}
		base = armor.EffectiveArmorClass(c)
	}

	c.Stats.ArmorClass = base + shieldBonus
}

// CharacterStats are the derived combat statistics of a character
type CharacterStats struct {
	Abilities        CharacterAbilities `json:"abilities"`
	Initiative       int                `json:"initiative"`
	Speed            int                `json:"speed"`
	ArmorClass       int                `json:"armor_class"`
	ProficiencyBonus int                `json:"proficiency_bonus"`
}

// DefaultCharacterStats returns the baseline stat block for a new character
func DefaultCharacterStats() CharacterStats {
	return CharacterStats{
		Abilities:        DefaultCharacterAbilities(),
		Initiative:       0,
		Speed:            30,
		ArmorClass:       10,
		ProficiencyBonus: 1,
	}
}

// CharacterAbilities are the six raw ability scores
type CharacterAbilities struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// DexterityModifier derives the dexterity modifier from the raw score
func (a CharacterAbilities) DexterityModifier() int {
	return (a.Dexterity - 10) / 2
}

// DefaultCharacterAbilities returns a flat array of 10s
func DefaultCharacterAbilities() CharacterAbilities {
	return CharacterAbilities{
		Strength:     10,
		Dexterity:    10,
		Constitution: 10,
		Intelligence: 10,
		Wisdom:       10,
		Charisma:     10,
	}
}

// EquipmentEntry links a character to an owned item
type EquipmentEntry struct {
	Equipped bool   `json:"equipped"`
	Quantity int    `json:"quantity"`
	ItemID   string `json:"item_id"`
}

// Proficiencies lists what the character is trained in
type Proficiencies struct {
	Armor        []ArmorType   `json:"armor"`
	SavingThrows []AbilityType `json:"saving_throws"`
	Skills       []SkillType   `json:"skills"`
}
