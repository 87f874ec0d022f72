package dnd5e

// Item is a weapon or piece of armor stored in the item catalog
type Item struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Weight int      `json:"weight"`
	Value  int      `json:"value"`
	Type   ItemType `json:"item_type"`
}

// ItemKind tags the item payload variant
type ItemKind string

// Item kinds
const (
	ItemKindWeapon ItemKind = "WEAPON"
	ItemKindArmor  ItemKind = "ARMOR"
)

// ItemType is a closed variant: exactly one payload is set, matching Type
type ItemType struct {
	Type   ItemKind `json:"type"`
	Weapon *Weapon  `json:"weapon,omitempty"`
	Armor  *Armor   `json:"armor,omitempty"`
}

// WeaponItemType wraps a weapon payload
func WeaponItemType(weapon Weapon) ItemType {
	return ItemType{Type: ItemKindWeapon, Weapon: &weapon}
}

// ArmorItemType wraps an armor payload
func ArmorItemType(armor Armor) ItemType {
	return ItemType{Type: ItemKindArmor, Armor: &armor}
}

// AsWeapon returns the weapon payload, or nil for non-weapons
func (t ItemType) AsWeapon() *Weapon {
	if t.Type != ItemKindWeapon {
		return nil
	}
	return t.Weapon
}

// AsArmor returns the armor payload, or nil for non-armor
func (t ItemType) AsArmor() *Armor {
	if t.Type != ItemKindArmor {
		return nil
	}
	return t.Armor
}

// Weapon describes a weapon's damage and handling properties
type Weapon struct {
	DamageAmount Dice             `json:"damage_amount"`
	DamageType   DamageType       `json:"damage_type"`
	Properties   []WeaponProperty `json:"properties"`
}

// NormalRange returns the weapon's normal attack range in feet.
// Ranged weapons (ammunition or thrown) use their listed normal range;
// melee weapons reach 5 feet, plus 5 for the reach property.
func (w *Weapon) NormalRange() float64 {
	meleeRange := 5.0
	for _, property := range w.Properties {
		switch property.Type {
		case WeaponPropertyAmmunition, WeaponPropertyThrown:
			if property.Range != nil {
				return float64(property.Range.Normal)
			}
		case WeaponPropertyReach:
			meleeRange += 5.0
		}
	}

	return meleeRange
}

// WeaponPropertyKind tags a weapon property variant
type WeaponPropertyKind string

// Weapon properties
const (
	WeaponPropertyAmmunition WeaponPropertyKind = "AMMUNITION"
	WeaponPropertyFinesse    WeaponPropertyKind = "FINESSE"
	WeaponPropertyHeavy      WeaponPropertyKind = "HEAVY"
	WeaponPropertyLight      WeaponPropertyKind = "LIGHT"
	WeaponPropertyLoading    WeaponPropertyKind = "LOADING"
	WeaponPropertyReach      WeaponPropertyKind = "REACH"
	WeaponPropertySpecial    WeaponPropertyKind = "SPECIAL"
	WeaponPropertyThrown     WeaponPropertyKind = "THROWN"
	WeaponPropertyTwoHanded  WeaponPropertyKind = "TWO-HANDED"
	WeaponPropertyVersatile  WeaponPropertyKind = "VERSATILE"
)

// WeaponProperty is a closed variant; Range is set for ammunition and
// thrown, TwoHandedDamage for versatile.
type WeaponProperty struct {
	Type            WeaponPropertyKind `json:"type"`
	Range           *Range             `json:"range,omitempty"`
	TwoHandedDamage *Dice              `json:"two_handed_damage,omitempty"`
}

// Range is a normal/long range pair in feet
type Range struct {
	Normal int `json:"normal"`
	Long   int `json:"long"`
}

// Dice is a die size used for damage rolls
type Dice string

// Die sizes
const (
	DiceD4  Dice = "D4"
	DiceD6  Dice = "D6"
	DiceD8  Dice = "D8"
	DiceD10 Dice = "D10"
	DiceD12 Dice = "D12"
	DiceD20 Dice = "D20"
)

// DamageType categorizes damage for resistances
type DamageType string

// Damage types
const (
	DamageTypeAcid        DamageType = "ACID"
	DamageTypeBludgeoning DamageType = "BLUDGEONING"
	DamageTypeCold        DamageType = "COLD"
	DamageTypeFire        DamageType = "FIRE"
	DamageTypeForce       DamageType = "FORCE"
	DamageTypeLightning   DamageType = "LIGHTNING"
	DamageTypeNecrotic    DamageType = "NECROTIC"
	DamageTypePiercing    DamageType = "PIERCING"
	DamageTypePoison      DamageType = "POISON"
	DamageTypePsychic     DamageType = "PSYCHIC"
	DamageTypeRadiant     DamageType = "RADIANT"
	DamageTypeSlashing    DamageType = "SLASHING"
	DamageTypeThunder     DamageType = "THUNDER"
)

// Armor describes a piece of armor or a shield
type Armor struct {
	BaseArmorClass      int       `json:"base_armor_class"`
	ArmorType           ArmorType `json:"armor_type"`
	StrengthRequirement *int      `json:"strength_requirement,omitempty"`
	StealthDisadvantage bool      `json:"stealth_disadvantage"`
}

// EffectiveArmorClass returns the armor class this piece contributes
// for the wearing character, applying the dexterity rules per category.
func (a *Armor) EffectiveArmorClass(character *Character) int {
	var fromDex int
	switch a.ArmorType {
	case ArmorTypeLight:
		fromDex = character.Stats.Abilities.DexterityModifier()
	case ArmorTypeMedium:
		fromDex = character.Stats.Abilities.DexterityModifier()
		if fromDex > 2 {
			fromDex = 2
		}
	case ArmorTypeHeavy, ArmorTypeShield:
		fromDex = 0
	}

	return a.BaseArmorClass + fromDex
}

// ArmorType categorizes armor for proficiency and dexterity rules
type ArmorType string

// Armor types
const (
	ArmorTypeLight  ArmorType = "LIGHT"
	ArmorTypeMedium ArmorType = "MEDIUM"
	ArmorTypeHeavy  ArmorType = "HEAVY"
	ArmorTypeShield ArmorType = "SHIELD"
)
