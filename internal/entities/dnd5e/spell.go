package dnd5e

// Spell describes a castable spell from the fixed catalog
type Spell struct {
	Name          string           `json:"name"`
	Level         int              `json:"level"`
	School        MagicSchool      `json:"school"`
	CastingTime   CastingTime      `json:"casting_time"`
	Range         SpellRange       `json:"range"`
	Target        SpellTargetKind  `json:"target"`
	Components    []SpellComponent `json:"components"`
	Duration      SpellDuration    `json:"duration"`
	Concentration bool             `json:"concentration"`
	Description   string           `json:"description"`
}

// FetchSpellByName looks up a spell in the fixed catalog. The catalog
// currently defines only Fireball.
func FetchSpellByName(name string) (*Spell, bool) {
	switch name {
	case "Fireball":
		return &Spell{
			Name:        "Fireball",
			Level:       3,
			School:      MagicSchoolEvocation,
			CastingTime: ActionCastingTime(1),
			Range:       FeetRange(150.0),
			Target:      SpellTargetPosition,
			Components: []SpellComponent{
				{Type: SpellComponentVerbal},
				{Type: SpellComponentSomatic},
				{Type: SpellComponentMaterial},
			},
			Duration:      InstantaneousDuration(),
			Concentration: false,
			Description:   "A bright streak flashes to a point you choose and blossoms into flame.",
		}, true
	default:
		return nil, false
	}
}

// MagicSchool classifies a spell
type MagicSchool string

// Magic schools
const (
	MagicSchoolAbjuration    MagicSchool = "ABJURATION"
	MagicSchoolConjuration   MagicSchool = "CONJURATION"
	MagicSchoolDivination    MagicSchool = "DIVINATION"
	MagicSchoolEnchantment   MagicSchool = "ENCHANTMENT"
	MagicSchoolEvocation     MagicSchool = "EVOCATION"
	MagicSchoolIllusion      MagicSchool = "ILLUSION"
	MagicSchoolNecromancy    MagicSchool = "NECROMANCY"
	MagicSchoolTransmutation MagicSchool = "TRANSMUTATION"
)

// CastingTimeKind tags the casting time variant
type CastingTimeKind string

// Casting time kinds
const (
	CastingTimeAction      CastingTimeKind = "ACTION"
	CastingTimeBonusAction CastingTimeKind = "BONUS-ACTION"
	CastingTimeReaction    CastingTimeKind = "REACTION"
	CastingTimeMinute      CastingTimeKind = "MINUTE"
	CastingTimeHour        CastingTimeKind = "HOUR"
)

// CastingTime is a closed variant: Amount counts actions, minutes, or
// hours; Trigger describes the reaction condition.
type CastingTime struct {
	Type    CastingTimeKind `json:"type"`
	Amount  int             `json:"amount,omitempty"`
	Trigger string          `json:"trigger,omitempty"`
}

// ActionCastingTime builds an action-cost casting time
func ActionCastingTime(amount int) CastingTime {
	return CastingTime{Type: CastingTimeAction, Amount: amount}
}

// SpellRangeKind tags the spell range variant
type SpellRangeKind string

// Spell range kinds
const (
	SpellRangeFeet     SpellRangeKind = "FEET"
	SpellRangeTouch    SpellRangeKind = "TOUCH"
	SpellRangePersonal SpellRangeKind = "PERSONAL"
)

// SpellRange is a closed variant; Feet is set only for ranged spells
type SpellRange struct {
	Type SpellRangeKind `json:"type"`
	Feet float64        `json:"feet,omitempty"`
}

// FeetRange builds a ranged spell range
func FeetRange(feet float64) SpellRange {
	return SpellRange{Type: SpellRangeFeet, Feet: feet}
}

// Distance returns the reach of the spell in feet. Touch and personal
// spells reach zero feet.
func (r SpellRange) Distance() float64 {
	if r.Type == SpellRangeFeet {
		return r.Feet
	}
	return 0
}

// SpellComponentKind tags a spell component
type SpellComponentKind string

// Spell components
const (
	SpellComponentVerbal   SpellComponentKind = "VERBAL"
	SpellComponentSomatic  SpellComponentKind = "SOMATIC"
	SpellComponentMaterial SpellComponentKind = "MATERIAL"
)

// SpellComponent is one required component; Cost is the material cost
// when the component specifies one.
type SpellComponent struct {
	Type SpellComponentKind `json:"type"`
	Cost *int               `json:"cost,omitempty"`
}

// SpellDurationKind tags the spell duration variant
type SpellDurationKind string

// Spell duration kinds
const (
	SpellDurationInstantaneous SpellDurationKind = "INSTANTANEOUS"
	SpellDurationRound         SpellDurationKind = "ROUND"
	SpellDurationMinute        SpellDurationKind = "MINUTE"
	SpellDurationHour          SpellDurationKind = "HOUR"
	SpellDurationDay           SpellDurationKind = "DAY"
)

// SpellDuration is a closed variant; Amount is unset for instantaneous
type SpellDuration struct {
	Type   SpellDurationKind `json:"type"`
	Amount int               `json:"amount,omitempty"`
}

// InstantaneousDuration builds an instantaneous duration
func InstantaneousDuration() SpellDuration {
	return SpellDuration{Type: SpellDurationInstantaneous}
}
