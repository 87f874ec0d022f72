package dnd5e

// RollType names the kind of die roll an interaction or roll operation
// asks for, in the wire vocabulary: INITIATIVE, HIT, DAMAGE,
// <SKILL>-CHECK, <ABILITY>-CHECK, and <ABILITY>-SAVE.
type RollType string

// Fixed roll types
const (
	RollTypeInitiative RollType = "INITIATIVE"
	RollTypeHit        RollType = "HIT"
	RollTypeDamage     RollType = "DAMAGE"
)

// SaveRoll builds the saving-throw roll type for an ability
func SaveRoll(ability AbilityType) RollType {
	return RollType(string(ability) + "-SAVE")
}

// AbilityCheckRoll builds the ability-check roll type for an ability
func AbilityCheckRoll(ability AbilityType) RollType {
	return RollType(string(ability) + "-CHECK")
}

// SkillCheckRoll builds the skill-check roll type for a skill
func SkillCheckRoll(skill SkillType) RollType {
	return RollType(string(skill) + "-CHECK")
}

// AbilityType is one of the six abilities
type AbilityType string

// Abilities
const (
	AbilityStrength     AbilityType = "STRENGTH"
	AbilityDexterity    AbilityType = "DEXTERITY"
	AbilityConstitution AbilityType = "CONSTITUTION"
	AbilityIntelligence AbilityType = "INTELLIGENCE"
	AbilityWisdom       AbilityType = "WISDOM"
	AbilityCharisma     AbilityType = "CHARISMA"
)

// SkillType is a skill a character may be proficient in
type SkillType string

// Skills
const (
	SkillAcrobatics     SkillType = "ACROBATICS"
	SkillAnimalHandling SkillType = "ANIMAL-HANDLING"
	SkillArcana         SkillType = "ARCANA"
	SkillAthletics      SkillType = "ATHLETICS"
	SkillDeception      SkillType = "DECEPTION"
	SkillHistory        SkillType = "HISTORY"
	SkillInsight        SkillType = "INSIGHT"
	SkillIntimidation   SkillType = "INTIMIDATION"
	SkillInvestigation  SkillType = "INVESTIGATION"
	SkillMedicine       SkillType = "MEDICINE"
	SkillNature         SkillType = "NATURE"
	SkillPerception     SkillType = "PERCEPTION"
	SkillPerformance    SkillType = "PERFORMANCE"
	SkillPersuasion     SkillType = "PERSUASION"
	SkillReligion       SkillType = "RELIGION"
	SkillSleightOfHand  SkillType = "SLEIGHT-OF-HAND"
	SkillStealth        SkillType = "STEALTH"
	SkillSurvival       SkillType = "SURVIVAL"
)

// Ability returns the ability a skill check rolls against
func (s SkillType) Ability() AbilityType {
	switch s {
	case SkillAthletics:
		return AbilityStrength
	case SkillAcrobatics, SkillSleightOfHand, SkillStealth:
		return AbilityDexterity
	case SkillArcana, SkillHistory, SkillInvestigation, SkillNature, SkillReligion:
		return AbilityIntelligence
	case SkillAnimalHandling, SkillInsight, SkillMedicine, SkillPerception, SkillSurvival:
		return AbilityWisdom
	default:
		return AbilityCharisma
	}
}
