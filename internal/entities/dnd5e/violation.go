package dnd5e

// ViolationType tags the rule a proposal breaches
type ViolationType string

// Violation types
const (
	ViolationCharacterMovementExceeded ViolationType = "CHARACTER-MOVEMENT-EXCEEDED"
	ViolationAttackNotInRange          ViolationType = "ATTACK-NOT-IN-RANGE"
	ViolationCastNotInRange            ViolationType = "CAST-NOT-IN-RANGE"
)

// Violation is a detected rule breach with the numeric values that
// explain it. Violations never block an operation by themselves; the
// caller decides whether they are fatal or advisory.
type Violation struct {
	Type                      ViolationType              `json:"type"`
	CharacterMovementExceeded *CharacterMovementExceeded `json:"character_movement_exceeded,omitempty"`
	AttackNotInRange          *AttackNotInRange          `json:"attack_not_in_range,omitempty"`
	CastNotInRange            *CastNotInRange            `json:"cast_not_in_range,omitempty"`
}

// CharacterMovementExceeded reports a move past the movement budget
type CharacterMovementExceeded struct {
	CharacterID     string  `json:"character_id"`
	MaximumMovement float64 `json:"maximum_movement"`
	CurrentMovement float64 `json:"current_movement"`
	RequestMovement float64 `json:"request_movement"`
}

// AttackNotInRange reports an attack against a target out of reach
type AttackNotInRange struct {
	RequestCharacterID string  `json:"request_character_id"`
	TargetCharacterID  string  `json:"target_character_id"`
	AttackRange        float64 `json:"attack_range"`
	CurrentRange       float64 `json:"current_range"`
}

// CastNotInRange reports a spell cast at a point beyond its range
type CastNotInRange struct {
	RequestCharacterID string   `json:"request_character_id"`
	TargetPosition     Position `json:"target_position"`
	SpellRange         float64  `json:"spell_range"`
	CurrentRange       float64  `json:"current_range"`
}

// MovementExceededViolation builds a movement-budget violation
func MovementExceededViolation(characterID string, maximum, current, requested float64) Violation {
	return Violation{
		Type: ViolationCharacterMovementExceeded,
		CharacterMovementExceeded: &CharacterMovementExceeded{
			CharacterID:     characterID,
			MaximumMovement: maximum,
			CurrentMovement: current,
			RequestMovement: requested,
		},
	}
}

// AttackNotInRangeViolation builds an attack-range violation
func AttackNotInRangeViolation(attackerID, targetID string, attackRange, currentRange float64) Violation {
	return Violation{
		Type: ViolationAttackNotInRange,
		AttackNotInRange: &AttackNotInRange{
			RequestCharacterID: attackerID,
			TargetCharacterID:  targetID,
			AttackRange:        attackRange,
			CurrentRange:       currentRange,
		},
	}
}

// CastNotInRangeViolation builds a spell-range violation
func CastNotInRangeViolation(casterID string, target Position, spellRange, currentRange float64) Violation {
	return Violation{
		Type: ViolationCastNotInRange,
		CastNotInRange: &CastNotInRange{
			RequestCharacterID: casterID,
			TargetPosition:     target,
			SpellRange:         spellRange,
			CurrentRange:       currentRange,
		},
	}
}
