// Package rules holds the stateless rule evaluators. Each check is a
// pure function of its inputs and returns zero or more violations; it
// never blocks an action by itself. Callers decide whether violations
// are fatal or advisory.
package rules

import (
	"github.com/grimoire-rpg/encounter-api/internal/entities/dnd5e"
)

// CheckMovement evaluates a proposed move against the character's
// movement budget for the current turn. alreadyMoved is the sum of
// feet covered by the character's prior moves in the same round.
func CheckMovement(characterID string, speed int, alreadyMoved, requestedFeet float64) []dnd5e.Violation {
	maximum := float64(speed)
	if alreadyMoved+requestedFeet <= maximum {
		return nil
	}

	return []dnd5e.Violation{
		dnd5e.MovementExceededViolation(characterID, maximum, alreadyMoved, requestedFeet),
	}
}

// CheckAttackRange compares the straight-line distance between attacker
// and target against the attack method's normal range. Both positions
// are required; the caller enforces that precondition before calling.
func CheckAttackRange(attackerID, targetID string, attackerPosition, targetPosition dnd5e.Position, method dnd5e.AttackMethod) []dnd5e.Violation {
	attackRange := method.NormalRange()
	currentRange := attackerPosition.Distance(targetPosition)
	if currentRange <= attackRange {
		return nil
	}

	return []dnd5e.Violation{
		dnd5e.AttackNotInRangeViolation(attackerID, targetID, attackRange, currentRange),
	}
}

// CheckSpellRange compares the distance from the caster to the target
// point against the spell's range.
func CheckSpellRange(casterID string, casterPosition, targetPosition dnd5e.Position, spell *dnd5e.Spell) []dnd5e.Violation {
	spellRange := spell.Range.Distance()
	currentRange := casterPosition.Distance(targetPosition)
	if currentRange <= spellRange {
		return nil
	}

	return []dnd5e.Violation{
		dnd5e.CastNotInRangeViolation(casterID, targetPosition, spellRange, currentRange),
	}
}
