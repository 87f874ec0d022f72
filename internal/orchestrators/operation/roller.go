package operation

import (
	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/grimoire-rpg/encounter-api/internal/errors"
)

// Roller produces die rolls. Tests substitute a scripted implementation.
type Roller interface {
	// Roll rolls count dice of the given size and returns the total
	Roll(count, size int) (int, error)
}

type toolkitRoller struct{}

// NewRoller returns the default dice roller
func NewRoller() Roller {
	return &toolkitRoller{}
}

func (toolkitRoller) Roll(count, size int) (int, error) {
	roll, err := dice.NewRoll(count, size)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create dice roll")
	}

	return roll.GetValue(), nil
}
