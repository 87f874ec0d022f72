package dnd5e

import "math"

// Position is a point in 3-D space, measured in feet.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance returns the straight-line distance to other, in feet
func (p Position) Distance(other Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	dz := p.Z - other.Z

	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
