package shim

import "math"

// ApplyDeadzone collapses values within the deadzone to 0 and rescales the rest,
// so the output ramps linearly from 0 at the deadzone edge to ±1.
func ApplyDeadzone(value, deadzone float64) float64 {
	if deadzone < 0 {
		deadzone = 0
	}
	if deadzone >= 1 {
		return 0
	}

	magnitude := math.Abs(value)
	if magnitude <= deadzone {
		return 0
	}

	return math.Copysign((magnitude-deadzone)/(1.0-deadzone), value)
}
