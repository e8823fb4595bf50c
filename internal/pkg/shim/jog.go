package shim

// Jog holds gated motion values for the three jog axes
type Jog struct {
	X, Y, Z float64
}

// MixJog multiplies shaped stick values by the trigger magnitude.
// Released trigger is a hard gate, all outputs are exactly 0 then.
// Trigger is expected in 0.0 - 1.0 range, anything at or below 0 closes the gate.
func MixJog(x, y, z, trigger float64) Jog {
	if trigger <= 0 {
		return Jog{}
	}
	return Jog{
		X: x * trigger,
		Y: y * trigger,
		Z: z * trigger,
	}
}
