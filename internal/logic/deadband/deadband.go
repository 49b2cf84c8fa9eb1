// Package deadband shapes raw joystick axes before they reach the drive code.
package deadband

import "math"

// Apply suppresses values inside the deadband and rescales the rest so the
// output is continuous at the edge: [deadband, 1] maps linearly onto [0, 1],
// sign preserved. Axis values are clamped to [-1, 1] first.
func Apply(value, deadband float64) float64 {
	value = math.Max(-1, math.Min(1, value))
	mag := math.Abs(value)
	if mag < deadband {
		return 0
	}
	if deadband >= 1 {
		return 0
	}
	return math.Copysign((mag-deadband)/(1-deadband), value)
}

// SlowMode scales an axis by factor.
func SlowMode(value, factor float64) float64 {
	return value * factor
}
