package heading

import "math"

// Constraints bound the motion profile.
type Constraints struct {
	MaxVelocity     float64 // units/s
	MaxAcceleration float64 // units/s^2
}

// State is a point on the motion profile.
type State struct {
	Position float64
	Velocity float64
}

// TrapezoidProfile moves a setpoint toward a goal without exceeding the
// velocity and acceleration constraints, decelerating so it stops at the goal.
type TrapezoidProfile struct {
	Constraints Constraints
}

// Step advances current by dt seconds toward goal and returns the new setpoint.
// The goal is treated as a rest state.
func (p TrapezoidProfile) Step(dt float64, current, goal State) State {
	maxV := p.Constraints.MaxVelocity
	maxA := p.Constraints.MaxAcceleration
	if dt <= 0 {
		return current
	}

	remaining := goal.Position - current.Position
	if remaining == 0 && current.Velocity == 0 {
		return goal
	}

	dir := math.Copysign(1, remaining)
	// Fastest speed from which we can still stop at the goal.
	stopping := math.Sqrt(2 * maxA * math.Abs(remaining))
	desired := dir * math.Min(maxV, stopping)

	dv := math.Max(-maxA*dt, math.Min(maxA*dt, desired-current.Velocity))
	next := State{Velocity: current.Velocity + dv}
	next.Position = current.Position + (current.Velocity+next.Velocity)/2*dt

	// Crossing the goal, or settling within one step of it, lands on it.
	after := goal.Position - next.Position
	if remaining != 0 && math.Signbit(after) != math.Signbit(remaining) && after != 0 {
		return goal
	}
	if math.Abs(after) <= maxA*dt*dt && math.Abs(next.Velocity) <= maxA*dt {
		return goal
	}
	return next
}
