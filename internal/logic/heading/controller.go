// Package heading implements the auto-rotate heading controller: a PID loop
// whose setpoint follows a trapezoidal motion profile toward the target heading.
package heading

import (
	"math"

	"github.com/cybears/swerve/internal/debug"
	"github.com/cybears/swerve/internal/logic/geometry"
)

// Target is a desired robot heading. A zero Target is "no target".
type Target struct {
	TargetDegrees float64
	Valid         bool
}

// Gains are the PID coefficients. Error is in degrees, output is a fraction
// of the drivetrain's max angular velocity.
type Gains struct {
	Kp, Ki, Kd float64
}

// Controller is a profiled PID over heading with shortest-path wraparound.
//
// Angles are continuous: before each calculation the measurement is shifted by
// whole turns so that (current - target) lies in [-180, 180). An error of
// exactly 180° therefore always resolves to a positive (CCW) rotation.
type Controller struct {
	gains   Gains
	profile TrapezoidProfile
	period  float64

	integral  float64
	prevError float64
	setpoint  State
	primed    bool
}

// NewController creates a heading controller running every period seconds.
func NewController(g Gains, c Constraints, period float64) *Controller {
	return &Controller{
		gains:   g,
		profile: TrapezoidProfile{Constraints: c},
		period:  period,
	}
}

// Reset clears the integrator, derivative history and profile state. The next
// Calculate starts the profile from the measured heading at rest.
func (c *Controller) Reset() {
	c.integral = 0
	c.prevError = 0
	c.setpoint = State{}
	c.primed = false
	debug.Verbose("Heading controller reset")
}

// Calculate returns the rotation command in [-1, 1] that turns currentDeg toward targetDeg.
func (c *Controller) Calculate(currentDeg, targetDeg float64) float64 {
	// Work in a frame where the measurement sits within half a turn of the goal.
	measurement := targetDeg + geometry.WrapDegrees(currentDeg-targetDeg)
	goal := State{Position: targetDeg}

	if !c.primed {
		c.setpoint = State{Position: measurement}
		c.prevError = 0
		c.primed = true
	} else {
		c.setpoint.Position = measurement + geometry.WrapDegrees(c.setpoint.Position-measurement)
	}

	c.setpoint = c.profile.Step(c.period, c.setpoint, goal)

	err := c.setpoint.Position - measurement
	c.integral += err * c.period
	derivative := 0.0
	if c.period > 0 {
		derivative = (err - c.prevError) / c.period
	}
	c.prevError = err

	out := c.gains.Kp*err + c.gains.Ki*c.integral + c.gains.Kd*derivative
	out = math.Max(-1, math.Min(1, out))

	debug.Trace("heading: meas=%.2f setpoint=%.2f/%.1f goal=%.2f err=%.3f out=%.3f",
		measurement, c.setpoint.Position, c.setpoint.Velocity, targetDeg, err, out)
	return out
}

// Setpoint returns the current profile setpoint (degrees, deg/s).
func (c *Controller) Setpoint() State {
	return c.setpoint
}

// AtGoal reports whether the profile has reached the goal and the measurement
// is within toleranceDeg of it.
func (c *Controller) AtGoal(currentDeg, targetDeg, toleranceDeg float64) bool {
	return c.primed && c.setpoint.Velocity == 0 &&
		math.Abs(geometry.WrapDegrees(currentDeg-targetDeg)) <= toleranceDeg
}
