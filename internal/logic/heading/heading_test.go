package heading

import (
	"math"
	"testing"
)

const (
	testPeriod = 0.02
	epsilon    = 1e-9
)

var testConstraints = Constraints{MaxVelocity: 360, MaxAcceleration: 720}

func TestTrapezoidProfile_ReachesGoalWithinConstraints(t *testing.T) {
	p := TrapezoidProfile{Constraints: testConstraints}
	goal := State{Position: 90}
	s := State{}

	for i := 0; i < 500; i++ {
		next := p.Step(testPeriod, s, goal)
		if next == goal {
			return
		}
		if math.Abs(next.Velocity) > testConstraints.MaxVelocity+epsilon {
			t.Fatalf("step %d: velocity %v exceeds max", i, next.Velocity)
		}
		if dv := math.Abs(next.Velocity - s.Velocity); dv > testConstraints.MaxAcceleration*testPeriod+epsilon {
			t.Fatalf("step %d: velocity change %v exceeds acceleration limit", i, dv)
		}
		if next.Position > goal.Position {
			t.Fatalf("step %d: overshoot to %v", i, next.Position)
		}
		s = next
	}
	t.Fatalf("profile never reached goal, last state %+v", s)
}

func TestTrapezoidProfile_CruisesAtMaxVelocity(t *testing.T) {
	p := TrapezoidProfile{Constraints: testConstraints}
	goal := State{Position: 1000}
	s := State{}
	peak := 0.0
	for i := 0; i < 100; i++ {
		s = p.Step(testPeriod, s, goal)
		peak = math.Max(peak, s.Velocity)
	}
	if math.Abs(peak-testConstraints.MaxVelocity) > epsilon {
		t.Errorf("peak velocity = %v, want %v", peak, testConstraints.MaxVelocity)
	}
}

func TestTrapezoidProfile_NegativeDirection(t *testing.T) {
	p := TrapezoidProfile{Constraints: testConstraints}
	s := p.Step(testPeriod, State{Position: 10}, State{Position: -30})
	if s.Velocity >= 0 || s.Position >= 10 {
		t.Errorf("expected motion toward the negative goal, got %+v", s)
	}
}

func TestTrapezoidProfile_ZeroDtHolds(t *testing.T) {
	p := TrapezoidProfile{Constraints: testConstraints}
	in := State{Position: 5, Velocity: 3}
	if got := p.Step(0, in, State{Position: 50}); got != in {
		t.Errorf("Step(0) = %+v, want %+v", got, in)
	}
}

func TestController_WraparoundTakesShortPath(t *testing.T) {
	gains := Gains{Kp: 0.05}

	a := NewController(gains, testConstraints, testPeriod)
	up := a.Calculate(350, 10)

	b := NewController(gains, testConstraints, testPeriod)
	down := b.Calculate(10, 350)

	if up <= 0 {
		t.Errorf("Calculate(350, 10) = %v, want positive (through 0)", up)
	}
	if down >= 0 {
		t.Errorf("Calculate(10, 350) = %v, want negative (through 0)", down)
	}
	if math.Abs(up+down) > epsilon {
		t.Errorf("short paths should be mirror images, got %v and %v", up, down)
	}

	// The profile setpoint must move 20° worth, not 340°.
	if sp := a.Setpoint(); sp.Position < -10 || sp.Position > 10 {
		t.Errorf("setpoint %v left the 20° arc between 350 and 10", sp.Position)
	}
}

func TestController_ClosedLoopWrapsThroughZero(t *testing.T) {
	c := NewController(Gains{Kp: 0.05}, testConstraints, testPeriod)
	const maxRateDps = 600.0
	yaw := 350.0
	traveled := 0.0
	for i := 0; i < 250; i++ {
		out := c.Calculate(yaw, 10)
		step := out * maxRateDps * testPeriod
		traveled += math.Abs(step)
		yaw += step
	}
	if err := math.Abs(wrapErr(yaw, 10)); err > 0.5 {
		t.Errorf("did not settle on 10°, yaw=%v", yaw)
	}
	if traveled > 25 {
		t.Errorf("traveled %v°, expected about 20°", traveled)
	}
}

func TestController_HalfTurnTieIsPositive(t *testing.T) {
	cases := []struct {
		current, target float64
	}{
		{0, 180},
		{180, 0},
		{90, -90},
		{-45, 135},
	}
	for _, tc := range cases {
		c := NewController(Gains{Kp: 0.05}, testConstraints, testPeriod)
		if got := c.Calculate(tc.current, tc.target); got <= 0 {
			t.Errorf("Calculate(%v, %v) = %v, want positive", tc.current, tc.target, got)
		}
	}
}

func TestController_OutputClamped(t *testing.T) {
	c := NewController(Gains{Kp: 10}, testConstraints, testPeriod)
	for i := 0; i < 50; i++ {
		out := c.Calculate(0, 170)
		if out > 1 || out < -1 {
			t.Fatalf("output %v outside [-1, 1]", out)
		}
	}
	if got := c.Calculate(0, 170); got != 1 {
		t.Errorf("large error should saturate at 1, got %v", got)
	}
}

func TestController_AtTargetCommandsNothing(t *testing.T) {
	c := NewController(Gains{Kp: 0.05, Ki: 0.01}, testConstraints, testPeriod)
	for i := 0; i < 10; i++ {
		if got := c.Calculate(45, 45); got != 0 {
			t.Fatalf("Calculate(45, 45) = %v, want 0", got)
		}
	}
	if !c.AtGoal(45, 45, 1) {
		t.Error("AtGoal should be true when resting on the target")
	}
}

func TestController_ResetRestartsProfileFromRest(t *testing.T) {
	c := NewController(Gains{Kp: 0.05}, testConstraints, testPeriod)
	for i := 0; i < 10; i++ {
		c.Calculate(0, 170)
	}
	if v := c.Setpoint().Velocity; v <= testConstraints.MaxAcceleration*testPeriod {
		t.Fatalf("profile should have accelerated past one step, velocity=%v", v)
	}

	c.Reset()
	if got := c.Setpoint(); got != (State{}) {
		t.Errorf("Setpoint after Reset = %+v, want zero", got)
	}

	c.Calculate(0, 170)
	want := testConstraints.MaxAcceleration * testPeriod
	if v := c.Setpoint().Velocity; math.Abs(v-want) > epsilon {
		t.Errorf("first velocity after Reset = %v, want %v", v, want)
	}
}

func TestController_ResetClearsIntegrator(t *testing.T) {
	gains := Gains{Kp: 0.01, Ki: 0.5}
	used := NewController(gains, testConstraints, testPeriod)
	for i := 0; i < 100; i++ {
		used.Calculate(0, 90)
	}
	used.Reset()

	fresh := NewController(gains, testConstraints, testPeriod)
	if a, b := used.Calculate(30, 60), fresh.Calculate(30, 60); a != b {
		t.Errorf("after Reset output = %v, fresh controller = %v", a, b)
	}
}

func TestController_WithoutResetKeepsState(t *testing.T) {
	gains := Gains{Kp: 0.01, Ki: 0.5}
	used := NewController(gains, testConstraints, testPeriod)
	for i := 0; i < 100; i++ {
		used.Calculate(0, 90)
	}
	fresh := NewController(gains, testConstraints, testPeriod)
	if a, b := used.Calculate(30, 60), fresh.Calculate(30, 60); a == b {
		t.Errorf("accumulated state should change the output, both = %v", a)
	}
}

func wrapErr(a, b float64) float64 {
	d := math.Mod(a-b+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}
