// Package drive turns driver inputs and an optional heading target into a
// swerve velocity command once per control cycle.
package drive

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/cybears/swerve/internal/debug"
	"github.com/cybears/swerve/internal/logic/deadband"
	"github.com/cybears/swerve/internal/logic/heading"
)

// ControlInputs are the driver's axes and switches for one cycle.
// Axes are in [-1, 1]; Translation is field +X (away from the driver), Strafe is +Y.
type ControlInputs struct {
	Translation       float64
	Strafe            float64
	Rotation          float64
	RobotCentric      bool
	SlowMode          bool
	AutoRotateEnabled bool
}

// Command is the drivetrain velocity request for one cycle.
type Command struct {
	Translation       r2.Point // m/s
	RotationRadPerSec float64
	FieldRelative     bool
	OpenLoop          bool
}

// Mode is the rotation source of the synthesizer.
type Mode int

const (
	Manual Mode = iota
	AutoRotate
)

func (m Mode) String() string {
	if m == AutoRotate {
		return "auto-rotate"
	}
	return "manual"
}

// SlowFactors scale each axis while slow mode is held.
type SlowFactors struct {
	Translation, Strafe, Rotation float64
}

// Limits configure input shaping and output scaling.
type Limits struct {
	StickDeadband         float64
	AutoRotateDeadband    float64
	Slow                  SlowFactors
	MaxSpeedMps           float64
	MaxAngularVelocityRps float64
}

// Synthesizer is the Manual / Auto-Rotate state machine. It owns the heading
// controller and resets it on every Manual to Auto-Rotate edge.
type Synthesizer struct {
	limits Limits
	ctrl   *heading.Controller
	mode   Mode
}

// NewSynthesizer creates a synthesizer in Manual mode.
func NewSynthesizer(l Limits, ctrl *heading.Controller) *Synthesizer {
	return &Synthesizer{limits: l, ctrl: ctrl}
}

// Mode returns the mode chosen on the last Step.
func (s *Synthesizer) Mode() Mode {
	return s.mode
}

// Reset drops back to Manual so the next eligible cycle re-arms the controller.
func (s *Synthesizer) Reset() {
	s.setMode(Manual)
}

// Step shapes in, picks the mode and returns the drive command for this cycle.
func (s *Synthesizer) Step(in ControlInputs, yawDeg float64, target heading.Target) Command {
	l := s.limits
	translation := deadband.Apply(in.Translation, l.StickDeadband)
	strafe := deadband.Apply(in.Strafe, l.StickDeadband)
	rotation := deadband.Apply(in.Rotation, l.StickDeadband)

	if in.SlowMode {
		translation = deadband.SlowMode(translation, l.Slow.Translation)
		strafe = deadband.SlowMode(strafe, l.Slow.Strafe)
		rotation = deadband.SlowMode(rotation, l.Slow.Rotation)
	}

	// Exactly at the auto-rotate deadband the driver keeps control.
	eligible := math.Abs(rotation) < l.AutoRotateDeadband && in.AutoRotateEnabled && target.Valid
	if eligible {
		if s.mode != AutoRotate {
			s.ctrl.Reset()
			s.setMode(AutoRotate)
		}
		rotation = s.ctrl.Calculate(yawDeg, target.TargetDegrees)
	} else {
		s.setMode(Manual)
	}

	return Command{
		Translation:       r2.Point{X: translation, Y: strafe}.Mul(l.MaxSpeedMps),
		RotationRadPerSec: rotation * l.MaxAngularVelocityRps,
		FieldRelative:     !in.RobotCentric,
		OpenLoop:          false,
	}
}

func (s *Synthesizer) setMode(m Mode) {
	if s.mode == m {
		return
	}
	debug.Mode(s.mode.String(), m.String())
	s.mode = m
}
