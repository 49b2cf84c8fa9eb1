package drive

import (
	"github.com/cybears/swerve/internal/debug"
	"github.com/cybears/swerve/internal/logic/heading"
	"github.com/cybears/swerve/internal/telemetry"
)

// Telemetry keys published by TeleopSwerve.
const (
	KeyMode     = "drive/Mode"
	KeyYaw      = "drive/Yaw"
	KeyRotation = "drive/RotationRadPerSec"
	KeySpeed    = "drive/SpeedMps"
)

// InputSource is polled once per cycle for the driver's inputs.
type InputSource interface {
	Poll() ControlInputs
}

// Buttons are maintenance presses since the previous poll.
type Buttons struct {
	ZeroGyro     bool
	ResetModules bool
}

// ButtonSource is implemented by input sources that carry maintenance buttons.
type ButtonSource interface {
	Buttons() Buttons
}

// Drivetrain is the swerve actuation layer.
type Drivetrain interface {
	Drive(cmd Command)
	YawDegrees() float64
	ResetModulesToAbsolute()
	ZeroGyro()
}

// HeadingSource supplies the auto-rotate target, typically the vision pipeline.
type HeadingSource interface {
	HeadingTarget() heading.Target
}

// TeleopSwerve is the default drive behavior: poll, synthesize, drive.
type TeleopSwerve struct {
	input   InputSource
	train   Drivetrain
	targets HeadingSource
	synth   *Synthesizer
	sink    telemetry.Sink
}

// NewTeleopSwerve wires the driver behavior. targets and sink may be nil.
func NewTeleopSwerve(in InputSource, dt Drivetrain, targets HeadingSource, s *Synthesizer, sink telemetry.Sink) *TeleopSwerve {
	if sink == nil {
		sink = telemetry.Nop{}
	}
	return &TeleopSwerve{input: in, train: dt, targets: targets, synth: s, sink: sink}
}

// Periodic runs one teleop cycle.
func (t *TeleopSwerve) Periodic() {
	in := t.input.Poll()

	if bs, ok := t.input.(ButtonSource); ok {
		b := bs.Buttons()
		if b.ZeroGyro {
			debug.Info("Zeroing gyro")
			t.train.ZeroGyro()
			// The profile tracks the old yaw frame; re-arm it on the new one.
			t.synth.Reset()
		}
		if b.ResetModules {
			debug.Info("Resetting modules to absolute")
			t.train.ResetModulesToAbsolute()
		}
	}

	var target heading.Target
	if t.targets != nil {
		target = t.targets.HeadingTarget()
	}

	yaw := t.train.YawDegrees()
	cmd := t.synth.Step(in, yaw, target)
	t.train.Drive(cmd)

	t.sink.Publish(KeyMode, t.synth.Mode().String())
	t.sink.Publish(KeyYaw, yaw)
	t.sink.Publish(KeyRotation, cmd.RotationRadPerSec)
	t.sink.Publish(KeySpeed, cmd.Translation.Norm())
}

// Synthesizer returns the underlying state machine.
func (t *TeleopSwerve) Synthesizer() *Synthesizer {
	return t.synth
}
