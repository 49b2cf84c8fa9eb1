// Package robot assembles subsystems, commands and the control loop from configuration.
package robot

import (
	"fmt"

	"github.com/golang/geo/r2"

	"github.com/cybears/swerve/internal/config"
	"github.com/cybears/swerve/internal/debug"
	"github.com/cybears/swerve/internal/hw/camera"
	"github.com/cybears/swerve/internal/hw/gamepad"
	"github.com/cybears/swerve/internal/hw/gpio"
	"github.com/cybears/swerve/internal/hw/indicator"
	"github.com/cybears/swerve/internal/hw/matchstate"
	"github.com/cybears/swerve/internal/hw/swerve"
	"github.com/cybears/swerve/internal/logic/auto"
	"github.com/cybears/swerve/internal/logic/cycle"
	"github.com/cybears/swerve/internal/logic/drive"
	"github.com/cybears/swerve/internal/logic/fusion"
	"github.com/cybears/swerve/internal/logic/geometry"
	"github.com/cybears/swerve/internal/logic/heading"
	"github.com/cybears/swerve/internal/logic/tags"
	"github.com/cybears/swerve/internal/logic/vision"
	"github.com/cybears/swerve/internal/telemetry"
)

// The camera captures from the drivetrain's pose history.
var _ camera.PoseHistory = (*swerve.SimDrivetrain)(nil)

// Pose telemetry keys.
const (
	KeyPoseX       = "odometry/X"
	KeyPoseY       = "odometry/Y"
	KeyPoseHeading = "odometry/Heading"
)

// Input is a driver input source with maintenance buttons.
type Input interface {
	drive.InputSource
	drive.ButtonSource
}

// Container owns every subsystem of one robot.
type Container struct {
	Config     *config.Config
	Telemetry  *telemetry.Table
	Approaches *tags.Approaches
	Drivetrain *swerve.SimDrivetrain
	Camera     *camera.Limelight
	Match      *matchstate.Static
	Vision     *vision.Vision
	Corrector  *fusion.Corrector
	Teleop     *drive.TeleopSwerve
	Auto       *auto.Routine
	Light      *indicator.Light
	Executor   *cycle.Executor
}

// NewInput builds the input source named by cfg.Input.Source.
func NewInput(cfg *config.Config) Input {
	if cfg.Input.Source == "keyboard" {
		return gamepad.NewKeyboard(gamepad.DefaultHoldPolls, cfg.Drive.AutoRotateEnabled)
	}
	return gamepad.NewScripted(drive.ControlInputs{
		Translation:       cfg.Input.Translation,
		Strafe:            cfg.Input.Strafe,
		Rotation:          cfg.Input.Rotation,
		AutoRotateEnabled: cfg.Drive.AutoRotateEnabled,
	})
}

// New wires a robot. onChange, if non-nil, sees every telemetry change.
// When withAuto is set the drive-forward routine runs before teleop takes over.
func New(cfg *config.Config, g gpio.Driver, in Input, onChange telemetry.ChangeFunc, withAuto bool) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	match, err := matchstate.Parse(cfg.Match.Alliance)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:     cfg,
		Telemetry:  telemetry.NewTable(onChange),
		Approaches: tags.NewApproaches(),
		Match:      match,
	}

	debug.Step(1, "Drivetrain")
	c.Drivetrain = swerve.NewSim(swerve.Config{
		Start:  geometry.NewPose(r2.Point{X: cfg.Sim.StartX, Y: cfg.Sim.StartY}, cfg.Sim.StartHeadingDeg),
		Period: cfg.Period(),
		Drift:  cfg.Sim.OdometryDrift,
	})
	debug.PrintStruct("Drive config", cfg.Drive)

	debug.Step(2, "Camera and vision")
	c.Camera = camera.NewLimelight(camera.Config{
		Name:    cfg.Vision.CameraName,
		FOVDeg:  cfg.Sim.CameraFOVDeg,
		RangeM:  cfg.Sim.CameraRangeM,
		Latency: cfg.Latency(),
		Bias:    r2.Point{X: cfg.Sim.VisionBiasX, Y: cfg.Sim.VisionBiasY},
	}, c.Drivetrain, c.Approaches)
	c.Vision = vision.New(c.Camera, c.Match, c.Approaches, c.Telemetry, vision.Config{
		TurnKp:           cfg.Vision.TurnKp,
		TurnKi:           cfg.Vision.TurnKi,
		TurnKd:           cfg.Vision.TurnKd,
		TurnToleranceDeg: cfg.Vision.TurnToleranceDeg,
		Period:           cfg.Period(),
	})
	c.Corrector = fusion.NewCorrector(c.Vision, c.Drivetrain,
		fusion.NewGate(cfg.Vision.MaxPoseJumpM, c.Drivetrain), c.Telemetry)
	debug.PrintStruct("Vision config", cfg.Vision)

	debug.Step(3, "Teleop")
	ctrl := heading.NewController(
		heading.Gains{Kp: cfg.Heading.Kp, Ki: cfg.Heading.Ki, Kd: cfg.Heading.Kd},
		heading.Constraints{MaxVelocity: cfg.Heading.MaxVelocityDps, MaxAcceleration: cfg.Heading.MaxAccelerationDps},
		cfg.PeriodSeconds(),
	)
	synth := drive.NewSynthesizer(drive.Limits{
		StickDeadband:      cfg.Drive.StickDeadband,
		AutoRotateDeadband: cfg.Drive.AutoRotateDeadband,
		Slow: drive.SlowFactors{
			Translation: cfg.Drive.SlowMode.Translation,
			Strafe:      cfg.Drive.SlowMode.Strafe,
			Rotation:    cfg.Drive.SlowMode.Rotation,
		},
		MaxSpeedMps:           cfg.Drive.MaxSpeedMps,
		MaxAngularVelocityRps: cfg.Drive.MaxAngularVelocityRps,
	}, ctrl)
	c.Teleop = drive.NewTeleopSwerve(in, c.Drivetrain, c.Vision, synth, c.Telemetry)

	debug.Step(4, "Indicator")
	light, err := indicator.NewLight(g, cfg.Indicator.Pin)
	if err != nil {
		return nil, err
	}
	c.Light = light

	handoff := &cycle.Handoff{Then: c.Teleop}
	if withAuto {
		c.Auto = auto.NewRoutine(auto.DriveForward{
			SpeedMps: cfg.Auto.SpeedMps,
			Duration: cfg.AutoDuration(),
		}, c.Drivetrain, cfg.Period())
		handoff.First = c.Auto
	}

	// Sensors first, then the consumers of this cycle's readings, physics last.
	c.Executor = cycle.NewExecutor(cfg.Period())
	c.Executor.Register("camera", c.Camera)
	c.Executor.Register("vision", c.Vision)
	c.Executor.Register("fusion", c.Corrector)
	c.Executor.Register("drive", handoff)
	c.Executor.Register("indicator", indicator.NewTargetLock(c.Light, c.Vision))
	c.Executor.Register("odometry", cycle.Func(c.publishPose))
	c.Executor.Register("physics", c.Drivetrain)
	debug.Value("Periodics", c.Executor.Names())
	return c, nil
}

func (c *Container) publishPose() {
	p := c.Drivetrain.EstimatedPose()
	c.Telemetry.Publish(KeyPoseX, p.X)
	c.Telemetry.Publish(KeyPoseY, p.Y)
	c.Telemetry.Publish(KeyPoseHeading, p.HeadingDeg)
}
