// Package vision turns fiducial detections into alliance-checked targets:
// a turn-to-target power, a desired robot pose and a heading target.
package vision

import (
	"math"
	"time"

	"github.com/felixge/pidctrl"

	"github.com/cybears/swerve/internal/debug"
	"github.com/cybears/swerve/internal/logic/geometry"
	"github.com/cybears/swerve/internal/logic/heading"
	"github.com/cybears/swerve/internal/logic/tags"
	"github.com/cybears/swerve/internal/telemetry"
)

// Telemetry keys.
const (
	KeyTargetFound = "driver/Target Found"
	KeyTargetName  = "driver/TargetName"
	KeyTurnPower   = "vision/TurnPower"
	NoTargetName   = "No Target"
)

// Detector is the fiducial camera, polled once per cycle.
type Detector interface {
	HasTarget() bool
	FiducialID() int
	HorizontalOffsetDegrees() float64
	PoseEstimate() PoseEstimate
}

// MatchState reports which alliance the robot is on.
type MatchState interface {
	CurrentAlliance() tags.Alliance
}

// DetectedTag is the fiducial the camera saw this cycle.
type DetectedTag struct {
	FiducialID int
	Valid      bool
}

// PoseEstimate is the camera's field-frame robot pose. An X of exactly 0
// means the detector had nothing to report.
type PoseEstimate struct {
	Pose           geometry.Pose
	LatencySeconds float64
	Valid          bool
}

// Config holds the turn-to-target loop settings.
type Config struct {
	TurnKp, TurnKi, TurnKd float64
	TurnToleranceDeg       float64
	Period                 time.Duration
}

// Vision is the per-cycle target pipeline. It is driven from the control loop
// goroutine only.
type Vision struct {
	detector   Detector
	match      MatchState
	approaches *tags.Approaches
	sink       telemetry.Sink
	cfg        Config

	turnPID   *pidctrl.PIDController
	acquired  bool
	lockedID  int
	tag       DetectedTag
	turnPower float64

	targetPose  geometry.Pose
	targetValid bool
}

// New creates the pipeline. A nil sink discards telemetry.
func New(d Detector, m MatchState, a *tags.Approaches, sink telemetry.Sink, cfg Config) *Vision {
	if sink == nil {
		sink = telemetry.Nop{}
	}
	v := &Vision{
		detector:   d,
		match:      m,
		approaches: a,
		sink:       sink,
		cfg:        cfg,
	}
	v.resetTurnPID()
	return v
}

func (v *Vision) resetTurnPID() {
	v.turnPID = pidctrl.NewPIDController(v.cfg.TurnKp, v.cfg.TurnKi, v.cfg.TurnKd)
	v.turnPID.SetOutputLimits(-1, 1)
	v.turnPID.Set(0)
}

// Periodic refreshes the target state. Call once per control cycle.
func (v *Vision) Periodic() {
	v.tag = DetectedTag{}
	if v.detector.HasTarget() {
		v.tag = DetectedTag{FiducialID: v.detector.FiducialID(), Valid: true}
	}

	acquired := v.AllianceTargetAcquired()
	v.sink.Publish(KeyTargetFound, acquired)

	if !acquired {
		if v.acquired {
			debug.Live("Target lost")
		}
		v.acquired = false
		v.turnPower = 0
		v.targetValid = false
		v.sink.Publish(KeyTargetName, NoTargetName)
		v.sink.Publish(KeyTurnPower, 0.0)
		return
	}

	id := v.tag.FiducialID
	name := v.approaches.GameTargetName(id)
	if !v.acquired || v.lockedID != id {
		debug.Target(id, name)
		v.resetTurnPID()
	}
	v.acquired = true
	v.lockedID = id
	v.sink.Publish(KeyTargetName, name)

	v.turnPower = v.steer(v.detector.HorizontalOffsetDegrees())
	v.sink.Publish(KeyTurnPower, v.turnPower)

	v.targetPose, v.targetValid = v.approaches.DesiredRobotPose(id)
}

// steer drives the horizontal offset to zero; inside the tolerance it returns 0.
func (v *Vision) steer(tx float64) float64 {
	power := v.turnPID.UpdateDuration(tx, v.cfg.Period)
	if math.Abs(tx) < v.cfg.TurnToleranceDeg {
		return 0
	}
	return power
}

// AllianceTargetAcquired reports whether the camera sees a tag owned by our
// alliance. An unknown alliance never matches.
func (v *Vision) AllianceTargetAcquired() bool {
	if !v.detector.HasTarget() {
		return false
	}
	id := v.detector.FiducialID()
	return v.match.CurrentAlliance().Matches(v.approaches.TagAlliance(id))
}

// TargetPose returns the desired robot pose for the last acquired target.
// The pose is kept after the target is lost, but ok is false.
func (v *Vision) TargetPose() (geometry.Pose, bool) {
	return v.targetPose, v.targetValid
}

// TurnPower returns the turn-to-target command computed this cycle.
func (v *Vision) TurnPower() float64 {
	return v.turnPower
}

// HeadingTarget returns the heading to face the current target, if any.
func (v *Vision) HeadingTarget() heading.Target {
	if !v.targetValid {
		return heading.Target{}
	}
	return heading.Target{TargetDegrees: v.targetPose.HeadingDeg, Valid: true}
}

// DetectedTag returns the tag the camera saw this cycle, whichever alliance owns it.
func (v *Vision) DetectedTag() DetectedTag {
	return v.tag
}

// PoseEstimate returns the detector's raw robot pose estimate.
func (v *Vision) PoseEstimate() PoseEstimate {
	return v.detector.PoseEstimate()
}

// RobotPoseEstimate returns the camera's robot pose, or the zero pose when
// the detector has no estimate.
func (v *Vision) RobotPoseEstimate() geometry.Pose {
	est := v.detector.PoseEstimate()
	if est.Pose.X == 0 {
		return geometry.Pose{}
	}
	return est.Pose
}
