// Package swerve simulates a swerve drivetrain with a gyro, drifting wheel
// odometry and a pose estimator that accepts backdated vision measurements.
package swerve

import (
	"sync"
	"time"

	"github.com/golang/geo/r2"

	"github.com/cybears/swerve/internal/debug"
	"github.com/cybears/swerve/internal/logic/drive"
	"github.com/cybears/swerve/internal/logic/geometry"
)

// historySeconds is how far back vision measurements can be applied.
const historySeconds = 1.5

// timeEps absorbs rounding in timestamps derived from Now.
const timeEps = 1e-9

type sample struct {
	t     float64
	pose  geometry.Pose // estimate
	truth geometry.Pose
}

// Config seeds the simulation.
type Config struct {
	Start  geometry.Pose
	Period time.Duration
	// Drift is the fraction of each motion the wheel odometry misses.
	Drift float64
}

// SimDrivetrain integrates commanded chassis speeds every cycle. The mutex
// guards reads from the web surface; the control loop is the only writer.
type SimDrivetrain struct {
	mu sync.RWMutex

	period float64
	drift  float64

	now        float64
	truth      geometry.Pose
	estimate   geometry.Pose
	gyroOffset float64
	cmd        drive.Command
	history    []sample

	moduleResets int
}

// NewSim creates a drivetrain at rest at cfg.Start.
func NewSim(cfg Config) *SimDrivetrain {
	s := &SimDrivetrain{
		period:   cfg.Period.Seconds(),
		drift:    cfg.Drift,
		truth:    cfg.Start,
		estimate: cfg.Start,
	}
	s.history = append(s.history, sample{0, cfg.Start, cfg.Start})
	return s
}

// Drive latches cmd for the next physics step.
func (s *SimDrivetrain) Drive(cmd drive.Command) {
	s.mu.Lock()
	s.cmd = cmd
	s.mu.Unlock()
}

// YawDegrees returns the gyro heading, relative to the last ZeroGyro.
func (s *SimDrivetrain) YawDegrees() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return geometry.WrapDegrees(s.truth.HeadingDeg - s.gyroOffset)
}

// ZeroGyro makes the current heading read as 0.
func (s *SimDrivetrain) ZeroGyro() {
	s.mu.Lock()
	s.gyroOffset = s.truth.HeadingDeg
	h := s.gyroOffset
	s.mu.Unlock()
	debug.Live("Gyro zeroed at %.1f°", h)
}

// ResetModulesToAbsolute re-seeds the module encoders. In simulation the
// modules are always aligned, so this only counts the request.
func (s *SimDrivetrain) ResetModulesToAbsolute() {
	s.mu.Lock()
	s.moduleResets++
	s.mu.Unlock()
	debug.Live("Modules reset to absolute")
}

// ModuleResets returns how many times the modules were re-seeded.
func (s *SimDrivetrain) ModuleResets() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.moduleResets
}

// Periodic advances the simulation by one period using the latched command.
func (s *SimDrivetrain) Periodic() {
	s.mu.Lock()
	defer s.mu.Unlock()

	dt := s.period
	yaw := geometry.WrapDegrees(s.truth.HeadingDeg - s.gyroOffset)

	// Field-relative commands are resolved against the gyro, like the real robot.
	robotV := s.cmd.Translation
	if s.cmd.FieldRelative {
		robotV = geometry.Rotate(robotV, -yaw)
	}
	fieldV := geometry.Rotate(robotV, s.truth.HeadingDeg)
	move := fieldV.Mul(dt)
	turn := geometry.Degrees(s.cmd.RotationRadPerSec) * dt

	s.truth = geometry.ClampToField(geometry.NewPose(
		s.truth.Translation().Add(move),
		geometry.WrapDegrees(s.truth.HeadingDeg+turn),
	))

	// The gyro is trusted; wheels slip.
	s.estimate = geometry.NewPose(
		s.estimate.Translation().Add(move.Mul(1-s.drift)),
		s.truth.HeadingDeg,
	)

	s.now += dt
	s.record()
}

func (s *SimDrivetrain) record() {
	s.history = append(s.history, sample{s.now, s.estimate, s.truth})
	cut := 0
	for cut < len(s.history) && s.history[cut].t < s.now-historySeconds {
		cut++
	}
	s.history = s.history[cut:]
}

// Now returns simulated seconds since start.
func (s *SimDrivetrain) Now() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.now
}

// TruePose is the simulated ground truth, what a perfect camera would see.
func (s *SimDrivetrain) TruePose() geometry.Pose {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.truth
}

// TruePoseAt returns the ground truth recorded at or before t, with the time
// it was recorded. The robot sits at its start pose before the clock starts,
// so negative times resolve to the first sample while it is still held.
func (s *SimDrivetrain) TruePoseAt(t float64) (geometry.Pose, float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t < 0 {
		t = 0
	}
	i := s.sampleAt(t)
	if i < 0 {
		return geometry.Pose{}, 0, false
	}
	return s.history[i].truth, s.history[i].t, true
}

// EstimatedPose is the fused odometry and vision estimate.
func (s *SimDrivetrain) EstimatedPose() geometry.Pose {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.estimate
}

// LastCommand returns the most recent drive command.
func (s *SimDrivetrain) LastCommand() drive.Command {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cmd
}

// AddVisionMeasurement corrects the estimate with a pose observed at
// timestampSeconds. The error against the estimate recorded at that time is
// applied to every later sample, so motion since the capture is preserved.
// Measurements older than the history window are dropped.
func (s *SimDrivetrain) AddVisionMeasurement(pose geometry.Pose, timestampSeconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.sampleAt(timestampSeconds)
	if i < 0 {
		debug.Verbose("vision measurement at %.3fs is outside the pose history", timestampSeconds)
		return
	}
	correction := pose.Translation().Sub(s.history[i].pose.Translation())
	for j := i; j < len(s.history); j++ {
		s.history[j].pose = shift(s.history[j].pose, correction)
	}
	s.estimate = shift(s.estimate, correction)
}

// sampleAt returns the index of the latest sample at or before t, or -1.
func (s *SimDrivetrain) sampleAt(t float64) int {
	if len(s.history) == 0 || t < s.history[0].t-timeEps || t > s.now+timeEps {
		return -1
	}
	i := len(s.history) - 1
	for i > 0 && s.history[i].t > t+timeEps {
		i--
	}
	return i
}

func shift(p geometry.Pose, by r2.Point) geometry.Pose {
	return geometry.NewPose(p.Translation().Add(by), p.HeadingDeg)
}
