// Package fusion folds vision pose estimates into the drivetrain's pose
// estimator behind an outlier gate.
//
// Trust is binary: an estimate is either fused at full weight or dropped.
// The gate does not scale trust with distance or tag count.
package fusion

import (
	"fmt"

	"github.com/cybears/swerve/internal/debug"
	"github.com/cybears/swerve/internal/logic/geometry"
	"github.com/cybears/swerve/internal/logic/vision"
)

// Estimator is the drivetrain pose estimator.
type Estimator interface {
	EstimatedPose() geometry.Pose
	// AddVisionMeasurement fuses pose as observed at timestampSeconds.
	AddVisionMeasurement(pose geometry.Pose, timestampSeconds float64)
}

// Clock returns the current time in seconds on the estimator's timebase.
type Clock interface {
	Now() float64
}

// Verdict is the outcome of gating one estimate.
type Verdict int

const (
	Accepted   Verdict = iota
	NoEstimate         // detector reported x == 0
	Invalid            // detector flagged the estimate invalid
	Outlier            // too far from the current fused pose
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "accepted"
	case NoEstimate:
		return "no estimate"
	case Invalid:
		return "invalid"
	case Outlier:
		return "outlier"
	}
	return "unknown"
}

// Gate rejects implausible vision estimates.
type Gate struct {
	// MaxJump is the largest distance in meters between the estimate and the
	// fused pose that is still accepted. A distance equal to MaxJump passes.
	MaxJump float64
	Clock   Clock
}

// NewGate creates a gate with the given threshold and clock.
func NewGate(maxJump float64, clock Clock) *Gate {
	return &Gate{MaxJump: maxJump, Clock: clock}
}

// Check classifies est against the current fused pose without fusing it.
func (g *Gate) Check(est vision.PoseEstimate, current geometry.Pose) Verdict {
	if est.Pose.X == 0 {
		return NoEstimate
	}
	if !est.Valid {
		return Invalid
	}
	if est.Pose.DistanceTo(current) > g.MaxJump {
		return Outlier
	}
	return Accepted
}

// Apply gates est and, if accepted, fuses it into estimator backdated by its latency.
func (g *Gate) Apply(est vision.PoseEstimate, estimator Estimator) Verdict {
	current := estimator.EstimatedPose()
	verdict := g.Check(est, current)
	switch verdict {
	case Accepted:
	case Outlier:
		debug.Rejected("vision pose", fmt.Sprintf("%v is %.2f m from %v", est.Pose, est.Pose.DistanceTo(current), current))
		return verdict
	default:
		debug.Trace("fusion: %s %v (fused %v)", verdict, est.Pose, current)
		return verdict
	}

	ts := g.Clock.Now() - est.LatencySeconds
	debug.Verbose("Current robot pose:    %v", current)
	debug.Verbose("Estimated vision pose: %v", est.Pose)
	estimator.AddVisionMeasurement(est.Pose, ts)
	debug.Verbose("Corrected robot pose:  %v", estimator.EstimatedPose())
	return Accepted
}
