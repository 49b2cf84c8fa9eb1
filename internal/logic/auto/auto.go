// Package auto runs autonomous routines against the drivetrain.
package auto

import (
	"time"

	"github.com/golang/geo/r2"

	"github.com/cybears/swerve/internal/debug"
	"github.com/cybears/swerve/internal/logic/drive"
)

// Follower produces the drive command for a point in time of a trajectory.
// ok is false once the trajectory has finished.
type Follower interface {
	Sample(elapsed time.Duration) (cmd drive.Command, ok bool)
}

// DriveForward drives straight along field +X at a fixed speed for a duration.
type DriveForward struct {
	SpeedMps float64
	Duration time.Duration
}

// Sample implements Follower.
func (d DriveForward) Sample(elapsed time.Duration) (drive.Command, bool) {
	if elapsed < 0 || elapsed >= d.Duration {
		return drive.Command{FieldRelative: true}, false
	}
	return drive.Command{
		Translation:   r2.Point{X: d.SpeedMps},
		FieldRelative: true,
		OpenLoop:      true,
	}, true
}

// Routine feeds a follower's commands to the drivetrain, one per cycle.
type Routine struct {
	follower Follower
	train    drive.Drivetrain
	period   time.Duration

	cycles  int
	started bool
	done    bool
}

// NewRoutine creates a routine advanced by period on every Periodic call.
func NewRoutine(f Follower, dt drive.Drivetrain, period time.Duration) *Routine {
	return &Routine{follower: f, train: dt, period: period}
}

// Periodic drives one cycle of the routine. After the follower finishes it
// commands a stop once and then does nothing.
func (r *Routine) Periodic() {
	if r.done {
		return
	}
	if !r.started {
		debug.Info("Autonomous started")
		r.started = true
	}

	elapsed := time.Duration(r.cycles) * r.period
	cmd, ok := r.follower.Sample(elapsed)
	r.cycles++
	if !ok {
		r.train.Drive(drive.Command{FieldRelative: true})
		r.done = true
		debug.Info("Autonomous finished after %v", elapsed)
		return
	}
	r.train.Drive(cmd)
}

// Done reports whether the follower has finished.
func (r *Routine) Done() bool {
	return r.done
}

// Elapsed returns the routine time driven so far.
func (r *Routine) Elapsed() time.Duration {
	return time.Duration(r.cycles) * r.period
}
