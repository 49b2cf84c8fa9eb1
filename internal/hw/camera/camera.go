// Package camera provides fiducial detectors for the vision pipeline.
// Limelight simulates a forward-facing AprilTag camera from a known robot pose.
package camera

import (
	"math"
	"sync"
	"time"

	"github.com/golang/geo/r2"

	"github.com/cybears/swerve/internal/debug"
	"github.com/cybears/swerve/internal/logic/geometry"
	"github.com/cybears/swerve/internal/logic/tags"
	"github.com/cybears/swerve/internal/logic/vision"
)

var _ vision.Detector = (*Limelight)(nil)

// PoseSource reports where the robot really is.
type PoseSource interface {
	TruePose() geometry.Pose
}

// PoseHistory is a PoseSource that remembers where the robot was. A camera
// backed by one captures each frame from the pose Latency ago, the way a
// real pipeline reports an image that is already old.
type PoseHistory interface {
	PoseSource
	Now() float64
	// TruePoseAt returns the pose recorded at or before t and when it was recorded.
	TruePoseAt(t float64) (geometry.Pose, float64, bool)
}

// Config describes the simulated camera.
type Config struct {
	Name    string
	FOVDeg  float64 // horizontal field of view
	RangeM  float64 // tags further than this are not detected
	Latency time.Duration
	// Bias is added to every pose estimate, to exercise the fusion gate.
	Bias r2.Point
}

type frame struct {
	visible  []int
	primary  int
	tx       float64
	estimate vision.PoseEstimate
}

// Limelight captures one frame per Periodic call. Readers between frames see
// the last capture.
type Limelight struct {
	cfg    Config
	src    PoseSource
	layout *tags.Approaches

	mu   sync.RWMutex
	last frame
}

// NewLimelight creates a simulated camera looking out of the robot's front.
func NewLimelight(cfg Config, src PoseSource, layout *tags.Approaches) *Limelight {
	return &Limelight{cfg: cfg, src: src, layout: layout}
}

// Periodic captures a frame.
func (l *Limelight) Periodic() {
	f := l.grab()
	l.mu.Lock()
	l.last = f
	l.mu.Unlock()
	if len(f.visible) > 0 {
		debug.Trace("%s: tags %v, primary %d tx=%.2f", l.cfg.Name, f.visible, f.primary, f.tx)
	}
}

// grab captures from the pose the image was taken at. The reported latency
// is measured back to that pose's timestamp, not the nominal Latency.
func (l *Limelight) grab() frame {
	h, ok := l.src.(PoseHistory)
	if !ok || l.cfg.Latency <= 0 {
		return l.capture(l.src.TruePose(), l.cfg.Latency.Seconds())
	}
	now := h.Now()
	robot, at, ok := h.TruePoseAt(now - l.cfg.Latency.Seconds())
	if !ok {
		return frame{}
	}
	return l.capture(robot, now-at)
}

func (l *Limelight) capture(robot geometry.Pose, latency float64) frame {
	var f frame
	bestOffset := math.Inf(1)
	for _, id := range l.layout.IDs() {
		tag, _ := l.layout.TagPose(id)
		rel, ok := l.sees(robot, tag)
		if !ok {
			continue
		}
		f.visible = append(f.visible, id)
		// The primary target is the one nearest the crosshair.
		if math.Abs(rel) < bestOffset {
			bestOffset = math.Abs(rel)
			f.primary = id
			f.tx = -rel // tx is positive when the tag is right of center
		}
	}
	if len(f.visible) > 0 {
		f.estimate = vision.PoseEstimate{
			Pose:           geometry.NewPose(robot.Translation().Add(l.cfg.Bias), robot.HeadingDeg),
			LatencySeconds: latency,
			Valid:          true,
		}
	}
	return f
}

// sees returns the tag's bearing relative to the robot heading when the tag
// is in range, inside the field of view and facing the camera.
func (l *Limelight) sees(robot, tag geometry.Pose) (float64, bool) {
	toTag := tag.Translation().Sub(robot.Translation())
	dist := toTag.Norm()
	if dist == 0 || dist > l.cfg.RangeM {
		return 0, false
	}
	rel := geometry.WrapDegrees(robot.BearingTo(tag.Translation()) - robot.HeadingDeg)
	if math.Abs(rel) > l.cfg.FOVDeg/2 {
		return 0, false
	}
	if geometry.Heading(tag.HeadingDeg).Dot(toTag.Mul(-1)) <= 0 {
		return 0, false
	}
	return rel, true
}

func (l *Limelight) frame() frame {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.last
}

// HasTarget reports whether any tag was seen in the last frame.
func (l *Limelight) HasTarget() bool {
	return len(l.frame().visible) > 0
}

// FiducialID returns the primary tag id, or 0 without a target.
func (l *Limelight) FiducialID() int {
	return l.frame().primary
}

// HorizontalOffsetDegrees returns the primary tag's horizontal offset.
func (l *Limelight) HorizontalOffsetDegrees() float64 {
	return l.frame().tx
}

// PoseEstimate returns the robot pose solved from the visible tags.
func (l *Limelight) PoseEstimate() vision.PoseEstimate {
	return l.frame().estimate
}

// Visible returns every tag id seen in the last frame.
func (l *Limelight) Visible() []int {
	f := l.frame()
	return append([]int(nil), f.visible...)
}
