// Package tags maps AprilTag fiducial ids to game targets and the robot pose
// to take when approaching each of them.
package tags

import (
	"sort"

	"github.com/cybears/swerve/internal/logic/geometry"
)

// UnknownTarget is the name returned for ids with no mapping.
const UnknownTarget = "Unknown"

// Target kinds on the 2024 field.
const (
	Speaker = "Speaker"
	Amp     = "Amp"
	Source  = "Source"
	Stage   = "Stage"
)

// Standoffs are how far in front of each kind of tag the robot stops, in meters.
var Standoffs = map[string]float64{
	Speaker: 1.3,
	Amp:     0.5,
	Source:  0.8,
	Stage:   0.9,
}

// Approach is everything known about one fiducial.
type Approach struct {
	ID       int
	Alliance Alliance
	Kind     string
	Tag      geometry.Pose // tag pose; heading is the tag's outward normal
	Robot    geometry.Pose // where the robot should stand, facing the tag
}

// Name is the display name, e.g. "Blue Speaker".
func (a Approach) Name() string {
	switch a.Alliance {
	case Red:
		return "Red " + a.Kind
	case Blue:
		return "Blue " + a.Kind
	}
	return a.Kind
}

type layoutEntry struct {
	id       int
	x, y     float64
	heading  float64
	alliance Alliance
	kind     string
}

// crescendo is the 2024 field layout in the blue-origin frame.
var crescendo = []layoutEntry{
	{1, 15.079, 0.246, 120, Blue, Source},
	{2, 16.185, 0.884, 120, Blue, Source},
	{3, 16.579, 4.983, 180, Red, Speaker},
	{4, 16.579, 5.548, 180, Red, Speaker},
	{5, 14.701, 8.204, 270, Red, Amp},
	{6, 1.842, 8.204, 270, Blue, Amp},
	{7, -0.038, 5.548, 0, Blue, Speaker},
	{8, -0.038, 4.983, 0, Blue, Speaker},
	{9, 0.356, 0.884, 60, Red, Source},
	{10, 1.462, 0.246, 60, Red, Source},
	{11, 11.905, 3.713, 300, Red, Stage},
	{12, 11.905, 4.498, 60, Red, Stage},
	{13, 11.220, 4.105, 180, Red, Stage},
	{14, 5.321, 4.105, 0, Blue, Stage},
	{15, 4.641, 4.498, 120, Blue, Stage},
	{16, 4.641, 3.713, 240, Blue, Stage},
}

// Approaches is a static lookup of fiducial id to target metadata.
// It is read-only after construction and safe to share.
type Approaches struct {
	byID map[int]Approach
}

// NewApproaches builds the lookup for the 2024 field.
func NewApproaches() *Approaches {
	a := &Approaches{byID: make(map[int]Approach, len(crescendo))}
	for _, e := range crescendo {
		tag := geometry.Pose{X: e.x, Y: e.y, HeadingDeg: geometry.WrapDegrees(e.heading)}
		a.byID[e.id] = Approach{
			ID:       e.id,
			Alliance: e.alliance,
			Kind:     e.kind,
			Tag:      tag,
			Robot:    standOff(tag, Standoffs[e.kind]),
		}
	}
	return a
}

// standOff places the robot dist meters out along the tag normal, facing back at it.
func standOff(tag geometry.Pose, dist float64) geometry.Pose {
	p := tag.Translation().Add(geometry.Heading(tag.HeadingDeg).Mul(dist))
	return geometry.NewPose(p, geometry.WrapDegrees(tag.HeadingDeg+180))
}

// Lookup returns the approach for id.
func (a *Approaches) Lookup(id int) (Approach, bool) {
	ap, ok := a.byID[id]
	return ap, ok
}

// TagAlliance returns the alliance that owns the tag, or Unknown if unmapped.
func (a *Approaches) TagAlliance(id int) Alliance {
	return a.byID[id].Alliance
}

// GameTargetName returns the display name of the target at id, or UnknownTarget.
func (a *Approaches) GameTargetName(id int) string {
	ap, ok := a.byID[id]
	if !ok {
		return UnknownTarget
	}
	return ap.Name()
}

// DesiredRobotPose returns where the robot should be to interact with the target at id.
func (a *Approaches) DesiredRobotPose(id int) (geometry.Pose, bool) {
	ap, ok := a.byID[id]
	return ap.Robot, ok
}

// TagPose returns the field pose of the tag itself.
func (a *Approaches) TagPose(id int) (geometry.Pose, bool) {
	ap, ok := a.byID[id]
	return ap.Tag, ok
}

// IDs returns all mapped ids in ascending order.
func (a *Approaches) IDs() []int {
	ids := make([]int, 0, len(a.byID))
	for id := range a.byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
