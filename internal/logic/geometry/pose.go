package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Pose is a robot or target position on the field.
// X/Y are meters in the blue-origin field frame, heading is degrees CCW from +X.
type Pose struct {
	X          float64
	Y          float64
	HeadingDeg float64
}

// NewPose builds a pose from a translation and a heading.
func NewPose(t r2.Point, headingDeg float64) Pose {
	return Pose{X: t.X, Y: t.Y, HeadingDeg: headingDeg}
}

// Translation returns the position part of the pose.
func (p Pose) Translation() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// DistanceTo returns the 2D distance between two poses, ignoring heading.
func (p Pose) DistanceTo(o Pose) float64 {
	return p.Translation().Sub(o.Translation()).Norm()
}

// IsZero reports whether the pose is the origin with zero heading.
func (p Pose) IsZero() bool {
	return p == Pose{}
}

func (p Pose) String() string {
	return fmt.Sprintf("Pose(x=%.3f, y=%.3f, heading=%.1f°)", p.X, p.Y, p.HeadingDeg)
}

// WrapDegrees maps an angle into [-180, 180).
func WrapDegrees(deg float64) float64 {
	d := math.Mod(deg+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// Heading returns the unit vector pointing along deg.
func Heading(deg float64) r2.Point {
	rad := Radians(deg)
	return r2.Point{X: math.Cos(rad), Y: math.Sin(rad)}
}

// Rotate rotates v counter-clockwise by deg.
func Rotate(v r2.Point, deg float64) r2.Point {
	rad := Radians(deg)
	c, s := math.Cos(rad), math.Sin(rad)
	return r2.Point{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
}

// BearingTo returns the field-frame direction from p to target in degrees, in [-180, 180).
func (p Pose) BearingTo(target r2.Point) float64 {
	d := target.Sub(p.Translation())
	return WrapDegrees(Degrees(math.Atan2(d.Y, d.X)))
}
