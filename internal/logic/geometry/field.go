package geometry

import "github.com/golang/geo/r2"

// 2024 field carpet, meters.
const (
	FieldLength = 16.541
	FieldWidth  = 8.211
)

// Field returns the playable area in the blue-origin frame.
func Field() r2.Rect {
	return r2.RectFromPoints(r2.Point{X: 0, Y: 0}, r2.Point{X: FieldLength, Y: FieldWidth})
}

// OnField reports whether a pose lies inside the field boundary.
func OnField(p Pose) bool {
	return Field().ContainsPoint(p.Translation())
}

// ClampToField moves a pose onto the nearest point inside the field, keeping its heading.
func ClampToField(p Pose) Pose {
	return NewPose(Field().ClampPoint(p.Translation()), p.HeadingDeg)
}
