package vision

import (
	"math"
	"testing"
	"time"

	"github.com/cybears/swerve/internal/logic/geometry"
	"github.com/cybears/swerve/internal/logic/tags"
	"github.com/cybears/swerve/internal/telemetry"
)

type fakeDetector struct {
	hasTarget bool
	id        int
	tx        float64
	estimate  PoseEstimate
}

func (f *fakeDetector) HasTarget() bool                  { return f.hasTarget }
func (f *fakeDetector) FiducialID() int                  { return f.id }
func (f *fakeDetector) HorizontalOffsetDegrees() float64 { return f.tx }
func (f *fakeDetector) PoseEstimate() PoseEstimate       { return f.estimate }

type fixedAlliance tags.Alliance

func (a fixedAlliance) CurrentAlliance() tags.Alliance { return tags.Alliance(a) }

var testConfig = Config{
	TurnKp:           0.0075,
	TurnToleranceDeg: 2,
	Period:           20 * time.Millisecond,
}

func newTestVision(d *fakeDetector, a tags.Alliance) (*Vision, *telemetry.Table) {
	tbl := telemetry.NewTable(nil)
	return New(d, fixedAlliance(a), tags.NewApproaches(), tbl, testConfig), tbl
}

func TestAllianceTargetAcquired(t *testing.T) {
	cases := []struct {
		name     string
		visible  bool
		id       int
		alliance tags.Alliance
		want     bool
	}{
		{"own speaker", true, 7, tags.Blue, true},
		{"other alliance speaker", true, 4, tags.Blue, false},
		{"red sees red", true, 4, tags.Red, true},
		{"nothing visible", false, 7, tags.Blue, false},
		{"unknown alliance fails closed", true, 7, tags.Unknown, false},
		{"unmapped tag", true, 42, tags.Red, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, _ := newTestVision(&fakeDetector{hasTarget: tc.visible, id: tc.id}, tc.alliance)
			if got := v.AllianceTargetAcquired(); got != tc.want {
				t.Errorf("AllianceTargetAcquired() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPeriodic_AcquiredTarget(t *testing.T) {
	d := &fakeDetector{hasTarget: true, id: 7, tx: 10}
	v, tbl := newTestVision(d, tags.Blue)
	v.Periodic()

	if got, _ := tbl.Get(KeyTargetFound); got != true {
		t.Errorf("%s = %v, want true", KeyTargetFound, got)
	}
	if got, _ := tbl.Get(KeyTargetName); got != "Blue Speaker" {
		t.Errorf("%s = %v, want Blue Speaker", KeyTargetName, got)
	}
	if got := v.TurnPower(); math.Abs(got+0.075) > 1e-9 {
		t.Errorf("TurnPower = %v, want -0.075", got)
	}

	want, _ := tags.NewApproaches().DesiredRobotPose(7)
	pose, ok := v.TargetPose()
	if !ok || pose != want {
		t.Errorf("TargetPose = %v, %v; want %v, true", pose, ok, want)
	}
	ht := v.HeadingTarget()
	if !ht.Valid || ht.TargetDegrees != want.HeadingDeg {
		t.Errorf("HeadingTarget = %+v, want %v valid", ht, want.HeadingDeg)
	}
	if tag := v.DetectedTag(); tag != (DetectedTag{FiducialID: 7, Valid: true}) {
		t.Errorf("DetectedTag = %+v", tag)
	}
}

func TestPeriodic_TurnPowerZeroInsideTolerance(t *testing.T) {
	for _, tx := range []float64{0, 1.5, -1.99} {
		v, _ := newTestVision(&fakeDetector{hasTarget: true, id: 7, tx: tx}, tags.Blue)
		v.Periodic()
		if got := v.TurnPower(); got != 0 {
			t.Errorf("tx=%v: TurnPower = %v, want 0", tx, got)
		}
	}
	v, _ := newTestVision(&fakeDetector{hasTarget: true, id: 7, tx: -2}, tags.Blue)
	v.Periodic()
	if got := v.TurnPower(); got <= 0 {
		t.Errorf("tx=-2 is at the tolerance edge and should still steer, got %v", got)
	}
}

func TestPeriodic_AllianceMismatch(t *testing.T) {
	d := &fakeDetector{hasTarget: true, id: 4, tx: 15}
	v, tbl := newTestVision(d, tags.Blue)
	v.Periodic()

	if v.AllianceTargetAcquired() {
		t.Error("red tag must not be acquired by blue alliance")
	}
	if got, _ := tbl.Get(KeyTargetName); got != NoTargetName {
		t.Errorf("%s = %v, want %q", KeyTargetName, got, NoTargetName)
	}
	if got := v.TurnPower(); got != 0 {
		t.Errorf("TurnPower = %v, want 0", got)
	}
	if v.HeadingTarget().Valid {
		t.Error("HeadingTarget must be invalid on mismatch")
	}
	if tag := v.DetectedTag(); !tag.Valid || tag.FiducialID != 4 {
		t.Errorf("DetectedTag should still report the visible tag, got %+v", tag)
	}
}

func TestPeriodic_LostTargetKeepsStalePoseInvalid(t *testing.T) {
	d := &fakeDetector{hasTarget: true, id: 6, tx: 5}
	v, tbl := newTestVision(d, tags.Blue)
	v.Periodic()
	first, ok := v.TargetPose()
	if !ok {
		t.Fatal("expected a target on the first cycle")
	}

	d.hasTarget = false
	v.Periodic()
	pose, ok := v.TargetPose()
	if ok {
		t.Error("TargetPose must be invalid once the target is lost")
	}
	if pose != first {
		t.Errorf("cached pose changed to %v, want %v", pose, first)
	}
	if v.HeadingTarget().Valid {
		t.Error("HeadingTarget must not reuse the stale pose")
	}
	if got, _ := tbl.Get(KeyTargetFound); got != false {
		t.Errorf("%s = %v, want false", KeyTargetFound, got)
	}
	if v.DetectedTag().Valid {
		t.Error("DetectedTag should be invalid with nothing visible")
	}
}

func TestRobotPoseEstimate(t *testing.T) {
	d := &fakeDetector{estimate: PoseEstimate{Pose: geometry.Pose{X: 0, Y: 3}, Valid: true}}
	v, _ := newTestVision(d, tags.Red)
	if got := v.RobotPoseEstimate(); !got.IsZero() {
		t.Errorf("x=0 estimate should give zero pose, got %v", got)
	}

	d.estimate = PoseEstimate{Pose: geometry.Pose{X: 3, Y: 4, HeadingDeg: 90}, LatencySeconds: 0.03, Valid: true}
	if got := v.RobotPoseEstimate(); got != d.estimate.Pose {
		t.Errorf("RobotPoseEstimate = %v, want %v", got, d.estimate.Pose)
	}
	if got := v.PoseEstimate(); got != d.estimate {
		t.Errorf("PoseEstimate = %+v, want %+v", got, d.estimate)
	}
}

func TestNew_NilSink(t *testing.T) {
	v := New(&fakeDetector{hasTarget: true, id: 7}, fixedAlliance(tags.Blue), tags.NewApproaches(), nil, testConfig)
	v.Periodic()
	if !v.HeadingTarget().Valid {
		t.Error("expected a valid heading target")
	}
}
