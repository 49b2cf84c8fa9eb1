package gamepad

import (
	"testing"

	"github.com/cybears/swerve/internal/logic/drive"
)

func TestScripted_PollAndButtons(t *testing.T) {
	s := NewScripted(drive.ControlInputs{Translation: 0.5})
	if got := s.Poll(); got.Translation != 0.5 {
		t.Errorf("Poll = %+v", got)
	}
	s.Set(drive.ControlInputs{Rotation: -1, SlowMode: true})
	if got := s.Poll(); got.Rotation != -1 || !got.SlowMode || got.Translation != 0 {
		t.Errorf("Poll after Set = %+v", got)
	}

	s.PressZeroGyro()
	s.PressResetModules()
	if b := s.Buttons(); !b.ZeroGyro || !b.ResetModules {
		t.Errorf("Buttons = %+v, want both pressed", b)
	}
	if b := s.Buttons(); b != (drive.Buttons{}) {
		t.Errorf("Buttons should clear after read, got %+v", b)
	}
}

func TestKeyboard_HoldDecays(t *testing.T) {
	k := NewKeyboard(3, true)
	if !k.Press("w") {
		t.Fatal("w should be bound")
	}
	for i := 0; i < 3; i++ {
		if got := k.Poll().Translation; got != 1 {
			t.Fatalf("poll %d: translation = %v, want 1", i, got)
		}
	}
	if got := k.Poll().Translation; got != 0 {
		t.Errorf("translation after hold = %v, want 0", got)
	}
}

func TestKeyboard_Axes(t *testing.T) {
	cases := []struct {
		key  string
		want drive.ControlInputs
	}{
		{"w", drive.ControlInputs{Translation: 1}},
		{"s", drive.ControlInputs{Translation: -1}},
		{"a", drive.ControlInputs{Strafe: 1}},
		{"d", drive.ControlInputs{Strafe: -1}},
		{"q", drive.ControlInputs{Rotation: 1}},
		{"e", drive.ControlInputs{Rotation: -1}},
	}
	for _, tc := range cases {
		k := NewKeyboard(0, false)
		k.Press(tc.key)
		if got := k.Poll(); got != tc.want {
			t.Errorf("key %q: Poll = %+v, want %+v", tc.key, got, tc.want)
		}
	}
}

func TestKeyboard_SpaceCenters(t *testing.T) {
	k := NewKeyboard(0, false)
	k.Press("w")
	k.Press("q")
	k.Press(" ")
	if got := k.Poll(); got.Translation != 0 || got.Rotation != 0 {
		t.Errorf("Poll after space = %+v", got)
	}
}

func TestKeyboard_Toggles(t *testing.T) {
	k := NewKeyboard(0, true)
	k.Press("f")
	k.Press("r")
	k.Press("g")
	in := k.Poll()
	if !in.SlowMode || !in.RobotCentric || in.AutoRotateEnabled {
		t.Errorf("Poll = %+v, want slow, robot-centric, auto-rotate off", in)
	}
	slow, rc, ar := k.Toggles()
	if !slow || !rc || ar {
		t.Errorf("Toggles = %v %v %v", slow, rc, ar)
	}
}

func TestKeyboard_Buttons(t *testing.T) {
	k := NewKeyboard(0, false)
	k.Press("z")
	k.Press("x")
	if b := k.Buttons(); !b.ZeroGyro || !b.ResetModules {
		t.Errorf("Buttons = %+v", b)
	}
	if b := k.Buttons(); b.ZeroGyro || b.ResetModules {
		t.Error("buttons should be edge-triggered")
	}
}

func TestKeyboard_UnboundKey(t *testing.T) {
	if NewKeyboard(0, false).Press("p") {
		t.Error("p should not be bound")
	}
}
