package gpio

import "testing"

func TestMockDriver_RemembersLevels(t *testing.T) {
	d := &MockDriver{}
	if err := d.SetupPin(18, Output); err != nil {
		t.Fatalf("SetupPin: %v", err)
	}
	if got := d.Level(18); got != Low {
		t.Errorf("initial level = %v, want Low", got)
	}
	if err := d.WritePin(18, High); err != nil {
		t.Fatalf("WritePin: %v", err)
	}
	if got, err := d.ReadPin(18); err != nil || got != High {
		t.Errorf("ReadPin = %v, %v; want High", got, err)
	}
	_ = d.WritePin(18, Low)
	if got := d.Level(18); got != Low {
		t.Errorf("level after Low = %v", got)
	}
}

func TestNewDriver_Mock(t *testing.T) {
	d, err := NewDriver(true)
	if err != nil {
		t.Fatalf("NewDriver(true): %v", err)
	}
	if _, ok := d.(*MockDriver); !ok {
		t.Errorf("NewDriver(true) = %T, want *MockDriver", d)
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestPinMode_String(t *testing.T) {
	if Input.String() != "input" || Output.String() != "output" {
		t.Errorf("got %q %q", Input, Output)
	}
}
