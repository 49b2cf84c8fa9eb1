package cycle

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recorder struct {
	log *[]string
	tag string
}

func (r recorder) Periodic() { *r.log = append(*r.log, r.tag) }

func TestExecutor_StepRunsInRegistrationOrder(t *testing.T) {
	var log []string
	e := NewExecutor(20 * time.Millisecond)
	e.Register("vision", recorder{&log, "vision"})
	e.Register("fusion", recorder{&log, "fusion"})
	e.Register("drive", recorder{&log, "drive"})

	e.Step()
	e.Step()

	want := []string{"vision", "fusion", "drive", "vision", "fusion", "drive"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
	if e.Cycles() != 2 {
		t.Errorf("Cycles = %d, want 2", e.Cycles())
	}
	if names := e.Names(); len(names) != 3 || names[0] != "vision" {
		t.Errorf("Names = %v", names)
	}
}

func TestExecutor_RunStopsAfterMaxCycles(t *testing.T) {
	n := 0
	e := NewExecutor(time.Millisecond)
	e.Register("count", Func(func() { n++ }))

	if err := e.Run(context.Background(), 5); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 5 {
		t.Errorf("ran %d cycles, want 5", n)
	}
}

func TestExecutor_RunStopsOnCancel(t *testing.T) {
	e := NewExecutor(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	e.Register("cancel", Func(func() {
		if e.Cycles() == 3 {
			cancel()
		}
	}))

	err := e.Run(ctx, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if e.Cycles() < 3 {
		t.Errorf("Cycles = %d, want >= 3", e.Cycles())
	}
}

func TestExecutor_RejectsZeroPeriod(t *testing.T) {
	if err := NewExecutor(0).Run(context.Background(), 1); err == nil {
		t.Error("expected error for zero period")
	}
}

type finite struct {
	left  int
	calls int
}

func (f *finite) Periodic() {
	f.calls++
	f.left--
}

func (f *finite) Done() bool { return f.left <= 0 }

func TestHandoff(t *testing.T) {
	first := &finite{left: 2}
	then := 0
	h := &Handoff{First: first, Then: Func(func() { then++ })}
	for i := 0; i < 5; i++ {
		h.Periodic()
	}
	if first.calls != 2 || then != 3 {
		t.Errorf("first=%d then=%d, want 2 and 3", first.calls, then)
	}

	noFirst := &Handoff{Then: Func(func() { then++ })}
	noFirst.Periodic()
	if then != 4 {
		t.Errorf("Handoff without First should run Then, then=%d", then)
	}
}
