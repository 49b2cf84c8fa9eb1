// Package cycle runs robot components at a fixed period on a single goroutine.
package cycle

import (
	"context"
	"fmt"
	"time"

	"github.com/cybears/swerve/internal/debug"
)

// Periodic is a component updated once per control cycle. Periodic must not block.
type Periodic interface {
	Periodic()
}

// Func adapts a function to Periodic.
type Func func()

func (f Func) Periodic() { f() }

type entry struct {
	name string
	p    Periodic
}

// Executor calls registered components in registration order, once per cycle.
// Register sensors before the components that consume them.
type Executor struct {
	period  time.Duration
	entries []entry
	cycles  uint64
	overrun uint64
}

// NewExecutor creates an executor with the given period.
func NewExecutor(period time.Duration) *Executor {
	return &Executor{period: period}
}

// Register appends p to the cycle.
func (e *Executor) Register(name string, p Periodic) {
	e.entries = append(e.entries, entry{name: name, p: p})
	debug.Verbose("cycle: registered %s (#%d)", name, len(e.entries))
}

// Names returns the registered component names in run order.
func (e *Executor) Names() []string {
	names := make([]string, len(e.entries))
	for i, en := range e.entries {
		names[i] = en.name
	}
	return names
}

// Step runs one cycle synchronously.
func (e *Executor) Step() {
	e.cycles++
	for _, en := range e.entries {
		en.p.Periodic()
	}
	debug.Cycle(e.cycles, "%d components", len(e.entries))
}

// Cycles returns the number of completed cycles.
func (e *Executor) Cycles() uint64 {
	return e.cycles
}

// Overruns returns how many cycles took longer than the period.
func (e *Executor) Overruns() uint64 {
	return e.overrun
}

// Run steps every period until ctx is cancelled or maxCycles cycles have run
// (0 = no limit). It returns ctx.Err() on cancellation and nil on reaching maxCycles.
func (e *Executor) Run(ctx context.Context, maxCycles uint64) error {
	if e.period <= 0 {
		return fmt.Errorf("cycle period must be > 0, got %v", e.period)
	}
	ticker := time.NewTicker(e.period)
	defer ticker.Stop()

	debug.Info("Control loop running every %v (%d components)", e.period, len(e.entries))
	for {
		select {
		case <-ctx.Done():
			debug.Info("Control loop stopped after %d cycles (%d overruns)", e.cycles, e.overrun)
			return ctx.Err()
		case <-ticker.C:
		}

		start := time.Now()
		e.Step()
		if took := time.Since(start); took > e.period {
			e.overrun++
			debug.Verbose("cycle %d overran: %v > %v", e.cycles, took, e.period)
		}

		if maxCycles > 0 && e.cycles >= maxCycles {
			debug.Info("Control loop finished %d cycles", e.cycles)
			return nil
		}
	}
}
