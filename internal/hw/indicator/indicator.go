// Package indicator drives the driver-station-facing target-lock light.
package indicator

import (
	"fmt"

	"github.com/cybears/swerve/internal/debug"
	"github.com/cybears/swerve/internal/hw/gpio"
)

// Light is an LED on one GPIO pin, active high. Pin 0 disables it.
type Light struct {
	gpio gpio.Driver
	pin  int
	on   bool
}

// NewLight configures pin as an output and turns the light off.
func NewLight(g gpio.Driver, pin int) (*Light, error) {
	l := &Light{gpio: g, pin: pin}
	if pin == 0 {
		debug.Verbose("Indicator: no pin configured, light disabled")
		return l, nil
	}
	if err := g.SetupPin(pin, gpio.Output); err != nil {
		return nil, fmt.Errorf("indicator pin %d: %w", pin, err)
	}
	if err := g.WritePin(pin, gpio.Low); err != nil {
		return nil, fmt.Errorf("indicator pin %d: %w", pin, err)
	}
	return l, nil
}

// Set switches the light. Writes only happen on a change.
func (l *Light) Set(on bool) error {
	if l.pin == 0 || on == l.on {
		return nil
	}
	if err := l.gpio.WritePin(l.pin, gpio.Level(on)); err != nil {
		return err
	}
	l.on = on
	debug.Verbose("Indicator: pin %d -> %v", l.pin, on)
	return nil
}

// On reports the last state written.
func (l *Light) On() bool {
	return l.on
}

// LockSource reports whether an alliance target is locked.
type LockSource interface {
	AllianceTargetAcquired() bool
}

// TargetLock lights while the vision pipeline has an alliance target.
type TargetLock struct {
	light  *Light
	source LockSource
}

// NewTargetLock ties a light to a lock source.
func NewTargetLock(l *Light, src LockSource) *TargetLock {
	return &TargetLock{light: l, source: src}
}

// Periodic updates the light. GPIO errors are logged, never fatal.
func (t *TargetLock) Periodic() {
	if err := t.light.Set(t.source.AllianceTargetAcquired()); err != nil {
		debug.Error(err)
	}
}
