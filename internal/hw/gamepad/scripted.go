// Package gamepad provides driver input sources: a scripted source for the
// headless robot and tests, and a keyboard source for the terminal simulator.
package gamepad

import (
	"sync"

	"github.com/cybears/swerve/internal/logic/drive"
)

var (
	_ drive.InputSource  = (*Scripted)(nil)
	_ drive.ButtonSource = (*Scripted)(nil)
)

// Scripted returns whatever inputs were last set. Safe for concurrent use.
type Scripted struct {
	mu      sync.Mutex
	in      drive.ControlInputs
	buttons drive.Buttons
}

// NewScripted creates a source holding in.
func NewScripted(in drive.ControlInputs) *Scripted {
	return &Scripted{in: in}
}

// Set replaces the held inputs.
func (s *Scripted) Set(in drive.ControlInputs) {
	s.mu.Lock()
	s.in = in
	s.mu.Unlock()
}

// PressZeroGyro queues a zero-gyro press for the next poll.
func (s *Scripted) PressZeroGyro() {
	s.mu.Lock()
	s.buttons.ZeroGyro = true
	s.mu.Unlock()
}

// PressResetModules queues a module reset press for the next poll.
func (s *Scripted) PressResetModules() {
	s.mu.Lock()
	s.buttons.ResetModules = true
	s.mu.Unlock()
}

// Poll implements drive.InputSource.
func (s *Scripted) Poll() drive.ControlInputs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.in
}

// Buttons returns and clears queued presses.
func (s *Scripted) Buttons() drive.Buttons {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.buttons
	s.buttons = drive.Buttons{}
	return b
}
