// Package matchstate reports the robot's alliance.
package matchstate

import (
	"sync/atomic"

	"github.com/cybears/swerve/internal/debug"
	"github.com/cybears/swerve/internal/logic/tags"
)

// Static is an alliance set by configuration or an operator, in place of a
// field management system. Safe for concurrent use.
type Static struct {
	alliance atomic.Int32
}

// NewStatic creates a match state on a.
func NewStatic(a tags.Alliance) *Static {
	s := &Static{}
	s.alliance.Store(int32(a))
	return s
}

// Parse creates a match state from "red", "blue" or "unknown".
func Parse(name string) (*Static, error) {
	a, err := tags.ParseAlliance(name)
	if err != nil {
		return nil, err
	}
	return NewStatic(a), nil
}

// CurrentAlliance implements vision.MatchState.
func (s *Static) CurrentAlliance() tags.Alliance {
	return tags.Alliance(s.alliance.Load())
}

// Set changes the alliance.
func (s *Static) Set(a tags.Alliance) {
	if old := tags.Alliance(s.alliance.Swap(int32(a))); old != a {
		debug.Info("Alliance: %v -> %v", old, a)
	}
}
