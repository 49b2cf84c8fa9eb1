package tags

import (
	"fmt"
	"strings"
)

// Alliance is a match alliance color. The zero value is Unknown.
type Alliance int

const (
	Unknown Alliance = iota
	Red
	Blue
)

func (a Alliance) String() string {
	switch a {
	case Red:
		return "red"
	case Blue:
		return "blue"
	default:
		return "unknown"
	}
}

// Matches reports whether a and b are the same known alliance.
// Unknown never matches anything, including another Unknown.
func (a Alliance) Matches(b Alliance) bool {
	return a != Unknown && a == b
}

// ParseAlliance converts "red", "blue" or "unknown" (any case) to an Alliance.
func ParseAlliance(s string) (Alliance, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red":
		return Red, nil
	case "blue":
		return Blue, nil
	case "unknown", "":
		return Unknown, nil
	}
	return Unknown, fmt.Errorf("unknown alliance %q", s)
}
