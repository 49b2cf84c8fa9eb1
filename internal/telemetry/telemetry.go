// Package telemetry is the dashboard side channel: components publish
// key/value pairs each cycle and never read them back.
package telemetry

import (
	"sort"
	"sync"
)

// Sink accepts fire-and-forget telemetry. Implementations must not block.
type Sink interface {
	Publish(key string, value any)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Publish(string, any) {}

// ChangeFunc is called after a key takes a new value.
type ChangeFunc func(key string, value any)

// Table keeps the latest value of every key. It is safe for concurrent use:
// the control loop writes while the web surface reads.
type Table struct {
	mu       sync.RWMutex
	values   map[string]any
	onChange ChangeFunc
}

// NewTable creates an empty table. onChange may be nil.
func NewTable(onChange ChangeFunc) *Table {
	return &Table{
		values:   make(map[string]any),
		onChange: onChange,
	}
}

// Publish stores value under key. onChange fires only when the value differs
// from the previous one, so steady-state cycles stay quiet.
func (t *Table) Publish(key string, value any) {
	t.mu.Lock()
	prev, seen := t.values[key]
	t.values[key] = value
	cb := t.onChange
	t.mu.Unlock()

	if cb != nil && (!seen || !equal(prev, value)) {
		cb(key, value)
	}
}

// equal compares two published values; incomparable types count as changed.
func equal(a, b any) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// Get returns the latest value for key.
func (t *Table) Get(key string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[key]
	return v, ok
}

// Snapshot returns a copy of all values.
func (t *Table) Snapshot() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]any, len(t.values))
	for k, v := range t.values {
		out[k] = v
	}
	return out
}

// Keys returns all keys in sorted order.
func (t *Table) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make([]string, 0, len(t.values))
	for k := range t.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
