package domain

import (
	"errors"
	"sync"
	"time"
)

// TimeEntry is a named, timed activity.
type TimeEntry struct {
	Name  string    `json:"name" yaml:"name"`
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end,omitzero" yaml:"end,omitempty"`
}

// Complete reports whether the entry has both a start and an end.
func (e TimeEntry) Complete() bool {
	return !e.Start.IsZero() && !e.End.IsZero()
}

// Duration is End-Start, or -1 while the entry is incomplete.
func (e TimeEntry) Duration() time.Duration {
	if !e.Complete() {
		return -1
	}
	return e.End.Sub(e.Start)
}

// Timer keeps time entries in the order they were started.
type Timer struct {
	mu      sync.Mutex
	entries []*TimeEntry
	now     func() time.Time
}

// NewTimer creates an empty timer.
func NewTimer() *Timer {
	return &Timer{now: time.Now}
}

// For times fn under name. The entry is closed even if fn panics.
func (t *Timer) For(name string, fn func()) (TimeEntry, error) {
	if name == "" {
		return TimeEntry{}, errors.New("timer: entry name required")
	}
	if fn == nil {
		return TimeEntry{}, ErrBlockRequired
	}

	entry := &TimeEntry{Name: name, Start: t.now()}
	t.mu.Lock()
	t.entries = append(t.entries, entry)
	t.mu.Unlock()

	func() {
		defer func() {
			t.mu.Lock()
			entry.End = t.now()
			t.mu.Unlock()
		}()
		fn()
	}()

	t.mu.Lock()
	defer t.mu.Unlock()
	return *entry, nil
}

// Entries returns a copy of all entries, oldest first.
func (t *Timer) Entries() []TimeEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]TimeEntry, len(t.entries))
	for i, e := range t.entries {
		out[i] = *e
	}
	return out
}

// Total sums the durations of all complete entries.
func (t *Timer) Total() time.Duration {
	var total time.Duration
	for _, e := range t.Entries() {
		if e.Complete() {
			total += e.Duration()
		}
	}
	return total
}
