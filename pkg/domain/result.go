package domain

import (
	"fmt"
	"maps"
	"sync"
	"time"
)

// Status is the outcome of a run.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
	StatusError   Status = "ERROR"
)

func (s Status) rank() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusFailure:
		return 1
	case StatusError:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is one of the three statuses.
func (s Status) Valid() bool {
	return s.rank() >= 0
}

// Worse reports whether s ranks above other.
func (s Status) Worse(other Status) bool {
	return s.rank() > other.rank()
}

// Result accumulates the outcome of a run. It is safe for concurrent use.
type Result struct {
	mu       sync.Mutex
	status   Status
	config   *Config
	recorder *Recorder
	timer    *Timer
	data     map[string]any
	dataKeys []string
}

// NewResult creates a successful, empty result bound to the run's collaborators.
func NewResult(cfg *Config, rec *Recorder, timer *Timer) *Result {
	if cfg == nil {
		cfg = NewConfig()
	}
	if rec == nil {
		rec = NewRecorder(cfg.LogLevel(), nil)
	}
	if timer == nil {
		timer = NewTimer()
	}
	return &Result{
		status:   StatusSuccess,
		config:   cfg,
		recorder: rec,
		timer:    timer,
		data:     map[string]any{},
	}
}

// Status returns the current status.
func (r *Result) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Result) IsSuccess() bool { return r.Status() == StatusSuccess }
func (r *Result) IsFailure() bool { return r.Status() == StatusFailure }
func (r *Result) IsError() bool   { return r.Status() == StatusError }

// Escalate raises the status to s. Requests that would lower it are ignored.
// It reports whether the status changed.
func (r *Result) Escalate(s Status) bool {
	if !s.Valid() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !s.Worse(r.status) {
		return false
	}
	r.status = s
	return true
}

// MarkFailure escalates to FAILURE.
func (r *Result) MarkFailure() bool { return r.Escalate(StatusFailure) }

// MarkError escalates to ERROR.
func (r *Result) MarkError() bool { return r.Escalate(StatusError) }

// RecordData stores an arbitrary value in the data log. Later writes to a key win.
func (r *Result) RecordData(key string, value any) error {
	if key == "" {
		return ErrKeyRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.data[key]; !exists {
		r.dataKeys = append(r.dataKeys, key)
	}
	r.data[key] = value
	return nil
}

// Data returns a copy of the data log.
func (r *Result) Data() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.data)
}

// DataKeys returns the data log keys in first-write order.
func (r *Result) DataKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.dataKeys...)
}

func (r *Result) Config() *Config     { return r.config }
func (r *Result) Recorder() *Recorder { return r.recorder }
func (r *Result) Timer() *Timer       { return r.timer }

// Entries returns the message log.
func (r *Result) Entries() []LogEntry { return r.recorder.Entries() }

// Timings returns the time entries.
func (r *Result) Timings() []TimeEntry { return r.timer.Entries() }

// Timing is the serializable form of a TimeEntry.
type Timing struct {
	Name     string        `json:"name" yaml:"name"`
	Start    time.Time     `json:"start" yaml:"start"`
	End      time.Time     `json:"end" yaml:"end"`
	Duration time.Duration `json:"duration_ns" yaml:"duration_ns"`
}

// DataItem is one data log entry.
type DataItem struct {
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value" yaml:"value"`
}

// ResultSnapshot is the detached, serializable view of a Result used by
// renderers and stores.
type ResultSnapshot struct {
	Status  Status         `json:"status" yaml:"status"`
	Config  ConfigSnapshot `json:"config" yaml:"config"`
	Timings []Timing       `json:"timings" yaml:"timings"`
	Log     []LogEntry     `json:"log" yaml:"log"`
	Data    []DataItem     `json:"data" yaml:"data"`
}

// Snapshot captures the current state of the result.
func (r *Result) Snapshot() *ResultSnapshot {
	snap := &ResultSnapshot{
		Status: r.Status(),
		Config: r.config.Snapshot(),
		Log:    r.Entries(),
	}
	for _, e := range r.Timings() {
		snap.Timings = append(snap.Timings, Timing{
			Name:     e.Name,
			Start:    e.Start,
			End:      e.End,
			Duration: e.Duration(),
		})
	}
	data := r.Data()
	for _, k := range r.DataKeys() {
		snap.Data = append(snap.Data, DataItem{Key: k, Value: data[k]})
	}
	return snap
}

// TotalDuration sums the complete timings of the snapshot.
func (s *ResultSnapshot) TotalDuration() time.Duration {
	var total time.Duration
	for _, t := range s.Timings {
		if t.Duration > 0 {
			total += t.Duration
		}
	}
	return total
}

// Clone returns a copy that shares no slices or maps with s. Data values
// themselves are copied shallowly.
func (s *ResultSnapshot) Clone() *ResultSnapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Config.Flags = maps.Clone(s.Config.Flags)
	c.Timings = append([]Timing(nil), s.Timings...)
	c.Data = append([]DataItem(nil), s.Data...)
	c.Log = make([]LogEntry, len(s.Log))
	for i, e := range s.Log {
		e.Lines = append([]string(nil), e.Lines...)
		c.Log[i] = e
	}
	return &c
}

// DataValue returns the data log value stored under key.
func (s *ResultSnapshot) DataValue(key string) (any, bool) {
	for _, d := range s.Data {
		if d.Key == key {
			return d.Value, true
		}
	}
	return nil, false
}

func (s Status) String() string { return string(s) }

// ParseStatus parses one of SUCCESS, FAILURE, ERROR.
func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", v)
	}
	return s, nil
}
