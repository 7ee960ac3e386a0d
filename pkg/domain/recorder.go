package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// LinesKey is the attribute key whose []string value becomes the continuation
// lines of a log entry (stack traces, assertion details).
const LinesKey = "lines"

// LogEntry is one message in the run log. Lines[0] is the headline.
type LogEntry struct {
	Level Level     `json:"level" yaml:"level"`
	Time  time.Time `json:"time" yaml:"time"`
	Lines []string  `json:"lines" yaml:"lines"`
}

// Message returns the headline of the entry.
func (e LogEntry) Message() string {
	if len(e.Lines) == 0 {
		return ""
	}
	return e.Lines[0]
}

type logStore struct {
	mu      sync.Mutex
	entries []LogEntry
}

// Recorder is the message log of a single run.
//
// It implements slog.Handler: records at or above the threshold are kept in order
// as LogEntry values, and every record is also forwarded to the optional next
// handler (the operational log) when that handler is enabled for it.
// Handlers derived with WithAttrs/WithGroup share the same entry list.
type Recorder struct {
	store     *logStore
	threshold Level
	next      slog.Handler
	attrs     []string
	group     string
}

// NewRecorder creates an empty log that keeps entries at or above threshold.
// next may be nil.
func NewRecorder(threshold Level, next slog.Handler) *Recorder {
	return &Recorder{
		store:     &logStore{},
		threshold: threshold,
		next:      next,
	}
}

// Threshold returns the minimum level kept by the recorder.
func (r *Recorder) Threshold() Level {
	return r.threshold
}

// Log records a multi-line entry. It reports whether the entry passed the threshold.
func (r *Recorder) Log(level Level, lines ...string) bool {
	if len(lines) == 0 {
		return false
	}
	rec := slog.NewRecord(time.Now(), level.Slog(), lines[0], 0)
	if len(lines) > 1 {
		rec.AddAttrs(slog.Any(LinesKey, append([]string(nil), lines[1:]...)))
	}
	_ = r.Handle(context.Background(), rec)
	return level.Enabled(r.threshold)
}

// Entries returns a copy of the recorded entries, oldest first.
func (r *Recorder) Entries() []LogEntry {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]LogEntry, len(r.store.entries))
	for i, e := range r.store.entries {
		e.Lines = append([]string(nil), e.Lines...)
		out[i] = e
	}
	return out
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.entries)
}

// Enabled implements slog.Handler.
func (r *Recorder) Enabled(ctx context.Context, level slog.Level) bool {
	if LevelFromSlog(level).Enabled(r.threshold) {
		return true
	}
	return r.next != nil && r.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (r *Recorder) Handle(ctx context.Context, rec slog.Record) error {
	level := LevelFromSlog(rec.Level)
	if level.Enabled(r.threshold) {
		r.append(LogEntry{Level: level, Time: rec.Time, Lines: r.lines(rec)})
	}
	if r.next != nil && r.next.Enabled(ctx, rec.Level) {
		return r.next.Handle(ctx, rec)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := r.clone()
	for _, a := range attrs {
		c.attrs = append(c.attrs, formatAttr(c.group, a)...)
	}
	if r.next != nil {
		c.next = r.next.WithAttrs(attrs)
	}
	return c
}

// WithGroup implements slog.Handler.
func (r *Recorder) WithGroup(name string) slog.Handler {
	if name == "" {
		return r
	}
	c := r.clone()
	c.group = r.group + name + "."
	if r.next != nil {
		c.next = r.next.WithGroup(name)
	}
	return c
}

func (r *Recorder) clone() *Recorder {
	return &Recorder{
		store:     r.store,
		threshold: r.threshold,
		next:      r.next,
		attrs:     append([]string(nil), r.attrs...),
		group:     r.group,
	}
}

func (r *Recorder) append(e LogEntry) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.entries = append(r.store.entries, e)
}

func (r *Recorder) lines(rec slog.Record) []string {
	head := []string{rec.Message}
	head = append(head, r.attrs...)

	var extra []string
	rec.Attrs(func(a slog.Attr) bool {
		if a.Key == LinesKey {
			if ls, ok := a.Value.Any().([]string); ok {
				extra = append(extra, ls...)
				return true
			}
		}
		head = append(head, formatAttr(r.group, a)...)
		return true
	})

	return append([]string{strings.Join(head, " ")}, extra...)
}

func formatAttr(prefix string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return nil
	}
	if a.Value.Kind() == slog.KindGroup {
		var out []string
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			out = append(out, formatAttr(p, ga)...)
		}
		return out
	}
	return []string{fmt.Sprintf("%s%s=%v", prefix, a.Key, a.Value.Any())}
}
