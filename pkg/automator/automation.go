package automator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/aretw0/ladon/pkg/domain"
)

// Automation runs a Script phase by phase, accumulating a Result.
//
// An Automation is single-threaded: phases run one after the other and each
// phase is atomic from the result's point of view. Errors inside phases never
// escape Run; they are logged and folded into the result status.
type Automation struct {
	script   Script
	name     string
	config   *domain.Config
	recorder *domain.Recorder
	timer    *domain.Timer
	result   *domain.Result
	logger   *slog.Logger
	hooks    Hooks
	output   io.Writer
	phases   []Phase
	cursor   int
	started  time.Time
	finished bool
}

type options struct {
	handler slog.Handler
	hooks   Hooks
	output  io.Writer
}

// Option configures an Automation.
type Option func(*options)

// WithLogHandler tees the run log into an operational slog handler.
func WithLogHandler(h slog.Handler) Option {
	return func(o *options) {
		o.handler = h
	}
}

// WithHooks registers observability hooks.
func WithHooks(h Hooks) Option {
	return func(o *options) {
		o.hooks = h
	}
}

// WithOutput sets where rendered results go when no output file is set. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// New prepares script to run under cfg. A nil cfg uses domain.NewConfig().
func New(script Script, cfg *domain.Config, opts ...Option) (*Automation, error) {
	if script == nil {
		return nil, ErrNilScript
	}
	if cfg == nil {
		cfg = domain.NewConfig()
	}

	o := options{output: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	rec := domain.NewRecorder(cfg.LogLevel(), o.handler)
	timer := domain.NewTimer()

	name := cfg.ClassName()
	if name == "" {
		name = fmt.Sprintf("%T", script)
	}

	return &Automation{
		script:   script,
		name:     name,
		config:   cfg,
		recorder: rec,
		timer:    timer,
		result:   domain.NewResult(cfg, rec, timer),
		logger:   slog.New(rec),
		hooks:    o.hooks,
		output:   o.output,
		phases:   slices.Clone(script.Phases()),
	}, nil
}

// Spawn is a shortcut for New with a config built from id, level and flags.
func Spawn(script Script, id string, level domain.Level, flags map[string]any, opts ...Option) (*Automation, error) {
	cfg := domain.NewConfig(domain.WithID(id), domain.WithLogLevel(level), domain.WithFlags(flags))
	return New(script, cfg, opts...)
}

func (a *Automation) Script() Script         { return a.script }
func (a *Automation) Name() string           { return a.name }
func (a *Automation) Config() *domain.Config { return a.config }
func (a *Automation) Result() *domain.Result { return a.result }
func (a *Automation) Timer() *domain.Timer   { return a.timer }

// Logger returns the logger that writes into the run log.
func (a *Automation) Logger() *slog.Logger { return a.logger }

// Phases returns the phase plan.
func (a *Automation) Phases() []Phase { return slices.Clone(a.phases) }

// PhaseCursor returns the index of the next phase to run.
func (a *Automation) PhaseCursor() int { return a.cursor }

// PhaseIndex returns the index of the named phase, or -1.
func (a *Automation) PhaseIndex(name string) int {
	return slices.IndexFunc(a.phases, func(p Phase) bool { return p.Name == name })
}

// Run executes every remaining phase and returns the result. It fails with
// domain.ErrMissingImplementation, before running anything, when the script is abstract.
func (a *Automation) Run(ctx context.Context) (*domain.Result, error) {
	return a.run(ctx, len(a.phases)-1)
}

// RunThrough executes the remaining phases up to and including the named one.
// Later calls continue from where the previous one stopped.
func (a *Automation) RunThrough(ctx context.Context, phase string) (*domain.Result, error) {
	idx := a.PhaseIndex(phase)
	if idx < 0 {
		return a.result, fmt.Errorf("%w: %q", ErrUnknownPhase, phase)
	}
	return a.run(ctx, idx)
}

func (a *Automation) run(ctx context.Context, last int) (*domain.Result, error) {
	if IsAbstract(a.script) {
		return a.result, fmt.Errorf("%w: %s is abstract", domain.ErrMissingImplementation, a.name)
	}
	if a.started.IsZero() {
		a.started = time.Now()
	}

	for a.cursor <= last && a.cursor < len(a.phases) {
		p := a.phases[a.cursor]
		a.cursor++
		a.ProcessPhase(ctx, p)
	}

	if a.cursor >= len(a.phases) && !a.finished {
		a.finished = true
		a.finish(ctx)
	}
	return a.result, nil
}

// ProcessPhase runs p unless its validator rejects it. A rejected phase is
// logged at WARN and does not affect the result.
func (a *Automation) ProcessPhase(ctx context.Context, p Phase) {
	if !p.ValidFor(a) {
		a.logger.Warn("phase validation failed, skipping", "phase", p.Name)
		a.emitSkipped(ctx, p, "validation failed")
		return
	}
	a.ExecutePhase(ctx, p)
}

// ExecutePhase times and runs the handler of p inside the sandbox.
func (a *Automation) ExecutePhase(ctx context.Context, p Phase) {
	fn := a.script.Handler(p.Name)
	if fn == nil {
		a.OnPhaseSkipped(ctx, p)
		return
	}

	if a.hooks.OnPhaseStart != nil {
		a.hooks.OnPhaseStart(ctx, a.phaseEvent(EventPhaseStart, p))
	}

	var caught error
	entry, _ := a.timer.For(p.Name, func() {
		a.logger.Info("phase started", "phase", p.Name)
		caught = a.Sandbox(p.Name, func() error { return fn(ctx, a) })
		if caught == nil {
			a.logger.Info("phase completed", "phase", p.Name)
		}
	})

	if a.hooks.OnPhaseEnd != nil {
		e := a.phaseEvent(EventPhaseEnd, p)
		e.Duration = entry.Duration()
		e.Err = caught
		a.hooks.OnPhaseEnd(ctx, e)
	}
}

// OnPhaseSkipped handles a phase without a handler: a required phase fails the
// run, an optional one is only noted.
func (a *Automation) OnPhaseSkipped(ctx context.Context, p Phase) {
	if p.Required {
		a.logger.Error("required phase not implemented", "phase", p.Name)
		a.result.MarkFailure()
		a.emitSkipped(ctx, p, "required phase not implemented")
		return
	}
	a.logger.Warn("phase not implemented, skipping", "phase", p.Name)
	a.emitSkipped(ctx, p, "not implemented")
}

func (a *Automation) emitSkipped(ctx context.Context, p Phase, reason string) {
	if a.hooks.OnPhaseSkipped == nil {
		return
	}
	e := a.phaseEvent(EventPhaseSkipped, p)
	e.Reason = reason
	a.hooks.OnPhaseSkipped(ctx, e)
}

func (a *Automation) phaseEvent(t EventType, p Phase) *PhaseEvent {
	return &PhaseEvent{
		EventBase: a.eventBase(t),
		Phase:     p.Name,
		Required:  p.Required,
		Status:    a.result.Status(),
	}
}

func (a *Automation) eventBase(t EventType) EventBase {
	return EventBase{
		Timestamp:    time.Now(),
		Type:         t,
		AutomationID: a.config.ID(),
		Script:       a.name,
	}
}

func (a *Automation) finish(ctx context.Context) {
	_ = a.Sandbox("output", func() error {
		return OutputFileFlag.Feed(ctx, a)
	})

	if a.hooks.OnRunEnd != nil {
		a.hooks.OnRunEnd(ctx, &RunEvent{
			EventBase: a.eventBase(EventRunEnd),
			Status:    a.result.Status(),
			Duration:  time.Since(a.started),
			Result:    a.result,
		})
	}
}
