package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/ladon/pkg/automator"
	"github.com/aretw0/ladon/pkg/domain"
	"github.com/aretw0/ladon/pkg/ports"
)

// Runner resolves registered scripts, runs them and optionally persists their results.
type Runner struct {
	// Registry is where scripts are looked up. Defaults to Default.
	Registry *Registry

	// Store receives a snapshot of every finished run.
	// If nil, results are not persisted.
	Store ports.ResultStore

	// Logger receives operational logs. Run logs are teed into its handler.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// Hooks are attached to every automation the runner spawns.
	Hooks automator.Hooks

	// Output is where rendered results go when a run sets output_format
	// without output_file. Defaults to Stdout.
	Output io.Writer
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithRegistry sets the script registry.
func WithRegistry(reg *Registry) Option {
	return func(r *Runner) {
		r.Registry = reg
	}
}

// WithStore configures the ResultStore for persistence.
func WithStore(store ports.ResultStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithHooks configures the lifecycle hooks of spawned automations.
func WithHooks(h automator.Hooks) Option {
	return func(r *Runner) {
		r.Hooks = h
	}
}

// WithOutput sets the writer for rendered results.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.Output = w
	}
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{
		Registry: Default,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Output:   os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Request describes one run.
type Request struct {
	// Name is the registered script name. Empty selects the single concrete script.
	Name string
	// ID of the run. Empty generates one.
	ID string
	// LogLevel is parsed with domain.ParseLevel. Empty uses domain.DefaultLevel.
	LogLevel string
	Flags    map[string]any
	// Quiet discards rendered output that would go to the runner's Output.
	Quiet bool
}

// Spawn resolves the script and prepares an automation for it without running it.
func (r *Runner) Spawn(req Request) (*automator.Automation, error) {
	name, factory, err := r.Registry.Resolve(req.Name)
	if err != nil {
		return nil, err
	}

	cfgOpts := []domain.ConfigOption{
		domain.WithClassName(name),
		domain.WithFlags(req.Flags),
	}
	if req.ID != "" {
		cfgOpts = append(cfgOpts, domain.WithID(req.ID))
	}
	if req.LogLevel != "" {
		level, err := domain.ParseLevel(req.LogLevel)
		if err != nil {
			return nil, err
		}
		cfgOpts = append(cfgOpts, domain.WithLogLevel(level))
	}

	out := r.Output
	if req.Quiet {
		out = io.Discard
	}
	return automator.New(factory(), domain.NewConfig(cfgOpts...),
		automator.WithLogHandler(r.Logger.Handler()),
		automator.WithHooks(r.Hooks),
		automator.WithOutput(out),
	)
}

// Run spawns and runs a script, then saves its result when a store is configured.
func (r *Runner) Run(ctx context.Context, req Request) (*domain.Result, error) {
	a, err := r.Spawn(req)
	if err != nil {
		return nil, err
	}
	return r.Execute(ctx, a)
}

// Execute runs a spawned automation and persists its result.
func (r *Runner) Execute(ctx context.Context, a *automator.Automation) (*domain.Result, error) {
	id := a.Config().ID()
	r.Logger.Debug("run started", "run_id", id, "script", a.Name())

	res, err := a.Run(ctx)
	if err != nil {
		return res, fmt.Errorf("run %s: %w", id, err)
	}
	r.Logger.Info("run finished", "run_id", id, "script", a.Name(), "status", res.Status())

	if r.Store != nil {
		if err := r.Store.Save(ctx, id, res.Snapshot()); err != nil {
			return res, fmt.Errorf("failed to save result %s: %w", id, err)
		}
	}
	return res, nil
}
