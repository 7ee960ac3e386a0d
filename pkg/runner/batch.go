package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/ladon/pkg/automator"
	"github.com/aretw0/ladon/pkg/domain"
	"github.com/aretw0/ladon/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// Batch flag names.
const (
	FlagBatchName   = "batch_name"
	FlagConfigFile  = "config_file"
	FlagRunDelay    = "run_delay"
	FlagMaxParallel = "max_parallel"
)

// PhaseBuild spawns the instances of a batch.
const PhaseBuild = "build"

// DefaultRunDelay staggers batch instances when neither the flags nor the manifest set a delay.
const DefaultRunDelay = 500 * time.Millisecond

// DefaultLockTTL bounds how long a crashed batch keeps its lock.
const DefaultLockTTL = time.Hour

// Batch is a script that runs many automations, as described by a Manifest,
// and succeeds only when all of them succeed.
//
// Phases: setup reads the flags and the manifest (and takes the lock),
// build spawns the instances, execute runs them concurrently and teardown
// tallies their statuses into the data log.
type Batch struct {
	runner   *Runner
	locker   ports.Locker
	lockTTL  time.Duration
	manifest *Manifest

	name      string
	delay     time.Duration
	unlock    ports.UnlockFunc
	mu        sync.Mutex
	instances []*automator.Automation
	started   []*automator.Automation
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithManifest provides the manifest directly instead of through the config_file flag.
func WithManifest(m *Manifest) BatchOption {
	return func(b *Batch) {
		b.manifest = m
	}
}

// WithLocker serializes batches of the same name across processes.
func WithLocker(l ports.Locker, ttl time.Duration) BatchOption {
	return func(b *Batch) {
		b.locker = l
		b.lockTTL = ttl
	}
}

// NewBatch creates a batch whose instances are spawned and persisted by r.
func NewBatch(r *Runner, opts ...BatchOption) *Batch {
	b := &Batch{runner: r, lockTTL: DefaultLockTTL}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Batch) Phases() []automator.Phase {
	return []automator.Phase{
		{Name: automator.PhaseSetup, Required: true},
		{Name: PhaseBuild, Required: true, Validator: automator.WhenSuccessful},
		{Name: automator.PhaseExecute, Required: true, Validator: automator.WhenSuccessful},
		{Name: automator.PhaseTeardown, Required: true},
	}
}

func (b *Batch) Handler(phase string) automator.PhaseFunc {
	switch phase {
	case automator.PhaseSetup:
		return b.setup
	case PhaseBuild:
		return b.build
	case automator.PhaseExecute:
		return b.execute
	case automator.PhaseTeardown:
		return b.teardown
	}
	return nil
}

func (b *Batch) Flags() []*automator.Flag {
	return []*automator.Flag{b.batchNameFlag(), b.configFileFlag(), b.runDelayFlag(), maxParallelFlag}
}

// Manifest returns the manifest in use, once setup has loaded it.
func (b *Batch) Manifest() *Manifest {
	return b.manifest
}

// Name returns the batch name resolved during setup.
func (b *Batch) Name() string {
	return b.name
}

// Instances returns the automations spawned by build.
func (b *Batch) Instances() []*automator.Automation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*automator.Automation(nil), b.instances...)
}

func (b *Batch) batchNameFlag() *automator.Flag {
	return &automator.Flag{
		Name:        FlagBatchName,
		Description: "name of the batch; defaults to the manifest's batch_name",
		Handler: func(_ context.Context, a *automator.Automation, v any) error {
			name, _ := v.(string)
			if name == "" && b.manifest != nil {
				name = b.manifest.BatchName
			}
			b.name = name
			return a.HaltingAssert("Batch name must be given", func() any { return name != "" })
		},
	}
}

func (b *Batch) configFileFlag() *automator.Flag {
	return &automator.Flag{
		Name:        FlagConfigFile,
		Description: "path of the YAML or JSON batch manifest",
		Handler: func(_ context.Context, a *automator.Automation, v any) error {
			if b.manifest != nil {
				return nil
			}
			path, _ := v.(string)
			if path != "" {
				if abs, err := filepath.Abs(path); err == nil {
					path = abs
				}
			}
			err := a.HaltingAssert("Config path must point to an existing file", func() any {
				info, err := os.Stat(path)
				return err == nil && info.Mode().IsRegular()
			}, automator.WithActual(path))
			if err != nil {
				return err
			}

			m, err := LoadManifest(path)
			if err != nil {
				return a.HaltingAssert("Must be able to read and parse a valid-looking config file",
					func() any { return false }, automator.WithActual(err.Error()))
			}
			b.manifest = m
			return nil
		},
	}
}

func (b *Batch) runDelayFlag() *automator.Flag {
	return &automator.Flag{
		Name:        FlagRunDelay,
		Description: "delay between instance starts, e.g. 500ms; defaults to the manifest's run_delay",
		Validator: func(v any) error {
			_, err := toDuration(v)
			return err
		},
		Handler: func(_ context.Context, _ *automator.Automation, v any) error {
			if v == nil {
				b.delay = DefaultRunDelay
				if b.manifest != nil {
					b.delay = b.manifest.Delay(DefaultRunDelay)
				}
				return nil
			}
			d, err := toDuration(v)
			if err != nil {
				return err
			}
			b.delay = d
			return nil
		},
	}
}

var maxParallelFlag = &automator.Flag{
	Name:        FlagMaxParallel,
	Description: "maximum number of instances running at once; 0 means no limit",
	Default:     0,
	Validator: func(v any) error {
		_, err := toInt(v)
		return err
	},
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int:
		return n, nil
	case float64:
		return int(n), nil
	case string:
		return strconv.Atoi(n)
	}
	return 0, fmt.Errorf("unsupported integer %T", v)
}

func toDuration(v any) (time.Duration, error) {
	switch d := v.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return d, nil
	case int:
		return time.Duration(d) * time.Second, nil
	case float64:
		return time.Duration(d * float64(time.Second)), nil
	case string:
		return time.ParseDuration(d)
	}
	return 0, fmt.Errorf("unsupported duration %T", v)
}

func (b *Batch) setup(ctx context.Context, a *automator.Automation) error {
	if err := a.HandleFlag(ctx, FlagConfigFile); err != nil {
		return err
	}
	if err := a.HandleFlag(ctx, FlagBatchName); err != nil {
		return err
	}
	if err := a.HandleFlag(ctx, FlagRunDelay); err != nil {
		return err
	}

	if b.locker != nil {
		unlock, err := b.locker.Lock(ctx, "batch:"+b.name, b.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to lock batch %s: %w", b.name, err)
		}
		b.unlock = unlock
	}
	a.Logger().Info("batch ready", "batch", b.name, "entries", len(b.manifest.Automations))
	return nil
}

func (b *Batch) build(_ context.Context, a *automator.Automation) error {
	plan := b.manifest.Plan(b.name)
	for _, inst := range plan {
		child, err := b.runner.Spawn(Request{
			Name:     inst.Script,
			LogLevel: inst.LogLevel,
			Flags:    inst.Flags,
			Quiet:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to spawn %s (%s #%d): %w", inst.Script, inst.SetName, inst.Number, err)
		}
		b.mu.Lock()
		b.instances = append(b.instances, child)
		b.mu.Unlock()
	}
	a.Logger().Info("batch built", "batch", b.name, "instances", len(plan))
	return nil
}

func (b *Batch) execute(ctx context.Context, a *automator.Automation) error {
	g, gctx := errgroup.WithContext(ctx)
	if n, _ := toInt(maxParallelFlag.Value(a)); n > 0 {
		g.SetLimit(n)
	}

spawn:
	for i, child := range b.Instances() {
		if i > 0 && b.delay > 0 {
			select {
			case <-time.After(b.delay):
			case <-ctx.Done():
				break spawn
			}
		}
		b.mu.Lock()
		b.started = append(b.started, child)
		b.mu.Unlock()
		g.Go(func() error {
			_ = a.Sandbox(fmt.Sprintf("Execute runner #%d", i), func() error {
				_, err := b.runner.Execute(gctx, child)
				return err
			})
			return nil
		})
	}
	// Instances already started are joined even when the stagger was cut short.
	return errors.Join(ctx.Err(), g.Wait())
}

func (b *Batch) teardown(ctx context.Context, a *automator.Automation) error {
	if b.unlock != nil {
		defer func() {
			if err := b.unlock(context.WithoutCancel(ctx)); err != nil {
				a.Logger().Warn("failed to release batch lock", "batch", b.name, "error", err)
			}
			b.unlock = nil
		}()
	}

	instances := b.Instances()
	b.mu.Lock()
	started := slices.Clone(b.started)
	b.mu.Unlock()
	if n := len(instances) - len(started); n > 0 {
		a.Logger().Warn("batch instances never started", "batch", b.name, "count", n)
	}

	counts := map[domain.Status]int{}
	for _, child := range started {
		counts[child.Result().Status()]++
	}
	var errs []error
	for _, s := range []domain.Status{domain.StatusSuccess, domain.StatusFailure, domain.StatusError} {
		if counts[s] > 0 {
			errs = append(errs, a.Result().RecordData(string(s), counts[s]))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	_, err := a.Assert("All Automations in the batch should succeed", func() any {
		if len(started) != len(instances) {
			return false
		}
		for _, child := range started {
			if !child.Result().IsSuccess() {
				return false
			}
		}
		return true
	}, automator.WithExpected(len(instances)), automator.WithActual(counts[domain.StatusSuccess]))
	return err
}

// RunBatch runs a batch under the name "batch" with the given flags and
// persists its result like any other run.
func (r *Runner) RunBatch(ctx context.Context, flags map[string]any, opts ...BatchOption) (*Batch, *domain.Result, error) {
	b := NewBatch(r, opts...)
	cfg := domain.NewConfig(domain.WithClassName("batch"), domain.WithFlags(flags))
	a, err := automator.New(b, cfg,
		automator.WithLogHandler(r.Logger.Handler()),
		automator.WithHooks(r.Hooks),
		automator.WithOutput(r.Output),
	)
	if err != nil {
		return nil, nil, err
	}
	res, err := r.Execute(ctx, a)
	return b, res, err
}
