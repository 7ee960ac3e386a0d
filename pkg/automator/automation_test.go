package automator_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/aretw0/ladon/pkg/automator"
	"github.com/aretw0/ladon/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debugConfig(flags map[string]any) *domain.Config {
	return domain.NewConfig(domain.WithLogLevel(domain.LevelDebug), domain.WithFlags(flags))
}

func newAutomation(t *testing.T, s automator.Script, flags map[string]any, opts ...automator.Option) *automator.Automation {
	t.Helper()
	a, err := automator.New(s, debugConfig(flags), opts...)
	require.NoError(t, err)
	return a
}

func messages(r *domain.Result) []string {
	var out []string
	for _, e := range r.Entries() {
		out = append(out, e.Message())
	}
	return out
}

func containsMessage(r *domain.Result, level domain.Level, fragment string) bool {
	for _, e := range r.Entries() {
		if e.Level == level && strings.Contains(e.Message(), fragment) {
			return true
		}
	}
	return false
}

func TestAutomation_RunsPhasesInOrder(t *testing.T) {
	var order []string
	record := func(name string) automator.PhaseFunc {
		return func(context.Context, *automator.Automation) error {
			order = append(order, name)
			return nil
		}
	}
	script := &automator.Steps{Funcs: map[string]automator.PhaseFunc{
		automator.PhaseSetup:    record("setup"),
		automator.PhaseExecute:  record("execute"),
		automator.PhaseTeardown: record("teardown"),
	}}
	a := newAutomation(t, script, nil)

	res, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.IsSuccess())
	assert.Equal(t, []string{"setup", "execute", "teardown"}, order)
	assert.Len(t, res.Timings(), 3)
	assert.Equal(t, 3, a.PhaseCursor())

	again, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Same(t, res, again)
	assert.Len(t, order, 3, "phases never run twice")
}

func TestAutomation_MissingRequiredPhase(t *testing.T) {
	script := &automator.Steps{Funcs: map[string]automator.PhaseFunc{
		automator.PhaseSetup: func(context.Context, *automator.Automation) error { return nil },
	}}
	a := newAutomation(t, script, nil)

	res, err := a.Run(context.Background())
	require.NoError(t, err, "a missing phase is reported through the result")
	assert.True(t, res.IsFailure())
	assert.True(t, containsMessage(res, domain.LevelError, "required phase not implemented phase=execute"))
	assert.True(t, containsMessage(res, domain.LevelWarn, "phase not implemented, skipping phase=teardown"))
}

func TestAutomation_AbstractScript(t *testing.T) {
	ran := false
	script := &automator.Steps{
		IsAbstract: true,
		Funcs: map[string]automator.PhaseFunc{
			automator.PhaseExecute: func(context.Context, *automator.Automation) error { ran = true; return nil },
		},
	}
	a := newAutomation(t, script, nil)

	_, err := a.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingImplementation)
	assert.False(t, ran)
	assert.Empty(t, a.Result().Timings())
}

func TestAutomation_PhaseErrorsAreSandboxed(t *testing.T) {
	teardown := false
	script := &automator.Steps{Funcs: map[string]automator.PhaseFunc{
		automator.PhaseExecute: func(context.Context, *automator.Automation) error {
			return errors.New("checkout failed")
		},
		automator.PhaseTeardown: func(context.Context, *automator.Automation) error { teardown = true; return nil },
	}}
	a := newAutomation(t, script, nil)

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.IsError())
	assert.True(t, teardown, "later phases still run")
	assert.True(t, containsMessage(res, domain.LevelError, "error in execute: checkout failed"))
}

func TestAutomation_PanicsAreSandboxed(t *testing.T) {
	script := &automator.Steps{Funcs: map[string]automator.PhaseFunc{
		automator.PhaseExecute: func(context.Context, *automator.Automation) error {
			var m map[string]int
			m["boom"]++
			return nil
		},
	}}
	a := newAutomation(t, script, nil)

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.IsError())

	var entry domain.LogEntry
	for _, e := range res.Entries() {
		if strings.HasPrefix(e.Message(), "panic in execute") {
			entry = e
		}
	}
	require.NotEmpty(t, entry.Lines)
	assert.Greater(t, len(entry.Lines), 1, "stack trace lines follow the headline")
	require.Len(t, res.Timings(), 1)
	assert.True(t, res.Timings()[0].Complete())
}

func TestAutomation_ValidatorSkipsWithoutImpact(t *testing.T) {
	ran := false
	script := &automator.Steps{
		Plan: []automator.Phase{
			{Name: "optional", Validator: func(*automator.Automation) bool { return false }},
			{Name: automator.PhaseExecute, Required: true},
		},
		Funcs: map[string]automator.PhaseFunc{
			"optional":             func(context.Context, *automator.Automation) error { ran = true; return nil },
			automator.PhaseExecute: func(context.Context, *automator.Automation) error { return nil },
		},
	}
	a := newAutomation(t, script, nil)

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)
	assert.True(t, res.IsSuccess())
	assert.True(t, containsMessage(res, domain.LevelWarn, "phase validation failed, skipping phase=optional"))
}

func TestAutomation_WhenSuccessfulGatesLaterPhases(t *testing.T) {
	executed := false
	script := &automator.Steps{
		Plan: []automator.Phase{
			{Name: automator.PhaseSetup, Required: true},
			{Name: automator.PhaseExecute, Required: true, Validator: automator.WhenSuccessful},
		},
		Funcs: map[string]automator.PhaseFunc{
			automator.PhaseSetup:   func(context.Context, *automator.Automation) error { return errors.New("no browser") },
			automator.PhaseExecute: func(context.Context, *automator.Automation) error { executed = true; return nil },
		},
	}
	a := newAutomation(t, script, nil)

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, res.IsError())
	assert.False(t, executed)
}

func TestAutomation_RunThrough(t *testing.T) {
	var order []string
	script := &automator.Steps{Funcs: map[string]automator.PhaseFunc{
		automator.PhaseSetup:    func(context.Context, *automator.Automation) error { order = append(order, "setup"); return nil },
		automator.PhaseExecute:  func(context.Context, *automator.Automation) error { order = append(order, "execute"); return nil },
		automator.PhaseTeardown: func(context.Context, *automator.Automation) error { order = append(order, "teardown"); return nil },
	}}
	a := newAutomation(t, script, nil)
	ctx := context.Background()

	_, err := a.RunThrough(ctx, automator.PhaseSetup)
	require.NoError(t, err)
	assert.Equal(t, []string{"setup"}, order)
	assert.Equal(t, 1, a.PhaseCursor())

	_, err = a.RunThrough(ctx, "deploy")
	assert.ErrorIs(t, err, automator.ErrUnknownPhase)

	_, err = a.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"setup", "execute", "teardown"}, order)
}

func TestAutomation_Sandbox(t *testing.T) {
	a := newAutomation(t, &automator.Steps{}, nil)

	assert.ErrorIs(t, a.Sandbox("nothing", nil), domain.ErrBlockRequired)
	assert.True(t, a.Result().IsSuccess())

	assert.NoError(t, a.Sandbox("fine", func() error { return nil }))
	assert.True(t, a.Result().IsSuccess())

	caught := a.Sandbox("broken", func() error { panic(errors.New("driver crashed")) })
	var p *automator.PanicError
	require.ErrorAs(t, caught, &p)
	assert.ErrorContains(t, caught, "driver crashed")
	assert.True(t, a.Result().IsError())
}

func TestAutomation_LogTee(t *testing.T) {
	var buf bytes.Buffer
	ops := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	script := &automator.Steps{Funcs: map[string]automator.PhaseFunc{
		automator.PhaseExecute: func(_ context.Context, a *automator.Automation) error {
			a.Logger().Info("clicked checkout")
			return nil
		},
	}}
	a, err := automator.New(script, domain.NewConfig(domain.WithLogLevel(domain.LevelError)), automator.WithLogHandler(ops))
	require.NoError(t, err)

	res, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, messages(res), "run log keeps ERROR and above only")
	assert.Contains(t, buf.String(), "clicked checkout")
	assert.Contains(t, buf.String(), "phase=execute")
}

func TestAutomation_Hooks(t *testing.T) {
	var events []string
	hooks := automator.Hooks{
		OnPhaseStart: func(_ context.Context, e *automator.PhaseEvent) { events = append(events, "start:"+e.Phase) },
		OnPhaseEnd: func(_ context.Context, e *automator.PhaseEvent) {
			events = append(events, "end:"+e.Phase+":"+string(e.Status))
		},
		OnPhaseSkipped: func(_ context.Context, e *automator.PhaseEvent) { events = append(events, "skip:"+e.Phase) },
		OnRunEnd:       func(_ context.Context, e *automator.RunEvent) { events = append(events, "done:"+string(e.Status)) },
	}
	script := &automator.Steps{Funcs: map[string]automator.PhaseFunc{
		automator.PhaseExecute: func(context.Context, *automator.Automation) error { return errors.New("boom") },
	}}
	a := newAutomation(t, script, nil, automator.WithHooks(automator.ComposeHooks(hooks, automator.Hooks{})))

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"skip:setup",
		"start:execute",
		"end:execute:ERROR",
		"skip:teardown",
		"done:ERROR",
	}, events)
}

func TestNew_Validation(t *testing.T) {
	_, err := automator.New(nil, nil)
	assert.ErrorIs(t, err, automator.ErrNilScript)

	a, err := automator.New(&automator.Steps{}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, a.Config().ID())
	assert.Contains(t, a.Name(), "Steps")
}

func TestSpawn(t *testing.T) {
	a, err := automator.Spawn(&automator.Steps{}, "fixed-id", domain.LevelInfo, map[string]any{"user": "bob"})
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", a.Config().ID())
	assert.Equal(t, domain.LevelInfo, a.Config().LogLevel())
	assert.Equal(t, "bob", a.Config().Flags().Get("user", nil))
}
