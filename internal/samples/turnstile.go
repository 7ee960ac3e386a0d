package samples

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/ladon/pkg/automator"
	"github.com/aretw0/ladon/pkg/modeler"
)

// Turnstile events, used as the "event" metadata of its transitions.
const (
	EventCoin = "coin"
	EventPush = "push"
)

// Turnstile drives a coin-operated turnstile model: locked and unlocked,
// with coin and push events in both states.
type Turnstile struct {
	automator.ModelAutomation

	strategy modeler.LoadStrategy
	events   []string
	coins    int
	pushes int
}

// NewTurnstile returns a fresh Turnstile script.
func NewTurnstile() automator.Script {
	return &Turnstile{strategy: modeler.Eager}
}

func (t *Turnstile) Abstract() bool { return false }

func (t *Turnstile) Flags() []*automator.Flag {
	return []*automator.Flag{
		{
			Name:        "events",
			Description: "comma separated events to feed the turnstile",
			Default:     "coin,push,push,coin,coin,push",
		},
		{
			Name:        "load_strategy",
			Description: "how much of the model to load up front: eager, connected, lazy",
			Default:     "eager",
			Validator: func(v any) error {
				_, err := modeler.ParseLoadStrategy(fmt.Sprint(v))
				return err
			},
			Handler: func(_ context.Context, _ *automator.Automation, v any) error {
				s, err := modeler.ParseLoadStrategy(fmt.Sprint(v))
				if err != nil {
					return err
				}
				t.strategy = s
				return nil
			},
		},
	}
}

func (t *Turnstile) Handler(phase string) automator.PhaseFunc {
	switch phase {
	case automator.PhaseBuildModel:
		return t.buildModel
	case automator.PhaseSetup:
		return t.setup
	case automator.PhaseExecute:
		return t.execute
	case automator.PhaseTeardown:
		return t.teardown
	}
	return t.ModelAutomation.Handler(phase)
}

// TurnstileModel declares the locked and unlocked state types. count is
// called with the event of every transition taken.
func TurnstileModel(count func(event string)) (locked, unlocked modeler.StateType) {
	on := func(event string, to modeler.StateType) *modeler.Transition {
		return modeler.NewTransition().
			Meta("event", event).
			Meta("name", event).
			By(func(modeler.State) (any, error) {
				count(event)
				return event, nil
			}).
			To(to)
	}
	locked = modeler.NewStateType("locked", func() ([]*modeler.Transition, error) {
		return []*modeler.Transition{on(EventCoin, unlocked), on(EventPush, locked)}, nil
	})
	unlocked = modeler.NewStateType("unlocked", func() ([]*modeler.Transition, error) {
		return []*modeler.Transition{on(EventCoin, unlocked), on(EventPush, locked)}, nil
	})
	return locked, unlocked
}

func (t *Turnstile) count(event string) {
	switch event {
	case EventCoin:
		t.coins++
	case EventPush:
		t.pushes++
	}
}

func (t *Turnstile) buildModel(ctx context.Context, a *automator.Automation) error {
	if err := a.HandleFlag(ctx, "load_strategy"); err != nil {
		return err
	}
	locked, _ := TurnstileModel(t.count)
	fsm := modeler.NewFiniteStateMachine(
		modeler.WithLogger(a.Logger()),
		modeler.WithSelectionStrategy(modeler.SelectFirst),
	)
	if _, err := fsm.UseStateType(locked, t.strategy); err != nil {
		return err
	}
	t.Model = fsm
	return nil
}

func (t *Turnstile) setup(_ context.Context, a *automator.Automation) error {
	events, _ := a.Flag("events")
	for _, e := range strings.Split(events.String(a), ",") {
		if e = strings.TrimSpace(e); e != "" {
			t.events = append(t.events, e)
		}
	}
	a.Logger().Debug("turnstile ready", "events", len(t.events))
	return nil
}

func (t *Turnstile) execute(_ context.Context, a *automator.Automation) error {
	fsm := t.FSM()
	for i, event := range t.events {
		from := fsm.CurrentStateType().Name()
		if _, err := fsm.MakeTransition(modeler.MetaEquals("event", event)); err != nil {
			return fmt.Errorf("event #%d %q from %s: %w", i+1, event, from, err)
		}
		want := "locked"
		if event == EventCoin {
			want = "unlocked"
		}
		if _, err := a.Assert(fmt.Sprintf("%s should leave the turnstile %s", event, want),
			func() any { return fsm.CurrentStateType().Name() == want },
			automator.WithExpected(want), automator.WithActual(fsm.CurrentStateType().Name()),
		); err != nil {
			return err
		}
	}
	return nil
}

func (t *Turnstile) teardown(_ context.Context, a *automator.Automation) error {
	return errors.Join(
		a.Result().RecordData("coins", t.coins),
		a.Result().RecordData("pushes", t.pushes),
		a.Result().RecordData("final_state", t.FSM().CurrentStateType().Name()),
	)
}
