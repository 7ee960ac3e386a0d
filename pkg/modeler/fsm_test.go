package modeler_test

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/aretw0/ladon/pkg/domain"
	"github.com/aretw0/ladon/pkg/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	name   string
	client any
}

type pageType struct {
	modeler.BaseStateType
	next func() []*modeler.Transition
}

func (p *pageType) Transitions() ([]*modeler.Transition, error) {
	if p.next == nil {
		return nil, nil
	}
	return p.next(), nil
}

func (p *pageType) NewInstance(env *modeler.Env) (modeler.State, error) {
	return &page{name: p.Label, client: env.Get("client")}, nil
}

func TestFSM_MakeTransition(t *testing.T) {
	t.Run("requires a current state", func(t *testing.T) {
		fsm := modeler.NewFiniteStateMachine(modeler.WithSelectionStrategy(modeler.SelectFirst))

		_, err := fsm.MakeTransition(nil)
		assert.ErrorIs(t, err, modeler.ErrNoCurrentState)
	})

	t.Run("selection strategy is required", func(t *testing.T) {
		closed, _, _ := doorModel()
		fsm := modeler.NewFiniteStateMachine()
		_, err := fsm.UseStateType(closed, modeler.Lazy)
		require.NoError(t, err)

		_, err = fsm.MakeTransition(nil)
		assert.ErrorIs(t, err, domain.ErrMissingImplementation)
	})

	t.Run("loads transitions on demand and follows the filter", func(t *testing.T) {
		closed, open, locked := doorModel()
		fsm := modeler.NewFiniteStateMachine(modeler.WithSelectionStrategy(modeler.SelectFirst))

		_, err := fsm.UseStateType(closed, modeler.Lazy)
		require.NoError(t, err)
		assert.False(t, fsm.TransitionsLoaded(closed))

		next, err := fsm.MakeTransition(modeler.MetaEquals("event", "lock"))
		require.NoError(t, err)
		assert.Same(t, locked, next)
		assert.Same(t, locked, fsm.CurrentStateType())
		assert.True(t, fsm.TransitionsLoaded(closed))

		_, err = fsm.MakeTransition(nil)
		require.NoError(t, err)
		assert.Same(t, closed, fsm.CurrentState())

		_, err = fsm.MakeTransition(modeler.MetaEquals("event", "open"))
		require.NoError(t, err)
		assert.Same(t, open, fsm.CurrentState())
	})

	t.Run("nothing selected", func(t *testing.T) {
		closed, _, _ := doorModel()
		fsm := modeler.NewFiniteStateMachine(modeler.WithSelectionStrategy(modeler.SelectFirst))
		_, err := fsm.UseStateType(closed, modeler.Lazy)
		require.NoError(t, err)

		_, err = fsm.MakeTransition(modeler.MetaEquals("event", "fly"))
		assert.ErrorIs(t, err, modeler.ErrNoTransitionSelected)
		assert.Same(t, closed, fsm.CurrentState(), "current state is unchanged")
	})

	t.Run("prefilter narrows candidates", func(t *testing.T) {
		closed, open, _ := doorModel()
		fsm := modeler.NewFiniteStateMachine(
			modeler.WithSelectionStrategy(modeler.SelectFirst),
			modeler.WithPrefilter(func(tr *modeler.Transition) bool {
				v, _ := tr.MetaValue("event")
				return v != "lock"
			}),
		)
		_, err := fsm.UseStateType(closed, modeler.Lazy)
		require.NoError(t, err)

		assert.Len(t, fsm.PrefilteredTransitions(fsm.TransitionsFor(closed), nil), 0, "transitions are not loaded yet")

		next, err := fsm.MakeTransition(nil)
		require.NoError(t, err)
		assert.Same(t, open, next)
		assert.Len(t, fsm.PrefilteredTransitions(fsm.TransitionsFor(closed), nil), 1)
	})

	t.Run("guards are checked against the live instance", func(t *testing.T) {
		var done, retry modeler.StateType
		form := &pageType{BaseStateType: modeler.BaseStateType{Label: "form"}}
		done = modeler.Terminal("done")
		retry = modeler.Terminal("retry")
		form.next = func() []*modeler.Transition {
			return []*modeler.Transition{
				modeler.NewTransition().
					When(func(s modeler.State) bool { return s.(*page).client == "ok" }).
					To(done),
				modeler.NewTransition().To(retry),
			}
		}

		fsm := modeler.NewFiniteStateMachine(
			modeler.WithSelectionStrategy(modeler.SelectFirst),
			modeler.WithEnv(modeler.NewEnv(map[string]any{"client": "ok"})),
		)
		inst, err := fsm.UseStateType(form, modeler.Lazy)
		require.NoError(t, err)
		assert.Equal(t, &page{name: "form", client: "ok"}, inst)

		next, err := fsm.MakeTransition(nil)
		require.NoError(t, err)
		assert.Same(t, done, next)
	})

	t.Run("actions run against the current instance", func(t *testing.T) {
		var seen []modeler.State
		target := modeler.Terminal("target")
		source := modeler.NewStateType("source", func() ([]*modeler.Transition, error) {
			return []*modeler.Transition{
				modeler.NewTransition().By(func(s modeler.State) (any, error) {
					seen = append(seen, s)
					return nil, nil
				}).To(target),
			}, nil
		})
		fsm := modeler.NewFiniteStateMachine(modeler.WithSelectionStrategy(modeler.SelectFirst))
		_, err := fsm.UseStateType(source, modeler.Lazy)
		require.NoError(t, err)

		_, err = fsm.MakeTransition(nil)
		require.NoError(t, err)
		assert.Equal(t, []modeler.State{source}, seen)
		assert.True(t, fsm.StateLoaded(target))
	})

	t.Run("failing action keeps the current state", func(t *testing.T) {
		target := modeler.Terminal("target")
		source := modeler.NewStateType("source", func() ([]*modeler.Transition, error) {
			return []*modeler.Transition{
				modeler.NewTransition().By(func(modeler.State) (any, error) {
					return nil, errors.New("element not found")
				}).To(target),
			}, nil
		})
		fsm := modeler.NewFiniteStateMachine(modeler.WithSelectionStrategy(modeler.SelectFirst))
		_, err := fsm.UseStateType(source, modeler.Lazy)
		require.NoError(t, err)

		_, err = fsm.MakeTransition(nil)
		assert.ErrorContains(t, err, "element not found")
		assert.Same(t, source, fsm.CurrentState())
		assert.False(t, fsm.StateLoaded(target))
	})
}

func TestFSM_UseStateType(t *testing.T) {
	t.Run("invalid type", func(t *testing.T) {
		fsm := modeler.NewFiniteStateMachine()
		_, err := fsm.UseStateType(nil, modeler.Lazy)
		assert.ErrorIs(t, err, modeler.ErrInvalidStateType)
		assert.Nil(t, fsm.CurrentState())
	})

	t.Run("loads with the requested strategy", func(t *testing.T) {
		closed, _, _ := doorModel()
		fsm := modeler.NewFiniteStateMachine()

		_, err := fsm.UseStateType(closed, modeler.Eager)
		require.NoError(t, err)
		assert.Equal(t, 3, fsm.StateCount())
	})

	t.Run("custom instantiator", func(t *testing.T) {
		closed, _, _ := doorModel()
		fsm := modeler.NewFiniteStateMachine(modeler.WithInstantiator(func(st modeler.StateType, env *modeler.Env) (modeler.State, error) {
			return "instance of " + st.Name(), nil
		}))

		inst, err := fsm.UseStateType(closed, modeler.Lazy)
		require.NoError(t, err)
		assert.Equal(t, "instance of closed", inst)
		assert.Same(t, closed, fsm.CurrentStateType())
	})
}

func TestFSM_ExecuteTransition(t *testing.T) {
	fsm := modeler.NewFiniteStateMachine()

	_, err := fsm.ExecuteTransition(nil)
	assert.ErrorIs(t, err, modeler.ErrInvalidTransition)

	_, err = fsm.ExecuteTransition(modeler.NewTransition().To(modeler.Terminal("x")))
	assert.ErrorIs(t, err, modeler.ErrNoCurrentState)
}

func TestSelectionStrategies(t *testing.T) {
	target := modeler.Terminal("t")
	a := modeler.NewTransition().Meta("event", "a").To(target)
	b := modeler.NewTransition().Meta("event", "b").To(target)
	candidates := []*modeler.Transition{a, b}

	got, err := modeler.SelectFirst(candidates)
	require.NoError(t, err)
	assert.Same(t, a, got)

	got, err = modeler.SelectByMeta("event", "b")(candidates)
	require.NoError(t, err)
	assert.Same(t, b, got)

	got, err = modeler.SelectByMeta("event", "c")(candidates)
	require.NoError(t, err)
	assert.Nil(t, got)

	r := rand.New(rand.NewPCG(1, 2))
	got, err = modeler.SelectRandom(r)(candidates)
	require.NoError(t, err)
	assert.Contains(t, candidates, got)

	got, err = modeler.SelectRandom(nil)(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEnv(t *testing.T) {
	var nilEnv *modeler.Env
	assert.Nil(t, nilEnv.Get("driver"))

	env := nilEnv.With("driver", "chrome")
	assert.Equal(t, "chrome", env.Get("driver"))

	other := env.With("driver", "firefox")
	assert.Equal(t, "chrome", env.Get("driver"))
	assert.Equal(t, "firefox", other.Get("driver"))
}
