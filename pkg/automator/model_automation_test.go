package automator_test

import (
	"context"
	"testing"

	"github.com/aretw0/ladon/pkg/automator"
	"github.com/aretw0/ladon/pkg/domain"
	"github.com/aretw0/ladon/pkg/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type turnstile struct {
	automator.ModelAutomation
	buildGraph bool
	steps      []string
}

func (s *turnstile) Abstract() bool { return false }

func (s *turnstile) Handler(phase string) automator.PhaseFunc {
	switch phase {
	case automator.PhaseBuildModel:
		return s.build
	case automator.PhaseExecute:
		return s.execute
	case automator.PhaseTeardown:
		return func(context.Context, *automator.Automation) error {
			s.steps = append(s.steps, "teardown")
			return nil
		}
	}
	return s.ModelAutomation.Handler(phase)
}

func (s *turnstile) build(context.Context, *automator.Automation) error {
	s.steps = append(s.steps, "build")
	if s.buildGraph {
		s.Model = modeler.NewGraph()
		return nil
	}

	var locked, unlocked modeler.StateType
	locked = modeler.NewStateType("locked", func() ([]*modeler.Transition, error) {
		return []*modeler.Transition{modeler.NewTransition().To(unlocked)}, nil
	})
	unlocked = modeler.NewStateType("unlocked", func() ([]*modeler.Transition, error) {
		return []*modeler.Transition{modeler.NewTransition().To(locked)}, nil
	})

	fsm := modeler.NewFiniteStateMachine(modeler.WithSelectionStrategy(modeler.SelectFirst))
	if _, err := fsm.UseStateType(locked, modeler.Eager); err != nil {
		return err
	}
	s.Model = fsm
	return nil
}

func (s *turnstile) execute(_ context.Context, a *automator.Automation) error {
	s.steps = append(s.steps, "execute")
	fsm := s.FSM()
	if _, err := fsm.MakeTransition(nil); err != nil {
		return err
	}
	_, err := a.Assert("turnstile unlocked", func() any {
		return fsm.CurrentStateType().Name() == "unlocked"
	})
	return err
}

func TestModelAutomation_IsAbstract(t *testing.T) {
	a := newAutomation(t, &automator.ModelAutomation{}, nil)
	_, err := a.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingImplementation)
}

func TestModelAutomation_Phases(t *testing.T) {
	var names []string
	for _, p := range (&automator.ModelAutomation{}).Phases() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{
		automator.PhaseBuildModel,
		automator.PhaseVerifyModel,
		automator.PhaseSetup,
		automator.PhaseExecute,
		automator.PhaseTeardown,
	}, names)
}

func TestModelAutomation_Success(t *testing.T) {
	script := &turnstile{}
	a := newAutomation(t, script, nil)

	res, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.IsSuccess(), "log: %v", messages(res))
	assert.True(t, script.Verified())
	assert.Equal(t, []string{"build", "execute", "teardown"}, script.steps)
	assert.Equal(t, "unlocked", script.FSM().CurrentStateType().Name())
}

func TestModelAutomation_WrongModelStopsTheRun(t *testing.T) {
	script := &turnstile{buildGraph: true}
	a := newAutomation(t, script, nil)

	res, err := a.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.IsError())
	assert.False(t, script.Verified())
	assert.Nil(t, script.FSM())
	assert.Equal(t, []string{"build"}, script.steps, "execute and teardown are skipped")
	assert.True(t, containsMessage(res, domain.LevelError, "error in verify_model"))
}
