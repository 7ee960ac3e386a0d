package modeler

import (
	"fmt"

	"github.com/aretw0/ladon/pkg/domain"
)

// FiniteStateMachine is a Graph with a current state. Each transition runs its
// actions against the current instance, then replaces it with a fresh instance
// of the target type. It is not safe for concurrent use.
type FiniteStateMachine struct {
	*Graph

	current     State
	currentType StateType
	prefilter   func(*Transition) bool
	selection   SelectionStrategy
	instantiate InstantiateFunc
	env         *Env
}

// NewFiniteStateMachine creates a machine with no current state.
func NewFiniteStateMachine(opts ...Option) *FiniteStateMachine {
	s := newSettings(KindFSM, opts)
	return &FiniteStateMachine{
		Graph:       newGraph(s),
		prefilter:   s.prefilter,
		selection:   s.selection,
		instantiate: s.instantiate,
		env:         s.env,
	}
}

// CurrentState returns the live current instance, or nil before the first UseStateType.
func (m *FiniteStateMachine) CurrentState() State {
	return m.current
}

// CurrentStateType returns the type of the current instance.
func (m *FiniteStateMachine) CurrentStateType() StateType {
	return m.currentType
}

// Env returns the environment passed to state constructors.
func (m *FiniteStateMachine) Env() *Env {
	return m.env
}

// NewStateInstance builds a live instance of t.
func (m *FiniteStateMachine) NewStateInstance(t StateType) (State, error) {
	if m.instantiate != nil {
		return m.instantiate(t, m.env)
	}
	if inst, ok := t.(Instantiator); ok {
		return inst.NewInstance(m.env)
	}
	return t, nil
}

// UseStateType loads t with strategy s if needed and makes a new instance of it current.
func (m *FiniteStateMachine) UseStateType(t StateType, s LoadStrategy) (State, error) {
	if err := m.checkState(t); err != nil {
		return nil, err
	}
	if !m.StateLoaded(t) {
		if s == None {
			s = Lazy
		}
		if _, err := m.LoadStateType(t, s); err != nil {
			return nil, err
		}
	}

	inst, err := m.NewStateInstance(t)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate %q: %w", t.Name(), err)
	}
	m.current = inst
	m.currentType = m.states[t.Name()]
	m.logger.Debug("current state", "state", t.Name())
	return inst, nil
}

// MakeTransition moves the machine along one transition out of the current state.
//
// The candidates are the transitions of the current type (loaded on demand),
// narrowed by filter (nil accepts all) and the machine prefilter, then by their
// guards. The selection strategy picks one, which is executed.
func (m *FiniteStateMachine) MakeTransition(filter func(*Transition) bool) (State, error) {
	if m.current == nil || m.currentType == nil {
		return nil, ErrNoCurrentState
	}
	if !m.TransitionsLoaded(m.currentType) {
		if _, err := m.LoadTransitions(m.currentType, Lazy); err != nil {
			return nil, err
		}
	}

	candidates := m.PrefilteredTransitions(m.TransitionsFor(m.currentType), filter)
	valid := m.ValidTransitions(candidates)

	chosen, err := m.SelectionStrategy(valid)
	if err != nil {
		return nil, err
	}
	if chosen == nil {
		return nil, fmt.Errorf("%w: %d valid of %d candidates from %q",
			ErrNoTransitionSelected, len(valid), len(candidates), m.currentType.Name())
	}
	return m.ExecuteTransition(chosen)
}

// PrefilteredTransitions keeps the transitions accepted by filter and by the machine prefilter.
func (m *FiniteStateMachine) PrefilteredTransitions(ts []*Transition, filter func(*Transition) bool) []*Transition {
	out := make([]*Transition, 0, len(ts))
	for _, t := range ts {
		if filter != nil && !filter(t) {
			continue
		}
		if !m.PassesPrefilter(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// PassesPrefilter applies the machine-wide prefilter. Without one every transition passes.
func (m *FiniteStateMachine) PassesPrefilter(t *Transition) bool {
	if m.prefilter == nil {
		return true
	}
	return m.prefilter(t)
}

// ValidTransitions keeps the transitions whose guards accept the current state.
func (m *FiniteStateMachine) ValidTransitions(ts []*Transition) []*Transition {
	out := make([]*Transition, 0, len(ts))
	for _, t := range ts {
		if t.ValidFor(m.current) {
			out = append(out, t)
		}
	}
	return out
}

// SelectionStrategy delegates to the configured strategy.
func (m *FiniteStateMachine) SelectionStrategy(ts []*Transition) (*Transition, error) {
	if m.selection == nil {
		return nil, fmt.Errorf("%w: selection strategy", domain.ErrMissingImplementation)
	}
	return m.selection(ts)
}

// ExecuteTransition runs t's actions against the current state, resolves its
// target and makes a new instance of the target current.
func (m *FiniteStateMachine) ExecuteTransition(t *Transition) (State, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil", ErrInvalidTransition)
	}
	if m.current == nil {
		return nil, ErrNoCurrentState
	}

	from := m.currentType
	if _, err := t.Execute(m.current); err != nil {
		return nil, err
	}
	target, err := m.resolveTarget(t)
	if err != nil {
		return nil, err
	}
	next, err := m.UseStateType(target, Lazy)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("transition executed", "from", from.Name(), "to", target.Name(), "transition", t.String())
	return next, nil
}
