package modeler

import (
	"errors"
	"fmt"
	"log/slog"
)

const (
	// KindGraph is the merge kind of a plain Graph.
	KindGraph = "graph"
	// KindFSM is the merge kind of a FiniteStateMachine.
	KindFSM = "fsm"
)

// Model is anything backed by a Graph.
type Model interface {
	Kind() string
	Base() *Graph
}

type transitionSet struct {
	items []*Transition
	seen  map[*Transition]struct{}
}

func newTransitionSet() *transitionSet {
	return &transitionSet{seen: map[*Transition]struct{}{}}
}

func (s *transitionSet) add(t *Transition) bool {
	if _, ok := s.seen[t]; ok {
		return false
	}
	s.seen[t] = struct{}{}
	s.items = append(s.items, t)
	return true
}

// Graph is a set of loaded state types plus, per type, the set of transitions
// out of it. A state's transitions can only be registered once the state itself
// is loaded. Graph is not safe for concurrent use.
//
// Transitions whose target failed to load stay pending on their source state
// and are retried by the next LoadStateType or LoadTransitions of that state.
type Graph struct {
	kind        string
	logger      *slog.Logger
	registry    *Registry
	onInvalid   InvalidTransitionsHandler
	order       []StateType
	states      map[string]StateType
	transitions map[string]*transitionSet
	pending     map[string][]*Transition
}

// NewGraph creates an empty graph.
func NewGraph(opts ...Option) *Graph {
	return newGraph(newSettings(KindGraph, opts))
}

func newGraph(s settings) *Graph {
	return &Graph{
		kind:        s.kind,
		logger:      s.logger,
		registry:    s.registry,
		onInvalid:   s.onInvalid,
		states:      map[string]StateType{},
		transitions: map[string]*transitionSet{},
		pending:     map[string][]*Transition{},
	}
}

// Kind returns the merge kind of the graph.
func (g *Graph) Kind() string { return g.kind }

// Base returns g.
func (g *Graph) Base() *Graph { return g }

// ValidState reports whether t passes the state type check, including
// registry membership when the graph was built WithRegistry.
func (g *Graph) ValidState(t StateType) bool {
	return g.checkState(t) == nil
}

func (g *Graph) checkState(t StateType) error {
	if err := CheckStateType(t); err != nil {
		return err
	}
	if g.registry != nil && !g.registry.Contains(t) {
		return &InvalidStateTypeError{Value: t, Reason: fmt.Sprintf("%q is not registered", t.Name())}
	}
	return nil
}

// LoadStateType adds t to the graph and cascades according to s.
// It reports whether t is loaded afterwards. With None nothing is loaded.
// The state is marked loaded before its transitions are visited, so cycles terminate.
// For a state that is already loaded only its pending targets are retried.
func (g *Graph) LoadStateType(t StateType, s LoadStrategy) (bool, error) {
	if err := g.checkState(t); err != nil {
		return false, err
	}
	if g.StateLoaded(t) {
		if s.Valid() && s != None {
			return true, g.retryPending(t, s.Nested().Nested())
		}
		return true, nil
	}
	if s == None || !s.Valid() {
		return false, nil
	}

	g.states[t.Name()] = t
	g.order = append(g.order, t)
	g.logger.Debug("state loaded", "state", t.Name(), "strategy", s)

	if _, err := g.LoadTransitions(t, s.Nested()); err != nil {
		return true, err
	}
	return true, nil
}

// LoadTransitions registers the transitions of a loaded state t and, unless
// s.Nested() is None, loads each new transition's target with s.Nested().
// It reports whether t's transitions are loaded afterwards.
func (g *Graph) LoadTransitions(t StateType, s LoadStrategy) (bool, error) {
	if !g.StateLoaded(t) {
		return false, fmt.Errorf("%w: %s", ErrUnknownState, nameOf(t))
	}
	if g.TransitionsLoaded(t) {
		if s.Valid() && s != None {
			return true, g.retryPending(t, s.Nested())
		}
		return true, nil
	}
	if s == None || !s.Valid() {
		return false, nil
	}

	declared, err := t.Transitions()
	if err != nil {
		return false, fmt.Errorf("failed to load transitions of %q: %w", t.Name(), err)
	}

	added, err := g.AddTransitions(t, declared)
	if err != nil {
		return false, err
	}
	g.logger.Debug("transitions loaded", "state", t.Name(), "count", len(added), "strategy", s)

	nested := s.Nested()
	if nested == None {
		return true, nil
	}
	return true, g.loadTargets(t, added, nested)
}

// PendingTargets returns the transitions out of t whose target failed to load.
func (g *Graph) PendingTargets(t StateType) []*Transition {
	if t == nil {
		return nil
	}
	return append([]*Transition(nil), g.pending[t.Name()]...)
}

func (g *Graph) retryPending(t StateType, s LoadStrategy) error {
	ts := g.pending[t.Name()]
	if len(ts) == 0 || s == None {
		return nil
	}
	delete(g.pending, t.Name())
	g.logger.Debug("retrying pending targets", "state", t.Name(), "count", len(ts))
	return g.loadTargets(t, ts, s)
}

// loadTargets resolves each transition's target and loads it with s. Failed
// transitions are kept pending on t; the errors are joined.
func (g *Graph) loadTargets(t StateType, ts []*Transition, s LoadStrategy) error {
	var errs []error
	for _, tr := range ts {
		target, err := g.resolveTarget(tr)
		if err == nil {
			_, err = g.LoadStateType(target, s)
		}
		if err != nil {
			if target == nil || !g.StateLoaded(target) {
				g.pending[t.Name()] = append(g.pending[t.Name()], tr)
			}
			errs = append(errs, fmt.Errorf("transition out of %q: %w", t.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// AddTransitions registers candidates for the loaded state t and returns the
// ones that were not registered yet. Nil and structurally invalid candidates
// are handed to the invalid transitions hook instead.
func (g *Graph) AddTransitions(t StateType, candidates []*Transition) ([]*Transition, error) {
	if !g.StateLoaded(t) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownState, nameOf(t))
	}

	var invalid []*Transition
	set, ok := g.transitions[t.Name()]
	if !ok {
		set = newTransitionSet()
		g.transitions[t.Name()] = set
	}

	var added []*Transition
	for _, c := range candidates {
		if c == nil || c.Validate() != nil {
			invalid = append(invalid, c)
			continue
		}
		if set.add(c) {
			added = append(added, c)
		}
	}

	if len(invalid) > 0 {
		g.logger.Debug("invalid transitions dropped", "state", t.Name(), "count", len(invalid))
		if g.onInvalid != nil {
			g.onInvalid(t, invalid)
		}
	}
	return added, nil
}

// Merge folds other into g. Both must be of the same kind. Every state of other
// is loaded lazily into g, then transition sets are unioned; transitions already
// present in g are kept as they are.
func (g *Graph) Merge(other Model) error {
	if other == nil || other.Base() == nil {
		return fmt.Errorf("%w: nil model", ErrInvalidMerge)
	}
	og := other.Base()
	if og.kind != g.kind {
		return fmt.Errorf("%w: cannot merge %s into %s", ErrInvalidMerge, og.kind, g.kind)
	}
	if og == g {
		return nil
	}

	for _, st := range og.order {
		if _, err := g.LoadStateType(st, Lazy); err != nil {
			return fmt.Errorf("merge: %w", err)
		}
	}
	for _, st := range og.order {
		set, ok := og.transitions[st.Name()]
		if !ok {
			continue
		}
		if _, err := g.AddTransitions(g.states[st.Name()], set.items); err != nil {
			return fmt.Errorf("merge: %w", err)
		}
	}
	return nil
}

// StateLoaded reports whether a state with t's name is loaded.
func (g *Graph) StateLoaded(t StateType) bool {
	if t == nil {
		return false
	}
	_, ok := g.states[t.Name()]
	return ok
}

// TransitionsLoaded reports whether t's transitions are registered.
func (g *Graph) TransitionsLoaded(t StateType) bool {
	if t == nil {
		return false
	}
	_, ok := g.transitions[t.Name()]
	return ok
}

// StateCount returns the number of loaded states.
func (g *Graph) StateCount() int {
	return len(g.order)
}

// TransitionCountFor returns the number of registered transitions out of t.
func (g *Graph) TransitionCountFor(t StateType) int {
	if t == nil {
		return 0
	}
	if set, ok := g.transitions[t.Name()]; ok {
		return len(set.items)
	}
	return 0
}

// States returns the loaded states in load order.
func (g *Graph) States() []StateType {
	return append([]StateType(nil), g.order...)
}

// State returns the loaded state with the given name.
func (g *Graph) State(name string) (StateType, bool) {
	t, ok := g.states[name]
	return t, ok
}

// TransitionsFor returns the registered transitions out of t in registration order.
func (g *Graph) TransitionsFor(t StateType) []*Transition {
	if t == nil {
		return nil
	}
	if set, ok := g.transitions[t.Name()]; ok {
		return append([]*Transition(nil), set.items...)
	}
	return nil
}

func (g *Graph) resolveTarget(tr *Transition) (StateType, error) {
	if _, err := tr.LoadTarget(); err != nil {
		return nil, err
	}
	return tr.IdentifyTarget()
}

func nameOf(t StateType) string {
	if t == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%q", t.Name())
}
