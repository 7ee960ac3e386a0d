package modeler

import (
	"errors"
	"fmt"
	"maps"

	"github.com/aretw0/ladon/pkg/domain"
)

// Guard decides whether a transition may fire from a live state.
type Guard func(State) bool

// Action acts on a live state while a transition fires.
type Action func(State) (any, error)

// Transition is a guarded, directed edge whose target is resolved lazily.
//
// Its lifecycle is Declared -> TargetIdentified (pending) -> TargetLoaded.
// The loader runs at most once; the identifier may only run after the loader
// and its answer is memoized.
type Transition struct {
	guards     []Guard
	actions    []Action
	meta       map[string]any
	loader     func() error
	identifier func() (StateType, error)
	loaded     bool
	target     StateType
	err        error
}

// NewTransition creates an empty transition.
func NewTransition() *Transition {
	return &Transition{meta: map[string]any{}}
}

// When adds a guard. A nil guard makes the transition invalid.
func (t *Transition) When(g Guard) *Transition {
	if g == nil {
		t.record(fmt.Errorf("%w: nil guard", domain.ErrBlockRequired))
		return t
	}
	t.guards = append(t.guards, g)
	return t
}

// By appends an action. A nil action makes the transition invalid.
func (t *Transition) By(a Action) *Transition {
	if a == nil {
		t.record(fmt.Errorf("%w: nil action", domain.ErrBlockRequired))
		return t
	}
	t.actions = append(t.actions, a)
	return t
}

// Meta attaches a metadata value.
func (t *Transition) Meta(key string, value any) *Transition {
	if t.meta == nil {
		t.meta = map[string]any{}
	}
	t.meta[key] = value
	return t
}

// MetaValue returns the metadata value stored under key.
func (t *Transition) MetaValue(key string) (any, bool) {
	v, ok := t.meta[key]
	return v, ok
}

// Metadata returns a copy of the metadata.
func (t *Transition) Metadata() map[string]any {
	return maps.Clone(t.meta)
}

// ToLoadTarget sets the function that makes the target available (for example
// by loading the package that declares it).
func (t *Transition) ToLoadTarget(fn func() error) error {
	if t.loaded {
		return ErrAlreadyLoaded
	}
	if fn == nil {
		return fmt.Errorf("%w: nil target loader", domain.ErrBlockRequired)
	}
	t.loader = fn
	return nil
}

// ToIdentifyTarget sets the function that names the target once it is loaded.
func (t *Transition) ToIdentifyTarget(fn func() (StateType, error)) error {
	if t.loaded {
		return ErrAlreadyLoaded
	}
	if fn == nil {
		return fmt.Errorf("%w: nil target identifier", domain.ErrBlockRequired)
	}
	t.identifier = fn
	return nil
}

// To points the transition at a known state type.
func (t *Transition) To(target StateType) *Transition {
	if err := CheckStateType(target); err != nil {
		t.record(err)
		return t
	}
	t.record(t.ToIdentifyTarget(func() (StateType, error) { return target, nil }))
	return t
}

// ToNamed points the transition at a state type that reg resolves by name when
// the target is identified.
func (t *Transition) ToNamed(reg *Registry, name string) *Transition {
	if reg == nil {
		t.record(errors.New("nil registry"))
		return t
	}
	t.record(t.ToIdentifyTarget(func() (StateType, error) {
		st, ok := reg.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not registered", ErrInvalidStateType, name)
		}
		return st, nil
	}))
	return t
}

// TargetLoaded reports whether the loader has run.
func (t *Transition) TargetLoaded() bool {
	return t.loaded
}

// LoadTarget runs the loader once. A failed loader leaves the target unloaded.
func (t *Transition) LoadTarget() (bool, error) {
	if t.loaded {
		return true, nil
	}
	if t.loader != nil {
		if err := t.loader(); err != nil {
			return false, fmt.Errorf("failed to load transition target: %w", err)
		}
	}
	t.loaded = true
	return true, nil
}

// IdentifyTarget returns the target state type, resolving it on first use.
func (t *Transition) IdentifyTarget() (StateType, error) {
	if !t.loaded {
		return nil, ErrTargetNotLoaded
	}
	if t.target != nil {
		return t.target, nil
	}
	if t.identifier == nil {
		return nil, fmt.Errorf("%w: no target identifier", ErrInvalidTransition)
	}
	target, err := t.identifier()
	if err != nil {
		return nil, err
	}
	if err := CheckStateType(target); err != nil {
		return nil, err
	}
	t.target = target
	return target, nil
}

// ValidFor reports whether the transition may fire from s: true when it has
// no guards, otherwise true when any guard accepts s.
func (t *Transition) ValidFor(s State) bool {
	if len(t.guards) == 0 {
		return true
	}
	for _, g := range t.guards {
		if g(s) {
			return true
		}
	}
	return false
}

// Execute runs the actions against s in order and returns their results.
// It stops at the first failing action.
func (t *Transition) Execute(s State) ([]any, error) {
	results := make([]any, 0, len(t.actions))
	for i, a := range t.actions {
		r, err := a(s)
		if err != nil {
			return results, fmt.Errorf("transition action %d: %w", i, err)
		}
		results = append(results, r)
	}
	return results, nil
}

// Validate reports structural problems recorded while building the transition.
func (t *Transition) Validate() error {
	if t.err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTransition, t.err)
	}
	if t.identifier == nil && t.target == nil {
		return fmt.Errorf("%w: no target", ErrInvalidTransition)
	}
	return nil
}

func (t *Transition) record(err error) {
	if err != nil && t.err == nil {
		t.err = err
	}
}

// String names the transition by its "name" metadata when present.
func (t *Transition) String() string {
	if v, ok := t.meta["name"]; ok {
		return fmt.Sprint(v)
	}
	if t.target != nil {
		return "-> " + t.target.Name()
	}
	return "transition"
}
