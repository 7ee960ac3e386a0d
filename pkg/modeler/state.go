package modeler

import (
	"fmt"
	"maps"
	"reflect"

	"github.com/aretw0/ladon/pkg/domain"
)

// State is a live instance of a StateType.
type State = any

// StateType is a kind of state the software under test can be in.
//
// Transitions is called lazily, the first time the graph needs the edges of
// this type. That deferral is what lets state types refer to each other in
// cycles: targets are named inside transition closures, not at declaration.
type StateType interface {
	// Name identifies the type within a graph. It must be unique and non-empty.
	Name() string
	// Transitions returns the edges out of this type.
	Transitions() ([]*Transition, error)
}

// Instantiator is implemented by state types that build a separate live
// instance for each visit. Types that do not implement it are their own instance.
type Instantiator interface {
	NewInstance(env *Env) (State, error)
}

// BaseStateType is embedded by concrete state types. It provides Name and an
// abstract Transitions that reports a missing implementation.
type BaseStateType struct {
	Label string
}

// Name returns the label.
func (b BaseStateType) Name() string {
	return b.Label
}

// Transitions must be overridden by the embedding type.
func (b BaseStateType) Transitions() ([]*Transition, error) {
	return nil, fmt.Errorf("%w: transitions of state type %q", domain.ErrMissingImplementation, b.Label)
}

type funcStateType struct {
	name string
	fn   func() ([]*Transition, error)
}

func (f *funcStateType) Name() string { return f.name }

func (f *funcStateType) Transitions() ([]*Transition, error) {
	if f.fn == nil {
		return nil, fmt.Errorf("%w: transitions of state type %q", domain.ErrMissingImplementation, f.name)
	}
	return f.fn()
}

// NewStateType builds a StateType from a name and a transition factory.
// fn may be nil, in which case Transitions reports a missing implementation.
func NewStateType(name string, fn func() ([]*Transition, error)) StateType {
	return &funcStateType{name: name, fn: fn}
}

// Terminal builds a StateType without outgoing transitions.
func Terminal(name string) StateType {
	return NewStateType(name, func() ([]*Transition, error) { return nil, nil })
}

// CheckStateType reports why t is not a usable state type, or nil.
func CheckStateType(t StateType) error {
	if t == nil {
		return &InvalidStateTypeError{Value: t, Reason: "nil"}
	}
	if v := reflect.ValueOf(t); v.Kind() == reflect.Pointer && v.IsNil() {
		return &InvalidStateTypeError{Value: t, Reason: "nil pointer"}
	}
	if t.Name() == "" {
		return &InvalidStateTypeError{Value: t, Reason: "empty name"}
	}
	return nil
}

// Env is the environment handed to state constructors: the collaborators a
// live state needs (clients, drivers, fixtures), by name.
type Env struct {
	values map[string]any
}

// NewEnv copies m into a new environment.
func NewEnv(m map[string]any) *Env {
	return &Env{values: maps.Clone(m)}
}

// Lookup returns the collaborator registered under name.
func (e *Env) Lookup(name string) (any, bool) {
	if e == nil {
		return nil, false
	}
	v, ok := e.values[name]
	return v, ok
}

// Get returns the collaborator registered under name, or nil.
func (e *Env) Get(name string) any {
	v, _ := e.Lookup(name)
	return v
}

// With returns a copy of the environment with name bound to v.
func (e *Env) With(name string, v any) *Env {
	var m map[string]any
	if e != nil {
		m = maps.Clone(e.values)
	}
	if m == nil {
		m = map[string]any{}
	}
	m[name] = v
	return &Env{values: m}
}
