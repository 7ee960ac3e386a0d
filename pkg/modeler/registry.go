package modeler

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Registry is an explicit table of state types by name. Transitions built with
// ToNamed resolve their targets through it, and a graph created WithRegistry
// only accepts registered types.
type Registry struct {
	mu    sync.RWMutex
	types map[string]StateType
}

// NewRegistry creates a registry holding the given types.
func NewRegistry(types ...StateType) (*Registry, error) {
	r := &Registry{types: make(map[string]StateType)}
	for _, t := range types {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds t. Registering a different type under a taken name fails;
// registering the same value twice is a no-op.
func (r *Registry) Register(t StateType) error {
	if err := CheckStateType(t); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.types[t.Name()]; ok && !sameType(existing, t) {
		return fmt.Errorf("state type %q already registered", t.Name())
	}
	r.types[t.Name()] = t
	return nil
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (StateType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Contains reports whether t itself is registered.
func (r *Registry) Contains(t StateType) bool {
	if t == nil {
		return false
	}
	got, ok := r.Lookup(t.Name())
	return ok && sameType(got, t)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.types))
}

func sameType(a, b StateType) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
