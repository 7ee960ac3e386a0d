package runner

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/ladon/pkg/automator"
)

// Factory creates a fresh script instance for one run.
type Factory func() automator.Script

// Registry maps script names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under name. Names are unique.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" {
		return fmt.Errorf("script name cannot be empty")
	}
	if f == nil {
		return fmt.Errorf("script %q: nil factory", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("script %q already registered", name)
	}
	r.factories[name] = f
	return nil
}

// MustRegister is Register for init functions; it panics on error.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Concrete returns the sorted names of the scripts that are not abstract.
func (r *Registry) Concrete() []string {
	var out []string
	for _, name := range r.Names() {
		f, _ := r.Lookup(name)
		if !automator.IsAbstract(f()) {
			out = append(out, name)
		}
	}
	return out
}

// Resolve finds the script to run. An empty name selects the single concrete
// script, failing with ErrNoScript or ErrAmbiguousScript otherwise.
func (r *Registry) Resolve(name string) (string, Factory, error) {
	if name == "" {
		concrete := r.Concrete()
		switch len(concrete) {
		case 0:
			return "", nil, ErrNoScript
		case 1:
			name = concrete[0]
		default:
			return "", nil, fmt.Errorf("%w: %v", ErrAmbiguousScript, concrete)
		}
	}

	f, ok := r.Lookup(name)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownScript, name)
	}
	return name, f, nil
}

// Default is the registry scripts add themselves to from init functions.
var Default = NewRegistry()

// Register adds a factory to the Default registry. It panics on error, so that
// name clashes surface at program start.
func Register(name string, f Factory) {
	Default.MustRegister(name, f)
}
