package modeler

import (
	"io"
	"log/slog"
)

// InvalidTransitionsHandler receives the transitions of a state type that could
// not be registered (nil entries or structurally invalid ones).
type InvalidTransitionsHandler func(t StateType, invalid []*Transition)

// SelectionStrategy picks one transition among the valid candidates.
// Returning (nil, nil) means nothing was chosen.
type SelectionStrategy func(candidates []*Transition) (*Transition, error)

// InstantiateFunc builds the live instance of a state type for a machine.
type InstantiateFunc func(t StateType, env *Env) (State, error)

type settings struct {
	kind        string
	logger      *slog.Logger
	registry    *Registry
	onInvalid   InvalidTransitionsHandler
	prefilter   func(*Transition) bool
	selection   SelectionStrategy
	instantiate InstantiateFunc
	env         *Env
}

// Option configures a Graph or a FiniteStateMachine.
type Option func(*settings)

// WithKind overrides the kind used to decide whether two models may merge.
func WithKind(kind string) Option {
	return func(s *settings) {
		if kind != "" {
			s.kind = kind
		}
	}
}

// WithLogger sets the logger used for load and transition events (debug level).
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRegistry restricts the model to state types registered in reg.
func WithRegistry(reg *Registry) Option {
	return func(s *settings) {
		s.registry = reg
	}
}

// WithInvalidTransitionsHandler sets the hook that receives unusable transitions.
func WithInvalidTransitionsHandler(h InvalidTransitionsHandler) Option {
	return func(s *settings) {
		s.onInvalid = h
	}
}

// WithPrefilter sets the machine-wide filter applied before guards are evaluated.
func WithPrefilter(f func(*Transition) bool) Option {
	return func(s *settings) {
		s.prefilter = f
	}
}

// WithSelectionStrategy sets how the machine picks among valid transitions.
func WithSelectionStrategy(sel SelectionStrategy) Option {
	return func(s *settings) {
		s.selection = sel
	}
}

// WithInstantiator overrides how live state instances are built.
func WithInstantiator(fn InstantiateFunc) Option {
	return func(s *settings) {
		s.instantiate = fn
	}
}

// WithEnv sets the environment passed to state constructors.
func WithEnv(env *Env) Option {
	return func(s *settings) {
		s.env = env
	}
}

func newSettings(kind string, opts []Option) settings {
	s := settings{
		kind:   kind,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
