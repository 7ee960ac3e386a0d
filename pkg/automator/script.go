package automator

import "context"

// PhaseFunc implements one phase. Returned errors and panics are caught by the
// automation's sandbox and folded into the result.
type PhaseFunc func(ctx context.Context, a *Automation) error

// Script is what an Automation runs: a phase plan and the handlers for it.
// Handler returns nil for phases the script does not implement.
type Script interface {
	Phases() []Phase
	Handler(phase string) PhaseFunc
}

// AbstractScript is implemented by scripts meant to be embedded rather than run.
type AbstractScript interface {
	Abstract() bool
}

// FlagDeclarer is implemented by scripts that accept flags.
type FlagDeclarer interface {
	Flags() []*Flag
}

// FlagDefaulter is implemented by scripts that override the default of flags
// declared with ClassOverride.
type FlagDefaulter interface {
	FlagDefault(name string) (any, bool)
}

// IsAbstract reports whether s declares itself abstract.
func IsAbstract(s Script) bool {
	a, ok := s.(AbstractScript)
	return ok && a.Abstract()
}

// Steps is a Script assembled from a phase plan and a handler table.
// A nil Plan means StandardPhases.
type Steps struct {
	Plan       []Phase
	Funcs      map[string]PhaseFunc
	Declared   []*Flag
	Defaults   map[string]any
	IsAbstract bool
}

func (s *Steps) Phases() []Phase {
	if s.Plan == nil {
		return StandardPhases()
	}
	return s.Plan
}

func (s *Steps) Handler(phase string) PhaseFunc {
	return s.Funcs[phase]
}

func (s *Steps) Flags() []*Flag {
	return s.Declared
}

func (s *Steps) FlagDefault(name string) (any, bool) {
	v, ok := s.Defaults[name]
	return v, ok
}

func (s *Steps) Abstract() bool {
	return s.IsAbstract
}
