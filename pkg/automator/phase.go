package automator

// Standard phase names.
const (
	PhaseSetup       = "setup"
	PhaseExecute     = "execute"
	PhaseTeardown    = "teardown"
	PhaseBuildModel  = "build_model"
	PhaseVerifyModel = "verify_model"
)

// Validator decides, right before a phase, whether it should run.
type Validator func(a *Automation) bool

// Phase is one step of an automation.
type Phase struct {
	Name string
	// Required phases must have a handler; a missing one fails the run.
	Required bool
	// Validator, when set, may skip the phase without affecting the result.
	Validator Validator
}

// ValidFor reports whether the phase should run for a.
func (p Phase) ValidFor(a *Automation) bool {
	return p.Validator == nil || p.Validator(a)
}

// WhenSuccessful runs a phase only while the result is still SUCCESS.
func WhenSuccessful(a *Automation) bool {
	return a.Result().IsSuccess()
}

// StandardPhases returns setup, execute (required) and teardown.
func StandardPhases() []Phase {
	return []Phase{
		{Name: PhaseSetup},
		{Name: PhaseExecute, Required: true},
		{Name: PhaseTeardown},
	}
}
