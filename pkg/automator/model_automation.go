package automator

import (
	"context"
	"fmt"

	"github.com/aretw0/ladon/pkg/modeler"
)

// ModelAutomation is the base of scripts driven through a model. Embed it,
// build the machine in a build_model handler and override Abstract:
//
//	type checkout struct{ automator.ModelAutomation }
//
//	func (c *checkout) Abstract() bool { return false }
//
//	func (c *checkout) Handler(phase string) automator.PhaseFunc {
//		switch phase {
//		case automator.PhaseBuildModel:
//			return c.build
//		case automator.PhaseExecute:
//			return c.execute
//		}
//		return c.ModelAutomation.Handler(phase)
//	}
//
// Setup and execute only run while the result is successful; teardown only runs
// once the model was verified.
type ModelAutomation struct {
	Model    modeler.Model
	verified bool
}

// Phases returns build_model, verify_model, setup, execute and teardown.
func (m *ModelAutomation) Phases() []Phase {
	return []Phase{
		{Name: PhaseBuildModel, Required: true},
		{Name: PhaseVerifyModel, Required: true},
		{Name: PhaseSetup, Validator: WhenSuccessful},
		{Name: PhaseExecute, Required: true, Validator: WhenSuccessful},
		{Name: PhaseTeardown, Validator: func(*Automation) bool { return m.verified }},
	}
}

// Handler provides verify_model. Every other phase is up to the embedder.
func (m *ModelAutomation) Handler(phase string) PhaseFunc {
	if phase == PhaseVerifyModel {
		return m.VerifyModel
	}
	return nil
}

// Abstract is true: ModelAutomation itself cannot run.
func (m *ModelAutomation) Abstract() bool {
	return true
}

// VerifyModel fails unless the model is a finite state machine.
func (m *ModelAutomation) VerifyModel(_ context.Context, _ *Automation) error {
	fsm, ok := m.Model.(*modeler.FiniteStateMachine)
	if !ok || fsm == nil {
		return fmt.Errorf("the model must be a finite state machine, got %T", m.Model)
	}
	m.verified = true
	return nil
}

// Verified reports whether verify_model succeeded.
func (m *ModelAutomation) Verified() bool {
	return m.verified
}

// FSM returns the model as a machine, or nil before it was built.
func (m *ModelAutomation) FSM() *modeler.FiniteStateMachine {
	fsm, _ := m.Model.(*modeler.FiniteStateMachine)
	return fsm
}
