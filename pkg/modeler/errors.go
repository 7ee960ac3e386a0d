package modeler

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidStateType is returned when a value does not satisfy the state type capability check.
	ErrInvalidStateType = errors.New("invalid state type")

	// ErrAlreadyLoaded is returned when a transition's target resolution is changed after it was loaded.
	ErrAlreadyLoaded = errors.New("transition target already loaded")

	// ErrNoCurrentState is returned when a transition is requested before the machine entered a state.
	ErrNoCurrentState = errors.New("no current state")

	// ErrInvalidMerge is returned when two models of different kinds are merged.
	ErrInvalidMerge = errors.New("invalid merge")

	// ErrUnknownState is returned when transitions are loaded for a state that is not loaded.
	ErrUnknownState = errors.New("unknown state")

	// ErrTargetNotLoaded is returned when a transition target is identified before it was loaded.
	ErrTargetNotLoaded = errors.New("transition target not loaded")

	// ErrNoTransitionSelected is returned when the selection strategy picks nothing.
	ErrNoTransitionSelected = errors.New("no transition selected")

	// ErrInvalidTransition is returned for transitions that cannot be registered or executed.
	ErrInvalidTransition = errors.New("invalid transition")
)

// InvalidStateTypeError describes the value that failed the state type check.
type InvalidStateTypeError struct {
	Value  any
	Reason string
}

func (e *InvalidStateTypeError) Error() string {
	return fmt.Sprintf("%v: %T (%s)", ErrInvalidStateType, e.Value, e.Reason)
}

func (e *InvalidStateTypeError) Unwrap() error {
	return ErrInvalidStateType
}
