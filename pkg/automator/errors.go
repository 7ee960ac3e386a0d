package automator

import (
	"errors"
	"fmt"

	"github.com/aretw0/ladon/pkg/domain"
)

// ErrUnknownPhase is returned by RunThrough for a phase the script does not declare.
var ErrUnknownPhase = errors.New("unknown phase")

// ErrNilScript is returned when an automation is built without a script.
var ErrNilScript = errors.New("nil script")

// AssertionFailedError is returned by halting assertions. It matches domain.ErrAssertionFailed.
type AssertionFailedError struct {
	Message string
	Details []string
}

func (e *AssertionFailedError) Error() string {
	return fmt.Sprintf("assertion failed: %s", e.Message)
}

func (e *AssertionFailedError) Unwrap() error {
	return domain.ErrAssertionFailed
}

// PanicError wraps a value recovered from a panicking block.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the recovered value when it was an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
