package automator

import (
	"fmt"
	"strconv"

	"github.com/aretw0/ladon/pkg/domain"
)

// Check computes the outcome of an assertion. Only the boolean true passes.
type Check func() any

type assertion struct {
	halting     bool
	expected    any
	actual      any
	hasExpected bool
	hasActual   bool
}

// AssertOption configures a single assertion.
type AssertOption func(*assertion)

// Halting makes a failed assertion return an *AssertionFailedError, which
// aborts the current phase when returned from it.
func Halting() AssertOption {
	return func(a *assertion) {
		a.halting = true
	}
}

// WithExpected records the expected value in the failure report.
func WithExpected(v any) AssertOption {
	return func(a *assertion) {
		a.expected = v
		a.hasExpected = true
	}
}

// WithActual records the actual value in the failure report.
func WithActual(v any) AssertOption {
	return func(a *assertion) {
		a.actual = v
		a.hasActual = true
	}
}

// Assert evaluates check inside the sandbox and reports whether it passed. A
// check passes when it neither panics nor returns an error, and returns exactly
// the boolean true; truthy values such as 1 or "yes" fail. A panicking check
// is caught like any sandboxed failure and leaves the result at ERROR.
//
// A failure marks the result FAILURE. Non-halting failures are logged at ERROR
// and return (false, nil); halting failures return an *AssertionFailedError.
func (a *Automation) Assert(msg string, check Check, opts ...AssertOption) (bool, error) {
	if check == nil {
		return false, fmt.Errorf("%w: assertion %q", domain.ErrBlockRequired, msg)
	}
	cfg := assertion{}
	for _, opt := range opts {
		opt(&cfg)
	}

	passed, details := a.evaluate(msg, check)
	if passed {
		a.logger.Debug("assertion passed", "assertion", msg)
		return true, nil
	}

	a.result.MarkFailure()
	if cfg.hasExpected {
		details = append(details, fmt.Sprintf("expected: %#v", cfg.expected))
	}
	if cfg.hasActual {
		details = append(details, fmt.Sprintf("actual: %#v", cfg.actual))
	}

	if cfg.halting {
		return false, &AssertionFailedError{Message: msg, Details: details}
	}
	a.logger.Error("assertion failed: "+msg, domain.LinesKey, details)
	return false, nil
}

// HaltingAssert is Assert with Halting. It returns nil when the check passed.
func (a *Automation) HaltingAssert(msg string, check Check, opts ...AssertOption) error {
	_, err := a.Assert(msg, check, append(opts, Halting())...)
	return err
}

func (a *Automation) evaluate(msg string, check Check) (bool, []string) {
	var v any
	caught := a.Sandbox("assertion "+strconv.Quote(msg), func() error {
		v = check()
		if err, ok := v.(error); ok && err != nil {
			return err
		}
		return nil
	})
	if caught != nil {
		return false, []string{"check did not complete: " + caught.Error()}
	}
	if b, ok := v.(bool); ok && b {
		return true, nil
	}
	return false, []string{fmt.Sprintf("check returned %#v", v)}
}
