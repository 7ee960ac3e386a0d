package automator

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/aretw0/ladon/pkg/domain"
)

// Sandbox runs block, catching its error or panic. A caught failure is logged
// with its trace and escalates the result to ERROR. That includes a halting
// assertion escaping the block: the assertion itself recorded FAILURE, the
// uncaught unwinding is an ERROR.
//
// The caught error is returned for information only; it has already been
// folded into the result. A nil block is a usage error (domain.ErrBlockRequired).
func (a *Automation) Sandbox(name string, block func() error) (caught error) {
	if block == nil {
		return fmt.Errorf("%w: sandbox %q", domain.ErrBlockRequired, name)
	}

	defer func() {
		if r := recover(); r != nil {
			caught = &PanicError{Value: r, Stack: debug.Stack()}
		}
		if caught != nil {
			a.onSandboxError(name, caught)
		}
	}()

	return block()
}

func (a *Automation) onSandboxError(name string, err error) {
	a.result.MarkError()

	var failed *AssertionFailedError
	if errors.As(err, &failed) {
		a.logger.Error(fmt.Sprintf("halting assertion failed in %s: %s", name, failed.Message),
			domain.LinesKey, failed.Details)
		return
	}

	kind := "error"
	var p *PanicError
	if errors.As(err, &p) {
		kind = "panic"
	}
	a.logger.Error(fmt.Sprintf("%s in %s: %v", kind, name, err), domain.LinesKey, traceLines(err))
}

// traceLines renders the cause chain of err and, for panics, the goroutine stack.
func traceLines(err error) []string {
	var lines []string
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		lines = append(lines, "caused by: "+cause.Error())
	}
	var p *PanicError
	if errors.As(err, &p) && len(p.Stack) > 0 {
		for _, l := range strings.Split(strings.TrimRight(string(p.Stack), "\n"), "\n") {
			lines = append(lines, strings.TrimRight(l, " \t"))
		}
	}
	return lines
}
