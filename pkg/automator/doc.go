/*
Package automator runs scripts against the software under test.

A Script declares a phase plan and a handler per phase. An Automation walks the
plan once, in order:

  - a phase whose Validator returns false is skipped with a warning;
  - a phase without a handler is skipped, failing the run when it is Required;
  - every other phase is timed and run inside Sandbox, which turns returned
    errors and panics into log entries and an ERROR status.

Assertions mark the result FAILURE without stopping the phase, unless they are
halting, in which case the phase handler should return the *AssertionFailedError
they produce. The phase then stops and the sandbox escalates the run to ERROR:

	func execute(ctx context.Context, a *automator.Automation) error {
		if err := a.HaltingAssert("cart is empty", func() any { return cart.Len() == 0 }); err != nil {
			return err
		}
		a.Assert("banner shown", func() any { return page.HasBanner() })
		return nil
	}

Flags are declared by scripts (FlagDeclarer) and resolved from the run's
Config, the script's overrides (FlagDefaulter) and their defaults. The
output_format and output_file flags are understood by every automation and
render the Result once the last phase has run.
*/
package automator
