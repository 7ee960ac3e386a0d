/*
Package runner finds, runs and persists automations.

Scripts register a Factory under a name, usually from an init function:

	func init() {
		runner.Register("checkout", func() automator.Script { return &Checkout{} })
	}

A Runner resolves a Request against its Registry (an empty name selects the
only concrete script), spawns the automation, runs it and saves the result
snapshot to an optional ports.ResultStore.

# Batches

Batch is itself a script. Its manifest lists automation configs, each
expanded into one instance per flag set and repeat:

	r := runner.New(runner.WithStore(store))
	_, res, err := r.RunBatch(ctx, map[string]any{runner.FlagConfigFile: "nightly.yaml"})

Instances start run_delay apart and run concurrently; the batch succeeds
only when every instance does.
*/
package runner
