package main

import (
	"fmt"
	"time"

	"github.com/aretw0/ladon/pkg/runner"
	"github.com/spf13/cobra"
)

func newBatchCmd(current func() *app) *cobra.Command {
	var (
		name        string
		maxParallel int
		runDelay    time.Duration
	)

	batchCmd := &cobra.Command{
		Use:   "batch <manifest>",
		Short: "Run every automation of a batch manifest",
		Long: `Loads a YAML or JSON batch manifest, spawns one run per flag set and instance,
runs them concurrently and fails unless all of them succeed. With --redis-addr,
batches of the same name are serialized through a Redis lock.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			flags := map[string]any{
				runner.FlagConfigFile:  args[0],
				runner.FlagMaxParallel: maxParallel,
			}
			if name != "" {
				flags[runner.FlagBatchName] = name
			}
			if cmd.Flags().Changed("run-delay") {
				flags[runner.FlagRunDelay] = runDelay
			}

			var opts []runner.BatchOption
			if a.locker != nil {
				opts = append(opts, runner.WithLocker(a.locker, runner.DefaultLockTTL))
			}
			b, res, err := a.runner().RunBatch(cmd.Context(), flags, opts...)
			if err != nil {
				return err
			}
			for _, child := range b.Instances() {
				printSummary(cmd, child.Result())
			}
			printSummary(cmd, res)
			if !res.IsSuccess() {
				return errNotSuccessful
			}
			return nil
		},
	}

	f := batchCmd.Flags()
	f.StringVar(&name, "name", "", "batch name; defaults to the manifest's batch_name")
	f.IntVar(&maxParallel, "max-parallel", 0, "maximum concurrent runs; 0 means no limit")
	f.DurationVar(&runDelay, "run-delay", runner.DefaultRunDelay, "delay between run starts")
	return batchCmd
}

func newListCmd(current func() *app) *cobra.Command {
	var results bool

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List runnable scripts, or stored results with --results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !results {
				for _, name := range runner.Default.Concrete() {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			ids, err := current().store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(out, id)
			}
			return nil
		},
	}
	listCmd.Flags().BoolVar(&results, "results", false, "list stored run IDs instead of scripts")
	return listCmd
}
