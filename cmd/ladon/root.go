package main

import (
	"github.com/aretw0/ladon/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var a *app
	current := func() *app { return a }

	rootCmd := &cobra.Command{
		Use:   "ladon",
		Short: "Ladon runs model-based test automations",
		Long: `Ladon runs phased test scripts against models of the software under test,
persists their results and reports them as text, markdown, JSON, YAML or JUnit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("log-level") {
				s.LogLevel, _ = flags.GetString("log-level")
			}
			if flags.Changed("log-format") {
				s.LogFormat, _ = flags.GetString("log-format")
			}
			if flags.Changed("redis-addr") {
				s.RedisAddr, _ = flags.GetString("redis-addr")
			}
			if flags.Changed("results-dir") {
				s.ResultsDir, _ = flags.GetString("results-dir")
			}
			a, err = newApp(cmd, s)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a == nil {
				return nil
			}
			return a.Close()
		},
		Run: func(cmd *cobra.Command, args []string) {
			tui.PrintBanner(cmd.OutOrStdout())
			_ = cmd.Help()
		},
	}

	// Persistent flags (available to all commands)
	pf := rootCmd.PersistentFlags()
	pf.String("log-level", "", "log level of the CLI and of runs: DEBUG, INFO, WARN, ERROR, FATAL (env LADON_LOG_LEVEL)")
	pf.String("log-format", "text", "operational log format: text or json (env LADON_LOG_FORMAT)")
	pf.String("redis-addr", "", "store results in Redis at this address and lock batches there (env LADON_REDIS_ADDR)")
	pf.String("results-dir", ".ladon/results", "directory of the file result store (env LADON_RESULTS_DIR)")

	rootCmd.AddCommand(
		newRunCmd(current),
		newBatchCmd(current),
		newShowCmd(current),
		newListCmd(current),
		newGraphCmd(current),
		newServeCmd(current),
		newVersionCmd(),
	)
	return rootCmd
}
