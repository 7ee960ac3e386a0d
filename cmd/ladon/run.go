package main

import (
	"fmt"
	"os"
	"time"

	"github.com/aretw0/ladon/internal/presentation/tui"
	"github.com/aretw0/ladon/pkg/automator"
	"github.com/aretw0/ladon/pkg/domain"
	"github.com/aretw0/ladon/pkg/runner"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

func newRunCmd(current func() *app) *cobra.Command {
	var (
		pairs        []string
		flagsFile    string
		id           string
		outputFormat string
		outputFile   string
	)

	runCmd := &cobra.Command{
		Use:   "run [script]",
		Short: "Run a registered script",
		Long: `Runs one script through its phases, saves the result in the result store and
prints a summary. The script name may be omitted when only one script is registered.
Exits with status 1 unless the result is SUCCESS.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			flags, err := scriptFlags(flagsFile, pairs)
			if err != nil {
				return err
			}
			if outputFormat == "" {
				outputFormat = a.settings.OutputFormat
			}
			if outputFormat != "" {
				flags[automator.FlagOutputFormat] = outputFormat
			}
			if outputFile != "" {
				flags[automator.FlagOutputFile] = outputFile
			}

			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			r := a.runner(runner.WithOutput(cmd.OutOrStdout()))
			res, err := r.Run(cmd.Context(), runner.Request{Name: name, ID: id, LogLevel: a.settings.LogLevel, Flags: flags})
			if err != nil {
				return err
			}
			printSummary(cmd, res)
			if !res.IsSuccess() {
				return errNotSuccessful
			}
			return nil
		},
	}

	f := runCmd.Flags()
	f.StringArrayVarP(&pairs, "flag", "f", nil, "script flag as key=value; repeatable")
	f.StringVar(&flagsFile, "flags-file", "", "YAML or JSON file of script flags")
	f.StringVar(&id, "id", "", "run ID; generated when empty")
	f.StringVarP(&outputFormat, "output-format", "o", "", "render the result: text, markdown, json, yaml, junit (env LADON_OUTPUT_FORMAT)")
	f.StringVar(&outputFile, "output-file", "", "write the rendered result to this file; the format follows the extension")
	return runCmd
}

// printSummary writes one status line to stderr, colored when it is a terminal.
func printSummary(cmd *cobra.Command, res *domain.Result) {
	profile := termenv.Ascii
	if tui.IsTerminal(os.Stderr) {
		profile = termenv.EnvColorProfile()
	}
	snap := res.Snapshot()
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %s (%s)\n",
		snap.Config.ClassName, snap.Config.ID, tui.Status(profile, snap.Status),
		snap.TotalDuration().Round(time.Millisecond))
}
