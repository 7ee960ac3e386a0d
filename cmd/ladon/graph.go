package main

import (
	"fmt"

	"github.com/aretw0/ladon/internal/presentation/graph"
	"github.com/aretw0/ladon/pkg/automator"
	"github.com/aretw0/ladon/pkg/modeler"
	"github.com/aretw0/ladon/pkg/runner"
	"github.com/spf13/cobra"
)

// modelScript is implemented by scripts built on automator.ModelAutomation.
type modelScript interface {
	FSM() *modeler.FiniteStateMachine
}

func newGraphCmd(current func() *app) *cobra.Command {
	var pairs []string

	graphCmd := &cobra.Command{
		Use:   "graph <script>",
		Short: "Export the model of a script as a Mermaid diagram",
		Long: `Runs the script's build_model and verify_model phases only, then prints the
loaded part of the model as a Mermaid flowchart (graph TD) with the initial
state highlighted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, err := scriptFlags("", pairs)
			if err != nil {
				return err
			}
			a, err := current().runner().Spawn(runner.Request{Name: args[0], Flags: flags, Quiet: true})
			if err != nil {
				return err
			}
			if _, ok := a.Script().(modelScript); !ok {
				return fmt.Errorf("script %s is not model based", args[0])
			}

			res, err := a.RunThrough(cmd.Context(), automator.PhaseVerifyModel)
			if err != nil {
				return err
			}
			fsm := a.Script().(modelScript).FSM()
			if !res.IsSuccess() || fsm == nil {
				printSummary(cmd, res)
				return errNotSuccessful
			}

			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(fsm, graph.OverlayFor(fsm)))
			return nil
		},
	}
	graphCmd.Flags().StringArrayVarP(&pairs, "flag", "f", nil, "script flag as key=value; repeatable")
	return graphCmd
}
