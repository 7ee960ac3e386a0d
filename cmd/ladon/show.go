package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/aretw0/ladon/internal/presentation/tui"
	"github.com/aretw0/ladon/pkg/render"
	"github.com/spf13/cobra"
)

func newShowCmd(current func() *app) *cobra.Command {
	var format string

	showCmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Render a stored result",
		Long: `Loads a result from the result store and renders it. Markdown written to a
terminal is styled.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			snap, err := current().store.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", args[0], err)
			}

			if f != render.FormatMarkdown || cmd.OutOrStdout() != os.Stdout || !tui.IsTerminal(os.Stdout) {
				return render.Render(cmd.OutOrStdout(), f, snap)
			}

			var buf bytes.Buffer
			if err := render.Markdown(&buf, snap); err != nil {
				return err
			}
			styled, err := tui.NewRenderer(0)(buf.String())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), styled)
			return err
		},
	}
	showCmd.Flags().StringVarP(&format, "format", "o", "markdown", "text, markdown, json, yaml or junit")
	return showCmd
}
