package main

import (
	"fmt"
	"strings"

	ladon "github.com/aretw0/ladon"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of ladon",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ladon version %s\n", strings.TrimSpace(ladon.Version))
		},
	}
}
