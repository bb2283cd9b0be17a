package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version information. These can be overridden at build time via -ldflags.
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := setup(cmd); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "chatmood %s\n", color.New(color.FgGreen, color.Bold).Sprint(Version))
		if GitCommit != "" {
			fmt.Fprintf(out, "commit: %s\n", GitCommit)
		}
		if BuildDate != "" {
			fmt.Fprintf(out, "built:  %s\n", BuildDate)
		}
		return nil
	},
}
