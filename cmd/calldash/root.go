package main

import (
	"github.com/spf13/cobra"
)

// newRootCmd creates the root calldash command with all subcommands attached.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "calldash",
		Short:         "Live monitor for Medicare outbound care calls",
		Long:          "calldash places outbound calls through the orchestration backend\nand follows each call's realtime transcript, tool calls and quality.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newServeCmd(),
		newWatchCmd(),
	)

	return cmd
}
