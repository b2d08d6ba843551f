package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/ordinal/internal/cli"
	"github.com/example/ordinal/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "ordinal",
		Short:   "Ordinal - communication bus for the agent hierarchy",
		Version: version.String(),
		Long: `Ordinal is the communication bus between computational ranks:
subagents (level 1) ask the orchestrator (level 2), the orchestrator asks
the oracle (level 3, a human). Calls travel as durable requests through a
shared bus directory; every completed exchange is archived exactly once.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.CallCmd())
	rootCmd.AddCommand(cli.AwaitCmd())
	rootCmd.AddCommand(cli.RespondCmd())
	rootCmd.AddCommand(cli.PendingCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.HistoryCmd())
	rootCmd.AddCommand(cli.MonitorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
