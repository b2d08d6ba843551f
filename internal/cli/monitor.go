package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/ordinal/internal/wire"
)

// MonitorCmd returns the monitor command
func MonitorCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Run the responder-side loop",
		Long: `Continuously drain pending calls: route each to its responder class,
record the answer, and archive the completed exchange.

Subagent calls go to the answer engine (ORDINAL_ENGINE_COMMAND);
orchestrator calls go to the human relay (ORDINAL_RELAY_COMMAND). A call
whose responder is unavailable stays pending and is retried next cycle.
Multiple monitor instances may run against the same bus; racing instances
archive each exchange exactly once.

Examples:
  ordinal monitor
  ordinal monitor --once`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if once {
				if err := wire.MonitorService().DrainOnce(ctx); err != nil {
					return fmt.Errorf("drain pass failed: %w", err)
				}
				fmt.Println("✓ Drain pass complete")
				return nil
			}

			if err := wire.MonitorService().Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("monitor failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "perform a single drain pass and exit")

	return cmd
}
