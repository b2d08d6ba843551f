package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/ordinal/internal/models"
	"github.com/example/ordinal/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	var showLog bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current state of the bus",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			status, err := wire.BusService().Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to read bus status: %w", err)
			}

			fmt.Printf("Bus directory: %s\n", status.Root)
			fmt.Printf("Pending requests: %d\n", status.PendingCount)
			fmt.Printf("Unclaimed responses: %d\n", status.ResponseCount)
			fmt.Printf("Archived exchanges: %d\n", status.HistoryCount)

			if len(status.Pending) > 0 {
				fmt.Println()
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
				fmt.Fprintln(w, "ID\tFROM\tURGENCY\tSTATUS\tQUESTION")
				for _, req := range status.Pending {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						req.ID,
						req.FromLevel,
						urgencyLabel(req.Urgency),
						req.Status,
						truncate(req.Question, 60),
					)
				}
				w.Flush()
			}

			if showLog {
				entries, err := wire.BusService().Activity(ctx, 20)
				if err != nil {
					return fmt.Errorf("failed to read activity log: %w", err)
				}
				if len(entries) > 0 {
					fmt.Println()
					fmt.Println("Recent activity:")
					for _, e := range entries {
						fmt.Printf("  %s  [%s] %s %s\n", e.CreatedAt, e.RequestID, e.Event, e.Detail)
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&showLog, "log", false, "include recent activity log entries")

	return cmd
}

// urgencyLabel renders urgency uppercase, colored by severity.
func urgencyLabel(u models.Urgency) string {
	switch u {
	case models.UrgencyCritical:
		return color.RedString("CRITICAL")
	case models.UrgencyHigh:
		return color.YellowString("HIGH")
	case models.UrgencyLow:
		return color.HiBlackString("LOW")
	default:
		return "NORMAL"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
