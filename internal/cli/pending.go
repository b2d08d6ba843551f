package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/ordinal/internal/wire"
)

// PendingCmd returns the pending command
func PendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List pending calls waiting for a response",
		RunE: func(cmd *cobra.Command, args []string) error {
			pending, err := wire.BusService().ListPending(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list pending calls: %w", err)
			}

			if len(pending) == 0 {
				fmt.Println("No pending calls on the bus.")
				return nil
			}

			for _, req := range pending {
				fmt.Printf("Request ID: %s\n", req.ID)
				fmt.Printf("  From: %s (level %d) -> %s (level %d)\n", req.FromLevel, int(req.FromLevel), req.ToLevel, int(req.ToLevel))
				fmt.Printf("  Question: %s\n", req.Question)
				if req.Context != "" {
					fmt.Printf("  Context: %s\n", req.Context)
				}
				fmt.Printf("  Urgency: %s\n", urgencyLabel(req.Urgency))
				fmt.Printf("  Created: %s\n", req.CreatedAt.Format(time.RFC3339))
				fmt.Printf("  Status: %s\n", req.Status)
				fmt.Println()
			}

			return nil
		},
	}

	return cmd
}
