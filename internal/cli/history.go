package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/ordinal/internal/wire"
)

// HistoryCmd returns the history command
func HistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show archived exchanges, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := wire.BusService().History(context.Background(), limit)
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}

			if len(records) == 0 {
				fmt.Println("No history on the bus yet.")
				return nil
			}

			for _, rec := range records {
				fmt.Printf("[%s] Q: %s\n", rec.Request.ID, truncate(rec.Request.Question, 80))
				fmt.Printf("  A: %s\n", truncate(rec.Response.Answer, 80))
				fmt.Printf("  Responder: %s | Urgency: %s | Status: %s\n",
					rec.Response.Responder, rec.Request.Urgency, rec.Request.Status)
				fmt.Printf("  Archived: %s\n", rec.ArchivedAt.Format(time.RFC3339))
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum number of exchanges to show")

	return cmd
}
