package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/ordinal/internal/ports/primary"
	"github.com/example/ordinal/internal/wire"
)

// RespondCmd returns the respond command
func RespondCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "respond [request-id] [answer]",
		Short: "Answer a pending call by hand",
		Long: `Answer a pending call as the oracle.

This is the manual path for questions waiting on a human: the answer is
recorded with responder=oracle, the exchange is archived, and the original
caller picks the answer up on its next poll.

Examples:
  ordinal respond a1b2c3d4 "yes, ship it"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, answer := args[0], args[1]

			if err := wire.BusService().Respond(context.Background(), id, answer); err != nil {
				if errors.Is(err, primary.ErrUnknownRequest) {
					return fmt.Errorf("no pending call with id %s (see: ordinal pending)", id)
				}
				return fmt.Errorf("failed to respond: %w", err)
			}

			fmt.Printf("✓ Response recorded for %s. The caller will receive it shortly.\n", id)
			return nil
		},
	}

	return cmd
}
