package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/ordinal/internal/models"
	"github.com/example/ordinal/internal/ports/primary"
	"github.com/example/ordinal/internal/wire"
)

// CallCmd returns the call command
func CallCmd() *cobra.Command {
	var (
		contextText string
		urgency     string
		fromLevel   int
		timeout     time.Duration
		async       bool
	)

	cmd := &cobra.Command{
		Use:   "call [question]",
		Short: "Ask a question upward on the bus",
		Long: `Submit an upward call and wait for the answer.

Subagents (--from-level 1) are answered by the orchestrator's answer
engine; the orchestrator (--from-level 2, the default) is answered by the
human oracle. The call blocks until an answer arrives or the timeout
elapses. A timed-out request stays on the bus: a late answer is still
recorded and archived.

Examples:
  ordinal call "deploy to production?"
  ordinal call "how should I handle this edge case?" --from-level 1
  ordinal call "rotate the keys?" --urgency critical --timeout 10m
  ordinal call "long running question?" --async`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := primary.CallRequest{
				Question:  args[0],
				Context:   contextText,
				Urgency:   models.Urgency(urgency),
				FromLevel: models.Level(fromLevel),
				Timeout:   timeout,
			}

			if async {
				id, err := wire.BusService().Submit(context.Background(), req)
				if err != nil {
					return fmt.Errorf("failed to submit call: %w", err)
				}
				fmt.Printf("✓ Submitted call %s (await with: ordinal await %s)\n", id, id)
				return nil
			}

			result, err := wire.BusService().Call(context.Background(), req)
			if err != nil {
				if errors.Is(err, primary.ErrTimedOut) {
					return fmt.Errorf("no response arrived in time: %w", err)
				}
				return fmt.Errorf("call failed: %w", err)
			}

			printResult(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&contextText, "context", "c", "", "context to help the responder understand the situation")
	cmd.Flags().StringVarP(&urgency, "urgency", "u", string(models.UrgencyNormal), "urgency: low, normal, high, critical")
	cmd.Flags().IntVarP(&fromLevel, "from-level", "l", int(models.LevelOrchestrator), "caller's ordinal level (1 subagent, 2 orchestrator)")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "how long to wait for an answer (default 5m)")
	cmd.Flags().BoolVar(&async, "async", false, "submit and return the request id immediately")

	return cmd
}

// AwaitCmd returns the await command
func AwaitCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "await [request-id]",
		Short: "Wait for the answer to a previously submitted call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := wire.BusService().Await(context.Background(), args[0], timeout)
			if err != nil {
				if errors.Is(err, primary.ErrTimedOut) {
					return fmt.Errorf("no response arrived in time: %w", err)
				}
				return fmt.Errorf("await failed: %w", err)
			}

			printResult(result)
			return nil
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "how long to wait for an answer (default 5m)")

	return cmd
}

func printResult(result *primary.CallResult) {
	fmt.Printf("✓ Response from %s (%s):\n", result.Responder, result.RequestID)
	fmt.Println(result.Answer)
}
