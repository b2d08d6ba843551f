// Package bus contains the pure business logic for bus operations.
// Guards are pure functions that evaluate preconditions without side effects.
package bus

import (
	"fmt"

	"github.com/example/ordinal/internal/models"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// SubmitContext provides context for request submission guards.
type SubmitContext struct {
	FromLevel models.Level
	Question  string
	Urgency   models.Urgency
}

// CanSubmit evaluates whether a request can be submitted to the bus.
// Rules:
// - FromLevel must be subagent (1) or orchestrator (2)
// - Question must be non-empty
// - Urgency must be a recognized value
func CanSubmit(ctx SubmitContext) GuardResult {
	if ctx.FromLevel != models.LevelSubagent && ctx.FromLevel != models.LevelOrchestrator {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("invalid from_level %d: only subagent (1) and orchestrator (2) may call upward", ctx.FromLevel),
		}
	}

	if ctx.Question == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "question must not be empty",
		}
	}

	if !ctx.Urgency.Valid() {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("invalid urgency %q (must be one of: low, normal, high, critical)", ctx.Urgency),
		}
	}

	return GuardResult{Allowed: true}
}

// ToLevel derives the destination level for a call. Calls always go exactly
// one level up.
func ToLevel(from models.Level) models.Level {
	return from + 1
}
