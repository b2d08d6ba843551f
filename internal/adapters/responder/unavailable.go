package responder

import (
	"context"
	"fmt"

	"github.com/example/ordinal/internal/models"
	"github.com/example/ordinal/internal/ports/secondary"
)

// Unavailable is a Responder with no configured backend. Every Answer fails,
// which leaves requests pending: the bus stays consistent and the exchange
// completes whenever an operator responds by hand or configures a command.
type Unavailable struct {
	name string
}

// NewUnavailable creates a placeholder responder for an unconfigured class.
func NewUnavailable(name string) *Unavailable {
	return &Unavailable{name: name}
}

// Answer always fails.
func (r *Unavailable) Answer(ctx context.Context, req *models.Request) (string, error) {
	return "", fmt.Errorf("responder %s is not configured", r.name)
}

// Ensure Unavailable implements the interface
var _ secondary.Responder = (*Unavailable)(nil)
