package secondary

import (
	"context"

	"github.com/example/ordinal/internal/models"
)

// Responder defines the secondary port for answer-producing collaborators.
// The bus treats both concrete mechanisms (the automated answer engine and
// the human relay) as the same opaque capability.
type Responder interface {
	// Answer produces the answer text for a question. Blocking; honors ctx
	// cancellation. A returned error means the responder was unavailable:
	// the request stays pending and the monitor retries on a later cycle.
	Answer(ctx context.Context, req *models.Request) (string, error)
}

// ActivityLog defines the interface for recording bus audit events.
// Logging must never affect bus semantics: implementations report failures
// as errors but callers only warn on them.
type ActivityLog interface {
	// Record appends an audit event for a request id.
	// event is one of: created, answered, archived, timed_out, responded.
	Record(ctx context.Context, requestID, event, detail string) error

	// Recent returns the latest entries, most recent first.
	Recent(ctx context.Context, limit int) ([]*ActivityEntry, error)
}

// ActivityEntry is a single audit log row.
type ActivityEntry struct {
	ID        int64
	RequestID string
	Event     string
	Detail    string
	CreatedAt string
}

// Router selects the responder for a request and tags the resulting
// response. Kept as a port so monitor tests can substitute routing.
type Router interface {
	// Route returns the responder capability and the responder tag for a
	// request origin level.
	Route(from models.Level) (Responder, models.Responder, error)
}
