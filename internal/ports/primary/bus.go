// Package primary defines the primary ports (driving interfaces) for the bus.
package primary

import (
	"context"
	"errors"
	"time"

	"github.com/example/ordinal/internal/models"
)

// Caller-visible errors.
var (
	// ErrTimedOut is the normal terminal outcome of a call whose answer did
	// not arrive within the caller's deadline. Not a failure: the request
	// stays pending and a late answer is still recorded and archived.
	ErrTimedOut = errors.New("call timed out waiting for a response")

	// ErrInvalidLevel is returned synchronously when from_level is not a
	// valid caller level. Nothing is persisted.
	ErrInvalidLevel = errors.New("invalid from_level")

	// ErrUnknownRequest is returned by Respond when no pending request
	// matches the given id.
	ErrUnknownRequest = errors.New("no pending request with that id")
)

// BusService defines the primary port for caller-side bus operations.
type BusService interface {
	// Call submits a question and blocks until a response arrives or the
	// timeout elapses. Returns ErrTimedOut (wrapped with the request id) on
	// timeout, ErrInvalidLevel on a bad origin level.
	Call(ctx context.Context, req CallRequest) (*CallResult, error)

	// Submit is the fire-and-forget variant: it creates the request and
	// returns its id immediately, leaving correlation to a later Await.
	Submit(ctx context.Context, req CallRequest) (string, error)

	// Await polls for the response to a previously submitted request.
	Await(ctx context.Context, requestID string, timeout time.Duration) (*CallResult, error)

	// Respond answers a pending request by hand, equivalent to the human
	// relay path: the response is tagged oracle and the exchange archived.
	Respond(ctx context.Context, requestID, answer string) error

	// Status reports the size of the bus's record sets.
	Status(ctx context.Context) (*BusStatus, error)

	// ListPending returns the pending requests, oldest first.
	ListPending(ctx context.Context) ([]*models.Request, error)

	// History returns archived exchanges, most recent first.
	History(ctx context.Context, limit int) ([]*models.HistoryRecord, error)

	// Activity returns recent audit log entries, most recent first.
	Activity(ctx context.Context, limit int) ([]ActivityEntry, error)
}

// CallRequest carries the parameters of an upward call.
type CallRequest struct {
	Question  string
	Context   string
	Urgency   models.Urgency // defaults to normal when empty
	FromLevel models.Level
	Timeout   time.Duration // Call only; defaults to 5 minutes
}

// CallResult is the answer delivered to the original caller.
type CallResult struct {
	RequestID string
	Answer    string
	Responder models.Responder
}

// BusStatus reports the bus's record set sizes.
type BusStatus struct {
	Root          string
	PendingCount  int
	ResponseCount int
	HistoryCount  int
	Pending       []*models.Request
}

// ActivityEntry is an audit log row at the port boundary.
type ActivityEntry struct {
	RequestID string
	Event     string
	Detail    string
	CreatedAt string
}
