// Package secondary defines the secondary ports (driven adapters) for the bus.
package secondary

import (
	"context"
	"errors"

	"github.com/example/ordinal/internal/models"
)

// Store errors. Adapters must return these sentinels (possibly wrapped) so
// callers can branch with errors.Is.
var (
	// ErrDuplicateID is returned when a request id already exists in the
	// pending or history set. Callers regenerate the id and retry.
	ErrDuplicateID = errors.New("request id already exists")

	// ErrUnknownRequest is returned when an operation references an id with
	// no pending request. For responses this is a hard error; for archival
	// it usually means another instance already archived the exchange.
	ErrUnknownRequest = errors.New("no pending request with that id")

	// ErrAlreadyArchived is returned when archive finds the exchange already
	// merged into history. Callers treat it as success.
	ErrAlreadyArchived = errors.New("exchange already archived")

	// ErrNoResponse is returned when archive runs before a response exists.
	ErrNoResponse = errors.New("no response recorded for request")
)

// BusStore defines the secondary port for durable bus persistence.
//
// Implementations must make every write atomic from the perspective of a
// concurrent reader: a reader observes either the whole record or nothing.
// Create operations are create-if-absent; archive is safe to invoke
// concurrently for the same id, with exactly one invocation performing the
// transition.
type BusStore interface {
	// CreateRequest persists a new pending request.
	// Returns ErrDuplicateID if the id is already taken.
	CreateRequest(ctx context.Context, req *models.Request) error

	// GetRequest retrieves a pending request by id.
	// Returns ErrUnknownRequest if absent.
	GetRequest(ctx context.Context, id string) (*models.Request, error)

	// ListPending returns a point-in-time snapshot of pending requests,
	// oldest first. Entries may be archived by the time the caller acts on
	// them; the caller must tolerate that.
	ListPending(ctx context.Context) ([]*models.Request, error)

	// UpdateRequestStatus rewrites a pending request's status. Best-effort:
	// if the request was concurrently archived the update is dropped and
	// ErrUnknownRequest returned.
	UpdateRequestStatus(ctx context.Context, id, status string) error

	// CreateResponse persists the response for a pending request.
	// Returns ErrUnknownRequest if no pending request matches (including
	// already-archived exchanges), ErrDuplicateID if a response exists.
	CreateResponse(ctx context.Context, resp *models.Response) error

	// GetResponse retrieves the response for an id, or ErrNoResponse.
	// Non-blocking single lookup.
	GetResponse(ctx context.Context, id string) (*models.Response, error)

	// DeleteResponse reclaims a response file after the caller has read it.
	// Deleting an absent response is a no-op.
	DeleteResponse(ctx context.Context, id string) error

	// Archive merges the request and response for id into a single history
	// record and retires the pending request, as one atomic step for any
	// external observer. Returns ErrAlreadyArchived when another instance
	// won the race (callers treat as success), ErrNoResponse when no answer
	// exists yet.
	Archive(ctx context.Context, id string) error

	// History returns archived exchanges, most recent first, at most limit
	// entries (limit <= 0 means all).
	History(ctx context.Context, limit int) ([]*models.HistoryRecord, error)

	// Counts reports the size of the pending, response and history sets.
	Counts(ctx context.Context) (pending, responses, history int, err error)

	// Root returns the store's root location, for status display.
	Root() string
}
