package primary

import "context"

// MonitorService defines the primary port for the responder-side loop.
type MonitorService interface {
	// Run drains pending requests until ctx is cancelled. Responder failures
	// leave requests pending for the next cycle; Run only returns on
	// cancellation or an unrecoverable store error.
	Run(ctx context.Context) error

	// DrainOnce performs a single pass over the pending set: route, answer,
	// publish, archive. Used by tests and the one-shot CLI mode.
	DrainOnce(ctx context.Context) error
}
