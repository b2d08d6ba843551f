package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/ordinal/internal/models"
	"github.com/example/ordinal/internal/ports/primary"
	"github.com/example/ordinal/internal/ports/secondary"
)

// MonitorServiceImpl implements the MonitorService interface: the
// responder-side loop that drains pending requests, obtains answers and
// archives completed exchanges.
type MonitorServiceImpl struct {
	store    secondary.BusStore
	router   secondary.Router
	activity secondary.ActivityLog
	interval time.Duration
	logger   zerolog.Logger
}

// NewMonitorService creates a new MonitorService with injected dependencies.
// interval is the pause between drain passes.
func NewMonitorService(store secondary.BusStore, router secondary.Router, activity secondary.ActivityLog, interval time.Duration, logger zerolog.Logger) *MonitorServiceImpl {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &MonitorServiceImpl{
		store:    store,
		router:   router,
		activity: activity,
		interval: interval,
		logger:   logger,
	}
}

// Run drains the pending set until ctx is cancelled.
func (s *MonitorServiceImpl) Run(ctx context.Context) error {
	s.logger.Info().Str("root", s.store.Root()).Dur("interval", s.interval).Msg("monitor started")

	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	for {
		if err := s.DrainOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			// Store scan failures are transient on a live filesystem;
			// keep the loop alive and retry next tick.
			s.logger.Error().Err(err).Msg("drain pass failed")
		}

		select {
		case <-ctx.Done():
			s.logger.Info().Msg("monitor stopped")
			return ctx.Err()
		case <-tick.C:
		}
	}
}

// DrainOnce performs a single pass over the pending set. Requests whose
// responder is unavailable stay pending for the next pass; requests that
// raced with another monitor instance are skipped as benign.
func (s *MonitorServiceImpl) DrainOnce(ctx context.Context) error {
	pending, err := s.store.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to scan pending requests: %w", err)
	}

	for _, req := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.handle(ctx, req)
	}
	return nil
}

// handle drives one request through answer, publish and archive. All
// failures are local: nothing here surfaces to the original caller.
func (s *MonitorServiceImpl) handle(ctx context.Context, req *models.Request) {
	// A response may already exist (manual respond, or a crashed instance
	// that answered but never archived). Then only the archive is owed.
	if _, err := s.store.GetResponse(ctx, req.ID); err == nil {
		s.archive(ctx, req.ID)
		return
	}

	responder, tag, err := s.router.Route(req.FromLevel)
	if err != nil {
		// Can't happen for requests admitted by the submission guards.
		s.logger.Error().Err(err).Str("id", req.ID).Msg("no responder class for request")
		return
	}

	answer, err := responder.Answer(ctx, req)
	if err != nil {
		// Responder unavailable: the request stays pending for retry.
		s.logger.Warn().Err(err).Str("id", req.ID).Str("responder", string(tag)).Msg("responder unavailable")
		return
	}

	resp := &models.Response{
		ID:         req.ID,
		Question:   req.Question,
		Answer:     answer,
		Responder:  tag,
		AnsweredAt: time.Now().UTC(),
	}
	if err := s.store.CreateResponse(ctx, resp); err != nil {
		switch {
		case errors.Is(err, secondary.ErrUnknownRequest):
			// Already archived by a racing instance. Benign.
			return
		case errors.Is(err, secondary.ErrDuplicateID):
			// Answered concurrently; still owe the archive attempt.
		default:
			s.logger.Error().Err(err).Str("id", req.ID).Msg("failed to publish response")
			return
		}
	} else {
		s.record(ctx, req.ID, "answered", "responder="+string(tag))
		s.logger.Info().Str("id", req.ID).Str("responder", string(tag)).Msg("request answered")
	}

	s.archive(ctx, req.ID)
}

func (s *MonitorServiceImpl) archive(ctx context.Context, id string) {
	err := s.store.Archive(ctx, id)
	switch {
	case err == nil:
		s.record(ctx, id, "archived", "")
		s.logger.Info().Str("id", id).Msg("exchange archived")
	case errors.Is(err, secondary.ErrAlreadyArchived):
		// Another instance won. Success from this side.
	default:
		s.logger.Error().Err(err).Str("id", id).Msg("archive failed")
	}
}

func (s *MonitorServiceImpl) record(ctx context.Context, requestID, event, detail string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, requestID, event, detail); err != nil {
		s.logger.Warn().Err(err).Str("id", requestID).Str("event", event).Msg("activity log write failed")
	}
}

// Ensure MonitorServiceImpl implements the interface
var _ primary.MonitorService = (*MonitorServiceImpl)(nil)
