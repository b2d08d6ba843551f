package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/ordinal/internal/core/bus"
	"github.com/example/ordinal/internal/models"
	"github.com/example/ordinal/internal/ports/primary"
	"github.com/example/ordinal/internal/ports/secondary"
)

const (
	// defaultTimeout bounds Call when the caller gives none (5 min, matching
	// how long a human plausibly takes to notice a notification).
	defaultTimeout = 5 * time.Minute

	// idRetries bounds regenerate-and-retry on id collision. With random
	// ids a single retry is already statistically unreachable.
	idRetries = 5
)

// BusServiceImpl implements the BusService interface (the caller-side
// correlator plus the inspection operations).
type BusServiceImpl struct {
	store    secondary.BusStore
	activity secondary.ActivityLog
	poll     time.Duration
	logger   zerolog.Logger
}

// NewBusService creates a new BusService with injected dependencies.
// poll is the interval between response checks; activity may be nil to
// disable audit logging.
func NewBusService(store secondary.BusStore, activity secondary.ActivityLog, poll time.Duration, logger zerolog.Logger) *BusServiceImpl {
	if poll <= 0 {
		poll = 500 * time.Millisecond
	}
	return &BusServiceImpl{
		store:    store,
		activity: activity,
		poll:     poll,
		logger:   logger,
	}
}

// Call submits a question and blocks until a response arrives or the timeout
// elapses.
func (s *BusServiceImpl) Call(ctx context.Context, req primary.CallRequest) (*primary.CallResult, error) {
	id, err := s.Submit(ctx, req)
	if err != nil {
		return nil, err
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return s.Await(ctx, id, timeout)
}

// Submit creates the request on the bus and returns its id immediately.
func (s *BusServiceImpl) Submit(ctx context.Context, req primary.CallRequest) (string, error) {
	urgency := req.Urgency
	if urgency == "" {
		urgency = models.UrgencyNormal
	}

	if req.FromLevel != models.LevelSubagent && req.FromLevel != models.LevelOrchestrator {
		return "", fmt.Errorf("from_level %d: %w", req.FromLevel, primary.ErrInvalidLevel)
	}
	if guard := bus.CanSubmit(bus.SubmitContext{
		FromLevel: req.FromLevel,
		Question:  req.Question,
		Urgency:   urgency,
	}); !guard.Allowed {
		return "", guard.Error()
	}

	request := &models.Request{
		FromLevel: req.FromLevel,
		ToLevel:   bus.ToLevel(req.FromLevel),
		Question:  req.Question,
		Context:   req.Context,
		Urgency:   urgency,
		CreatedAt: time.Now().UTC(),
		Status:    models.StatusPending,
	}

	// Collisions are handled by regenerate-and-retry, not prevented.
	var err error
	for attempt := 0; attempt < idRetries; attempt++ {
		request.ID = bus.NewRequestID()
		err = s.store.CreateRequest(ctx, request)
		if err == nil {
			s.record(ctx, request.ID, "created", request.Question)
			s.logger.Info().Str("id", request.ID).Int("from_level", int(request.FromLevel)).Msg("request dispatched")
			return request.ID, nil
		}
		if !errors.Is(err, secondary.ErrDuplicateID) {
			return "", err
		}
	}
	return "", fmt.Errorf("failed to generate a unique request id: %w", err)
}

// Await polls for the response to a previously submitted request. On
// timeout the request is marked timed_out but stays pending so a late answer
// is still recorded and archived.
func (s *BusServiceImpl) Await(ctx context.Context, requestID string, timeout time.Duration) (*primary.CallResult, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(s.poll)
	defer tick.Stop()

	for {
		resp, err := s.store.GetResponse(ctx, requestID)
		if err == nil {
			return s.deliver(ctx, requestID, resp)
		}
		if !errors.Is(err, secondary.ErrNoResponse) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, s.timedOut(ctx, requestID, timeout)
		case <-tick.C:
		}
	}
}

// deliver archives the exchange (forward-progress fallback when no monitor
// runs), reclaims the response, and hands the answer to the caller.
func (s *BusServiceImpl) deliver(ctx context.Context, requestID string, resp *models.Response) (*primary.CallResult, error) {
	if err := s.store.Archive(ctx, requestID); err != nil && !errors.Is(err, secondary.ErrAlreadyArchived) {
		// The answer is in hand; a failed fallback archive is the monitor's
		// problem to retry, not the caller's.
		s.logger.Warn().Err(err).Str("id", requestID).Msg("fallback archive failed")
	} else {
		s.record(ctx, requestID, "archived", "")
	}

	if err := s.store.DeleteResponse(ctx, requestID); err != nil {
		s.logger.Warn().Err(err).Str("id", requestID).Msg("response reclaim failed")
	}

	s.logger.Info().Str("id", requestID).Str("responder", string(resp.Responder)).Msg("response received")
	return &primary.CallResult{
		RequestID: requestID,
		Answer:    resp.Answer,
		Responder: resp.Responder,
	}, nil
}

func (s *BusServiceImpl) timedOut(ctx context.Context, requestID string, timeout time.Duration) error {
	// Best-effort: the request stays pending so a late answer can land.
	if err := s.store.UpdateRequestStatus(ctx, requestID, models.StatusTimedOut); err != nil && !errors.Is(err, secondary.ErrUnknownRequest) {
		s.logger.Warn().Err(err).Str("id", requestID).Msg("failed to mark request timed out")
	}
	s.record(ctx, requestID, "timed_out", timeout.String())
	s.logger.Warn().Str("id", requestID).Dur("timeout", timeout).Msg("call timed out")
	return fmt.Errorf("request %s after %s: %w", requestID, timeout, primary.ErrTimedOut)
}

// Respond answers a pending request by hand (the oracle path) and archives
// the exchange.
func (s *BusServiceImpl) Respond(ctx context.Context, requestID, answer string) error {
	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, secondary.ErrUnknownRequest) {
			return fmt.Errorf("request %s: %w", requestID, primary.ErrUnknownRequest)
		}
		return err
	}

	resp := &models.Response{
		ID:         requestID,
		Question:   req.Question,
		Answer:     answer,
		Responder:  models.ResponderOracle,
		AnsweredAt: time.Now().UTC(),
	}
	if err := s.store.CreateResponse(ctx, resp); err != nil {
		switch {
		case errors.Is(err, secondary.ErrUnknownRequest):
			// Archived between the read and the write.
			return fmt.Errorf("request %s: %w", requestID, primary.ErrUnknownRequest)
		case errors.Is(err, secondary.ErrDuplicateID):
			return fmt.Errorf("request %s is already answered", requestID)
		default:
			return err
		}
	}
	s.record(ctx, requestID, "responded", "responder=oracle")

	if err := s.store.Archive(ctx, requestID); err != nil && !errors.Is(err, secondary.ErrAlreadyArchived) {
		return fmt.Errorf("failed to archive exchange: %w", err)
	}
	s.record(ctx, requestID, "archived", "")
	s.logger.Info().Str("id", requestID).Msg("manual response recorded")
	return nil
}

// Status reports the size of the bus's record sets.
func (s *BusServiceImpl) Status(ctx context.Context) (*primary.BusStatus, error) {
	pending, responses, history, err := s.store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count bus records: %w", err)
	}
	requests, err := s.store.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	return &primary.BusStatus{
		Root:          s.store.Root(),
		PendingCount:  pending,
		ResponseCount: responses,
		HistoryCount:  history,
		Pending:       requests,
	}, nil
}

// ListPending returns pending requests, oldest first.
func (s *BusServiceImpl) ListPending(ctx context.Context) ([]*models.Request, error) {
	return s.store.ListPending(ctx)
}

// History returns archived exchanges, most recent first.
func (s *BusServiceImpl) History(ctx context.Context, limit int) ([]*models.HistoryRecord, error) {
	return s.store.History(ctx, limit)
}

// Activity returns recent audit log entries.
func (s *BusServiceImpl) Activity(ctx context.Context, limit int) ([]primary.ActivityEntry, error) {
	if s.activity == nil {
		return nil, nil
	}
	records, err := s.activity.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]primary.ActivityEntry, len(records))
	for i, r := range records {
		entries[i] = primary.ActivityEntry{
			RequestID: r.RequestID,
			Event:     r.Event,
			Detail:    r.Detail,
			CreatedAt: r.CreatedAt,
		}
	}
	return entries, nil
}

// record writes an audit event; audit failures never affect bus semantics.
func (s *BusServiceImpl) record(ctx context.Context, requestID, event, detail string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, requestID, event, detail); err != nil {
		s.logger.Warn().Err(err).Str("id", requestID).Str("event", event).Msg("activity log write failed")
	}
}

// Ensure BusServiceImpl implements the interface
var _ primary.BusService = (*BusServiceImpl)(nil)
