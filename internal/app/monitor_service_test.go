package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/ordinal/internal/models"
	"github.com/example/ordinal/internal/ports/primary"
)

func newTestMonitor(engine, relay *mockResponder) (*MonitorServiceImpl, *mockBusStore, *mockActivityLog) {
	store := newMockBusStore()
	activity := &mockActivityLog{}
	router := NewStaticRouter(engine, relay)
	monitor := NewMonitorService(store, router, activity, 5*time.Millisecond, zerolog.Nop())
	return monitor, store, activity
}

func submitPending(t *testing.T, store *mockBusStore, id string, from models.Level, question string) {
	t.Helper()
	err := store.CreateRequest(context.Background(), &models.Request{
		ID:        id,
		FromLevel: from,
		ToLevel:   from + 1,
		Question:  question,
		Urgency:   models.UrgencyNormal,
		CreatedAt: time.Now().UTC(),
		Status:    models.StatusPending,
	})
	if err != nil {
		t.Fatalf("failed to seed request: %v", err)
	}
}

func TestMonitorService_DrainOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("subagent call answered by engine, tagged orchestrator", func(t *testing.T) {
		engine := &mockResponder{answer: "handled"}
		relay := &mockResponder{}
		monitor, store, activity := newTestMonitor(engine, relay)

		submitPending(t, store, "mon00001", models.LevelSubagent, "edge case?")

		if err := monitor.DrainOnce(ctx); err != nil {
			t.Fatalf("DrainOnce failed: %v", err)
		}

		records, _ := store.History(ctx, 0)
		if len(records) != 1 {
			t.Fatalf("len(history) = %d, want 1", len(records))
		}
		rec := records[0]
		if rec.Response.Answer != "handled" {
			t.Errorf("Answer = %q, want handled", rec.Response.Answer)
		}
		if rec.Response.Responder != models.ResponderOrchestrator {
			t.Errorf("Responder = %q, want orchestrator", rec.Response.Responder)
		}
		if relay.callCount() != 0 {
			t.Error("relay must not be invoked for subagent calls")
		}

		events := activity.events("mon00001")
		if len(events) != 2 || events[0] != "answered" || events[1] != "archived" {
			t.Errorf("activity events = %v, want [answered archived]", events)
		}
	})

	t.Run("orchestrator call answered by relay, tagged oracle", func(t *testing.T) {
		engine := &mockResponder{}
		relay := &mockResponder{answer: "ship it"}
		monitor, store, _ := newTestMonitor(engine, relay)

		submitPending(t, store, "mon00002", models.LevelOrchestrator, "deploy?")

		if err := monitor.DrainOnce(ctx); err != nil {
			t.Fatalf("DrainOnce failed: %v", err)
		}

		records, _ := store.History(ctx, 0)
		if len(records) != 1 || records[0].Response.Responder != models.ResponderOracle {
			t.Fatalf("expected one oracle-tagged record, got %+v", records)
		}
		if engine.callCount() != 0 {
			t.Error("engine must not be invoked for orchestrator calls")
		}
	})

	t.Run("responder failure leaves request pending for retry", func(t *testing.T) {
		engine := &mockResponder{err: errors.New("engine offline")}
		monitor, store, _ := newTestMonitor(engine, &mockResponder{})

		submitPending(t, store, "mon00003", models.LevelSubagent, "q")

		if err := monitor.DrainOnce(ctx); err != nil {
			t.Fatalf("DrainOnce should not fail on responder errors: %v", err)
		}

		pending, _, history, _ := store.Counts(ctx)
		if pending != 1 || history != 0 {
			t.Errorf("pending/history = %d/%d, want 1/0", pending, history)
		}

		// Next cycle retries the same request.
		engine.mu.Lock()
		engine.err = nil
		engine.mu.Unlock()
		if err := monitor.DrainOnce(ctx); err != nil {
			t.Fatalf("retry pass failed: %v", err)
		}
		pending, _, history, _ = store.Counts(ctx)
		if pending != 0 || history != 1 {
			t.Errorf("after retry pending/history = %d/%d, want 0/1", pending, history)
		}
	})

	t.Run("already answered request is only archived", func(t *testing.T) {
		engine := &mockResponder{}
		monitor, store, _ := newTestMonitor(engine, &mockResponder{})

		submitPending(t, store, "mon00004", models.LevelSubagent, "q")
		if err := store.answerResponse("mon00004", "manual", models.ResponderOracle); err != nil {
			t.Fatalf("seed response failed: %v", err)
		}

		if err := monitor.DrainOnce(ctx); err != nil {
			t.Fatalf("DrainOnce failed: %v", err)
		}

		if engine.callCount() != 0 {
			t.Error("responder must not run when a response already exists")
		}
		records, _ := store.History(ctx, 0)
		if len(records) != 1 || records[0].Response.Answer != "manual" {
			t.Errorf("expected the existing response archived, got %+v", records)
		}
	})

	t.Run("request archived mid-pass is a benign no-op", func(t *testing.T) {
		// The responder archives the exchange out from under the monitor
		// before the monitor's own CreateResponse lands.
		store := newMockBusStore()
		racer := responderFunc(func(ctx context.Context, req *models.Request) (string, error) {
			store.answerResponse(req.ID, "raced", models.ResponderOrchestrator)
			if err := store.Archive(ctx, req.ID); err != nil {
				t.Errorf("racing archive failed: %v", err)
			}
			return "too late", nil
		})
		monitor := NewMonitorService(store, NewStaticRouter(racer, racer), nil, time.Millisecond, zerolog.Nop())

		submitPending(t, store, "mon00005", models.LevelSubagent, "q")

		if err := monitor.DrainOnce(ctx); err != nil {
			t.Fatalf("DrainOnce must treat the race as benign: %v", err)
		}

		records, _ := store.History(ctx, 0)
		if len(records) != 1 {
			t.Fatalf("len(history) = %d, want exactly 1", len(records))
		}
		if records[0].Response.Answer != "raced" {
			t.Errorf("Answer = %q, want the racing winner's", records[0].Response.Answer)
		}
	})
}

// responderFunc adapts a function to secondary.Responder.
type responderFunc func(ctx context.Context, req *models.Request) (string, error)

func (f responderFunc) Answer(ctx context.Context, req *models.Request) (string, error) {
	return f(ctx, req)
}

func TestMonitorService_Run(t *testing.T) {
	engine := &mockResponder{answer: "auto"}
	monitor, store, _ := newTestMonitor(engine, &mockResponder{})
	ctx, cancel := context.WithCancel(context.Background())

	submitPending(t, store, "run00001", models.LevelSubagent, "q")

	done := make(chan error, 1)
	go func() { done <- monitor.Run(ctx) }()

	// Wait for the exchange to complete, then stop the loop.
	deadline := time.After(2 * time.Second)
	for {
		_, _, history, _ := store.Counts(context.Background())
		if history == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("monitor never archived the exchange")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancellation")
	}
}

func TestStaticRouter(t *testing.T) {
	engine := &mockResponder{}
	relay := &mockResponder{}
	router := NewStaticRouter(engine, relay)

	t.Run("level 1 gets the engine", func(t *testing.T) {
		responder, tag, err := router.Route(models.LevelSubagent)
		if err != nil {
			t.Fatalf("Route failed: %v", err)
		}
		if responder != engine || tag != models.ResponderOrchestrator {
			t.Errorf("Route(1) = %v/%q, want engine/orchestrator", responder, tag)
		}
	})

	t.Run("level 2 gets the relay", func(t *testing.T) {
		responder, tag, err := router.Route(models.LevelOrchestrator)
		if err != nil {
			t.Fatalf("Route failed: %v", err)
		}
		if responder != relay || tag != models.ResponderOracle {
			t.Errorf("Route(2) = %v/%q, want relay/oracle", responder, tag)
		}
	})

	t.Run("unsupported levels fail", func(t *testing.T) {
		if _, _, err := router.Route(models.LevelOracle); err == nil {
			t.Error("Route(3) should fail")
		}
	})
}

var _ primary.MonitorService = (*MonitorServiceImpl)(nil)
