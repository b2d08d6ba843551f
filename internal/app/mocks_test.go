package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/ordinal/internal/models"
	"github.com/example/ordinal/internal/ports/secondary"
)

// mockBusStore implements secondary.BusStore in memory with the same
// sentinel-error contract as the filesystem adapter.
type mockBusStore struct {
	mu        sync.Mutex
	requests  map[string]*models.Request
	responses map[string]*models.Response
	history   map[string]*models.HistoryRecord

	failCreateRequest int // next n CreateRequest calls fail with ErrDuplicateID
}

func newMockBusStore() *mockBusStore {
	return &mockBusStore{
		requests:  make(map[string]*models.Request),
		responses: make(map[string]*models.Response),
		history:   make(map[string]*models.HistoryRecord),
	}
}

func (m *mockBusStore) CreateRequest(ctx context.Context, req *models.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreateRequest > 0 {
		m.failCreateRequest--
		return secondary.ErrDuplicateID
	}
	if _, ok := m.requests[req.ID]; ok {
		return secondary.ErrDuplicateID
	}
	if _, ok := m.history[req.ID]; ok {
		return secondary.ErrDuplicateID
	}
	clone := *req
	m.requests[req.ID] = &clone
	return nil
}

func (m *mockBusStore) GetRequest(ctx context.Context, id string) (*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, secondary.ErrUnknownRequest
	}
	clone := *req
	return &clone, nil
}

func (m *mockBusStore) ListPending(ctx context.Context) ([]*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []*models.Request
	for _, req := range m.requests {
		clone := *req
		pending = append(pending, &clone)
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending, nil
}

func (m *mockBusStore) UpdateRequestStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return secondary.ErrUnknownRequest
	}
	req.Status = status
	return nil
}

func (m *mockBusStore) CreateResponse(ctx context.Context, resp *models.Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[resp.ID]; !ok {
		return secondary.ErrUnknownRequest
	}
	if _, ok := m.responses[resp.ID]; ok {
		return secondary.ErrDuplicateID
	}
	clone := *resp
	m.responses[resp.ID] = &clone
	return nil
}

func (m *mockBusStore) GetResponse(ctx context.Context, id string) (*models.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resp, ok := m.responses[id]
	if !ok {
		return nil, secondary.ErrNoResponse
	}
	clone := *resp
	return &clone, nil
}

func (m *mockBusStore) DeleteResponse(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.responses, id)
	return nil
}

func (m *mockBusStore) Archive(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return secondary.ErrAlreadyArchived
	}
	resp, ok := m.responses[id]
	if !ok {
		return secondary.ErrNoResponse
	}
	merged := *req
	if merged.Status == models.StatusPending {
		merged.Status = models.StatusAnswered
	}
	m.history[id] = &models.HistoryRecord{
		Request:    merged,
		Response:   *resp,
		ArchivedAt: time.Now().UTC(),
	}
	delete(m.requests, id)
	return nil
}

func (m *mockBusStore) History(ctx context.Context, limit int) ([]*models.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var records []*models.HistoryRecord
	for _, rec := range m.history {
		clone := *rec
		records = append(records, &clone)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ArchivedAt.After(records[j].ArchivedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *mockBusStore) Counts(ctx context.Context) (int, int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests), len(m.responses), len(m.history), nil
}

func (m *mockBusStore) Root() string { return "/mock/bus" }

// answerResponse injects a response directly, bypassing the service under
// test (simulates a concurrent monitor or manual responder).
func (m *mockBusStore) answerResponse(id, answer string, responder models.Responder) error {
	return m.CreateResponse(context.Background(), &models.Response{
		ID:         id,
		Answer:     answer,
		Responder:  responder,
		AnsweredAt: time.Now().UTC(),
	})
}

// mockResponder implements secondary.Responder with a canned answer or error.
type mockResponder struct {
	mu     sync.Mutex
	answer string
	err    error
	calls  int
}

func (m *mockResponder) Answer(ctx context.Context, req *models.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	if m.answer == "" {
		return "answer to: " + req.Question, nil
	}
	return m.answer, nil
}

func (m *mockResponder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockActivityLog implements secondary.ActivityLog in memory.
type mockActivityLog struct {
	mu      sync.Mutex
	entries []*secondary.ActivityEntry
	err     error
}

func (m *mockActivityLog) Record(ctx context.Context, requestID, event, detail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, &secondary.ActivityEntry{
		ID:        int64(len(m.entries) + 1),
		RequestID: requestID,
		Event:     event,
		Detail:    detail,
		CreatedAt: fmt.Sprint(time.Now().UTC()),
	})
	return nil
}

func (m *mockActivityLog) Recent(ctx context.Context, limit int) ([]*secondary.ActivityEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.ActivityEntry
	for i := len(m.entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *mockActivityLog) events(requestID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var events []string
	for _, e := range m.entries {
		if e.RequestID == requestID {
			events = append(events, e.Event)
		}
	}
	return events
}
