// Package fsstore contains the directory-backed implementation of the bus store.
//
// The bus root is the only coordination device between processes: there are
// no locks and no broker. Correctness rests on two filesystem primitives:
//
//   - atomic publish: records are written to a temp file on the same
//     filesystem and renamed into the visible set, so a concurrent reader
//     observes either the whole record or nothing;
//   - create-if-absent: link(2) into the target name fails with EEXIST when
//     the name is taken, which turns "first writer wins" into a single
//     atomic step. Archival uses this to guarantee exactly one history
//     record per exchange no matter how many monitors race.
package fsstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/example/ordinal/internal/models"
	"github.com/example/ordinal/internal/ports/secondary"
)

const (
	requestsDir  = "requests"
	responsesDir = "responses"
	historyDir   = "history"
	tmpDir       = ".tmp"
)

// Store implements secondary.BusStore on a local directory tree.
type Store struct {
	root string
}

// New creates (if needed) the bus directory layout under root and returns a
// store over it.
func New(root string) (*Store, error) {
	for _, d := range []string{root, filepath.Join(root, requestsDir), filepath.Join(root, responsesDir), filepath.Join(root, historyDir), filepath.Join(root, tmpDir)} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("failed to create bus directory %s: %w", d, err)
		}
	}
	return &Store{root: root}, nil
}

// Root returns the bus root directory.
func (s *Store) Root() string {
	return s.root
}

// CreateRequest persists a new pending request.
func (s *Store) CreateRequest(ctx context.Context, req *models.Request) error {
	// Ids are never reused, even after archival.
	if s.exists(historyDir, req.ID) {
		return fmt.Errorf("request %s: %w", req.ID, secondary.ErrDuplicateID)
	}
	if err := s.publishNew(requestsDir, req.ID, req); err != nil {
		return fmt.Errorf("request %s: %w", req.ID, err)
	}
	return nil
}

// GetRequest retrieves a pending request by id.
func (s *Store) GetRequest(ctx context.Context, id string) (*models.Request, error) {
	var req models.Request
	if err := s.read(requestsDir, id, &req); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("request %s: %w", id, secondary.ErrUnknownRequest)
		}
		return nil, fmt.Errorf("failed to read request %s: %w", id, err)
	}
	return &req, nil
}

// ListPending returns a snapshot of pending requests, oldest first.
// A request archived mid-scan is simply skipped, not an error.
func (s *Store) ListPending(ctx context.Context) ([]*models.Request, error) {
	ids, err := s.listIDs(requestsDir)
	if err != nil {
		return nil, err
	}

	var pending []*models.Request
	for _, id := range ids {
		var req models.Request
		if err := s.read(requestsDir, id, &req); err != nil {
			if os.IsNotExist(err) {
				continue // archived between the scan and the read
			}
			return nil, fmt.Errorf("failed to read request %s: %w", id, err)
		}
		pending = append(pending, &req)
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.Before(pending[j].CreatedAt)
	})
	return pending, nil
}

// UpdateRequestStatus rewrites a pending request's status. Best-effort: the
// rename can race with archival's delete, so after publishing we re-check
// for a completed archive and undo a resurrected record.
func (s *Store) UpdateRequestStatus(ctx context.Context, id, status string) error {
	req, err := s.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	req.Status = status
	if err := s.publish(requestsDir, id, req); err != nil {
		return fmt.Errorf("failed to update request %s: %w", id, err)
	}
	if s.exists(historyDir, id) {
		os.Remove(s.path(requestsDir, id))
		return fmt.Errorf("request %s: %w", id, secondary.ErrUnknownRequest)
	}
	return nil
}

// CreateResponse persists the response for a pending request.
func (s *Store) CreateResponse(ctx context.Context, resp *models.Response) error {
	if !s.exists(requestsDir, resp.ID) {
		return fmt.Errorf("response %s: %w", resp.ID, secondary.ErrUnknownRequest)
	}
	if err := s.publishNew(responsesDir, resp.ID, resp); err != nil {
		return fmt.Errorf("response %s: %w", resp.ID, err)
	}
	return nil
}

// GetResponse retrieves the response for an id. Non-blocking.
func (s *Store) GetResponse(ctx context.Context, id string) (*models.Response, error) {
	var resp models.Response
	if err := s.read(responsesDir, id, &resp); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("response %s: %w", id, secondary.ErrNoResponse)
		}
		return nil, fmt.Errorf("failed to read response %s: %w", id, err)
	}
	return &resp, nil
}

// DeleteResponse reclaims a response after the caller has read it.
func (s *Store) DeleteResponse(ctx context.Context, id string) error {
	if err := os.Remove(s.path(responsesDir, id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete response %s: %w", id, err)
	}
	return nil
}

// Archive merges the request and response for id into one history record and
// retires the pending request. Safe to call concurrently for the same id:
// the link into history/ is the decider, and exactly one caller wins it.
func (s *Store) Archive(ctx context.Context, id string) error {
	req, err := s.GetRequest(ctx, id)
	if err != nil {
		if errors.Is(err, secondary.ErrUnknownRequest) {
			// Pending request gone: another instance completed the archive.
			return fmt.Errorf("archive %s: %w", id, secondary.ErrAlreadyArchived)
		}
		return err
	}

	resp, err := s.GetResponse(ctx, id)
	if err != nil {
		return fmt.Errorf("archive %s: %w", id, secondary.ErrNoResponse)
	}

	// A timed-out request keeps its status in the archive so the record
	// shows the caller gave up before the answer arrived.
	if req.Status == models.StatusPending {
		req.Status = models.StatusAnswered
	}

	record := &models.HistoryRecord{
		Request:    *req,
		Response:   *resp,
		ArchivedAt: time.Now().UTC(),
	}

	if err := s.publishNew(historyDir, id, record); err != nil {
		if errors.Is(err, secondary.ErrDuplicateID) {
			// Lost the race. The winner removes the pending request; help
			// out in case it crashed between the two steps.
			os.Remove(s.path(requestsDir, id))
			return fmt.Errorf("archive %s: %w", id, secondary.ErrAlreadyArchived)
		}
		return fmt.Errorf("archive %s: %w", id, err)
	}

	if err := os.Remove(s.path(requestsDir, id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("archive %s: failed to retire request: %w", id, err)
	}
	return nil
}

// History returns archived exchanges, most recent first.
func (s *Store) History(ctx context.Context, limit int) ([]*models.HistoryRecord, error) {
	ids, err := s.listIDs(historyDir)
	if err != nil {
		return nil, err
	}

	var records []*models.HistoryRecord
	for _, id := range ids {
		var rec models.HistoryRecord
		if err := s.read(historyDir, id, &rec); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read history record %s: %w", id, err)
		}
		records = append(records, &rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].ArchivedAt.After(records[j].ArchivedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Counts reports the size of the three record sets.
func (s *Store) Counts(ctx context.Context) (pending, responses, history int, err error) {
	for dir, out := range map[string]*int{requestsDir: &pending, responsesDir: &responses, historyDir: &history} {
		ids, err := s.listIDs(dir)
		if err != nil {
			return 0, 0, 0, err
		}
		*out = len(ids)
	}
	return pending, responses, history, nil
}

// --- filesystem primitives ---

func (s *Store) path(dir, id string) string {
	return filepath.Join(s.root, dir, id+".json")
}

func (s *Store) exists(dir, id string) bool {
	_, err := os.Stat(s.path(dir, id))
	return err == nil
}

func (s *Store) read(dir, id string, v any) error {
	data, err := os.ReadFile(s.path(dir, id))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("corrupt record %s/%s: %w", dir, id, err)
	}
	return nil
}

func (s *Store) listIDs(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, dir))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

// writeTemp marshals v into a fresh file under .tmp on the same filesystem
// as the record sets, so the subsequent rename/link is atomic.
func (s *Store) writeTemp(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}
	f, err := os.CreateTemp(filepath.Join(s.root, tmpDir), "record-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	return f.Name(), nil
}

// publish atomically replaces dir/<id>.json with v (last writer wins).
func (s *Store) publish(dir, id string, v any) error {
	tmp, err := s.writeTemp(v)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path(dir, id)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to publish record: %w", err)
	}
	return nil
}

// publishNew atomically creates dir/<id>.json from v, failing with
// ErrDuplicateID if the name is already taken (first writer wins).
func (s *Store) publishNew(dir, id string, v any) error {
	tmp, err := s.writeTemp(v)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)
	if err := os.Link(tmp, s.path(dir, id)); err != nil {
		if os.IsExist(err) {
			return secondary.ErrDuplicateID
		}
		return fmt.Errorf("failed to publish record: %w", err)
	}
	return nil
}

// Ensure Store implements the interface
var _ secondary.BusStore = (*Store)(nil)
