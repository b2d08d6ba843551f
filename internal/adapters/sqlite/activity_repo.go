// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/ordinal/internal/ports/secondary"
)

const activitySchema = `
CREATE TABLE IF NOT EXISTS bus_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL,
	event      TEXT NOT NULL,
	detail     TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_bus_events_request ON bus_events(request_id);
`

// Open opens (or creates) the activity database at path and initializes the
// schema.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open activity database: %w", err)
	}
	if _, err := db.Exec(activitySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize activity schema: %w", err)
	}
	return db, nil
}

// ActivityLogRepository implements secondary.ActivityLog with SQLite.
type ActivityLogRepository struct {
	db *sql.DB
}

// NewActivityLogRepository creates a new SQLite activity log repository.
func NewActivityLogRepository(db *sql.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Record appends an audit event for a request id.
func (r *ActivityLogRepository) Record(ctx context.Context, requestID, event, detail string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bus_events (request_id, event, detail) VALUES (?, ?, ?)`,
		requestID, event, detail,
	)
	if err != nil {
		return fmt.Errorf("failed to record bus event: %w", err)
	}
	return nil
}

// Recent returns the latest entries, most recent first.
func (r *ActivityLogRepository) Recent(ctx context.Context, limit int) ([]*secondary.ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, request_id, event, detail, created_at FROM bus_events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bus events: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.ActivityEntry
	for rows.Next() {
		entry := &secondary.ActivityEntry{}
		if err := rows.Scan(&entry.ID, &entry.RequestID, &entry.Event, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bus event: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Ensure ActivityLogRepository implements the interface
var _ secondary.ActivityLog = (*ActivityLogRepository)(nil)
