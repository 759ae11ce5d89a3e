package store

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/quill/internal/reconcile"
	"github.com/roach88/quill/internal/settings"
)

// LogEntry is one persisted save attempt.
type LogEntry struct {
	ID       int64           `json:"id"`
	Token    string          `json:"token"`
	Domain   settings.Domain `json:"domain"`
	Status   string          `json:"status"`
	Error    string          `json:"error,omitempty"`
	Started  time.Time       `json:"started"`
	Finished time.Time       `json:"finished"`
}

// Record appends one save attempt to the audit log.
// Implements reconcile.AuditSink.
func (s *Store) Record(ctx context.Context, entry reconcile.AuditEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO save_log (op_token, domain, status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Token,
		string(entry.Domain),
		entry.Status,
		entry.Error,
		entry.Started.UTC().Format(time.RFC3339Nano),
		entry.Finished.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append save log: %w", err)
	}
	return nil
}

// ListLog returns the most recent save attempts, newest first.
func (s *Store) ListLog(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, op_token, domain, status, error, started_at, finished_at
		FROM save_log
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("read save log: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		var domain, started, finished string
		if err := rows.Scan(&e.ID, &e.Token, &domain, &e.Status, &e.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan save log row: %w", err)
		}
		e.Domain = settings.Domain(domain)
		if e.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if e.Finished, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read save log: %w", err)
	}
	return entries, nil
}
