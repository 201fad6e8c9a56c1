package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"jersey-stock-api/internal/model"
	"jersey-stock-api/pkg/uid"
)

// InsertActivity appends an entry, filling id and created_at when unset.
func (s *SQLStore) InsertActivity(ctx context.Context, entry *model.ActivityLogEntry) error {
	if entry.ID == "" {
		entry.ID = uid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO activity_logs (id, actor, action, details, created_at) VALUES (?, ?, ?, ?, ?)`),
		entry.ID, nullString(entry.Actor), entry.Action, jsonText(entry.Details), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// ListActivity returns the newest entries first.
func (s *SQLStore) ListActivity(ctx context.Context, limit int) ([]model.ActivityLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT id, actor, action, details, created_at
		FROM activity_logs ORDER BY created_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	entries := []model.ActivityLogEntry{}
	for rows.Next() {
		var e model.ActivityLogEntry
		var actor sql.NullString
		var details []byte
		if err := rows.Scan(&e.ID, &actor, &e.Action, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		e.Actor = stringPtr(actor)
		e.Details = append([]byte(nil), details...)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountActivitySince counts entries created at or after since.
func (s *SQLStore) CountActivitySince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, s.q("SELECT COUNT(*) FROM activity_logs WHERE created_at >= ?"), since.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count activity: %w", err)
	}
	return count, nil
}
