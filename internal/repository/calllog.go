package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"jersey-stock-api/internal/model"
	"jersey-stock-api/pkg/uid"
)

const callLogColumns = `id, jersey_id, player_name, edition, size, status, initiated_by, order_placed,
	order_details, duration_seconds, transcript, voiceflow_session_id, error_message, created_at, updated_at`

func scanCallLog(row rowScanner) (*model.CallLog, error) {
	var c model.CallLog
	var jerseyID, initiatedBy sql.NullString
	var status string
	var details []byte
	var duration sql.NullInt64
	err := row.Scan(&c.ID, &jerseyID, &c.PlayerName, &c.Edition, &c.Size, &status, &initiatedBy, &c.OrderPlaced,
		&details, &duration, &c.Transcript, &c.VoiceflowSessionID, &c.ErrorMessage, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.JerseyID = stringPtr(jerseyID)
	c.InitiatedBy = stringPtr(initiatedBy)
	c.Status = model.CallStatus(status)
	c.OrderDetails = append([]byte(nil), details...)
	if duration.Valid {
		d := int(duration.Int64)
		c.DurationSeconds = &d
	}
	return &c, nil
}

func (s *SQLStore) queryCallLogs(ctx context.Context, query string, args ...interface{}) ([]model.CallLog, error) {
	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	calls := []model.CallLog{}
	for rows.Next() {
		c, err := scanCallLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call log: %w", err)
		}
		calls = append(calls, *c)
	}
	return calls, rows.Err()
}

// CreateCallLog inserts a call log and returns the stored record.
func (s *SQLStore) CreateCallLog(ctx context.Context, c model.CallLog) (*model.CallLog, error) {
	if c.ID == "" {
		c.ID = uid.New()
	}
	if c.Status == "" {
		c.Status = model.CallInitiated
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	var duration interface{}
	if c.DurationSeconds != nil {
		duration = *c.DurationSeconds
	}

	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO call_logs (`+callLogColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		c.ID, nullString(c.JerseyID), c.PlayerName, c.Edition, c.Size, string(c.Status), nullString(c.InitiatedBy),
		c.OrderPlaced, jsonText(c.OrderDetails), duration, c.Transcript, c.VoiceflowSessionID, c.ErrorMessage,
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert call log: %w", err)
	}
	return &c, nil
}

// GetCallLog retrieves one call log by id.
func (s *SQLStore) GetCallLog(ctx context.Context, id string) (*model.CallLog, error) {
	row := s.db.QueryRowContext(ctx, s.q("SELECT "+callLogColumns+" FROM call_logs WHERE id = ?"), id)
	c, err := scanCallLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get call log: %w", err)
	}
	return c, nil
}

// UpdateCallLog writes exactly the fields present in the patch.
func (s *SQLStore) UpdateCallLog(ctx context.Context, id string, patch model.CallLogPatch) error {
	if patch.IsEmpty() {
		return nil
	}

	var sets []string
	var args []interface{}
	add := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.DurationSeconds != nil {
		add("duration_seconds", *patch.DurationSeconds)
	}
	if patch.Transcript != nil {
		add("transcript", *patch.Transcript)
	}
	if patch.OrderPlaced != nil {
		add("order_placed", *patch.OrderPlaced)
	}
	if len(patch.OrderDetails) > 0 {
		add("order_details", jsonText(patch.OrderDetails))
	}
	if patch.ErrorMessage != nil {
		add("error_message", *patch.ErrorMessage)
	}
	if patch.VoiceflowSessionID != nil {
		add("voiceflow_session_id", *patch.VoiceflowSessionID)
	}
	if patch.Touch {
		add("updated_at", time.Now().UTC())
	}
	args = append(args, id)

	query := "UPDATE call_logs SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := s.db.ExecContext(ctx, s.q(query), args...); err != nil {
		return fmt.Errorf("failed to update call log: %w", err)
	}
	return nil
}

// ListCallLogs returns the newest call logs first.
func (s *SQLStore) ListCallLogs(ctx context.Context, limit int) ([]model.CallLog, error) {
	calls, err := s.queryCallLogs(ctx, "SELECT "+callLogColumns+" FROM call_logs ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list call logs: %w", err)
	}
	return calls, nil
}

// ListStaleCalls returns calls in status whose last update is older than cutoff.
func (s *SQLStore) ListStaleCalls(ctx context.Context, status model.CallStatus, cutoff time.Time) ([]model.CallLog, error) {
	calls, err := s.queryCallLogs(ctx,
		"SELECT "+callLogColumns+" FROM call_logs WHERE status = ? AND updated_at < ? ORDER BY updated_at ASC",
		string(status), cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to list stale calls: %w", err)
	}
	return calls, nil
}

// GetCallStats counts call logs by status.
func (s *SQLStore) GetCallStats(ctx context.Context) (*model.CallStats, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM call_logs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to get call stats: %w", err)
	}
	defer rows.Close()

	stats := &model.CallStats{}
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan call stats: %w", err)
		}
		stats.Total += count
		switch model.CallStatus(status) {
		case model.CallCompleted:
			stats.Completed = count
		case model.CallFailed:
			stats.Failed = count
		case model.CallInProgress:
			stats.InProgress = count
		case model.CallInitiated:
			stats.Initiated = count
		case model.CallCancelled:
			stats.Cancelled = count
		}
	}
	return stats, rows.Err()
}
