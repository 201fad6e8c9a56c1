package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jersey-stock-api/internal/model"
)

// GetSettings returns the singleton settings row or ErrNotFound.
func (s *SQLStore) GetSettings(ctx context.Context) (*model.Settings, error) {
	var settings model.Settings
	err := s.db.QueryRowContext(ctx, s.q("SELECT low_stock_threshold FROM settings WHERE id = ?"), model.SettingsID).
		Scan(&settings.LowStockThreshold)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return &settings, nil
}

// SaveSettings upserts the singleton row by its fixed id.
func (s *SQLStore) SaveSettings(ctx context.Context, settings model.Settings) error {
	query := s.dialect.upsert("settings", []string{"id", "low_stock_threshold"}, "id", []string{"low_stock_threshold"})
	if _, err := s.db.ExecContext(ctx, s.q(query), model.SettingsID, settings.LowStockThreshold); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// GetPreferences returns one user's preferences or ErrNotFound.
func (s *SQLStore) GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error) {
	var p model.UserPreferences
	var edition string
	err := s.db.QueryRowContext(ctx, s.q(`SELECT user_id, low_stock_emails, call_updates, default_edition, rows_per_page, theme
		FROM user_preferences WHERE user_id = ?`), userID).
		Scan(&p.UserID, &p.LowStockEmails, &p.CallUpdates, &edition, &p.RowsPerPage, &p.Theme)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	p.DefaultEdition = model.Edition(edition)
	return &p, nil
}

// SavePreferences replaces a user's preferences wholesale.
func (s *SQLStore) SavePreferences(ctx context.Context, p model.UserPreferences) error {
	cols := []string{"user_id", "low_stock_emails", "call_updates", "default_edition", "rows_per_page", "theme"}
	query := s.dialect.upsert("user_preferences", cols, "user_id", cols[1:])
	_, err := s.db.ExecContext(ctx, s.q(query),
		p.UserID, p.LowStockEmails, p.CallUpdates, string(p.DefaultEdition), p.RowsPerPage, p.Theme)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
