package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"jersey-stock-api/pkg/logger"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS jerseys (
		id TEXT PRIMARY KEY,
		player_name TEXT NOT NULL DEFAULT '',
		edition TEXT NOT NULL DEFAULT 'Icon',
		size TEXT NOT NULL DEFAULT '48',
		qty_inventory INTEGER NOT NULL DEFAULT 0 CHECK (qty_inventory >= 0),
		qty_due_lva INTEGER NOT NULL DEFAULT 0 CHECK (qty_due_lva >= 0),
		updated_at DATETIME NOT NULL,
		updated_by TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jerseys_player ON jerseys(player_name)`,
	`CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY,
		low_stock_threshold INTEGER NOT NULL DEFAULT 1 CHECK (low_stock_threshold >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS activity_logs (
		id TEXT PRIMARY KEY,
		actor TEXT,
		action TEXT NOT NULL,
		details TEXT NOT NULL,
		created_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_created ON activity_logs(created_at)`,
	`CREATE TABLE IF NOT EXISTS call_logs (
		id TEXT PRIMARY KEY,
		jersey_id TEXT,
		player_name TEXT NOT NULL,
		edition TEXT NOT NULL,
		size TEXT NOT NULL,
		status TEXT NOT NULL,
		initiated_by TEXT,
		order_placed BOOLEAN NOT NULL DEFAULT 0,
		order_details TEXT NOT NULL,
		duration_seconds INTEGER,
		transcript TEXT NOT NULL DEFAULT '',
		voiceflow_session_id TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_call_logs_created ON call_logs(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_call_logs_status ON call_logs(status, updated_at)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id TEXT PRIMARY KEY,
		low_stock_emails BOOLEAN NOT NULL DEFAULT 1,
		call_updates BOOLEAN NOT NULL DEFAULT 1,
		default_edition TEXT NOT NULL DEFAULT '',
		rows_per_page INTEGER NOT NULL DEFAULT 25,
		theme TEXT NOT NULL DEFAULT ''
	)`,
}

// NewSQLiteStore opens (creating if needed) a SQLite database at dbPath.
func NewSQLiteStore(dbPath string, log *logger.Logger) (*SQLStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store, err := newSQLStore(db, sqliteDialect, sqliteSchema, log)
	if err != nil {
		return nil, err
	}
	store.log.Info("SQLite store initialized", "path", dbPath)
	return store, nil
}
