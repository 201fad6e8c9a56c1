package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"jersey-stock-api/pkg/logger"

	_ "github.com/go-sql-driver/mysql"
)

// MySQL has no CREATE INDEX IF NOT EXISTS, so indexes are declared inline.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS jerseys (
		id VARCHAR(36) PRIMARY KEY,
		player_name VARCHAR(255) NOT NULL DEFAULT '',
		edition VARCHAR(32) NOT NULL DEFAULT 'Icon',
		size VARCHAR(16) NOT NULL DEFAULT '48',
		qty_inventory INT NOT NULL DEFAULT 0 CHECK (qty_inventory >= 0),
		qty_due_lva INT NOT NULL DEFAULT 0 CHECK (qty_due_lva >= 0),
		updated_at DATETIME(6) NOT NULL,
		updated_by VARCHAR(255) NULL,
		INDEX idx_jerseys_player (player_name)
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		id INT PRIMARY KEY,
		low_stock_threshold INT NOT NULL DEFAULT 1
	)`,
	`CREATE TABLE IF NOT EXISTS activity_logs (
		id VARCHAR(36) PRIMARY KEY,
		actor VARCHAR(255) NULL,
		action VARCHAR(64) NOT NULL,
		details JSON NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_activity_created (created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS call_logs (
		id VARCHAR(36) PRIMARY KEY,
		jersey_id VARCHAR(36) NULL,
		player_name VARCHAR(255) NOT NULL,
		edition VARCHAR(32) NOT NULL,
		size VARCHAR(16) NOT NULL,
		status VARCHAR(32) NOT NULL,
		initiated_by VARCHAR(255) NULL,
		order_placed TINYINT(1) NOT NULL DEFAULT 0,
		order_details JSON NOT NULL,
		duration_seconds INT NULL,
		transcript TEXT NOT NULL,
		voiceflow_session_id VARCHAR(255) NOT NULL DEFAULT '',
		error_message TEXT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_call_logs_created (created_at),
		INDEX idx_call_logs_status (status, updated_at)
	)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id VARCHAR(255) PRIMARY KEY,
		low_stock_emails TINYINT(1) NOT NULL DEFAULT 1,
		call_updates TINYINT(1) NOT NULL DEFAULT 1,
		default_edition VARCHAR(32) NOT NULL DEFAULT '',
		rows_per_page INT NOT NULL DEFAULT 25,
		theme VARCHAR(32) NOT NULL DEFAULT ''
	)`,
}

// NewMySQLStore connects to MySQL. The DSN must carry parseTime=true.
func NewMySQLStore(dsn string, log *logger.Logger) (*SQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	store, err := newSQLStore(db, mysqlDialect, mysqlSchema, log)
	if err != nil {
		return nil, err
	}
	store.log.Info("MySQL store initialized", "max_open", 10, "max_idle", 5)
	return store, nil
}
