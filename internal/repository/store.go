package repository

import (
	"context"
	"database/sql"
	"fmt"

	"jersey-stock-api/pkg/logger"
)

// SQLStore implements Store on database/sql. The backend-specific constructors
// live in store_sqlite.go, store_postgres.go and store_mysql.go.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	log     *logger.Logger
}

func newSQLStore(db *sql.DB, d dialect, schema []string, log *logger.Logger) (*SQLStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	s := &SQLStore{db: db, dialect: d, log: log.With("component", "SQLStore", "backend", d.name)}

	if err := s.migrate(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// migrate runs each schema statement in order. Statements are executed one at a
// time since the MySQL driver rejects multi-statement Exec by default.
func (s *SQLStore) migrate(schema []string) error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStore) q(query string) string {
	return s.dialect.rebind(query)
}

// Ping checks connectivity.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetStats returns row counts for each table.
func (s *SQLStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{
		"backend": s.dialect.name,
	}

	for _, table := range []string{"jerseys", "activity_logs", "call_logs", "user_preferences"} {
		var count int64
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		stats[table] = count
	}

	dbStats := s.db.Stats()
	stats["open_connections"] = dbStats.OpenConnections
	stats["in_use"] = dbStats.InUse

	return stats, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// nullString converts an optional string to a driver value.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// jsonText normalises a JSON payload for storage.
func jsonText(raw []byte) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}

// Ensure SQLStore implements Store
var _ Store = (*SQLStore)(nil)
