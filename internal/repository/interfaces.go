package repository

import (
	"context"
	"errors"
	"time"

	"jersey-stock-api/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// InventoryRepository defines jersey data access methods.
type InventoryRepository interface {
	// ListJerseys returns rows matching the filter, ordered as requested.
	ListJerseys(ctx context.Context, filter model.JerseyFilter) ([]model.Jersey, error)

	// GetJersey retrieves one row by id.
	GetJersey(ctx context.Context, id string) (*model.Jersey, error)

	// CreateJersey inserts a row and returns the stored record.
	CreateJersey(ctx context.Context, j model.Jersey) (*model.Jersey, error)

	// BatchCreateJerseys inserts several rows in one transaction.
	BatchCreateJerseys(ctx context.Context, items []model.Jersey) ([]model.Jersey, error)

	// UpdateJersey applies a partial update and stamps updated_at/updated_by in
	// the same statement.
	UpdateJersey(ctx context.Context, id string, patch model.JerseyPatch, updatedAt time.Time, updatedBy *string) error
}

// SettingsRepository reads and upserts the singleton settings row.
type SettingsRepository interface {
	// GetSettings returns ErrNotFound until settings have been saved once.
	GetSettings(ctx context.Context) (*model.Settings, error)
	SaveSettings(ctx context.Context, s model.Settings) error
}

// PreferencesRepository stores per-user preferences.
type PreferencesRepository interface {
	GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error)
	SavePreferences(ctx context.Context, p model.UserPreferences) error
}

// ActivityRepository is the append-only activity log.
type ActivityRepository interface {
	InsertActivity(ctx context.Context, entry *model.ActivityLogEntry) error
	ListActivity(ctx context.Context, limit int) ([]model.ActivityLogEntry, error)
	CountActivitySince(ctx context.Context, since time.Time) (int64, error)
}

// CallLogRepository defines call log data access methods.
type CallLogRepository interface {
	CreateCallLog(ctx context.Context, c model.CallLog) (*model.CallLog, error)
	GetCallLog(ctx context.Context, id string) (*model.CallLog, error)

	// UpdateCallLog writes exactly the fields set in the patch. Updating an
	// unknown id is not an error.
	UpdateCallLog(ctx context.Context, id string, patch model.CallLogPatch) error

	ListCallLogs(ctx context.Context, limit int) ([]model.CallLog, error)

	// ListStaleCalls returns calls in the given status last updated before cutoff.
	ListStaleCalls(ctx context.Context, status model.CallStatus, cutoff time.Time) ([]model.CallLog, error)

	GetCallStats(ctx context.Context) (*model.CallStats, error)
}

// Store is the full record store.
type Store interface {
	InventoryRepository
	SettingsRepository
	PreferencesRepository
	ActivityRepository
	CallLogRepository

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// GetStats returns row counts and backend details.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Close closes the underlying connection.
	Close() error
}
