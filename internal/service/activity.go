package service

import (
	"context"
	"time"

	"jersey-stock-api/internal/model"
	"jersey-stock-api/internal/repository"
	"jersey-stock-api/pkg/logger"
)

const (
	DefaultActivityLimit = 100
	MaxActivityLimit     = 500
)

// ActivityService wraps the append-only activity log.
type ActivityService struct {
	repo repository.ActivityRepository
	log  *logger.Logger
}

func NewActivityService(repo repository.ActivityRepository, log *logger.Logger) *ActivityService {
	if log == nil {
		log = logger.Nop()
	}
	return &ActivityService{repo: repo, log: log.With("service", "ActivityService")}
}

// Record appends an entry. Failures are logged and not returned: activity is
// a side path of the mutation that triggered it.
func (s *ActivityService) Record(ctx context.Context, actor *string, action string, details interface{}) {
	if s == nil || s.repo == nil {
		return
	}
	entry := model.NewActivity(actor, action, details)
	if err := s.repo.InsertActivity(ctx, &entry); err != nil {
		s.log.Error("failed to record activity", "action", action, "error", err)
	}
}

// List returns the newest entries, clamping limit into [1, MaxActivityLimit].
func (s *ActivityService) List(ctx context.Context, limit int) ([]model.ActivityLogEntry, error) {
	return s.repo.ListActivity(ctx, ClampLimit(limit, DefaultActivityLimit, MaxActivityLimit))
}

// CountSince counts entries created after since.
func (s *ActivityService) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return s.repo.CountActivitySince(ctx, since)
}

// ClampLimit applies a default for non-positive limits and an upper bound.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
