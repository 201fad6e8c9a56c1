package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jersey-stock-api/internal/cache"
	"jersey-stock-api/internal/model"
	"jersey-stock-api/internal/notify"
	"jersey-stock-api/internal/repository"
	"jersey-stock-api/pkg/logger"
)

const settingsCacheKey = "settings"

// Notifier sends low-stock alerts.
type Notifier interface {
	NotifyLowStock(ctx context.Context, p notify.Payload) notify.Result
}

// SettingsService reads and writes the singleton settings row through a short
// lived cache, since the threshold is read on every inventory mutation.
type SettingsService struct {
	repo     repository.SettingsRepository
	cache    cache.Cache
	ttl      time.Duration
	notifier Notifier
	log      *logger.Logger
}

func NewSettingsService(repo repository.SettingsRepository, c cache.Cache, ttl time.Duration, notifier Notifier, log *logger.Logger) *SettingsService {
	if log == nil {
		log = logger.Nop()
	}
	return &SettingsService{
		repo:     repo,
		cache:    c,
		ttl:      ttl,
		notifier: notifier,
		log:      log.With("service", "SettingsService"),
	}
}

// Get returns the stored settings, or the defaults when none were saved yet.
func (s *SettingsService) Get(ctx context.Context) (model.Settings, error) {
	load := func() ([]byte, error) {
		settings, err := s.repo.GetSettings(ctx)
		if errors.Is(err, repository.ErrNotFound) {
			def := model.DefaultSettings()
			settings = &def
		} else if err != nil {
			return nil, err
		}
		return json.Marshal(settings)
	}

	var data []byte
	var err error
	if s.cache != nil {
		data, err = s.cache.GetOrSet(ctx, settingsCacheKey, s.ttl, load)
	} else {
		data, err = load()
	}
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	var settings model.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return model.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

// Threshold returns the low-stock threshold, falling back to the default when
// settings cannot be read.
func (s *SettingsService) Threshold(ctx context.Context) int {
	settings, err := s.Get(ctx)
	if err != nil {
		s.log.Warn("using default threshold", "error", err)
		return model.DefaultLowStockThreshold
	}
	return settings.LowStockThreshold
}

// Save upserts the settings row and drops the cached copy.
func (s *SettingsService) Save(ctx context.Context, settings model.Settings) (model.Settings, error) {
	if settings.LowStockThreshold < 0 {
		return model.Settings{}, ErrInvalidThreshold
	}
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return model.Settings{}, err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, settingsCacheKey); err != nil {
			s.log.Warn("failed to invalidate settings cache", "error", err)
		}
	}
	s.log.Info("settings saved", "low_stock_threshold", settings.LowStockThreshold)
	return settings, nil
}

// SendTestAlert dispatches a sample low-stock notification at the current
// threshold.
func (s *SettingsService) SendTestAlert(ctx context.Context) notify.Result {
	if s.notifier == nil {
		return notify.Result{Status: notify.StatusSkipped}
	}
	return s.notifier.NotifyLowStock(ctx, notify.Payload{
		LowStockDetails: model.LowStockDetails{
			ID:           "test",
			PlayerName:   "Test Player",
			Edition:      model.EditionIcon,
			Size:         "48",
			QtyInventory: s.Threshold(ctx),
		},
		Message: "Test low stock alert",
	})
}
