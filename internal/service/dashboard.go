package service

import (
	"context"
	"fmt"
	"time"

	"jersey-stock-api/internal/model"
	"jersey-stock-api/internal/repository"
	"jersey-stock-api/pkg/logger"

	"github.com/shopspring/decimal"
)

// Dashboard is the summary shown on the landing page.
type Dashboard struct {
	TotalVariants       int                   `json:"total_variants"`
	TotalUnits          int                   `json:"total_units"`
	TotalDueLVA         int                   `json:"total_due_lva"`
	LowStockCount       int                   `json:"low_stock_count"`
	LowStockThreshold   int                   `json:"low_stock_threshold"`
	EstimatedValue      decimal.Decimal       `json:"estimated_value"`
	UnitPrice           decimal.Decimal       `json:"unit_price"`
	ActivityLast24h     int64                 `json:"activity_last_24h"`
	EditionDistribution map[model.Edition]int `json:"edition_distribution"`
	RecentCalls         []model.CallLog       `json:"recent_calls"`
	CallStats           *model.CallStats      `json:"call_stats"`
}

// DashboardService aggregates inventory, activity and call data.
type DashboardService struct {
	jerseys     repository.InventoryRepository
	calls       repository.CallLogRepository
	activity    *ActivityService
	settings    *SettingsService
	unitPrice   decimal.Decimal
	recentCalls int
	log         *logger.Logger
}

// NewDashboardService parses unitPrice as a decimal amount.
func NewDashboardService(
	jerseys repository.InventoryRepository,
	calls repository.CallLogRepository,
	activity *ActivityService,
	settings *SettingsService,
	unitPrice string,
	recentCalls int,
	log *logger.Logger,
) (*DashboardService, error) {
	price, err := decimal.NewFromString(unitPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid unit price %q: %w", unitPrice, err)
	}
	if recentCalls <= 0 {
		recentCalls = 5
	}
	if log == nil {
		log = logger.Nop()
	}
	return &DashboardService{
		jerseys:     jerseys,
		calls:       calls,
		activity:    activity,
		settings:    settings,
		unitPrice:   price,
		recentCalls: recentCalls,
		log:         log.With("service", "DashboardService"),
	}, nil
}

// Build computes the dashboard. Activity and call sections degrade to empty
// values when their stores fail.
func (s *DashboardService) Build(ctx context.Context) (*Dashboard, error) {
	rows, err := s.jerseys.ListJerseys(ctx, model.JerseyFilter{})
	if err != nil {
		return nil, err
	}

	threshold := model.DefaultLowStockThreshold
	if s.settings != nil {
		threshold = s.settings.Threshold(ctx)
	}

	d := &Dashboard{
		TotalVariants:       len(rows),
		LowStockThreshold:   threshold,
		UnitPrice:           s.unitPrice,
		EstimatedValue:      decimal.Zero,
		EditionDistribution: make(map[model.Edition]int, len(model.Editions)),
		RecentCalls:         []model.CallLog{},
	}
	for _, e := range model.Editions {
		d.EditionDistribution[e] = 0
	}

	for _, r := range rows {
		d.TotalUnits += r.QtyInventory
		d.TotalDueLVA += r.QtyDueLVA
		if r.QtyInventory <= threshold {
			d.LowStockCount++
		}
		d.EditionDistribution[r.Edition]++
	}
	d.EstimatedValue = s.unitPrice.Mul(decimal.NewFromInt(int64(d.TotalUnits)))

	if s.activity != nil {
		count, err := s.activity.CountSince(ctx, time.Now().Add(-24*time.Hour))
		if err != nil {
			s.log.Warn("activity count unavailable", "error", err)
		} else {
			d.ActivityLast24h = count
		}
	}

	if s.calls != nil {
		if recent, err := s.calls.ListCallLogs(ctx, s.recentCalls); err != nil {
			s.log.Warn("recent calls unavailable", "error", err)
		} else {
			d.RecentCalls = recent
		}
		if stats, err := s.calls.GetCallStats(ctx); err != nil {
			s.log.Warn("call stats unavailable", "error", err)
		} else {
			d.CallStats = stats
		}
	}

	return d, nil
}
