package service

import (
	"context"
	"sync"
	"time"

	"jersey-stock-api/internal/model"
	"jersey-stock-api/internal/repository"
	"jersey-stock-api/pkg/logger"
)

// StaleCallConfig holds configuration for the stale call monitor.
type StaleCallConfig struct {
	// StaleAfter is how long a call may sit in in_progress without an update.
	// Default: 30 minutes
	StaleAfter time.Duration

	// CheckInterval is how often the monitor runs.
	// Default: 5 minutes
	CheckInterval time.Duration

	// Reap marks stale calls failed instead of only reporting them.
	Reap bool
}

// StaleCallMonitor periodically looks for calls whose provider callback never
// arrived.
type StaleCallMonitor struct {
	repo      repository.CallLogRepository
	config    StaleCallConfig
	log       *logger.Logger
	ticker    *time.Ticker
	stopCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	mu        sync.Mutex
}

// NewStaleCallMonitor creates a new monitor.
func NewStaleCallMonitor(repo repository.CallLogRepository, config StaleCallConfig, log *logger.Logger) *StaleCallMonitor {
	if config.StaleAfter == 0 {
		config.StaleAfter = 30 * time.Minute
	}
	if config.CheckInterval == 0 {
		config.CheckInterval = 5 * time.Minute
	}
	if log == nil {
		log = logger.Nop()
	}

	return &StaleCallMonitor{
		repo:   repo,
		config: config,
		log:    log.With("component", "StaleCallMonitor"),
		stopCh: make(chan struct{}),
	}
}

// Start begins the monitor loop.
func (m *StaleCallMonitor) Start() {
	m.mu.Lock()
	if m.isRunning {
		m.mu.Unlock()
		return
	}
	m.isRunning = true
	m.ticker = time.NewTicker(m.config.CheckInterval)
	m.mu.Unlock()

	m.log.Info("started", "interval", m.config.CheckInterval, "stale_after", m.config.StaleAfter, "reap", m.config.Reap)

	go m.run()
}

func (m *StaleCallMonitor) run() {
	for {
		select {
		case <-m.ticker.C:
			m.check()
		case <-m.stopCh:
			m.log.Info("stopped")
			return
		}
	}
}

func (m *StaleCallMonitor) check() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	stale, err := m.RunNow(ctx)
	if err != nil {
		m.log.Error("stale call check failed", "error", err)
		return
	}
	if len(stale) > 0 {
		m.log.Warn("stale calls found", "count", len(stale), "reaped", m.config.Reap)
	}
}

// Stop stops the monitor.
func (m *StaleCallMonitor) Stop() {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.ticker != nil {
			m.ticker.Stop()
		}
		close(m.stopCh)
		m.isRunning = false
	})
}

// RunNow performs one check and returns the stale calls it found. With Reap
// set each one is marked failed.
func (m *StaleCallMonitor) RunNow(ctx context.Context) ([]model.CallLog, error) {
	cutoff := time.Now().Add(-m.config.StaleAfter)
	stale, err := m.repo.ListStaleCalls(ctx, model.CallInProgress, cutoff)
	if err != nil {
		return nil, err
	}

	for i, c := range stale {
		m.log.Warn("call has had no update", "call_log_id", c.ID, "since", c.UpdatedAt)
		if !m.config.Reap {
			continue
		}
		failed := model.CallFailed
		msg := "no callback received within " + m.config.StaleAfter.String()
		if err := m.repo.UpdateCallLog(ctx, c.ID, model.CallLogPatch{Status: &failed, ErrorMessage: &msg, Touch: true}); err != nil {
			m.log.Error("failed to reap call", "call_log_id", c.ID, "error", err)
			continue
		}
		stale[i].Status = failed
		stale[i].ErrorMessage = msg
	}
	return stale, nil
}
