package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"jersey-stock-api/internal/cache"
	"jersey-stock-api/internal/model"
	"jersey-stock-api/pkg/logger"
)

// Snapshot is the cached view of inventory rows that readers see before the
// record store confirms a write.
type Snapshot struct {
	cache cache.Cache
	ttl   time.Duration
	log   *logger.Logger
}

func NewSnapshot(c cache.Cache, ttl time.Duration, log *logger.Logger) *Snapshot {
	if log == nil {
		log = logger.Nop()
	}
	return &Snapshot{cache: c, ttl: ttl, log: log.With("component", "Snapshot")}
}

func snapshotKey(id string) string {
	return cache.Key("jersey", id)
}

// Get returns the cached row, if any.
func (s *Snapshot) Get(ctx context.Context, id string) (*model.Jersey, bool) {
	if s == nil || s.cache == nil {
		return nil, false
	}
	var j model.Jersey
	if err := cache.GetJSON(ctx, s.cache, snapshotKey(id), &j); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("snapshot read failed", "id", id, "error", err)
		}
		return nil, false
	}
	return &j, true
}

// Put stores a row.
func (s *Snapshot) Put(ctx context.Context, j model.Jersey) {
	if s == nil || s.cache == nil {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, snapshotKey(j.ID), j, s.ttl); err != nil {
		s.log.Warn("snapshot write failed", "id", j.ID, "error", err)
	}
}

// applyTentative shows tentative in the snapshot, runs commit, and on failure
// puts back exactly what the snapshot held before (an absent entry stays
// absent). The restore only happens while the tentative value is still in
// place, so a newer write by another request is not clobbered.
func (s *Snapshot) applyTentative(ctx context.Context, tentative model.Jersey, commit func(ctx context.Context) error) error {
	if s == nil || s.cache == nil {
		return commit(ctx)
	}

	key := snapshotKey(tentative.ID)

	prior, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("snapshot read failed", "id", tentative.ID, "error", err)
		}
		prior = nil
	}

	next, err := json.Marshal(tentative)
	if err != nil {
		return commit(ctx)
	}
	if err := s.cache.Set(ctx, key, next, s.ttl); err != nil {
		s.log.Warn("snapshot write failed", "id", tentative.ID, "error", err)
	}

	if commitErr := commit(ctx); commitErr != nil {
		// The request context may already be done; the restore must still run.
		restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if _, err := s.cache.CompareAndSwap(restoreCtx, key, next, prior, s.ttl); err != nil {
			s.log.Error("snapshot restore failed", "id", tentative.ID, "error", err)
			_ = s.cache.Delete(restoreCtx, key)
		}
		return commitErr
	}
	return nil
}
