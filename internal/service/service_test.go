package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"jersey-stock-api/internal/cache"
	"jersey-stock-api/internal/model"
	"jersey-stock-api/internal/notify"
	"jersey-stock-api/internal/repository"

	"github.com/stretchr/testify/require"
)

// recordingNotifier captures every dispatched payload.
type recordingNotifier struct {
	mu       sync.Mutex
	payloads []notify.Payload
}

func (n *recordingNotifier) NotifyLowStock(ctx context.Context, p notify.Payload) notify.Result {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payloads = append(n.payloads, p)
	return notify.Result{Status: notify.StatusDelivered}
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.payloads)
}

type testEnv struct {
	store     *repository.SQLStore
	cache     *cache.MemoryCache
	notifier  *recordingNotifier
	settings  *SettingsService
	activity  *ActivityService
	snapshot  *Snapshot
	inventory *InventoryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := repository.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	c := cache.NewMemoryCache()
	t.Cleanup(func() { c.Close() })

	env := &testEnv{store: store, cache: c, notifier: &recordingNotifier{}}
	env.settings = NewSettingsService(store, c, time.Minute, env.notifier, nil)
	env.activity = NewActivityService(store, nil)
	env.snapshot = NewSnapshot(c, time.Minute, nil)
	env.inventory = env.newInventory(store)
	return env
}

// newInventory builds an inventory service over repo sharing the env's
// collaborators.
func (e *testEnv) newInventory(repo repository.InventoryRepository) *InventoryService {
	return NewInventoryService(InventoryDeps{
		Repo:     repo,
		Settings: e.settings,
		Activity: e.activity,
		Notifier: e.notifier,
		Snapshot: e.snapshot,
	}, nil)
}

func (e *testEnv) seed(t *testing.T, j model.Jersey) model.Jersey {
	t.Helper()
	created, err := e.store.CreateJersey(context.Background(), j)
	require.NoError(t, err)
	return *created
}

func (e *testEnv) actions(t *testing.T) map[string]int {
	t.Helper()
	entries, err := e.store.ListActivity(context.Background(), 100)
	require.NoError(t, err)
	counts := make(map[string]int)
	for _, entry := range entries {
		counts[entry.Action]++
	}
	return counts
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
