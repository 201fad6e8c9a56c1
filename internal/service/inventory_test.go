package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"jersey-stock-api/internal/model"
	"jersey-stock-api/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingUpdates rejects every UpdateJersey and passes everything else through.
type failingUpdates struct {
	repository.InventoryRepository
	err error
}

func (f failingUpdates) UpdateJersey(ctx context.Context, id string, patch model.JerseyPatch, updatedAt time.Time, updatedBy *string) error {
	return f.err
}

func TestInventoryService_Create(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.inventory.Create(context.Background(), strPtr("coach@example.com"), model.JerseyPatch{})
	require.NoError(t, err)

	assert.Equal(t, "", created.PlayerName)
	assert.Equal(t, model.EditionIcon, created.Edition)
	assert.Equal(t, "48", created.Size)
	assert.Equal(t, 0, created.QtyInventory)
	assert.Equal(t, 0, created.QtyDueLVA)
	assert.Equal(t, 0, env.notifier.count(), "adding a row has no side effects")
	assert.Empty(t, env.actions(t))
}

func TestInventoryService_UpdateClampsNegative(t *testing.T) {
	env := newTestEnv(t)
	row := env.seed(t, model.Jersey{PlayerName: "Jalen", Size: "48", QtyInventory: 5, QtyDueLVA: 2})

	updated, err := env.inventory.Update(context.Background(), nil, row.ID, model.JerseyPatch{QtyInventory: intPtr(-3)})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.QtyInventory)

	stored, err := env.store.GetJersey(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.QtyInventory)
	assert.Equal(t, 2, stored.QtyDueLVA)
}

func TestInventoryService_UpdateValidation(t *testing.T) {
	env := newTestEnv(t)
	row := env.seed(t, model.Jersey{PlayerName: "Jalen", Size: "48", QtyInventory: 5})
	ctx := context.Background()

	_, err := env.inventory.Update(ctx, nil, row.ID, model.JerseyPatch{})
	assert.ErrorIs(t, err, ErrEmptyPatch)

	bad := model.Edition("Throwback")
	_, err = env.inventory.Update(ctx, nil, row.ID, model.JerseyPatch{Edition: &bad})
	assert.ErrorIs(t, err, ErrInvalidEdition)

	lower := model.Edition("city")
	updated, err := env.inventory.Update(ctx, nil, row.ID, model.JerseyPatch{Edition: &lower})
	require.NoError(t, err)
	assert.Equal(t, model.EditionCity, updated.Edition)

	_, err = env.inventory.Update(ctx, nil, "00000000-0000-0000-0000-000000000000", model.JerseyPatch{Size: strPtr("50")})
	assert.True(t, IsNotFound(err))
}

func TestInventoryService_AdjustClampsAtZero(t *testing.T) {
	env := newTestEnv(t)
	row := env.seed(t, model.Jersey{PlayerName: "Jalen", Size: "48", QtyInventory: 2, QtyDueLVA: 1})

	updated, err := env.inventory.Adjust(context.Background(), nil, row.ID, -10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.QtyInventory)
	assert.Equal(t, 1, updated.QtyDueLVA)

	_, err = env.inventory.Adjust(context.Background(), nil, row.ID, 0, 0)
	assert.ErrorIs(t, err, ErrEmptyPatch)
}

func TestInventoryService_SendToLeague(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	row := env.seed(t, model.Jersey{PlayerName: "Jalen", Size: "48", QtyInventory: 3, QtyDueLVA: 0})

	updated, err := env.inventory.SendToLeague(ctx, nil, row.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.QtyInventory)
	assert.Equal(t, 3, updated.QtyDueLVA, "never moves more than is on hand")

	_, err = env.inventory.SendToLeague(ctx, nil, row.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestInventoryService_TurnIn(t *testing.T) {
	env := newTestEnv(t)
	row := env.seed(t, model.Jersey{PlayerName: "Jalen", Size: "48", QtyInventory: 4, QtyDueLVA: 1})

	updated, err := env.inventory.TurnIn(context.Background(), strPtr("coach@example.com"), row.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.QtyInventory)
	assert.Equal(t, 2, updated.QtyDueLVA)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, "coach@example.com", *updated.UpdatedBy)

	stored, err := env.store.GetJersey(context.Background(), row.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.UpdatedBy)
	assert.Equal(t, "coach@example.com", *stored.UpdatedBy)
}

func TestInventoryService_LowStockAlert(t *testing.T) {
	tests := []struct {
		name       string
		start      int
		delta      int
		wantAlerts int
	}{
		{name: "drops to threshold", start: 3, delta: -2, wantAlerts: 1},
		{name: "drops below threshold", start: 3, delta: -3, wantAlerts: 1},
		{name: "stays above threshold", start: 5, delta: -1, wantAlerts: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			row := env.seed(t, model.Jersey{PlayerName: "Jalen", Size: "48", QtyInventory: tt.start})

			_, err := env.inventory.Adjust(context.Background(), nil, row.ID, tt.delta, 0)
			require.NoError(t, err)

			assert.Equal(t, tt.wantAlerts, env.notifier.count())
			actions := env.actions(t)
			assert.Equal(t, tt.wantAlerts, actions[model.ActionLowStockAlert])
			assert.Equal(t, 1, actions[model.ActionInventoryUpdate])
		})
	}
}

func TestInventoryService_LowStockUsesSavedThreshold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	row := env.seed(t, model.Jersey{PlayerName: "Jalen", Size: "48", QtyInventory: 10})

	_, err := env.settings.Save(ctx, model.Settings{LowStockThreshold: 8})
	require.NoError(t, err)

	_, err = env.inventory.Adjust(ctx, nil, row.ID, -2, 0)
	require.NoError(t, err)
	require.Equal(t, 1, env.notifier.count())
	assert.Equal(t, 8, env.notifier.payloads[0].QtyInventory)

	items, threshold, err := env.inventory.LowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, threshold)
	assert.Len(t, items, 1)
}

func TestInventoryService_FailedWriteRestoresSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	row := env.seed(t, model.Jersey{PlayerName: "Jalen", Size: "48", QtyInventory: 4})

	// Prime the snapshot with the committed row.
	before, err := env.inventory.Get(ctx, row.ID)
	require.NoError(t, err)

	boom := errors.New("connection reset")
	failing := env.newInventory(failingUpdates{InventoryRepository: env.store, err: boom})

	_, err = failing.Adjust(ctx, nil, row.ID, -4, 0)
	require.ErrorIs(t, err, boom)

	after, ok := env.snapshot.Get(ctx, row.ID)
	require.True(t, ok)
	assert.Equal(t, before.QtyInventory, after.QtyInventory)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))

	assert.Equal(t, 0, env.notifier.count(), "no side effects for a failed write")
	assert.Empty(t, env.actions(t))
}

func TestInventoryService_FailedWriteLeavesAbsentSnapshotAbsent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	row := env.seed(t, model.Jersey{PlayerName: "Jalen", Size: "48", QtyInventory: 4})

	failing := env.newInventory(failingUpdates{InventoryRepository: env.store, err: errors.New("timeout")})
	_, err := failing.Update(ctx, nil, row.ID, model.JerseyPatch{Size: strPtr("50")})
	require.Error(t, err)

	_, ok := env.snapshot.Get(ctx, row.ID)
	assert.False(t, ok)
}

func TestInventoryService_ReorderDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	row := env.seed(t, model.Jersey{PlayerName: "Jalen Brown", Edition: model.EditionCity, Size: "50", QtyInventory: 0})

	_, err := env.settings.Save(ctx, model.Settings{LowStockThreshold: 3})
	require.NoError(t, err)

	d, err := env.inventory.ReorderDraft(ctx, row.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Request.QtyNeeded)
	assert.False(t, d.Rewritten, "no completion backend configured")
	assert.Contains(t, d.Text, "Subject: Jersey Reorder Request - Jalen Brown City 50")
}

func TestInventoryService_ListRejectsUnknownEdition(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.inventory.List(context.Background(), model.JerseyFilter{Edition: "Retro"})
	assert.ErrorIs(t, err, ErrInvalidEdition)
}
