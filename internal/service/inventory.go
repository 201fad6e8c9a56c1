package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jersey-stock-api/internal/draft"
	"jersey-stock-api/internal/model"
	"jersey-stock-api/internal/notify"
	"jersey-stock-api/internal/repository"
	"jersey-stock-api/pkg/logger"
)

// InventoryService handles inventory business logic. Every mutation goes
// through mutate, which applies the change to the snapshot view, commits it
// to the record store and then runs the low-stock and activity side effects.
type InventoryService struct {
	repo     repository.InventoryRepository
	settings *SettingsService
	activity *ActivityService
	notifier Notifier
	snapshot *Snapshot
	drafts   *draft.Rewriter
	log      *logger.Logger
}

// InventoryDeps groups the collaborators of InventoryService.
type InventoryDeps struct {
	Repo     repository.InventoryRepository
	Settings *SettingsService
	Activity *ActivityService
	Notifier Notifier
	Snapshot *Snapshot
	Drafts   *draft.Rewriter
}

// NewInventoryService creates a new inventory service.
// Returns nil if the repository is nil (required dependency).
func NewInventoryService(deps InventoryDeps, log *logger.Logger) *InventoryService {
	if deps.Repo == nil {
		return nil
	}
	if log == nil {
		log = logger.Nop()
	}
	return &InventoryService{
		repo:     deps.Repo,
		settings: deps.Settings,
		activity: deps.Activity,
		notifier: deps.Notifier,
		snapshot: deps.Snapshot,
		drafts:   deps.Drafts,
		log:      log.With("service", "InventoryService"),
	}
}

// List returns rows matching the filter.
func (s *InventoryService) List(ctx context.Context, filter model.JerseyFilter) ([]model.Jersey, error) {
	if filter.Edition != "" {
		ed, ok := model.ParseEdition(string(filter.Edition))
		if !ok {
			return nil, ErrInvalidEdition
		}
		filter.Edition = ed
	}
	return s.repo.ListJerseys(ctx, filter)
}

// LowStock returns rows at or below the current threshold.
func (s *InventoryService) LowStock(ctx context.Context) ([]model.Jersey, int, error) {
	threshold := s.threshold(ctx)
	items, err := s.repo.ListJerseys(ctx, model.JerseyFilter{
		SortBy:          "qty_inventory",
		MaxQtyInventory: &threshold,
	})
	if err != nil {
		return nil, 0, err
	}
	return items, threshold, nil
}

// Get checks the snapshot view first and falls back to the record store.
func (s *InventoryService) Get(ctx context.Context, id string) (*model.Jersey, error) {
	if j, ok := s.snapshot.Get(ctx, id); ok {
		return j, nil
	}

	j, err := s.repo.GetJersey(ctx, id)
	if err != nil {
		return nil, err
	}
	s.snapshot.Put(ctx, *j)
	return j, nil
}

// Create inserts a row starting from the add-row defaults.
func (s *InventoryService) Create(ctx context.Context, actor *string, fields model.JerseyPatch) (*model.Jersey, error) {
	if err := normalizePatch(&fields); err != nil {
		return nil, err
	}

	j := fields.Apply(model.NewJersey())
	j.UpdatedBy = actor

	created, err := s.repo.CreateJersey(ctx, j)
	if err != nil {
		return nil, fmt.Errorf("failed to create jersey: %w", err)
	}
	s.snapshot.Put(ctx, *created)
	s.log.Info("jersey created", "id", created.ID, "player", created.PlayerName)
	return created, nil
}

// Update applies a direct edit. Negative quantities are clamped to zero.
func (s *InventoryService) Update(ctx context.Context, actor *string, id string, patch model.JerseyPatch) (*model.Jersey, error) {
	if err := normalizePatch(&patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}

	current, err := s.repo.GetJersey(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, *current, patch)
}

// Adjust adds the deltas to the current quantities, clamping at zero. Zero
// deltas leave their field out of the update.
func (s *InventoryService) Adjust(ctx context.Context, actor *string, id string, inventoryDelta, dueDelta int) (*model.Jersey, error) {
	current, err := s.repo.GetJersey(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.adjustRow(ctx, actor, *current, inventoryDelta, dueDelta)
}

func (s *InventoryService) adjustRow(ctx context.Context, actor *string, current model.Jersey, inventoryDelta, dueDelta int) (*model.Jersey, error) {
	var patch model.JerseyPatch
	if inventoryDelta != 0 {
		v := clampQty(current.QtyInventory + inventoryDelta)
		patch.QtyInventory = &v
	}
	if dueDelta != 0 {
		v := clampQty(current.QtyDueLVA + dueDelta)
		patch.QtyDueLVA = &v
	}
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}
	return s.mutate(ctx, actor, current, patch)
}

// SendToLeague moves up to amount units from inventory to due-to-league. It
// never moves more than is on hand.
func (s *InventoryService) SendToLeague(ctx context.Context, actor *string, id string, amount int) (*model.Jersey, error) {
	if amount < 1 {
		return nil, ErrInvalidAmount
	}

	current, err := s.repo.GetJersey(ctx, id)
	if err != nil {
		return nil, err
	}

	moved := min(amount, current.QtyInventory)
	inv := current.QtyInventory - moved
	due := current.QtyDueLVA + moved
	return s.mutate(ctx, actor, *current, model.JerseyPatch{
		QtyInventory: &inv,
		QtyDueLVA:    &due,
	})
}

// TurnIn moves a single unit to due-to-league.
func (s *InventoryService) TurnIn(ctx context.Context, actor *string, id string) (*model.Jersey, error) {
	return s.SendToLeague(ctx, actor, id, 1)
}

// DraftResult is a reorder draft for one row.
type DraftResult struct {
	Request draft.Request `json:"request"`
	draft.Result
}

// ReorderDraft builds the reorder email for a row. With rewrite set the
// template is passed through the completion model when one is configured.
func (s *InventoryService) ReorderDraft(ctx context.Context, id string, rewrite bool) (*DraftResult, error) {
	j, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req := draft.Request{
		PlayerName: j.PlayerName,
		Edition:    string(j.Edition),
		Size:       j.Size,
		QtyNeeded:  draft.QtyNeeded(s.threshold(ctx), j.QtyInventory),
	}
	template := draft.BuildTemplate(req)

	res := draft.Result{Text: template}
	if rewrite {
		res = s.drafts.Rewrite(ctx, template)
	}
	return &DraftResult{Request: req, Result: res}, nil
}

// mutate is the single write path for existing rows.
func (s *InventoryService) mutate(ctx context.Context, actor *string, current model.Jersey, patch model.JerseyPatch) (*model.Jersey, error) {
	now := time.Now().UTC()
	tentative := patch.Apply(current)
	tentative.UpdatedAt = now
	tentative.UpdatedBy = actor

	err := s.snapshot.applyTentative(ctx, tentative, func(ctx context.Context) error {
		return s.repo.UpdateJersey(ctx, current.ID, patch, now, actor)
	})
	if err != nil {
		s.log.Warn("update failed, snapshot restored", "id", current.ID, "error", err)
		return nil, fmt.Errorf("failed to update jersey: %w", err)
	}

	s.afterMutation(ctx, actor, tentative, patch)
	return &tentative, nil
}

// afterMutation runs the side effects of a committed write. Their failures
// are logged only.
func (s *InventoryService) afterMutation(ctx context.Context, actor *string, updated model.Jersey, patch model.JerseyPatch) {
	if threshold := s.threshold(ctx); updated.QtyInventory <= threshold {
		details := model.LowStockDetails{
			ID:           updated.ID,
			PlayerName:   updated.PlayerName,
			Edition:      updated.Edition,
			Size:         updated.Size,
			QtyInventory: updated.QtyInventory,
		}
		if s.notifier != nil {
			s.notifier.NotifyLowStock(ctx, notify.Payload{LowStockDetails: details})
		}
		s.activity.Record(ctx, actor, model.ActionLowStockAlert, details)
	}

	s.activity.Record(ctx, actor, model.ActionInventoryUpdate, model.InventoryUpdateDetails{
		ID:     updated.ID,
		Fields: patch.Fields(),
	})
}

func (s *InventoryService) threshold(ctx context.Context) int {
	if s.settings == nil {
		return model.DefaultLowStockThreshold
	}
	return s.settings.Threshold(ctx)
}

// normalizePatch canonicalises the edition and clamps quantities.
func normalizePatch(p *model.JerseyPatch) error {
	if p.Edition != nil {
		ed, ok := model.ParseEdition(string(*p.Edition))
		if !ok {
			return ErrInvalidEdition
		}
		p.Edition = &ed
	}
	if p.QtyInventory != nil {
		v := clampQty(*p.QtyInventory)
		p.QtyInventory = &v
	}
	if p.QtyDueLVA != nil {
		v := clampQty(*p.QtyDueLVA)
		p.QtyDueLVA = &v
	}
	return nil
}

func clampQty(v int) int {
	return max(v, 0)
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
