package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"jersey-stock-api/internal/model"
	"jersey-stock-api/pkg/uid"
)

const jerseyColumns = "id, player_name, edition, size, qty_inventory, qty_due_lva, updated_at, updated_by"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJersey(row rowScanner) (*model.Jersey, error) {
	var j model.Jersey
	var edition string
	var updatedBy sql.NullString
	if err := row.Scan(&j.ID, &j.PlayerName, &edition, &j.Size, &j.QtyInventory, &j.QtyDueLVA, &j.UpdatedAt, &updatedBy); err != nil {
		return nil, err
	}
	j.Edition = model.Edition(edition)
	j.UpdatedBy = stringPtr(updatedBy)
	return &j, nil
}

// ListJerseys returns rows matching the filter.
func (s *SQLStore) ListJerseys(ctx context.Context, filter model.JerseyFilter) ([]model.Jersey, error) {
	var where []string
	var args []interface{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		where = append(where, "(LOWER(player_name) LIKE ? ESCAPE '!' OR size LIKE ? ESCAPE '!')")
		args = append(args, likePattern(strings.ToLower(search)), likePattern(search))
	}
	if filter.Edition != "" {
		where = append(where, "edition = ?")
		args = append(args, string(filter.Edition))
	}
	if filter.MaxQtyInventory != nil {
		where = append(where, "qty_inventory <= ?")
		args = append(args, *filter.MaxQtyInventory)
	}

	query := "SELECT " + jerseyColumns + " FROM jerseys"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	sortBy := filter.SortBy
	if !model.SortColumns[sortBy] {
		sortBy = "player_name"
	}
	direction := "ASC"
	if filter.Desc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s, id ASC", sortBy, direction)

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jerseys: %w", err)
	}
	defer rows.Close()

	items := []model.Jersey{}
	for rows.Next() {
		j, err := scanJersey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan jersey: %w", err)
		}
		items = append(items, *j)
	}
	return items, rows.Err()
}

// GetJersey retrieves one row by id.
func (s *SQLStore) GetJersey(ctx context.Context, id string) (*model.Jersey, error) {
	row := s.db.QueryRowContext(ctx, s.q("SELECT "+jerseyColumns+" FROM jerseys WHERE id = ?"), id)
	j, err := scanJersey(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get jersey: %w", err)
	}
	return j, nil
}

// CreateJersey inserts a row and returns the stored record.
func (s *SQLStore) CreateJersey(ctx context.Context, j model.Jersey) (*model.Jersey, error) {
	prepared := prepareJersey(j)
	if _, err := s.db.ExecContext(ctx, s.q(insertJerseySQL), jerseyArgs(prepared)...); err != nil {
		return nil, fmt.Errorf("failed to insert jersey: %w", err)
	}
	return &prepared, nil
}

// BatchCreateJerseys inserts several rows in one transaction.
func (s *SQLStore) BatchCreateJerseys(ctx context.Context, items []model.Jersey) ([]model.Jersey, error) {
	if len(items) == 0 {
		return []model.Jersey{}, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.q(insertJerseySQL))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	created := make([]model.Jersey, 0, len(items))
	for _, item := range items {
		prepared := prepareJersey(item)
		if _, err := stmt.ExecContext(ctx, jerseyArgs(prepared)...); err != nil {
			return nil, fmt.Errorf("failed to insert jersey %q: %w", prepared.PlayerName, err)
		}
		created = append(created, prepared)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

// UpdateJersey applies a partial update, stamping updated_at and updated_by in
// the same statement.
func (s *SQLStore) UpdateJersey(ctx context.Context, id string, patch model.JerseyPatch, updatedAt time.Time, updatedBy *string) error {
	var sets []string
	var args []interface{}

	if patch.PlayerName != nil {
		sets = append(sets, "player_name = ?")
		args = append(args, *patch.PlayerName)
	}
	if patch.Edition != nil {
		sets = append(sets, "edition = ?")
		args = append(args, string(*patch.Edition))
	}
	if patch.Size != nil {
		sets = append(sets, "size = ?")
		args = append(args, *patch.Size)
	}
	if patch.QtyInventory != nil {
		sets = append(sets, "qty_inventory = ?")
		args = append(args, *patch.QtyInventory)
	}
	if patch.QtyDueLVA != nil {
		sets = append(sets, "qty_due_lva = ?")
		args = append(args, *patch.QtyDueLVA)
	}
	sets = append(sets, "updated_at = ?", "updated_by = ?")
	args = append(args, updatedAt.UTC(), nullString(updatedBy), id)

	query := "UPDATE jerseys SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := s.db.ExecContext(ctx, s.q(query), args...); err != nil {
		return fmt.Errorf("failed to update jersey: %w", err)
	}
	return nil
}

const insertJerseySQL = `INSERT INTO jerseys (id, player_name, edition, size, qty_inventory, qty_due_lva, updated_at, updated_by)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func prepareJersey(j model.Jersey) model.Jersey {
	if j.ID == "" {
		j.ID = uid.New()
	}
	if j.Edition == "" {
		j.Edition = model.EditionIcon
	}
	if j.UpdatedAt.IsZero() {
		j.UpdatedAt = time.Now()
	}
	j.UpdatedAt = j.UpdatedAt.UTC()
	return j
}

func jerseyArgs(j model.Jersey) []interface{} {
	return []interface{}{j.ID, j.PlayerName, string(j.Edition), j.Size, j.QtyInventory, j.QtyDueLVA, j.UpdatedAt, nullString(j.UpdatedBy)}
}
