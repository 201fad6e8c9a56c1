package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"jersey-stock-api/internal/model"

	"github.com/xuri/excelize/v2"
)

// exportHeaders is the column order of CSV and XLSX exports and the header
// expected by imports.
var exportHeaders = []string{"player_name", "edition", "size", "qty_inventory", "qty_due_lva", "updated_at", "updated_by"}

// ImportResult reports how many rows an import created.
type ImportResult struct {
	Created int            `json:"created"`
	Items   []model.Jersey `json:"items"`
}

// ImportCSV creates one row per CSV record. The header must name
// player_name; edition, size, qty_inventory and qty_due_lva are optional and
// take the add-row defaults when absent or blank.
func (s *InventoryService) ImportCSV(ctx context.Context, actor *string, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	return s.importRecords(ctx, actor, records)
}

// ImportXLSX reads the first sheet of a workbook with the same layout as
// ImportCSV.
func (s *InventoryService) ImportXLSX(ctx context.Context, actor *string, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidCSV)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	return s.importRecords(ctx, actor, rows)
}

func (s *InventoryService) importRecords(ctx context.Context, actor *string, records [][]string) (*ImportResult, error) {
	items, err := parseRecords(records)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].UpdatedBy = actor
	}

	created, err := s.repo.BatchCreateJerseys(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("failed to import jerseys: %w", err)
	}

	s.activity.Record(ctx, actor, model.ActionInventoryImport, map[string]interface{}{"count": len(created)})
	s.log.Info("inventory imported", "count", len(created))
	return &ImportResult{Created: len(created), Items: created}, nil
}

// parseRecords turns a header row plus data rows into jerseys.
func parseRecords(records [][]string) ([]model.Jersey, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header row", ErrInvalidCSV)
	}

	index := make(map[string]int)
	for i, h := range records[0] {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	if _, ok := index["player_name"]; !ok {
		return nil, fmt.Errorf("%w: header must include player_name", ErrInvalidCSV)
	}

	field := func(rec []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	items := make([]model.Jersey, 0, len(records)-1)
	for n, rec := range records[1:] {
		line := n + 2
		if isBlank(rec) {
			continue
		}

		j := model.NewJersey()
		j.PlayerName = field(rec, "player_name")

		if v := field(rec, "edition"); v != "" {
			ed, ok := model.ParseEdition(v)
			if !ok {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidCSV, line, ErrInvalidEdition)
			}
			j.Edition = ed
		}
		if v := field(rec, "size"); v != "" {
			j.Size = v
		}

		var err error
		if j.QtyInventory, err = parseQty(field(rec, "qty_inventory")); err != nil {
			return nil, fmt.Errorf("%w: line %d: qty_inventory: %v", ErrInvalidCSV, line, err)
		}
		if j.QtyDueLVA, err = parseQty(field(rec, "qty_due_lva")); err != nil {
			return nil, fmt.Errorf("%w: line %d: qty_due_lva: %v", ErrInvalidCSV, line, err)
		}
		items = append(items, j)
	}
	return items, nil
}

func parseQty(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, ErrNegativeQuantity
	}
	return n, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func exportRow(j model.Jersey) []string {
	updatedBy := ""
	if j.UpdatedBy != nil {
		updatedBy = *j.UpdatedBy
	}
	return []string{
		j.PlayerName,
		string(j.Edition),
		j.Size,
		strconv.Itoa(j.QtyInventory),
		strconv.Itoa(j.QtyDueLVA),
		j.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		updatedBy,
	}
}

// ExportCSV writes the filtered listing as CSV.
func (s *InventoryService) ExportCSV(ctx context.Context, filter model.JerseyFilter) ([]byte, error) {
	items, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeaders); err != nil {
		return nil, err
	}
	for _, j := range items {
		if err := w.Write(exportRow(j)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportXLSX writes the filtered listing as a single-sheet workbook.
func (s *InventoryService) ExportXLSX(ctx context.Context, filter model.JerseyFilter) ([]byte, error) {
	items, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Inventory"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range exportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for rowIdx, j := range items {
		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), j.PlayerName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), string(j.Edition))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), j.Size)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), j.QtyInventory)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), j.QtyDueLVA)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), j.UpdatedAt.UTC().Format("2006-01-02 15:04:05"))
		if j.UpdatedBy != nil {
			f.SetCellValue(sheet, fmt.Sprintf("G%d", row), *j.UpdatedBy)
		}
	}

	colWidths := []float64{22, 12, 8, 14, 12, 20, 28}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// IsImportError reports whether err came from malformed import input.
func IsImportError(err error) bool {
	return errors.Is(err, ErrInvalidCSV)
}
