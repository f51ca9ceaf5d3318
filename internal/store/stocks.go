package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/bakehouse-pos/api/internal/enum"
	"github.com/bakehouse-pos/api/internal/sheet"
	"github.com/bakehouse-pos/api/internal/timeutil"
)

// StockHeader is the header row of the STOCKS tab.
var StockHeader = []string{"location", "productId", "qty", "updatedAt"}

// StockLevel is the quantity on hand for one (location, product) key.
// Row is the sheet row, or 0 for a level not yet written.
type StockLevel struct {
	Location  string
	ProductID int
	Qty       int
	UpdatedAt string
	Row       int
}

// StockKey identifies a stock row.
type StockKey struct {
	Location  string
	ProductID int
}

// Key returns the level's lookup key.
func (l StockLevel) Key() StockKey {
	return StockKey{Location: l.Location, ProductID: l.ProductID}
}

// EnsureStockTab creates the STOCKS tab if needed.
func (s *Store) EnsureStockTab(ctx context.Context) error {
	if err := s.sheets.EnsureTab(ctx, enum.TabStocks, StockHeader); err != nil {
		return fmt.Errorf("ensure stock tab: %w", err)
	}
	return nil
}

// ListStockLevels returns stock rows for a location, or all rows when
// location is empty.
func (s *Store) ListStockLevels(ctx context.Context, location string) ([]StockLevel, error) {
	rows, err := s.readRows(ctx, enum.TabStocks, "A2:D")
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	var out []StockLevel
	for i, row := range rows {
		loc := strings.ToUpper(sheet.Cell(row, 0))
		pid, ok := parseInt(sheet.Cell(row, 1))
		if loc == "" || !ok {
			continue
		}
		if location != "" && loc != location {
			continue
		}
		out = append(out, StockLevel{
			Location:  loc,
			ProductID: pid,
			Qty:       intCell(row, 2),
			UpdatedAt: sheet.Cell(row, 3),
			Row:       rowNumber(i),
		})
	}
	return out, nil
}

// UpdateStockLevels overwrites qty and updatedAt of existing rows in a single
// batch call. Levels without a Row are rejected.
func (s *Store) UpdateStockLevels(ctx context.Context, levels []StockLevel) error {
	if len(levels) == 0 {
		return nil
	}
	data := make([]sheet.ValueRange, 0, len(levels))
	for _, l := range levels {
		if l.Row < 2 {
			return fmt.Errorf("update stock level %s/%d: no sheet row", l.Location, l.ProductID)
		}
		data = append(data, sheet.ValueRange{
			Range:  timeutil.A1(enum.TabStocks, fmt.Sprintf("C%d:D%d", l.Row, l.Row)),
			Values: [][]any{{fmt.Sprint(l.Qty), l.UpdatedAt}},
		})
	}
	if err := s.sheets.BatchUpdate(ctx, data); err != nil {
		return fmt.Errorf("update stock levels: %w", err)
	}
	return nil
}

// AppendStockLevels writes new (location, product) rows in one append call.
func (s *Store) AppendStockLevels(ctx context.Context, levels []StockLevel) error {
	if len(levels) == 0 {
		return nil
	}
	values := make([][]any, len(levels))
	for i, l := range levels {
		values[i] = []any{l.Location, fmt.Sprint(l.ProductID), fmt.Sprint(l.Qty), l.UpdatedAt}
	}
	if err := s.sheets.Append(ctx, timeutil.A1(enum.TabStocks, "A:D"), values); err != nil {
		return fmt.Errorf("append stock levels: %w", err)
	}
	return nil
}
