package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/bakehouse-pos/api/internal/enum"
	"github.com/bakehouse-pos/api/internal/sheet"
	"github.com/bakehouse-pos/api/internal/timeutil"
)

// DailyHeader is the header row of DAILY_STOCKS.
var DailyHeader = []string{"date", "location", "productId", "openingQty", "closingQty", "snapshotAt"}

// DailySnapshot holds the opening and closing quantity of one product at one
// location on one date. A nil quantity has not been recorded yet.
type DailySnapshot struct {
	Date       string
	Location   string
	ProductID  int
	OpeningQty *int
	ClosingQty *int
	SnapshotAt string
	Row        int
}

func (d DailySnapshot) values() []any {
	opening, closing := "", ""
	if d.OpeningQty != nil {
		opening = fmt.Sprint(*d.OpeningQty)
	}
	if d.ClosingQty != nil {
		closing = fmt.Sprint(*d.ClosingQty)
	}
	return []any{d.Date, d.Location, fmt.Sprint(d.ProductID), opening, closing, d.SnapshotAt}
}

// ListDailySnapshots returns snapshot rows for a date and location.
// Empty arguments match everything.
func (s *Store) ListDailySnapshots(ctx context.Context, date, location string) ([]DailySnapshot, error) {
	rows, err := s.readRows(ctx, enum.TabDailyStocks, "A2:F")
	if err != nil {
		return nil, fmt.Errorf("list daily snapshots: %w", err)
	}
	var out []DailySnapshot
	for i, row := range rows {
		d := DailySnapshot{
			Date:       sheet.Cell(row, 0),
			Location:   strings.ToUpper(sheet.Cell(row, 1)),
			ProductID:  intCell(row, 2),
			OpeningQty: optIntCell(row, 3),
			ClosingQty: optIntCell(row, 4),
			SnapshotAt: sheet.Cell(row, 5),
			Row:        rowNumber(i),
		}
		if d.Date == "" {
			continue
		}
		if date != "" && d.Date != date {
			continue
		}
		if location != "" && d.Location != location {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// UpsertDailySnapshots overwrites rows that carry a Row and appends the rest.
// Existing rows go in one batch call, new rows in one append call.
func (s *Store) UpsertDailySnapshots(ctx context.Context, snaps []DailySnapshot) error {
	if err := s.sheets.EnsureTab(ctx, enum.TabDailyStocks, DailyHeader); err != nil {
		return fmt.Errorf("upsert daily snapshots: %w", err)
	}

	var data []sheet.ValueRange
	var fresh [][]any
	for _, d := range snaps {
		if d.Row >= 2 {
			data = append(data, sheet.ValueRange{
				Range:  timeutil.A1(enum.TabDailyStocks, fmt.Sprintf("A%d:F%d", d.Row, d.Row)),
				Values: [][]any{d.values()},
			})
			continue
		}
		fresh = append(fresh, d.values())
	}

	if len(data) > 0 {
		if err := s.sheets.BatchUpdate(ctx, data); err != nil {
			return fmt.Errorf("upsert daily snapshots: %w", err)
		}
	}
	if len(fresh) > 0 {
		if err := s.sheets.Append(ctx, timeutil.A1(enum.TabDailyStocks, "A:F"), fresh); err != nil {
			return fmt.Errorf("upsert daily snapshots: %w", err)
		}
	}
	return nil
}
