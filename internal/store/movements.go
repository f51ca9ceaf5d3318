package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/bakehouse-pos/api/internal/sheet"
	"github.com/bakehouse-pos/api/internal/timeutil"
)

// MovementHeader is the 8-column ledger header. The legacy MOVEMENTS tab
// uses a different 7-column layout and is not compatible.
var MovementHeader = []string{"date", "time", "location", "productId", "productName", "delta", "reason", "user"}

// Movement is one signed stock change. The ledger is append-only.
type Movement struct {
	Date        string
	Time        string
	Location    string
	ProductID   int
	ProductName string
	Delta       int
	Reason      string
	User        string
}

// MovementFilter narrows ListMovements. Zero fields match everything.
type MovementFilter struct {
	Location  string
	Start     string
	End       string
	ProductID int
}

func (f MovementFilter) match(m Movement) bool {
	if f.Location != "" && m.Location != f.Location {
		return false
	}
	if f.Start != "" && m.Date < f.Start {
		return false
	}
	if f.End != "" && m.Date > f.End {
		return false
	}
	if f.ProductID != 0 && m.ProductID != f.ProductID {
		return false
	}
	return true
}

// AppendMovements adds ledger rows in one append call.
func (s *Store) AppendMovements(ctx context.Context, movements []Movement) error {
	if len(movements) == 0 {
		return nil
	}
	if err := s.sheets.EnsureTab(ctx, s.movementsTab, MovementHeader); err != nil {
		return fmt.Errorf("append movements: %w", err)
	}
	values := make([][]any, len(movements))
	for i, m := range movements {
		values[i] = []any{
			m.Date, m.Time, m.Location, fmt.Sprint(m.ProductID), m.ProductName,
			fmt.Sprint(m.Delta), m.Reason, m.User,
		}
	}
	if err := s.sheets.Append(ctx, timeutil.A1(s.movementsTab, "A:H"), values); err != nil {
		return fmt.Errorf("append movements: %w", err)
	}
	return nil
}

// ListMovements returns ledger rows in write order.
func (s *Store) ListMovements(ctx context.Context, f MovementFilter) ([]Movement, error) {
	rows, err := s.readRows(ctx, s.movementsTab, "A2:H")
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	var out []Movement
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		m := Movement{
			Date:        sheet.Cell(row, 0),
			Time:        sheet.Cell(row, 1),
			Location:    strings.ToUpper(sheet.Cell(row, 2)),
			ProductID:   intCell(row, 3),
			ProductName: sheet.Cell(row, 4),
			Delta:       intCell(row, 5),
			Reason:      sheet.Cell(row, 6),
			User:        sheet.Cell(row, 7),
		}
		if f.match(m) {
			out = append(out, m)
		}
	}
	return out, nil
}
