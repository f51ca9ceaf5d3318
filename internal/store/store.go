// Package store maps spreadsheet tabs to typed records.
//
// The spreadsheet offers no locking, no optimistic concurrency token and no
// transactions. Every read-modify-write in this package (next bill number,
// stock upserts, snapshot upserts) is therefore exposed to lost updates when
// two terminals write the same tab at the same moment. That risk is accepted
// for the workload: a handful of shops, tens of bills a day.
package store

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/bakehouse-pos/api/internal/enum"
	"github.com/bakehouse-pos/api/internal/sheet"
	"github.com/bakehouse-pos/api/internal/timeutil"
	"github.com/shopspring/decimal"
)

// Errors returned by the store.
var (
	ErrLocationExists   = errors.New("location already exists")
	ErrReservedLocation = errors.New("location id is reserved")
	ErrProductNotFound  = errors.New("product not found")
	ErrStaffNotFound    = errors.New("staff not found")
	ErrStaffExists      = errors.New("staff already exists")
)

// Store is the spreadsheet-backed repository.
type Store struct {
	sheets       sheet.Client
	movementsTab string
}

// Option configures a Store.
type Option func(*Store)

// WithMovementsTab overrides the movement ledger tab name.
func WithMovementsTab(tab string) Option {
	return func(s *Store) {
		if tab != "" {
			s.movementsTab = tab
		}
	}
}

// New creates a Store over the given sheet client.
func New(c sheet.Client, opts ...Option) *Store {
	s := &Store{sheets: c, movementsTab: enum.TabStockMovements}
	for _, o := range opts {
		o(s)
	}
	return s
}

// MovementsTab reports the ledger tab in use.
func (s *Store) MovementsTab() string {
	return s.movementsTab
}

// EnsureSystemTabs creates every fixed tab with its header.
func (s *Store) EnsureSystemTabs(ctx context.Context) error {
	tabs := []struct {
		title  string
		header []string
	}{
		{enum.TabLocations, LocationHeader},
		{enum.TabProducts, ProductHeader},
		{enum.TabStocks, StockHeader},
		{s.movementsTab, MovementHeader},
		{enum.TabDailyStocks, DailyHeader},
		{enum.TabStaff, StaffHeader},
	}
	for _, t := range tabs {
		if err := s.sheets.EnsureTab(ctx, t.title, t.header); err != nil {
			return err
		}
	}
	return nil
}

// readRows reads a range and treats a missing tab as empty.
func (s *Store) readRows(ctx context.Context, tab, cells string) ([][]string, error) {
	rows, err := s.sheets.Get(ctx, timeutil.A1(tab, cells))
	if errors.Is(err, sheet.ErrTabNotFound) {
		return nil, nil
	}
	return rows, err
}

// --- Cell parsing ---

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, false
		}
		return int(f), true
	}
	return n, true
}

func intCell(row []string, i int) int {
	n, _ := parseInt(sheet.Cell(row, i))
	return n
}

func optIntCell(row []string, i int) *int {
	n, ok := parseInt(sheet.Cell(row, i))
	if !ok {
		return nil
	}
	return &n
}

// ParseMoney reads a money cell. Thousands separators and a leading baht
// sign are tolerated; anything unparseable counts as zero.
func ParseMoney(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "฿")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatMoney renders a decimal as a fixed 2-decimal string.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func parseBool(s string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y":
		return true
	case "false", "0", "no", "n":
		return false
	}
	return fallback
}

func rowNumber(index int) int {
	// Data starts on row 2, below the header.
	return index + 2
}
