package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bakehouse-pos/api/internal/enum"
	"github.com/bakehouse-pos/api/internal/sheet"
	"github.com/bakehouse-pos/api/internal/timeutil"
)

// LocationHeader is the header row of the Locations tab.
var LocationHeader = []string{"id", "label"}

// Location is a registered shop. Its ID doubles as the name of its order tab.
type Location struct {
	ID    string
	Label string
}

// ErrInvalidLocationID is returned for ids outside [A-Z0-9_]+.
var ErrInvalidLocationID = errors.New("location id must match ^[A-Z0-9_]+$")

var locationIDPattern = regexp.MustCompile(`^[A-Z0-9_]+$`)

// NormalizeLocationID trims and upper-cases id, then checks the pattern.
// "flagship1" becomes "FLAGSHIP1"; "flagship-1" is rejected.
func NormalizeLocationID(id string) (string, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if !locationIDPattern.MatchString(id) {
		return "", ErrInvalidLocationID
	}
	return id, nil
}

// reservedIDs are names a location id may not take: the system tabs, and
// ALL, which report queries expand to every location. Sheet titles are
// unique case-insensitively, so the comparison folds case.
var reservedIDs = []string{
	enum.TabLocations, enum.TabProducts, enum.TabStocks, enum.TabStockMovements,
	enum.TabLegacyMovements, enum.TabDailyStocks, enum.TabStaff, enum.AllLocations,
}

// IsReservedLocation reports whether id is a system tab or the ALL selector.
func IsReservedLocation(id string) bool {
	for _, t := range reservedIDs {
		if strings.EqualFold(t, id) {
			return true
		}
	}
	return false
}

// ListLocations returns every registered location in sheet order.
func (s *Store) ListLocations(ctx context.Context) ([]Location, error) {
	rows, err := s.readRows(ctx, enum.TabLocations, "A2:B")
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	var out []Location
	for _, row := range rows {
		id := strings.ToUpper(sheet.Cell(row, 0))
		if id == "" {
			continue
		}
		label := sheet.Cell(row, 1)
		if label == "" {
			label = id
		}
		out = append(out, Location{ID: id, Label: label})
	}
	return out, nil
}

// CreateLocation registers a location and creates its order tab.
// The duplicate check and the append are not atomic.
func (s *Store) CreateLocation(ctx context.Context, loc Location) error {
	if IsReservedLocation(loc.ID) {
		return ErrReservedLocation
	}
	if err := s.sheets.EnsureTab(ctx, enum.TabLocations, LocationHeader); err != nil {
		return fmt.Errorf("create location: %w", err)
	}

	existing, err := s.ListLocations(ctx)
	if err != nil {
		return err
	}
	for _, l := range existing {
		if strings.EqualFold(l.ID, loc.ID) {
			return ErrLocationExists
		}
	}

	if loc.Label == "" {
		loc.Label = loc.ID
	}
	row := []any{loc.ID, loc.Label}
	if err := s.sheets.Append(ctx, timeutil.A1(enum.TabLocations, "A:B"), [][]any{row}); err != nil {
		return fmt.Errorf("create location: %w", err)
	}
	return s.EnsureOrderTab(ctx, loc.ID)
}
