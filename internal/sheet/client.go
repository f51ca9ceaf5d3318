// Package sheet is the thin access layer over the single backing spreadsheet.
// Each tab is used as a table whose first row is its header.
//
// Nothing here locks, retries or groups writes into transactions. Callers
// that read, modify and write a range (bill numbering, stock upserts) can lose
// updates when two terminals race on the same tab.
package sheet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bakehouse-pos/api/internal/timeutil"
)

// ErrTabNotFound is returned when a range names a tab that does not exist.
var ErrTabNotFound = errors.New("tab not found")

// ValueRange is one range/values pair of a batch update.
type ValueRange struct {
	Range  string
	Values [][]any
}

// Client issues get/update/append/batchUpdate calls against named ranges.
// Satisfied by *Google and *Memory.
type Client interface {
	// EnsureTab creates the tab with a header row if it is absent. It is
	// idempotent and tolerates a concurrent creator winning the race.
	EnsureTab(ctx context.Context, title string, header []string) error
	Get(ctx context.Context, rng string) ([][]string, error)
	Update(ctx context.Context, rng string, values [][]any) error
	Append(ctx context.Context, rng string, values [][]any) error
	BatchUpdate(ctx context.Context, data []ValueRange) error
}

// ensureHeader writes header into row 1 when that row is empty.
func ensureHeader(ctx context.Context, c Client, title string, header []string) error {
	if len(header) == 0 {
		return nil
	}
	rows, err := c.Get(ctx, timeutil.A1(title, "1:1"))
	if err != nil {
		return fmt.Errorf("read header of %s: %w", title, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		return nil
	}
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := c.Update(ctx, timeutil.A1(title, "A1"), [][]any{row}); err != nil {
		return fmt.Errorf("write header of %s: %w", title, err)
	}
	return nil
}

func isAlreadyExists(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "already exists")
}

// Cell returns row[i] trimmed, or "" when the row is shorter.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// formatCell renders a value the way the RAW input option stores it.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
