package sheet

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process spreadsheet. It backs tests and SHEETS_BACKEND=memory
// local runs. Reads trim trailing empty cells and rows the way the Sheets API
// does.
type Memory struct {
	mu    sync.Mutex
	tabs  map[string][][]string
	order []string
}

// NewMemory returns an empty spreadsheet.
func NewMemory() *Memory {
	return &Memory{tabs: make(map[string][][]string)}
}

// Seed replaces the content of a tab, creating it if needed.
func (m *Memory) Seed(tab string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tabs[tab]; !ok {
		m.order = append(m.order, tab)
	}
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	m.tabs[tab] = cp
}

// Rows returns a copy of every row in the tab, or nil if it does not exist.
func (m *Memory) Rows(tab string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.tabs[tab]
	if !ok {
		return nil
	}
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	return cp
}

// Tabs lists tab titles in creation order.
func (m *Memory) Tabs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

func (m *Memory) EnsureTab(ctx context.Context, title string, header []string) error {
	m.mu.Lock()
	if _, ok := m.tabs[title]; !ok {
		m.tabs[title] = nil
		m.order = append(m.order, title)
	}
	m.mu.Unlock()
	return ensureHeader(ctx, m, title, header)
}

func (m *Memory) Get(_ context.Context, rng string) ([][]string, error) {
	a, err := parseRange(rng)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tabs[a.tab]
	if !ok {
		return nil, fmt.Errorf("get %s: %w", rng, ErrTabNotFound)
	}

	var out [][]string
	for r := a.startRow; r <= len(rows) && r <= a.endRow; r++ {
		row := rows[r-1]
		var cells []string
		for c := a.startCol; c <= len(row) && c <= a.endCol; c++ {
			cells = append(cells, row[c-1])
		}
		out = append(out, trimRow(cells))
	}
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *Memory) Update(_ context.Context, rng string, values [][]any) error {
	a, err := parseRange(rng)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.write(a, a.startRow, values)
}

func (m *Memory) Append(_ context.Context, rng string, values [][]any) error {
	a, err := parseRange(rng)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.tabs[a.tab]
	if !ok {
		return fmt.Errorf("append %s: %w", rng, ErrTabNotFound)
	}
	last := len(rows)
	for last > 0 && len(trimRow(rows[last-1])) == 0 {
		last--
	}
	start := last + 1
	if start < a.startRow {
		start = a.startRow
	}
	return m.write(a, start, values)
}

func (m *Memory) BatchUpdate(_ context.Context, data []ValueRange) error {
	areas := make([]area, len(data))
	for i, d := range data {
		a, err := parseRange(d.Range)
		if err != nil {
			return err
		}
		areas[i] = a
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, d := range data {
		if err := m.write(areas[i], areas[i].startRow, d.Values); err != nil {
			return err
		}
	}
	return nil
}

// write stores values with their top-left cell at (row, a.startCol).
// Callers must hold m.mu.
func (m *Memory) write(a area, row int, values [][]any) error {
	rows, ok := m.tabs[a.tab]
	if !ok {
		return fmt.Errorf("write %s: %w", a.tab, ErrTabNotFound)
	}
	for i, vals := range values {
		r := row + i
		for len(rows) < r {
			rows = append(rows, nil)
		}
		cur := rows[r-1]
		for j, v := range vals {
			c := a.startCol + j
			for len(cur) < c {
				cur = append(cur, "")
			}
			cur[c-1] = formatCell(v)
		}
		rows[r-1] = cur
	}
	m.tabs[a.tab] = rows
	return nil
}

func trimRow(cells []string) []string {
	n := len(cells)
	for n > 0 && cells[n-1] == "" {
		n--
	}
	if n == 0 {
		return []string{}
	}
	return append([]string(nil), cells[:n]...)
}
