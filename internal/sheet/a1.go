package sheet

import (
	"fmt"
	"strings"
)

// unbounded marks an open end of a range ("A2:L" has no last row).
const unbounded = 1<<31 - 1

// area is a parsed A1 range. Rows and columns are 1-based and inclusive.
type area struct {
	tab                string
	startRow, startCol int
	endRow, endCol     int
}

// parseRange understands the subset of A1 notation used by the store:
// Tab, 'Tab', Tab!A1, Tab!A2:L, Tab!A:D, Tab!1:1, Tab!B3:C9.
func parseRange(rng string) (area, error) {
	tab, cells, err := splitTab(rng)
	if err != nil {
		return area{}, err
	}
	a := area{tab: tab, startRow: 1, startCol: 1, endRow: unbounded, endCol: unbounded}
	if cells == "" {
		return a, nil
	}

	first, second, hasEnd := strings.Cut(cells, ":")
	sc, sr, err := parseCell(first)
	if err != nil {
		return area{}, fmt.Errorf("range %q: %w", rng, err)
	}
	if sc > 0 {
		a.startCol = sc
	}
	if sr > 0 {
		a.startRow = sr
	}

	if !hasEnd {
		// Single cell, or a bare column/row such as "A" or "3".
		if sc > 0 && sr > 0 {
			a.endCol, a.endRow = sc, sr
		} else if sc > 0 {
			a.endCol = sc
		} else {
			a.endRow = sr
		}
		return a, nil
	}

	ec, er, err := parseCell(second)
	if err != nil {
		return area{}, fmt.Errorf("range %q: %w", rng, err)
	}
	if ec > 0 {
		a.endCol = ec
	}
	if er > 0 {
		a.endRow = er
	}
	return a, nil
}

func splitTab(rng string) (string, string, error) {
	rng = strings.TrimSpace(rng)
	if rng == "" {
		return "", "", fmt.Errorf("empty range")
	}
	if rng[0] != '\'' {
		tab, cells, _ := strings.Cut(rng, "!")
		return tab, cells, nil
	}

	var b strings.Builder
	for i := 1; i < len(rng); i++ {
		if rng[i] != '\'' {
			b.WriteByte(rng[i])
			continue
		}
		if i+1 < len(rng) && rng[i+1] == '\'' {
			b.WriteByte('\'')
			i++
			continue
		}
		rest := rng[i+1:]
		if rest == "" {
			return b.String(), "", nil
		}
		if rest[0] != '!' {
			return "", "", fmt.Errorf("range %q: expected '!' after tab name", rng)
		}
		return b.String(), rest[1:], nil
	}
	return "", "", fmt.Errorf("range %q: unterminated tab name", rng)
}

// parseCell splits "AB12" into column 28 and row 12; missing parts are 0.
func parseCell(s string) (int, int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, 0, fmt.Errorf("empty cell reference")
	}
	col, row := 0, 0
	i := 0
	for ; i < len(s) && s[i] >= 'A' && s[i] <= 'Z'; i++ {
		col = col*26 + int(s[i]-'A'+1)
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, 0, fmt.Errorf("invalid cell reference %q", s)
		}
		row = row*10 + int(s[i]-'0')
	}
	return col, row, nil
}
