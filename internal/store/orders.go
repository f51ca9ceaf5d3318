package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bakehouse-pos/api/internal/sheet"
	"github.com/bakehouse-pos/api/internal/timeutil"
	"github.com/shopspring/decimal"
)

// OrderHeader is the header row of every location's order tab (columns A–L).
var OrderHeader = []string{
	"date", "time", "billNo", "items", "freebies", "totalQty",
	"payment", "total", "freebiesAmount", "subtotal", "linemanMarkup", "discount",
}

// Order is one bill row. Orders are append-only; there is no edit path.
type Order struct {
	Location       string
	Date           string
	Time           string
	BillNo         string
	ItemsText      string
	FreebiesText   string
	TotalQty       int
	Payment        string
	Total          decimal.Decimal
	FreebiesAmount decimal.Decimal
	Subtotal       decimal.Decimal
	LinemanMarkup  decimal.Decimal
	Discount       decimal.Decimal
}

func (o Order) values() []any {
	return []any{
		o.Date, o.Time, o.BillNo, o.ItemsText, o.FreebiesText, fmt.Sprint(o.TotalQty),
		o.Payment, FormatMoney(o.Total), FormatMoney(o.FreebiesAmount),
		FormatMoney(o.Subtotal), FormatMoney(o.LinemanMarkup), FormatMoney(o.Discount),
	}
}

func orderFromRow(location string, row []string) Order {
	return Order{
		Location:       location,
		Date:           sheet.Cell(row, 0),
		Time:           sheet.Cell(row, 1),
		BillNo:         sheet.Cell(row, 2),
		ItemsText:      sheet.Cell(row, 3),
		FreebiesText:   sheet.Cell(row, 4),
		TotalQty:       intCell(row, 5),
		Payment:        sheet.Cell(row, 6),
		Total:          ParseMoney(sheet.Cell(row, 7)),
		FreebiesAmount: ParseMoney(sheet.Cell(row, 8)),
		Subtotal:       ParseMoney(sheet.Cell(row, 9)),
		LinemanMarkup:  ParseMoney(sheet.Cell(row, 10)),
		Discount:       ParseMoney(sheet.Cell(row, 11)),
	}
}

// EnsureOrderTab creates the location's order tab if needed.
func (s *Store) EnsureOrderTab(ctx context.Context, location string) error {
	if err := s.sheets.EnsureTab(ctx, location, OrderHeader); err != nil {
		return fmt.Errorf("ensure order tab %s: %w", location, err)
	}
	return nil
}

// ListOrders returns the location's orders dated date.
func (s *Store) ListOrders(ctx context.Context, location, date string) ([]Order, error) {
	return s.ListOrdersRange(ctx, location, date, date)
}

// ListOrdersRange returns orders with start <= date <= end. ISO dates compare
// correctly as strings. An empty bound is open.
func (s *Store) ListOrdersRange(ctx context.Context, location, start, end string) ([]Order, error) {
	rows, err := s.readRows(ctx, location, "A2:L")
	if err != nil {
		return nil, fmt.Errorf("list orders for %s: %w", location, err)
	}
	var out []Order
	for _, row := range rows {
		o := orderFromRow(location, row)
		if o.Date == "" {
			continue
		}
		if start != "" && o.Date < start {
			continue
		}
		if end != "" && o.Date > end {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// AppendOrder writes one bill row to the location's tab.
func (s *Store) AppendOrder(ctx context.Context, o Order) error {
	if err := s.sheets.Append(ctx, timeutil.A1(o.Location, "A:L"), [][]any{o.values()}); err != nil {
		return fmt.Errorf("append order to %s: %w", o.Location, err)
	}
	return nil
}

// Line is one "name xqty" entry of an items or freebies cell.
type Line struct {
	Name string
	Qty  int
}

const lineSep = ", "

var lineEscaper = strings.NewReplacer(`\`, `\\`, ",", `\,`)

// FormatLines renders lines as "Croissant x2, Baguette x1". Commas and
// backslashes inside a name are escaped with a backslash so ParseLines can
// split the cell again.
func FormatLines(lines []Line) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s x%d", lineEscaper.Replace(strings.TrimSpace(l.Name)), l.Qty))
	}
	return strings.Join(parts, lineSep)
}

// ParseLines reverses FormatLines. An entry without a parseable " x<n>"
// suffix counts as quantity 1.
func ParseLines(text string) []Line {
	var out []Line
	for _, part := range splitLines(text) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, qty := part, 1
		if i := strings.LastIndex(part, " x"); i > 0 {
			if n, err := strconv.Atoi(part[i+2:]); err == nil {
				name, qty = strings.TrimSpace(part[:i]), n
			}
		}
		out = append(out, Line{Name: name, Qty: qty})
	}
	return out
}

// splitLines splits on unescaped commas and drops the escapes.
func splitLines(text string) []string {
	var (
		parts []string
		cur   strings.Builder
	)
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case c == '\\' && i+1 < len(text):
			i++
			cur.WriteByte(text[i])
		case c == ',':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(parts, cur.String())
}
