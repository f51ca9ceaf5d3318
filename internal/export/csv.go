// Package export renders history, reports and the stock ledger as CSV, PDF
// and XLSX downloads.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/bakehouse-pos/api/internal/report"
	"github.com/bakehouse-pos/api/internal/store"
)

// BOM is written before report CSVs so spreadsheet apps detect UTF-8.
const BOM = "\uFEFF"

// EscapeField quotes s when it contains a comma, a quote or a line break,
// doubling any embedded quotes. Other fields are written as-is.
func EscapeField(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteCSV writes rows as comma-separated lines terminated by \r\n.
func WriteCSV(w io.Writer, rows [][]string) error {
	bw := bufio.NewWriter(w)
	for _, row := range rows {
		if err := writeRow(bw, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRow(w *bufio.Writer, row []string) error {
	for i, f := range row {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(EscapeField(f)); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

// HistoryRows renders orders as a table with the order tab's header.
func HistoryRows(orders []store.Order) [][]string {
	rows := make([][]string, 0, len(orders)+1)
	rows = append(rows, store.OrderHeader)
	for _, o := range orders {
		rows = append(rows, []string{
			o.Date, o.Time, o.BillNo, o.ItemsText, o.FreebiesText, fmt.Sprint(o.TotalQty),
			o.Payment, store.FormatMoney(o.Total), store.FormatMoney(o.FreebiesAmount),
			store.FormatMoney(o.Subtotal), store.FormatMoney(o.LinemanMarkup), store.FormatMoney(o.Discount),
		})
	}
	return rows
}

// WriteHistoryCSV writes orders as a plain table.
func WriteHistoryCSV(w io.Writer, orders []store.Order) error {
	return WriteCSV(w, HistoryRows(orders))
}

// WriteMovementsCSV writes ledger rows as a plain table.
func WriteMovementsCSV(w io.Writer, movements []store.Movement) error {
	rows := make([][]string, 0, len(movements)+1)
	rows = append(rows, store.MovementHeader)
	for _, m := range movements {
		rows = append(rows, []string{
			m.Date, m.Time, m.Location, fmt.Sprint(m.ProductID), m.ProductName,
			fmt.Sprint(m.Delta), m.Reason, m.User,
		})
	}
	return WriteCSV(w, rows)
}

// ReportRows lays a report out as a summary block, a bucket table, and a
// closing block with payment and product totals.
func ReportRows(res report.Result) [][]string {
	payments := res.Grand.PaymentKeys()

	rows := [][]string{
		{"location", res.Location},
		{"period", res.Period},
		{"start", res.Range.Start},
		{"end", res.Range.End},
		{"bills", fmt.Sprint(res.Grand.Count)},
		{"totalQty", fmt.Sprint(res.Grand.TotalQty)},
		{"totalAmount", store.FormatMoney(res.Grand.TotalAmount)},
		{"freebiesAmount", store.FormatMoney(res.Grand.FreebiesAmount)},
		{},
	}

	header := []string{"period", "bills", "totalQty", "totalAmount", "freebiesAmount"}
	header = append(header, payments...)
	rows = append(rows, header)
	for _, b := range res.Buckets {
		rows = append(rows, summaryRow(b.Key, b.Summary, payments))
	}
	rows = append(rows, summaryRow("TOTAL", res.Grand, payments), []string{})

	rows = append(rows, []string{"payment", "amount"})
	for _, p := range payments {
		rows = append(rows, []string{p, store.FormatMoney(res.Grand.ByPayment[p])})
	}
	rows = append(rows, []string{})

	rows = append(rows, []string{"product", "qty"})
	for _, p := range res.Products {
		rows = append(rows, []string{p.Name, fmt.Sprint(p.Qty)})
	}
	return rows
}

func summaryRow(key string, s report.Summary, payments []string) []string {
	row := []string{
		key, fmt.Sprint(s.Count), fmt.Sprint(s.TotalQty),
		store.FormatMoney(s.TotalAmount), store.FormatMoney(s.FreebiesAmount),
	}
	for _, p := range payments {
		row = append(row, store.FormatMoney(s.ByPayment[p]))
	}
	return row
}

// WriteReportCSV writes the BOM followed by ReportRows.
func WriteReportCSV(w io.Writer, res report.Result) error {
	if _, err := io.WriteString(w, BOM); err != nil {
		return err
	}
	return WriteCSV(w, ReportRows(res))
}
