package export

import (
	"fmt"
	"io"

	"github.com/bakehouse-pos/api/internal/report"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/jung-kurt/gofpdf"
)

// historyColumns are the PDF table columns and their widths in mm.
var historyColumns = []struct {
	title string
	width float64
}{
	{"Time", 18},
	{"Bill", 12},
	{"Items", 88},
	{"Qty", 12},
	{"Payment", 24},
	{"Total", 22},
}

// WriteHistoryPDF renders one location's day of bills as a plain table.
// The core fonts only cover Latin-1; other characters are dropped by the
// translator.
func WriteHistoryPDF(w io.Writer, location, date string, orders []store.Order) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("%s %s", location, date), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Sales history: %s, %s", location, date)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(226, 232, 240)
	for _, c := range historyColumns {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, o := range orders {
		cells := []string{
			o.Time, o.BillNo, truncate(o.ItemsText, 60), fmt.Sprint(o.TotalQty),
			o.Payment, store.FormatMoney(o.Total),
		}
		for i, c := range historyColumns {
			align := "L"
			if i == 3 || i == 5 {
				align = "R"
			}
			pdf.CellFormat(c.width, 6, tr(cells[i]), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	totals := report.SummarizeTotals(orders)
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Bills: %d   Qty: %d   Total: %s   Freebies: %s",
		totals.Count, totals.TotalQty, store.FormatMoney(totals.TotalAmount),
		store.FormatMoney(totals.FreebiesAmount)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	for _, p := range totals.PaymentKeys() {
		pdf.CellFormat(0, 5, tr(fmt.Sprintf("%s: %s", p, store.FormatMoney(totals.ByPayment[p]))), "", 1, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render history pdf: %w", err)
	}
	return pdf.Output(w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
