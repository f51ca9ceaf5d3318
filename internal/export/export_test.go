package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/bakehouse-pos/api/internal/enum"
	"github.com/bakehouse-pos/api/internal/report"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestEscapeField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"", ""},
		{"a,b", `"a,b"`},
		{`say "hi"`, `"say ""hi"""`},
		{"line\nbreak", "\"line\nbreak\""},
		{"cr\rhere", "\"cr\rhere\""},
		{" spaced ", " spaced "},
	}
	for _, tt := range tests {
		if got := EscapeField(tt.in); got != tt.want {
			t.Errorf("EscapeField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	fields := []string{
		"Croissant x2, Baguette x1",
		`12" tart`,
		"note\nwith newline",
		"ขนมปัง",
		"",
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, [][]string{fields}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	r := csv.NewReader(strings.NewReader(buf.String()))
	got, err := r.Read()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != len(fields) {
		t.Fatalf("got %d fields, want %d", len(got), len(fields))
	}
	for i := range fields {
		if got[i] != fields[i] {
			t.Errorf("field %d = %q, want %q", i, got[i], fields[i])
		}
		if EscapeField(got[i]) != EscapeField(fields[i]) {
			t.Errorf("field %d does not re-escape identically", i)
		}
	}
}

func sampleReport() report.Result {
	rows := []store.Order{
		{Date: "2026-03-14", Payment: enum.PaymentCash, Total: decimal.RequireFromString("100"), TotalQty: 2, ItemsText: "Croissant x2"},
		{Date: "2026-03-15", Payment: enum.PaymentLineman, Total: decimal.RequireFromString("55.5"), TotalQty: 1, ItemsText: "Baguette x1"},
	}
	buckets, _ := report.AggregateByPeriod(rows, enum.PeriodDaily)
	return report.Result{
		Location: "SILOM",
		Period:   enum.PeriodDaily,
		Range:    report.Range{Start: "2026-03-14", End: "2026-03-15"},
		Grand:    report.SummarizeTotals(rows),
		Buckets:  buckets,
		Products: report.ProductTotals(rows),
	}
}

func TestWriteReportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReportCSV(&buf, sampleReport()); err != nil {
		t.Fatalf("WriteReportCSV: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, BOM) {
		t.Fatal("report CSV must start with a UTF-8 BOM")
	}
	for _, want := range []string{
		"location,SILOM\r\n",
		"totalAmount,155.50\r\n",
		"period,bills,totalQty,totalAmount,freebiesAmount,cash,lineman\r\n",
		"2026-03-15,1,1,55.50,0.00,0.00,55.50\r\n",
		"TOTAL,2,3,155.50,0.00,100.00,55.50\r\n",
		"lineman,55.50\r\n",
		"Croissant,2\r\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing line %q in:\n%s", want, out)
		}
	}
}

func TestWriteHistoryCSV(t *testing.T) {
	var buf bytes.Buffer
	orders := []store.Order{{
		Date: "2026-03-14", Time: "09:00:00", BillNo: "01",
		ItemsText: "Croissant x2, Baguette x1", TotalQty: 3, Payment: enum.PaymentCash,
		Total: decimal.RequireFromString("150"),
	}}
	if err := WriteHistoryCSV(&buf, orders); err != nil {
		t.Fatalf("WriteHistoryCSV: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "date,time,billNo") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], `"Croissant x2, Baguette x1"`) {
		t.Errorf("items field must be quoted: %q", lines[1])
	}
	if strings.HasPrefix(buf.String(), BOM) {
		t.Error("history CSV has no BOM")
	}
}

func TestWriteMovementsCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteMovementsCSV(&buf, []store.Movement{{
		Date: "2026-03-14", Time: "10:00:00", Location: "SILOM", ProductID: 1,
		ProductName: "Croissant", Delta: -2, Reason: "sale #03", User: "nok",
	}})
	if err != nil {
		t.Fatalf("WriteMovementsCSV: %v", err)
	}
	if !strings.Contains(buf.String(), "2026-03-14,10:00:00,SILOM,1,Croissant,-2,sale #03,nok\r\n") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestWriteHistoryPDF(t *testing.T) {
	var buf bytes.Buffer
	orders := []store.Order{{
		Time: "09:00:00", BillNo: "01", ItemsText: "Croissant x2", TotalQty: 2,
		Payment: enum.PaymentCash, Total: decimal.RequireFromString("90"),
	}}
	if err := WriteHistoryPDF(&buf, "SILOM", "2026-03-14", orders); err != nil {
		t.Fatalf("WriteHistoryPDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}
}

func TestWriteReportXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReportXLSX(&buf, sampleReport()); err != nil {
		t.Fatalf("WriteReportXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); len(got) != 3 || got[0] != sheetSummary {
		t.Errorf("sheets = %v", got)
	}
	v, err := f.GetCellValue(sheetBuckets, "A3")
	if err != nil || v != "2026-03-15" {
		t.Errorf("Buckets!A3 = %q, %v", v, err)
	}
	v, _ = f.GetCellValue(sheetProducts, "A2")
	if v != "Croissant" {
		t.Errorf("Products!A2 = %q", v)
	}
}
