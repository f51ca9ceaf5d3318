package export

import (
	"fmt"
	"io"

	"github.com/bakehouse-pos/api/internal/report"
	"github.com/xuri/excelize/v2"
)

const (
	sheetSummary  = "Summary"
	sheetBuckets  = "Buckets"
	sheetProducts = "Products"
)

// ReportWorkbook builds a workbook with summary, bucket and product sheets.
// The caller must Close the returned file.
func ReportWorkbook(res report.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{sheetBuckets, sheetProducts} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	totalAmount, _ := res.Grand.TotalAmount.Float64()
	freebies, _ := res.Grand.FreebiesAmount.Float64()
	summary := [][]any{
		{"location", res.Location},
		{"period", res.Period},
		{"start", res.Range.Start},
		{"end", res.Range.End},
		{"bills", res.Grand.Count},
		{"totalQty", res.Grand.TotalQty},
		{"totalAmount", totalAmount},
		{"freebiesAmount", freebies},
	}
	for _, p := range res.Grand.PaymentKeys() {
		v, _ := res.Grand.ByPayment[p].Float64()
		summary = append(summary, []any{"payment:" + p, v})
	}
	if err := writeSheet(f, sheetSummary, summary); err != nil {
		f.Close()
		return nil, err
	}

	payments := res.Grand.PaymentKeys()
	header := []any{"period", "bills", "totalQty", "totalAmount", "freebiesAmount"}
	for _, p := range payments {
		header = append(header, p)
	}
	buckets := [][]any{header}
	for _, b := range res.Buckets {
		amt, _ := b.TotalAmount.Float64()
		fr, _ := b.FreebiesAmount.Float64()
		row := []any{b.Key, b.Count, b.TotalQty, amt, fr}
		for _, p := range payments {
			v, _ := b.ByPayment[p].Float64()
			row = append(row, v)
		}
		buckets = append(buckets, row)
	}
	if err := writeSheet(f, sheetBuckets, buckets); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetRowStyle(sheetBuckets, 1, 1, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	products := [][]any{{"product", "qty"}}
	for _, p := range res.Products {
		products = append(products, []any{p.Name, p.Qty})
	}
	if err := writeSheet(f, sheetProducts, products); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetRowStyle(sheetProducts, 1, 1, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// WriteReportXLSX streams the report workbook to w.
func WriteReportXLSX(w io.Writer, res report.Result) error {
	f, err := ReportWorkbook(res)
	if err != nil {
		return fmt.Errorf("build report workbook: %w", err)
	}
	defer f.Close()
	return f.Write(w)
}
