// Package report aggregates order rows into totals and period buckets.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/bakehouse-pos/api/internal/enum"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/bakehouse-pos/api/internal/timeutil"
	"github.com/shopspring/decimal"
)

// ErrInvalidPeriod is returned for a period other than daily, weekly or monthly.
var ErrInvalidPeriod = errors.New("period must be daily, weekly or monthly")

// Range is an inclusive date range of ISO dates.
type Range struct {
	Start string
	End   string
}

// Summary totals a set of orders.
type Summary struct {
	Count          int
	TotalQty       int
	TotalAmount    decimal.Decimal
	FreebiesAmount decimal.Decimal
	ByPayment      map[string]decimal.Decimal
}

// Bucket is the summary of one day, week or month.
type Bucket struct {
	Key string
	Summary
}

// ProductTotal is the quantity sold of one product name.
type ProductTotal struct {
	Name string
	Qty  int
}

// HistoryReader reads order rows. Satisfied by *store.Store.
type HistoryReader interface {
	ListOrdersRange(ctx context.Context, location, start, end string) ([]store.Order, error)
}

// ValidPeriod reports whether p is a known report period.
func ValidPeriod(p string) bool {
	switch p {
	case enum.PeriodDaily, enum.PeriodWeekly, enum.PeriodMonthly:
		return true
	}
	return false
}

// DefaultRange returns the range a period covers when the caller gives no
// dates: today, the Monday..Sunday week containing today, or the current
// calendar month, all in Bangkok time.
func DefaultRange(period string, now time.Time) (Range, error) {
	var start, end string
	switch period {
	case enum.PeriodDaily:
		start, end = timeutil.DayRange(now)
	case enum.PeriodWeekly:
		start, end = timeutil.WeekRange(now)
	case enum.PeriodMonthly:
		start, end = timeutil.MonthRange(now)
	default:
		return Range{}, ErrInvalidPeriod
	}
	return Range{Start: start, End: end}, nil
}

// FetchHistoryRange returns the location's orders dated within r.
func FetchHistoryRange(ctx context.Context, reader HistoryReader, location string, r Range) ([]store.Order, error) {
	rows, err := reader.ListOrdersRange(ctx, location, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("fetch history %s %s..%s: %w", location, r.Start, r.End, err)
	}
	return rows, nil
}

// SummarizeTotals sums rows. Amounts are exact decimals.
func SummarizeTotals(rows []store.Order) Summary {
	s := Summary{
		TotalAmount:    decimal.Zero,
		FreebiesAmount: decimal.Zero,
		ByPayment:      make(map[string]decimal.Decimal),
	}
	for _, o := range rows {
		s.add(o)
	}
	return s
}

func (s *Summary) add(o store.Order) {
	s.Count++
	s.TotalQty += o.TotalQty
	s.TotalAmount = s.TotalAmount.Add(o.Total)
	s.FreebiesAmount = s.FreebiesAmount.Add(o.FreebiesAmount)
	s.ByPayment[o.Payment] = s.ByPayment[o.Payment].Add(o.Total)
}

// BucketKey returns the canonical key of date for period: the date itself,
// the Monday of its week, or YYYY-MM. Dates are interpreted as Bangkok civil
// dates, so the server's local zone never shifts a bucket.
func BucketKey(date, period string) (string, error) {
	t, err := timeutil.ParseDate(date)
	if err != nil {
		return "", err
	}
	switch period {
	case enum.PeriodDaily:
		return timeutil.DateString(t), nil
	case enum.PeriodWeekly:
		return timeutil.DateString(timeutil.WeekStart(t)), nil
	case enum.PeriodMonthly:
		return t.Format(timeutil.MonthLayout), nil
	}
	return "", ErrInvalidPeriod
}

// AggregateByPeriod groups rows into buckets sorted by key. Rows with an
// unparseable date are skipped.
func AggregateByPeriod(rows []store.Order, period string) ([]Bucket, error) {
	if !ValidPeriod(period) {
		return nil, ErrInvalidPeriod
	}
	byKey := make(map[string]*Bucket)
	for _, o := range rows {
		key, err := BucketKey(o.Date, period)
		if err != nil {
			continue
		}
		b, ok := byKey[key]
		if !ok {
			b = &Bucket{Key: key, Summary: SummarizeTotals(nil)}
			byKey[key] = b
		}
		b.add(o)
	}

	out := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// ProductTotals parses each row's items text and sums quantities per product
// name, largest first. Ties sort by name.
func ProductTotals(rows []store.Order) []ProductTotal {
	qty := make(map[string]int)
	for _, o := range rows {
		for _, l := range store.ParseLines(o.ItemsText) {
			qty[l.Name] += l.Qty
		}
	}
	out := make([]ProductTotal, 0, len(qty))
	for name, n := range qty {
		out = append(out, ProductTotal{Name: name, Qty: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Qty != out[j].Qty {
			return out[i].Qty > out[j].Qty
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// PaymentKeys returns the payment methods of s in sorted order.
func (s Summary) PaymentKeys() []string {
	keys := make([]string, 0, len(s.ByPayment))
	for k := range s.ByPayment {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Result is a full report over one location or all of them.
type Result struct {
	Location string
	Period   string
	Range    Range
	Grand    Summary
	Buckets  []Bucket
	Products []ProductTotal
}

// Build fetches every listed location's orders within r and aggregates them.
// A tab that does not exist yet contributes no rows.
func Build(ctx context.Context, reader HistoryReader, label string, locations []string, period string, r Range) (Result, error) {
	if !ValidPeriod(period) {
		return Result{}, ErrInvalidPeriod
	}
	var rows []store.Order
	for _, loc := range locations {
		part, err := FetchHistoryRange(ctx, reader, loc, r)
		if err != nil {
			return Result{}, err
		}
		rows = append(rows, part...)
	}
	buckets, err := AggregateByPeriod(rows, period)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Location: label,
		Period:   period,
		Range:    r,
		Grand:    SummarizeTotals(rows),
		Buckets:  buckets,
		Products: ProductTotals(rows),
	}, nil
}
