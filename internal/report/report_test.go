package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bakehouse-pos/api/internal/enum"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func order(date, payment, total string, qty int) store.Order {
	return store.Order{Date: date, Payment: payment, Total: dec(total), TotalQty: qty}
}

func TestSummarizeTotals_Empty(t *testing.T) {
	s := SummarizeTotals(nil)
	if s.Count != 0 || s.TotalQty != 0 {
		t.Errorf("expected zero counts, got %+v", s)
	}
	if !s.TotalAmount.IsZero() || !s.FreebiesAmount.IsZero() {
		t.Errorf("expected zero amounts, got %s %s", s.TotalAmount, s.FreebiesAmount)
	}
	if s.ByPayment == nil || len(s.ByPayment) != 0 {
		t.Errorf("expected empty non-nil byPayment, got %v", s.ByPayment)
	}
}

func TestSummarizeTotals_ExactSum(t *testing.T) {
	rows := []store.Order{
		order("2026-03-14", enum.PaymentCash, "0.10", 1),
		order("2026-03-14", enum.PaymentCash, "0.20", 2),
		order("2026-03-14", enum.PaymentTransfer, "119.95", 3),
	}
	rows[2].FreebiesAmount = dec("15")

	s := SummarizeTotals(rows)
	if s.Count != 3 || s.TotalQty != 6 {
		t.Errorf("count/qty = %d/%d", s.Count, s.TotalQty)
	}
	if !s.TotalAmount.Equal(dec("120.25")) {
		t.Errorf("totalAmount = %s, want 120.25", s.TotalAmount)
	}
	if got := s.ByPayment[enum.PaymentCash]; !got.Equal(dec("0.30")) {
		t.Errorf("cash = %s, want 0.30", got)
	}
	if !s.FreebiesAmount.Equal(dec("15")) {
		t.Errorf("freebies = %s", s.FreebiesAmount)
	}
	if keys := s.PaymentKeys(); len(keys) != 2 || keys[0] != enum.PaymentCash {
		t.Errorf("payment keys = %v", keys)
	}
}

func TestAggregateByPeriod_WeeklyAcrossBoundary(t *testing.T) {
	// 2026-03-15 is a Sunday, 2026-03-16 a Monday.
	rows := []store.Order{
		order("2026-03-16", enum.PaymentCash, "30", 1),
		order("2026-03-11", enum.PaymentCash, "10", 1),
		order("2026-03-15", enum.PaymentCash, "20", 1),
		order("2026-03-22", enum.PaymentCash, "5", 1),
	}
	buckets, err := AggregateByPeriod(rows, enum.PeriodWeekly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		key   string
		count int
		total string
	}{
		{"2026-03-09", 2, "30"},
		{"2026-03-16", 2, "35"},
	}
	if len(buckets) != len(want) {
		t.Fatalf("expected %d buckets, got %+v", len(want), buckets)
	}
	for i, w := range want {
		if buckets[i].Key != w.key || buckets[i].Count != w.count || !buckets[i].TotalAmount.Equal(dec(w.total)) {
			t.Errorf("bucket %d = %s/%d/%s, want %s/%d/%s", i,
				buckets[i].Key, buckets[i].Count, buckets[i].TotalAmount, w.key, w.count, w.total)
		}
	}
}

func TestAggregateByPeriod_IndependentOfLocalZone(t *testing.T) {
	orig := time.Local
	time.Local = time.FixedZone("HST", -10*3600)
	defer func() { time.Local = orig }()

	buckets, err := AggregateByPeriod([]store.Order{order("2026-03-16", enum.PaymentCash, "1", 1)}, enum.PeriodWeekly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buckets[0].Key != "2026-03-16" {
		t.Errorf("key = %s, want 2026-03-16", buckets[0].Key)
	}
}

func TestAggregateByPeriod_DailyAndMonthly(t *testing.T) {
	rows := []store.Order{
		order("2026-02-28", enum.PaymentCash, "1", 1),
		order("2026-03-01", enum.PaymentCash, "2", 1),
		order("2026-03-01", enum.PaymentCash, "3", 1),
		order("bad", enum.PaymentCash, "100", 1),
	}
	daily, _ := AggregateByPeriod(rows, enum.PeriodDaily)
	if len(daily) != 2 || daily[1].Key != "2026-03-01" || daily[1].Count != 2 {
		t.Errorf("daily = %+v", daily)
	}
	monthly, _ := AggregateByPeriod(rows, enum.PeriodMonthly)
	if len(monthly) != 2 || monthly[0].Key != "2026-02" || monthly[1].Key != "2026-03" {
		t.Errorf("monthly = %+v", monthly)
	}
	if _, err := AggregateByPeriod(rows, "yearly"); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestDefaultRange(t *testing.T) {
	// Wednesday 23:30 UTC on 2026-03-18 is Thursday 06:30 in Bangkok.
	now := time.Date(2026, 3, 18, 23, 30, 0, 0, time.UTC)
	tests := []struct {
		period string
		want   Range
	}{
		{enum.PeriodDaily, Range{"2026-03-19", "2026-03-19"}},
		{enum.PeriodWeekly, Range{"2026-03-16", "2026-03-22"}},
		{enum.PeriodMonthly, Range{"2026-03-01", "2026-03-31"}},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			got, err := DefaultRange(tt.period, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DefaultRange = %+v, want %+v", got, tt.want)
			}
		})
	}
	if _, err := DefaultRange("hourly", now); !errors.Is(err, ErrInvalidPeriod) {
		t.Errorf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestProductTotals(t *testing.T) {
	rows := []store.Order{
		{ItemsText: "Croissant x2, Baguette x1"},
		{ItemsText: "Baguette x3, Cookie"},
		{ItemsText: ""},
	}
	got := ProductTotals(rows)
	want := []ProductTotal{{"Baguette", 4}, {"Croissant", 2}, {"Cookie", 1}}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestProductTotals_CommaInName(t *testing.T) {
	rows := []store.Order{
		{ItemsText: store.FormatLines([]store.Line{{Name: "Bun, sesame", Qty: 3}})},
		{ItemsText: store.FormatLines([]store.Line{{Name: "Bun, sesame", Qty: 1}, {Name: "Bun", Qty: 1}})},
	}
	got := ProductTotals(rows)
	want := []ProductTotal{{"Bun, sesame", 4}, {"Bun", 1}}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

type stubReader struct {
	start, end string
	err        error
}

func (s *stubReader) ListOrdersRange(ctx context.Context, location, start, end string) ([]store.Order, error) {
	s.start, s.end = start, end
	return nil, s.err
}

func TestFetchHistoryRange(t *testing.T) {
	r := &stubReader{}
	if _, err := FetchHistoryRange(context.Background(), r, "SILOM", Range{"2026-03-01", "2026-03-31"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.start != "2026-03-01" || r.end != "2026-03-31" {
		t.Errorf("bounds = %s..%s", r.start, r.end)
	}

	r.err = errors.New("boom")
	if _, err := FetchHistoryRange(context.Background(), r, "SILOM", Range{}); !errors.Is(err, r.err) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

type mapReader map[string][]store.Order

func (m mapReader) ListOrdersRange(ctx context.Context, location, start, end string) ([]store.Order, error) {
	var out []store.Order
	for _, o := range m[location] {
		if o.Date >= start && o.Date <= end {
			out = append(out, o)
		}
	}
	return out, nil
}

func TestBuild_AllLocations(t *testing.T) {
	reader := mapReader{
		"SILOM": {order("2026-03-14", enum.PaymentCash, "100", 2)},
		"ARI": {
			order("2026-03-14", enum.PaymentLineman, "50", 1),
			order("2026-04-01", enum.PaymentCash, "999", 9),
		},
	}
	res, err := Build(context.Background(), reader, enum.AllLocations, []string{"SILOM", "ARI", "EMPTY"},
		enum.PeriodDaily, Range{"2026-03-01", "2026-03-31"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Grand.Count != 2 || !res.Grand.TotalAmount.Equal(dec("150")) {
		t.Errorf("grand = %+v", res.Grand)
	}
	if len(res.Buckets) != 1 || res.Buckets[0].Key != "2026-03-14" {
		t.Errorf("buckets = %+v", res.Buckets)
	}
	if res.Location != enum.AllLocations {
		t.Errorf("location = %s", res.Location)
	}
}
