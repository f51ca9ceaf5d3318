package handler_test

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/bakehouse-pos/api/internal/enum"
	"github.com/bakehouse-pos/api/internal/handler"
	"github.com/bakehouse-pos/api/internal/sheet"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/go-chi/chi/v5"
)

// seedOrders fills SILOM and ARI with bills over two weeks of March 2026.
func seedOrders(mem *sheet.Memory) {
	mem.Seed(enum.TabLocations, [][]string{store.LocationHeader, {"SILOM", "Silom"}, {"ARI", "Ari"}})
	mem.Seed("SILOM", [][]string{
		store.OrderHeader,
		{"2026-03-14", "09:00:00", "01", "Croissant x2, Baguette x1", "", "3", "cash", "150.00", "0.00", "150.00", "0.00", "0.00"},
		{"2026-03-14", "10:30:00", "02", "Croissant x1", "Cookie x1", "1", "lineman", "55.00", "15.00", "45.00", "25.00", "0.00"},
		{"2026-03-16", "08:15:00", "01", "Sourdough x1", "", "1", "promptpay", "120.00", "0.00", "120.00", "0.00", "0.00"},
	})
	mem.Seed("ARI", [][]string{
		store.OrderHeader,
		{"2026-03-14", "11:00:00", "01", "Croissant x3", "", "3", "cash", "135.00", "0.00", "135.00", "0.00", "0.00"},
	})
}

func setupHistoryRouter(st handler.HistoryStore) *chi.Mux {
	h := handler.NewHistoryHandler(st, quietLogger(), fixedClock)
	r := chi.NewRouter()
	r.Route("/api/history", h.RegisterRoutes)
	return r
}

func TestHistory_DefaultsToToday(t *testing.T) {
	st, mem := newTestStore()
	seedOrders(mem)
	r := setupHistoryRouter(st)

	rr := doRequest(t, r, "GET", "/api/history?location=silom", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	rows := resp["rows"].([]interface{})
	if len(rows) != 2 {
		t.Fatalf("expected 2 bills on 2026-03-14, got %d", len(rows))
	}
	totals := resp["totals"].(map[string]interface{})
	if totals["count"] != float64(2) || totals["totalQty"] != float64(4) {
		t.Errorf("unexpected totals: %v", totals)
	}
	if totals["totalAmount"] != "205.00" || totals["freebiesAmount"] != "15.00" {
		t.Errorf("unexpected amounts: %v", totals)
	}
	by := totals["byPayment"].(map[string]interface{})
	if by["cash"] != "150.00" || by["lineman"] != "55.00" {
		t.Errorf("unexpected byPayment: %v", by)
	}
}

func TestHistory_UnknownLocationIsEmpty(t *testing.T) {
	st, _ := newTestStore()
	r := setupHistoryRouter(st)

	rr := doRequest(t, r, "GET", "/api/history?location=NOWHERE&date=2026-03-14", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	if rows := resp["rows"].([]interface{}); len(rows) != 0 {
		t.Errorf("expected no rows, got %v", rows)
	}
	if by := resp["totals"].(map[string]interface{})["byPayment"]; by == nil {
		t.Error("byPayment must be an object, not null")
	}
}

func TestHistory_BadQuery(t *testing.T) {
	st, _ := newTestStore()
	r := setupHistoryRouter(st)

	for _, path := range []string{
		"/api/history",
		"/api/history?location=bad-id",
		"/api/history?location=SILOM&date=14/03/2026",
	} {
		if rr := doRequest(t, r, "GET", path, nil, nil); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rr.Code)
		}
	}
}

func TestHistory_CSV(t *testing.T) {
	st, mem := newTestStore()
	seedOrders(mem)
	r := setupHistoryRouter(st)

	rr := doRequest(t, r, "GET", "/api/history/csv?location=SILOM&date=2026-03-14", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "history_SILOM_2026-03-14.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"Croissant x2, Baguette x1"`) {
		t.Errorf("items with commas must be quoted:\n%s", body)
	}
	if n := strings.Count(body, "\r\n"); n != 3 {
		t.Errorf("expected header and 2 rows, got %d lines", n)
	}
}

func TestHistory_PDF(t *testing.T) {
	st, mem := newTestStore()
	seedOrders(mem)
	r := setupHistoryRouter(st)

	rr := doRequest(t, r, "GET", "/api/history/pdf?location=SILOM&date=2026-03-14", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")) {
		t.Error("body is not a PDF")
	}
}

func TestHistory_BackendFailure(t *testing.T) {
	r := setupHistoryRouter(failingStore())

	rr := doRequest(t, r, "GET", "/api/history?location=SILOM", nil, nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}
