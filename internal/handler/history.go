package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bakehouse-pos/api/internal/export"
	"github.com/bakehouse-pos/api/internal/report"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/bakehouse-pos/api/internal/timeutil"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// HistoryStore reads order rows. Satisfied by *store.Store.
type HistoryStore interface {
	ListOrdersRange(ctx context.Context, location, start, end string) ([]store.Order, error)
}

// HistoryHandler serves one location's bills for one day.
type HistoryHandler struct {
	store HistoryStore
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewHistoryHandler creates a new HistoryHandler. A nil clock uses Bangkok now.
func NewHistoryHandler(store HistoryStore, log logrus.FieldLogger, now func() time.Time) *HistoryHandler {
	if now == nil {
		now = timeutil.Now
	}
	return &HistoryHandler{store: store, log: log, now: now}
}

// RegisterRoutes registers history endpoints.
// Expected to be mounted at /api/history
func (h *HistoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/csv", h.CSV)
	r.Get("/pdf", h.PDF)
}

// --- Response types ---

type summaryResponse struct {
	Count          int               `json:"count"`
	TotalQty       int               `json:"totalQty"`
	TotalAmount    string            `json:"totalAmount"`
	FreebiesAmount string            `json:"freebiesAmount"`
	ByPayment      map[string]string `json:"byPayment"`
}

func toSummaryResponse(s report.Summary) summaryResponse {
	by := make(map[string]string, len(s.ByPayment))
	for k, v := range s.ByPayment {
		by[k] = store.FormatMoney(v)
	}
	return summaryResponse{
		Count:          s.Count,
		TotalQty:       s.TotalQty,
		TotalAmount:    store.FormatMoney(s.TotalAmount),
		FreebiesAmount: store.FormatMoney(s.FreebiesAmount),
		ByPayment:      by,
	}
}

// load resolves ?location and ?date (default today) and reads the rows.
// It writes the error response itself and reports false on failure.
func (h *HistoryHandler) load(w http.ResponseWriter, r *http.Request) (string, string, []store.Order, bool) {
	location, err := queryLocation(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", "", nil, false
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = timeutil.DateString(h.now())
	} else if _, err := timeutil.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be a YYYY-MM-DD date")
		return "", "", nil, false
	}

	rows, err := report.FetchHistoryRange(r.Context(), h.store, location, report.Range{Start: date, End: date})
	if err != nil {
		writeServiceError(w, h.log, err, "load history")
		return "", "", nil, false
	}
	return location, date, rows, true
}

// --- Handlers ---

// List returns the day's bills and their totals.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	_, _, rows, ok := h.load(w, r)
	if !ok {
		return
	}
	resp := make([]orderResponse, len(rows))
	for i, o := range rows {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":   resp,
		"totals": toSummaryResponse(report.SummarizeTotals(rows)),
	})
}

// CSV downloads the day's bills.
func (h *HistoryHandler) CSV(w http.ResponseWriter, r *http.Request) {
	location, date, rows, ok := h.load(w, r)
	if !ok {
		return
	}
	setDownload(w, "text/csv; charset=utf-8", fmt.Sprintf("history_%s_%s.csv", location, date))
	if err := export.WriteHistoryCSV(w, rows); err != nil {
		h.log.WithError(err).Error("write history csv")
	}
}

// PDF downloads the day's bills as a printable table.
func (h *HistoryHandler) PDF(w http.ResponseWriter, r *http.Request) {
	location, date, rows, ok := h.load(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteHistoryPDF(&buf, location, date, rows); err != nil {
		writeServiceError(w, h.log, err, "render history pdf")
		return
	}
	setDownload(w, "application/pdf", fmt.Sprintf("history_%s_%s.pdf", location, date))
	w.Write(buf.Bytes())
}
