package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bakehouse-pos/api/internal/enum"
	"github.com/bakehouse-pos/api/internal/export"
	"github.com/bakehouse-pos/api/internal/report"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/bakehouse-pos/api/internal/timeutil"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// ReportsStore defines the store methods needed by report handlers.
// Satisfied by *store.Store; narrow interface for testability.
type ReportsStore interface {
	ListOrdersRange(ctx context.Context, location, start, end string) ([]store.Order, error)
	ListLocations(ctx context.Context) ([]store.Location, error)
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	store ReportsStore
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(store ReportsStore, log logrus.FieldLogger, now func() time.Time) *ReportsHandler {
	if now == nil {
		now = timeutil.Now
	}
	return &ReportsHandler{store: store, log: log, now: now}
}

// RegisterRoutes registers report endpoints.
// Expected to be mounted at /api/reports
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Summary)
	r.Get("/csv", h.CSV)
	r.Get("/xlsx", h.XLSX)
}

// --- Response types ---

type bucketResponse struct {
	Key string `json:"key"`
	summaryResponse
}

type productTotalResponse struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

type reportResponse struct {
	Location string                 `json:"location"`
	Period   string                 `json:"period"`
	Start    string                 `json:"start"`
	End      string                 `json:"end"`
	Grand    summaryResponse        `json:"grand"`
	Buckets  []bucketResponse       `json:"buckets"`
	Products []productTotalResponse `json:"products"`
}

func toReportResponse(res report.Result) reportResponse {
	buckets := make([]bucketResponse, len(res.Buckets))
	for i, b := range res.Buckets {
		buckets[i] = bucketResponse{Key: b.Key, summaryResponse: toSummaryResponse(b.Summary)}
	}
	products := make([]productTotalResponse, len(res.Products))
	for i, p := range res.Products {
		products[i] = productTotalResponse{Name: p.Name, Qty: p.Qty}
	}
	return reportResponse{
		Location: res.Location,
		Period:   res.Period,
		Start:    res.Range.Start,
		End:      res.Range.End,
		Grand:    toSummaryResponse(res.Grand),
		Buckets:  buckets,
		Products: products,
	}
}

// build parses the query and aggregates. It writes the error response itself
// and reports false on failure.
func (h *ReportsHandler) build(w http.ResponseWriter, r *http.Request) (report.Result, bool) {
	q := r.URL.Query()

	period := strings.ToLower(strings.TrimSpace(q.Get("period")))
	if period == "" {
		period = enum.PeriodDaily
	}
	if !report.ValidPeriod(period) {
		writeError(w, http.StatusBadRequest, report.ErrInvalidPeriod.Error())
		return report.Result{}, false
	}

	rng, err := parseRange(period, q.Get("start"), q.Get("end"), h.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return report.Result{}, false
	}

	label, locations, ok := h.resolveLocations(w, r)
	if !ok {
		return report.Result{}, false
	}

	res, err := report.Build(r.Context(), h.store, label, locations, period, rng)
	if err != nil {
		writeServiceError(w, h.log, err, "build report")
		return report.Result{}, false
	}
	return res, true
}

// resolveLocations expands ALL to every registered location.
func (h *ReportsHandler) resolveLocations(w http.ResponseWriter, r *http.Request) (string, []string, bool) {
	raw := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("location")))
	if raw != enum.AllLocations {
		location, err := queryLocation(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return "", nil, false
		}
		return location, []string{location}, true
	}

	locs, err := h.store.ListLocations(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "list locations")
		return "", nil, false
	}
	ids := make([]string, len(locs))
	for i, l := range locs {
		ids[i] = l.ID
	}
	return enum.AllLocations, ids, true
}

// parseRange uses the period's default range when neither bound is given.
// A single missing bound takes the other's value.
func parseRange(period, start, end string, now time.Time) (report.Range, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return report.DefaultRange(period, now)
	}
	if start == "" {
		start = end
	}
	if end == "" {
		end = start
	}
	if _, err := timeutil.ParseDate(start); err != nil {
		return report.Range{}, fmt.Errorf("start must be a YYYY-MM-DD date")
	}
	if _, err := timeutil.ParseDate(end); err != nil {
		return report.Range{}, fmt.Errorf("end must be a YYYY-MM-DD date")
	}
	if start > end {
		return report.Range{}, fmt.Errorf("start must not be after end")
	}
	return report.Range{Start: start, End: end}, nil
}

// --- Handlers ---

// Summary returns grand totals, period buckets and product quantities.
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	res, ok := h.build(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toReportResponse(res))
}

// CSV downloads the report with a UTF-8 BOM.
func (h *ReportsHandler) CSV(w http.ResponseWriter, r *http.Request) {
	res, ok := h.build(w, r)
	if !ok {
		return
	}
	setDownload(w, "text/csv; charset=utf-8", reportFilename(res, "csv"))
	if err := export.WriteReportCSV(w, res); err != nil {
		h.log.WithError(err).Error("write report csv")
	}
}

// XLSX downloads the report as a workbook.
func (h *ReportsHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	res, ok := h.build(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteReportXLSX(&buf, res); err != nil {
		writeServiceError(w, h.log, err, "render report xlsx")
		return
	}
	setDownload(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", reportFilename(res, "xlsx"))
	w.Write(buf.Bytes())
}

func reportFilename(res report.Result, ext string) string {
	return fmt.Sprintf("report_%s_%s_%s_%s.%s", res.Location, res.Period, res.Range.Start, res.Range.End, ext)
}
