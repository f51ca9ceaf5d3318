package handler

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bakehouse-pos/api/internal/enum"
	"github.com/bakehouse-pos/api/internal/export"
	"github.com/bakehouse-pos/api/internal/middleware"
	"github.com/bakehouse-pos/api/internal/service"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/bakehouse-pos/api/internal/timeutil"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// StockReader defines the read-side store methods used by stock handlers.
// Satisfied by *store.Store.
type StockReader interface {
	ListStockLevels(ctx context.Context, location string) ([]store.StockLevel, error)
	ProductNames(ctx context.Context) (map[int]string, error)
	ListMovements(ctx context.Context, f store.MovementFilter) ([]store.Movement, error)
	ListDailySnapshots(ctx context.Context, date, location string) ([]store.DailySnapshot, error)
}

// StockServicer defines the write-side operations. Satisfied by
// *service.StockService.
type StockServicer interface {
	Adjust(ctx context.Context, req service.AdjustRequest) ([]store.StockLevel, error)
	BulkSet(ctx context.Context, location string, updates []service.QtyUpdate) (service.BulkResult, error)
	Snapshot(ctx context.Context, location, date, kind string) ([]store.DailySnapshot, error)
}

// StockHandler handles stock level, ledger and daily snapshot endpoints.
type StockHandler struct {
	store StockReader
	svc   StockServicer
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(store StockReader, svc StockServicer, log logrus.FieldLogger, now func() time.Time) *StockHandler {
	if now == nil {
		now = timeutil.Now
	}
	return &StockHandler{store: store, svc: svc, log: log, now: now}
}

// RegisterRoutes registers reads, which are scoped by ?location=.
// Expected to be mounted at /api/stocks
func (h *StockHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/movements", h.Movements)
	r.Get("/movements/csv", h.MovementsCSV)
	r.Get("/daily/opening", h.Opening)
}

// RegisterWriteRoutes registers writes available to any signed-in user.
// Location access is checked against the request body.
func (h *StockHandler) RegisterWriteRoutes(r chi.Router) {
	r.Patch("/", h.Set)
	r.Post("/adjust", h.Adjust)
	r.Post("/daily/opening", h.SnapshotOpening)
	r.Post("/daily/closing", h.SnapshotClosing)
}

// RegisterOwnerRoutes registers owner-only writes.
func (h *StockHandler) RegisterOwnerRoutes(r chi.Router) {
	r.Post("/bulk", h.Bulk)
}

// --- Request / Response types ---

type setStockRequest struct {
	Location  string `json:"location" validate:"required,locationid"`
	ProductID int    `json:"productId" validate:"gt=0"`
	Qty       *int   `json:"qty" validate:"required"`
}

type movementRequest struct {
	ProductID int    `json:"productId" validate:"gt=0"`
	Delta     int    `json:"delta" validate:"ne=0"`
	Reason    string `json:"reason"`
	BillNo    string `json:"billNo"`
}

type adjustRequest struct {
	Location  string            `json:"location" validate:"required,locationid"`
	Movements []movementRequest `json:"movements" validate:"required,min=1,dive"`
}

type qtyUpdateRequest struct {
	ProductID int  `json:"productId" validate:"gt=0"`
	Qty       *int `json:"qty" validate:"required"`
}

type bulkRequest struct {
	Location string             `json:"location" validate:"required,locationid"`
	Updates  []qtyUpdateRequest `json:"updates" validate:"required,min=1,dive"`
}

type snapshotRequest struct {
	Location string `json:"location" validate:"required,locationid"`
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type stockResponse struct {
	Location    string `json:"location"`
	ProductID   int    `json:"productId"`
	ProductName string `json:"productName"`
	Qty         int    `json:"qty"`
	UpdatedAt   string `json:"updatedAt"`
}

type movementResponse struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	ProductID   int    `json:"productId"`
	ProductName string `json:"productName"`
	Delta       int    `json:"delta"`
	Reason      string `json:"reason"`
	User        string `json:"user"`
}

type snapshotResponse struct {
	Date       string `json:"date"`
	Location   string `json:"location"`
	ProductID  int    `json:"productId"`
	OpeningQty *int   `json:"openingQty"`
	ClosingQty *int   `json:"closingQty"`
	SnapshotAt string `json:"snapshotAt"`
}

func toStockResponses(levels []store.StockLevel, names map[int]string) []stockResponse {
	out := make([]stockResponse, len(levels))
	for i, l := range levels {
		out[i] = stockResponse{
			Location:    l.Location,
			ProductID:   l.ProductID,
			ProductName: names[l.ProductID],
			Qty:         l.Qty,
			UpdatedAt:   l.UpdatedAt,
		}
	}
	return out
}

func toSnapshotResponses(snaps []store.DailySnapshot) []snapshotResponse {
	out := make([]snapshotResponse, len(snaps))
	for i, s := range snaps {
		out[i] = snapshotResponse{
			Date:       s.Date,
			Location:   s.Location,
			ProductID:  s.ProductID,
			OpeningQty: s.OpeningQty,
			ClosingQty: s.ClosingQty,
			SnapshotAt: s.SnapshotAt,
		}
	}
	return out
}

// --- Reads ---

// List returns the stock levels of one location, ordered by product id.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	location, err := queryLocation(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	levels, err := h.store.ListStockLevels(r.Context(), location)
	if err != nil {
		writeServiceError(w, h.log, err, "list stock levels")
		return
	}
	names, err := h.store.ProductNames(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "list product names")
		return
	}
	sort.SliceStable(levels, func(i, j int) bool { return levels[i].ProductID < levels[j].ProductID })
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"location": location,
		"stocks":   toStockResponses(levels, names),
	})
}

// movementFilter reads the optional ledger filters. A location is required
// for location-scoped tokens so a staff login cannot read other shops.
func movementFilter(r *http.Request) (store.MovementFilter, error) {
	q := r.URL.Query()
	var f store.MovementFilter

	if strings.TrimSpace(q.Get("location")) != "" {
		loc, err := store.NormalizeLocationID(q.Get("location"))
		if err != nil {
			return f, err
		}
		f.Location = loc
	} else if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && !claims.CanAccess("") {
		f.Location = claims.Location
	}

	for _, p := range []struct {
		name string
		dst  *string
	}{{"start", &f.Start}, {"end", &f.End}} {
		v := strings.TrimSpace(q.Get(p.name))
		if v == "" {
			continue
		}
		if _, err := timeutil.ParseDate(v); err != nil {
			return f, fmt.Errorf("%s must be a YYYY-MM-DD date", p.name)
		}
		*p.dst = v
	}
	if f.Start != "" && f.End != "" && f.Start > f.End {
		return f, fmt.Errorf("start must not be after end")
	}

	if v := strings.TrimSpace(q.Get("productId")); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			return f, fmt.Errorf("productId must be > 0")
		}
		f.ProductID = id
	}
	return f, nil
}

func (h *StockHandler) loadMovements(w http.ResponseWriter, r *http.Request) ([]store.Movement, store.MovementFilter, bool) {
	f, err := movementFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, f, false
	}
	rows, err := h.store.ListMovements(r.Context(), f)
	if err != nil {
		writeServiceError(w, h.log, err, "list movements")
		return nil, f, false
	}
	return rows, f, true
}

// Movements returns ledger rows matching the filters, in sheet order.
func (h *StockHandler) Movements(w http.ResponseWriter, r *http.Request) {
	rows, _, ok := h.loadMovements(w, r)
	if !ok {
		return
	}
	out := make([]movementResponse, len(rows))
	for i, m := range rows {
		out[i] = movementResponse(m)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"movements": out})
}

// MovementsCSV downloads the filtered ledger.
func (h *StockHandler) MovementsCSV(w http.ResponseWriter, r *http.Request) {
	rows, f, ok := h.loadMovements(w, r)
	if !ok {
		return
	}
	name := "movements"
	if f.Location != "" {
		name += "_" + f.Location
	}
	setDownload(w, "text/csv; charset=utf-8", name+".csv")
	if err := export.WriteMovementsCSV(w, rows); err != nil {
		h.log.WithError(err).Error("write movements csv")
	}
}

// Opening returns the day's snapshot rows for a location. Date defaults to
// today.
func (h *StockHandler) Opening(w http.ResponseWriter, r *http.Request) {
	location, err := queryLocation(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = timeutil.DateString(h.now())
	} else if _, err := timeutil.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be a YYYY-MM-DD date")
		return
	}
	snaps, err := h.store.ListDailySnapshots(r.Context(), date, location)
	if err != nil {
		writeServiceError(w, h.log, err, "list daily snapshots")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":      date,
		"location":  location,
		"snapshots": toSnapshotResponses(snaps),
	})
}

// --- Writes ---

// canWrite rejects tokens scoped to a different location.
func canWrite(w http.ResponseWriter, r *http.Request, location string) bool {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return true
	}
	loc, err := store.NormalizeLocationID(location)
	if err != nil || claims.CanAccess(loc) {
		return true
	}
	writeError(w, http.StatusForbidden, "no access to this location")
	return false
}

func username(r *http.Request) string {
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		return claims.Username
	}
	return ""
}

// Set overwrites one product's quantity. No ledger row is written.
func (h *StockHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req setStockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !canWrite(w, r, req.Location) {
		return
	}
	res, err := h.svc.BulkSet(r.Context(), req.Location, []service.QtyUpdate{{ProductID: req.ProductID, Qty: *req.Qty}})
	if err != nil {
		writeServiceError(w, h.log, err, "set stock")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "updated": res.Updated, "appended": res.Appended})
}

// Adjust applies signed deltas and records each in the ledger under the
// caller's username.
func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !canWrite(w, r, req.Location) {
		return
	}

	movements := make([]service.MovementInput, len(req.Movements))
	for i, m := range req.Movements {
		movements[i] = service.MovementInput{ProductID: m.ProductID, Delta: m.Delta, Reason: m.Reason, BillNo: m.BillNo}
	}
	levels, err := h.svc.Adjust(r.Context(), service.AdjustRequest{
		Location:  req.Location,
		User:      username(r),
		Movements: movements,
	})
	if err != nil {
		writeServiceError(w, h.log, err, "adjust stock")
		return
	}

	names, err := h.store.ProductNames(r.Context())
	if err != nil {
		h.log.WithError(err).Warn("product names for adjust response")
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":     true,
		"stocks": toStockResponses(levels, names),
	})
}

// Bulk overwrites many quantities at once.
func (h *StockHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	updates := make([]service.QtyUpdate, len(req.Updates))
	for i, u := range req.Updates {
		updates[i] = service.QtyUpdate{ProductID: u.ProductID, Qty: *u.Qty}
	}
	res, err := h.svc.BulkSet(r.Context(), req.Location, updates)
	if err != nil {
		writeServiceError(w, h.log, err, "bulk set stock")
		return
	}
	h.log.WithFields(logrus.Fields{
		"location": strings.ToUpper(strings.TrimSpace(req.Location)),
		"updated":  res.Updated,
		"appended": res.Appended,
	}).Info("stock bulk set")
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true, "updated": res.Updated, "appended": res.Appended})
}

// SnapshotOpening records today's (or the given date's) opening quantities.
func (h *StockHandler) SnapshotOpening(w http.ResponseWriter, r *http.Request) {
	h.snapshot(w, r, enum.SnapshotOpening)
}

// SnapshotClosing records closing quantities.
func (h *StockHandler) SnapshotClosing(w http.ResponseWriter, r *http.Request) {
	h.snapshot(w, r, enum.SnapshotClosing)
}

func (h *StockHandler) snapshot(w http.ResponseWriter, r *http.Request, kind string) {
	var req snapshotRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !canWrite(w, r, req.Location) {
		return
	}
	snaps, err := h.svc.Snapshot(r.Context(), req.Location, req.Date, kind)
	if err != nil {
		writeServiceError(w, h.log, err, "snapshot "+kind)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":        true,
		"kind":      kind,
		"snapshots": toSnapshotResponses(snaps),
	})
}
