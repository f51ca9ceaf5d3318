package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/bakehouse-pos/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// LocationStore defines the store methods needed by location handlers.
// Satisfied by *store.Store.
type LocationStore interface {
	ListLocations(ctx context.Context) ([]store.Location, error)
	CreateLocation(ctx context.Context, loc store.Location) error
}

// LocationHandler handles the location registry.
type LocationHandler struct {
	store LocationStore
	log   logrus.FieldLogger
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(store LocationStore, log logrus.FieldLogger) *LocationHandler {
	return &LocationHandler{store: store, log: log}
}

// RegisterRoutes registers read endpoints.
// Expected to be mounted at /api/locations
func (h *LocationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
}

// RegisterOwnerRoutes registers location creation.
func (h *LocationHandler) RegisterOwnerRoutes(r chi.Router) {
	r.Post("/", h.Create)
}

type createLocationRequest struct {
	ID    string `json:"id" validate:"required"`
	Label string `json:"label"`
}

type locationResponse struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// List returns registered locations in sheet order.
func (h *LocationHandler) List(w http.ResponseWriter, r *http.Request) {
	locs, err := h.store.ListLocations(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "list locations")
		return
	}
	out := make([]locationResponse, len(locs))
	for i, l := range locs {
		out[i] = locationResponse{ID: l.ID, Label: l.Label}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"locations": out})
}

// Create registers a location and creates its order tab. The id is
// upper-cased before validation.
func (h *LocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := store.NormalizeLocationID(req.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	loc := store.Location{ID: id, Label: strings.TrimSpace(req.Label)}
	if loc.Label == "" {
		loc.Label = id
	}
	if err := h.store.CreateLocation(r.Context(), loc); err != nil {
		writeServiceError(w, h.log, err, "create location")
		return
	}
	h.log.WithField("location", id).Info("location created")
	writeJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "location": locationResponse(loc)})
}
