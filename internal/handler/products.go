package handler

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/bakehouse-pos/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ProductStore defines the store methods needed by product handlers.
// Satisfied by *store.Store; narrow interface for testability.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]store.Product, error)
	SetProductActive(ctx context.Context, id int, active bool) error
	CreateProduct(ctx context.Context, name string, price decimal.Decimal) (store.Product, error)
}

// ProductHandler handles catalog endpoints.
type ProductHandler struct {
	store ProductStore
	log   logrus.FieldLogger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(store ProductStore, log logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{store: store, log: log}
}

// RegisterRoutes registers read endpoints on the given Chi router.
// Expected to be mounted at /api/products
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
}

// RegisterOwnerRoutes registers catalog edits.
func (h *ProductHandler) RegisterOwnerRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Patch("/{id}", h.SetActive)
}

// --- Request / Response types ---

type createProductRequest struct {
	Name  string           `json:"name" validate:"required"`
	Price *decimal.Decimal `json:"price" validate:"required"`
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type productResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Price  string `json:"price"`
	Active bool   `json:"active"`
}

func toProductResponse(p store.Product) productResponse {
	return productResponse{ID: p.ID, Name: p.Name, Price: store.FormatMoney(p.Price), Active: p.Active}
}

// --- Handlers ---

// List returns named, priced products sorted by price, highest first.
// Inactive products are included unless ?activeOnly=true.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("activeOnly"))

	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "list products")
		return
	}

	out := make([]store.Product, 0, len(products))
	for _, p := range products {
		if p.Name == "" || !p.Price.IsPositive() {
			continue
		}
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })

	resp := make([]productResponse, len(out))
	for i, p := range out {
		resp[i] = toProductResponse(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": resp})
}

// Create appends a product with the next id.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !req.Price.IsPositive() {
		writeError(w, http.StatusBadRequest, "price must be > 0")
		return
	}

	p, err := h.store.CreateProduct(r.Context(), name, *req.Price)
	if err != nil {
		writeServiceError(w, h.log, err, "create product")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "product": toProductResponse(p)})
}

// SetActive flips the soft active flag. Inactive products still appear in
// history and reports.
func (h *ProductHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req setActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.SetProductActive(r.Context(), id, *req.Active); err != nil {
		writeServiceError(w, h.log, err, "set product active")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
