package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/bakehouse-pos/api/internal/middleware"
	"github.com/bakehouse-pos/api/internal/service"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*store.Order, error)
}

// OrderHandler handles checkout.
type OrderHandler struct {
	svc OrderServicer
	log logrus.FieldLogger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, log logrus.FieldLogger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /api/orders
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
}

// --- Request / Response types ---

type orderLineRequest struct {
	ProductID int             `json:"productId"`
	Name      string          `json:"name" validate:"required"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty" validate:"gt=0"`
}

type createOrderRequest struct {
	Location      string             `json:"location" validate:"required,locationid"`
	Payment       string             `json:"payment" validate:"required"`
	Items         []orderLineRequest `json:"items" validate:"required,min=1,dive"`
	Freebies      []orderLineRequest `json:"freebies" validate:"omitempty,dive"`
	Subtotal      *decimal.Decimal   `json:"subtotal"`
	Total         *decimal.Decimal   `json:"total" validate:"required"`
	Discount      *decimal.Decimal   `json:"discount"`
	LinemanMarkup *decimal.Decimal   `json:"linemanMarkup"`
}

type orderResponse struct {
	Location       string `json:"location"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	BillNo         string `json:"billNo"`
	Items          string `json:"items"`
	Freebies       string `json:"freebies"`
	TotalQty       int    `json:"totalQty"`
	Payment        string `json:"payment"`
	Total          string `json:"total"`
	FreebiesAmount string `json:"freebiesAmount"`
	Subtotal       string `json:"subtotal"`
	LinemanMarkup  string `json:"linemanMarkup"`
	Discount       string `json:"discount"`
}

func toOrderResponse(o store.Order) orderResponse {
	return orderResponse{
		Location:       o.Location,
		Date:           o.Date,
		Time:           o.Time,
		BillNo:         o.BillNo,
		Items:          o.ItemsText,
		Freebies:       o.FreebiesText,
		TotalQty:       o.TotalQty,
		Payment:        o.Payment,
		Total:          store.FormatMoney(o.Total),
		FreebiesAmount: store.FormatMoney(o.FreebiesAmount),
		Subtotal:       store.FormatMoney(o.Subtotal),
		LinemanMarkup:  store.FormatMoney(o.LinemanMarkup),
		Discount:       store.FormatMoney(o.Discount),
	}
}

func toLineItems(lines []orderLineRequest) []service.LineItem {
	out := make([]service.LineItem, len(lines))
	for i, l := range lines {
		out[i] = service.LineItem{ProductID: l.ProductID, Name: strings.TrimSpace(l.Name), Price: l.Price, Qty: l.Qty}
	}
	return out
}

func decOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// --- Handlers ---

// Create records one checkout as a bill row on the location's tab.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	location, _ := store.NormalizeLocationID(req.Location)
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil && !claims.CanAccess(location) {
		writeError(w, http.StatusForbidden, "access denied for this location")
		return
	}

	order, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		Location:      location,
		Payment:       req.Payment,
		Items:         toLineItems(req.Items),
		Freebies:      toLineItems(req.Freebies),
		Subtotal:      req.Subtotal,
		Total:         req.Total,
		Discount:      decOrZero(req.Discount),
		LinemanMarkup: decOrZero(req.LinemanMarkup),
	})
	if err != nil {
		writeServiceError(w, h.log, err, "create order")
		return
	}

	h.log.WithFields(logrus.Fields{
		"location": order.Location,
		"billNo":   order.BillNo,
		"total":    store.FormatMoney(order.Total),
	}).Info("order saved")
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "saved": toOrderResponse(*order)})
}
