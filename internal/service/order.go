package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bakehouse-pos/api/internal/enum"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/bakehouse-pos/api/internal/timeutil"
	"github.com/shopspring/decimal"
)

// Errors returned by the order service.
var (
	ErrMissingLocation = errors.New("location is required")
	ErrEmptyItems      = errors.New("items are required")
	ErrMissingPayment  = errors.New("payment is required")
	ErrMissingTotal    = errors.New("total must be a number")
	ErrInvalidQuantity = errors.New("quantity must be > 0")
	ErrMissingName     = errors.New("item name is required")
	ErrNegativeAmount  = errors.New("amounts must be >= 0")
)

// Clock returns the current time. Tests pin it; production uses timeutil.Now.
type Clock func() time.Time

// Notifier publishes live events for a location. Satisfied by *ws.Hub.
type Notifier interface {
	Publish(location, eventType string, payload any)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, string, any) {}

// OrderStore defines the store methods needed to record bills.
// Satisfied by *store.Store.
type OrderStore interface {
	EnsureOrderTab(ctx context.Context, location string) error
	ListOrders(ctx context.Context, location, date string) ([]store.Order, error)
	AppendOrder(ctx context.Context, o store.Order) error
}

// LineItem is one cart entry.
type LineItem struct {
	ProductID int
	Name      string
	Price     decimal.Decimal
	Qty       int
}

// CreateOrderRequest is the validated input for a checkout.
type CreateOrderRequest struct {
	Location      string
	Payment       string
	Items         []LineItem
	Freebies      []LineItem
	Subtotal      *decimal.Decimal
	Total         *decimal.Decimal
	Discount      decimal.Decimal
	LinemanMarkup decimal.Decimal
}

// OrderService records checkouts as bill rows.
type OrderService struct {
	store  OrderStore
	notify Notifier
	now    Clock
}

// NewOrderService creates an OrderService. A nil notifier or clock gets a
// default.
func NewOrderService(st OrderStore, n Notifier, now Clock) *OrderService {
	if n == nil {
		n = nopNotifier{}
	}
	if now == nil {
		now = timeutil.Now
	}
	return &OrderService{store: st, notify: n, now: now}
}

// NextBillNo returns the next bill number for date: the largest numeric bill
// number already used on that date plus one, zero-padded to two digits.
// Non-numeric bill numbers are ignored. Two checkouts racing on the same
// location and date can both get the same number.
func NextBillNo(orders []store.Order, date string) string {
	highest := 0
	for _, o := range orders {
		if o.Date != date {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(o.BillNo))
		if err != nil || n < 0 {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%02d", highest+1)
}

// CreateOrder validates the checkout, numbers the bill and appends it to the
// location's tab.
//
// When the client sends a subtotal the stored total is recomputed as
// subtotal - freebiesAmount - discount + linemanMarkup; otherwise the client
// total is kept and the subtotal is the sum of the items.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*store.Order, error) {
	location, err := validateOrder(req)
	if err != nil {
		return nil, err
	}

	subtotal, totalQty := sumLines(req.Items)
	if req.Subtotal != nil {
		subtotal = *req.Subtotal
	}
	freebiesAmount, _ := sumLines(req.Freebies)

	total := *req.Total
	if req.Subtotal != nil {
		total = subtotal.Sub(freebiesAmount).Sub(req.Discount).Add(req.LinemanMarkup)
	}

	if err := s.store.EnsureOrderTab(ctx, location); err != nil {
		return nil, err
	}

	date, clock := timeutil.DateTime(s.now())
	existing, err := s.store.ListOrders(ctx, location, date)
	if err != nil {
		return nil, err
	}

	order := store.Order{
		Location:       location,
		Date:           date,
		Time:           clock,
		BillNo:         NextBillNo(existing, date),
		ItemsText:      store.FormatLines(toLines(req.Items)),
		FreebiesText:   store.FormatLines(toLines(req.Freebies)),
		TotalQty:       totalQty,
		Payment:        strings.TrimSpace(req.Payment),
		Total:          total,
		FreebiesAmount: freebiesAmount,
		Subtotal:       subtotal,
		LinemanMarkup:  req.LinemanMarkup,
		Discount:       req.Discount,
	}
	if err := s.store.AppendOrder(ctx, order); err != nil {
		return nil, err
	}

	s.notify.Publish(location, enum.EventOrderCreated, map[string]string{
		"billNo": order.BillNo,
		"date":   order.Date,
		"time":   order.Time,
		"total":  store.FormatMoney(order.Total),
	})
	return &order, nil
}

func validateOrder(req CreateOrderRequest) (string, error) {
	if strings.TrimSpace(req.Location) == "" {
		return "", ErrMissingLocation
	}
	location, err := store.NormalizeLocationID(req.Location)
	if err != nil {
		return "", err
	}
	if len(req.Items) == 0 {
		return "", ErrEmptyItems
	}
	if strings.TrimSpace(req.Payment) == "" {
		return "", ErrMissingPayment
	}
	if req.Total == nil {
		return "", ErrMissingTotal
	}
	for _, lines := range [][]LineItem{req.Items, req.Freebies} {
		for _, it := range lines {
			if strings.TrimSpace(it.Name) == "" {
				return "", ErrMissingName
			}
			if it.Qty <= 0 {
				return "", ErrInvalidQuantity
			}
			if it.Price.IsNegative() {
				return "", ErrNegativeAmount
			}
		}
	}
	if req.Discount.IsNegative() || req.LinemanMarkup.IsNegative() {
		return "", ErrNegativeAmount
	}
	if req.Subtotal != nil && req.Subtotal.IsNegative() {
		return "", ErrNegativeAmount
	}
	return location, nil
}

func sumLines(lines []LineItem) (decimal.Decimal, int) {
	sum := decimal.Zero
	qty := 0
	for _, it := range lines {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
		qty += it.Qty
	}
	return sum, qty
}

func toLines(items []LineItem) []store.Line {
	out := make([]store.Line, len(items))
	for i, it := range items {
		out[i] = store.Line{Name: it.Name, Qty: it.Qty}
	}
	return out
}
