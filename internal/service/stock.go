package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bakehouse-pos/api/internal/enum"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/bakehouse-pos/api/internal/timeutil"
)

// Errors returned by the stock service.
var (
	ErrNoMovements      = errors.New("movements are required")
	ErrNoUpdates        = errors.New("updates are required")
	ErrInvalidProductID = errors.New("productId must be > 0")
	ErrZeroDelta        = errors.New("delta must not be 0")
	ErrInvalidSnapshot  = errors.New("snapshot kind must be opening or closing")
)

// StockStore defines the store methods needed for stock keeping.
// Satisfied by *store.Store.
type StockStore interface {
	EnsureStockTab(ctx context.Context) error
	ListStockLevels(ctx context.Context, location string) ([]store.StockLevel, error)
	UpdateStockLevels(ctx context.Context, levels []store.StockLevel) error
	AppendStockLevels(ctx context.Context, levels []store.StockLevel) error
	AppendMovements(ctx context.Context, movements []store.Movement) error
	ProductNames(ctx context.Context) (map[int]string, error)
	ListDailySnapshots(ctx context.Context, date, location string) ([]store.DailySnapshot, error)
	UpsertDailySnapshots(ctx context.Context, snaps []store.DailySnapshot) error
}

// MovementInput is one requested stock change.
type MovementInput struct {
	ProductID int
	Delta     int
	Reason    string
	BillNo    string
}

// AdjustRequest is a batch of changes at one location.
type AdjustRequest struct {
	Location  string
	User      string
	Movements []MovementInput
}

// QtyUpdate sets an absolute quantity.
type QtyUpdate struct {
	ProductID int
	Qty       int
}

// BulkResult reports how rows were written.
type BulkResult struct {
	Updated  int
	Appended int
}

// StockService keeps per-location stock levels and the movement ledger.
type StockService struct {
	store  StockStore
	notify Notifier
	now    Clock
}

// NewStockService creates a StockService.
func NewStockService(st StockStore, n Notifier, now Clock) *StockService {
	if n == nil {
		n = nopNotifier{}
	}
	if now == nil {
		now = timeutil.Now
	}
	return &StockService{store: st, notify: n, now: now}
}

// levelSet tracks the levels of one location during a batch, split into rows
// already in the sheet and rows still to append.
type levelSet struct {
	byProduct map[int]*store.StockLevel
	order     []int
	touched   map[int]bool
}

func newLevelSet(levels []store.StockLevel) *levelSet {
	ls := &levelSet{byProduct: make(map[int]*store.StockLevel), touched: make(map[int]bool)}
	for i := range levels {
		l := levels[i]
		ls.byProduct[l.ProductID] = &l
	}
	return ls
}

func (ls *levelSet) get(location string, pid int) *store.StockLevel {
	l, ok := ls.byProduct[pid]
	if !ok {
		l = &store.StockLevel{Location: location, ProductID: pid}
		ls.byProduct[pid] = l
	}
	if !ls.touched[pid] {
		ls.touched[pid] = true
		ls.order = append(ls.order, pid)
	}
	return l
}

// split returns touched levels with a sheet row and those without, in
// first-touch order.
func (ls *levelSet) split() (existing, fresh []store.StockLevel) {
	for _, pid := range ls.order {
		l := *ls.byProduct[pid]
		if l.Row >= 2 {
			existing = append(existing, l)
		} else {
			fresh = append(fresh, l)
		}
	}
	return existing, fresh
}

func (ls *levelSet) touchedLevels() []store.StockLevel {
	out := make([]store.StockLevel, 0, len(ls.order))
	for _, pid := range ls.order {
		out = append(out, *ls.byProduct[pid])
	}
	return out
}

// Adjust applies signed deltas. Each resulting quantity is floored at zero.
// Existing rows are overwritten in one batch call and unseen keys appended in
// one append call. One ledger row per movement is then appended whether or
// not the stock writes succeeded; there is no atomicity between the two.
func (s *StockService) Adjust(ctx context.Context, req AdjustRequest) ([]store.StockLevel, error) {
	location, err := store.NormalizeLocationID(req.Location)
	if err != nil {
		return nil, err
	}
	if len(req.Movements) == 0 {
		return nil, ErrNoMovements
	}
	for _, m := range req.Movements {
		if m.ProductID <= 0 {
			return nil, ErrInvalidProductID
		}
		if m.Delta == 0 {
			return nil, ErrZeroDelta
		}
	}

	if err := s.store.EnsureStockTab(ctx); err != nil {
		return nil, err
	}
	levels, err := s.store.ListStockLevels(ctx, location)
	if err != nil {
		return nil, err
	}
	names, err := s.store.ProductNames(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	date, clock := timeutil.DateTime(now)
	stamp := date + " " + clock

	ls := newLevelSet(levels)
	ledger := make([]store.Movement, 0, len(req.Movements))
	for _, m := range req.Movements {
		l := ls.get(location, m.ProductID)
		l.Qty = clampQty(l.Qty + m.Delta)
		l.UpdatedAt = stamp

		ledger = append(ledger, store.Movement{
			Date:        date,
			Time:        clock,
			Location:    location,
			ProductID:   m.ProductID,
			ProductName: names[m.ProductID],
			Delta:       m.Delta,
			Reason:      movementReason(m.Reason, m.BillNo),
			User:        strings.TrimSpace(req.User),
		})
	}

	existing, fresh := ls.split()
	stockErr := s.store.UpdateStockLevels(ctx, existing)
	if stockErr == nil {
		stockErr = s.store.AppendStockLevels(ctx, fresh)
	}
	ledgerErr := s.store.AppendMovements(ctx, ledger)
	if err := errors.Join(stockErr, ledgerErr); err != nil {
		return nil, err
	}

	result := ls.touchedLevels()
	s.notify.Publish(location, enum.EventStockAdjusted, stockPayload(result))
	return result, nil
}

// BulkSet overwrites absolute quantities, clamped at zero. Existing keys are
// written in one batch call, new keys in one append call. If a product
// appears twice the last entry wins. No ledger rows are written.
func (s *StockService) BulkSet(ctx context.Context, location string, updates []QtyUpdate) (BulkResult, error) {
	location, err := store.NormalizeLocationID(location)
	if err != nil {
		return BulkResult{}, err
	}
	if len(updates) == 0 {
		return BulkResult{}, ErrNoUpdates
	}
	for _, u := range updates {
		if u.ProductID <= 0 {
			return BulkResult{}, ErrInvalidProductID
		}
	}

	if err := s.store.EnsureStockTab(ctx); err != nil {
		return BulkResult{}, err
	}
	levels, err := s.store.ListStockLevels(ctx, location)
	if err != nil {
		return BulkResult{}, err
	}

	date, clock := timeutil.DateTime(s.now())
	stamp := date + " " + clock

	ls := newLevelSet(levels)
	for _, u := range updates {
		l := ls.get(location, u.ProductID)
		l.Qty = clampQty(u.Qty)
		l.UpdatedAt = stamp
	}

	existing, fresh := ls.split()
	if err := s.store.UpdateStockLevels(ctx, existing); err != nil {
		return BulkResult{}, err
	}
	if err := s.store.AppendStockLevels(ctx, fresh); err != nil {
		return BulkResult{}, err
	}

	s.notify.Publish(location, enum.EventStockAdjusted, stockPayload(ls.touchedLevels()))
	return BulkResult{Updated: len(existing), Appended: len(fresh)}, nil
}

// Snapshot records the current level of every product at the location as the
// opening or closing quantity for date, upserting the (date, location,
// product) rows. An empty date means today.
func (s *StockService) Snapshot(ctx context.Context, location, date, kind string) ([]store.DailySnapshot, error) {
	location, err := store.NormalizeLocationID(location)
	if err != nil {
		return nil, err
	}
	if kind != enum.SnapshotOpening && kind != enum.SnapshotClosing {
		return nil, ErrInvalidSnapshot
	}

	now := s.now()
	if date == "" {
		date = timeutil.DateString(now)
	} else if _, err := timeutil.ParseDate(date); err != nil {
		return nil, err
	}

	levels, err := s.store.ListStockLevels(ctx, location)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.ListDailySnapshots(ctx, date, location)
	if err != nil {
		return nil, err
	}
	byProduct := make(map[int]store.DailySnapshot, len(existing))
	for _, d := range existing {
		byProduct[d.ProductID] = d
	}

	d, c := timeutil.DateTime(now)
	stamp := d + " " + c

	snaps := make([]store.DailySnapshot, 0, len(levels))
	for _, l := range levels {
		snap, ok := byProduct[l.ProductID]
		if !ok {
			snap = store.DailySnapshot{Date: date, Location: location, ProductID: l.ProductID}
		}
		qty := l.Qty
		if kind == enum.SnapshotOpening {
			snap.OpeningQty = &qty
		} else {
			snap.ClosingQty = &qty
		}
		snap.SnapshotAt = stamp
		snaps = append(snaps, snap)
	}

	if len(snaps) == 0 {
		return snaps, nil
	}
	if err := s.store.UpsertDailySnapshots(ctx, snaps); err != nil {
		return nil, err
	}
	return snaps, nil
}

func clampQty(q int) int {
	if q < 0 {
		return 0
	}
	return q
}

func movementReason(reason, billNo string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = enum.ReasonAdjust
	}
	if b := strings.TrimSpace(billNo); b != "" {
		return fmt.Sprintf("%s #%s", reason, b)
	}
	return reason
}

func stockPayload(levels []store.StockLevel) []map[string]int {
	out := make([]map[string]int, len(levels))
	for i, l := range levels {
		out[i] = map[string]int{"productId": l.ProductID, "qty": l.Qty}
	}
	return out
}
