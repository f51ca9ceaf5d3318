package store

import (
	"context"
	"fmt"

	"github.com/bakehouse-pos/api/internal/enum"
	"github.com/bakehouse-pos/api/internal/sheet"
	"github.com/bakehouse-pos/api/internal/timeutil"
	"github.com/shopspring/decimal"
)

// ProductHeader is the header row of the Products tab.
var ProductHeader = []string{"id", "name", "price", "active"}

// Product is a catalog row. Row is its 1-based sheet row.
type Product struct {
	ID     int
	Name   string
	Price  decimal.Decimal
	Active bool
	Row    int
}

// ListProducts returns every product row as stored, unfiltered.
// A blank or non-numeric id falls back to the sheet row number.
// A blank active cell means active.
func (s *Store) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := s.readRows(ctx, enum.TabProducts, "A2:D")
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out := make([]Product, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		rn := rowNumber(i)
		id, ok := parseInt(sheet.Cell(row, 0))
		if !ok {
			id = rn
		}
		out = append(out, Product{
			ID:     id,
			Name:   sheet.Cell(row, 1),
			Price:  ParseMoney(sheet.Cell(row, 2)),
			Active: parseBool(sheet.Cell(row, 3), true),
			Row:    rn,
		})
	}
	return out, nil
}

// ProductNames maps product id to name.
func (s *Store) ProductNames(ctx context.Context) (map[int]string, error) {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}
	return names, nil
}

// SetProductActive overwrites the active cell of one product.
func (s *Store) SetProductActive(ctx context.Context, id int, active bool) error {
	products, err := s.ListProducts(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		if p.ID != id {
			continue
		}
		rng := timeutil.A1(enum.TabProducts, fmt.Sprintf("D%d", p.Row))
		if err := s.sheets.Update(ctx, rng, [][]any{{active}}); err != nil {
			return fmt.Errorf("set product %d active: %w", id, err)
		}
		return nil
	}
	return ErrProductNotFound
}

// CreateProduct appends a product with id max+1.
func (s *Store) CreateProduct(ctx context.Context, name string, price decimal.Decimal) (Product, error) {
	if err := s.sheets.EnsureTab(ctx, enum.TabProducts, ProductHeader); err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	products, err := s.ListProducts(ctx)
	if err != nil {
		return Product{}, err
	}
	maxID, lastRow := 0, 1
	for _, p := range products {
		if p.ID > maxID {
			maxID = p.ID
		}
		if p.Row > lastRow {
			lastRow = p.Row
		}
	}
	p := Product{ID: maxID + 1, Name: name, Price: price, Active: true, Row: lastRow + 1}
	row := []any{fmt.Sprint(p.ID), p.Name, FormatMoney(p.Price), true}
	if err := s.sheets.Append(ctx, timeutil.A1(enum.TabProducts, "A:D"), [][]any{row}); err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}
