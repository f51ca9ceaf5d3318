package handler_test

import (
	"net/http"
	"testing"

	"github.com/bakehouse-pos/api/internal/enum"
	"github.com/bakehouse-pos/api/internal/handler"
	"github.com/bakehouse-pos/api/internal/sheet"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/go-chi/chi/v5"
)

func setupProductRouter(st handler.ProductStore) *chi.Mux {
	h := handler.NewProductHandler(st, quietLogger())
	r := chi.NewRouter()
	r.Route("/api/products", func(r chi.Router) {
		h.RegisterRoutes(r)
		h.RegisterOwnerRoutes(r)
	})
	return r
}

func seedProducts(mem *sheet.Memory) {
	mem.Seed(enum.TabProducts, [][]string{
		store.ProductHeader,
		{"1", "Croissant", "45.00", "TRUE"},
		{"2", "", "30.00", "TRUE"},
		{"3", "Sourdough", "120", "FALSE"},
		{"4", "Bag", "0", "TRUE"},
		{"5", "Baguette", "60.5", ""},
	})
}

func TestListProducts_FilteredAndSortedByPrice(t *testing.T) {
	st, mem := newTestStore()
	seedProducts(mem)
	r := setupProductRouter(st)

	rr := doRequest(t, r, "GET", "/api/products", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	products := decodeBody(t, rr)["products"].([]interface{})
	if len(products) != 3 {
		t.Fatalf("expected 3 named priced products, got %d", len(products))
	}
	want := []struct {
		name, price string
		active      bool
	}{
		{"Sourdough", "120.00", false},
		{"Baguette", "60.50", true},
		{"Croissant", "45.00", true},
	}
	for i, w := range want {
		p := products[i].(map[string]interface{})
		if p["name"] != w.name || p["price"] != w.price || p["active"] != w.active {
			t.Errorf("product %d: got %v, want %+v", i, p, w)
		}
	}
}

func TestListProducts_ActiveOnly(t *testing.T) {
	st, mem := newTestStore()
	seedProducts(mem)
	r := setupProductRouter(st)

	rr := doRequest(t, r, "GET", "/api/products?activeOnly=true", nil, nil)
	products := decodeBody(t, rr)["products"].([]interface{})
	if len(products) != 2 {
		t.Fatalf("expected 2 active products, got %d", len(products))
	}
}

func TestListProducts_MissingTabIsEmpty(t *testing.T) {
	st, _ := newTestStore()
	r := setupProductRouter(st)

	rr := doRequest(t, r, "GET", "/api/products", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if products := decodeBody(t, rr)["products"].([]interface{}); len(products) != 0 {
		t.Errorf("expected no products, got %v", products)
	}
}

func TestSetProductActive(t *testing.T) {
	st, mem := newTestStore()
	seedProducts(mem)
	r := setupProductRouter(st)

	rr := doRequest(t, r, "PATCH", "/api/products/1", map[string]bool{"active": false}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := mem.Rows(enum.TabProducts)[1][3]; got != "FALSE" {
		t.Errorf("active cell: got %q, want FALSE", got)
	}
}

func TestSetProductActive_Errors(t *testing.T) {
	st, mem := newTestStore()
	seedProducts(mem)
	r := setupProductRouter(st)

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"unknown id", "/api/products/99", map[string]bool{"active": true}, http.StatusNotFound},
		{"bad id", "/api/products/abc", map[string]bool{"active": true}, http.StatusBadRequest},
		{"missing active", "/api/products/1", map[string]string{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, r, "PATCH", tt.path, tt.body, nil)
			if rr.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestCreateProduct(t *testing.T) {
	st, mem := newTestStore()
	seedProducts(mem)
	r := setupProductRouter(st)

	rr := doRequest(t, r, "POST", "/api/products", map[string]any{"name": "Danish", "price": "55"}, nil)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	p := decodeBody(t, rr)["product"].(map[string]interface{})
	if p["id"] != float64(6) || p["price"] != "55.00" {
		t.Errorf("unexpected product: %v", p)
	}

	rr = doRequest(t, r, "POST", "/api/products", map[string]any{"name": "Free", "price": 0}, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("zero price: expected 400, got %d", rr.Code)
	}
}
