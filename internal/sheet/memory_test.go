package sheet

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		in   string
		want area
	}{
		{"STOCKS", area{"STOCKS", 1, 1, unbounded, unbounded}},
		{"'STOCKS'!A2:D", area{"STOCKS", 2, 1, unbounded, 4}},
		{"'Baker''s'!A:L", area{"Baker's", 1, 1, unbounded, 12}},
		{"Products!D5", area{"Products", 5, 4, 5, 4}},
		{"'X'!1:1", area{"X", 1, 1, 1, unbounded}},
		{"'X'!B3:C9", area{"X", 3, 2, 9, 3}},
	}
	for _, tt := range tests {
		got, err := parseRange(tt.in)
		if err != nil {
			t.Fatalf("parseRange(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("parseRange(%q): got %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseRange_Invalid(t *testing.T) {
	for _, in := range []string{"", "'unterminated", "'X'A1", "'X'!A1:B$2"} {
		if _, err := parseRange(in); err == nil {
			t.Errorf("parseRange(%q): expected error", in)
		}
	}
}

func TestMemory_EnsureTabIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	header := []string{"id", "label"}

	for i := 0; i < 2; i++ {
		if err := m.EnsureTab(ctx, "Locations", header); err != nil {
			t.Fatalf("ensure tab: %v", err)
		}
	}

	rows := m.Rows("Locations")
	if len(rows) != 1 || !reflect.DeepEqual(rows[0], header) {
		t.Errorf("expected a single header row, got %v", rows)
	}
	if got := m.Tabs(); len(got) != 1 {
		t.Errorf("expected one tab, got %v", got)
	}
}

func TestMemory_EnsureTabFillsMissingHeader(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Seed("Products", nil)

	if err := m.EnsureTab(ctx, "Products", []string{"id", "name"}); err != nil {
		t.Fatalf("ensure tab: %v", err)
	}
	if rows := m.Rows("Products"); len(rows) != 1 || rows[0][1] != "name" {
		t.Errorf("header not written: %v", rows)
	}
}

func TestMemory_AppendAndGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	if err := m.EnsureTab(ctx, "T", []string{"a", "b", "c"}); err != nil {
		t.Fatal(err)
	}

	if err := m.Append(ctx, "'T'!A:C", [][]any{{"1", 2, true}, {"x", "", ""}}); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := m.Get(ctx, "'T'!A2:C")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := [][]string{{"1", "2", "TRUE"}, {"x"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMemory_UpdateAndBatchUpdate(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.Seed("S", [][]string{{"loc", "pid", "qty"}, {"A", "1", "5"}, {"A", "2", "7"}})

	if err := m.Update(ctx, "'S'!C2", [][]any{{"9"}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	err := m.BatchUpdate(ctx, []ValueRange{
		{Range: "'S'!C3", Values: [][]any{{"0"}}},
		{Range: "'S'!A5:C5", Values: [][]any{{"B", "3", "1"}}},
	})
	if err != nil {
		t.Fatalf("batch update: %v", err)
	}

	got, _ := m.Get(ctx, "'S'!A2:C")
	want := [][]string{{"A", "1", "9"}, {"A", "2", "0"}, {}, {"B", "3", "1"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMemory_MissingTab(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Get(ctx, "'nope'!A1"); !errors.Is(err, ErrTabNotFound) {
		t.Errorf("get: expected ErrTabNotFound, got %v", err)
	}
	if err := m.Append(ctx, "'nope'!A:B", [][]any{{"x"}}); !errors.Is(err, ErrTabNotFound) {
		t.Errorf("append: expected ErrTabNotFound, got %v", err)
	}
}

func TestIsAlreadyExists(t *testing.T) {
	if !isAlreadyExists(errors.New(`googleapi: Error 400: Invalid requests[0].addSheet: A sheet with the name "X" already exists.`)) {
		t.Error("expected match")
	}
	if isAlreadyExists(errors.New("quota exceeded")) || isAlreadyExists(nil) {
		t.Error("unexpected match")
	}
}
