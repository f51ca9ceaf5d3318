package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bakehouse-pos/api/internal/auth"
	"github.com/bakehouse-pos/api/internal/middleware"
	"github.com/bakehouse-pos/api/internal/sheet"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/bakehouse-pos/api/internal/timeutil"
	"github.com/sirupsen/logrus"
)

var fixedNow = time.Date(2026, 3, 14, 9, 5, 7, 0, timeutil.Bangkok)

func fixedClock() time.Time { return fixedNow }

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestStore() (*store.Store, *sheet.Memory) {
	mem := sheet.NewMemory()
	return store.New(mem), mem
}

// failingClient fails every call, standing in for an unreachable backend.
type failingClient struct{ sheet.Client }

var errBackend = errors.New("sheets: 503 backend unavailable")

func (failingClient) EnsureTab(context.Context, string, []string) error { return errBackend }
func (failingClient) Get(context.Context, string) ([][]string, error)   { return nil, errBackend }
func (failingClient) Update(context.Context, string, [][]any) error     { return errBackend }
func (failingClient) Append(context.Context, string, [][]any) error     { return errBackend }
func (failingClient) BatchUpdate(context.Context, []sheet.ValueRange) error {
	return errBackend
}

func failingStore() *store.Store { return store.New(failingClient{}) }

// doRequest sends body (marshalled unless it is a string) and returns the
// recorder. Claims, when given, are attached as if Authenticate had run.
func doRequest(t *testing.T, h http.Handler, method, path string, body any, claims *auth.Claims) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if claims != nil {
		req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return resp
}

func staffAt(location string) *auth.Claims {
	return &auth.Claims{Username: "nok", Role: "STAFF", Location: location}
}

func owner() *auth.Claims {
	return &auth.Claims{Username: "boss", Role: "OWNER"}
}
