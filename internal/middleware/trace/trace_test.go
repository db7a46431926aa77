package trace

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"carteira/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	m := NewMiddleware(func(*http.Request) string { return "127.0.0.1" }, log.New(cfg))

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusInternalServerError)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(seen) != 26 {
		t.Fatalf("request id %q is not a ULID", seen)
	}
	if rec.Header().Get(HeaderRequestID) != seen {
		t.Errorf("header %q differs from context id %q", rec.Header().Get(HeaderRequestID), seen)
	}

	got := m.GetMetrics()
	if got.TotalRequests != 1 || got.ServerErrors != 1 {
		t.Errorf("metrics = %+v, want one request counted as server error", got)
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	if id := GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()); id != "" {
		t.Errorf("got %q", id)
	}
}
