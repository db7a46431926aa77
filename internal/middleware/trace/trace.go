// Package trace tags every request with an id, logs its completion and keeps
// request counters for /metrics.
package trace

import (
	"bufio"
	"context"
	"crypto/rand"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"carteira/internal/log"
)

type ContextKey string

const RequestIDKey ContextKey = "request_id"

// HeaderRequestID is echoed on every response.
const HeaderRequestID = "X-Request-ID"

type Middleware struct {
	extractIP func(*http.Request) string
	logger    *log.StructuredLogger

	total      atomic.Int64
	errors     atomic.Int64
	durationUs atomic.Int64
}

// Metrics is a snapshot of the request counters.
type Metrics struct {
	TotalRequests       int64
	ServerErrors        int64
	AverageResponseTime int64 // microseconds
}

func NewMiddleware(extractIP func(*http.Request) string, logger *log.Logger) *Middleware {
	return &Middleware{
		extractIP: extractIP,
		logger:    log.NewStructuredLogger(logger.WithComponent(log.ComponentTrace)),
	}
}

// Middleware assigns the request id, stores a request-scoped logger in the
// context and logs completion at a level matching the status class.
func (m *Middleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := ""
		if m.extractIP != nil {
			clientIP = m.extractIP(r)
		}

		requestID := GenerateRequestID()
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldRequestID, requestID))
		r = r.WithContext(ctx)
		w.Header().Set(HeaderRequestID, requestID)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		elapsed := time.Since(start)
		m.record(elapsed, rw.statusCode)
		m.logger.LogHTTPEnd(ctx, r, rw.statusCode, elapsed.Milliseconds(), clientIP)
	})
}

func (m *Middleware) record(elapsed time.Duration, status int) {
	n := m.total.Add(1)
	if status >= 500 {
		m.errors.Add(1)
	}
	// Running mean; concurrent updates may lose a sample, which is fine for a gauge.
	prev := m.durationUs.Load()
	m.durationUs.Store(prev + (elapsed.Microseconds()-prev)/n)
}

// GetMetrics returns current counters.
func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalRequests:       m.total.Load(),
		ServerErrors:        m.errors.Load(),
		AverageResponseTime: m.durationUs.Load(),
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Hijack is required by the websocket upgrade on /ws.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.wroteHeader = true
	return h.Hijack()
}

// GenerateRequestID returns a new ULID.
func GenerateRequestID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// GetRequestID extracts the request id from ctx.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
