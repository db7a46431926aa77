package http

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	})
}

// handleReady runs every registered dependency check. The REST backend is
// not probed: it has no unauthenticated health endpoint.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]string{"templates": "ok"}

	names := make([]string, 0, len(s.deps.Checks))
	for name := range s.deps.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.deps.Checks[name](ctx); err != nil {
			checks[name] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	sockets := 0
	if s.deps.Hub != nil {
		sockets = s.deps.Hub.Count()
	}

	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.ServerErrors)
	metric("http_response_time_avg_microseconds", "gauge", "Running mean response time", traceMetrics.AverageResponseTime)
	metric("ledger_mutations_total", "counter", "Successful create, update, delete and payment requests", s.appMetrics.mutations.Load())
	metric("backend_errors_total", "counter", "Failed calls to the REST backend", s.appMetrics.backendErrors.Load())
	metric("invalid_input_total", "counter", "Requests rejected by form validation", s.appMetrics.invalidInput.Load())
	metric("rate_limit_rejected_total", "counter", "Requests rejected by the rate limiter", rateLimitMetrics.Rejected)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Requests blocked as probes", s.securityDetector.SuspiciousRequests())
	metric("websocket_connections", "gauge", "Open websocket connections", sockets)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.appMetrics.uptime).Seconds()))
}
