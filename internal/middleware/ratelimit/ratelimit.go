// Package ratelimit applies a per-client fixed-window request limit.
package ratelimit

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"carteira/internal/log"
)

const window = time.Minute

type Limiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
	now          func() time.Time

	requestsPerMinute int
	cleanupInterval   time.Duration
	rejected          atomic.Int64
}

type clientInfo struct {
	windowStart time.Time
	lastSeen    time.Time
	requests    int
}

type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewLimiter starts the background sweep; call Stop to end it.
func NewLimiter(config Config) *Limiter {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = DefaultConfig().RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultConfig().CleanupInterval
	}

	rl := &Limiter{
		clients:           make(map[string]*clientInfo),
		stopCleanup:       make(chan struct{}),
		now:               time.Now,
		requestsPerMinute: config.RequestsPerMinute,
		cleanupInterval:   config.CleanupInterval,
	}
	go rl.startCleanup()
	return rl
}

// Allow counts a request from clientIP and reports whether it is within the
// limit for the current window.
func (rl *Limiter) Allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	client, ok := rl.clients[clientIP]
	if !ok || now.Sub(client.windowStart) >= window {
		rl.clients[clientIP] = &clientInfo{windowStart: now, lastSeen: now, requests: 1}
		return true
	}

	client.requests++
	client.lastSeen = now
	if client.requests > rl.requestsPerMinute {
		rl.rejected.Add(1)
		return false
	}
	return true
}

func (rl *Limiter) startCleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries forgets clients idle for more than ten minutes.
func (rl *Limiter) cleanupStaleEntries() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-10 * time.Minute)
	removed := 0
	for ip, client := range rl.clients {
		if client.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
			removed++
		}
	}
	return removed
}

func (rl *Limiter) Stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

type Metrics struct {
	Rejected    int64
	ClientCount int64
}

func (rl *Limiter) GetMetrics() Metrics {
	rl.mu.Lock()
	clients := int64(len(rl.clients))
	rl.mu.Unlock()

	return Metrics{
		Rejected:    rl.rejected.Load(),
		ClientCount: clients,
	}
}

// Middleware rejects requests over the limit with 429. onLimit, when set,
// writes the rejection instead of the plain-text default.
func (rl *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := extractIP(r)
			if rl.Allow(clientIP) {
				next.ServeHTTP(w, r)
				return
			}

			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldComponent, log.ComponentRateLimit,
				log.FieldClientIP, clientIP,
				log.FieldPath, r.URL.Path)

			w.Header().Set("Retry-After", "60")
			if onLimit != nil {
				onLimit(w, r)
				return
			}
			http.Error(w, "Muitas requisições. Tente novamente em instantes.", http.StatusTooManyRequests)
		})
	}
}
