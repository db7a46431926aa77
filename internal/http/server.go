package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"carteira/internal/api"
	"carteira/internal/auth"
	"carteira/internal/backend"
	"carteira/internal/log"
	"carteira/internal/middleware/ratelimit"
	"carteira/internal/middleware/security"
	"carteira/internal/middleware/trace"
	"carteira/internal/realtime"
	"carteira/internal/services"
	appweb "carteira/web"
)

// Config holds the listener and request-filtering settings.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	TrustedProxies     []string
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	API        *api.Client
	Guard      *auth.Guard
	Ledger     *services.Ledger
	Accounts   *services.Accounts
	Categories *services.Categories
	Cards      *services.Cards
	Dashboard  *services.Dashboard
	Profile    *services.Profile
	Hub        *realtime.Hub
	Checks     map[string]backend.Checker
}

type Server struct {
	http.Server
	templates *template.Template
	deps      Deps
	logger    *log.Logger
	slog      *log.StructuredLogger

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	appMetrics   appMetrics
	now          func() time.Time
	shutdownOnce sync.Once
}

type appMetrics struct {
	uptime        time.Time
	mutations     atomic.Int64
	backendErrors atomic.Int64
	invalidInput  atomic.Int64
}

// NewServer parses the embedded templates, mounts every route and returns a
// ready-to-run server.
func NewServer(cfg Config, deps Deps, logger *log.Logger) (*Server, error) {
	detector, err := security.NewDetector(cfg.TrustedProxies...)
	if err != nil {
		return nil, err
	}
	httpLogger := logger.WithComponent(log.ComponentHTTP)

	t, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		templates:        t,
		deps:             deps,
		logger:           httpLogger,
		slog:             log.NewStructuredLogger(httpLogger),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		securityDetector: detector,
		traceMiddleware:  trace.NewMiddleware(detector.ExtractClientIP, logger),
		now:              time.Now,
	}
	s.appMetrics.uptime = time.Now()

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /signup", s.handleSignupPage)
	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("GET /forgot-password", s.handleForgotPage)
	mux.HandleFunc("POST /forgot-password", s.handleForgot)
	mux.HandleFunc("GET /reset-password", s.handleResetPage)
	mux.HandleFunc("POST /reset-password", s.handleReset)

	private := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.deps.Guard.Require(h))
	}

	private("POST /logout", s.handleLogout)

	private("GET /{$}", s.handleDashboard)
	private("GET /ui/totals", s.handleTotals)
	private("GET /ui/recent", s.handleRecent)
	private("GET /api/charts/categories", s.handleChartCategories)
	private("GET /api/charts/series", s.handleChartSeries)

	private("GET /accounts", s.handleAccounts)
	private("POST /accounts", s.handleCreateAccount)
	private("POST /accounts/{uuid}", s.handleUpdateAccount)
	private("POST /accounts/{uuid}/activate", s.handleAccountStatus(true))
	private("POST /accounts/{uuid}/deactivate", s.handleAccountStatus(false))
	private("GET /accounts/{uuid}/statement", s.handleStatement)
	private("POST /accounts/{uuid}/transfer", s.handleTransfer)

	for _, k := range []ledgerKind{despesas, receitas} {
		private("GET /"+k.path, s.handleLedgerList(k))
		private("GET /"+k.path+"/search", s.handleLedgerSearch(k))
		private("POST /"+k.path, s.handleLedgerCreate(k))
		private("POST /"+k.path+"/{uuid}", s.handleLedgerUpdate(k))
		private("DELETE /"+k.path+"/{uuid}", s.handleLedgerDelete(k))
	}

	private("GET /categories", s.handleCategories)
	private("POST /categories", s.handleCreateCategory)
	private("POST /categories/{uuid}", s.handleUpdateCategory)

	private("GET /cards", s.handleCards)
	private("POST /cards", s.handleCreateCard)
	private("POST /cards/{uuid}", s.handleUpdateCard)
	private("DELETE /cards/{uuid}", s.handleDeleteCard)
	private("POST /cards/{uuid}/activate", s.handleCardStatus(true))
	private("POST /cards/{uuid}/deactivate", s.handleCardStatus(false))
	private("GET /cards/{uuid}/bills", s.handleBills)
	private("GET /bills/{uuid}", s.handleBill)
	private("POST /bills/{uuid}/pay", s.handlePayBill)
	private("POST /bills/{uuid}/items", s.handleAddBillItem)

	private("GET /missions", s.handleMissions)
	private("GET /achievements", s.handleAchievements)
	private("GET /profile", s.handleProfile)
	private("POST /profile", s.handleUpdateProfile)

	if s.deps.Hub != nil {
		mux.Handle("GET /ws", s.deps.Guard.Require(s.deps.Hub))
	}
}

// middleware wraps the mux, outermost first: logger in context, tracing,
// probe blocking, security headers, then rate limiting of writes.
func (s *Server) middleware(next http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "Muitas requisições. Aguarde um minuto e tente de novo.").Write(w)
	})(next)

	writesOnly := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})

	h := security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(writesOnly)
	h = s.securityDetector.Middleware(h)
	h = s.traceMiddleware.Middleware(h)
	return log.Middleware(s.logger)(h)
}

// Shutdown stops background work and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		if s.deps.Hub != nil {
			if err := s.deps.Hub.Close(); err != nil {
				s.logger.WarnContext(ctx, "Closing websocket hub failed", log.FieldError, err.Error())
			}
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
