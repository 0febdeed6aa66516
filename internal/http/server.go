package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds the listener and middleware settings.
type Config struct {
	Addr               string
	RateLimitPerMinute int
	TrustedProxies     []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
}

type Server struct {
	http.Server
	finance  *services.Finance
	pinger   Pinger
	metrics  *metrics.Metrics
	limiter  *ratelimit.Limiter
	detector *security.Detector
	logger   *log.Logger
	mux      *http.ServeMux

	started      time.Time
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
// pinger and m may be nil.
func NewServer(cfg Config, finance *services.Finance, pinger Pinger, m *metrics.Metrics, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 60 * time.Second
	}

	s := &Server{
		finance: finance,
		pinger:  pinger,
		metrics: m,
		logger:  logger.WithComponent(log.ComponentHTTP),
		mux:     http.NewServeMux(),
		started: time.Now(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
	}

	s.detector = security.NewDetector(func(*http.Request) {
		if s.metrics != nil {
			s.metrics.Suspicious()
		}
	})
	for _, cidr := range cfg.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			s.logger.Warn("Ignoring trusted proxy", "cidr", cidr, "error", err)
		}
	}

	s.routes()

	var recorder trace.Recorder
	if m != nil {
		recorder = m
	}
	tracer := trace.NewMiddleware(s.detector.ExtractClientIP, recorder, logger)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.Mutating, s.onRateLimited)

	var h http.Handler = s.mux
	h = limit(h)
	h = s.detector.Middleware(h)
	h = headers.Middleware(h)
	h = tracer.Middleware(h)
	h = log.Middleware(logger)(h)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}
	return s
}

// route registers h under pattern and tags requests with it for metrics.
func (s *Server) route(pattern string, h http.HandlerFunc) {
	s.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		trace.SetRoute(r.Context(), pattern)
		h(w, r)
	})
}

func (s *Server) routes() {
	s.route("GET /healthz", s.handleHealth)
	s.route("GET /readyz", s.handleReady)
	if s.metrics != nil {
		s.route("GET /metrics", s.metrics.Handler().ServeHTTP)
	}

	s.route("GET /api/contexts", s.handleListContexts)
	s.route("POST /api/contexts", s.handleCreateContext)
	s.route("PUT /api/contexts/{id}", s.handleUpdateContext)
	s.route("DELETE /api/contexts/{id}", s.handleDeleteContext)

	s.route("GET /api/transactions", s.handleListTransactions)
	s.route("POST /api/transactions", s.handleCreateTransaction)
	s.route("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	s.route("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	s.route("GET /api/budgets", s.handleListBudgets)
	s.route("POST /api/budgets", s.handleCreateBudget)
	s.route("PUT /api/budgets/{id}", s.handleUpdateBudget)
	s.route("DELETE /api/budgets/{id}", s.handleDeleteBudget)

	s.route("GET /api/savings", s.handleListSavings)
	s.route("POST /api/savings", s.handleCreateSavings)
	s.route("PUT /api/savings/{id}", s.handleUpdateSavings)
	s.route("DELETE /api/savings/{id}", s.handleDeleteSavings)

	s.route("GET /api/subscriptions", s.handleListSubscriptions)
	s.route("POST /api/subscriptions", s.handleCreateSubscription)
	s.route("PUT /api/subscriptions/{id}", s.handleUpdateSubscription)
	s.route("DELETE /api/subscriptions/{id}", s.handleDeleteSubscription)

	s.route("GET /api/investments", s.handleListInvestments)
	s.route("POST /api/investments", s.handleCreateInvestment)
	s.route("PUT /api/investments/{id}", s.handleUpdateInvestment)
	s.route("DELETE /api/investments/{id}", s.handleDeleteInvestment)

	s.route("GET /api/dashboard", s.handleDashboard)

	s.route("GET /api/export", s.handleExport)
	s.route("GET /api/export/xlsx", s.handleExportXLSX)
	s.route("POST /api/export/import", s.handleImport)
	s.route("GET /api/export/backup", s.handleBackup)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	if s.metrics != nil {
		s.metrics.RateLimited()
	}
	TooManyRequestsError().Write(w)
}

// Shutdown stops background work and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// writeError maps a service error onto the response. notFound is the
// message for core.ErrNotFound and failure the generic 500 message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op, notFound, failure string) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		ValidationErrorResponse(ve).Write(w)
	case errors.Is(err, core.ErrConflict):
		BadRequestError(err.Error()).Write(w)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError(notFound).Write(w)
	default:
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), failure, err, op, log.NewFields().WithComponent(log.ComponentHTTP))
		InternalServerError(failure).Write(w)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().JSON(map[string]any{
		"status": "ok",
		"uptime": time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err.Error())
			ErrorResponse(http.StatusServiceUnavailable, "database unavailable").Write(w)
			return
		}
	}
	NewJSONResponse().JSON(map[string]string{"status": "ready"}).Write(w)
}
