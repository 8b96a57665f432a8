// Package http serves the JSON API the dashboard front end consumes.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Juanpi2024/yeca-app-agendas/internal/cache"
	"github.com/Juanpi2024/yeca-app-agendas/internal/core"
	"github.com/Juanpi2024/yeca-app-agendas/internal/insights"
	applog "github.com/Juanpi2024/yeca-app-agendas/internal/log"
	"github.com/Juanpi2024/yeca-app-agendas/internal/store"
)

type Server struct {
	http.Server

	store       *store.Store
	ai          *insights.Service
	rateLimiter *rateLimiter
	metrics     *metrics

	// AI responses are cached per state fingerprint to keep repeated
	// dashboard refreshes from burning tokens.
	insightCache *cache.LRU[string]
	reportCache  *cache.LRU[string]

	reportRecipient string
	reportSubject   string

	// Injected for urgency math in tests.
	now func() time.Time

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// Options tune the server; zero values select defaults.
type Options struct {
	Addr             string
	ReportRecipient  string
	ReportSubject    string
	InsightCacheSize int
	InsightCacheTTL  time.Duration
	Logger           *applog.Logger
	Now              func() time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(st *store.Store, ai *insights.Service, opts Options) *Server {
	if opts.InsightCacheSize <= 0 {
		opts.InsightCacheSize = 32
	}
	if opts.InsightCacheTTL <= 0 {
		opts.InsightCacheTTL = 15 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			Handler:           applog.Middleware(logger.WithComponent("http"))(mux),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		store:            st,
		ai:               ai,
		rateLimiter:      newRateLimiter(),
		metrics:          newMetrics(),
		insightCache:     cache.New[string](opts.InsightCacheSize, opts.InsightCacheTTL),
		reportCache:      cache.New[string](opts.InsightCacheSize, opts.InsightCacheTTL),
		reportRecipient:  opts.ReportRecipient,
		reportSubject:    opts.ReportSubject,
		now:              opts.Now,
		stopCacheCleanup: make(chan struct{}),
	}

	go s.startCacheCleanup()

	s.route(mux, "GET /api/state", s.handleState)
	s.route(mux, "GET /api/transactions", s.handleListTransactions)
	s.route(mux, "POST /api/transactions", s.handleCreateTransaction)
	s.route(mux, "DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	s.route(mux, "GET /api/orders", s.handleListOrders)
	s.route(mux, "POST /api/orders", s.handleCreateOrder)
	s.route(mux, "PATCH /api/orders/{id}/status", s.handleUpdateOrderStatus)
	s.route(mux, "DELETE /api/orders/{id}", s.handleDeleteOrder)
	s.route(mux, "GET /api/summary", s.handleSummary)
	s.route(mux, "GET /api/insights", s.handleInsights)
	s.route(mux, "GET /api/report", s.handleReport)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	return s
}

// MirrorFailureHook exposes the mirror-failure counter for store wiring.
func (s *Server) MirrorFailureHook() func(op string, err error) {
	return s.metrics.MirrorFailure
}

// route registers pattern with the shared observability wrapper; the
// pattern doubles as the metrics route label.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, s.observe(pattern, h))
}

// observe adds rate limiting on mutating methods, response headers and
// per-route metrics and access logging.
func (s *Server) observe(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := applog.FromContext(r.Context())

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			s.metrics.observeRequest(r.Method, route, http.StatusTooManyRequests, time.Since(start))
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		elapsed := time.Since(start)
		s.metrics.observeRequest(r.Method, route, rw.statusCode, elapsed)
		logger.InfoContext(r.Context(), "Request completed",
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", elapsed.Milliseconds(),
			"client_ip", clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.insightCache.CleanExpired()
			s.reportCache.CleanExpired()
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the cleanup goroutines, waits for in-flight mirror
// writes and then shuts down the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		s.store.Wait()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once the startup load has settled, so the
// first dashboard paint does not race an empty state.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.store.Loading() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("loading"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}
