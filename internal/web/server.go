package web

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/vbonduro/emulsion/internal/cache"
	"github.com/vbonduro/emulsion/internal/metrics"
	"github.com/vbonduro/emulsion/internal/service"
)

type Server struct {
	rolls     *service.RollService
	chemistry *service.ChemistryService
	stats     *service.StatsService
	cache     cache.Cache
	metrics   *metrics.Metrics
	origins   map[string]struct{}
	mux       *http.ServeMux
	logger    *slog.Logger

	// generation counts successful writes. A stats body computed across a
	// change of generation is served but not cached.
	generation atomic.Uint64
}

// NewServer wires the JSON API. A nil cache disables stats caching; nil
// metrics disables /metrics and request observation.
func NewServer(
	rolls *service.RollService,
	chemistry *service.ChemistryService,
	stats *service.StatsService,
	c cache.Cache,
	m *metrics.Metrics,
	corsOrigins []string,
	logger *slog.Logger,
) *Server {
	if c == nil {
		c = cache.Nop{}
	}
	s := &Server{
		rolls:     rolls,
		chemistry: chemistry,
		stats:     stats,
		cache:     c,
		metrics:   m,
		origins:   make(map[string]struct{}, len(corsOrigins)),
		mux:       http.NewServeMux(),
		logger:    logger,
	}
	for _, o := range corsOrigins {
		s.origins[o] = struct{}{}
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/rolls", s.handleListRolls)
	s.mux.HandleFunc("POST /api/rolls", s.handleCreateRoll)
	s.mux.HandleFunc("GET /api/rolls/{id}", s.handleGetRoll)
	s.mux.HandleFunc("PUT /api/rolls/{id}", s.handleUpdateRoll)
	s.mux.HandleFunc("PATCH /api/rolls/{id}", s.handleUpdateRoll)
	s.mux.HandleFunc("DELETE /api/rolls/{id}", s.handleDeleteRoll)
	s.mux.HandleFunc("PATCH /api/rolls/{id}/load", s.handleLoadRoll)
	s.mux.HandleFunc("PATCH /api/rolls/{id}/unload", s.handleUnloadRoll)
	s.mux.HandleFunc("PATCH /api/rolls/{id}/chemistry", s.handleAssignChemistry)
	s.mux.HandleFunc("PATCH /api/rolls/{id}/rating", s.handleRateRoll)

	s.mux.HandleFunc("GET /api/chemistry", s.handleListChemistry)
	s.mux.HandleFunc("POST /api/chemistry", s.handleCreateChemistry)
	s.mux.HandleFunc("GET /api/chemistry/{id}", s.handleGetChemistry)
	s.mux.HandleFunc("PUT /api/chemistry/{id}", s.handleUpdateChemistry)
	s.mux.HandleFunc("PATCH /api/chemistry/{id}", s.handleUpdateChemistry)
	s.mux.HandleFunc("DELETE /api/chemistry/{id}", s.handleDeleteChemistry)

	s.mux.HandleFunc("GET /api/stats", s.handleStats)

	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// cors answers preflight requests and tags responses for allowed origins.
// Requests from other origins are served without CORS headers.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		_, allowed := s.origins[origin]
		if origin != "" && allowed {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// observe records request metrics by route pattern. The mux fills
// r.Pattern in place, so it is read after the handler returns.
func (s *Server) observe(next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		_, route, found := strings.Cut(r.Pattern, " ")
		if !found {
			route = r.Pattern
		}
		s.metrics.ObserveRequest(r.Method, route, rec.status, time.Since(start))
	})
}

// invalidateOnWrite drops cached aggregates after every successful write to
// the API.
func (s *Server) invalidateOnWrite(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if !isWrite(r.Method) || !strings.HasPrefix(r.URL.Path, "/api/") || rec.status >= 400 {
			return
		}
		s.generation.Add(1)
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 2*time.Second)
		defer cancel()
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("failed to invalidate cache", "error", err)
		}
	})
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := s.invalidateOnWrite(s.mux)
	h = s.observe(h)
	h = s.cors(h)
	requestLogger(s.logger, securityHeaders(h)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}
