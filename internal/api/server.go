// Package api provides the HTTP API server and handlers for the review catalog.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shelfnotes/shelfnotes-server/internal/metrics"
	"github.com/shelfnotes/shelfnotes-server/internal/ratelimit"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexStats reports the size of the catalog search index.
type IndexStats interface {
	DocumentCount() (uint64, error)
}

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins []string

	// AuthRequestsPerMinute and AuthBurst bound /auth/* traffic per client IP.
	AuthRequestsPerMinute int
	AuthBurst             int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services        *Services
	db              Pinger
	index           IndexStats
	metrics         *metrics.Metrics
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
// index and m may be nil.
func NewServer(services *Services, db Pinger, index IndexStats, m *metrics.Metrics, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.AuthRequestsPerMinute <= 0 {
		opts.AuthRequestsPerMinute = 20
	}
	if opts.AuthBurst <= 0 {
		opts.AuthBurst = 5
	}

	router := chi.NewRouter()

	s := &Server{
		services:        services,
		db:              db,
		index:           index,
		metrics:         m,
		router:          router,
		logger:          logger,
		authRateLimiter: ratelimit.PerInterval(opts.AuthRequestsPerMinute, time.Minute, opts.AuthBurst),
	}

	router.Use(middleware.RealIP)
	router.Use(requestIDMiddleware)
	router.Use(loggingMiddleware(logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins(opts.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(metricsMiddleware(m))
	router.Use(authMiddleware(services.Auth))

	humaConfig := huma.DefaultConfig("Shelfnotes API", "1.0.0")
	humaConfig.Info.Description = "Book catalog with user ratings and reviews"
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler(logger)

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerBookRoutes()
	s.registerReviewRoutes()
	s.registerSearchRoutes()
	s.registerSummaryRoutes()

	if m != nil {
		router.Handle("/metrics", m.Handler())
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI generation.
func (s *Server) API() huma.API {
	return s.api
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.authRateLimiter.Stop()
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// bearerAuth marks an operation as requiring a bearer token in the OpenAPI document.
var bearerAuth = []map[string][]string{{"bearer": {}}}
