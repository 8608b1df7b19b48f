// Package api serves the JSON and RSS endpoints.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/goodnews/internal/core/domain"
	"github.com/vietddude/goodnews/internal/observability/health"
	"github.com/vietddude/goodnews/internal/serving/cache"
	"github.com/vietddude/goodnews/internal/serving/resolve"
)

// Resolver serves reads.
type Resolver interface {
	Resolve(ctx context.Context, q resolve.Query) resolve.Result
}

// Collector runs one collection.
type Collector interface {
	Run(ctx context.Context) (domain.CollectionSummary, error)
}

// Exporter renders the syndication document.
type Exporter interface {
	Render(ctx context.Context) ([]byte, bool)
}

// StatsStore is the read-only part of the repository used by the admin endpoints.
type StatsStore interface {
	GetStats(ctx context.Context) (domain.Stats, error)
	ListCollectionLogs(ctx context.Context, since time.Time, limit int) ([]domain.CollectionLogEntry, error)
}

// Deps holds everything the server routes to.
type Deps struct {
	Resolver  Resolver
	Collector Collector
	Exporter  Exporter
	Store     StatsStore
	Cache     cache.Cache
	Health    *health.Monitor
}

// Server provides the HTTP endpoints.
type Server struct {
	deps   Deps
	server *http.Server
	log    *slog.Logger
}

// NewServer creates a new API server listening on port.
func NewServer(deps Deps, port int) *Server {
	s := &Server{
		deps: deps,
		log:  slog.Default().With("component", "api"),
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/news", s.handleNews)
	mux.HandleFunc("POST /api/collect", s.handleCollect)
	mux.HandleFunc("GET /api/collect", s.handleCollect)
	mux.HandleFunc("GET /api/rss", s.handleRSS)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/collection-logs", s.handleCollectionLogs)
	mux.HandleFunc("DELETE /api/cache", s.handleClearCache)

	if s.deps.Health != nil {
		health.NewHandler(s.deps.Health).Register(mux)
	}
	mux.Handle("GET /metrics", promhttp.Handler())

	return s.logRequests(mux)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info("API server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
