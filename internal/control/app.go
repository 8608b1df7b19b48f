package control

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/vietddude/goodnews/internal/core/config"
	"github.com/vietddude/goodnews/internal/core/worker"
	"github.com/vietddude/goodnews/internal/ingest/aggregator"
	"github.com/vietddude/goodnews/internal/ingest/classify"
	"github.com/vietddude/goodnews/internal/ingest/fetcher"
	"github.com/vietddude/goodnews/internal/ingest/transport"
	"github.com/vietddude/goodnews/internal/infra/storage"
	"github.com/vietddude/goodnews/internal/observability/health"
	"github.com/vietddude/goodnews/internal/serving/api"
	"github.com/vietddude/goodnews/internal/serving/cache"
	"github.com/vietddude/goodnews/internal/serving/collect"
	"github.com/vietddude/goodnews/internal/serving/resolve"
	"github.com/vietddude/goodnews/internal/serving/syndication"
)

// App is the main application struct that manages the service lifecycle.
type App struct {
	cfg        *config.AppConfig
	backend    *Backend
	cache      cache.Cache
	closeCache func() error
	relays     *transport.Monitor
	resolver   *resolve.Resolver
	collector  *collect.Collector
	healthMon  *health.Monitor
	server     *api.Server
	scheduler  *worker.Scheduler
	pruner     *worker.Pruner
	wg         sync.WaitGroup
	log        *slog.Logger
}

// New creates a new App with all dependencies initialized.
func New(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	log := slog.Default().With("component", "app")

	// 1. Storage
	backend, err := OpenBackend(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	// 2. Cache
	c, closeCache := openCache(cfg)

	// 3. Ingestion
	relays := transport.NewMonitor()
	f := fetcher.NewFromConfig(cfg.Transport, relays)
	agg := aggregator.New(f, cfg.Aggregator.MaxConcurrency)
	classifier := classify.New(ClassifierConfig(cfg.Classifier))
	live := resolve.NewLiveSource(agg, classifier, cfg.Sources, cfg.BackupSources)

	// 4. Serving
	resolver := resolve.New(c, backend.Repo, live)
	collector := collect.New(live, backend.Repo, c)
	channel := syndication.DefaultChannel
	channel.Link = cfg.Server.PublicURL
	exporter := syndication.NewExporter(backend.Repo, channel)
	healthMon := health.NewMonitor(backend.Repo, backend.Repo, relays)

	server := api.NewServer(api.Deps{
		Resolver:  resolver,
		Collector: collector,
		Exporter:  exporter,
		Store:     backend.Repo,
		Cache:     c,
		Health:    healthMon,
	}, cfg.Server.Port)

	// 5. Workers
	scheduler, err := worker.NewScheduler(cfg.Collection, collector)
	if err != nil {
		_ = closeCache()
		_ = backend.Close()
		return nil, err
	}
	pruner := worker.NewPruner(cfg.Collection.RetentionPeriod, backend.Repo)

	log.Info("Application initialized",
		"sources", len(cfg.Sources),
		"backup_sources", len(cfg.BackupSources),
		"database", cfg.Database.Driver,
		"cache", cfg.Cache.Backend,
	)

	return &App{
		cfg:        cfg,
		backend:    backend,
		cache:      c,
		closeCache: closeCache,
		relays:     relays,
		resolver:   resolver,
		collector:  collector,
		healthMon:  healthMon,
		server:     server,
		scheduler:  scheduler,
		pruner:     pruner,
		log:        log,
	}, nil
}

// Start starts the HTTP server and background workers.
func (a *App) Start(ctx context.Context) error {
	// Start API Server
	go func() {
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("API server failed", "error", err)
		}
	}()

	// Start DB Metrics Collector
	if a.backend.DB != nil {
		a.backend.DB.StartMetricsCollector(ctx)
	}

	// Start Scheduler
	if a.scheduler != nil {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.scheduler.Start(ctx); err != nil {
				a.log.Error("Scheduler failed", "error", err)
			}
		}()
	} else {
		a.log.Info("Scheduled collection disabled")
	}

	// Start Pruner
	if a.cfg.Collection.RetentionPeriod > 0 {
		a.log.Info("Starting pruner", "retention", a.cfg.Collection.RetentionPeriod, "interval", a.pruner.Interval())
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.pruner.Start(ctx)
		}()
	}

	return nil
}

// Stop stops the server and releases resources. Workers exit when the
// context passed to Start is cancelled.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping application...")

	err := a.server.Stop(ctx)

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.log.Warn("Workers did not stop in time")
	}

	if cerr := a.closeCache(); cerr != nil {
		a.log.Warn("Failed to close cache", "error", cerr)
	}
	if cerr := a.backend.Close(); cerr != nil {
		a.log.Warn("Failed to close repository", "error", cerr)
	}
	return err
}

// Handler returns the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Collector returns the collection runner.
func (a *App) Collector() *collect.Collector {
	return a.collector
}

// Repository returns the configured store.
func (a *App) Repository() storage.Repository {
	return a.backend.Repo
}

// Cache returns the configured cache.
func (a *App) Cache() cache.Cache {
	return a.cache
}

// ClassifierConfig converts the YAML classifier section.
func ClassifierConfig(cfg config.ClassifierConfig) classify.Config {
	out := classify.Config{
		Positive:        cfg.Positive,
		Negative:        cfg.Negative,
		DefaultCategory: cfg.DefaultCategory,
		Threshold:       cfg.Threshold,
	}
	for _, c := range cfg.Categories {
		out.Categories = append(out.Categories, classify.Category{Name: c.Name, Keywords: c.Keywords})
	}
	return out
}
