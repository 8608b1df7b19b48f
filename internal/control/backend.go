package control

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vietddude/goodnews/internal/core/config"
	redisclient "github.com/vietddude/goodnews/internal/infra/redis"
	"github.com/vietddude/goodnews/internal/infra/storage"
	"github.com/vietddude/goodnews/internal/infra/storage/memory"
	"github.com/vietddude/goodnews/internal/infra/storage/postgres"
	"github.com/vietddude/goodnews/internal/infra/storage/sqlite"
	"github.com/vietddude/goodnews/internal/serving/cache"
)

// Backend is the opened repository plus the pool behind it, if any.
type Backend struct {
	Repo storage.Repository
	DB   *postgres.DB // nil unless a postgres driver is used
}

// Close releases the repository.
func (b *Backend) Close() error {
	return b.Repo.Close()
}

// OpenBackend opens the repository selected by cfg.Driver. Postgres
// migrations are applied on open.
func OpenBackend(ctx context.Context, cfg config.DatabaseConfig) (*Backend, error) {
	switch cfg.Driver {
	case "postgres", "pgx":
		db, err := postgres.NewDB(ctx, postgres.Config{
			Driver:   cfg.Driver,
			URL:      cfg.URL,
			MaxConns: cfg.MaxConns,
			MinConns: cfg.MinConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := postgres.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		slog.Info("Using PostgreSQL storage", "driver", cfg.Driver)
		return &Backend{Repo: postgres.NewRepository(db), DB: db}, nil

	case "sqlite":
		repo, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		slog.Info("Using SQLite storage", "path", cfg.Path)
		return &Backend{Repo: repo}, nil

	case "", "memory":
		slog.Info("Using Memory storage")
		return &Backend{Repo: memory.NewRepository()}, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// openCache builds the configured cache. A Redis connection failure
// falls back to the in-memory cache.
func openCache(cfg *config.AppConfig) (cache.Cache, func() error) {
	noop := func() error { return nil }

	if cfg.Cache.Backend == "redis" {
		client, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, using memory cache", "error", err)
		} else {
			slog.Info("Using Redis cache", "ttl", cfg.Cache.TTL)
			return redisclient.NewCache(client, cfg.Cache.TTL), client.Close
		}
	}

	return cache.NewMemory(cache.WithTTL(cfg.Cache.TTL)), noop
}
