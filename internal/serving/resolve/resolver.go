// Package resolve implements the read path: cache, then store, then a
// live fetch, then the built-in sample.
package resolve

import (
	"context"
	"log/slog"

	"github.com/vietddude/goodnews/internal/core/domain"
	"github.com/vietddude/goodnews/internal/infra/storage"
	"github.com/vietddude/goodnews/internal/observability/metrics"
	"github.com/vietddude/goodnews/internal/serving/cache"
)

// Store is the part of the repository the read path uses.
type Store interface {
	QueryRecords(ctx context.Context, q storage.RecordQuery) ([]domain.ClassifiedRecord, error)
	HasRecordsToday(ctx context.Context) (bool, error)
	UpsertRecords(ctx context.Context, records []domain.ClassifiedRecord) error
}

// Live produces freshly classified records.
type Live interface {
	Fetch(ctx context.Context) []domain.ClassifiedRecord
}

// Result is the outcome of one read.
type Result struct {
	Records    []domain.ClassifiedRecord
	Provenance domain.Provenance
	Warning    string
}

// Resolver walks the tiers in order and returns the first non-empty one.
type Resolver struct {
	cache cache.Cache
	store Store
	live  Live
	log   *slog.Logger
}

// New creates a resolver. store may be nil, in which case steps that
// need it are skipped.
func New(c cache.Cache, store Store, live Live) *Resolver {
	return &Resolver{
		cache: c,
		store: store,
		live:  live,
		log:   slog.Default().With("component", "resolver"),
	}
}

// Resolve never fails. The static tier is the terminal state.
func (r *Resolver) Resolve(ctx context.Context, q Query) Result {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	q.Category = q.categoryFilter()
	key := cache.Key(q.Category, q.Limit, q.CuratedOnly)

	res := r.resolve(ctx, q, key)
	metrics.ResolveTotal.WithLabelValues(string(res.Provenance)).Inc()
	r.log.Debug("Resolved read",
		"key", key,
		"provenance", res.Provenance,
		"count", len(res.Records),
	)
	return res
}

func (r *Resolver) resolve(ctx context.Context, q Query, key string) Result {
	// 1. Cache
	if !q.ForceRefresh {
		if records, ok := r.cache.Get(ctx, key); ok {
			return Result{Records: records, Provenance: domain.ProvenanceCache}
		}
	}

	if q.UseStore && r.store != nil {
		// 2. Store
		records, err := r.store.QueryRecords(ctx, storage.RecordQuery{
			Category:    q.Category,
			CuratedOnly: q.CuratedOnly,
			Limit:       q.Limit,
		})
		if err != nil {
			r.log.Warn("Store query failed, continuing", "error", err)
		} else if len(records) > 0 {
			r.cache.Set(ctx, key, records)
			return Result{Records: records, Provenance: domain.ProvenanceStore}
		}

		// 3. Freshness gate
		fresh, err := r.store.HasRecordsToday(ctx)
		if err != nil {
			r.log.Warn("Freshness check failed, continuing", "error", err)
		} else if fresh {
			return Result{Records: []domain.ClassifiedRecord{}, Provenance: domain.ProvenanceStore}
		}
	}

	// 4. Live
	if records := r.fetchLive(ctx, q); len(records) > 0 {
		r.cache.Set(ctx, key, records)
		return Result{Records: records, Provenance: domain.ProvenanceLive}
	}

	// 5. Static
	r.log.Warn("All tiers empty, serving sample data", "version", SampleVersion)
	return Result{
		Records:    staticFor(q),
		Provenance: domain.ProvenanceStatic,
		Warning:    FallbackWarning,
	}
}

func (r *Resolver) fetchLive(ctx context.Context, q Query) []domain.ClassifiedRecord {
	if r.live == nil {
		return nil
	}
	classified := r.live.Fetch(ctx)
	if len(classified) == 0 {
		return nil
	}

	if r.store != nil {
		if err := r.store.UpsertRecords(ctx, classified); err != nil {
			r.log.Error("Failed to persist live records", "count", len(classified), "error", err)
		}
	}
	return q.Filter(classified)
}
