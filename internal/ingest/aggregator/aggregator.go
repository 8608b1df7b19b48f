package aggregator

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/goodnews/internal/core/domain"
	"github.com/vietddude/goodnews/internal/observability/metrics"
)

// SourceResolver fetches one source and never fails.
type SourceResolver interface {
	Resolve(ctx context.Context, source domain.SourceDescriptor) []domain.RawRecord
}

// Aggregator fans out over every source and merges the results.
type Aggregator struct {
	resolver       SourceResolver
	maxConcurrency int
	log            *slog.Logger
}

// New creates an aggregator. maxConcurrency 0 runs every source at once.
func New(resolver SourceResolver, maxConcurrency int) *Aggregator {
	return &Aggregator{
		resolver:       resolver,
		maxConcurrency: maxConcurrency,
		log:            slog.Default().With("component", "aggregator"),
	}
}

// CollectAll fetches every source concurrently, then deduplicates by URL
// (first in source order wins) and sorts newest first. One source failing
// never affects the others.
func (a *Aggregator) CollectAll(ctx context.Context, sources []domain.SourceDescriptor) []domain.RawRecord {
	start := time.Now()
	results := make([][]domain.RawRecord, len(sources))

	// Tasks never return an error, so siblings are never cancelled.
	var g errgroup.Group
	if a.maxConcurrency > 0 {
		g.SetLimit(a.maxConcurrency)
	}

	for i, src := range sources {
		g.Go(func() error {
			results[i] = a.resolveOne(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	merged := Merge(results)

	a.log.Info("Collected sources",
		"sources", len(sources),
		"records", len(merged),
		"duration", time.Since(start),
	)
	return merged
}

func (a *Aggregator) resolveOne(ctx context.Context, src domain.SourceDescriptor) (records []domain.RawRecord) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("Source fetch panicked", "source", src.Name, "panic", r)
			records = nil
		}
	}()

	records = a.resolver.Resolve(ctx, src)
	if len(records) == 0 {
		metrics.SourceFailures.WithLabelValues(src.Name).Inc()
		a.log.Warn("Source yielded no records", "source", src.Name)
		return nil
	}
	metrics.SourceRecords.WithLabelValues(src.Name).Add(float64(len(records)))
	return records
}

// Merge flattens per-source results in source order, drops repeated URLs
// and stable-sorts by PublishedAt descending.
func Merge(perSource [][]domain.RawRecord) []domain.RawRecord {
	total := 0
	for _, rs := range perSource {
		total += len(rs)
	}

	seen := make(map[string]struct{}, total)
	merged := make([]domain.RawRecord, 0, total)
	for _, rs := range perSource {
		for _, r := range rs {
			if _, dup := seen[r.URL]; dup {
				continue
			}
			seen[r.URL] = struct{}{}
			merged = append(merged, r)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})
	return merged
}
