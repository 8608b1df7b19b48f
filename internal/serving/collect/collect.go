// Package collect runs one unconditional live collection and records it.
package collect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/vietddude/goodnews/internal/core/domain"
	"github.com/vietddude/goodnews/internal/observability/metrics"
	"github.com/vietddude/goodnews/internal/serving/cache"
)

// LogSource is the source name written to every collection log entry.
const LogSource = "RSS"

// ErrNothingCollected is returned when every source came back empty.
var ErrNothingCollected = errors.New("수집된 뉴스가 없습니다")

// Store is the part of the repository a collection writes to.
type Store interface {
	UpsertRecords(ctx context.Context, records []domain.ClassifiedRecord) error
	AppendCollectionLog(ctx context.Context, entry domain.CollectionLogEntry) error
}

// Live produces freshly classified records.
type Live interface {
	Fetch(ctx context.Context) []domain.ClassifiedRecord
}

// Collector fetches, persists and logs one collection run.
type Collector struct {
	live  Live
	store Store
	cache cache.Cache
	now   func() time.Time
	log   *slog.Logger
}

// New creates a collector. c may be nil.
func New(live Live, store Store, c cache.Cache) *Collector {
	return &Collector{
		live:  live,
		store: store,
		cache: c,
		now:   time.Now,
		log:   slog.Default().With("component", "collector"),
	}
}

// Run performs one collection. It appends exactly one log entry.
// The error is ErrNothingCollected when nothing was fetched, or a
// persistence error.
func (c *Collector) Run(ctx context.Context) (domain.CollectionSummary, error) {
	start := c.now()
	c.log.Info("Collection started")

	records := c.live.Fetch(ctx)
	if len(records) == 0 {
		c.finish(ctx, domain.CollectionStatusFailed, 0, ErrNothingCollected.Error())
		return domain.CollectionSummary{Timestamp: start, Sources: []string{}, Categories: []string{}}, ErrNothingCollected
	}

	if err := c.store.UpsertRecords(ctx, records); err != nil {
		c.finish(ctx, domain.CollectionStatusError, 0, err.Error())
		return domain.CollectionSummary{Timestamp: start, Sources: []string{}, Categories: []string{}},
			fmt.Errorf("failed to save records: %w", err)
	}

	summary := Summarize(records, start)
	c.finish(ctx, domain.CollectionStatusSuccess, summary.Saved,
		fmt.Sprintf("성공적으로 %d개 뉴스 저장 (큐레이션 %d개)", summary.Saved, summary.CuratedCount))

	if c.cache != nil {
		c.cache.Clear(ctx)
	}

	c.log.Info("Collection finished",
		"collected", summary.Collected,
		"curated", summary.CuratedCount,
		"sources", len(summary.Sources),
		"duration", c.now().Sub(start),
	)
	return summary, nil
}

func (c *Collector) finish(ctx context.Context, status domain.CollectionStatus, count int, message string) {
	metrics.CollectionRuns.WithLabelValues(string(status)).Inc()

	entry := domain.CollectionLogEntry{
		Source:       LogSource,
		Status:       status,
		Count:        count,
		ErrorMessage: message,
		CreatedAt:    c.now(),
	}
	if err := c.store.AppendCollectionLog(ctx, entry); err != nil {
		c.log.Error("Failed to append collection log", "status", status, "error", err)
	}
	if status != domain.CollectionStatusSuccess {
		c.log.Warn("Collection did not succeed", "status", status, "message", message)
	}
}

// Summarize builds the run summary from a classified batch.
func Summarize(records []domain.ClassifiedRecord, at time.Time) domain.CollectionSummary {
	var (
		curated    int
		sources    = make(map[string]struct{})
		categories = make(map[string]struct{})
	)
	for _, r := range records {
		if r.IsCurated {
			curated++
		}
		sources[r.SourceName] = struct{}{}
		categories[r.Category] = struct{}{}
	}

	return domain.CollectionSummary{
		Collected:    len(records),
		Saved:        len(records),
		CuratedCount: curated,
		Timestamp:    at,
		Sources:      sortedKeys(sources),
		Categories:   sortedKeys(categories),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
