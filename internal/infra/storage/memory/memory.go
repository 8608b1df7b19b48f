package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/goodnews/internal/core/domain"
	"github.com/vietddude/goodnews/internal/infra/storage"
)

type storedRecord struct {
	record    domain.ClassifiedRecord
	createdAt time.Time
	updatedAt time.Time
}

// Repository keeps records and collection logs in process memory.
type Repository struct {
	mu      sync.RWMutex
	records map[string]*storedRecord
	logs    []domain.CollectionLogEntry
	now     func() time.Time
}

// NewRepository creates an empty in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		records: make(map[string]*storedRecord),
		now:     time.Now,
	}
}

// SetClock replaces time.Now; for tests.
func (r *Repository) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// -----------------------------------------------------------------------------
// Records
// -----------------------------------------------------------------------------

func (r *Repository) UpsertRecords(ctx context.Context, records []domain.ClassifiedRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, rec := range records {
		if rec.URL == "" {
			continue
		}
		if existing, ok := r.records[rec.URL]; ok {
			existing.record = rec
			existing.updatedAt = now
			continue
		}
		r.records[rec.URL] = &storedRecord{record: rec, createdAt: now, updatedAt: now}
	}
	return nil
}

func (r *Repository) QueryRecords(ctx context.Context, q storage.RecordQuery) ([]domain.ClassifiedRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ClassifiedRecord, 0)
	for _, s := range r.records {
		if q.CuratedOnly && !s.record.IsCurated {
			continue
		}
		if !q.MatchesCategory(s.record.Category) {
			continue
		}
		out = append(out, s.record)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].URL < out[j].URL
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *Repository) HasRecordsToday(ctx context.Context) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	midnight := storage.StartOfDayUTC(r.now())
	for _, s := range r.records {
		if !s.updatedAt.Before(midnight) {
			return true, nil
		}
	}
	return false, nil
}

func (r *Repository) GetStats(ctx context.Context) (domain.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cutoff := r.now().Add(-24 * time.Hour)
	var stats domain.Stats
	for _, s := range r.records {
		stats.Total++
		if s.record.IsCurated {
			stats.Curated++
		}
		if s.createdAt.After(cutoff) {
			stats.RecentCount++
		}
	}
	return stats, nil
}

func (r *Repository) DeleteRecordsOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for url, s := range r.records {
		if s.createdAt.Before(threshold) {
			delete(r.records, url)
			deleted++
		}
	}
	return deleted, nil
}

// -----------------------------------------------------------------------------
// Collection logs
// -----------------------------------------------------------------------------

func (r *Repository) AppendCollectionLog(ctx context.Context, entry domain.CollectionLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now()
	}
	r.logs = append(r.logs, entry)
	return nil
}

func (r *Repository) ListCollectionLogs(
	ctx context.Context,
	since time.Time,
	limit int,
) ([]domain.CollectionLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.CollectionLogEntry, 0)
	for i := len(r.logs) - 1; i >= 0; i-- {
		if !r.logs[i].CreatedAt.Before(since) {
			out = append(out, r.logs[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repository) Health(ctx context.Context) error { return nil }

func (r *Repository) Close() error { return nil }

var _ storage.Repository = (*Repository)(nil)
