package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vietddude/goodnews/internal/core/domain"
	"github.com/vietddude/goodnews/internal/observability/metrics"
)

type entry struct {
	records   []domain.ClassifiedRecord
	createdAt time.Time
	expiresAt time.Time
}

// Memory is a process-local cache with lazy expiry. Entries are
// immutable once stored, so readers never see a torn value.
type Memory struct {
	ttl     time.Duration
	now     func() time.Time
	entries sync.Map // string -> *entry
}

// Option configures a Memory cache.
type Option func(*Memory)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(m *Memory) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

// NewMemory creates an empty in-memory cache.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(ctx context.Context, key string) ([]domain.ClassifiedRecord, bool) {
	v, ok := m.entries.Load(key)
	if !ok {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	e := v.(*entry)
	if !m.now().Before(e.expiresAt) {
		// only evict the entry we saw; a concurrent Set wins
		m.entries.CompareAndDelete(key, e)
		metrics.CacheLookups.WithLabelValues("expired").Inc()
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return clone(e.records), true
}

func (m *Memory) Set(ctx context.Context, key string, records []domain.ClassifiedRecord) {
	now := m.now()
	m.entries.Store(key, &entry{
		records:   clone(records),
		createdAt: now,
		expiresAt: now.Add(m.ttl),
	})
}

func (m *Memory) Invalidate(ctx context.Context, key string) {
	m.entries.Delete(key)
}

func (m *Memory) Clear(ctx context.Context) {
	m.entries.Clear()
}

// Status lists live keys. Expired entries are not evicted here.
func (m *Memory) Status(ctx context.Context) Status {
	now := m.now()
	keys := make([]string, 0)
	m.entries.Range(func(k, v any) bool {
		if now.Before(v.(*entry).expiresAt) {
			keys = append(keys, k.(string))
		}
		return true
	})
	sort.Strings(keys)
	return Status{Size: len(keys), Keys: keys}
}
