// Package cache holds resolved record lists keyed by query shape.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/vietddude/goodnews/internal/core/domain"
)

// DefaultTTL is applied to every entry at Set time.
const DefaultTTL = 10 * time.Minute

// Cache stores record lists with a fixed TTL. Implementations must be
// safe for concurrent use and must never return an expired entry.
type Cache interface {
	Get(ctx context.Context, key string) ([]domain.ClassifiedRecord, bool)
	Set(ctx context.Context, key string, records []domain.ClassifiedRecord)
	Invalidate(ctx context.Context, key string)
	Clear(ctx context.Context)
	Status(ctx context.Context) Status
}

// Status describes the current cache contents.
type Status struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

// Key derives the cache key for a query. Every caller goes through here.
func Key(category string, limit int, curatedOnly bool) string {
	if category == "" {
		category = "all"
	}
	scope := "all"
	if curatedOnly {
		scope = "curated"
	}
	return fmt.Sprintf("news_%s_%d_%s", category, limit, scope)
}

func clone(records []domain.ClassifiedRecord) []domain.ClassifiedRecord {
	if records == nil {
		return nil
	}
	out := make([]domain.ClassifiedRecord, len(records))
	copy(out, records)
	return out
}
