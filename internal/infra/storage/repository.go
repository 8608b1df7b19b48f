package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/vietddude/goodnews/internal/core/domain"
)

// RepositoryError wraps a failed store operation.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error { return e.Err }

// NewError wraps err as a RepositoryError for op. nil stays nil.
func NewError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RepositoryError{Op: op, Err: err}
}

// RecordQuery filters stored records.
type RecordQuery struct {
	Category    string // "" or "all" matches every category
	CuratedOnly bool
	Limit       int
}

// MatchesCategory reports whether category passes the filter.
func (q RecordQuery) MatchesCategory(category string) bool {
	return q.Category == "" || q.Category == "all" || q.Category == category
}

// RecordRepository handles classified record storage
type RecordRepository interface {
	// UpsertRecords inserts or updates records keyed by URL
	UpsertRecords(ctx context.Context, records []domain.ClassifiedRecord) error

	// QueryRecords returns records ordered by score then publication date, newest first
	QueryRecords(ctx context.Context, q RecordQuery) ([]domain.ClassifiedRecord, error)

	// HasRecordsToday reports whether any record was stored since UTC midnight
	HasRecordsToday(ctx context.Context) (bool, error)

	// GetStats summarizes stored records
	GetStats(ctx context.Context) (domain.Stats, error)

	// DeleteRecordsOlderThan removes records stored before threshold
	DeleteRecordsOlderThan(ctx context.Context, threshold time.Time) (int64, error)
}

// CollectionLogRepository handles the collection audit trail
type CollectionLogRepository interface {
	// AppendCollectionLog appends one entry
	AppendCollectionLog(ctx context.Context, entry domain.CollectionLogEntry) error

	// ListCollectionLogs returns entries created since, newest first
	ListCollectionLogs(ctx context.Context, since time.Time, limit int) ([]domain.CollectionLogEntry, error)
}

// Repository is the full store used by the service.
type Repository interface {
	RecordRepository
	CollectionLogRepository

	// Health checks the underlying store
	Health(ctx context.Context) error

	// Close releases resources
	Close() error
}

// StartOfDayUTC returns midnight UTC of t's UTC date.
func StartOfDayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
