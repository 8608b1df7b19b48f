package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/goodnews/internal/core/domain"
	"github.com/vietddude/goodnews/internal/infra/storage"
)

// CollectionLogRepo implements storage.CollectionLogRepository using PostgreSQL.
type CollectionLogRepo struct {
	db *DB
}

// NewCollectionLogRepo creates a new PostgreSQL collection log repository.
func NewCollectionLogRepo(db *DB) *CollectionLogRepo {
	return &CollectionLogRepo{db: db}
}

// AppendCollectionLog appends one entry.
func (r *CollectionLogRepo) AppendCollectionLog(ctx context.Context, entry domain.CollectionLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO collection_logs (id, source, status, count, error_message, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
	`,
		entry.ID, entry.Source, string(entry.Status), entry.Count, entry.ErrorMessage, entry.CreatedAt.UTC(),
	)
	return storage.NewError("append collection log", err)
}

type logRow struct {
	ID           string    `db:"id"`
	Source       string    `db:"source"`
	Status       string    `db:"status"`
	Count        int       `db:"count"`
	ErrorMessage string    `db:"error_message"`
	CreatedAt    time.Time `db:"created_at"`
}

// ListCollectionLogs returns entries created since, newest first.
func (r *CollectionLogRepo) ListCollectionLogs(
	ctx context.Context,
	since time.Time,
	limit int,
) ([]domain.CollectionLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []logRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id::text AS id, source, status, count, COALESCE(error_message, '') AS error_message, created_at
		FROM collection_logs
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`, since.UTC(), limit)
	if err != nil {
		return nil, storage.NewError("list collection logs", err)
	}

	out := make([]domain.CollectionLogEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.CollectionLogEntry{
			ID:           row.ID,
			Source:       row.Source,
			Status:       domain.CollectionStatus(row.Status),
			Count:        row.Count,
			ErrorMessage: row.ErrorMessage,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return out, nil
}
