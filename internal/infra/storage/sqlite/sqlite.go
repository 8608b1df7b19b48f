package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/vietddude/goodnews/internal/core/domain"
	"github.com/vietddude/goodnews/internal/infra/storage"
)

const schema = `
	CREATE TABLE IF NOT EXISTS records (
		url          TEXT PRIMARY KEY,
		title        TEXT NOT NULL DEFAULT '',
		summary      TEXT NOT NULL DEFAULT '',
		image_url    TEXT NOT NULL DEFAULT '',
		source_name  TEXT NOT NULL DEFAULT '',
		category     TEXT NOT NULL DEFAULT '기타',
		is_curated   BOOLEAN NOT NULL DEFAULT 0,
		score        INTEGER NOT NULL DEFAULT 1,
		reason       TEXT NOT NULL DEFAULT '',
		published_at DATETIME NOT NULL,
		created_at   DATETIME NOT NULL,
		updated_at   DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_records_rank ON records(score DESC, published_at DESC);
	CREATE INDEX IF NOT EXISTS idx_records_category ON records(category);
	CREATE INDEX IF NOT EXISTS idx_records_updated_at ON records(updated_at);

	CREATE TABLE IF NOT EXISTS collection_logs (
		id            TEXT PRIMARY KEY,
		source        TEXT NOT NULL,
		status        TEXT NOT NULL,
		count         INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		created_at    DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_collection_logs_created_at ON collection_logs(created_at DESC);
`

// Repository implements storage.Repository on a local SQLite file.
// Writes go through a single connection; reads use a read-only pool.
type Repository struct {
	readDB  *sqlx.DB
	writeDB *sqlx.DB
	now     func() time.Time
}

// Open opens (and creates if needed) the database at dbPath.
func Open(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating db dir: %w", err)
	}

	writeDB, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	r := &Repository{writeDB: writeDB, now: time.Now}
	if err := r.init(); err != nil {
		_ = r.Close()
		return nil, err
	}

	// Opened after init so the file exists for mode=ro.
	readDB, err := sqlx.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}
	r.readDB = readDB
	return r, nil
}

func (r *Repository) init() error {
	if _, err := r.writeDB.Exec(schema); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// SetClock overrides the time source.
func (r *Repository) SetClock(now func() time.Time) {
	r.now = now
}

// Close closes both handles.
func (r *Repository) Close() error {
	var errs []error
	if r.readDB != nil {
		errs = append(errs, r.readDB.Close())
	}
	if r.writeDB != nil {
		errs = append(errs, r.writeDB.Close())
	}
	return errors.Join(errs...)
}

// Health pings the read handle.
func (r *Repository) Health(ctx context.Context) error {
	return r.readDB.PingContext(ctx)
}

// UpsertRecords inserts or refreshes records keyed by URL.
func (r *Repository) UpsertRecords(ctx context.Context, records []domain.ClassifiedRecord) error {
	if len(records) == 0 {
		return nil
	}
	now := r.now().UTC()

	tx, err := r.writeDB.BeginTxx(ctx, nil)
	if err != nil {
		return storage.NewError("begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (
			url, title, summary, image_url, source_name, category,
			is_curated, score, reason, published_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			summary = excluded.summary,
			image_url = excluded.image_url,
			source_name = excluded.source_name,
			category = excluded.category,
			is_curated = excluded.is_curated,
			score = excluded.score,
			reason = excluded.reason,
			published_at = excluded.published_at,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return storage.NewError("prepare upsert", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if rec.URL == "" {
			continue
		}
		_, err := stmt.ExecContext(ctx,
			rec.URL, rec.Title, rec.Summary, rec.ImageURL, rec.SourceName, rec.Category,
			rec.IsCurated, rec.Score, rec.Reason, rec.PublishedAt.UTC(), now, now,
		)
		if err != nil {
			return storage.NewError("upsert record "+rec.URL, err)
		}
	}

	return storage.NewError("commit upsert", tx.Commit())
}

type recordRow struct {
	URL         string    `db:"url"`
	Title       string    `db:"title"`
	Summary     string    `db:"summary"`
	ImageURL    string    `db:"image_url"`
	SourceName  string    `db:"source_name"`
	Category    string    `db:"category"`
	IsCurated   bool      `db:"is_curated"`
	Score       int       `db:"score"`
	Reason      string    `db:"reason"`
	PublishedAt time.Time `db:"published_at"`
}

// QueryRecords returns records ordered by score, then newest first.
func (r *Repository) QueryRecords(ctx context.Context, q storage.RecordQuery) ([]domain.ClassifiedRecord, error) {
	var (
		where []string
		args  []any
	)
	if q.CuratedOnly {
		where = append(where, "is_curated = 1")
	}
	if q.Category != "" && q.Category != "all" {
		where = append(where, "category = ?")
		args = append(args, q.Category)
	}

	query := `SELECT url, title, summary, image_url, source_name, category, is_curated, score, reason, published_at
		FROM records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY score DESC, published_at DESC, url ASC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	var rows []recordRow
	if err := r.readDB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storage.NewError("query records", err)
	}

	out := make([]domain.ClassifiedRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.ClassifiedRecord{
			RawRecord: domain.RawRecord{
				Title:       row.Title,
				Summary:     row.Summary,
				URL:         row.URL,
				PublishedAt: row.PublishedAt.UTC(),
				SourceName:  row.SourceName,
				ImageURL:    row.ImageURL,
			},
			IsCurated: row.IsCurated,
			Score:     row.Score,
			Category:  row.Category,
			Reason:    row.Reason,
		})
	}
	return out, nil
}

// HasRecordsToday reports whether anything was written since UTC midnight.
func (r *Repository) HasRecordsToday(ctx context.Context) (bool, error) {
	var n int
	err := r.readDB.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM records WHERE updated_at >= ?`,
		storage.StartOfDayUTC(r.now()),
	)
	if err != nil {
		return false, storage.NewError("check records today", err)
	}
	return n > 0, nil
}

// GetStats summarizes stored records.
func (r *Repository) GetStats(ctx context.Context) (domain.Stats, error) {
	var row struct {
		Total       int `db:"total"`
		Curated     int `db:"curated"`
		RecentCount int `db:"recent_count"`
	}
	err := r.readDB.GetContext(ctx, &row, `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN is_curated THEN 1 ELSE 0 END), 0) AS curated,
			COALESCE(SUM(CASE WHEN created_at > ? THEN 1 ELSE 0 END), 0) AS recent_count
		FROM records
	`, r.now().UTC().Add(-24*time.Hour))
	if err != nil {
		return domain.Stats{}, storage.NewError("get stats", err)
	}
	return domain.Stats{Total: row.Total, Curated: row.Curated, RecentCount: row.RecentCount}, nil
}

// DeleteRecordsOlderThan deletes records created before threshold.
func (r *Repository) DeleteRecordsOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	res, err := r.writeDB.ExecContext(ctx, `DELETE FROM records WHERE created_at < ?`, threshold.UTC())
	if err != nil {
		return 0, storage.NewError("delete old records", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storage.NewError("delete old records", err)
	}
	return n, nil
}

// AppendCollectionLog appends one entry.
func (r *Repository) AppendCollectionLog(ctx context.Context, entry domain.CollectionLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now()
	}
	_, err := r.writeDB.ExecContext(ctx, `
		INSERT INTO collection_logs (id, source, status, count, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.Source, string(entry.Status), entry.Count, entry.ErrorMessage, entry.CreatedAt.UTC())
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
func (r *Repository) ListCollectionLogs(
	ctx context.Context,
	since time.Time,
	limit int,
) ([]domain.CollectionLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []logRow
	err := r.readDB.SelectContext(ctx, &rows, `
		SELECT id, source, status, count, error_message, created_at
		FROM collection_logs
		WHERE created_at >= ?
		ORDER BY created_at DESC
		LIMIT ?
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

var _ storage.Repository = (*Repository)(nil)
