package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/vietddude/goodnews/internal/core/domain"
	"github.com/vietddude/goodnews/internal/infra/storage"
)

// RecordRepo implements storage.RecordRepository using PostgreSQL.
type RecordRepo struct {
	db *DB
}

// NewRecordRepo creates a new PostgreSQL record repository.
func NewRecordRepo(db *DB) *RecordRepo {
	return &RecordRepo{db: db}
}

const upsertRecordsQuery = `
	INSERT INTO records (
		url, title, summary, image_url, source_name, category, is_curated, score, reason, published_at
	)
	SELECT * FROM UNNEST(
		$1::text[], $2::text[], $3::text[], $4::text[], $5::text[],
		$6::text[], $7::boolean[], $8::int[], $9::text[], $10::timestamptz[]
	)
	ON CONFLICT (url) DO UPDATE SET
		title = EXCLUDED.title,
		summary = EXCLUDED.summary,
		image_url = EXCLUDED.image_url,
		source_name = EXCLUDED.source_name,
		category = EXCLUDED.category,
		is_curated = EXCLUDED.is_curated,
		score = EXCLUDED.score,
		reason = EXCLUDED.reason,
		published_at = EXCLUDED.published_at,
		updated_at = NOW()
`

// UpsertRecords writes the whole batch in one statement.
func (r *RecordRepo) UpsertRecords(ctx context.Context, records []domain.ClassifiedRecord) error {
	records = lastByURL(records)
	if len(records) == 0 {
		return nil
	}

	n := len(records)
	var (
		urls       = make([]string, n)
		titles     = make([]string, n)
		summaries  = make([]string, n)
		images     = make([]string, n)
		sources    = make([]string, n)
		categories = make([]string, n)
		curated    = make([]bool, n)
		scores     = make([]int64, n)
		reasons    = make([]string, n)
		published  = make([]string, n)
	)
	for i, rec := range records {
		urls[i] = rec.URL
		titles[i] = rec.Title
		summaries[i] = rec.Summary
		images[i] = rec.ImageURL
		sources[i] = rec.SourceName
		categories[i] = rec.Category
		curated[i] = rec.IsCurated
		scores[i] = int64(rec.Score)
		reasons[i] = rec.Reason
		published[i] = rec.PublishedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err := r.db.ExecContext(ctx, upsertRecordsQuery,
		pq.Array(urls), pq.Array(titles), pq.Array(summaries), pq.Array(images), pq.Array(sources),
		pq.Array(categories), pq.Array(curated), pq.Array(scores), pq.Array(reasons), pq.Array(published),
	)
	return storage.NewError("upsert records", err)
}

// lastByURL drops repeated URLs within one batch, keeping the last one.
// ON CONFLICT cannot touch the same row twice in one statement.
func lastByURL(records []domain.ClassifiedRecord) []domain.ClassifiedRecord {
	index := make(map[string]int, len(records))
	out := make([]domain.ClassifiedRecord, 0, len(records))
	for _, rec := range records {
		if rec.URL == "" {
			continue
		}
		if i, ok := index[rec.URL]; ok {
			out[i] = rec
			continue
		}
		index[rec.URL] = len(out)
		out = append(out, rec)
	}
	return out
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

func (row *recordRow) toDomain() domain.ClassifiedRecord {
	return domain.ClassifiedRecord{
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
	}
}

// QueryRecords returns records ordered by score, then newest first.
func (r *RecordRepo) QueryRecords(ctx context.Context, q storage.RecordQuery) ([]domain.ClassifiedRecord, error) {
	var (
		where []string
		args  []any
	)
	if q.CuratedOnly {
		where = append(where, "is_curated = TRUE")
	}
	if q.Category != "" && q.Category != "all" {
		args = append(args, q.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	query := `
		SELECT url, title, summary, image_url, source_name, category, is_curated, score, reason, published_at
		FROM records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY score DESC, published_at DESC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var rows []recordRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storage.NewError("query records", err)
	}

	out := make([]domain.ClassifiedRecord, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// HasRecordsToday reports whether anything was written since UTC midnight.
func (r *RecordRepo) HasRecordsToday(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM records WHERE updated_at >= $1)`,
		storage.StartOfDayUTC(time.Now()),
	)
	if err != nil {
		return false, storage.NewError("check records today", err)
	}
	return exists, nil
}

// GetStats summarizes stored records.
func (r *RecordRepo) GetStats(ctx context.Context) (domain.Stats, error) {
	var row struct {
		Total       int `db:"total"`
		Curated     int `db:"curated"`
		RecentCount int `db:"recent_count"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_curated) AS curated,
			COUNT(*) FILTER (WHERE created_at > NOW() - INTERVAL '24 hours') AS recent_count
		FROM records
	`)
	if err != nil {
		return domain.Stats{}, storage.NewError("get stats", err)
	}
	return domain.Stats{Total: row.Total, Curated: row.Curated, RecentCount: row.RecentCount}, nil
}

// DeleteRecordsOlderThan deletes records created before threshold.
func (r *RecordRepo) DeleteRecordsOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE created_at < $1`, threshold.UTC())
	if err != nil {
		return 0, storage.NewError("delete old records", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storage.NewError("delete old records", err)
	}
	return n, nil
}
