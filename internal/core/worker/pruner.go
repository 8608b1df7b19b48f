package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/goodnews/internal/observability/metrics"
)

// RecordPruner deletes records older than a threshold.
type RecordPruner interface {
	DeleteRecordsOlderThan(ctx context.Context, threshold time.Time) (int64, error)
}

// Pruner deletes old data based on retention policy.
type Pruner struct {
	retention time.Duration
	repo      RecordPruner
	now       func() time.Time
	log       *slog.Logger
}

// NewPruner creates a new Pruner worker. A zero retention disables it.
func NewPruner(retention time.Duration, repo RecordPruner) *Pruner {
	return &Pruner{
		retention: retention,
		repo:      repo,
		now:       time.Now,
		log:       slog.Default().With("component", "pruner"),
	}
}

// Interval returns how often the pruner runs: 10% of retention,
// clamped to [1m, 1h].
func (p *Pruner) Interval() time.Duration {
	interval := min(p.retention/10, 1*time.Hour)
	return max(interval, 1*time.Minute)
}

// Start runs the pruner loop.
func (p *Pruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		return // Retention disabled
	}

	ticker := time.NewTicker(p.Interval())
	defer ticker.Stop()

	// Initial prune
	p.Prune(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Prune(ctx)
		}
	}
}

// Prune deletes everything older than the retention window once.
func (p *Pruner) Prune(ctx context.Context) int64 {
	threshold := p.now().Add(-p.retention)

	n, err := p.repo.DeleteRecordsOlderThan(ctx, threshold)
	if err != nil {
		p.log.Error("Failed to prune records", "threshold", threshold, "error", err)
		return 0
	}
	if n > 0 {
		metrics.RecordsPruned.Add(float64(n))
		p.log.Info("Pruned old records", "deleted", n, "threshold", threshold)
	}
	return n
}
