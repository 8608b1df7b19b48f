package resolve

import (
	"context"
	"log/slog"

	"github.com/vietddude/goodnews/internal/core/domain"
)

// SourceCollector fans out over a source list. It never fails.
type SourceCollector interface {
	CollectAll(ctx context.Context, sources []domain.SourceDescriptor) []domain.RawRecord
}

// RecordClassifier classifies a batch of raw records.
type RecordClassifier interface {
	ClassifyAll(records []domain.RawRecord) []domain.ClassifiedRecord
}

// LiveSource runs a live fetch over the configured sources.
type LiveSource struct {
	collector  SourceCollector
	classifier RecordClassifier
	sources    []domain.SourceDescriptor
	backup     []domain.SourceDescriptor
	log        *slog.Logger
}

// NewLiveSource creates a live source. backup is tried only when the
// primary sources yield nothing.
func NewLiveSource(
	collector SourceCollector,
	classifier RecordClassifier,
	sources []domain.SourceDescriptor,
	backup []domain.SourceDescriptor,
) *LiveSource {
	return &LiveSource{
		collector:  collector,
		classifier: classifier,
		sources:    sources,
		backup:     backup,
		log:        slog.Default().With("component", "live"),
	}
}

// Fetch collects and classifies every record from the sources.
func (l *LiveSource) Fetch(ctx context.Context) []domain.ClassifiedRecord {
	raw := l.collector.CollectAll(ctx, l.sources)
	if len(raw) == 0 && len(l.backup) > 0 {
		l.log.Warn("Primary sources returned nothing, trying backup sources", "backup", len(l.backup))
		raw = l.collector.CollectAll(ctx, l.backup)
	}
	if len(raw) == 0 {
		return nil
	}
	return l.classifier.ClassifyAll(raw)
}

// Sources returns the primary source list.
func (l *LiveSource) Sources() []domain.SourceDescriptor {
	return l.sources
}
