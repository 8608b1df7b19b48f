package domain

import "time"

type CollectionStatus string

const (
	CollectionStatusSuccess CollectionStatus = "success"
	CollectionStatusFailed  CollectionStatus = "failed"
	CollectionStatusError   CollectionStatus = "error"
)

// CollectionLogEntry is an append-only audit record of one collection run.
type CollectionLogEntry struct {
	ID           string           `json:"id"`
	Source       string           `json:"source"`
	Status       CollectionStatus `json:"status"`
	Count        int              `json:"count"`
	ErrorMessage string           `json:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// CollectionSummary is returned by a collection run.
type CollectionSummary struct {
	Collected    int       `json:"collected"`
	Saved        int       `json:"saved"`
	CuratedCount int       `json:"curated_count"`
	Timestamp    time.Time `json:"timestamp"`
	Sources      []string  `json:"sources"`
	Categories   []string  `json:"categories"`
}
