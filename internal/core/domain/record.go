package domain

import "time"

// RawRecord is a normalized feed item before classification.
type RawRecord struct {
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	SourceName  string    `json:"source_name"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// ClassifiedRecord is a RawRecord with its classification attached.
// Values are never mutated after the classifier produces them.
type ClassifiedRecord struct {
	RawRecord
	IsCurated bool   `json:"is_curated"`
	Score     int    `json:"score"`
	Category  string `json:"category"`
	Reason    string `json:"reason"`
}

// Provenance tells which resolution tier produced a response.
type Provenance string

const (
	ProvenanceCache  Provenance = "cache"
	ProvenanceStore  Provenance = "store"
	ProvenanceLive   Provenance = "live"
	ProvenanceStatic Provenance = "static"
)

// Stats summarizes stored records.
type Stats struct {
	Total       int `json:"total"`
	Curated     int `json:"curated"`
	RecentCount int `json:"recent_count"`
}
