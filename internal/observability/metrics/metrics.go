package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransportAttempts tracks fetch attempts per strategy and outcome (ok, empty, error)
	TransportAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodnews_transport_attempts_total",
			Help: "Total number of transport fetch attempts",
		},
		[]string{"strategy", "outcome"},
	)

	// TransportLatency tracks fetch latency per strategy
	TransportLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goodnews_transport_latency_seconds",
			Help:    "Transport fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	// SourceRecords tracks records produced per source
	SourceRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodnews_source_records_total",
			Help: "Total number of records fetched per source",
		},
		[]string{"source"},
	)

	// SourceFailures tracks sources whose every strategy came back empty
	SourceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodnews_source_failures_total",
			Help: "Total number of sources that yielded no records",
		},
		[]string{"source"},
	)

	// ResolveTotal tracks read-path responses per provenance
	ResolveTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodnews_resolve_total",
			Help: "Total number of resolved reads by provenance",
		},
		[]string{"provenance"},
	)

	// CacheLookups tracks cache hits and misses
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodnews_cache_lookups_total",
			Help: "Total number of cache lookups",
		},
		[]string{"result"},
	)

	// CollectionRuns tracks collection runs per status
	CollectionRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodnews_collection_runs_total",
			Help: "Total number of collection runs",
		},
		[]string{"status"},
	)

	// RecordsPruned tracks records deleted by retention
	RecordsPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goodnews_records_pruned_total",
			Help: "Total number of records deleted by retention",
		},
	)

	// DBConnectionPoolUsage tracks the percentage of used connections
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "goodnews_db_connection_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)
)
