// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chapterize"

var (
	// CacheOperationsTotal tracks chapter cache operations.
	// Labels:
	//   - operation: get, set, replace
	//   - status: hit, miss, success, error
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of chapter cache operations",
		},
		[]string{"operation", "status"},
	)

	// LookupsTotal tracks lookup requests by the tier that served them.
	// Labels:
	//   - source: cache, store, none
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Total number of chapter lookups by serving tier",
		},
		[]string{"source"},
	)

	// GeneratorRequestsTotal tracks calls to the chapter generator.
	// Labels:
	//   - status: success, error
	GeneratorRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generator_requests_total",
			Help:      "Total number of chapter generator calls",
		},
		[]string{"status"},
	)

	// GeneratorDuration observes chapter generator call latency.
	GeneratorDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generator_duration_seconds",
			Help:      "Latency of chapter generator calls",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// RefreshRunsTotal tracks refresh scheduler ticks.
	// Labels:
	//   - status: success, error, empty
	RefreshRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_runs_total",
			Help:      "Total number of cache refresh runs",
		},
		[]string{"status"},
	)

	// CachedEntries reports the size of the working set after a refresh.
	CachedEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cached_entries",
			Help:      "Number of entries installed by the last cache refresh",
		},
	)
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpGet     = "get"
	CacheOpSet     = "set"
	CacheOpReplace = "replace"
)

// Lookup source constants.
const (
	LookupSourceCache = "cache"
	LookupSourceStore = "store"
	LookupSourceNone  = "none"
)

// Generator and refresh status constants.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusEmpty   = "empty"
)
