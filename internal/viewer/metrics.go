package viewer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// seriesRequestsTotal counts /api/.../series requests per source and outcome.
	seriesRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starknify_series_requests_total",
			Help: "Total number of series requests per source and outcome (ok/invalid/error)",
		},
		[]string{"source", "outcome"},
	)

	// seriesDuration tracks the full fetch+resample latency per source.
	seriesDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "starknify_series_duration_seconds",
			Help:    "Fetch and resample duration per source",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// rowsFetchedTotal counts rows returned by warehouse range selects.
	rowsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starknify_rows_fetched_total",
			Help: "Total number of rows fetched from warehouses",
		},
		[]string{"source"},
	)

	// rowsSkippedTotal counts rows dropped for null/unparseable timestamps.
	rowsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starknify_rows_skipped_total",
			Help: "Total number of rows dropped due to null or unparseable timestamps",
		},
		[]string{"source"},
	)

	// cacheHitsTotal / cacheMissesTotal track cache effectiveness per entry kind.
	cacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starknify_cache_hits_total",
			Help: "Total number of cache hits per entry kind (tables/columns/series)",
		},
		[]string{"kind"},
	)
	cacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starknify_cache_misses_total",
			Help: "Total number of cache misses per entry kind (tables/columns/series)",
		},
		[]string{"kind"},
	)
)
