package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_library_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_library_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_library_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_library_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Pipeline metrics
var (
	PipelineStageRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_pipeline_stage_runs_total",
			Help: "Total number of pipeline stage recomputations",
		},
		[]string{"stage"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_library_pipeline_stage_duration_seconds",
			Help:    "Pipeline stage recomputation duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"stage"},
	)

	PipelineCacheDeletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_library_pipeline_cache_deletions_total",
			Help: "Total number of videos removed from stage caches in place",
		},
		[]string{"stage"},
	)

	ViewportViewSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_library_viewport_view_size",
			Help: "Number of videos in the most recently materialized view",
		},
	)
)

// Index metrics
var (
	IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_library_index_build_duration_seconds",
			Help:    "Term index build duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	IndexVideosAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_library_index_videos_added_total",
			Help: "Total number of videos added to term indexes",
		},
	)
)

// Library metrics
var (
	LibraryVideosTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "video_library_videos",
			Help: "Number of videos in the library by state",
		},
		[]string{"state"},
	)

	LibraryPropertyTypes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_library_property_types",
			Help: "Number of declared property types",
		},
	)

	ViewportsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_library_viewports_active",
			Help: "Number of open viewport sessions",
		},
	)
)
