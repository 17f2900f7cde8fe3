// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total number of searches by search type and outcome",
		},
		[]string{"search_type", "status"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "End to end search latency including candidate fetch",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"search_type"},
	)

	SearchResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "search_results",
			Help:    "Number of results returned per search",
			Buckets: prometheus.ExponentialBuckets(1, 2, 11),
		},
		[]string{"search_type"},
	)

	CandidateFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "candidate_fetch_duration_seconds",
			Help: "Duration of candidate fetches per record kind",
		},
		[]string{"kind"},
	)

	CandidateFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candidate_fetch_failures_total",
			Help: "Candidate fetches that failed and were degraded to an empty set",
		},
		[]string{"kind"},
	)

	SourceRecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_records_skipped_total",
			Help: "Source documents dropped because they could not be decoded",
		},
		[]string{"source", "kind"},
	)

	CandidateCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "candidate_cache_lookups_total",
			Help: "Candidate cache lookups by record kind and result (hit, miss, error)",
		},
		[]string{"kind", "result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
