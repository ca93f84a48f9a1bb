package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline runs by terminal stage (done, failed) and the stage a failure happened in
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "braindump_pipeline_runs_total",
			Help: "Total number of brain dump pipeline runs",
		},
		[]string{"status", "stage"},
	)

	// Model call latency in milliseconds
	ExtractionLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "braindump_extraction_latency_ms",
			Help:    "Extraction model call latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10), // 100ms to ~50s
		},
		[]string{"status"},
	)

	FallbackCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "braindump_fallback_total",
			Help: "Total number of model replies replaced by the fallback result",
		},
	)

	// Entities queued for persistence, by kind
	EntitiesMaterialized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "braindump_entities_materialized_total",
			Help: "Total number of entities queued for persistence",
		},
		[]string{"entity"},
	)

	WriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "braindump_write_failures_total",
			Help: "Total number of persistence writes that failed and were skipped",
		},
		[]string{"entity"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~30s
		},
		[]string{"method", "path", "status"},
	)
)

func RecordPipelineRun(status, stage string) {
	PipelineRuns.WithLabelValues(status, stage).Inc()
}

func RecordExtractionLatency(status string, duration time.Duration) {
	ExtractionLatency.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func IncrementFallback() {
	FallbackCount.Inc()
}

func AddMaterialized(entity string, n int) {
	EntitiesMaterialized.WithLabelValues(entity).Add(float64(n))
}

func IncrementWriteFailure(entity string) {
	WriteFailures.WithLabelValues(entity).Inc()
}

func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
