// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh path label values.
const (
	PathCatalog  = "catalog"
	PathLiveness = "liveness"
)

var (
	// Refresh Pipeline Metrics
	RefreshDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "licensewatch_refresh_duration_seconds",
			Help:    "Duration of one refresh pipeline pass in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"path", "outcome"},
	)

	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensewatch_refresh_total",
			Help: "Total number of refresh pipeline passes",
		},
		[]string{"path", "outcome"},
	)

	RefreshLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "licensewatch_refresh_last_success_timestamp",
			Help: "Unix timestamp of the last successful refresh pass",
		},
		[]string{"path"},
	)

	RecordsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "licensewatch_records_processed_total",
			Help: "Total number of source records normalized and categorized",
		},
	)

	RecordsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensewatch_records_skipped_total",
			Help: "Total number of malformed source records skipped",
		},
		[]string{"reason"}, // "missing_name", "invalid_date", "invalid_number", "invalid_record"
	)

	CatalogOrphans = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "licensewatch_catalog_orphans",
			Help: "Products matching no sub-unit in the last catalog pass",
		},
	)

	SnapshotBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "licensewatch_snapshot_bytes",
			Help: "Catalog snapshot size in bytes before and after allow-list trimming",
		},
		[]string{"stage"}, // "before", "after"
	)

	// Liveness Prober Metrics
	ProbeResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensewatch_probe_results_total",
			Help: "Total number of liveness probes by outcome",
		},
		[]string{"status"}, // "up", "down", "invalid", "timeout"
	)

	ProbeLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "licensewatch_probe_latency_seconds",
			Help:    "Latency of individual liveness probes in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	ProbeUpRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "licensewatch_probe_up_ratio",
			Help: "Fraction of probed products up in the last cycle",
		},
	)

	// Edge Cache Metrics
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensewatch_cache_operations_total",
			Help: "Total number of edge cache operations",
		},
		[]string{"op", "key", "result"}, // op: "get", "put"; result: "ok", "miss", "error", "too_large"
	)

	// Legacy Source API Metrics
	SourceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensewatch_source_requests_total",
			Help: "Total number of legacy source API requests",
		},
		[]string{"action", "status"},
	)

	SourceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "licensewatch_source_request_duration_seconds",
			Help:    "Legacy source API request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"action"},
	)

	SourceWriteBacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensewatch_source_write_backs_total",
			Help: "Total number of partial updates sent to the legacy source API",
		},
		[]string{"outcome"}, // "success", "failure"
	)

	// Relational Mirror Metrics
	MirrorQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "licensewatch_mirror_query_duration_seconds",
			Help:    "Duration of relational mirror queries in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"operation"},
	)

	MirrorQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "licensewatch_mirror_query_errors_total",
			Help: "Total number of relational mirror query errors",
		},
		[]string{"operation", "error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_auth_failures_total",
			Help: "Total number of rejected refresh trigger calls",
		},
		[]string{"reason"}, // "missing", "invalid_secret", "invalid_token", "bad_scheduler_header"
	)
)

// RecordRefresh records one pipeline pass
func RecordRefresh(path string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	RefreshDuration.WithLabelValues(path, outcome).Observe(duration.Seconds())
	RefreshTotal.WithLabelValues(path, outcome).Inc()
	if err == nil {
		RefreshLastSuccess.WithLabelValues(path).Set(float64(time.Now().Unix()))
	}
}

// RecordSnapshotSize records catalog payload sizes around trimming
func RecordSnapshotSize(before, after int) {
	SnapshotBytes.WithLabelValues("before").Set(float64(before))
	SnapshotBytes.WithLabelValues("after").Set(float64(after))
}

// RecordProbe records one liveness probe
func RecordProbe(status string, latency time.Duration) {
	ProbeResults.WithLabelValues(status).Inc()
	ProbeLatency.Observe(latency.Seconds())
}

// RecordCacheOperation records an edge cache get or put
func RecordCacheOperation(op, key, result string) {
	CacheOperations.WithLabelValues(op, key, result).Inc()
}

// RecordSourceRequest records a legacy source API call
func RecordSourceRequest(action, status string, duration time.Duration) {
	SourceRequests.WithLabelValues(action, status).Inc()
	SourceRequestDuration.WithLabelValues(action).Observe(duration.Seconds())
}

// RecordMirrorQuery records a relational mirror query metric
func RecordMirrorQuery(operation string, duration time.Duration, err error) {
	MirrorQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		MirrorQueryErrors.WithLabelValues(operation, errorType).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
