// Gaquery - Analytics Reporting Query Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gaquery

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Query normalization
	QueriesNormalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gaquery_queries_normalized_total",
			Help: "Total number of query normalizations by result",
		},
		[]string{"result"}, // "ok", "invalid"
	)

	QueryCorrections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gaquery_query_corrections_total",
			Help: "Total number of non-fatal query corrections",
		},
		[]string{"field", "kind"}, // kind: "corrected", "removed"
	)

	// Reporting API transport
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gaquery_fetch_duration_seconds",
			Help:    "Duration of reporting API requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gaquery_fetch_errors_total",
			Help: "Total number of failed reporting API requests",
		},
		[]string{"endpoint", "error_type"},
	)

	RateLimitWaits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gaquery_rate_limit_retries_total",
			Help: "Total number of retries after HTTP 429 responses",
		},
	)

	ResponseCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gaquery_response_cache_total",
			Help: "Response cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// Reshaping and pagination
	PagesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gaquery_pages_fetched_total",
			Help: "Total number of result pages fetched",
		},
	)

	RowsReshaped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gaquery_rows_reshaped_total",
			Help: "Total number of rows converted into result tables",
		},
	)

	MalformedResponses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gaquery_malformed_responses_total",
			Help: "Total number of responses rejected as malformed",
		},
	)

	// Export sinks
	ExportRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gaquery_export_rows_total",
			Help: "Total number of rows written by export sink",
		},
		[]string{"sink"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gaquery_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gaquery_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gaquery_circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gaquery_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// maxErrorLabelLen bounds error_type label cardinality.
const maxErrorLabelLen = 50

// RecordFetch records a reporting API request.
func RecordFetch(endpoint string, duration time.Duration, err error) {
	FetchDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		if len(errorType) > maxErrorLabelLen {
			errorType = errorType[:maxErrorLabelLen]
		}
		FetchErrors.WithLabelValues(endpoint, errorType).Inc()
	}
}

// RecordPage records one reshaped page and its row count.
func RecordPage(rows int) {
	PagesFetched.Inc()
	RowsReshaped.Add(float64(rows))
}

// RecordCacheLookup records a response cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		ResponseCache.WithLabelValues("hit").Inc()
		return
	}
	ResponseCache.WithLabelValues("miss").Inc()
}

// RecordExport records rows written by an export sink.
func RecordExport(sink string, rows int) {
	ExportRows.WithLabelValues(sink).Add(float64(rows))
}
