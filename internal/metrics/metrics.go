// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Submission Metrics
	SubmissionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "submissions_created_total",
			Help: "Total number of submissions stored successfully",
		},
	)

	SubmissionCreateFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "submission_create_failures_total",
			Help: "Total number of rejected or failed submission uploads",
		},
		[]string{"reason"}, // invalid_type, invalid_schema, invalid_request, storage
	)

	SubmissionPayloadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "submission_payload_bytes",
			Help:    "Size of accepted payload files in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KiB .. 256MiB
		},
	)

	SubmissionStorageInconsistencies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "submission_storage_inconsistencies_total",
			Help: "Metadata records found without a readable payload file (or vice versa)",
		},
	)

	// Payload digest cache
	DigestCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payload_digest_cache_hits_total",
			Help: "Total number of parsed payload digests served from cache",
		},
	)

	DigestCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payload_digest_cache_misses_total",
			Help: "Total number of payload digests that required parsing the file",
		},
	)

	// Render Session Metrics
	RenderSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "render_sessions_active",
			Help: "Current number of registered render sessions",
		},
	)

	RenderSessionStarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "render_session_starts_total",
			Help: "Render session requests by outcome",
		},
		[]string{"result"}, // started, reused, not_found, failed
	)

	RenderSessionRestarts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "render_session_restarts_total",
			Help: "Total number of render workers restarted by the supervisor",
		},
	)

	RenderViewersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "render_viewers_active",
			Help: "Current number of websocket viewers across all render sessions",
		},
	)

	RenderFramesBroadcast = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "render_frames_broadcast_total",
			Help: "Total number of frames pushed to render session viewers",
		},
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

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

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

// RecordSubmissionCreated counts a stored submission and its payload size.
func RecordSubmissionCreated(payloadBytes int64) {
	SubmissionsCreated.Inc()
	SubmissionPayloadBytes.Observe(float64(payloadBytes))
}

// RecordSubmissionFailure counts a rejected upload by reason.
func RecordSubmissionFailure(reason string) {
	SubmissionCreateFailures.WithLabelValues(reason).Inc()
}

// RecordRenderStart counts an EnsureSession outcome.
func RecordRenderStart(result string) {
	RenderSessionStarts.WithLabelValues(result).Inc()
}

// TrackViewer adjusts the websocket viewer gauge.
func TrackViewer(inc bool) {
	if inc {
		RenderViewersActive.Inc()
	} else {
		RenderViewersActive.Dec()
	}
}
