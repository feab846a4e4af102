// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

// Package metrics declares the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry through promauto, so
// importing the package is enough to expose them.
//
// # API
//
//	api_requests_total{method,endpoint,status_code}
//	api_request_duration_seconds{method,endpoint}
//	api_active_requests
//
// endpoint is the chi route pattern (/api/submissions/{id}), never the raw
// path, which keeps label cardinality bounded.
//
// # Submissions
//
//	submissions_created_total
//	submission_create_failures_total{reason}
//	submission_payload_bytes
//	submission_storage_inconsistencies_total
//	payload_digest_cache_hits_total, payload_digest_cache_misses_total
//
// # Render sessions
//
//	render_sessions_active
//	render_session_starts_total{result}   started, reused, not_found, failed
//	render_session_restarts_total
//	render_viewers_active
//	render_frames_broadcast_total
//	circuit_breaker_state{name}, circuit_breaker_requests_total{name,result}
//	circuit_breaker_state_transitions_total{name,from_state,to_state}
package metrics
