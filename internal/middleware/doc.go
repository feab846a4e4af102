// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

/*
Package middleware holds the net/http middleware shared by the API router.

  - RequestID: X-Request-ID propagation plus request and correlation IDs in
    the context, picked up by logging.Ctx
  - PrometheusMetrics: api_requests_total, api_request_duration_seconds and
    api_active_requests, labelled by chi route pattern

Both have the func(http.Handler) http.Handler shape expected by chi's Use.
*/
package middleware
