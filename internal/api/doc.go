// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

/*
Package api is the HTTP surface of the submission service.

Routes:

	GET    /                                  service name and version
	GET    /health                            liveness and session count
	GET    /metrics                           Prometheus exposition
	POST   /api/submissions                   multipart upload
	GET    /api/submissions                   list, newest first
	GET    /api/submissions/{id}              detail view
	GET    /api/submissions/{id}/status       readiness of the payload
	GET    /api/submissions/{id}/data         frame count, metadata, obstacles, first frame
	GET    /api/submissions/{id}/log          payload pretty-printed as text
	GET    /api/submissions/{id}/file         payload as uploaded
	POST   /api/submissions/{id}/render       start or reuse a replay server
	DELETE /api/submissions/{id}/render       stop the replay server
	GET    /api/render/sessions               live replay servers

JSON endpoints answer with the APIResponse envelope. The log and file
downloads are raw bodies. Service errors are mapped to status codes in
errors.go; their messages reach the client unchanged.

The middleware chain is request ID, real IP, panic recovery, CORS,
Prometheus request metrics, security headers and gzip, followed by
per-group httprate limiters.
*/
package api
