// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package api

import (
	"math"
	"net/http"
	"time"
)

// ServiceInfo is returned by GET /.
type ServiceInfo struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// HealthStatus is returned by GET /health.
type HealthStatus struct {
	Status         string  `json:"status"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	RenderSessions int     `json:"render_sessions"`
}

// Root identifies the service.
//
// @Summary Service identity
// @Description Returns the service name and build version
// @Tags Core
// @Produce json
// @Success 200 {object} APIResponse{data=ServiceInfo} "Service identity"
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, ServiceInfo{Message: "FlockRL Backend API", Version: Version})
}

// Health is the liveness check. It has no dependencies to check: storage
// problems surface per submission as degraded reads.
//
// @Summary Liveness check
// @Description Returns 200 while the process is serving, with uptime and the number of live render sessions
// @Tags Core
// @Produce json
// @Success 200 {object} APIResponse{data=HealthStatus} "Service is alive"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	sessions := 0
	if h.sessions != nil {
		sessions = h.sessions.Count()
	}
	WriteSuccess(w, r, HealthStatus{
		Status:         "healthy",
		UptimeSeconds:  math.Round(time.Since(h.startTime).Seconds()*1000) / 1000,
		RenderSessions: sessions,
	})
}
