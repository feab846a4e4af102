// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/flockrl/internal/models"
)

// SessionList wraps the live render sessions.
type SessionList struct {
	Sessions []models.SessionInfo `json:"sessions"`
}

// StartRender handles POST /api/submissions/{id}/render?host=&port=. A
// running session for the submission is reused.
//
// @Summary Start a render session
// @Description Starts a replay server for the submission or reuses the running one
// @Tags Render
// @Produce json
// @Param id path string true "Submission ID"
// @Param host query string false "Bind host" default(127.0.0.1)
// @Param port query int false "Bind port"
// @Success 200 {object} APIResponse{data=models.RenderResult} "Session running"
// @Failure 400 {object} APIResponse "Invalid host or port"
// @Failure 404 {object} APIResponse "Submission not found"
// @Failure 429 {object} APIResponse "Too many render requests"
// @Failure 500 {object} APIResponse "Render session failed to start"
// @Router /api/submissions/{id}/render [post]
func (h *Handler) StartRender(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	res, err := h.sessions.EnsureSession(r.Context(), chi.URLParam(r, "id"), req.Host, req.Port)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	WriteSuccess(w, r, res)
}

// StopRender handles DELETE /api/submissions/{id}/render.
//
// @Summary Stop a render session
// @Description Stops the submission's replay server if one is running
// @Tags Render
// @Param id path string true "Submission ID"
// @Success 204 "Session stopped"
// @Failure 404 {object} APIResponse "Submission not found"
// @Failure 500 {object} APIResponse "Session could not be stopped"
// @Router /api/submissions/{id}/render [delete]
func (h *Handler) StopRender(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.StopSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	NewResponseWriter(w, r).NoContent()
}

// ListRenderSessions handles GET /api/render/sessions.
//
// @Summary List render sessions
// @Description Returns the live render sessions
// @Tags Render
// @Produce json
// @Success 200 {object} APIResponse{data=SessionList} "Sessions retrieved"
// @Router /api/render/sessions [get]
func (h *Handler) ListRenderSessions(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, SessionList{Sessions: h.sessions.Sessions()})
}
