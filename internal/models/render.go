// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package models

import "time"

// SessionState tracks a render session through its lifecycle.
type SessionState string

const (
	SessionStarting SessionState = "starting"
	SessionRunning  SessionState = "running"
	SessionStopped  SessionState = "stopped"
)

// RenderResult is returned by a render request. Reused is true when an
// already running session answered the request.
type RenderResult struct {
	ID            string `json:"id"`
	Message       string `json:"message"`
	RenderURL     string `json:"render_url"`
	FrameCount    int    `json:"frame_count"`
	ObstacleCount int    `json:"obstacle_count"`
	Reused        bool   `json:"reused"`
}

// SessionInfo describes one registered render session.
type SessionInfo struct {
	SubmissionID  string       `json:"submission_id"`
	RenderURL     string       `json:"render_url"`
	Address       string       `json:"address"`
	State         SessionState `json:"state"`
	FrameCount    int          `json:"frame_count"`
	ObstacleCount int          `json:"obstacle_count"`
	Restarts      int64        `json:"restarts"`
	StartedAt     time.Time    `json:"started_at"`
}
