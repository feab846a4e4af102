// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package api

import (
	"context"
	"io"
	"time"

	"github.com/tomtom215/flockrl/internal/models"
	"github.com/tomtom215/flockrl/internal/submission"
)

// Version is reported by GET /.
const Version = "1.0.0"

// DefaultMaxUploadBytes caps an upload when the handler config leaves it zero.
const DefaultMaxUploadBytes int64 = 64 << 20

// Submissions is the registry surface used by the handlers.
// *submission.Registry implements it.
type Submissions interface {
	Create(ctx context.Context, req submission.CreateRequest, body io.Reader) (*models.CreateResult, error)
	Get(ctx context.Context, id string) (*models.SubmissionDetail, error)
	List(ctx context.Context) ([]models.SubmissionSummary, error)
	GetStatus(ctx context.Context, id string) (*models.StatusReport, error)
	GetRawSummary(ctx context.Context, id string) (*models.RawSummary, error)
	GetLogText(ctx context.Context, id string) ([]byte, error)
	OpenPayload(ctx context.Context, id string) (*submission.PayloadFile, error)
}

// RenderSessions is the session manager surface used by the handlers.
// *supervisor.SessionManager implements it.
type RenderSessions interface {
	EnsureSession(ctx context.Context, id, host string, port int) (*models.RenderResult, error)
	StopSession(ctx context.Context, id string) error
	Sessions() []models.SessionInfo
	Count() int
}

// HandlerConfig tunes request handling.
type HandlerConfig struct {
	MaxUploadBytes int64
}

// Handler holds the HTTP handlers and their collaborators.
type Handler struct {
	submissions Submissions
	sessions    RenderSessions
	config      HandlerConfig
	startTime   time.Time
}

// NewHandler creates the handler set.
func NewHandler(submissions Submissions, sessions RenderSessions, config HandlerConfig) *Handler {
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		submissions: submissions,
		sessions:    sessions,
		config:      config,
		startTime:   time.Now(),
	}
}
