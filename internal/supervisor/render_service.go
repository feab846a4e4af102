// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/tomtom215/flockrl/internal/logging"
	"github.com/tomtom215/flockrl/internal/metrics"
	"github.com/tomtom215/flockrl/internal/models"
	"github.com/tomtom215/flockrl/internal/render"
)

var errWorkerExited = errors.New("render worker exited")

// renderService adapts a render.Worker to suture.Service. The first Serve
// call is the session start; every later call is a supervisor restart.
type renderService struct {
	submissionID string
	worker       render.Worker

	state    atomic.Value // models.SessionState
	starts   atomic.Int64
	restarts atomic.Int64
}

func newRenderService(submissionID string, worker render.Worker) *renderService {
	s := &renderService{submissionID: submissionID, worker: worker}
	s.state.Store(models.SessionStarting)
	return s
}

// Serve implements suture.Service.
func (s *renderService) Serve(ctx context.Context) error {
	if s.starts.Add(1) > 1 {
		s.restarts.Add(1)
		metrics.RenderSessionRestarts.Inc()
		logging.Warn().
			Str("submission_id", s.submissionID).
			Int64("restarts", s.restarts.Load()).
			Msg("Restarting render worker")
	}
	s.state.Store(models.SessionRunning)

	err := s.worker.Serve(ctx)
	if ctx.Err() != nil {
		s.state.Store(models.SessionStopped)
		return ctx.Err()
	}

	// The supervisor will call Serve again.
	s.state.Store(models.SessionStarting)
	if err == nil {
		err = errWorkerExited
	}
	logging.Error().Err(err).Str("submission_id", s.submissionID).Msg("Render worker failed")
	return err
}

// State returns the service's current lifecycle state.
func (s *renderService) State() models.SessionState {
	return s.state.Load().(models.SessionState)
}

// Restarts returns how many times the supervisor restarted the worker.
func (s *renderService) Restarts() int64 {
	return s.restarts.Load()
}

// markStopped records teardown by the session manager.
func (s *renderService) markStopped() {
	s.state.Store(models.SessionStopped)
}

func (s *renderService) alive() bool {
	return s.State() != models.SessionStopped
}

// String implements fmt.Stringer for suture's event log.
func (s *renderService) String() string {
	return "render-" + s.submissionID
}
