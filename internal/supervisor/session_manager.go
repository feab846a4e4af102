// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/flockrl/internal/logging"
	"github.com/tomtom215/flockrl/internal/metrics"
	"github.com/tomtom215/flockrl/internal/models"
	"github.com/tomtom215/flockrl/internal/render"
)

// Errors for SessionManager
var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrRenderStartFailure = errors.New("failed to start render server")
	ErrSessionNotFound    = errors.New("render session not found")
	ErrNilSupervisorTree  = errors.New("supervisor tree cannot be nil")
	ErrNilRenderer        = errors.New("renderer cannot be nil")
)

// PayloadLocator resolves a submission ID to its payload file.
// *submission.Registry satisfies it.
type PayloadLocator interface {
	PayloadPath(ctx context.Context, id string) (string, error)
}

// SessionManagerConfig holds render session defaults.
type SessionManagerConfig struct {
	// DefaultHost and DefaultPort are used when a request leaves them empty.
	DefaultHost string
	DefaultPort int

	// StopTimeout bounds how long StopSession waits for a worker to exit.
	StopTimeout time.Duration

	// Breaker guards worker binds. nil disables it.
	Breaker *render.Breaker
}

// DefaultSessionManagerConfig returns the defaults used by the server.
func DefaultSessionManagerConfig() SessionManagerConfig {
	return SessionManagerConfig{
		DefaultHost: "127.0.0.1",
		DefaultPort: 8050,
		StopTimeout: 10 * time.Second,
	}
}

// managedSession holds the supervisor handle of one render session.
type managedSession struct {
	token     suture.ServiceToken
	service   *renderService
	info      models.SessionInfo
	startedAt time.Time
}

func (m *managedSession) snapshot() models.SessionInfo {
	info := m.info
	info.State = m.service.State()
	info.Restarts = m.service.Restarts()
	return info
}

// SessionManager owns the render sessions: at most one per submission,
// each a suture service in the tree's render layer.
//
// Concurrent EnsureSession calls for one submission are collapsed with
// singleflight, so only one of them loads and binds. The map itself is
// guarded by mu.
type SessionManager struct {
	tree     *SupervisorTree
	locator  PayloadLocator
	renderer render.Renderer
	cfg      SessionManagerConfig

	sessions map[string]*managedSession // submissionID -> session
	mu       sync.RWMutex
	group    singleflight.Group

	now func() time.Time
}

// NewSessionManager creates a session manager. tree, locator and renderer
// are required.
func NewSessionManager(tree *SupervisorTree, locator PayloadLocator, renderer render.Renderer, cfg SessionManagerConfig) (*SessionManager, error) {
	if tree == nil {
		return nil, ErrNilSupervisorTree
	}
	if renderer == nil {
		return nil, ErrNilRenderer
	}
	if locator == nil {
		return nil, errors.New("payload locator cannot be nil")
	}
	d := DefaultSessionManagerConfig()
	if cfg.DefaultHost == "" {
		cfg.DefaultHost = d.DefaultHost
	}
	if cfg.DefaultPort == 0 {
		cfg.DefaultPort = d.DefaultPort
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = d.StopTimeout
	}

	return &SessionManager{
		tree:     tree,
		locator:  locator,
		renderer: renderer,
		cfg:      cfg,
		sessions: make(map[string]*managedSession),
		now:      time.Now,
	}, nil
}

// EnsureSession returns the live render session for id, starting one on
// host:port if there is none. Empty host or zero port take the configured
// defaults.
//
// A missing or unloadable payload yields ErrSubmissionNotFound; a worker
// that cannot bind yields ErrRenderStartFailure and nothing is registered.
func (m *SessionManager) EnsureSession(ctx context.Context, id, host string, port int) (*models.RenderResult, error) {
	if host == "" {
		host = m.cfg.DefaultHost
	}
	if port == 0 {
		port = m.cfg.DefaultPort
	}

	// The shared call must not die with whichever caller happened to start it.
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := m.group.Do(id, func() (interface{}, error) {
		return m.ensure(flightCtx, id, host, port)
	})
	if err != nil {
		return nil, err
	}
	res := *v.(*models.RenderResult)
	return &res, nil
}

func (m *SessionManager) ensure(ctx context.Context, id, host string, port int) (*models.RenderResult, error) {
	log := logging.Ctx(logging.ContextWithSubmissionID(ctx, id))

	if res, ok := m.reuse(id); ok {
		metrics.RecordRenderStart("reused")
		log.Debug().Str("render_url", res.RenderURL).Msg("Reusing render session")
		return res, nil
	}

	path, err := m.locator.PayloadPath(ctx, id)
	if err != nil {
		metrics.RecordRenderStart("not_found")
		return nil, fmt.Errorf("%w: %s: %w", ErrSubmissionNotFound, id, err)
	}
	scene, err := m.renderer.Load(ctx, id, path)
	if err != nil {
		metrics.RecordRenderStart("not_found")
		return nil, fmt.Errorf("%w: %s: %w", ErrSubmissionNotFound, id, err)
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	worker, err := m.bind(scene, addr)
	if err != nil {
		metrics.RecordRenderStart("failed")
		log.Error().Err(err).Str("address", addr).Msg("Render worker failed to start")
		return nil, fmt.Errorf("%w: %w", ErrRenderStartFailure, err)
	}

	// A bound port may differ from the requested one when port 0 was asked.
	boundPort := strconv.Itoa(port)
	if _, p, splitErr := net.SplitHostPort(worker.Addr()); splitErr == nil {
		boundPort = p
	}
	renderURL := "http://" + net.JoinHostPort(host, boundPort) + "/"

	svc := newRenderService(id, worker)
	now := m.now()

	m.mu.Lock()
	token := m.tree.AddRenderService(svc)
	m.sessions[id] = &managedSession{
		token:     token,
		service:   svc,
		startedAt: now,
		info: models.SessionInfo{
			SubmissionID:  id,
			RenderURL:     renderURL,
			Address:       worker.Addr(),
			FrameCount:    scene.FrameCount(),
			ObstacleCount: scene.ObstacleCount(),
			StartedAt:     now,
		},
	}
	m.mu.Unlock()

	metrics.RenderSessionsActive.Inc()
	metrics.RecordRenderStart("started")
	log.Info().
		Str("render_url", renderURL).
		Int("frame_count", scene.FrameCount()).
		Int("obstacle_count", scene.ObstacleCount()).
		Msg("Render session started")

	return &models.RenderResult{
		ID:            id,
		Message:       "Render server started",
		RenderURL:     renderURL,
		FrameCount:    scene.FrameCount(),
		ObstacleCount: scene.ObstacleCount(),
	}, nil
}

// reuse answers from a live session. A session whose service has stopped
// is dropped so the caller starts a fresh one.
func (m *SessionManager) reuse(id string) (*models.RenderResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	managed, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if !managed.service.alive() {
		_ = m.tree.RemoveRenderService(managed.token)
		m.forget(id, managed)
		return nil, false
	}
	return &models.RenderResult{
		ID:            id,
		Message:       "Render server already running",
		RenderURL:     managed.info.RenderURL,
		FrameCount:    managed.info.FrameCount,
		ObstacleCount: managed.info.ObstacleCount,
		Reused:        true,
	}, true
}

func (m *SessionManager) bind(scene render.Scene, addr string) (render.Worker, error) {
	if m.cfg.Breaker != nil {
		return m.cfg.Breaker.Bind(scene, addr)
	}
	return scene.Bind(addr)
}

// Session returns the session registered for id.
func (m *SessionManager) Session(id string) (models.SessionInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	managed, ok := m.sessions[id]
	if !ok {
		return models.SessionInfo{}, false
	}
	return managed.snapshot(), true
}

// Sessions returns every registered session, oldest first.
func (m *SessionManager) Sessions() []models.SessionInfo {
	m.mu.RLock()
	out := make([]models.SessionInfo, 0, len(m.sessions))
	for _, managed := range m.sessions {
		out = append(out, managed.snapshot())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].SubmissionID < out[j].SubmissionID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

// Count returns the number of registered sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// StopSession removes id's worker from the tree and waits for it to exit.
// If the worker cannot be removed the session stays registered, so its
// port is never handed out twice.
func (m *SessionManager) StopSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	managed, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}

	if err := m.stop(id, managed); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("submission_id", id).Msg("Render worker did not stop cleanly")
		return fmt.Errorf("stop render session %s: %w", id, err)
	}

	logging.Ctx(ctx).Info().Str("submission_id", id).Msg("Render session stopped")
	return nil
}

// StopAll stops every session. It is called during shutdown. Sessions
// that fail to stop stay registered.
func (m *SessionManager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var stopErrors []error
	for id, managed := range m.sessions {
		if err := m.stop(id, managed); err != nil {
			logging.Warn().Str("submission_id", id).Err(err).Msg("Failed to stop render session")
			stopErrors = append(stopErrors, fmt.Errorf("%s: %w", id, err))
		}
	}

	if len(stopErrors) > 0 {
		return fmt.Errorf("failed to stop %d render sessions: %w", len(stopErrors), errors.Join(stopErrors...))
	}
	logging.Ctx(ctx).Info().Msg("All render sessions stopped")
	return nil
}

// stop removes the worker from the render layer and forgets the session
// once the worker is gone. A render layer that is no longer running has
// already stopped its workers. The caller holds mu.
func (m *SessionManager) stop(id string, managed *managedSession) error {
	err := m.tree.RemoveRenderServiceAndWait(managed.token, m.cfg.StopTimeout)
	if err != nil && !errors.Is(err, suture.ErrSupervisorNotRunning) {
		return err
	}
	m.forget(id, managed)
	return nil
}

// forget drops a session from the map and releases its listener. The
// caller holds mu.
func (m *SessionManager) forget(id string, managed *managedSession) {
	managed.service.markStopped()
	if err := managed.service.worker.Close(); err != nil {
		logging.Debug().Err(err).Str("submission_id", id).Msg("Closing render worker")
	}
	delete(m.sessions, id)
	metrics.RenderSessionsActive.Dec()
}
