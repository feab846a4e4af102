// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package supervisor

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"github.com/tomtom215/flockrl/internal/render"
)

// MockRenderer is a render.Renderer for tests. Scenes are registered per
// submission ID; unknown IDs fail with render.ErrSceneUnavailable.
type MockRenderer struct {
	mu     sync.Mutex
	scenes map[string]*MockScene
	loads  atomic.Int32
}

// NewMockRenderer creates an empty mock renderer.
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{scenes: make(map[string]*MockScene)}
}

// AddScene registers a scene for id and returns it for further setup.
func (r *MockRenderer) AddScene(id string, frames, obstacles int) *MockScene {
	s := &MockScene{frames: frames, obstacles: obstacles}
	r.mu.Lock()
	r.scenes[id] = s
	r.mu.Unlock()
	return s
}

// Load implements render.Renderer.
func (r *MockRenderer) Load(_ context.Context, id, _ string) (render.Scene, error) {
	r.loads.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.scenes[id]
	if !ok {
		return nil, render.ErrSceneUnavailable
	}
	return s, nil
}

// LoadCount returns how many times Load was called.
func (r *MockRenderer) LoadCount() int32 {
	return r.loads.Load()
}

// MockScene is a render.Scene whose workers block until cancelled.
type MockScene struct {
	frames    int
	obstacles int

	mu       sync.Mutex
	bindErr  error
	failures int32 // Serve calls that fail before blocking
	workers  []*MockWorker
	binds    atomic.Int32
}

// FrameCount implements render.Scene.
func (s *MockScene) FrameCount() int { return s.frames }

// ObstacleCount implements render.Scene.
func (s *MockScene) ObstacleCount() int { return s.obstacles }

// SetBindError makes every Bind fail with err.
func (s *MockScene) SetBindError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindErr = err
}

// SetFailCount makes each new worker fail its first n Serve calls.
func (s *MockScene) SetFailCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = int32(n)
}

// Bind implements render.Scene. It does not open a socket; the port in
// addr is echoed back, with ":0" mapped to a fixed fake port.
func (s *MockScene) Bind(addr string) (render.Worker, error) {
	s.binds.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bindErr != nil {
		return nil, s.bindErr
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	if port == "0" {
		port = "40000"
	}
	w := &MockWorker{addr: net.JoinHostPort(host, port), maxFails: s.failures}
	s.workers = append(s.workers, w)
	return w, nil
}

// BindCount returns how many times Bind was called.
func (s *MockScene) BindCount() int32 {
	return s.binds.Load()
}

// Worker returns the i-th worker bound from this scene.
func (s *MockScene) Worker(i int) *MockWorker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= len(s.workers) {
		return nil
	}
	return s.workers[i]
}

// MockWorker is a render.Worker that runs until its context is cancelled.
type MockWorker struct {
	addr       string
	maxFails   int32
	startCount atomic.Int32
	stopCount  atomic.Int32
	failCount  atomic.Int32
	closed     atomic.Bool
}

// Serve implements render.Worker.
func (w *MockWorker) Serve(ctx context.Context) error {
	w.startCount.Add(1)
	defer w.stopCount.Add(1)

	if w.maxFails > 0 && w.failCount.Add(1) <= w.maxFails {
		return errors.New("simulated worker failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

// Addr implements render.Worker.
func (w *MockWorker) Addr() string { return w.addr }

// Close implements render.Worker.
func (w *MockWorker) Close() error {
	w.closed.Store(true)
	return nil
}

// StartCount returns how many times Serve was called.
func (w *MockWorker) StartCount() int32 { return w.startCount.Load() }

// StopCount returns how many times Serve returned.
func (w *MockWorker) StopCount() int32 { return w.stopCount.Load() }

// Closed reports whether Close was called.
func (w *MockWorker) Closed() bool { return w.closed.Load() }

// MockLocator is a PayloadLocator backed by a map.
type MockLocator map[string]string

// PayloadPath implements PayloadLocator.
func (l MockLocator) PayloadPath(_ context.Context, id string) (string, error) {
	if p, ok := l[id]; ok {
		return p, nil
	}
	return "", errors.New("no payload for " + id)
}
