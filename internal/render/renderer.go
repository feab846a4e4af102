// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package render

import (
	"context"
	"errors"
)

var (
	// ErrSceneUnavailable is returned by Load when the payload cannot be
	// read or parsed.
	ErrSceneUnavailable = errors.New("scene unavailable")

	// ErrBindFailed is returned when a worker cannot listen on its address.
	ErrBindFailed = errors.New("render bind failed")

	// ErrBreakerOpen is returned while the render breaker is refusing starts.
	ErrBreakerOpen = errors.New("render breaker open")
)

// Renderer turns a stored payload into a scene that can be served.
type Renderer interface {
	// Load reads the payload at path for submission id.
	Load(ctx context.Context, id, path string) (Scene, error)
}

// Scene is a loaded payload.
type Scene interface {
	FrameCount() int
	ObstacleCount() int

	// Bind reserves addr and returns a worker that will serve the scene
	// there. Binding is synchronous so address problems surface to the
	// caller instead of inside a background task.
	Bind(addr string) (Worker, error)
}

// Worker serves one scene on one address.
type Worker interface {
	// Serve blocks until ctx is done or serving fails. It may be called
	// again after it returns; the worker rebinds its address if needed.
	Serve(ctx context.Context) error

	// Addr is the bound address, with the real port when ":0" was asked for.
	Addr() string

	// Close releases the address of a worker that was never served.
	Close() error
}
