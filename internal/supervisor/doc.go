// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

/*
Package supervisor runs FlockRL's long-lived work under suture v4.

# Tree

	flockrl
	├── render-layer
	│   └── render-<submission id>   one per live render session
	└── api-layer
	    └── HTTPServerService

A render worker that keeps failing is restarted inside the render layer
with suture's backoff; the API layer keeps answering in the meantime.
Supervisor events go to zerolog through sutureslog and logging.NewSlogLogger.

# Render sessions

SessionManager is the registry of render sessions. It guarantees at most one
session per submission:

	sessions, err := supervisor.NewSessionManager(tree, registry, renderer, cfg)
	res, err := sessions.EnsureSession(ctx, id, "127.0.0.1", 8050)

EnsureSession moves a submission from absent to starting (payload located,
scene loaded, address bound) and then to running once suture calls the
worker's Serve. Calls for an ID whose session is alive return the recorded
URL and counts with Reused set. Concurrent calls for one ID share a single
attempt through singleflight.

Failures map to two errors:
  - ErrSubmissionNotFound: the payload cannot be located or loaded
  - ErrRenderStartFailure: the worker could not bind (or the render breaker
    is open); nothing is registered

StopSession and StopAll remove workers through their suture tokens and
wait for them to exit.

# Configuration

TreeConfig zero values take suture's defaults: threshold 5, decay 30s,
backoff 15s, shutdown timeout 10s.
*/
package supervisor
