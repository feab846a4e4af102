// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

/*
Package main is the entry point for the FlockRL submission server.

FlockRL stores the JSON logs of drone-flock simulation runs, summarizes them
for a browser frontend and starts per-run replay servers on demand.

# Application Architecture

Long-running components live in a Suture v4 supervisor tree:

	RootSupervisor ("flockrl")
	├── RenderSupervisor ("render-layer")
	│   └── one replay worker per active render session
	└── APISupervisor ("api-layer")
	    └── HTTP server

Startup order:

 1. Configuration: Koanf v2 (defaults, optional YAML, environment)
 2. Logging: zerolog, bridged to slog for sutureslog
 3. Storage: payload and metadata stores over UPLOAD_DIR
 4. Registry: submission operations with a digest cache
 5. Rendering: replay renderer behind a gobreaker circuit breaker
 6. Supervisor tree and session manager
 7. HTTP listener, bound before the tree starts so a busy port fails fast

# Signal Handling

SIGINT and SIGTERM cancel the root context. The tree stops the HTTP server
and every replay worker, then the digest cache is released.

# Example Usage

	UPLOAD_DIR=/var/lib/flockrl PORT=8000 CORS_ORIGINS=http://localhost:3000 ./flockrl

A YAML file can be given with CONFIG_PATH; see internal/config for keys.
*/
package main
