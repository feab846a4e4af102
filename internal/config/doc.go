// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

// Package config loads FlockRL configuration with Koanf v2.
//
// Sources are layered, later ones overriding earlier ones:
//
//  1. struct defaults (defaultConfig)
//  2. YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml, /etc/flockrl/config.yaml
//  3. environment variables
//
// Only the environment variables in envMappings are read. The common ones:
//
//	HTTP_HOST, HTTP_PORT        API listener (default 0.0.0.0:8000)
//	UPLOAD_DIR                  submission directory (default ./uploads)
//	MAX_UPLOAD_BYTES            upload size cap (default 64 MiB)
//	RENDER_HOST, RENDER_PORT    default render session address (127.0.0.1:8050)
//	RENDER_FRAME_INTERVAL       replay pacing (default 100ms)
//	CORS_ORIGINS                comma-separated (default http://localhost:3000)
//	LOG_LEVEL, LOG_FORMAT       see package logging
//
// Example YAML:
//
//	server:
//	  port: 8000
//	storage:
//	  upload_dir: /data/uploads
//	render:
//	  default_port: 8050
//	security:
//	  cors_origins: ["https://flockrl.example.com"]
package config
