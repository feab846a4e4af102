// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

// Package logging provides the process-wide zerolog logger for FlockRL.
//
// All packages log through the helpers here instead of holding their own
// logger:
//
//	logging.Info().Str("submission_id", id).Msg("submission stored")
//	logging.Ctx(ctx).Warn().Err(err).Msg("payload unreadable")
//
// # Configuration
//
//	LOG_LEVEL   trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  json, console (default: json)
//	LOG_CALLER  true, false (default: false)
//
// # Context
//
// HTTP middleware stores a request ID in the request context; the registry
// adds the submission ID. Ctx(ctx) returns a logger carrying both, so one
// upload can be followed from the handler down to the filesystem writes.
//
// # slog
//
// NewSlogLogger bridges to log/slog for sutureslog, so supervisor events
// (service restarts, backoff) land in the same JSON stream.
//
// Always terminate an event with Msg or Send; an unterminated event is
// never written.
package logging
