// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

// Package services adapts blocking servers to suture.Service.
//
// HTTPServerService turns http.Server's ListenAndServe (or Serve on a
// caller-bound listener) into a context-aware Serve. Cancelling the
// context runs Shutdown with a bounded timeout and Serve returns ctx.Err(),
// which suture treats as a clean stop.
package services
