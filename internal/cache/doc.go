// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

// Package cache provides a small generic TTL cache.
//
// The submission registry uses it to keep parsed payload digests (frame
// count, metrics, obstacle count) so that listing or polling a submission
// does not re-parse a multi-megabyte payload on every request. Keys are
// built with GenerateKey from the submission ID plus the payload file's
// size and modification time, so a replaced file never serves a stale digest.
package cache
