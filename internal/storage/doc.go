// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

// Package storage persists submissions on the local filesystem.
//
// One directory holds everything:
//
//	uploads/
//	  sub-20250301120000-1a2b3c4d.json            payload (or .log)
//	  sub-20250301120000-1a2b3c4d_metadata.json   metadata record
//
// PayloadStore and MetadataStore share the directory but know nothing of
// each other; keeping the pair consistent is the submission registry's job.
// Every write goes to a temp file that is hard-linked into place, so a
// reader sees either the whole file or nothing, and an existing file is
// never overwritten.
package storage
