// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

/*
Package submission is the submission registry: it joins the payload store
and the metadata store into the views the API serves.

Creation is all-or-nothing. The payload is validated before anything is
written, stored first, and removed again if its metadata record cannot be
written:

	result, err := registry.Create(ctx, submission.CreateRequest{
		FileName: "run.json",
		Title:    "Demo",
		Tags:     submission.ParseTags("baseline, wind"),
	}, file)

Reads never trust stored derived values. Status, frame counts, duration
and metrics are recomputed from the payload file. Parsed digests are cached
keyed by path, size and modification time, so an unchanged file is parsed
once per cache TTL.

Degradation:
  - Get on a submission whose payload is gone returns status ERROR with the
    derived fields null.
  - List skips corrupt metadata records.
  - GetStatus reports unreadable payloads inline instead of failing.
  - GetLogText serves unparseable payloads verbatim.
*/
package submission
