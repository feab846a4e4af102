// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

/*
Package models defines the data shared between storage, the submission
registry, the render session manager and the HTTP layer.

SubmissionRecord is the metadata file written next to each payload; its
JSON keys are snake_case because existing upload directories depend on
them. The view types returned to the frontend (SubmissionSummary,
SubmissionDetail) use camelCase keys. The upload acknowledgement, status
report and raw summary keep the snake_case keys the frontend already reads.

Optional fields are pointers so that "absent" serializes as null rather
than as a zero value.
*/
package models
