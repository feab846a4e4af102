// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package submission

import "errors"

var (
	// ErrInvalidPayloadType is returned for uploads whose file name does not
	// end in .json or .log.
	ErrInvalidPayloadType = errors.New("invalid payload type")

	// ErrInvalidPayloadSchema is returned for payloads that are not JSON or
	// lack a frames list. The wrapped payload error names the reason.
	ErrInvalidPayloadSchema = errors.New("invalid payload")

	// ErrInvalidRequest is returned when the descriptive fields of an upload
	// fail validation. It wraps a *validation.RequestValidationError.
	ErrInvalidRequest = errors.New("invalid submission request")

	// ErrNotFound is returned when no submission exists for an ID.
	ErrNotFound = errors.New("submission not found")

	// ErrStorageInconsistency is returned when a failed create could not be
	// rolled back, leaving a payload without a metadata record.
	ErrStorageInconsistency = errors.New("storage inconsistency")
)
