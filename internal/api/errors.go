// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/flockrl/internal/logging"
	"github.com/tomtom215/flockrl/internal/submission"
	"github.com/tomtom215/flockrl/internal/supervisor"
	"github.com/tomtom215/flockrl/internal/validation"
)

// errorStatus maps a service error to its HTTP status and code.
func errorStatus(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge
	case errors.Is(err, submission.ErrInvalidRequest):
		return http.StatusBadRequest, ErrCodeValidation
	case errors.Is(err, submission.ErrInvalidPayloadType),
		errors.Is(err, submission.ErrInvalidPayloadSchema):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, submission.ErrNotFound),
		errors.Is(err, supervisor.ErrSubmissionNotFound),
		errors.Is(err, supervisor.ErrSessionNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, supervisor.ErrRenderStartFailure):
		return http.StatusInternalServerError, ErrCodeRenderStart
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// respondServiceError writes err in the envelope. Messages are passed
// through unchanged; this is an internal tool and the detail is useful.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	rw := NewResponseWriter(w, r)

	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}

	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}
	if status == http.StatusRequestEntityTooLarge {
		rw.Error(status, code, "uploaded file exceeds the size limit")
		return
	}
	rw.Error(status, code, err.Error())
}
