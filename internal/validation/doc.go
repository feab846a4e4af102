// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

// Package validation wraps go-playground/validator v10 with a shared
// instance and client-readable error messages.
//
//	type RenderRequest struct {
//	    Host string `form:"host" validate:"required,hostname|ip"`
//	    Port int    `form:"port" validate:"gte=1,lte=65535"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError() // Code "VALIDATION_ERROR"
//	}
//
// Field names in messages come from the form or json tag. The custom
// "submission_id" tag checks the sub-YYYYMMDDHHMMSS[-xxxxxxxx] shape.
package validation
