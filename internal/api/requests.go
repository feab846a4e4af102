// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/flockrl/internal/submission"
	"github.com/tomtom215/flockrl/internal/validation"
)

// multipartMemory is how much of an upload is held in memory before
// mime/multipart spills it to a temp file.
const multipartMemory = 8 << 20

// RenderRequest is the query of POST /api/submissions/{id}/render. Empty
// host and zero port take the session manager's defaults.
type RenderRequest struct {
	Host string `form:"host" validate:"omitempty,hostname|ip"`
	Port int    `form:"port" validate:"gte=0,lte=65535"`
}

// parseRenderRequest reads and validates host and port. A non-numeric port
// is reported as a validation failure on "port".
func parseRenderRequest(r *http.Request) (RenderRequest, error) {
	q := r.URL.Query()
	req := RenderRequest{Host: strings.TrimSpace(q.Get("host"))}

	if raw := strings.TrimSpace(q.Get("port")); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("%w: port must be an integer", submission.ErrInvalidRequest)
		}
		req.Port = port
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		return req, fmt.Errorf("%w: %w", submission.ErrInvalidRequest, verr)
	}
	return req, nil
}

// createRequestFromForm collects the descriptive fields of an upload.
// Each field is read from the multipart form first and from the query
// string when the form lacks it; the frontend has sent both over time.
func createRequestFromForm(r *http.Request) submission.CreateRequest {
	return submission.CreateRequest{
		Title:          strings.TrimSpace(formValue(r, "title")),
		Name:           strings.TrimSpace(formValue(r, "name")),
		Tags:           submission.ParseTags(formValues(r, "tags")...),
		Notes:          formValue(r, "notes"),
		EnvSet:         strings.TrimSpace(formValue(r, "envSet", "env_set")),
		RendererPreset: strings.TrimSpace(formValue(r, "rendererPreset", "renderer_preset")),
	}
}

// formValue returns the first non-empty value among keys, form before query.
func formValue(r *http.Request, keys ...string) string {
	if vs := formValues(r, keys...); len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func formValues(r *http.Request, keys ...string) []string {
	if r.MultipartForm != nil {
		for _, k := range keys {
			if vs := nonEmpty(r.MultipartForm.Value[k]); len(vs) > 0 {
				return vs
			}
		}
	}
	q := r.URL.Query()
	for _, k := range keys {
		if vs := nonEmpty(q[k]); len(vs) > 0 {
			return vs
		}
	}
	return nil
}

func nonEmpty(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
