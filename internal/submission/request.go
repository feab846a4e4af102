// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package submission

import (
	"strings"
)

// CreateRequest carries the descriptive fields of an upload. Empty strings
// mean "not given". Only the file name is checked; the descriptive fields
// are stored as given, bounded by the upload size limit.
type CreateRequest struct {
	FileName       string   `form:"file" validate:"required,max=255"`
	Title          string   `form:"title"`
	Name           string   `form:"name"`
	Tags           []string `form:"tags"`
	Notes          string   `form:"notes"`
	EnvSet         string   `form:"envSet"`
	RendererPreset string   `form:"rendererPreset"`
}

// ParseTags flattens tag values that may each hold a comma-separated list.
// Items are trimmed and empty items dropped; order is kept.
func ParseTags(values ...string) []string {
	tags := make([]string, 0, len(values))
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				tags = append(tags, item)
			}
		}
	}
	return tags
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
