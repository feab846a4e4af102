// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package models

import (
	"github.com/goccy/go-json"
)

// SubmissionStatus is derived on every read, never trusted from disk.
type SubmissionStatus string

const (
	// StatusReady means the payload file exists and parses.
	StatusReady SubmissionStatus = "READY"
	// StatusError means the metadata exists but the payload is missing or unreadable.
	StatusError SubmissionStatus = "ERROR"
)

// DefaultThumbnailURL is served for every submission until real thumbnails exist.
const DefaultThumbnailURL = "/drone-image.jpg"

// SubmissionRecord is the metadata file persisted next to each payload as
// {id}_metadata.json. Keys are snake_case for compatibility with records
// written by earlier versions of the service; unknown keys (status,
// frame_count, file_path) in old records are ignored on read.
type SubmissionRecord struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Name           *string  `json:"name,omitempty"`
	Tags           []string `json:"tags"`
	Notes          *string  `json:"notes"`
	EnvSet         *string  `json:"env_set"`
	RendererPreset *string  `json:"renderer_preset"`
	CreatedAt      string   `json:"created_at"`
	LogFileName    string   `json:"log_file_name"`

	// PayloadFile is the payload's file name inside the upload directory,
	// {id}.json or {id}.log.
	PayloadFile string `json:"payload_file"`
}

// Metrics are the simulation scores copied out of the payload's metadata
// block. Values are kept as raw JSON so whatever type the simulator wrote
// (number, bool, string) is echoed unchanged. Absent metrics are omitted.
type Metrics struct {
	Score          json.RawMessage `json:"score,omitempty"`
	Success        json.RawMessage `json:"success,omitempty"`
	TimeSec        json.RawMessage `json:"timeSec,omitempty"`
	Collisions     json.RawMessage `json:"collisions,omitempty"`
	Smoothness     json.RawMessage `json:"smoothness,omitempty"`
	PathEfficiency json.RawMessage `json:"pathEfficiency,omitempty"`
}

// IsEmpty reports whether no metric is set.
func (m *Metrics) IsEmpty() bool {
	return m == nil || (len(m.Score) == 0 && len(m.Success) == 0 && len(m.TimeSec) == 0 &&
		len(m.Collisions) == 0 && len(m.Smoothness) == 0 && len(m.PathEfficiency) == 0)
}

// SubmissionSummary is one entry of the list view.
type SubmissionSummary struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Name         *string          `json:"name,omitempty"`
	CreatedAt    string           `json:"createdAt"`
	Status       SubmissionStatus `json:"status"`
	ThumbnailURL string           `json:"thumbnailUrl"`
	Tags         []string         `json:"tags"`
	EnvSet       *string          `json:"envSet"`
	LogFileName  string           `json:"logFileName"`
}

// SubmissionDetail is the full view of one submission. Derived fields are
// null when the payload is missing or unreadable.
type SubmissionDetail struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Name            *string          `json:"name,omitempty"`
	CreatedAt       string           `json:"createdAt"`
	EnvSet          *string          `json:"envSet"`
	Status          SubmissionStatus `json:"status"`
	VideoURL        *string          `json:"videoUrl"`
	ThumbnailURL    string           `json:"thumbnailUrl"`
	DurationSec     *float64         `json:"durationSec"`
	FrameCount      *int             `json:"frameCount"`
	ObstacleCount   *int             `json:"obstacleCount"`
	Notes           *string          `json:"notes"`
	Tags            []string         `json:"tags"`
	Metrics         *Metrics         `json:"metrics"`
	Plots           []string         `json:"plots"`
	LogFileName     string           `json:"logFileName"`
	RendererVersion *string          `json:"rendererVersion"`
}

// CreateResult is returned after a successful upload.
type CreateResult struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Status     SubmissionStatus `json:"status"`
	CreatedAt  string           `json:"created_at"`
	FrameCount int              `json:"frame_count"`
	Message    string           `json:"message"`
}

// StatusReport answers "can this submission be visualized". When the
// payload cannot be read, Status is ERROR and Message says why.
type StatusReport struct {
	ID          string           `json:"id"`
	Status      SubmissionStatus `json:"status"`
	FrameCount  *int             `json:"frame_count,omitempty"`
	HasMetadata *bool            `json:"has_metadata,omitempty"`
	FileName    string           `json:"file_name,omitempty"`
	Message     string           `json:"message,omitempty"`
}

// RawSummary is a bounded peek into a payload: counts, the metadata block
// and only the first frame.
type RawSummary struct {
	ID         string            `json:"id"`
	FrameCount int               `json:"frame_count"`
	Metadata   json.RawMessage   `json:"metadata"`
	Obstacles  []json.RawMessage `json:"obstacles"`
	FirstFrame json.RawMessage   `json:"first_frame"`
}
