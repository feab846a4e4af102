// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package payload

import (
	"bytes"
	"math"

	"github.com/goccy/go-json"
	"github.com/tomtom215/flockrl/internal/models"
)

// SecondsPerFrame is the fixed simulation step used to estimate run length.
const SecondsPerFrame = 0.1

// Digest is everything the read paths need from a payload without keeping
// the frames in memory.
type Digest struct {
	FrameCount    int
	ObstacleCount int
	HasMetadata   bool
	Metrics       *models.Metrics
}

// Summarize builds the digest of p.
func Summarize(p *Payload) *Digest {
	return &Digest{
		FrameCount:    p.FrameCount(),
		ObstacleCount: len(p.Obstacles()),
		HasMetadata:   !p.Metadata.Empty(),
		Metrics:       ExtractMetrics(p.Metadata),
	}
}

// ExtractMetrics copies the known metrics out of md, accepting both
// spellings where simulators disagree. It returns nil when none is present.
func ExtractMetrics(md *Metadata) *models.Metrics {
	if md.Empty() {
		return nil
	}
	m := &models.Metrics{
		Score:          md.Lookup("score"),
		Success:        md.Lookup("success"),
		TimeSec:        md.Lookup("time_sec", "timeSec"),
		Collisions:     md.Lookup("collisions"),
		Smoothness:     md.Lookup("smoothness"),
		PathEfficiency: md.Lookup("path_efficiency", "pathEfficiency"),
	}
	if m.IsEmpty() {
		return nil
	}
	return m
}

// Duration estimates the run length in seconds. Runs without frames have
// no duration.
func Duration(frameCount int) *float64 {
	if frameCount <= 0 {
		return nil
	}
	d := math.Round(float64(frameCount)*SecondsPerFrame*1000) / 1000
	return &d
}

// Indent pretty-prints data with two-space indentation. ok is false when
// data is not JSON, in which case the caller should serve it verbatim.
func Indent(data []byte) (out []byte, ok bool) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(Sanitize(data)), "", "  "); err != nil {
		return data, false
	}
	return buf.Bytes(), true
}
