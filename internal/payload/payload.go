// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package payload

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// Schema failures. Callers wrap these into one client-facing class but the
// individual reason stays available through errors.Is.
var (
	ErrEmptyPayload      = errors.New("uploaded file is empty")
	ErrNotJSON           = errors.New("payload is not valid JSON")
	ErrNotObject         = errors.New("payload must be a JSON object")
	ErrMissingFrames     = errors.New("payload must contain a 'frames' field")
	ErrFramesNotSequence = errors.New("'frames' must be a list")
)

// ErrUnsupportedType is returned for files that are neither .json nor .log.
var ErrUnsupportedType = errors.New("only .json or .log files are supported")

// Extensions accepted for payload files.
var Extensions = []string{".json", ".log"}

// Payload is the typed form of an uploaded simulation log.
type Payload struct {
	// Frames holds one raw JSON value per simulated time step.
	Frames []json.RawMessage

	// Metadata is nil when the payload has no metadata object.
	Metadata *Metadata
}

// FrameCount returns len(Frames).
func (p *Payload) FrameCount() int {
	return len(p.Frames)
}

// FirstFrame returns the first frame, or nil for an empty run.
func (p *Payload) FirstFrame() json.RawMessage {
	if len(p.Frames) == 0 {
		return nil
	}
	return p.Frames[0]
}

// Obstacles returns the obstacle list from the metadata block, if any.
func (p *Payload) Obstacles() []json.RawMessage {
	if p.Metadata == nil {
		return nil
	}
	return p.Metadata.Obstacles()
}

// Metadata is the payload's optional "metadata" object. Every field in it
// is optional; simulators of different vintages spell the same field in
// snake_case or camelCase.
type Metadata struct {
	raw    json.RawMessage
	fields map[string]json.RawMessage
}

// Raw returns the metadata object exactly as uploaded (after sanitizing).
func (m *Metadata) Raw() json.RawMessage {
	if m == nil {
		return nil
	}
	return m.raw
}

// Empty reports whether the metadata object has no keys.
func (m *Metadata) Empty() bool {
	return m == nil || len(m.fields) == 0
}

// Lookup returns the first of keys whose value is present and not null.
func (m *Metadata) Lookup(keys ...string) json.RawMessage {
	if m == nil {
		return nil
	}
	for _, k := range keys {
		if v, ok := m.fields[k]; ok && !isNull(v) {
			return v
		}
	}
	return nil
}

// Obstacles returns metadata.obstacles, falling back to
// metadata.environment.obstacles. Non-list values yield nil.
func (m *Metadata) Obstacles() []json.RawMessage {
	if m == nil {
		return nil
	}
	if list, ok := asList(m.fields["obstacles"]); ok {
		return list
	}
	var env map[string]json.RawMessage
	if raw := m.fields["environment"]; isObject(raw) && json.Unmarshal(raw, &env) == nil {
		if list, ok := asList(env["obstacles"]); ok {
			return list
		}
	}
	return nil
}

// Parse validates data against the payload schema and returns its typed form.
// Non-finite numbers written by Python (NaN, Infinity) are read as null.
func Parse(data []byte) (*Payload, error) {
	data = bytes.TrimSpace(Sanitize(data))
	if len(data) == 0 {
		return nil, ErrEmptyPayload
	}
	if !json.Valid(data) {
		return nil, ErrNotJSON
	}
	if !isObject(data) {
		return nil, ErrNotObject
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}

	rawFrames, ok := top["frames"]
	if !ok {
		return nil, ErrMissingFrames
	}
	frames, ok := asList(rawFrames)
	if !ok {
		return nil, ErrFramesNotSequence
	}

	p := &Payload{Frames: frames}
	if raw := top["metadata"]; isObject(raw) {
		md := &Metadata{raw: raw}
		if err := json.Unmarshal(raw, &md.fields); err == nil {
			p.Metadata = md
		}
	}
	return p, nil
}

// Load reads and parses the payload at path. A missing file is reported as
// an error satisfying errors.Is(err, os.ErrNotExist).
func Load(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return p, nil
}

// Extension returns the payload extension of filename, or
// ErrUnsupportedType. The match is case-sensitive: "run.JSON" is rejected.
func Extension(filename string) (string, error) {
	ext := filepath.Ext(filename)
	for _, allowed := range Extensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedType, filename)
}

// IsSchemaError reports whether err is one of the schema failures above.
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrEmptyPayload) || errors.Is(err, ErrNotJSON) ||
		errors.Is(err, ErrNotObject) || errors.Is(err, ErrMissingFrames) ||
		errors.Is(err, ErrFramesNotSequence)
}

func asList(raw json.RawMessage) ([]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	list := []json.RawMessage{}
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false
	}
	return list, true
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
