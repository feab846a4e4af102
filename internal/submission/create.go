// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package submission

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/tomtom215/flockrl/internal/metrics"
	"github.com/tomtom215/flockrl/internal/models"
	"github.com/tomtom215/flockrl/internal/payload"
	"github.com/tomtom215/flockrl/internal/storage"
	"github.com/tomtom215/flockrl/internal/validation"
)

// Create validates and stores one upload. The payload is written first and
// the metadata record second; if the record cannot be written the payload
// is removed again, so a failed Create leaves nothing behind. Should that
// removal fail too, the error wraps ErrStorageInconsistency.
//
// Failure classes, in the order they are checked: ErrInvalidRequest,
// ErrInvalidPayloadType, ErrInvalidPayloadSchema.
func (r *Registry) Create(ctx context.Context, req CreateRequest, body io.Reader) (*models.CreateResult, error) {
	if verr := validation.ValidateStruct(&req); verr != nil {
		metrics.RecordSubmissionFailure("invalid_request")
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, verr)
	}

	ext, err := payload.Extension(req.FileName)
	if err != nil {
		metrics.RecordSubmissionFailure("invalid_type")
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayloadType, err)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		metrics.RecordSubmissionFailure("read_error")
		return nil, fmt.Errorf("read upload: %w", err)
	}

	p, err := payload.Parse(data)
	if err != nil {
		metrics.RecordSubmissionFailure("invalid_schema")
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayloadSchema, err)
	}

	now := r.now()
	id := storage.NewSubmissionID(now)
	log := logger(ctx, id)

	fileName, size, err := r.payloads.Write(id, ext, bytes.NewReader(data))
	if err != nil {
		metrics.RecordSubmissionFailure("storage")
		return nil, fmt.Errorf("store payload: %w", err)
	}

	title := optional(req.Title)
	if title == nil {
		t := "Submission " + id
		title = &t
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	rec := &models.SubmissionRecord{
		ID:             id,
		Title:          *title,
		Name:           optional(req.Name),
		Tags:           tags,
		Notes:          optional(req.Notes),
		EnvSet:         optional(req.EnvSet),
		RendererPreset: optional(req.RendererPreset),
		CreatedAt:      now.UTC().Format(createdAtLayout),
		LogFileName:    filepath.Base(req.FileName),
		PayloadFile:    fileName,
	}

	if err := r.records.Write(rec); err != nil {
		metrics.RecordSubmissionFailure("storage")
		if rmErr := r.payloads.Remove(fileName); rmErr != nil {
			metrics.SubmissionStorageInconsistencies.Inc()
			log.Error().Err(rmErr).Str("payload_file", fileName).
				Msg("Orphaned payload: metadata write failed and payload removal failed")
			return nil, fmt.Errorf("%w: %s has a payload but no metadata: %w", ErrStorageInconsistency, id, errors.Join(err, rmErr))
		}
		return nil, fmt.Errorf("store metadata: %w", err)
	}

	metrics.RecordSubmissionCreated(size)
	log.Info().
		Str("title", rec.Title).
		Str("payload_file", fileName).
		Int("frame_count", p.FrameCount()).
		Int64("bytes", size).
		Msg("Submission created")

	return &models.CreateResult{
		ID:         id,
		Title:      rec.Title,
		Status:     models.StatusReady,
		CreatedAt:  rec.CreatedAt,
		FrameCount: p.FrameCount(),
		Message:    "Submission uploaded successfully",
	}, nil
}
