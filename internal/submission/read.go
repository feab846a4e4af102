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
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/tomtom215/flockrl/internal/metrics"
	"github.com/tomtom215/flockrl/internal/models"
	"github.com/tomtom215/flockrl/internal/payload"
	"github.com/tomtom215/flockrl/internal/storage"
)

// createdAtLayouts are tried in order when sorting. Records written by the
// first version of the service carry a local time without offset.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Get returns the detail view of id. A missing or unreadable payload does
// not fail the call: the detail comes back with status ERROR and the
// payload-derived fields null.
func (r *Registry) Get(ctx context.Context, id string) (*models.SubmissionDetail, error) {
	rec, err := r.records.Read(id)
	if err != nil {
		return nil, notFoundOr(id, err)
	}

	detail := &models.SubmissionDetail{
		ID:              rec.ID,
		Title:           rec.Title,
		Name:            rec.Name,
		CreatedAt:       rec.CreatedAt,
		EnvSet:          rec.EnvSet,
		Status:          models.StatusReady,
		ThumbnailURL:    models.DefaultThumbnailURL,
		Notes:           rec.Notes,
		Tags:            rec.Tags,
		Plots:           []string{},
		LogFileName:     rec.LogFileName,
		RendererVersion: rec.RendererPreset,
	}

	d, _, err := r.digest(id)
	if err != nil {
		detail.Status = models.StatusError
		r.reportDegraded(ctx, id, err)
		return detail, nil
	}

	frames, obstacles := d.FrameCount, d.ObstacleCount
	detail.FrameCount = &frames
	detail.ObstacleCount = &obstacles
	detail.DurationSec = payload.Duration(frames)
	detail.Metrics = d.Metrics
	return detail, nil
}

// List returns every readable submission, newest first. Records with the
// same timestamp keep their file-name order. Corrupt records are skipped.
// Status only checks that the payload file is present; parsing every
// payload would make listing cost proportional to total upload size.
func (r *Registry) List(ctx context.Context) ([]models.SubmissionSummary, error) {
	recs, err := r.records.List()
	if err != nil {
		return nil, err
	}

	created := make(map[string]time.Time, len(recs))
	for _, rec := range recs {
		created[rec.ID] = parseCreatedAt(rec.CreatedAt)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return created[recs[i].ID].After(created[recs[j].ID])
	})

	out := make([]models.SubmissionSummary, 0, len(recs))
	for _, rec := range recs {
		status := models.StatusReady
		if !r.payloads.Exists(rec.ID) {
			status = models.StatusError
		}
		out = append(out, models.SubmissionSummary{
			ID:           rec.ID,
			Title:        rec.Title,
			Name:         rec.Name,
			CreatedAt:    rec.CreatedAt,
			Status:       status,
			ThumbnailURL: models.DefaultThumbnailURL,
			Tags:         rec.Tags,
			EnvSet:       rec.EnvSet,
			LogFileName:  rec.LogFileName,
		})
	}
	return out, nil
}

// GetStatus reports whether id's payload can be read. It only fails with
// ErrNotFound when neither a payload nor a metadata record exists; every
// other problem is reported inline as status ERROR.
func (r *Registry) GetStatus(ctx context.Context, id string) (*models.StatusReport, error) {
	d, path, err := r.digest(id)
	if err != nil {
		if payloadMissing(err) {
			if !r.records.Exists(id) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			r.reportDegraded(ctx, id, err)
			return &models.StatusReport{ID: id, Status: models.StatusError, Message: "payload file is missing"}, nil
		}
		if errors.Is(err, storage.ErrInvalidID) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		r.reportDegraded(ctx, id, err)
		return &models.StatusReport{ID: id, Status: models.StatusError, Message: err.Error()}, nil
	}

	frames, hasMetadata := d.FrameCount, d.HasMetadata
	return &models.StatusReport{
		ID:          id,
		Status:      models.StatusReady,
		FrameCount:  &frames,
		HasMetadata: &hasMetadata,
		FileName:    filepath.Base(path),
	}, nil
}

// GetRawSummary returns a bounded view of id's payload: the frame count,
// the metadata block, the obstacles and only the first frame.
func (r *Registry) GetRawSummary(_ context.Context, id string) (*models.RawSummary, error) {
	path, err := r.payloads.Path(id)
	if err != nil {
		return nil, notFoundOr(id, err)
	}
	p, err := payload.Load(path)
	if err != nil {
		return nil, notFoundOr(id, fmt.Errorf("read payload %s: %w", id, err))
	}

	obstacles := p.Obstacles()
	if obstacles == nil {
		obstacles = []json.RawMessage{}
	}
	metadata := p.Metadata.Raw()
	if len(metadata) == 0 || string(bytes.TrimSpace(metadata)) == "null" {
		metadata = json.RawMessage("{}")
	}
	return &models.RawSummary{
		ID:         id,
		FrameCount: p.FrameCount(),
		Metadata:   metadata,
		Obstacles:  obstacles,
		FirstFrame: p.FirstFrame(),
	}, nil
}

// GetLogText returns the payload pretty-printed with two-space indentation,
// or verbatim when it does not parse.
func (r *Registry) GetLogText(_ context.Context, id string) ([]byte, error) {
	data, err := r.payloads.Read(id)
	if err != nil {
		return nil, notFoundOr(id, err)
	}
	out, _ := payload.Indent(data)
	return out, nil
}

// PayloadFile is an open payload ready to be streamed to a client.
type PayloadFile struct {
	*os.File
	// DownloadName is the file name the submitter uploaded.
	DownloadName string
	ContentType  string
	ModTime      time.Time
}

// OpenPayload opens id's payload for download. The caller closes it.
func (r *Registry) OpenPayload(_ context.Context, id string) (*PayloadFile, error) {
	f, err := r.payloads.Open(id)
	if err != nil {
		return nil, notFoundOr(id, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close() //nolint:errcheck,gosec // already failing
		return nil, err
	}

	name := filepath.Base(f.Name())
	if rec, err := r.records.Read(id); err == nil && rec.LogFileName != "" {
		name = rec.LogFileName
	}
	contentType := "application/json"
	if filepath.Ext(f.Name()) == ".log" {
		contentType = "text/plain; charset=utf-8"
	}
	return &PayloadFile{File: f, DownloadName: name, ContentType: contentType, ModTime: info.ModTime()}, nil
}

func (r *Registry) reportDegraded(ctx context.Context, id string, err error) {
	if payloadMissing(err) {
		metrics.SubmissionStorageInconsistencies.Inc()
	}
	logger(ctx, id).Warn().Err(err).Msg("Payload unavailable, serving degraded view")
}

// parseCreatedAt returns the zero time for values in no known layout, which
// sorts them last.
func parseCreatedAt(s string) time.Time {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
