// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/tomtom215/flockrl/internal/logging"
	"github.com/tomtom215/flockrl/internal/models"
)

// ErrCorrupt is returned for metadata files that cannot be decoded.
var ErrCorrupt = errors.New("corrupt metadata record")

// MetadataStore keeps one {id}_metadata.json record per submission.
// Records are write-once.
type MetadataStore struct {
	dir string
}

// NewMetadataStore creates dir if needed.
func NewMetadataStore(dir string) (*MetadataStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &MetadataStore{dir: dir}, nil
}

func (s *MetadataStore) path(id string) string {
	return filepath.Join(s.dir, id+metadataSuffix)
}

// Write persists rec. It fails with ErrExists if a record for rec.ID is
// already on disk.
func (s *MetadataStore) Write(rec *models.SubmissionRecord) error {
	if err := checkID(rec.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata %s: %w", rec.ID, err)
	}
	if _, err := writeExclusive(s.dir, rec.ID+metadataSuffix, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write metadata %s: %w", rec.ID, err)
	}
	return nil
}

// Read loads the record for id.
func (s *MetadataStore) Read(id string) (*models.SubmissionRecord, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(id)) //nolint:gosec // path is built from a checked ID inside the upload dir
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("metadata for %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return decodeRecord(id, data)
}

// Exists reports whether a record is present for id.
func (s *MetadataStore) Exists(id string) bool {
	if checkID(id) != nil {
		return false
	}
	_, err := os.Stat(s.path(id))
	return err == nil
}

// List returns every readable record, ordered by file name. Unreadable or
// undecodable records are logged and skipped.
func (s *MetadataStore) List() ([]*models.SubmissionRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan upload directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), metadataSuffix) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	records := make([]*models.SubmissionRecord, 0, len(names))
	for _, name := range names {
		id := strings.TrimSuffix(name, metadataSuffix)
		data, err := os.ReadFile(filepath.Join(s.dir, name)) //nolint:gosec // name comes from ReadDir of the upload dir
		if err != nil {
			logging.Warn().Err(err).Str("file", name).Msg("Skipping unreadable metadata record")
			continue
		}
		rec, err := decodeRecord(id, data)
		if err != nil {
			logging.Warn().Err(err).Str("file", name).Msg("Skipping corrupt metadata record")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// decodeRecord fills in defaults for fields older records may lack.
func decodeRecord(id string, data []byte) (*models.SubmissionRecord, error) {
	var rec models.SubmissionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrCorrupt, id, err)
	}
	if rec.ID == "" {
		rec.ID = id
	}
	if rec.Title == "" {
		rec.Title = "Untitled"
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	if rec.LogFileName == "" {
		rec.LogFileName = rec.ID + ".json"
	}
	return &rec, nil
}
