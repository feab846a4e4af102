// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tomtom215/flockrl/internal/payload"
)

// PayloadStore keeps payload files as {id}{ext} in one directory.
type PayloadStore struct {
	dir string
}

// NewPayloadStore creates dir if needed.
func NewPayloadStore(dir string) (*PayloadStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	return &PayloadStore{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *PayloadStore) Dir() string {
	return s.dir
}

// Write stores r as the payload of id. ext must be one of payload.Extensions.
// It returns the stored file name and the number of bytes written.
func (s *PayloadStore) Write(id, ext string, r io.Reader) (string, int64, error) {
	if err := checkID(id); err != nil {
		return "", 0, err
	}
	if _, err := payload.Extension(ext); err != nil {
		return "", 0, err
	}
	name := id + ext
	n, err := writeExclusive(s.dir, name, r)
	if err != nil {
		return "", n, fmt.Errorf("write payload %s: %w", name, err)
	}
	return name, n, nil
}

// Path returns the path of the payload file for id. Extensions are tried
// in payload.Extensions order. ErrNotFound when none exists.
func (s *PayloadStore) Path(id string) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}
	for _, ext := range payload.Extensions {
		p := filepath.Join(s.dir, id+ext)
		info, err := os.Stat(p)
		if err == nil && info.Mode().IsRegular() {
			return p, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat payload %s: %w", filepath.Base(p), err)
		}
	}
	return "", fmt.Errorf("payload for %s: %w", id, ErrNotFound)
}

// Exists reports whether a payload file is present for id.
func (s *PayloadStore) Exists(id string) bool {
	_, err := s.Path(id)
	return err == nil
}

// Open opens the payload file for id for streaming.
func (s *PayloadStore) Open(id string) (*os.File, error) {
	p, err := s.Path(id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p) //nolint:gosec // path is built from a checked ID inside the upload dir
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("payload for %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return f, nil
}

// Read returns the whole payload file for id.
func (s *PayloadStore) Read(id string) ([]byte, error) {
	p, err := s.Path(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p) //nolint:gosec // path is built from a checked ID inside the upload dir
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("payload for %s: %w", id, ErrNotFound)
	}
	return data, err
}

// Remove deletes the payload file named name (as returned by Write).
// Removing a file that is already gone is not an error.
func (s *PayloadStore) Remove(name string) error {
	if err := checkID(name); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove payload %s: %w", name, err)
	}
	return nil
}
