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
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no file exists for an ID.
	ErrNotFound = errors.New("not found")

	// ErrExists is returned when a write would replace an existing file.
	ErrExists = errors.New("already exists")

	// ErrInvalidID is returned for IDs that could escape the upload directory.
	ErrInvalidID = errors.New("invalid submission id")
)

const (
	idPrefix        = "sub-"
	idTimeLayout    = "20060102150405"
	metadataSuffix  = "_metadata.json"
	tempFilePattern = ".tmp-*"
	filePerm        = 0o640
	dirPerm         = 0o750
)

// NewSubmissionID returns sub-YYYYMMDDHHMMSS-xxxxxxxx. The timestamp keeps
// IDs sortable and readable; the random suffix keeps two uploads in the
// same second apart.
func NewSubmissionID(now time.Time) string {
	return idPrefix + now.UTC().Format(idTimeLayout) + "-" + uuid.New().String()[:8]
}

// checkID rejects IDs that are empty or contain path elements.
func checkID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create upload directory %s: %w", dir, err)
	}
	return nil
}

// writeExclusive streams r into dir/name. The data is written to a temp file
// first and then linked into place, so readers never observe a partial file
// and an existing file is never replaced.
func writeExclusive(dir, name string, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // the link below is what survives

	n, err := io.Copy(tmp, r)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, err
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		return n, err
	}

	final := filepath.Join(dir, name)
	if err := os.Link(tmpName, final); err != nil {
		if errors.Is(err, os.ErrExist) {
			return n, fmt.Errorf("%s: %w", name, ErrExists)
		}
		return n, err
	}
	return n, nil
}
