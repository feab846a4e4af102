// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package submission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/tomtom215/flockrl/internal/cache"
	"github.com/tomtom215/flockrl/internal/logging"
	"github.com/tomtom215/flockrl/internal/metrics"
	"github.com/tomtom215/flockrl/internal/models"
	"github.com/tomtom215/flockrl/internal/payload"
	"github.com/tomtom215/flockrl/internal/storage"
)

// createdAtLayout is RFC 3339 with fixed millisecond precision so records
// created within the same second still order correctly.
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

// PayloadStore is the subset of *storage.PayloadStore the registry uses.
type PayloadStore interface {
	Write(id, ext string, r io.Reader) (string, int64, error)
	Path(id string) (string, error)
	Exists(id string) bool
	Open(id string) (*os.File, error)
	Read(id string) ([]byte, error)
	Remove(name string) error
}

// MetadataStore is the subset of *storage.MetadataStore the registry uses.
type MetadataStore interface {
	Write(rec *models.SubmissionRecord) error
	Read(id string) (*models.SubmissionRecord, error)
	Exists(id string) bool
	List() ([]*models.SubmissionRecord, error)
}

// Registry joins the payload and metadata stores into submissions.
// All methods are safe for concurrent use.
type Registry struct {
	payloads PayloadStore
	records  MetadataStore
	digests  *cache.Cache[*payload.Digest]
	now      func() time.Time
}

// NewRegistry builds a registry over the two stores. Payload digests are
// cached for digestTTL; a zero TTL disables caching.
func NewRegistry(payloads PayloadStore, records MetadataStore, digestTTL time.Duration) *Registry {
	r := &Registry{
		payloads: payloads,
		records:  records,
		now:      time.Now,
	}
	if digestTTL > 0 {
		r.digests = cache.New[*payload.Digest](digestTTL)
	}
	return r
}

// Close stops the digest cache sweeper.
func (r *Registry) Close() {
	if r.digests != nil {
		r.digests.Close()
	}
}

// PayloadPath returns the on-disk path of the payload for id.
func (r *Registry) PayloadPath(_ context.Context, id string) (string, error) {
	p, err := r.payloads.Path(id)
	if err != nil {
		return "", notFoundOr(id, err)
	}
	return p, nil
}

// digest returns the summary of id's payload, parsing the file only when
// the cache has no entry for its current size and modification time.
func (r *Registry) digest(id string) (*payload.Digest, string, error) {
	path, err := r.payloads.Path(id)
	if err != nil {
		return nil, "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, path, err
	}

	var key string
	if r.digests != nil {
		key = cache.GenerateKey("digest", map[string]interface{}{
			"path":  path,
			"size":  info.Size(),
			"mtime": info.ModTime().UnixNano(),
		})
		if d, ok := r.digests.Get(key); ok {
			metrics.DigestCacheHits.Inc()
			return d, path, nil
		}
		metrics.DigestCacheMisses.Inc()
	}

	p, err := payload.Load(path)
	if err != nil {
		return nil, path, err
	}
	d := payload.Summarize(p)
	if r.digests != nil {
		r.digests.Set(key, d)
	}
	return d, path, nil
}

// notFoundOr maps the stores' not-found errors to ErrNotFound.
func notFoundOr(id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidID) || errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

func payloadMissing(err error) bool {
	return errors.Is(err, storage.ErrNotFound) || errors.Is(err, os.ErrNotExist)
}

// logger returns the context logger tagged with id.
func logger(ctx context.Context, id string) *zerolog.Logger {
	return logging.Ctx(logging.ContextWithSubmissionID(ctx, id))
}
