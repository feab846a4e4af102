// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("GET", "/api/submissions/{id}", "200")
	before := testutil.ToFloat64(counter)

	RecordAPIRequest("GET", "/api/submissions/{id}", "200", 15*time.Millisecond)

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("api_requests_total delta = %v, want 1", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("api_active_requests delta = %v, want 1", got)
	}
	TrackActiveRequest(false)
}

func TestRecordSubmissionCreated(t *testing.T) {
	before := testutil.ToFloat64(SubmissionsCreated)
	RecordSubmissionCreated(4096)
	if got := testutil.ToFloat64(SubmissionsCreated) - before; got != 1 {
		t.Errorf("submissions_created_total delta = %v, want 1", got)
	}
}

func TestRecordSubmissionFailure(t *testing.T) {
	tests := []string{"invalid_type", "invalid_schema", "storage"}
	for _, reason := range tests {
		c := SubmissionCreateFailures.WithLabelValues(reason)
		before := testutil.ToFloat64(c)
		RecordSubmissionFailure(reason)
		if got := testutil.ToFloat64(c) - before; got != 1 {
			t.Errorf("%s delta = %v, want 1", reason, got)
		}
	}
}

func TestRecordRenderStart(t *testing.T) {
	c := RenderSessionStarts.WithLabelValues("reused")
	before := testutil.ToFloat64(c)
	RecordRenderStart("reused")
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("render_session_starts_total{reused} delta = %v, want 1", got)
	}
}

func TestTrackViewer(t *testing.T) {
	before := testutil.ToFloat64(RenderViewersActive)
	TrackViewer(true)
	TrackViewer(false)
	if got := testutil.ToFloat64(RenderViewersActive); got != before {
		t.Errorf("render_viewers_active = %v, want %v", got, before)
	}
}
