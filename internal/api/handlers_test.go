// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package api

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/flockrl/internal/models"
	"github.com/tomtom215/flockrl/internal/storage"
	"github.com/tomtom215/flockrl/internal/submission"
	"github.com/tomtom215/flockrl/internal/supervisor"
)

const demoPayload = `{"frames":[{"t":0,"drone":{"x":1}}],"metadata":{"score":0.9,"success":true,"obstacles":[{"id":1}]}}`

// envelope decodes the response envelope with a typed data field.
type envelope[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data"`
	Error   *APIError `json:"error"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return env
}

type apiEnv struct {
	handler  http.Handler
	registry *submission.Registry
	renderer *supervisor.MockRenderer
	sessions *supervisor.SessionManager
}

func newAPIEnv(t *testing.T, maxUpload int64) *apiEnv {
	t.Helper()
	dir := t.TempDir()

	payloads, err := storage.NewPayloadStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	records, err := storage.NewMetadataStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	registry := submission.NewRegistry(payloads, records, time.Minute)
	t.Cleanup(registry.Close)

	tree, err := supervisor.NewSupervisorTree(slog.New(slog.NewTextHandler(io.Discard, nil)), supervisor.TreeConfig{
		FailureBackoff:  10 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)
	t.Cleanup(func() {
		cancel()
		<-errCh
	})

	renderer := supervisor.NewMockRenderer()
	sessions, err := supervisor.NewSessionManager(tree, registry, renderer, supervisor.DefaultSessionManagerConfig())
	if err != nil {
		t.Fatal(err)
	}

	mw := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})
	h := NewHandler(registry, sessions, HandlerConfig{MaxUploadBytes: maxUpload})
	return &apiEnv{
		handler:  NewRouter(h, mw).Setup(),
		registry: registry,
		renderer: renderer,
		sessions: sessions,
	}
}

func (e *apiEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) get(path string) *httptest.ResponseRecorder {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

// upload posts a multipart form. An empty fileName omits the file part.
func (e *apiEnv) upload(t *testing.T, fileName, body string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.WriteString(fw, body); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/submissions", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(req)
}

func (e *apiEnv) createDemo(t *testing.T) models.CreateResult {
	t.Helper()
	w := e.upload(t, "run.json", demoPayload, map[string]string{"title": "Demo", "tags": "a,b"})
	if w.Code != http.StatusOK {
		t.Fatalf("create: status = %d body = %s", w.Code, w.Body.String())
	}
	return decode[models.CreateResult](t, w).Data
}

func TestRootAndHealth(t *testing.T) {
	env := newAPIEnv(t, 0)

	w := env.get("/")
	if w.Code != http.StatusOK {
		t.Fatalf("GET / status = %d", w.Code)
	}
	info := decode[ServiceInfo](t, w).Data
	if info.Message != "FlockRL Backend API" || info.Version != Version {
		t.Errorf("GET / = %+v", info)
	}

	w = env.get("/health")
	health := decode[HealthStatus](t, w).Data
	if w.Code != http.StatusOK || health.Status != "healthy" {
		t.Errorf("GET /health = %d %+v", w.Code, health)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request ID header")
	}
}

func TestSubmissionLifecycle_DemoScenario(t *testing.T) {
	env := newAPIEnv(t, 0)
	created := env.createDemo(t)

	if created.Status != models.StatusReady || created.FrameCount != 1 || created.Title != "Demo" {
		t.Fatalf("create result = %+v", created)
	}

	t.Run("list", func(t *testing.T) {
		w := env.get("/api/submissions")
		list := decode[SubmissionList](t, w).Data
		if len(list.Submissions) != 1 || list.Submissions[0].ID != created.ID {
			t.Fatalf("list = %+v", list)
		}
		if got := list.Submissions[0].Tags; len(got) != 2 || got[0] != "a" || got[1] != "b" {
			t.Errorf("tags = %v", got)
		}
	})

	t.Run("detail", func(t *testing.T) {
		w := env.get("/api/submissions/" + created.ID)
		detail := decode[models.SubmissionDetail](t, w).Data
		if w.Code != http.StatusOK || detail.ID != created.ID {
			t.Fatalf("detail = %d %+v", w.Code, detail)
		}
		if detail.FrameCount == nil || *detail.FrameCount != 1 {
			t.Errorf("frameCount = %v", detail.FrameCount)
		}
		if detail.ObstacleCount == nil || *detail.ObstacleCount != 1 {
			t.Errorf("obstacleCount = %v", detail.ObstacleCount)
		}
		if detail.LogFileName != "run.json" {
			t.Errorf("logFileName = %q", detail.LogFileName)
		}
	})

	t.Run("status", func(t *testing.T) {
		report := decode[models.StatusReport](t, env.get("/api/submissions/"+created.ID+"/status")).Data
		if report.Status != models.StatusReady || report.HasMetadata == nil || !*report.HasMetadata {
			t.Errorf("status = %+v", report)
		}
	})

	t.Run("data", func(t *testing.T) {
		summary := decode[models.RawSummary](t, env.get("/api/submissions/"+created.ID+"/data")).Data
		if summary.FrameCount != 1 || len(summary.Obstacles) != 1 || len(summary.FirstFrame) == 0 {
			t.Errorf("data = %+v", summary)
		}
	})

	t.Run("log", func(t *testing.T) {
		w := env.get("/api/submissions/" + created.ID + "/log")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
			t.Errorf("Content-Type = %q", ct)
		}
		if !strings.Contains(w.Body.String(), "\n  \"frames\"") {
			t.Errorf("log is not indented: %q", w.Body.String())
		}
	})

	t.Run("file", func(t *testing.T) {
		w := env.get("/api/submissions/" + created.ID + "/file")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if w.Body.String() != demoPayload {
			t.Errorf("file body = %q, want the upload verbatim", w.Body.String())
		}
		if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename=run.json" {
			t.Errorf("Content-Disposition = %q", cd)
		}
	})
}

func TestCreateSubmission_Rejections(t *testing.T) {
	env := newAPIEnv(t, 0)

	tests := []struct {
		name     string
		fileName string
		body     string
		fields   map[string]string
		code     string
	}{
		{"missing file", "", "", map[string]string{"title": "x"}, ErrCodeValidation},
		{"wrong extension", "run.exe", demoPayload, nil, ErrCodeBadRequest},
		{"not json", "run.json", "not json at all", nil, ErrCodeBadRequest},
		{"no frames", "run.json", `{"metadata":{}}`, nil, ErrCodeBadRequest},
		{"file name too long", strings.Repeat("r", 256) + ".json", demoPayload, nil, ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.upload(t, tt.fileName, tt.body, tt.fields)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body = %s", w.Code, w.Body.String())
			}
			resp := decode[any](t, w)
			if resp.Success || resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %s", resp.Error, tt.code)
			}
		})
	}

	if list := decode[SubmissionList](t, env.get("/api/submissions")).Data; len(list.Submissions) != 0 {
		t.Errorf("rejected uploads left %d submissions behind", len(list.Submissions))
	}
}

func TestCreateSubmission_NotMultipart(t *testing.T) {
	env := newAPIEnv(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/submissions", strings.NewReader(demoPayload))
	req.Header.Set("Content-Type", "application/json")
	w := env.do(req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateSubmission_TooLarge(t *testing.T) {
	env := newAPIEnv(t, 512)

	big := `{"frames":[` + strings.Repeat(`{"t":0},`, 200) + `{"t":1}]}`
	w := env.upload(t, "run.json", big, nil)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413; body = %s", w.Code, w.Body.String())
	}
	if resp := decode[any](t, w); resp.Error == nil || resp.Error.Code != ErrCodePayloadTooLarge {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestUnknownSubmission_NotFound(t *testing.T) {
	env := newAPIEnv(t, 0)
	const id = "sub-20260101000000-abcdef01"

	for _, path := range []string{
		"/api/submissions/" + id,
		"/api/submissions/" + id + "/status",
		"/api/submissions/" + id + "/data",
		"/api/submissions/" + id + "/log",
		"/api/submissions/" + id + "/file",
		"/api/submissions/..%2Fetc/file",
		"/api/submissions/sub-001",
		"/api/submissions/not-an-id/data",
	} {
		t.Run(path, func(t *testing.T) {
			w := env.get(path)
			if w.Code != http.StatusNotFound {
				t.Errorf("status = %d, want 404; body = %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestRenderSessions(t *testing.T) {
	env := newAPIEnv(t, 0)
	created := env.createDemo(t)
	scene := env.renderer.AddScene(created.ID, 1, 1)

	renderPath := "/api/submissions/" + created.ID + "/render"

	w := env.do(httptest.NewRequest(http.MethodPost, renderPath+"?port=8061", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("render: status = %d body = %s", w.Code, w.Body.String())
	}
	first := decode[models.RenderResult](t, w).Data
	if first.Reused || first.RenderURL != "http://127.0.0.1:8061/" || first.FrameCount != 1 {
		t.Errorf("first render = %+v", first)
	}

	second := decode[models.RenderResult](t, env.do(httptest.NewRequest(http.MethodPost, renderPath+"?port=8061", nil))).Data
	if !second.Reused || second.RenderURL != first.RenderURL {
		t.Errorf("second render = %+v, want reuse of %s", second, first.RenderURL)
	}

	list := decode[SessionList](t, env.get("/api/render/sessions")).Data
	if len(list.Sessions) != 1 || list.Sessions[0].SubmissionID != created.ID {
		t.Fatalf("sessions = %+v", list)
	}

	worker := scene.Worker(0)
	deadline := time.Now().Add(2 * time.Second)
	for worker.StartCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if w := env.do(httptest.NewRequest(http.MethodDelete, renderPath, nil)); w.Code != http.StatusNoContent {
		t.Errorf("stop: status = %d", w.Code)
	}
	if w := env.do(httptest.NewRequest(http.MethodDelete, renderPath, nil)); w.Code != http.StatusNotFound {
		t.Errorf("second stop: status = %d, want 404", w.Code)
	}
}

func TestRender_Errors(t *testing.T) {
	env := newAPIEnv(t, 0)
	created := env.createDemo(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"unknown submission", "/api/submissions/sub-20260101000000-abcdef01/render", http.StatusNotFound},
		// No scene registered: the payload exists but cannot be loaded.
		{"unloadable payload", "/api/submissions/" + created.ID + "/render", http.StatusNotFound},
		{"bad port", "/api/submissions/" + created.ID + "/render?port=http", http.StatusBadRequest},
		{"malformed id", "/api/submissions/sub-001/render", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(httptest.NewRequest(http.MethodPost, tt.path, nil))
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d; body = %s", w.Code, tt.status, w.Body.String())
			}
		})
	}
	if n := env.renderer.LoadCount(); n != 1 {
		t.Errorf("renderer loaded %d scenes, want 1 (only the stored submission)", n)
	}
}

func TestRouter_Fallbacks(t *testing.T) {
	env := newAPIEnv(t, 0)

	w := env.get("/api/nothing-here")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown route: status = %d", w.Code)
	}
	if resp := decode[any](t, w); resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("unknown route body = %s", w.Body.String())
	}

	w = env.do(httptest.NewRequest(http.MethodPut, "/api/submissions", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT: status = %d, want 405", w.Code)
	}
}
