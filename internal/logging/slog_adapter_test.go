// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := NewSlogHandlerWithLogger(zerolog.New(nil).Level(zerolog.WarnLevel))
	tests := []struct {
		level slog.Level
		want  bool
	}{
		{slog.LevelDebug, false},
		{slog.LevelInfo, false},
		{slog.LevelWarn, true},
		{slog.LevelError, true},
	}
	for _, tt := range tests {
		if got := h.Enabled(context.Background(), tt.level); got != tt.want {
			t.Errorf("Enabled(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestSlogHandler_Handle(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))

	logger.Warn("service restarted",
		slog.String("service", "render-sub-1"),
		slog.Int("restarts", 2),
		slog.Bool("backoff", true),
		slog.Duration("wait", time.Second),
	)

	out := buf.String()
	for _, want := range []string{
		`"level":"warn"`,
		`"service":"render-sub-1"`,
		`"restarts":2`,
		`"backoff":true`,
		`"message":"service restarted"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}

func TestSlogHandler_WithAttrsAndGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	var h slog.Handler = NewSlogHandlerWithLogger(zerolog.New(&buf))
	h = h.WithAttrs([]slog.Attr{slog.String("tree", "flockrl")})
	h = h.WithGroup("supervisor").WithGroup("layer")
	slog.New(h).Info("event", slog.String("name", "render"))

	out := buf.String()
	// Attributes fixed before a group opens stay outside it.
	if !strings.Contains(out, `"tree":"flockrl"`) || strings.Contains(out, "layer.tree") {
		t.Errorf("preset attr wrongly grouped: %s", out)
	}
	if !strings.Contains(out, `"supervisor.layer.name":"render"`) {
		t.Errorf("grouped record attr missing: %s", out)
	}
}

func TestSlogHandler_WithGroupEmpty(t *testing.T) {
	t.Parallel()

	h := NewSlogHandler()
	if h.WithGroup("") != h {
		t.Error("empty group should return the same handler")
	}
}

func TestFlatten_GroupValue(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))
	logger.Info("x",
		slog.Group("session", slog.String("id", "sub-1"), slog.Int("port", 8050)),
		slog.Group("", slog.String("inlined", "yes")),
		slog.String("", "dropped"),
	)

	out := buf.String()
	if !strings.Contains(out, `"session.id":"sub-1"`) || !strings.Contains(out, `"session.port":8050`) {
		t.Errorf("group attrs not flattened: %s", out)
	}
	if !strings.Contains(out, `"inlined":"yes"`) || strings.Contains(out, "dropped") {
		t.Errorf("empty keys mishandled: %s", out)
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelError + 4, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := slogToZerologLevel(tt.in); got != tt.want {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewSlogLogger(t *testing.T) {
	if NewSlogLogger() == nil {
		t.Fatal("NewSlogLogger returned nil")
	}
}
