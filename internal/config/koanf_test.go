// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// isolateConfigFile points CONFIG_PATH at a file that does not exist and
// moves into an empty directory so no stray config.yaml is picked up.
func isolateConfigFile(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Storage.UploadDir != "uploads" {
		t.Errorf("Storage.UploadDir = %q, want uploads", cfg.Storage.UploadDir)
	}
	if cfg.Render.DefaultHost != "127.0.0.1" || cfg.Render.DefaultPort != 8050 {
		t.Errorf("Render default address = %s:%d, want 127.0.0.1:8050", cfg.Render.DefaultHost, cfg.Render.DefaultPort)
	}
	if cfg.Render.FrameInterval != 100*time.Millisecond {
		t.Errorf("Render.FrameInterval = %v, want 100ms", cfg.Render.FrameInterval)
	}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, []string{"http://localhost:3000"}) {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadWithKoanf_Defaults(t *testing.T) {
	isolateConfigFile(t)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Addr() != "0.0.0.0:8000" {
		t.Errorf("Server.Addr() = %q", cfg.Server.Addr())
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	isolateConfigFile(t)
	t.Setenv("HTTP_PORT", "9001")
	t.Setenv("UPLOAD_DIR", "/srv/flockrl")
	t.Setenv("RENDER_PORT", "8123")
	t.Setenv("RENDER_FRAME_INTERVAL", "40ms")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UNRELATED_VARIABLE", "ignored")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("Server.Port = %d, want 9001", cfg.Server.Port)
	}
	if cfg.Storage.UploadDir != "/srv/flockrl" {
		t.Errorf("Storage.UploadDir = %q", cfg.Storage.UploadDir)
	}
	if cfg.Render.DefaultPort != 8123 {
		t.Errorf("Render.DefaultPort = %d, want 8123", cfg.Render.DefaultPort)
	}
	if cfg.Render.FrameInterval != 40*time.Millisecond {
		t.Errorf("Render.FrameInterval = %v, want 40ms", cfg.Render.FrameInterval)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, want) {
		t.Errorf("Security.CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoadWithKoanf_YAMLFile(t *testing.T) {
	dir := isolateConfigFile(t)
	path := filepath.Join(dir, "flockrl.yaml")
	yaml := []byte(`
server:
  port: 8800
storage:
  upload_dir: /data/uploads
render:
  default_port: 9050
security:
  cors_origins:
    - https://flockrl.example.com
`)
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "8900") // env beats file

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 8900 {
		t.Errorf("Server.Port = %d, want env value 8900", cfg.Server.Port)
	}
	if cfg.Storage.UploadDir != "/data/uploads" {
		t.Errorf("Storage.UploadDir = %q", cfg.Storage.UploadDir)
	}
	if cfg.Render.DefaultPort != 9050 {
		t.Errorf("Render.DefaultPort = %d", cfg.Render.DefaultPort)
	}
	if !reflect.DeepEqual(cfg.Security.CORSOrigins, []string{"https://flockrl.example.com"}) {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	// untouched keys keep their defaults
	if cfg.Render.DefaultHost != "127.0.0.1" {
		t.Errorf("Render.DefaultHost = %q", cfg.Render.DefaultHost)
	}
}

func TestLoadWithKoanf_InvalidFails(t *testing.T) {
	isolateConfigFile(t)
	t.Setenv("HTTP_PORT", "70000")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected validation error for out-of-range port")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"HTTP_PORT":          "server.port",
		"upload_dir":         "storage.upload_dir",
		"RENDER_HOST":        "render.default_host",
		"DISABLE_RATE_LIMIT": "security.rate_limit_disabled",
		"PATH":               "",
		"HOME":               "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}
