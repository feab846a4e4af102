// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the full service configuration. Load it with LoadWithKoanf.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Storage    StorageConfig    `koanf:"storage"`
	Render     RenderConfig     `koanf:"render"`
	Security   SecurityConfig   `koanf:"security"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// StorageConfig locates the submission directory.
type StorageConfig struct {
	// UploadDir holds both payload files and their metadata records.
	UploadDir string `koanf:"upload_dir"`

	// MaxUploadBytes caps the multipart body of a single upload.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// DigestCacheTTL is how long a parsed payload digest (frame count,
	// metrics, obstacles) is reused before the file is parsed again.
	DigestCacheTTL time.Duration `koanf:"digest_cache_ttl"`
}

// RenderConfig holds defaults for render sessions.
type RenderConfig struct {
	DefaultHost        string        `koanf:"default_host"`
	DefaultPort        int           `koanf:"default_port"`
	FrameInterval      time.Duration `koanf:"frame_interval"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout"`
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// SecurityConfig holds the browser-facing protections. FlockRL has no
// authentication; CORS and rate limiting are all there is.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// SupervisorConfig tunes suture restart behaviour.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
