// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/flockrl/internal/api"
	"github.com/tomtom215/flockrl/internal/config"
	"github.com/tomtom215/flockrl/internal/logging"
	"github.com/tomtom215/flockrl/internal/render"
	"github.com/tomtom215/flockrl/internal/storage"
	"github.com/tomtom215/flockrl/internal/submission"
	"github.com/tomtom215/flockrl/internal/supervisor"
	"github.com/tomtom215/flockrl/internal/supervisor/services"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("upload_dir", cfg.Storage.UploadDir).
		Str("addr", cfg.Server.Addr()).
		Str("environment", cfg.Server.Environment).
		Msg("Starting FlockRL")

	// Storage and registry
	payloads, err := storage.NewPayloadStore(cfg.Storage.UploadDir)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open payload store")
	}
	records, err := storage.NewMetadataStore(cfg.Storage.UploadDir)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open metadata store")
	}
	registry := submission.NewRegistry(payloads, records, cfg.Storage.DigestCacheTTL)
	defer registry.Close()

	// Rendering
	renderer := render.NewReplayRenderer(render.ReplayConfig{
		FrameInterval:   cfg.Render.FrameInterval,
		ShutdownTimeout: cfg.Render.ShutdownTimeout,
		CheckOrigin:     newOriginChecker(cfg.Security.CORSOrigins),
	})
	breaker := render.NewBreaker(cfg.Render.BreakerMaxFailures, cfg.Render.BreakerTimeout)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: cfg.Supervisor.FailureThreshold,
		FailureBackoff:   cfg.Supervisor.FailureBackoff,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	sessions, err := supervisor.NewSessionManager(tree, registry, renderer, supervisor.SessionManagerConfig{
		DefaultHost: cfg.Render.DefaultHost,
		DefaultPort: cfg.Render.DefaultPort,
		StopTimeout: cfg.Render.ShutdownTimeout + time.Second,
		Breaker:     breaker,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create render session manager")
	}

	// HTTP
	mwConfig := api.DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mwConfig.RateLimitRequests = cfg.Security.RateLimitReqs
	mwConfig.RateLimitWindow = cfg.Security.RateLimitWindow
	mwConfig.RateLimitDisabled = cfg.Security.RateLimitDisabled

	handler := api.NewHandler(registry, sessions, api.HandlerConfig{MaxUploadBytes: cfg.Storage.MaxUploadBytes})
	router := api.NewRouter(handler, api.NewChiMiddleware(mwConfig))

	server := &http.Server{
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		logging.Fatal().Err(err).Str("addr", cfg.Server.Addr()).Msg("Failed to bind HTTP listener")
	}
	tree.AddAPIService(services.NewListenerService(server, ln, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", ln.Addr().String()).Msg("HTTP server service added")

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The tree gets its own context so render sessions can be stopped
	// through it after a signal, before the tree itself goes down.
	treeCtx, cancelTree := context.WithCancel(context.Background())
	defer cancelTree()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(treeCtx)

	treeDone := false
	select {
	case <-sigCtx.Done():
		logging.Info().Msg("Received shutdown signal")
	case err := <-errCh:
		treeDone = true
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	// A second signal kills the process the default way.
	stop()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	if err := sessions.StopAll(stopCtx); err != nil {
		logging.Warn().Err(err).Msg("Render sessions did not stop cleanly")
	}
	cancelStop()

	cancelTree()
	if !treeDone {
		if err := awaitTree(errCh, cfg.Server.ShutdownTimeout+cfg.Render.ShutdownTimeout); err != nil {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	logging.Info().Msg("FlockRL stopped gracefully")
}

// awaitTree waits for the single result ServeBackground delivers. The
// channel is never closed, so it must not be ranged over.
func awaitTree(errCh <-chan error, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("supervisor tree still running after %s", timeout)
	}
}
