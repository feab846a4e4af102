// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// HTTPServer is the lifecycle subset of *http.Server used here.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// ListenerServer is an HTTPServer that can also serve a listener it did
// not open itself. *http.Server satisfies it.
type ListenerServer interface {
	HTTPServer
	Serve(ln net.Listener) error
}

// HTTPServerService runs an HTTP server as a suture service. Cancelling
// the context triggers Shutdown with shutdownTimeout.
//
//	server := &http.Server{Addr: ":8000", Handler: router}
//	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
type HTTPServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	name            string

	// listen is set for listener-bound services.
	listen func() (net.Listener, error)
}

// NewHTTPServerService wraps a server that opens its own address.
// A non-positive shutdownTimeout means 10s.
func NewHTTPServerService(server HTTPServer, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "http-server",
	}
}

// NewListenerService wraps a server that serves ln. The listener is bound
// by the caller so address errors surface before the tree starts; after a
// restart the service listens again on ln's address.
func NewListenerService(server ListenerServer, ln net.Listener, shutdownTimeout time.Duration) *HTTPServerService {
	svc := NewHTTPServerService(server, shutdownTimeout)
	svc.listen = ReuseListener(ln)
	svc.name = "http-server@" + ln.Addr().String()
	return svc
}

// ReuseListener returns a function that yields ln on its first call and a
// fresh listener on ln's address on every later call.
func ReuseListener(ln net.Listener) func() (net.Listener, error) {
	var (
		mu    sync.Mutex
		first = ln
	)
	addr := ln.Addr()
	return func() (net.Listener, error) {
		mu.Lock()
		defer mu.Unlock()
		if first != nil {
			l := first
			first = nil
			return l, nil
		}
		return net.Listen(addr.Network(), addr.String())
	}
}

// Serve implements suture.Service. It returns ctx.Err() after a graceful
// shutdown and the server's error if it stops on its own.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	run := h.server.ListenAndServe
	if h.listen != nil {
		ln, err := h.listen()
		if err != nil {
			return fmt.Errorf("http server listen: %w", err)
		}
		srv := h.server.(ListenerServer)
		run = func() error { return srv.Serve(ln) }
	}

	errCh := make(chan error, 1)
	go func() {
		if err := run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// ctx is already cancelled; Shutdown gets its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

// String implements fmt.Stringer for suture's event log.
func (h *HTTPServerService) String() string {
	return h.name
}
