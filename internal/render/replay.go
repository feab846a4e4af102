// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package render

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	gws "github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tomtom215/flockrl/internal/logging"
	"github.com/tomtom215/flockrl/internal/metrics"
	"github.com/tomtom215/flockrl/internal/payload"
	"github.com/tomtom215/flockrl/internal/websocket"
)

// ReplayConfig tunes the replay renderer.
type ReplayConfig struct {
	// FrameInterval is the playback pace, one frame per interval.
	FrameInterval time.Duration
	// ShutdownTimeout bounds the graceful stop of a worker's HTTP server.
	ShutdownTimeout time.Duration
	// CheckOrigin validates websocket origins. nil accepts same-origin
	// requests only.
	CheckOrigin func(r *http.Request) bool
}

// ReplayRenderer serves a payload's frames over HTTP and streams them to
// websocket viewers in a loop. It is the renderer used when no external
// plotting renderer is configured.
type ReplayRenderer struct {
	cfg ReplayConfig
}

// NewReplayRenderer returns a renderer using cfg. Zero durations fall back
// to one frame per payload.SecondsPerFrame and a 5s shutdown.
func NewReplayRenderer(cfg ReplayConfig) *ReplayRenderer {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = time.Duration(payload.SecondsPerFrame * float64(time.Second))
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	return &ReplayRenderer{cfg: cfg}
}

// Load implements Renderer.
func (r *ReplayRenderer) Load(_ context.Context, id, path string) (Scene, error) {
	p, err := payload.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSceneUnavailable, id, err)
	}
	return &replayScene{id: id, payload: p, obstacles: p.Obstacles(), cfg: r.cfg}, nil
}

type replayScene struct {
	id        string
	payload   *payload.Payload
	obstacles []json.RawMessage
	cfg       ReplayConfig
}

func (s *replayScene) FrameCount() int    { return s.payload.FrameCount() }
func (s *replayScene) ObstacleCount() int { return len(s.obstacles) }

// Bind implements Scene.
func (s *replayScene) Bind(addr string) (Worker, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBindFailed, addr, err)
	}
	w := &replayWorker{
		scene: s,
		addr:  ln.Addr().String(),
		ln:    ln,
		hub:   websocket.NewHub(s.id),
	}
	w.upgrader = websocket.Upgrader(s.cfg.CheckOrigin)
	w.hub.SetWelcome(func() *websocket.Message {
		info := w.info()
		info.Obstacles = s.obstacles
		return &websocket.Message{Type: websocket.MessageTypeScene, Data: info}
	})
	return w, nil
}

// sceneInfo is served at / and sent to each viewer on connect.
type sceneInfo struct {
	ID              string            `json:"id"`
	FrameCount      int               `json:"frame_count"`
	ObstacleCount   int               `json:"obstacle_count"`
	FrameIntervalMs int64             `json:"frame_interval_ms"`
	Viewers         int               `json:"viewers"`
	Obstacles       []json.RawMessage `json:"obstacles,omitempty"`
}

// frameMessage is the payload of a websocket frame message.
type frameMessage struct {
	Index int             `json:"index"`
	Frame json.RawMessage `json:"frame"`
}

type replayWorker struct {
	scene    *replayScene
	addr     string
	hub      *websocket.Hub
	upgrader gws.Upgrader

	mu sync.Mutex
	ln net.Listener
}

func (w *replayWorker) Addr() string { return w.addr }

// Close implements Worker.
func (w *replayWorker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ln == nil {
		return nil
	}
	err := w.ln.Close()
	w.ln = nil
	return err
}

// listener hands over the listener from Bind, or opens a new one when a
// previous Serve consumed it.
func (w *replayWorker) listener() (net.Listener, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ln := w.ln; ln != nil {
		w.ln = nil
		return ln, nil
	}
	ln, err := net.Listen("tcp", w.addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBindFailed, w.addr, err)
	}
	return ln, nil
}

// Serve implements Worker. The hub, the player and the HTTP server run as
// one group: if any of them fails the others are stopped and Serve returns
// the error.
func (w *replayWorker) Serve(ctx context.Context) error {
	ln, err := w.listener()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           w.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log := logging.With().Str("submission_id", w.scene.id).Str("addr", w.addr).Logger()
	log.Info().Int("frame_count", w.scene.FrameCount()).Msg("Render worker serving")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := w.hub.RunWithContext(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return w.play(gctx)
	})
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("render server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), w.scene.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("render server shutdown: %w", err)
		}
		return nil
	})

	err = g.Wait()
	if ctx.Err() != nil {
		log.Info().Msg("Render worker stopped")
		return ctx.Err()
	}
	if err == nil {
		err = errors.New("render worker exited unexpectedly")
	}
	return err
}

// play advances the replay one frame per interval and loops at the end.
// Frames are only encoded while someone is watching.
func (w *replayWorker) play(ctx context.Context) error {
	frames := w.scene.payload.Frames
	if len(frames) == 0 {
		<-ctx.Done()
		return nil
	}

	limiter := rate.NewLimiter(rate.Every(w.scene.cfg.FrameInterval), 1)
	for i := 0; ; i = (i + 1) % len(frames) {
		if err := limiter.Wait(ctx); err != nil {
			return nil
		}
		if w.hub.GetClientCount() == 0 {
			continue
		}
		if i == 0 {
			w.hub.Broadcast(websocket.MessageTypeLoop, map[string]int{"frame_count": len(frames)})
		}
		if w.hub.Broadcast(websocket.MessageTypeFrame, frameMessage{Index: i, Frame: frames[i]}) {
			metrics.RenderFramesBroadcast.Inc()
		}
	}
}

func (w *replayWorker) info() sceneInfo {
	return sceneInfo{
		ID:              w.scene.id,
		FrameCount:      w.scene.FrameCount(),
		ObstacleCount:   w.scene.ObstacleCount(),
		FrameIntervalMs: w.scene.cfg.FrameInterval.Milliseconds(),
		Viewers:         w.hub.GetClientCount(),
	}
}
