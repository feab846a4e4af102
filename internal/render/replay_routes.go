// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package render

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/tomtom215/flockrl/internal/logging"
	"github.com/tomtom215/flockrl/internal/websocket"
)

const (
	defaultFramePage = 100
	maxFramePage     = 1000
)

type framePage struct {
	Offset int               `json:"offset"`
	Limit  int               `json:"limit"`
	Total  int               `json:"total"`
	Frames []json.RawMessage `json:"frames"`
}

func (w *replayWorker) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", func(rw http.ResponseWriter, _ *http.Request) {
		writeJSON(rw, http.StatusOK, w.info())
	})
	r.Get("/frames", w.handleFrames)
	r.Get("/frames/{index}", w.handleFrame)
	r.Get("/obstacles", func(rw http.ResponseWriter, _ *http.Request) {
		obstacles := w.scene.obstacles
		if obstacles == nil {
			obstacles = []json.RawMessage{}
		}
		writeJSON(rw, http.StatusOK, map[string]interface{}{"obstacles": obstacles})
	})
	r.Get("/metadata", func(rw http.ResponseWriter, _ *http.Request) {
		writeJSON(rw, http.StatusOK, map[string]interface{}{"metadata": w.scene.payload.Metadata.Raw()})
	})
	r.Get("/ws", func(rw http.ResponseWriter, req *http.Request) {
		websocket.ServeWS(w.hub, &w.upgrader, rw, req)
	})
	return r
}

func (w *replayWorker) handleFrames(rw http.ResponseWriter, r *http.Request) {
	offset, ok := intParam(r, "offset", 0)
	if !ok || offset < 0 {
		writeError(rw, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}
	limit, ok := intParam(r, "limit", defaultFramePage)
	if !ok || limit < 1 || limit > maxFramePage {
		writeError(rw, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxFramePage))
		return
	}

	frames := w.scene.payload.Frames
	page := framePage{Offset: offset, Limit: limit, Total: len(frames), Frames: []json.RawMessage{}}
	if offset < len(frames) {
		end := min(offset+limit, len(frames))
		page.Frames = frames[offset:end]
	}
	writeJSON(rw, http.StatusOK, page)
}

func (w *replayWorker) handleFrame(rw http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	frames := w.scene.payload.Frames
	if err != nil || index < 0 || index >= len(frames) {
		writeError(rw, http.StatusNotFound, "frame not found")
		return
	}
	writeJSON(rw, http.StatusOK, frameMessage{Index: index, Frame: frames[index]})
}

func intParam(r *http.Request, name string, def int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func writeJSON(rw http.ResponseWriter, status int, v interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(v); err != nil {
		logging.Debug().Err(err).Msg("Failed to write render response")
	}
}

func writeError(rw http.ResponseWriter, status int, msg string) {
	writeJSON(rw, status, map[string]string{"error": msg})
}
