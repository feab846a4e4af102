// FlockRL - Simulation Run Submission Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flockrl

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/flockrl/internal/middleware"
)

// compressionLevel is the gzip level for JSON and text responses.
const compressionLevel = 5

// Router binds the handlers to their routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil middleware set uses the defaults.
func NewRouter(handler *Handler, chiMw *ChiMiddleware) *Router {
	if chiMw == nil {
		chiMw = NewChiMiddleware(DefaultChiMiddlewareConfig())
	}
	return &Router{handler: handler, chiMiddleware: chiMw}
}

// Setup builds the route tree.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Order matters: the request ID must exist before anything logs, and
	// CORS must run before the limiters so preflights are answered.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)
	r.Use(APISecurityHeaders())
	r.Use(chimiddleware.Compress(compressionLevel))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", router.handler.Root)
		r.Get("/health", router.handler.Health)
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		r.Route("/submissions", func(r chi.Router) {
			r.With(router.chiMiddleware.RateLimitUpload()).Post("/", router.handler.CreateSubmission)
			r.Get("/", router.handler.ListSubmissions)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(SubmissionIDParam)
				r.Get("/", router.handler.GetSubmission)
				r.Get("/status", router.handler.GetSubmissionStatus)
				r.Get("/data", router.handler.GetSubmissionData)
				r.Get("/log", router.handler.GetSubmissionLog)
				r.Get("/file", router.handler.DownloadSubmissionFile)

				r.With(router.chiMiddleware.RateLimitRender()).Post("/render", router.handler.StartRender)
				r.Delete("/render", router.handler.StopRender)
			})
		})

		r.Get("/render/sessions", router.handler.ListRenderSessions)
	})

	return r
}
