// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/licensewatch/internal/middleware"
)

// Authenticator guards the refresh triggers. *auth.Authenticator satisfies it.
type Authenticator interface {
	Middleware(next http.Handler) http.Handler
}

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	auth          Authenticator
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil mwConfig uses the defaults.
func NewRouter(handler *Handler, authenticator Authenticator, mwConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		auth:          authenticator,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// SetupChi configures all HTTP routes using Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to ALL routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.GetHead)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	// Dashboard reads: cached bytes only, never pipeline work
	r.Group(func(r chi.Router) {
		r.Use(middleware.Compression)
		r.Get("/snapshot", router.handler.Snapshot)
		r.Get("/status", router.handler.Status)
	})

	// Refresh triggers: rate limit before auth so brute force attempts are throttled
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(router.auth.Middleware)
		r.Post("/refresh", router.handler.Refresh)
		r.Post("/refresh-status", router.handler.RefreshStatus)
	})

	return r
}
