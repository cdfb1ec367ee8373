// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

/*
Package middleware provides chi-compatible HTTP middleware for the
Licensewatch API.

Key Components:

  - RequestID: request and correlation IDs for structured logging
  - PrometheusMetrics: request count, latency and in-flight gauge keyed by
    chi route pattern
  - Compression: gzip for snapshot reads

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.With(middleware.Compression).Get("/snapshot", h.Snapshot)

Authentication for the refresh trigger lives in internal/auth.
*/
package middleware
