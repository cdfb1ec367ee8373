// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package api

import (
	"context"
	"net/http"
	"time"
)

// readinessTimeout bounds the edge cache ping of the readiness probe.
const readinessTimeout = 2 * time.Second

// HealthLive handles liveness probe requests. It always returns 200 while
// the process can serve HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 200 only when the edge cache answers a ping. Snapshot
// reads cannot be served without it.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	cacheErr := h.cache.Ping(ctx)
	ready := cacheErr == nil

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	body := map[string]any{
		"status":          status,
		"cache_reachable": ready,
		"uptime":          time.Since(h.startTime).Seconds(),
	}
	if cacheErr != nil {
		body["cache_error"] = cacheErr.Error()
	}
	respondJSON(w, statusCode, body)
}
