// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/licensewatch/internal/cache"
	"github.com/tomtom215/licensewatch/internal/snapshot"
)

// LastUpdatedHeader carries the publish time of the served snapshot.
const LastUpdatedHeader = "X-Last-Updated"

// Snapshot serves the trimmed catalog snapshot.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	h.serveSnapshot(w, r, cache.KeyPrimarySnapshot)
}

// Status serves the liveness snapshot.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	h.serveSnapshot(w, r, cache.KeyLivenessStatus)
}

// serveSnapshot writes the bytes stored under key verbatim. Cache-Control
// is set on every outcome so edge caches apply the same windows to 404s.
func (h *Handler) serveSnapshot(w http.ResponseWriter, r *http.Request, key string) {
	w.Header().Set("Cache-Control", h.reader.CacheControl())

	result, err := h.reader.Read(r.Context(), key)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "edge cache unavailable", err)
		return
	}

	if !result.Found {
		respondJSON(w, http.StatusNotFound, snapshot.NotPopulated(key))
		return
	}

	etag := generateETag(result.Data)
	w.Header().Set("ETag", etag)
	if !result.LastUpdated.IsZero() {
		w.Header().Set(LastUpdatedHeader, result.LastUpdated.UTC().Format(time.RFC3339Nano))
		w.Header().Set("Last-Modified", result.LastUpdated.UTC().Format(http.TimeFormat))
	}

	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	writeJSONBytes(w, http.StatusOK, result.Data)
}
