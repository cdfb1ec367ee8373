// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/licensewatch/internal/auth"
	"github.com/tomtom215/licensewatch/internal/logging"
	"github.com/tomtom215/licensewatch/internal/pipeline"
)

type catalogRefreshResponse struct {
	Success bool `json:"success"`
	*pipeline.CatalogResult
}

type livenessRefreshResponse struct {
	Success bool `json:"success"`
	*pipeline.LivenessResult
}

// Refresh runs one catalog pass: fetch, normalize, categorize, trim and
// publish. The caller has already been authenticated by auth.Middleware.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.passContext(r)
	defer cancel()

	result, err := h.refresher.RunCatalog(ctx)
	if err != nil {
		h.respondPassError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, catalogRefreshResponse{Success: true, CatalogResult: result})
}

// RefreshStatus runs one liveness pass over every product URL and
// publishes the status snapshot.
func (h *Handler) RefreshStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.passContext(r)
	defer cancel()

	result, err := h.refresher.RunLiveness(ctx)
	if err != nil {
		h.respondPassError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, livenessRefreshResponse{Success: true, LivenessResult: result})
}

// passContext detaches the pass from client disconnects so a scheduler
// that gives up early cannot leave a half-written publish behind. The
// request's logging values are kept.
func (h *Handler) passContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(r.Context())
	if caller, ok := auth.CallerFromContext(ctx); ok {
		logging.Ctx(ctx).Info().
			Str("method", caller.Method).
			Str("subject", sanitizeLogValue(caller.Subject)).
			Str("path", r.URL.Path).
			Msg("Refresh triggered")
	}
	if h.refreshTimeout > 0 {
		return context.WithTimeout(ctx, h.refreshTimeout)
	}
	return context.WithCancel(ctx)
}

func (h *Handler) respondPassError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Ctx(r.Context()).Error().
		Str("stage", pipeline.StageOf(err)).
		Str("error", sanitizeLogValue(err.Error())).
		Msg("Refresh pass failed")
	respondJSON(w, http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Error:   err.Error(),
		Stage:   pipeline.StageOf(err),
	})
}
