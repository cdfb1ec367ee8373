// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package api

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/licensewatch/internal/cache"
	"github.com/tomtom215/licensewatch/internal/pipeline"
	"github.com/tomtom215/licensewatch/internal/snapshot"
)

// Refresher runs pipeline passes. *pipeline.Runner satisfies it.
type Refresher interface {
	RunCatalog(ctx context.Context) (*pipeline.CatalogResult, error)
	RunLiveness(ctx context.Context) (*pipeline.LivenessResult, error)
}

// Pinger reports edge cache reachability for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers_refresh.go: authenticated refresh triggers
//   - handlers_snapshot.go: cached snapshot reads
//   - handlers_health.go: liveness and readiness probes
type Handler struct {
	refresher      Refresher
	reader         *snapshot.Reader
	cache          Pinger
	refreshTimeout time.Duration
	startTime      time.Time
}

// NewHandler creates a new API handler. refreshTimeout bounds one pass
// started from an HTTP trigger; zero means no bound beyond the caller's.
func NewHandler(refresher Refresher, reader *snapshot.Reader, store cache.Store, refreshTimeout time.Duration) (*Handler, error) {
	switch {
	case refresher == nil:
		return nil, errors.New("api: refresher is required")
	case reader == nil:
		return nil, errors.New("api: snapshot reader is required")
	case store == nil:
		return nil, errors.New("api: cache store is required")
	}
	return &Handler{
		refresher:      refresher,
		reader:         reader,
		cache:          store,
		refreshTimeout: refreshTimeout,
		startTime:      time.Now(),
	}, nil
}
