// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/licensewatch/internal/cache"
	"github.com/tomtom215/licensewatch/internal/config"
	"github.com/tomtom215/licensewatch/internal/logging"
	"github.com/tomtom215/licensewatch/internal/models"
)

// NotPopulatedMessage is the error text of the empty-state payload.
const NotPopulatedMessage = "not populated"

// ReadResult is the outcome of reading one snapshot key.
type ReadResult struct {
	Found       bool
	Data        []byte
	LastUpdated time.Time
}

// NotPopulatedResponse is served with 404 before the first successful refresh.
type NotPopulatedResponse struct {
	Error       string     `json:"error"`
	Key         string     `json:"key"`
	Summary     any        `json:"summary"`
	Statuses    any        `json:"statuses,omitempty"`
	DownList    any        `json:"downList,omitempty"`
	LastUpdated *time.Time `json:"lastUpdated"`
}

// Reader serves published snapshots. It never triggers a refresh.
type Reader struct {
	store                cache.Store
	sMaxAge              time.Duration
	staleWhileRevalidate time.Duration
}

// NewReader creates a reader with the shared-cache windows from cfg.
func NewReader(store cache.Store, cfg config.ReaderConfig) *Reader {
	return &Reader{
		store:                store,
		sMaxAge:              cfg.SMaxAge,
		staleWhileRevalidate: cfg.StaleWhileRevalidate,
	}
}

// Read returns the bytes stored under key. A key that was never written
// yields Found=false and a nil error.
func (r *Reader) Read(ctx context.Context, key string) (ReadResult, error) {
	data, err := r.store.Get(ctx, key)
	if errors.Is(err, cache.ErrNotFound) {
		return ReadResult{}, nil
	}
	if err != nil {
		return ReadResult{}, fmt.Errorf("read %s: %w", key, err)
	}

	result := ReadResult{Found: true, Data: data}
	result.LastUpdated = r.lastUpdated(ctx)
	return result, nil
}

// lastUpdated is best effort: a missing or unparsable stamp yields zero time.
func (r *Reader) lastUpdated(ctx context.Context) time.Time {
	raw, err := r.store.Get(ctx, cache.KeyLastUpdated)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			logging.Ctx(ctx).Debug().Err(err).Msg("last_updated read failed")
		}
		return time.Time{}
	}
	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(string(raw)))
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("value", string(raw)).Msg("last_updated is not RFC3339")
		return time.Time{}
	}
	return ts
}

// CacheControl returns the shared-cache directives for read responses.
func (r *Reader) CacheControl() string {
	return fmt.Sprintf("public, max-age=0, s-maxage=%d, stale-while-revalidate=%d",
		int(r.sMaxAge.Seconds()), int(r.staleWhileRevalidate.Seconds()))
}

// NotPopulated builds the empty-state payload for key with a zeroed summary.
func NotPopulated(key string) NotPopulatedResponse {
	resp := NotPopulatedResponse{
		Error: NotPopulatedMessage,
		Key:   key,
	}
	switch key {
	case cache.KeyLivenessStatus:
		resp.Summary = models.LivenessSummary{}
		resp.Statuses = map[string]int{}
		resp.DownList = []models.ProbeResult{}
	default:
		resp.Summary = models.CatalogSummary{BySubUnit: map[string]int{}}
	}
	return resp
}
