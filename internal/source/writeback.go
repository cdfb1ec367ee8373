// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package source

import (
	"context"
	"sort"

	"golang.org/x/time/rate"

	"github.com/tomtom215/licensewatch/internal/logging"
	"github.com/tomtom215/licensewatch/internal/metrics"
)

// Update is one partial update destined for the legacy store.
type Update struct {
	Name   string
	Fields map[string]any
}

// WriteBackResult counts the outcome of one write-back batch.
type WriteBackResult struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// WriteBack sends partial updates at a bounded rate.
type WriteBack struct {
	src     Source
	limiter *rate.Limiter
}

// NewWriteBack paces updates to perSecond (burst 1). A non-positive rate
// sends without pacing.
func NewWriteBack(src Source, perSecond float64) *WriteBack {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &WriteBack{src: src, limiter: rate.NewLimiter(limit, 1)}
}

// Apply sends updates in name order. Individual failures are logged and
// counted; Apply stops early only when ctx ends.
func (w *WriteBack) Apply(ctx context.Context, updates []Update) WriteBackResult {
	sorted := make([]Update, 0, len(updates))
	for _, u := range updates {
		if u.Name != "" && len(u.Fields) > 0 {
			sorted = append(sorted, u)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var result WriteBackResult
	for _, u := range sorted {
		if err := w.limiter.Wait(ctx); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Int("remaining", len(sorted)-result.Attempted).Msg("Write-back interrupted")
			break
		}

		result.Attempted++
		if err := w.src.UpdateFields(ctx, u.Name, u.Fields); err != nil {
			result.Failed++
			metrics.SourceWriteBacks.WithLabelValues("failure").Inc()
			logging.Ctx(ctx).Warn().Err(err).Str("product", u.Name).Msg("Write-back failed")
			continue
		}
		result.Succeeded++
		metrics.SourceWriteBacks.WithLabelValues("success").Inc()
	}
	return result
}
