// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/licensewatch/internal/cache"
	"github.com/tomtom215/licensewatch/internal/logging"
	"github.com/tomtom215/licensewatch/internal/mapper"
	"github.com/tomtom215/licensewatch/internal/metrics"
	"github.com/tomtom215/licensewatch/internal/models"
	"github.com/tomtom215/licensewatch/internal/probe"
)

// Target list origins
const (
	TargetsFromSource = "source"
	TargetsFromCache  = "cache"
)

// LivenessResult summarizes a successful liveness pass.
type LivenessResult struct {
	PassID         string                 `json:"passId"`
	Timestamp      time.Time              `json:"timestamp"`
	Summary        models.LivenessSummary `json:"summary"`
	DownList       []models.ProbeResult   `json:"downList"`
	Targets        string                 `json:"targets"`
	TimestampError string                 `json:"timestampError,omitempty"`
	Duration       time.Duration          `json:"-"`
}

// RunLiveness executes one liveness pass.
func (r *Runner) RunLiveness(ctx context.Context) (result *LivenessResult, err error) {
	start := r.now()
	passID := newPassID()
	log := logging.Ctx(ctx).With().Str("pass_id", passID).Str("path", metrics.PathLiveness).Logger()
	defer func() {
		metrics.RecordRefresh(metrics.PathLiveness, time.Since(start), err)
		if err != nil {
			log.Error().Err(err).Str("stage", StageOf(err)).Msg("Liveness refresh failed")
		}
	}()

	log.Info().Msg("Liveness refresh started")

	targets, origin, err := r.targets(ctx)
	if err != nil {
		return nil, err
	}
	log.Info().Int("targets", len(targets)).Str("origin", origin).Msg("Probe targets loaded")

	results := r.prober.ProbeAll(ctx, targets)
	snap := probe.BuildSnapshot(results, r.now())
	if snap.Summary.Total > 0 {
		metrics.ProbeUpRatio.Set(float64(snap.Summary.Up) / float64(snap.Summary.Total))
	}

	published, err := r.publisher.PublishLiveness(ctx, &snap)
	if err != nil {
		return nil, stageErr(StagePublish, ErrPublish, err)
	}

	result = &LivenessResult{
		PassID:         passID,
		Timestamp:      published.Timestamp,
		Summary:        snap.Summary,
		DownList:       snap.Down,
		Targets:        origin,
		TimestampError: published.TimestampError,
		Duration:       time.Since(start),
	}
	log.Info().
		Int("total", snap.Summary.Total).
		Int("up", snap.Summary.Up).
		Int("down", snap.Summary.Down).
		Dur("duration", result.Duration).
		Msg("Liveness refresh completed")
	return result, nil
}

// targets loads the product list from the source, falling back to the last
// published catalog when the source is unreachable.
func (r *Runner) targets(ctx context.Context) ([]models.ProbeTarget, string, error) {
	records, fetchErr := r.source.FetchAll(ctx)
	if fetchErr == nil && len(records) > 0 {
		products, _ := mapper.NormalizeAll(records)
		if len(products) > 0 {
			targets := make([]models.ProbeTarget, 0, len(products))
			for _, p := range products {
				targets = append(targets, models.ProbeTarget{Name: p.Name, URL: p.URL})
			}
			return targets, TargetsFromSource, nil
		}
	}

	logging.Ctx(ctx).Warn().Err(fetchErr).Msg("Source unavailable for probe targets, using published catalog")

	targets, err := r.cachedTargets(ctx)
	if err != nil {
		if fetchErr == nil {
			fetchErr = ErrEmptySource
		}
		return nil, "", stageErr(StageFetch, ErrNoTargets, fmt.Errorf("source: %w; cache: %w", fetchErr, err))
	}
	return targets, TargetsFromCache, nil
}

func (r *Runner) cachedTargets(ctx context.Context) ([]models.ProbeTarget, error) {
	read, err := r.reader.Read(ctx, cache.KeyPrimarySnapshot)
	if err != nil {
		return nil, err
	}
	if !read.Found {
		return nil, cache.ErrNotFound
	}

	var catalog models.CatalogSnapshot
	if err := json.Unmarshal(read.Data, &catalog); err != nil {
		return nil, fmt.Errorf("decode published catalog: %w", err)
	}
	if len(catalog.Products) == 0 {
		return nil, ErrEmptySource
	}

	targets := make([]models.ProbeTarget, 0, len(catalog.Products))
	for _, p := range catalog.Products {
		targets = append(targets, models.ProbeTarget{Name: p.Name, URL: p.URL})
	}
	return targets, nil
}
