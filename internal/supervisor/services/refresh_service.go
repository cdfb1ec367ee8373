// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/licensewatch/internal/logging"
)

// RefreshFunc runs one pipeline pass.
type RefreshFunc func(ctx context.Context) error

// ScheduledRefreshService runs a refresh pass on a fixed interval. Passes of
// one service never overlap each other; they may overlap a pass started by
// an HTTP trigger, in which case the later publish wins.
//
// A failed pass is logged and the loop keeps going. The previously
// published snapshot stays in place until a later pass succeeds.
type ScheduledRefreshService struct {
	name       string
	interval   time.Duration
	runOnStart bool
	timeout    time.Duration
	run        RefreshFunc

	passes   atomic.Int64
	failures atomic.Int64
}

// NewScheduledRefreshService creates a scheduler for run. With runOnStart
// the first pass starts immediately instead of after one interval.
func NewScheduledRefreshService(name string, interval time.Duration, runOnStart bool, run RefreshFunc) *ScheduledRefreshService {
	return &ScheduledRefreshService{
		name:       name,
		interval:   interval,
		runOnStart: runOnStart,
		run:        run,
	}
}

// WithPassTimeout bounds each pass to d, matching the ceiling applied to
// HTTP-triggered passes. Zero leaves passes unbounded.
func (s *ScheduledRefreshService) WithPassTimeout(d time.Duration) *ScheduledRefreshService {
	s.timeout = d
	return s
}

// Serve implements suture.Service.
func (s *ScheduledRefreshService) Serve(ctx context.Context) error {
	if s.interval <= 0 || s.run == nil {
		logging.Warn().Str("service", s.name).Msg("Scheduled refresh disabled: no interval")
		return suture.ErrDoNotRestart
	}

	logging.Info().Str("service", s.name).Dur("interval", s.interval).Bool("run_on_start", s.runOnStart).
		Msg("Scheduled refresh started")

	if s.runOnStart {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *ScheduledRefreshService) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	ctx = logging.ContextWithNewCorrelationID(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()

	s.passes.Add(1)
	if err := s.run(ctx); err != nil {
		s.failures.Add(1)
		logging.Ctx(ctx).Warn().Err(err).Str("service", s.name).Dur("elapsed", time.Since(start)).
			Msg("Scheduled refresh failed, keeping previous snapshot")
		return
	}
	logging.Ctx(ctx).Info().Str("service", s.name).Dur("elapsed", time.Since(start)).Msg("Scheduled refresh complete")
}

// Passes returns how many passes have started.
func (s *ScheduledRefreshService) Passes() int64 {
	return s.passes.Load()
}

// Failures returns how many passes returned an error.
func (s *ScheduledRefreshService) Failures() int64 {
	return s.failures.Load()
}

// String identifies the service in suture log messages.
func (s *ScheduledRefreshService) String() string {
	return s.name
}
