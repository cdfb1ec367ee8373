// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/licensewatch/internal/categorize"
	"github.com/tomtom215/licensewatch/internal/mirror"
	"github.com/tomtom215/licensewatch/internal/models"
	"github.com/tomtom215/licensewatch/internal/snapshot"
	"github.com/tomtom215/licensewatch/internal/source"
)

// Prober checks a list of targets.
type Prober interface {
	ProbeAll(ctx context.Context, targets []models.ProbeTarget) []models.ProbeResult
}

// Reconciler compares source products against a secondary store.
type Reconciler interface {
	ReconcileWith(ctx context.Context, products []*models.Product) mirror.Report
}

// Options wires a Runner. Mirror and WriteBack are optional.
type Options struct {
	Source    source.Source
	Rules     *categorize.Rules
	Publisher *snapshot.Publisher
	Reader    *snapshot.Reader
	Prober    Prober
	Mirror    Reconciler
	WriteBack *source.WriteBack
}

// Runner executes refresh passes. It holds no state between passes and is
// safe for concurrent use.
type Runner struct {
	source    source.Source
	rules     *categorize.Rules
	publisher *snapshot.Publisher
	reader    *snapshot.Reader
	prober    Prober
	mirror    Reconciler
	writeBack *source.WriteBack
	now       func() time.Time
}

// NewRunner validates opts and creates a Runner.
func NewRunner(opts Options) (*Runner, error) {
	switch {
	case opts.Source == nil:
		return nil, errors.New("pipeline: source is required")
	case opts.Rules == nil:
		return nil, errors.New("pipeline: classification rules are required")
	case opts.Publisher == nil:
		return nil, errors.New("pipeline: publisher is required")
	case opts.Reader == nil:
		return nil, errors.New("pipeline: reader is required")
	case opts.Prober == nil:
		return nil, errors.New("pipeline: prober is required")
	}

	return &Runner{
		source:    opts.Source,
		rules:     opts.Rules,
		publisher: opts.Publisher,
		reader:    opts.Reader,
		prober:    opts.Prober,
		mirror:    opts.Mirror,
		writeBack: opts.WriteBack,
		now:       time.Now,
	}, nil
}

func newPassID() string {
	return uuid.New().String()
}
