// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package mirror

import (
	"context"
	"strings"

	"github.com/tomtom215/licensewatch/internal/categorize"
	"github.com/tomtom215/licensewatch/internal/logging"
	"github.com/tomtom215/licensewatch/internal/models"
)

// Report compares the legacy source with the relational mirror by name.
type Report struct {
	Matched         int      `json:"matched"`
	MissingInMirror []string `json:"missingInMirror"`
	MissingInSource []string `json:"missingInSource"`
	MirrorSkipped   int      `json:"mirrorSkipped,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// Reconcile matches products by trimmed, case-insensitive name. Names are
// reported with their original spelling.
func Reconcile(source, mirror []*models.Product) Report {
	inMirror := nameIndex(mirror)
	inSource := nameIndex(source)

	report := Report{
		MissingInMirror: []string{},
		MissingInSource: []string{},
	}
	for key, name := range inSource {
		if _, ok := inMirror[key]; ok {
			report.Matched++
			continue
		}
		report.MissingInMirror = append(report.MissingInMirror, name)
	}
	for key, name := range inMirror {
		if _, ok := inSource[key]; !ok {
			report.MissingInSource = append(report.MissingInSource, name)
		}
	}

	report.MissingInMirror = categorize.SortNames(report.MissingInMirror)
	report.MissingInSource = categorize.SortNames(report.MissingInSource)
	return report
}

// ReconcileWith loads the mirror and reconciles it against source. Mirror
// failures land in Report.Error; this never returns an error.
func (m *Mirror) ReconcileWith(ctx context.Context, source []*models.Product) Report {
	products, failures, err := m.LoadProducts(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Mirror reconciliation skipped")
		return Report{
			MissingInMirror: []string{},
			MissingInSource: []string{},
			Error:           err.Error(),
		}
	}
	for _, f := range failures {
		logging.Ctx(ctx).Warn().Err(f.Err).Str("product", f.Name).Msg("Mirror row skipped")
	}

	report := Reconcile(source, products)
	report.MirrorSkipped = len(failures)

	logging.Ctx(ctx).Info().
		Int("matched", report.Matched).
		Int("missing_in_mirror", len(report.MissingInMirror)).
		Int("missing_in_source", len(report.MissingInSource)).
		Msg("Mirror reconciled")
	return report
}

// nameIndex maps normalized name to the first spelling seen.
func nameIndex(products []*models.Product) map[string]string {
	out := make(map[string]string, len(products))
	for _, p := range products {
		if p == nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if key == "" {
			continue
		}
		if _, dup := out[key]; !dup {
			out[key] = p.Name
		}
	}
	return out
}
