// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package pipeline

import (
	"context"
	"time"

	"github.com/tomtom215/licensewatch/internal/categorize"
	"github.com/tomtom215/licensewatch/internal/logging"
	"github.com/tomtom215/licensewatch/internal/mapper"
	"github.com/tomtom215/licensewatch/internal/metrics"
	"github.com/tomtom215/licensewatch/internal/mirror"
	"github.com/tomtom215/licensewatch/internal/models"
	"github.com/tomtom215/licensewatch/internal/snapshot"
	"github.com/tomtom215/licensewatch/internal/source"
)

// CatalogResult summarizes a successful catalog pass.
type CatalogResult struct {
	PassID         string                  `json:"passId"`
	Timestamp      time.Time               `json:"timestamp"`
	Processed      int                     `json:"countsProcessed"`
	Skipped        int                     `json:"countsSkipped"`
	OrgWide        int                     `json:"countsOrgWide"`
	Orphans        []string                `json:"orphans"`
	BytesBefore    int                     `json:"byteSizeBefore"`
	BytesAfter     int                     `json:"byteSizeAfter"`
	ReductionPct   float64                 `json:"reductionPct"`
	TimestampError string                  `json:"timestampError,omitempty"`
	Reconciliation *mirror.Report          `json:"reconciliation,omitempty"`
	WriteBack      *source.WriteBackResult `json:"writeBack,omitempty"`
	Duration       time.Duration           `json:"-"`
}

// RunCatalog executes one catalog pass.
func (r *Runner) RunCatalog(ctx context.Context) (result *CatalogResult, err error) {
	start := r.now()
	passID := newPassID()
	log := logging.Ctx(ctx).With().Str("pass_id", passID).Str("path", metrics.PathCatalog).Logger()
	defer func() {
		metrics.RecordRefresh(metrics.PathCatalog, time.Since(start), err)
		if err != nil {
			log.Error().Err(err).Str("stage", StageOf(err)).Msg("Catalog refresh failed")
		}
	}()

	log.Info().Msg("Catalog refresh started")

	records, err := r.source.FetchAll(ctx)
	if err != nil {
		return nil, stageErr(StageFetch, ErrSourceFetch, err)
	}
	if len(records) == 0 {
		return nil, stageErr(StageFetch, ErrEmptySource, nil)
	}
	log.Info().Int("records", len(records)).Dur("elapsed", time.Since(start)).Msg("Source records fetched")

	products, failures := mapper.NormalizeAll(records)
	for i := range failures {
		f := &failures[i]
		metrics.RecordsSkipped.WithLabelValues(mapper.SkipReason(f.Err)).Inc()
		log.Warn().Err(f.Err).Int("index", f.Index).Str("product", f.Name).Msg("Skipping malformed record")
	}
	if len(products) == 0 {
		return nil, stageErr(StageNormalize, ErrNoValidRecords, nil)
	}
	metrics.RecordsProcessed.Add(float64(len(products)))

	categorized := categorize.Categorize(products, r.rules)
	metrics.CatalogOrphans.Set(float64(len(categorized.Orphans)))
	log.Info().
		Int("products", len(products)).
		Int("skipped", len(failures)).
		Int("org_wide", categorized.OrgWideCount).
		Int("orphans", len(categorized.Orphans)).
		Msg("Products categorized")

	catalog := snapshot.BuildCatalog(categorized, len(failures), r.now())
	published, err := r.publisher.PublishCatalog(ctx, catalog)
	if err != nil {
		return nil, stageErr(StagePublish, ErrPublish, err)
	}

	result = &CatalogResult{
		PassID:         passID,
		Timestamp:      published.Timestamp,
		Processed:      len(products),
		Skipped:        len(failures),
		OrgWide:        categorized.OrgWideCount,
		Orphans:        categorized.Orphans,
		BytesBefore:    published.BytesBefore,
		BytesAfter:     published.BytesAfter,
		ReductionPct:   published.ReductionPct,
		TimestampError: published.TimestampError,
	}

	// Post-publish steps report problems but never fail the pass.
	if r.mirror != nil {
		report := r.mirror.ReconcileWith(ctx, products)
		result.Reconciliation = &report
	}
	if r.writeBack != nil {
		wb := r.writeBack.Apply(ctx, repairs(records))
		result.WriteBack = &wb
	}

	result.Duration = time.Since(start)
	log.Info().
		Int("processed", result.Processed).
		Int("skipped", result.Skipped).
		Int("bytes_after", result.BytesAfter).
		Dur("duration", result.Duration).
		Msg("Catalog refresh completed")
	return result, nil
}

// repairs collects canonical rewrites for records whose cells are stored in
// a non-canonical encoding. Malformed records are left alone.
func repairs(records []models.LegacyRecord) []source.Update {
	var updates []source.Update
	for _, rec := range records {
		p, err := mapper.Normalize(rec)
		if err != nil {
			continue
		}
		if fields := mapper.Repairs(rec, p); len(fields) > 0 {
			updates = append(updates, source.Update{Name: p.Name, Fields: fields})
		}
	}
	return updates
}
