// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package snapshot

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/licensewatch/internal/cache"
	"github.com/tomtom215/licensewatch/internal/config"
	"github.com/tomtom215/licensewatch/internal/logging"
	"github.com/tomtom215/licensewatch/internal/metrics"
	"github.com/tomtom215/licensewatch/internal/models"
)

// Publisher errors
var (
	ErrPayloadTooLarge = errors.New("snapshot exceeds cache size ceiling")
	ErrCacheWrite      = errors.New("cache write failed")
)

// PublishResult describes one upsert.
type PublishResult struct {
	Key       string    `json:"key"`
	Bytes     int       `json:"bytes"`
	Timestamp time.Time `json:"timestamp"`

	// TimestampError is set when the data write succeeded but the
	// last_updated write did not.
	TimestampError string `json:"timestampError,omitempty"`
}

// CatalogResult adds the trimming measurements to a catalog publish.
type CatalogResult struct {
	PublishResult
	BytesBefore  int     `json:"byteSizeBefore"`
	BytesAfter   int     `json:"byteSizeAfter"`
	ReductionPct float64 `json:"reductionPct"`
}

// Publisher writes snapshots into the edge cache.
type Publisher struct {
	store        cache.Store
	maxBytes     int
	writeTimeout time.Duration
	now          func() time.Time
}

// NewPublisher creates a publisher enforcing cfg.MaxSnapshotBytes.
// A non-positive ceiling disables the size check.
func NewPublisher(store cache.Store, cfg config.CacheConfig) *Publisher {
	return &Publisher{
		store:        store,
		maxBytes:     cfg.MaxSnapshotBytes,
		writeTimeout: cfg.WriteTimeout,
		now:          time.Now,
	}
}

// Publish marshals value and upserts it under key, then writes the publish
// time under last_updated.
func (p *Publisher) Publish(ctx context.Context, key string, value any) (PublishResult, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return PublishResult{}, fmt.Errorf("marshal %s: %w", key, err)
	}
	return p.publishBytes(ctx, key, data)
}

func (p *Publisher) publishBytes(ctx context.Context, key string, data []byte) (PublishResult, error) {
	result := PublishResult{Key: key, Bytes: len(data)}

	if p.maxBytes > 0 && len(data) > p.maxBytes {
		return result, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrPayloadTooLarge, key, len(data), p.maxBytes)
	}

	if err := p.put(ctx, key, data); err != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrCacheWrite, key, err)
	}

	result.Timestamp = p.now().UTC()
	stamp := []byte(result.Timestamp.Format(time.RFC3339Nano))
	if err := p.put(ctx, cache.KeyLastUpdated, stamp); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("key", key).
			Msg("Snapshot written but last_updated write failed")
		result.TimestampError = err.Error()
	}

	logging.Ctx(ctx).Info().
		Str("key", key).
		Int("bytes", result.Bytes).
		Msg("Snapshot published")
	return result, nil
}

func (p *Publisher) put(ctx context.Context, key string, data []byte) error {
	if p.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.writeTimeout)
		defer cancel()
	}
	return p.store.Put(ctx, key, data)
}

// PublishCatalog publishes the trimmed catalog under primary_snapshot and
// reports the size before and after trimming.
func (p *Publisher) PublishCatalog(ctx context.Context, cat *Catalog) (CatalogResult, error) {
	full, err := json.Marshal(cat.Full())
	if err != nil {
		return CatalogResult{}, fmt.Errorf("marshal untrimmed catalog: %w", err)
	}
	trimmed, err := json.Marshal(cat.Trimmed)
	if err != nil {
		return CatalogResult{}, fmt.Errorf("marshal catalog: %w", err)
	}

	result := CatalogResult{
		BytesBefore:  len(full),
		BytesAfter:   len(trimmed),
		ReductionPct: ReductionPct(len(full), len(trimmed)),
	}
	metrics.RecordSnapshotSize(result.BytesBefore, result.BytesAfter)

	logging.Ctx(ctx).Info().
		Int("bytes_before", result.BytesBefore).
		Int("bytes_after", result.BytesAfter).
		Float64("reduction_pct", result.ReductionPct).
		Msg("Catalog trimmed")

	result.PublishResult, err = p.publishBytes(ctx, cache.KeyPrimarySnapshot, trimmed)
	return result, err
}

// PublishLiveness publishes a probe cycle under liveness_status.
func (p *Publisher) PublishLiveness(ctx context.Context, snap *models.LivenessSnapshot) (PublishResult, error) {
	return p.Publish(ctx, cache.KeyLivenessStatus, snap)
}

// ReductionPct returns the percentage saved going from before to after
// bytes, rounded to one decimal.
func ReductionPct(before, after int) float64 {
	if before <= 0 {
		return 0
	}
	pct := float64(before-after) / float64(before) * 100
	return math.Round(pct*10) / 10
}
