// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/licensewatch/internal/config"
	"github.com/tomtom215/licensewatch/internal/logging"
	"github.com/tomtom215/licensewatch/internal/metrics"
)

// Edge cache keys
const (
	KeyPrimarySnapshot = "primary_snapshot"
	KeyLivenessStatus  = "liveness_status"
	KeyLastUpdated     = "last_updated"
)

// Backend names accepted by cache.backend
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("cache: key not found")

// Store is the edge cache read/write contract.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// New opens the backend selected by cfg.Backend and wraps it with metrics.
func New(ctx context.Context, cfg config.CacheConfig) (Store, error) {
	var (
		store Store
		err   error
	)

	switch cfg.Backend {
	case BackendMemory, "":
		store = NewMemoryStore()
	case BackendBadger:
		store, err = OpenBadgerStore(cfg.BadgerPath)
	case BackendRedis:
		store, err = OpenRedisStore(ctx, RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	logging.Info().Str("backend", backendName(cfg.Backend)).Msg("Edge cache opened")
	return Instrument(store), nil
}

func backendName(b string) string {
	if b == "" {
		return BackendMemory
	}
	return b
}

// instrumented records every get and put in CacheOperations.
type instrumented struct {
	Store
}

// Instrument wraps s so that gets and puts are counted by key and result.
func Instrument(s Store) Store {
	if _, ok := s.(*instrumented); ok {
		return s
	}
	return &instrumented{Store: s}
}

func (s *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.Store.Get(ctx, key)
	switch {
	case err == nil:
		metrics.RecordCacheOperation("get", key, "hit")
	case errors.Is(err, ErrNotFound):
		metrics.RecordCacheOperation("get", key, "miss")
	default:
		metrics.RecordCacheOperation("get", key, "error")
	}
	return value, err
}

func (s *instrumented) Put(ctx context.Context, key string, value []byte) error {
	err := s.Store.Put(ctx, key, value)
	if err != nil {
		metrics.RecordCacheOperation("put", key, "error")
		return err
	}
	metrics.RecordCacheOperation("put", key, "success")
	return nil
}

// Unwrap returns the backend behind the metrics wrapper.
func (s *instrumented) Unwrap() Store {
	return s.Store
}

var errClosed = errors.New("cache: store closed")
