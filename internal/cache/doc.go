// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

/*
Package cache provides the edge cache key space that published snapshots live in.

The cache is a flat byte-valued key/value store with get and upsert operations
only. There are no transactions, no TTLs and no partial updates: every write
replaces the previous value wholesale, so concurrent refresh passes resolve as
last-writer-wins.

# Backends

Three implementations satisfy the Store interface and are selected by the
cache.backend configuration value:

  - memory: process-local map guarded by sync.RWMutex, lost on restart
  - badger: BadgerDB directory, survives restarts of a single replica
  - redis: shared Redis instance, used when several replicas serve reads

# Keys

Snapshot keys are fixed:

  - primary_snapshot: trimmed categorized catalog
  - liveness_status: latest probe summary and per-product statuses
  - last_updated: RFC3339 timestamp of the latest successful publish

# Usage

	store, err := cache.New(ctx, cfg.Cache)
	if err != nil {
	    return err
	}
	defer store.Close()

	if err := store.Put(ctx, cache.KeyPrimarySnapshot, payload); err != nil {
	    return err
	}

	data, err := store.Get(ctx, cache.KeyPrimarySnapshot)
	if errors.Is(err, cache.ErrNotFound) {
	    // not populated yet
	}

Every Store returned by New is wrapped so that gets and puts are counted in the
licensewatch_cache_operations_total metric.
*/
package cache
