// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store backed by a map.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	closed  bool
	stats   Stats
}

type entry struct {
	data      []byte
	updatedAt time.Time
}

// Stats tracks cache performance metrics
type Stats struct {
	mu        sync.RWMutex
	Hits      int64
	Misses    int64
	Writes    int64
	TotalKeys int64
	LastWrite time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
	}
}

// Get returns a copy of the stored value so callers cannot mutate the cache.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return nil, errClosed
	}
	e, exists := m.entries[key]
	m.mu.RUnlock()

	if !exists {
		m.recordMiss()
		return nil, ErrNotFound
	}

	m.recordHit()
	return cloneBytes(e.data), nil
}

// Put stores a copy of value under key.
func (m *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := time.Now()
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errClosed
	}
	m.entries[key] = entry{data: cloneBytes(value), updatedAt: now}
	total := int64(len(m.entries))
	m.mu.Unlock()

	m.stats.mu.Lock()
	m.stats.Writes++
	m.stats.TotalKeys = total
	m.stats.LastWrite = now
	m.stats.mu.Unlock()
	return nil
}

// Ping fails only after Close.
func (m *MemoryStore) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return errClosed
	}
	return nil
}

// Close drops all entries.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.closed = true
	m.entries = make(map[string]entry)
	m.mu.Unlock()
	return nil
}

// GetStats returns a snapshot of current cache statistics.
func (m *MemoryStore) GetStats() Stats {
	m.stats.mu.RLock()
	defer m.stats.mu.RUnlock()

	return Stats{
		Hits:      m.stats.Hits,
		Misses:    m.stats.Misses,
		Writes:    m.stats.Writes,
		TotalKeys: m.stats.TotalKeys,
		LastWrite: m.stats.LastWrite,
	}
}

// HitRate returns the cache hit rate as a percentage
func (m *MemoryStore) HitRate() float64 {
	stats := m.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

func (m *MemoryStore) recordHit() {
	m.stats.mu.Lock()
	m.stats.Hits++
	m.stats.mu.Unlock()
}

func (m *MemoryStore) recordMiss() {
	m.stats.mu.Lock()
	m.stats.Misses++
	m.stats.mu.Unlock()
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
