// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

// Package testinfra provides container-backed infrastructure for
// integration tests. It is compiled only with the integration build tag.
//
// # Redis
//
// The Redis container stands in for a shared edge cache:
//
//	func TestRedisStore(t *testing.T) {
//	    redis := testinfra.StartRedis(t)
//	    store, err := cache.OpenRedisStore(ctx, cache.RedisOptions{Addr: redis.Addr})
//	    // ...
//	}
//
// Run with:
//
//	go test -tags integration ./internal/...
//
// Tests skip when Docker is not reachable.
package testinfra
