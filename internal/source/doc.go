// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

/*
Package source is the client for the legacy spreadsheet-style API that owns the
product records.

The API exposes two actions, both authenticated with a shared key in the query
string:

	GET  <url>?action=fetchAll&key=<secret>  -> JSON array of flat records
	POST <url>?action=update&key=<secret>    <- {"name": ..., "fields": {...}}

fetchAll responses are accepted either as a bare array or wrapped in a
{"data": [...]} envelope. A {"success": false, "error": "..."} body is an
upstream failure even when the HTTP status is 200.

Resilience:
  - explicit per-request timeout from source.timeout
  - exponential backoff on HTTP 429, honoring Retry-After
  - sony/gobreaker circuit breaker (BreakerClient) with Prometheus state metrics
  - WriteBack paces partial updates with golang.org/x/time/rate
*/
package source
