// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

/*
Package api exposes the Licensewatch HTTP surface on a chi router.

Endpoints:

	POST /refresh          run one catalog pass (authenticated, rate limited)
	POST /refresh-status   run one liveness pass (authenticated, rate limited)
	GET  /snapshot         published catalog snapshot
	GET  /status           published liveness snapshot
	GET  /health/live      process liveness
	GET  /health/ready     edge cache reachability
	GET  /metrics          Prometheus exposition

Read endpoints never run the pipeline. They return the cached bytes with
stale-while-revalidate headers, or 404 with an empty-state payload before
the first successful refresh. Only an edge cache failure yields 500.

Refresh endpoints reject unauthenticated callers with 401 before any
pipeline work starts. A pass that fails at any stage returns 500 and
leaves the previously published snapshot untouched.
*/
package api
