// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

/*
Package pipeline runs one refresh pass of either path.

Catalog path:

	fetch (legacy source) -> normalize (skip malformed) -> categorize
	  -> build + trim -> publish primary_snapshot + last_updated
	  -> optional mirror reconciliation and repair write-back

Liveness path:

	targets (legacy source, or the published catalog when the source is
	unreachable) -> probe in batches -> summarize -> publish liveness_status

Failures are returned as *StageError naming the stage that failed. Nothing is
written to the edge cache unless every stage before publish succeeded, so a
failed pass leaves the previous snapshot authoritative.

Passes are not serialized: a scheduled pass and a manual trigger may run at
the same time, and the later cache write wins.
*/
package pipeline
