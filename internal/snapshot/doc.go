// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

/*
Package snapshot builds, publishes and reads the bundles stored in the edge cache.

# Publishing

The catalog path turns a categorized pass into a CatalogSnapshot, trims every
product to an allow-list of essential fields, and writes the result under
primary_snapshot. The liveness path writes a LivenessSnapshot under
liveness_status. Both paths then write the publish time under last_updated.

The data write and the timestamp write are two separate upserts. When the
timestamp write fails after the data write succeeded, the new data stays in
place, the failure is logged, and PublishResult.TimestampError reports it.

Payloads larger than cache.max_snapshot_bytes are rejected with
ErrPayloadTooLarge before anything is written, leaving the previous snapshot
authoritative.

# Reading

Reader returns the raw published bytes so the API can serve them without
decoding. A key that has never been written is reported as not found rather
than as an error, and NotPopulated builds the empty-state payload served with
404. CacheControl returns the shared-cache directives attached to every read
response.
*/
package snapshot
