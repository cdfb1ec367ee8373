// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

/*
Package models defines data structures shared by the Licensewatch pipeline.

Key Components:

  - Product: normalized view model of one licensed application
  - LegacyRecord: flat key-value row from the legacy spreadsheet API
  - RelationalRow: snake_case row of the relational mirror
  - Classification: derived organizational placement of a Product
  - ProbeResult / LivenessSnapshot: liveness prober output
  - CatalogSnapshot: categorized, trimmed bundle published to the edge cache

A Product's Name is the join key across all three stores. No numeric surrogate
key is shared, so every consumer must tolerate a name present in one store and
absent in another.

Date is the canonical calendar-day representation (UTC midnight, serialized as
YYYY-MM-DD). Every date input accepted by the mapper converges on it.
*/
package models
