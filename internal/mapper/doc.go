// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

/*
Package mapper translates product records between the legacy spreadsheet
shape, the relational mirror shape and the normalized models.Product.

Inputs are semi-structured: header casing and spacing vary between sheet
revisions, lists arrive as real arrays, JSON-encoded strings or comma-separated
text, numbers arrive as strings (including the "Free" sentinel for zero cost),
booleans arrive as true/"TRUE"/"Yes"/1 or not at all, and dates arrive as
spreadsheet serial numbers or ISO strings. All of that is handled by a small
set of typed coercions (CoerceStringList, CoerceBool, CoerceDate,
CoerceNumber, CoerceInt, CoerceString) applied uniformly per field.

Unknown source columns are dropped silently. A record without a name or with
an unparseable date fails with ErrMissingName or ErrInvalidDate; NormalizeAll
skips such records and reports them as RecordErrors.

Denormalize to ShapeLegacy emits only non-null fields so a partial update never
clobbers columns the pipeline does not own. Lists are written as comma text
unless an element contains a comma, in which case they are written as JSON
array text. DiffLegacy and Repairs build the partial updates sent back to the
legacy API.
*/
package mapper
