// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

/*
Package categorize places normalized products into the organizational
hierarchy: the whole organization and a small fixed set of sub-units.

Classification is a pure function of a product's license category, department
and unit-tag text. It is recomputed on every pipeline pass and never cached,
because those free-text fields change between passes.

Org-wide decision order (first true wins):

 1. License category contains an org-wide keyword ("site", "school", ...)
 2. Department equals the operations department
 3. Unit tags name the whole organization ("district", "all schools", ...)
 4. Unit tags match every sub-unit at once

Otherwise the product belongs to each sub-unit whose alias appears in its unit
tags as a whole word, and to none (an orphan) if no alias matches.

Categorize then splits every bucket into flagship (org-wide tab only),
available-to-everyone and by-department sections, each sorted by name.
*/
package categorize
