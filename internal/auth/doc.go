// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

/*
Package auth authenticates callers of the refresh trigger endpoints.

Three credentials are accepted:

  - Authorization: Bearer <refresh secret>, compared in constant time
  - Authorization: Bearer <HS256 JWT> signed with the refresh secret, when
    security.jwt_issuer is set; iss must match and exp is required
  - the platform scheduler header (default X-Scheduler-Internal: 1), when
    security.scheduler_header_enabled is true

Anything else is rejected with ErrUnauthorized before any pipeline work runs.
Failures are counted in licensewatch_auth_failures_total by reason.
*/
package auth
