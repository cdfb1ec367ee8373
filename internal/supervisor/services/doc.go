// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

// Package services adapts Licensewatch components to suture.Service.
//
//   - HTTPServerService: ListenAndServe/Shutdown to Serve(ctx)
//   - ScheduledRefreshService: a ticker loop around one pipeline pass
//
// Both implement fmt.Stringer so supervisor events name the service.
package services
