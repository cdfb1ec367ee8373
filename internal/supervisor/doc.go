// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

/*
Package supervisor runs Licensewatch's long-lived components under a suture
supervisor tree.

Tree layout:

	licensewatch (root)
	├── refresh-layer
	│   ├── catalog-refresh   (services.ScheduledRefreshService)
	│   └── liveness-refresh  (services.ScheduledRefreshService)
	└── api-layer
	    └── http-server       (services.HTTPServerService)

Supervisor events (restarts, backoff, panics) are logged through sutureslog
into the zerolog-backed slog logger from internal/logging.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout))
	tree.AddRefreshService(services.NewScheduledRefreshService("catalog-refresh", time.Hour, true, runCatalog).
	    WithPassTimeout(cfg.Server.Timeout))
	err = tree.Serve(ctx)
*/
package supervisor
