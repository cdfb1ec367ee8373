// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

/*
Package main is the entry point for the Licensewatch server.

Licensewatch pulls the software license catalog from the legacy spreadsheet
API, normalizes and categorizes every product, probes product URLs, and
publishes trimmed snapshots to an edge cache that dashboards read from.

# Application Architecture

	RootSupervisor ("licensewatch")
	├── RefreshSupervisor ("refresh-layer")
	│   ├── catalog-refresh   (every schedule.catalog_interval)
	│   └── liveness-refresh  (every schedule.liveness_interval)
	└── APISupervisor ("api-layer")
	    └── http-server       (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment
 2. Logging: zerolog with JSON/console output
 3. Edge cache: memory, BadgerDB or Redis
 4. Source client: legacy API behind a circuit breaker
 5. Relational mirror: DuckDB, read-only (optional)
 6. Pipeline runner
 7. HTTP router and supervisor tree

# Configuration

Required:
  - SOURCE_URL, SOURCE_API_KEY: legacy API location and key
  - REFRESH_SECRET: shared secret for POST /refresh and /refresh-status

Common options:
  - CACHE_BACKEND=memory|badger|redis, CACHE_BADGER_PATH, REDIS_ADDR
  - SCHEDULE_ENABLED, SCHEDULE_CATALOG_INTERVAL, SCHEDULE_LIVENESS_INTERVAL
  - MIRROR_ENABLED, MIRROR_PATH
  - JWT_ISSUER: accept HS256 bearer tokens signed with REFRESH_SECRET

# Issuing Tokens

With JWT_ISSUER set, a token for an external scheduler can be minted with:

	licensewatch -issue-token nightly-cron -token-ttl 720h

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
in-flight requests for up to HTTP_SHUTDOWN_TIMEOUT; a scheduled pass in
progress is canceled and its snapshot is not published.
*/
package main
