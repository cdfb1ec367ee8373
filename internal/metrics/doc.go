// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

/*
Package metrics provides Prometheus metrics collection and export for observability.

All instruments are registered on the default registry with promauto and
exposed at GET /metrics in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Refresh pipeline:
  - licensewatch_refresh_duration_seconds{path,outcome}: pass duration (histogram)
  - licensewatch_refresh_total{path,outcome}: passes (counter)
  - licensewatch_refresh_last_success_timestamp{path}: unix time of last success (gauge)
  - licensewatch_records_processed_total / licensewatch_records_skipped_total{reason}
  - licensewatch_catalog_orphans: orphans in the last catalog pass (gauge)
  - licensewatch_snapshot_bytes{stage}: payload size before/after trimming (gauge)

Liveness prober:
  - licensewatch_probe_results_total{status}: probes by outcome (counter)
  - licensewatch_probe_latency_seconds: per-probe latency (histogram)
  - licensewatch_probe_up_ratio: fraction of products up in the last cycle (gauge)

Edge cache and collaborators:
  - licensewatch_cache_operations_total{op,key,result}
  - licensewatch_source_requests_total{action,status} and duration histogram
  - licensewatch_source_write_backs_total{outcome}
  - licensewatch_mirror_query_duration_seconds{operation} / _errors_total
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name,result},
    circuit_breaker_consecutive_failures{name},
    circuit_breaker_state_transitions_total{name,from_state,to_state}

HTTP:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}
  - api_auth_failures_total{reason}
*/
package metrics
