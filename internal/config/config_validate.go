// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}

	if err := c.validateClassification(); err != nil {
		return err
	}

	if err := c.validateProbe(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateSchedule(); err != nil {
		return err
	}

	if err := c.validateMirror(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateSource validates the legacy source API settings
func (c *Config) validateSource() error {
	if c.Source.URL == "" {
		return fmt.Errorf("SOURCE_URL is required")
	}
	if err := validateHTTPURL(c.Source.URL, "SOURCE_URL"); err != nil {
		return err
	}
	if c.Source.APIKey == "" {
		return fmt.Errorf("SOURCE_API_KEY is required")
	}
	if c.Source.Timeout <= 0 {
		return fmt.Errorf("SOURCE_TIMEOUT must be positive, got %v", c.Source.Timeout)
	}
	if c.Source.WriteBackRepairs && c.Source.WriteBackRate <= 0 {
		return fmt.Errorf("SOURCE_WRITE_BACK_RATE must be positive when SOURCE_WRITE_BACK_REPAIRS=true")
	}
	return nil
}

// validateClassification validates categorization rule inputs
func (c *Config) validateClassification() error {
	cl := c.Classification
	if len(cl.SubUnits) == 0 {
		return fmt.Errorf("classification.sub_units must define at least one sub-unit")
	}
	seen := make(map[string]bool, len(cl.SubUnits))
	for i, su := range cl.SubUnits {
		name := strings.TrimSpace(su.Name)
		if name == "" {
			return fmt.Errorf("classification.sub_units[%d] has no name", i)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return fmt.Errorf("classification.sub_units has duplicate name %q", name)
		}
		seen[key] = true
		if len(su.Aliases) == 0 {
			return fmt.Errorf("classification.sub_units[%s] needs at least one alias", name)
		}
	}
	if len(cl.OrgWideLicenseKeywords) == 0 {
		return fmt.Errorf("ORG_WIDE_LICENSE_KEYWORDS must not be empty")
	}
	return nil
}

// validateProbe validates liveness prober settings
func (c *Config) validateProbe() error {
	if c.Probe.BatchSize < 1 || c.Probe.BatchSize > 100 {
		return fmt.Errorf("PROBE_BATCH_SIZE must be between 1 and 100, got %d", c.Probe.BatchSize)
	}
	if c.Probe.Timeout <= 0 {
		return fmt.Errorf("PROBE_TIMEOUT must be positive, got %v", c.Probe.Timeout)
	}
	return nil
}

// validateCache validates the edge cache backend selection
func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "memory":
	case "badger":
		if c.Cache.BadgerPath == "" {
			return fmt.Errorf("CACHE_BADGER_PATH is required when CACHE_BACKEND=badger")
		}
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND=redis")
		}
		if c.Cache.RedisDB < 0 {
			return fmt.Errorf("REDIS_DB must be non-negative, got %d", c.Cache.RedisDB)
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of memory, badger, redis, got %q", c.Cache.Backend)
	}
	if c.Cache.MaxSnapshotBytes < 1024 {
		return fmt.Errorf("CACHE_MAX_SNAPSHOT_BYTES must be at least 1024, got %d", c.Cache.MaxSnapshotBytes)
	}
	if c.Cache.WriteTimeout <= 0 {
		return fmt.Errorf("CACHE_WRITE_TIMEOUT must be positive, got %v", c.Cache.WriteTimeout)
	}
	if c.Reader.SMaxAge < 0 || c.Reader.StaleWhileRevalidate < 0 {
		return fmt.Errorf("READER_S_MAXAGE and READER_STALE_WHILE_REVALIDATE must not be negative")
	}
	return nil
}

// validateSchedule validates scheduled refresh intervals (only if enabled)
func (c *Config) validateSchedule() error {
	if !c.Schedule.Enabled {
		return nil
	}
	if c.Schedule.CatalogInterval < 0 || c.Schedule.LivenessInterval < 0 {
		return fmt.Errorf("schedule intervals must not be negative")
	}
	if c.Schedule.CatalogInterval == 0 && c.Schedule.LivenessInterval == 0 {
		return fmt.Errorf("SCHEDULE_ENABLED=true requires SCHEDULE_CATALOG_INTERVAL or SCHEDULE_LIVENESS_INTERVAL")
	}
	return nil
}

// validateMirror validates the relational mirror (only if enabled)
func (c *Config) validateMirror() error {
	if !c.Mirror.Enabled {
		return nil
	}
	if c.Mirror.Path == "" {
		return fmt.Errorf("MIRROR_PATH is required when MIRROR_ENABLED=true")
	}
	if !isSQLIdentifier(c.Mirror.Table) {
		return fmt.Errorf("MIRROR_TABLE must be a plain identifier, got %q", c.Mirror.Table)
	}
	return nil
}

// validateServer validates HTTP server settings
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Server.RateLimitReqs)
	}
	if c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Server.RateLimitWindow)
	}
	return nil
}

// validateSecurity validates refresh trigger authentication settings
func (c *Config) validateSecurity() error {
	if c.Security.RefreshSecret == "" {
		return fmt.Errorf("REFRESH_SECRET is required")
	}
	if c.Security.JWTIssuer != "" && len(c.Security.RefreshSecret) < 32 {
		return fmt.Errorf("REFRESH_SECRET must be at least 32 characters when JWT_ISSUER is set")
	}
	if c.Security.SchedulerHeaderEnabled {
		if c.Security.SchedulerHeader == "" || c.Security.SchedulerHeaderValue == "" {
			return fmt.Errorf("SCHEDULER_HEADER and SCHEDULER_HEADER_VALUE are required when SCHEDULER_HEADER_ENABLED=true")
		}
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL validates that a URL is an absolute HTTP/HTTPS URL without
// query parameters. Paths are allowed since the legacy API is a deployed
// script endpoint.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}

	return nil
}

// isSQLIdentifier reports whether s is safe to interpolate as a table name.
func isSQLIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Addr returns the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
