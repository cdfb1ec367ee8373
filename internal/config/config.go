// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

// Package config loads Licensewatch configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values for every optional setting
//  2. Config File: optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment Variables: override any mapped setting
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Source         SourceConfig         `koanf:"source"`
	Classification ClassificationConfig `koanf:"classification"`
	Probe          ProbeConfig          `koanf:"probe"`
	Cache          CacheConfig          `koanf:"cache"`
	Reader         ReaderConfig         `koanf:"reader"`
	Schedule       ScheduleConfig       `koanf:"schedule"`
	Mirror         MirrorConfig         `koanf:"mirror"`
	Server         ServerConfig         `koanf:"server"`
	Security       SecurityConfig       `koanf:"security"`
	Logging        LoggingConfig        `koanf:"logging"`
}

// SourceConfig holds settings for the legacy spreadsheet-style API that is
// the source of truth for product records.
//
// Environment Variables:
//   - SOURCE_URL: base URL of the legacy API (required)
//   - SOURCE_API_KEY: shared key sent as ?key= (required)
//   - SOURCE_TIMEOUT: per-request timeout (default: 20s)
//   - SOURCE_WRITE_BACK_REPAIRS: push normalized values back as partial updates (default: false)
//   - SOURCE_WRITE_BACK_RATE: partial updates per second (default: 2)
type SourceConfig struct {
	URL              string        `koanf:"url"`
	APIKey           string        `koanf:"api_key"`
	Timeout          time.Duration `koanf:"timeout"`
	WriteBackRepairs bool          `koanf:"write_back_repairs"`
	WriteBackRate    float64       `koanf:"write_back_rate"`
}

// SubUnitConfig names one organizational division and the free-text aliases
// that place a record in it.
type SubUnitConfig struct {
	Name    string   `koanf:"name"`
	Aliases []string `koanf:"aliases"`
}

// ClassificationConfig holds the rule inputs of the categorization engine.
type ClassificationConfig struct {
	// OrgWideLicenseKeywords make a record org-wide when found in its license category.
	OrgWideLicenseKeywords []string `koanf:"org_wide_license_keywords"`

	// EveryoneLicenseKeywords place a record in an "available to everyone" section.
	EveryoneLicenseKeywords []string `koanf:"everyone_license_keywords"`

	// OperationsDepartment is the shared-services department whose products are org-wide.
	OperationsDepartment string `koanf:"operations_department"`

	// OrganizationAliases name the top-level unit in unit-tag text.
	OrganizationAliases []string `koanf:"organization_aliases"`

	// SubUnits are the divisions below the organization.
	SubUnits []SubUnitConfig `koanf:"sub_units"`

	// PlaceholderDepartments are excluded from sub-group listings.
	PlaceholderDepartments []string `koanf:"placeholder_departments"`
}

// ProbeConfig holds liveness prober settings.
type ProbeConfig struct {
	BatchSize int           `koanf:"batch_size"`
	Timeout   time.Duration `koanf:"timeout"`
	UserAgent string        `koanf:"user_agent"`
}

// CacheConfig selects and configures the edge cache backend.
//
// Backends:
//   - memory: process-local, lost on restart (development, tests)
//   - badger: BadgerDB directory at BadgerPath
//   - redis: shared Redis at RedisAddr, used when several replicas serve reads
type CacheConfig struct {
	Backend          string        `koanf:"backend"`
	BadgerPath       string        `koanf:"badger_path"`
	RedisAddr        string        `koanf:"redis_addr"`
	RedisPassword    string        `koanf:"redis_password"`
	RedisDB          int           `koanf:"redis_db"`
	RedisKeyPrefix   string        `koanf:"redis_key_prefix"`
	MaxSnapshotBytes int           `koanf:"max_snapshot_bytes"`
	WriteTimeout     time.Duration `koanf:"write_timeout"`
}

// ReaderConfig holds the shared-cache directives sent with snapshot reads.
type ReaderConfig struct {
	SMaxAge              time.Duration `koanf:"s_maxage"`
	StaleWhileRevalidate time.Duration `koanf:"stale_while_revalidate"`
}

// ScheduleConfig controls the in-process scheduled refresh passes.
type ScheduleConfig struct {
	Enabled          bool          `koanf:"enabled"`
	CatalogInterval  time.Duration `koanf:"catalog_interval"`
	LivenessInterval time.Duration `koanf:"liveness_interval"`
	RunOnStart       bool          `koanf:"run_on_start"`
}

// MirrorConfig points at the relational mirror used for name reconciliation.
type MirrorConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
	Table   string `koanf:"table"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// SecurityConfig holds refresh trigger authentication settings.
//
// A caller is accepted when it presents:
//   - Authorization: Bearer <RefreshSecret>, or
//   - Authorization: Bearer <HS256 JWT signed with RefreshSecret> when JWTIssuer is set, or
//   - the platform scheduler header with SchedulerHeaderValue, when enabled
type SecurityConfig struct {
	RefreshSecret          string `koanf:"refresh_secret"`
	SchedulerHeader        string `koanf:"scheduler_header"`
	SchedulerHeaderValue   string `koanf:"scheduler_header_value"`
	SchedulerHeaderEnabled bool   `koanf:"scheduler_header_enabled"`
	JWTIssuer              string `koanf:"jwt_issuer"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, the optional config file and the
// environment, then validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
