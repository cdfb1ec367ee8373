// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/licensewatch/config.yaml",
	"/etc/licensewatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Defaults returns a Config populated with default values only. No file or
// environment layers are applied and the result is not validated.
func Defaults() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	orgWide := []string{"site", "school", "enterprise", "unlimited"}
	return &Config{
		Source: SourceConfig{
			Timeout:          20 * time.Second,
			WriteBackRepairs: false,
			WriteBackRate:    2,
		},
		Classification: ClassificationConfig{
			OrgWideLicenseKeywords:  orgWide,
			EveryoneLicenseKeywords: append(append([]string{}, orgWide...), "building", "campus"),
			OperationsDepartment:    "School Operations",
			OrganizationAliases:     []string{"district", "district-wide", "districtwide", "all schools", "whole district"},
			SubUnits: []SubUnitConfig{
				{Name: "elementary", Aliases: []string{"elementary", "primary", "lower school", "k-5"}},
				{Name: "middle", Aliases: []string{"middle", "middle school", "intermediate", "6-8"}},
				{Name: "high", Aliases: []string{"high", "high school", "upper school", "secondary", "9-12"}},
			},
			PlaceholderDepartments: []string{"-", "n/a", "na", "none", "null", "tbd", "unknown", "other"},
		},
		Probe: ProbeConfig{
			BatchSize: 10,
			Timeout:   2 * time.Second,
			UserAgent: "licensewatch-probe/1.0",
		},
		Cache: CacheConfig{
			Backend:          "memory",
			BadgerPath:       "/data/edgecache",
			RedisAddr:        "",
			RedisDB:          0,
			RedisKeyPrefix:   "licensewatch:",
			MaxSnapshotBytes: 400_000,
			WriteTimeout:     5 * time.Second,
		},
		Reader: ReaderConfig{
			SMaxAge:              60 * time.Second,
			StaleWhileRevalidate: 300 * time.Second,
		},
		Schedule: ScheduleConfig{
			Enabled:          true,
			CatalogInterval:  time.Hour,
			LivenessInterval: 15 * time.Minute,
			RunOnStart:       true,
		},
		Mirror: MirrorConfig{
			Enabled: false,
			Path:    "/data/mirror.duckdb",
			Table:   "products",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         5 * time.Minute, // a full probe pass runs inside one request
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{},
			RateLimitReqs:   10,
			RateLimitWindow: time.Minute,
		},
		Security: SecurityConfig{
			SchedulerHeader:        "X-Scheduler-Internal",
			SchedulerHeaderValue:   "1",
			SchedulerHeaderEnabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: built-in defaults
//  2. Config File: optional YAML config file (if exists)
//  3. Environment Variables: override any mapped setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// SOURCE_URL -> source.url, CACHE_BACKEND -> cache.backend, ...
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"classification.org_wide_license_keywords",
	"classification.everyone_license_keywords",
	"classification.organization_aliases",
	"classification.placeholder_departments",
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		trimmed := make([]string, 0)
		for _, p := range strings.Split(strVal, ",") {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Legacy source API
	"source_url":                "source.url",
	"source_api_key":            "source.api_key",
	"source_timeout":            "source.timeout",
	"source_write_back_repairs": "source.write_back_repairs",
	"source_write_back_rate":    "source.write_back_rate",

	// Classification rules
	"org_wide_license_keywords": "classification.org_wide_license_keywords",
	"everyone_license_keywords": "classification.everyone_license_keywords",
	"operations_department":     "classification.operations_department",
	"organization_aliases":      "classification.organization_aliases",
	"placeholder_departments":   "classification.placeholder_departments",

	// Prober
	"probe_batch_size": "probe.batch_size",
	"probe_timeout":    "probe.timeout",
	"probe_user_agent": "probe.user_agent",

	// Edge cache
	"cache_backend":            "cache.backend",
	"cache_badger_path":        "cache.badger_path",
	"redis_addr":               "cache.redis_addr",
	"redis_password":           "cache.redis_password",
	"redis_db":                 "cache.redis_db",
	"redis_key_prefix":         "cache.redis_key_prefix",
	"cache_max_snapshot_bytes": "cache.max_snapshot_bytes",
	"cache_write_timeout":      "cache.write_timeout",

	// Reader
	"reader_s_maxage":               "reader.s_maxage",
	"reader_stale_while_revalidate": "reader.stale_while_revalidate",

	// Schedule
	"schedule_enabled":           "schedule.enabled",
	"schedule_catalog_interval":  "schedule.catalog_interval",
	"schedule_liveness_interval": "schedule.liveness_interval",
	"schedule_run_on_start":      "schedule.run_on_start",

	// Relational mirror
	"mirror_enabled": "mirror.enabled",
	"mirror_path":    "mirror.path",
	"mirror_table":   "mirror.table",

	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",

	// Security
	"refresh_secret":           "security.refresh_secret",
	"scheduler_header":         "security.scheduler_header",
	"scheduler_header_value":   "security.scheduler_header_value",
	"scheduler_header_enabled": "security.scheduler_header_enabled",
	"jwt_issuer":               "security.jwt_issuer",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped so unrelated environment
// variables never leak into the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
