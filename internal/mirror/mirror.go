// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

// Package mirror reads the relational mirror of the product catalog from
// DuckDB and reconciles it against the legacy source by product name.
//
// The mirror is never written. Reconciliation failures are reported, not
// raised: a broken mirror must not fail a catalog refresh.
package mirror

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/licensewatch/internal/config"
	"github.com/tomtom215/licensewatch/internal/logging"
	"github.com/tomtom215/licensewatch/internal/mapper"
	"github.com/tomtom215/licensewatch/internal/metrics"
	"github.com/tomtom215/licensewatch/internal/models"
)

// columns selected from the mirror table, in scan order.
var columns = []string{
	"id", "name", "units", "department", "license_category", "seats",
	"annual_cost", "url", "add_date", "renewal_date", "is_enterprise",
	"audience", "description", "logo_url", "support_url", "tutorial_url",
	"privacy_url", "sso", "mobile", "risk_rating", "notes",
}

// Mirror reads product rows from a DuckDB table.
type Mirror struct {
	conn  *sql.DB
	table string
	owns  bool
}

// Open opens the DuckDB file at cfg.Path read-only.
func Open(cfg config.MirrorConfig) (*Mirror, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("mirror path is required")
	}

	// Disable auto-install/auto-load to prevent hangs in restricted network environments
	connStr := fmt.Sprintf("%s?access_mode=read_only&autoinstall_known_extensions=false&autoload_known_extensions=false", cfg.Path)
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to mirror database: %w", err)
	}

	m := New(conn, cfg.Table)
	m.owns = true
	logging.Info().Str("path", cfg.Path).Str("table", m.table).Msg("Relational mirror opened")
	return m, nil
}

// New wraps an open connection. Close leaves conn open.
func New(conn *sql.DB, table string) *Mirror {
	if table == "" {
		table = "products"
	}
	return &Mirror{conn: conn, table: table}
}

// Close closes the connection if Open created it.
func (m *Mirror) Close() error {
	if !m.owns {
		return nil
	}
	return m.conn.Close()
}

// LoadRows selects every row of the mirror table.
func (m *Mirror) LoadRows(ctx context.Context) (rows []models.RelationalRow, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordMirrorQuery("load_rows", time.Since(start), err)
	}()

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY name", strings.Join(columns, ", "), quoteIdent(m.table))
	result, err := m.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query mirror table %s: %w", m.table, err)
	}
	defer result.Close()

	for result.Next() {
		row, scanErr := scanRow(result)
		if scanErr != nil {
			return nil, fmt.Errorf("scan mirror row: %w", scanErr)
		}
		rows = append(rows, row)
	}
	if err = result.Err(); err != nil {
		return nil, fmt.Errorf("iterate mirror rows: %w", err)
	}
	return rows, nil
}

// LoadProducts loads and normalizes every mirror row. Rows that fail
// normalization are returned as RecordErrors.
func (m *Mirror) LoadProducts(ctx context.Context) ([]*models.Product, []mapper.RecordError, error) {
	rows, err := m.LoadRows(ctx)
	if err != nil {
		return nil, nil, err
	}

	products := make([]*models.Product, 0, len(rows))
	var failures []mapper.RecordError
	for i, row := range rows {
		p, err := mapper.NormalizeRelational(row)
		if err != nil {
			failures = append(failures, mapper.RecordError{Index: i, Name: row.Name, Err: err})
			continue
		}
		products = append(products, p)
	}
	return products, failures, nil
}

func scanRow(rows *sql.Rows) (models.RelationalRow, error) {
	var (
		id                                                sql.NullInt64
		name                                              sql.NullString
		units, department, licenseCategory, url, audience sql.NullString
		description, logo, support, tutorial, privacy     sql.NullString
		risk, notes                                       sql.NullString
		seats                                             sql.NullInt64
		cost                                              sql.NullFloat64
		addDate, renewalDate                              sql.NullTime
		enterprise, sso, mobile                           sql.NullBool
	)

	err := rows.Scan(
		&id, &name, &units, &department, &licenseCategory, &seats,
		&cost, &url, &addDate, &renewalDate, &enterprise,
		&audience, &description, &logo, &support, &tutorial,
		&privacy, &sso, &mobile, &risk, &notes,
	)
	if err != nil {
		return models.RelationalRow{}, err
	}

	return models.RelationalRow{
		ID:              int64Ptr(id),
		Name:            name.String,
		Units:           stringPtr(units),
		Department:      stringPtr(department),
		LicenseCategory: stringPtr(licenseCategory),
		Seats:           int64Ptr(seats),
		AnnualCost:      floatPtr(cost),
		URL:             stringPtr(url),
		AddDate:         timePtr(addDate),
		RenewalDate:     timePtr(renewalDate),
		IsEnterprise:    boolPtr(enterprise),
		Audience:        stringPtr(audience),
		Description:     stringPtr(description),
		LogoURL:         stringPtr(logo),
		SupportURL:      stringPtr(support),
		TutorialURL:     stringPtr(tutorial),
		PrivacyURL:      stringPtr(privacy),
		SSO:             boolPtr(sso),
		Mobile:          boolPtr(mobile),
		RiskRating:      stringPtr(risk),
		Notes:           stringPtr(notes),
	}, nil
}

// quoteIdent double-quotes a table name. Config validation already limits
// it to identifier characters.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func boolPtr(v sql.NullBool) *bool {
	if !v.Valid {
		return nil
	}
	return &v.Bool
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}
