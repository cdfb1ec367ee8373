// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package models

import "time"

// Liveness status values.
const (
	StatusDown = 0
	StatusUp   = 1
)

// ProbeTarget is one (name, url) pair queued for a liveness check.
type ProbeTarget struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ProbeResult is the outcome of one liveness check.
type ProbeResult struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	Status    int    `json:"status"`
	LatencyMs int64  `json:"latencyMs"`
	HTTPCode  int    `json:"httpCode,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Up reports whether the probe found the product reachable.
func (r ProbeResult) Up() bool {
	return r.Status == StatusUp
}

// LivenessSummary aggregates one probe cycle. AvgLatencyMs averages every
// probe, not just the successful ones.
type LivenessSummary struct {
	Total        int     `json:"total"`
	Up           int     `json:"up"`
	Down         int     `json:"down"`
	UpPct        float64 `json:"upPct"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
}

// LivenessSnapshot is the value published under the liveness_status key.
// It replaces the previous cycle wholesale.
type LivenessSnapshot struct {
	Statuses    map[string]int  `json:"statuses"`
	Summary     LivenessSummary `json:"summary"`
	Down        []ProbeResult   `json:"downList"`
	LastChecked time.Time       `json:"lastChecked"`
}

// SubGroup lists product names sharing one department within a tab.
type SubGroup struct {
	Name     string   `json:"name"`
	Products []string `json:"products"`
}

// OrganizationTab is the whole-organization view of the catalog.
type OrganizationTab struct {
	Flagship   []string   `json:"flagship"`
	Everyone   []string   `json:"everyone"`
	BySubGroup []SubGroup `json:"bySubGroup"`
	Ungrouped  int        `json:"ungrouped"`
}

// SubUnitTab is the view of one sub-unit. It never repeats org-wide products.
type SubUnitTab struct {
	Name       string     `json:"name"`
	Everyone   []string   `json:"everyone"`
	BySubGroup []SubGroup `json:"bySubGroup"`
	Ungrouped  int        `json:"ungrouped"`
}

// CatalogSummary carries the counts of one catalog pass.
type CatalogSummary struct {
	Total     int            `json:"total"`
	OrgWide   int            `json:"orgWide"`
	Orphans   int            `json:"orphans"`
	Skipped   int            `json:"skipped"`
	BySubUnit map[string]int `json:"bySubUnit"`
}

// EssentialProduct is the allow-listed subset of Product stored in the edge cache.
type EssentialProduct struct {
	Name            string   `json:"name"`
	Units           []string `json:"units,omitempty"`
	Department      string   `json:"department,omitempty"`
	LicenseCategory string   `json:"licenseCategory,omitempty"`
	Seats           *int     `json:"seats,omitempty"`
	Cost            *float64 `json:"cost,omitempty"`
	CostDisplay     string   `json:"costDisplay,omitempty"`
	URL             string   `json:"url,omitempty"`
	AddDate         Date     `json:"addDate"`
	RenewalDate     Date     `json:"renewalDate"`
	Enterprise      bool     `json:"enterprise"`
	Audience        []string `json:"audience,omitempty"`
	SSO             bool     `json:"sso"`
	Mobile          bool     `json:"mobile"`
	RiskRating      string   `json:"riskRating,omitempty"`
}

// CatalogSnapshot is the value published under the primary_snapshot key.
// Tabs reference products by name; Products carries each record once.
type CatalogSnapshot struct {
	Organization OrganizationTab    `json:"organization"`
	SubUnits     []SubUnitTab       `json:"subUnits"`
	Products     []EssentialProduct `json:"products"`
	Orphans      []string           `json:"orphans"`
	Summary      CatalogSummary     `json:"summary"`
	LastUpdated  time.Time          `json:"lastUpdated"`
}
