// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package models

import (
	"strings"
	"time"
)

// LegacyRecord is one flat row of the legacy spreadsheet API. Keys follow the
// sheet's column headers and arrive with inconsistent casing and spacing;
// values may be strings, numbers, booleans or arrays.
type LegacyRecord map[string]any

// Product is the normalized view model of one licensed application.
//
// Cost semantics:
//   - nil: unknown
//   - 0: free (displayed as "Free")
//   - >0: annual cost
//
// Units holds the raw organizational unit tags. Classification is derived
// from UnitsText, Department and LicenseCategory on every pass and is never
// stored on the Product.
type Product struct {
	Name            string   `json:"name" validate:"nonblank,max=512"`
	Units           []string `json:"units,omitempty"`
	Department      string   `json:"department,omitempty"`
	LicenseCategory string   `json:"licenseCategory,omitempty"`
	Seats           *int     `json:"seats,omitempty" validate:"omitempty,gte=0"`
	Cost            *float64 `json:"cost,omitempty" validate:"omitempty,gte=0"`
	URL             string   `json:"url,omitempty"`
	AddDate         Date     `json:"addDate"`
	RenewalDate     Date     `json:"renewalDate"`
	Enterprise      bool     `json:"enterprise"`
	Audience        []string `json:"audience,omitempty"`

	// Descriptive and compliance metadata. Everything below except SSO, Mobile
	// and RiskRating is dropped by allow-list trimming.
	Description string `json:"description,omitempty"`
	Logo        string `json:"logo,omitempty"`
	SupportURL  string `json:"supportUrl,omitempty" validate:"omitempty,max=2048"`
	TutorialURL string `json:"tutorialUrl,omitempty" validate:"omitempty,max=2048"`
	PrivacyURL  string `json:"privacyUrl,omitempty" validate:"omitempty,max=2048"`
	SSO         bool   `json:"sso"`
	Mobile      bool   `json:"mobile"`
	RiskRating  string `json:"riskRating,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// UnitsText returns the unit tags as one free-text string for pattern matching.
func (p *Product) UnitsText() string {
	return strings.Join(p.Units, ", ")
}

// RelationalRow is one row of the relational mirror's products table.
// Nullable columns are pointers; list columns hold JSON or comma-separated text.
type RelationalRow struct {
	ID              *int64     `json:"id,omitempty"`
	Name            string     `json:"name"`
	Units           *string    `json:"units,omitempty"`
	Department      *string    `json:"department,omitempty"`
	LicenseCategory *string    `json:"license_category,omitempty"`
	Seats           *int64     `json:"seats,omitempty"`
	AnnualCost      *float64   `json:"annual_cost,omitempty"`
	URL             *string    `json:"url,omitempty"`
	AddDate         *time.Time `json:"add_date,omitempty"`
	RenewalDate     *time.Time `json:"renewal_date,omitempty"`
	IsEnterprise    *bool      `json:"is_enterprise,omitempty"`
	Audience        *string    `json:"audience,omitempty"`
	Description     *string    `json:"description,omitempty"`
	LogoURL         *string    `json:"logo_url,omitempty"`
	SupportURL      *string    `json:"support_url,omitempty"`
	TutorialURL     *string    `json:"tutorial_url,omitempty"`
	PrivacyURL      *string    `json:"privacy_url,omitempty"`
	SSO             *bool      `json:"sso,omitempty"`
	Mobile          *bool      `json:"mobile,omitempty"`
	RiskRating      *string    `json:"risk_rating,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

// OrgWideReason names the rule that made a product org-wide.
type OrgWideReason string

// Org-wide decision rules in evaluation order.
const (
	ReasonNone                 OrgWideReason = ""
	ReasonLicenseKeyword       OrgWideReason = "license_keyword"
	ReasonOperationsDepartment OrgWideReason = "operations_department"
	ReasonOrganizationUnit     OrgWideReason = "organization_unit"
	ReasonAllSubUnits          OrgWideReason = "all_sub_units"
)

// Classification is the derived organizational placement of one Product.
// SubUnits is only populated when OrgWide is false; Orphan marks a non
// org-wide product that matched no sub-unit.
type Classification struct {
	OrgWide  bool          `json:"orgWide"`
	Reason   OrgWideReason `json:"reason,omitempty"`
	SubUnits []string      `json:"subUnits,omitempty"`
	Orphan   bool          `json:"orphan,omitempty"`
}

// InSubUnit reports whether the classification lists the named sub-unit.
func (c Classification) InSubUnit(name string) bool {
	for _, s := range c.SubUnits {
		if s == name {
			return true
		}
	}
	return false
}
