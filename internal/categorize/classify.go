// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package categorize

import (
	"github.com/tomtom215/licensewatch/internal/models"
)

// Classify derives the organizational placement of p. It holds no state
// between calls; identical input always yields an identical result.
func Classify(p *models.Product, rules *Rules) models.Classification {
	units := p.UnitsText()
	matched := rules.subUnitAliases.groups(units, len(rules.subUnits))

	if reason := orgWideReason(p, units, matched, rules); reason != models.ReasonNone {
		return models.Classification{OrgWide: true, Reason: reason}
	}

	var subUnits []string
	for i, hit := range matched {
		if hit {
			subUnits = append(subUnits, rules.subUnits[i])
		}
	}
	return models.Classification{SubUnits: subUnits, Orphan: len(subUnits) == 0}
}

func orgWideReason(p *models.Product, units string, matched []bool, rules *Rules) models.OrgWideReason {
	switch {
	case rules.orgWideKeywords.contains(p.LicenseCategory):
		return models.ReasonLicenseKeyword
	case rules.isOperations(p.Department):
		return models.ReasonOperationsDepartment
	case rules.orgAliases.contains(units):
		return models.ReasonOrganizationUnit
	case allTrue(matched):
		return models.ReasonAllSubUnits
	default:
		return models.ReasonNone
	}
}

func allTrue(b []bool) bool {
	if len(b) == 0 {
		return false
	}
	for _, v := range b {
		if !v {
			return false
		}
	}
	return true
}
