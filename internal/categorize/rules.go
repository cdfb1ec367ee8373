// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package categorize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/licensewatch/internal/config"
)

// Rules are the compiled classification inputs. Rules are immutable and safe
// for concurrent use.
type Rules struct {
	orgWideKeywords  *matcher // substring match on license category
	everyoneKeywords *matcher // substring match on license category
	orgAliases       *matcher // whole-word match on unit tags
	subUnitAliases   *matcher // whole-word match on unit tags, grouped by sub-unit
	subUnits         []string
	operationsDept   string
	placeholders     map[string]bool
}

// NewRules compiles classification rules from configuration.
func NewRules(cfg config.ClassificationConfig) (*Rules, error) {
	if len(cfg.SubUnits) == 0 {
		return nil, errors.New("at least one sub-unit is required")
	}

	names := make([]string, 0, len(cfg.SubUnits))
	aliases := make([][]string, 0, len(cfg.SubUnits))
	for i, su := range cfg.SubUnits {
		name := strings.TrimSpace(su.Name)
		if name == "" {
			return nil, fmt.Errorf("sub-unit %d has no name", i)
		}
		names = append(names, name)
		aliases = append(aliases, su.Aliases)
	}

	placeholders := make(map[string]bool, len(cfg.PlaceholderDepartments))
	for _, p := range cfg.PlaceholderDepartments {
		placeholders[strings.ToLower(strings.TrimSpace(p))] = true
	}

	return &Rules{
		orgWideKeywords:  newKeywordMatcher(cfg.OrgWideLicenseKeywords, false),
		everyoneKeywords: newKeywordMatcher(cfg.EveryoneLicenseKeywords, false),
		orgAliases:       newKeywordMatcher(cfg.OrganizationAliases, true),
		subUnitAliases:   newMatcher(aliases, true),
		subUnits:         names,
		operationsDept:   strings.ToLower(strings.TrimSpace(cfg.OperationsDepartment)),
		placeholders:     placeholders,
	}, nil
}

// SubUnits returns the sub-unit names in configured order.
func (r *Rules) SubUnits() []string {
	out := make([]string, len(r.subUnits))
	copy(out, r.subUnits)
	return out
}

// isOperations reports whether dept is the operations department.
func (r *Rules) isOperations(dept string) bool {
	return r.operationsDept != "" && strings.ToLower(strings.TrimSpace(dept)) == r.operationsDept
}

// IsEveryone reports whether a license category grants access to everyone
// in the bucket it sits in.
func (r *Rules) IsEveryone(licenseCategory string) bool {
	return r.everyoneKeywords.contains(licenseCategory)
}

// IsPlaceholderDepartment reports whether dept is empty or a placeholder
// value that is excluded from sub-group listings.
func (r *Rules) IsPlaceholderDepartment(dept string) bool {
	d := strings.ToLower(strings.TrimSpace(dept))
	return d == "" || r.placeholders[d]
}
