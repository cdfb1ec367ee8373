// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package categorize

import (
	"sort"
	"strings"

	"github.com/tomtom215/licensewatch/internal/models"
)

// Entry pairs a product with its classification for one pass.
type Entry struct {
	Product        *models.Product
	Classification models.Classification
}

// Categorized is the bucketed view of one pass.
type Categorized struct {
	Organization models.OrganizationTab
	SubUnits     []models.SubUnitTab
	Orphans      []string
	Entries      []Entry
	OrgWideCount int
	BySubUnit    map[string]int
}

// Categorize classifies every product and builds the organization and
// sub-unit tabs. Input order does not affect any list; names within a list
// are unique and sorted by SortNames.
func Categorize(products []*models.Product, rules *Rules) Categorized {
	out := Categorized{
		Entries:   make([]Entry, 0, len(products)),
		BySubUnit: make(map[string]int, len(rules.subUnits)),
	}

	org := newTabBuilder()
	subs := make([]*tabBuilder, len(rules.subUnits))
	for i := range subs {
		subs[i] = newTabBuilder()
	}
	var orphans []string

	for _, p := range products {
		c := Classify(p, rules)
		out.Entries = append(out.Entries, Entry{Product: p, Classification: c})

		switch {
		case c.OrgWide:
			out.OrgWideCount++
			switch {
			case p.Enterprise:
				org.flagship = append(org.flagship, p.Name)
			case rules.IsEveryone(p.LicenseCategory):
				org.everyone = append(org.everyone, p.Name)
			default:
				org.addToGroup(p, rules)
			}
		case c.Orphan:
			orphans = append(orphans, p.Name)
		default:
			for i, name := range rules.subUnits {
				if !c.InSubUnit(name) {
					continue
				}
				out.BySubUnit[name]++
				if rules.IsEveryone(p.LicenseCategory) {
					subs[i].everyone = append(subs[i].everyone, p.Name)
				} else {
					subs[i].addToGroup(p, rules)
				}
			}
		}
	}

	out.Organization = models.OrganizationTab{
		Flagship:   SortNames(org.flagship),
		Everyone:   SortNames(org.everyone),
		BySubGroup: org.subGroups(),
		Ungrouped:  org.ungrouped,
	}
	out.SubUnits = make([]models.SubUnitTab, len(rules.subUnits))
	for i, name := range rules.subUnits {
		out.SubUnits[i] = models.SubUnitTab{
			Name:       name,
			Everyone:   SortNames(subs[i].everyone),
			BySubGroup: subs[i].subGroups(),
			Ungrouped:  subs[i].ungrouped,
		}
	}
	out.Orphans = SortNames(orphans)

	return out
}

// tabBuilder accumulates one tab's sections before sorting.
type tabBuilder struct {
	flagship  []string
	everyone  []string
	groups    map[string][]string // lowercased department -> names
	labels    map[string]string   // lowercased department -> display label
	ungrouped int
}

func newTabBuilder() *tabBuilder {
	return &tabBuilder{
		groups: make(map[string][]string),
		labels: make(map[string]string),
	}
}

// addToGroup files p under its department, or counts it as ungrouped when
// the department is empty or a placeholder.
func (b *tabBuilder) addToGroup(p *models.Product, rules *Rules) {
	if rules.IsPlaceholderDepartment(p.Department) {
		b.ungrouped++
		return
	}
	label := strings.TrimSpace(p.Department)
	key := strings.ToLower(label)
	b.groups[key] = append(b.groups[key], p.Name)
	// the alphabetically first spelling labels the group, independent of input order
	if cur, ok := b.labels[key]; !ok || label < cur {
		b.labels[key] = label
	}
}

func (b *tabBuilder) subGroups() []models.SubGroup {
	out := make([]models.SubGroup, 0, len(b.groups))
	for key, names := range b.groups {
		out = append(out, models.SubGroup{Name: b.labels[key], Products: SortNames(names)})
	}
	sort.Slice(out, func(i, j int) bool {
		return lessName(out[i].Name, out[j].Name)
	})
	return out
}

// SortNames returns names de-duplicated and sorted case-insensitively, with
// ties broken case-sensitively so the order is total. The result is never nil.
func SortNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return lessName(out[i], out[j])
	})
	return out
}

func lessName(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la != lb {
		return la < lb
	}
	return a < b
}
