// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package categorize

import (
	"reflect"
	"testing"

	"github.com/tomtom215/licensewatch/internal/config"
	"github.com/tomtom215/licensewatch/internal/models"
)

func testRules(t *testing.T) *Rules {
	t.Helper()
	orgWide := []string{"site", "school", "enterprise", "unlimited"}
	rules, err := NewRules(config.ClassificationConfig{
		OrgWideLicenseKeywords:  orgWide,
		EveryoneLicenseKeywords: append(append([]string{}, orgWide...), "building", "campus"),
		OperationsDepartment:    "School Operations",
		OrganizationAliases:     []string{"district", "district-wide", "all schools"},
		SubUnits: []config.SubUnitConfig{
			{Name: "elementary", Aliases: []string{"elementary", "primary", "lower school", "k-5"}},
			{Name: "middle", Aliases: []string{"middle", "middle school", "6-8"}},
			{Name: "high", Aliases: []string{"high", "high school", "secondary", "9-12"}},
		},
		PlaceholderDepartments: []string{"-", "n/a", "tbd"},
	})
	if err != nil {
		t.Fatalf("NewRules() error = %v", err)
	}
	return rules
}

func product(name, license, dept string, units ...string) *models.Product {
	return &models.Product{Name: name, LicenseCategory: license, Department: dept, Units: units}
}

func TestClassify_SiteLicenseAlwaysOrgWide(t *testing.T) {
	rules := testRules(t)
	variants := []*models.Product{
		product("A", "Site License", "", ""),
		product("B", "Site License", "Math", "Elementary"),
		product("C", "site license", "School Operations", "High"),
		product("D", "SITE LICENSE", "n/a", "Highlands"),
		product("E", "Site License", "Science", "Elementary", "Middle"),
	}

	for _, p := range variants {
		c := Classify(p, rules)
		if !c.OrgWide || c.Reason != models.ReasonLicenseKeyword {
			t.Errorf("Classify(%s) = %+v, want org-wide by license keyword", p.Name, c)
		}
		if len(c.SubUnits) != 0 || c.Orphan {
			t.Errorf("org-wide product %s should not list sub-units: %+v", p.Name, c)
		}
	}
}

func TestClassify_DecisionOrder(t *testing.T) {
	rules := testRules(t)
	tests := []struct {
		name       string
		p          *models.Product
		wantOrg    bool
		wantReason models.OrgWideReason
		wantSubs   []string
		wantOrphan bool
	}{
		{
			name:       "operations department wins over missing keyword",
			p:          product("Ops", "Individual", "School Operations", "Elementary"),
			wantOrg:    true,
			wantReason: models.ReasonOperationsDepartment,
		},
		{
			name:       "department match ignores case and spacing",
			p:          product("Ops2", "Per User", "  school operations ", ""),
			wantOrg:    true,
			wantReason: models.ReasonOperationsDepartment,
		},
		{
			name:       "organization named in unit tags",
			p:          product("Dist", "Per User", "Math", "District-wide"),
			wantOrg:    true,
			wantReason: models.ReasonOrganizationUnit,
		},
		{
			name:       "all three sub-units",
			p:          product("All", "Per User", "Math", "Elementary, Middle, High"),
			wantOrg:    true,
			wantReason: models.ReasonAllSubUnits,
		},
		{
			name:     "exactly two sub-units is not org-wide",
			p:        product("Two", "Per User", "Math", "Elementary, High School"),
			wantSubs: []string{"elementary", "high"},
		},
		{
			name:     "aliases map to the same sub-unit",
			p:        product("Alias", "Per User", "Reading", "Lower School; K-5 Primary"),
			wantSubs: []string{"elementary"},
		},
		{
			name:       "whole-word aliases only",
			p:          product("Orphan", "Per User", "Math", "Highlands Academy"),
			wantOrphan: true,
		},
		{
			name:       "no unit tags is an orphan",
			p:          product("Empty", "Per User", "Math"),
			wantOrphan: true,
		},
		{
			name:       "license keyword is a substring match",
			p:          product("Sitewide", "Sitewide", "Math", "Middle"),
			wantOrg:    true,
			wantReason: models.ReasonLicenseKeyword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.p, rules)
			if c.OrgWide != tt.wantOrg || c.Reason != tt.wantReason {
				t.Errorf("OrgWide/Reason = %v/%q, want %v/%q", c.OrgWide, c.Reason, tt.wantOrg, tt.wantReason)
			}
			if !reflect.DeepEqual(c.SubUnits, tt.wantSubs) {
				t.Errorf("SubUnits = %v, want %v", c.SubUnits, tt.wantSubs)
			}
			if c.Orphan != tt.wantOrphan {
				t.Errorf("Orphan = %v, want %v", c.Orphan, tt.wantOrphan)
			}
		})
	}
}

func TestClassify_Idempotent(t *testing.T) {
	rules := testRules(t)
	p := product("Nearpod", "Per Teacher", "Science", "Middle, High")

	first := Classify(p, rules)
	second := Classify(p, rules)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Classify not idempotent: %+v vs %+v", first, second)
	}

	// free-text change takes effect on the next call
	p.Units = []string{"Elementary"}
	third := Classify(p, rules)
	if !reflect.DeepEqual(third.SubUnits, []string{"elementary"}) {
		t.Errorf("Classify after tag change = %+v", third)
	}
}

func catalogFixture() []*models.Product {
	flagship := product("Google Workspace", "Enterprise", "Technology", "District")
	flagship.Enterprise = true
	return []*models.Product{
		flagship,
		product("zoom", "Site License", "Technology", ""),
		product("Canvas", "Site License", "", ""),
		product("PowerSchool", "Per User", "School Operations", ""),
		product("Destiny", "Per User", "Library", "district"),
		product("Desmos", "Per Student", "Math", "Middle, High"),
		product("IXL", "Per Student", "math", "Elementary, Middle"),
		product("Raz-Kids", "Building License", "Reading", "Elementary"),
		product("apple Music", "Per User", "tbd", "High"),
		product("Apple Music", "Per User", "Fine Arts", "High"),
		product("Mystery", "Per User", "Math", "Annex"),
	}
}

func TestCategorize(t *testing.T) {
	rules := testRules(t)
	got := Categorize(catalogFixture(), rules)

	wantOrg := models.OrganizationTab{
		Flagship: []string{"Google Workspace"},
		Everyone: []string{"Canvas", "zoom"},
		BySubGroup: []models.SubGroup{
			{Name: "Library", Products: []string{"Destiny"}},
			{Name: "School Operations", Products: []string{"PowerSchool"}},
		},
	}
	if !reflect.DeepEqual(got.Organization, wantOrg) {
		t.Errorf("Organization =\n%+v\nwant\n%+v", got.Organization, wantOrg)
	}
	if got.OrgWideCount != 5 {
		t.Errorf("OrgWideCount = %d, want 5", got.OrgWideCount)
	}

	if len(got.SubUnits) != 3 {
		t.Fatalf("SubUnits = %d tabs, want 3", len(got.SubUnits))
	}

	elem := got.SubUnits[0]
	if elem.Name != "elementary" {
		t.Errorf("tab order: %s", elem.Name)
	}
	if !reflect.DeepEqual(elem.Everyone, []string{"Raz-Kids"}) {
		t.Errorf("elementary Everyone = %v", elem.Everyone)
	}
	if !reflect.DeepEqual(elem.BySubGroup, []models.SubGroup{{Name: "math", Products: []string{"IXL"}}}) {
		t.Errorf("elementary BySubGroup = %+v", elem.BySubGroup)
	}

	middle := got.SubUnits[1]
	wantMiddle := []models.SubGroup{{Name: "Math", Products: []string{"Desmos", "IXL"}}}
	if !reflect.DeepEqual(middle.BySubGroup, wantMiddle) {
		t.Errorf("middle BySubGroup = %+v, want %+v", middle.BySubGroup, wantMiddle)
	}

	high := got.SubUnits[2]
	if high.Ungrouped != 1 {
		t.Errorf("high Ungrouped = %d, want 1 (placeholder department)", high.Ungrouped)
	}
	wantHigh := []models.SubGroup{
		{Name: "Fine Arts", Products: []string{"Apple Music"}},
		{Name: "Math", Products: []string{"Desmos"}},
	}
	if !reflect.DeepEqual(high.BySubGroup, wantHigh) {
		t.Errorf("high BySubGroup = %+v, want %+v", high.BySubGroup, wantHigh)
	}
	for _, tab := range got.SubUnits {
		for _, g := range tab.BySubGroup {
			for _, n := range g.Products {
				if n == "Canvas" || n == "Google Workspace" || n == "PowerSchool" {
					t.Errorf("org-wide product %s repeated in sub-unit tab %s", n, tab.Name)
				}
			}
		}
	}

	if !reflect.DeepEqual(got.Orphans, []string{"Mystery"}) {
		t.Errorf("Orphans = %v", got.Orphans)
	}
	if got.BySubUnit["high"] != 3 || got.BySubUnit["elementary"] != 2 {
		t.Errorf("BySubUnit = %v", got.BySubUnit)
	}
}

func TestCategorize_OrderIndependentAndIdempotent(t *testing.T) {
	rules := testRules(t)
	products := catalogFixture()
	reversed := make([]*models.Product, len(products))
	for i, p := range products {
		reversed[len(products)-1-i] = p
	}

	a := Categorize(products, rules)
	b := Categorize(reversed, rules)
	c := Categorize(products, rules)

	if !reflect.DeepEqual(a.Organization, b.Organization) || !reflect.DeepEqual(a.SubUnits, b.SubUnits) {
		t.Error("Categorize depends on input order")
	}
	if !reflect.DeepEqual(a, c) {
		t.Error("Categorize is not idempotent")
	}
}

func TestSortNames(t *testing.T) {
	got := SortNames([]string{"banana", "Zoom", "apple", "Apple", "banana"})
	want := []string{"Apple", "apple", "banana", "Zoom"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortNames = %v, want %v", got, want)
	}
	if got := SortNames(nil); got == nil || len(got) != 0 {
		t.Errorf("SortNames(nil) = %#v, want empty non-nil", got)
	}
}

func TestNewRules_Errors(t *testing.T) {
	if _, err := NewRules(config.ClassificationConfig{}); err == nil {
		t.Error("NewRules without sub-units should fail")
	}
	if _, err := NewRules(config.ClassificationConfig{SubUnits: []config.SubUnitConfig{{Name: " "}}}); err == nil {
		t.Error("NewRules with blank sub-unit name should fail")
	}
}
