// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package categorize

import (
	"reflect"
	"testing"
)

func TestMatcher_OverlappingPatterns(t *testing.T) {
	m := newKeywordMatcher([]string{"he", "she", "his", "hers"}, false)

	var got []string
	for _, mt := range m.search("USHERS") {
		got = append(got, mt.pattern)
	}
	want := []string{"she", "he", "hers"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("search = %v, want %v", got, want)
	}
}

func TestMatcher_WholeWord(t *testing.T) {
	m := newKeywordMatcher([]string{"high", "k-5"}, true)

	tests := []struct {
		text string
		want bool
	}{
		{"High School", true},
		{"elementary, high", true},
		{"(high)", true},
		{"Highlands", false},
		{"thigh", false},
		{"K-5", true},
		{"K-56", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := m.contains(tt.text); got != tt.want {
			t.Errorf("contains(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestMatcher_Groups(t *testing.T) {
	m := newMatcher([][]string{{"elementary", "primary"}, {"middle"}, {"high"}}, true)

	got := m.groups("Primary and High", 3)
	if !reflect.DeepEqual(got, []bool{true, false, true}) {
		t.Errorf("groups = %v", got)
	}
}

func TestMatcher_Unicode(t *testing.T) {
	m := newKeywordMatcher([]string{"école"}, true)
	if !m.contains("Primaire, ÉCOLE Saint-Jean") {
		t.Error("expected case-insensitive unicode match")
	}
	if m.contains("écoles") {
		t.Error("expected whole-word rejection")
	}
}
