// Licensewatch - Software License Catalog Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/licensewatch

package categorize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// matcher is a case-insensitive Aho-Corasick automaton over a fixed pattern
// set. It finds every pattern occurrence in a text in O(n + m + z) time, where:
//   - n = length of text
//   - m = total length of all patterns
//   - z = number of matches
//
// A matcher is immutable once built and safe for concurrent use.
//
// With wholeWord set, a match only counts when it is not glued to a letter or
// digit on either side, so "high" matches "High School" and "K-12 high" but
// not "Highlands".
type matcher struct {
	root      *acNode
	patterns  []pattern
	wholeWord bool
}

// acNode represents a node in the Aho-Corasick automaton.
type acNode struct {
	children map[rune]*acNode
	failure  *acNode // Failure link for when match fails
	output   []int   // Indices of patterns that end at this node
}

// pattern is a lowercased search pattern with the index of the group it
// belongs to (a sub-unit, or 0 for flat keyword sets).
type pattern struct {
	text  string
	group int
}

// match is one occurrence of a pattern in a text.
type match struct {
	pattern string
	group   int
	start   int // byte offset in the lowercased text
	end     int
}

func newACNode() *acNode {
	return &acNode{children: make(map[rune]*acNode)}
}

// newMatcher builds a matcher. groups[i] lists the patterns of group i;
// blank patterns are ignored.
func newMatcher(groups [][]string, wholeWord bool) *matcher {
	m := &matcher{root: newACNode(), wholeWord: wholeWord}
	for g, texts := range groups {
		for _, t := range texts {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			m.insert(len(m.patterns), t)
			m.patterns = append(m.patterns, pattern{text: t, group: g})
		}
	}
	m.buildFailureLinks()
	return m
}

// newKeywordMatcher builds a single-group matcher.
func newKeywordMatcher(keywords []string, wholeWord bool) *matcher {
	return newMatcher([][]string{keywords}, wholeWord)
}

func (m *matcher) insert(index int, text string) {
	node := m.root
	for _, ch := range text {
		if node.children[ch] == nil {
			node.children[ch] = newACNode()
		}
		node = node.children[ch]
	}
	node.output = append(node.output, index)
}

// buildFailureLinks builds failure links using BFS.
func (m *matcher) buildFailureLinks() {
	queue := make([]*acNode, 0, len(m.root.children))
	for _, child := range m.root.children {
		child.failure = m.root
		queue = append(queue, child)
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for ch, child := range current.children {
			queue = append(queue, child)

			// Follow failure links to find longest proper suffix
			fail := current.failure
			for fail != nil && fail.children[ch] == nil {
				fail = fail.failure
			}

			if fail == nil {
				child.failure = m.root
			} else {
				child.failure = fail.children[ch]
				child.output = append(child.output, child.failure.output...)
			}
		}
	}
}

// search returns every accepted match in text.
func (m *matcher) search(text string) []match {
	if len(m.patterns) == 0 || text == "" {
		return nil
	}

	lowered := strings.ToLower(text)
	var matches []match
	node := m.root

	for i, ch := range lowered {
		for node != nil && node.children[ch] == nil {
			node = node.failure
		}
		if node == nil {
			node = m.root
			continue
		}
		node = node.children[ch]

		end := i + utf8.RuneLen(ch)
		for _, idx := range node.output {
			p := m.patterns[idx]
			start := end - len(p.text)
			if m.wholeWord && !atWordBoundary(lowered, start, end) {
				continue
			}
			matches = append(matches, match{pattern: p.text, group: p.group, start: start, end: end})
		}
	}

	return matches
}

// contains reports whether any pattern is accepted in text.
func (m *matcher) contains(text string) bool {
	return len(m.search(text)) > 0
}

// groups reports which groups have at least one accepted match in text.
func (m *matcher) groups(text string, n int) []bool {
	hit := make([]bool, n)
	for _, mt := range m.search(text) {
		if mt.group < n {
			hit[mt.group] = true
		}
	}
	return hit
}

// atWordBoundary reports whether text[start:end] is not adjacent to a letter
// or digit.
func atWordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
