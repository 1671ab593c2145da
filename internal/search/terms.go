// Package search holds the free-text search helpers shared by the band and
// event tools: splitting a semicolon-separated query into terms, fanning
// the terms out as independent requests, merging the results by ID, and
// debouncing rapidly changing input.
package search

import (
	"strings"
	"unicode/utf8"
)

// MinTermLength is the shortest term worth sending upstream.
const MinTermLength = 2

// Separator splits one search box into several independent terms.
const Separator = ";"

// SplitTerms splits raw on Separator, trims each segment, and drops empty
// segments and segments shorter than minLen runes. Repeated terms are
// kept once, in first-seen order.
func SplitTerms(raw string, minLen int) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, Separator) {
		term := strings.TrimSpace(part)
		if term == "" || utf8.RuneCountInString(term) < minLen {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}

// IsMultiTerm reports whether raw names more than one usable term.
// Multi-term queries bypass upstream pagination.
func IsMultiTerm(raw string) bool {
	return len(SplitTerms(raw, MinTermLength)) > 1
}
