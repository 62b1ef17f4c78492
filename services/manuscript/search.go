// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package manuscript

import (
	"regexp"
	"strings"
)

// =============================================================================
// Fuzzy finder
// =============================================================================

// SourceKind tags where a searchable item came from.
type SourceKind string

const (
	SourceBlock     SourceKind = "block"
	SourceNote      SourceKind = "note"
	SourceCharacter SourceKind = "character"
	SourceResearch  SourceKind = "research"
)

// SearchableItem is the normalized projection the fuzzy finder works
// on. Blocks and every external collection record are reduced to this
// shape by their adapters; it is derived, never persisted.
type SearchableItem struct {
	ID         string
	SourceKind SourceKind
	Title      string
	Body       string
}

// ItemFromBlock projects one manuscript block.
func ItemFromBlock(b Block) SearchableItem {
	return SearchableItem{ID: b.ID, SourceKind: SourceBlock, Body: b.Text}
}

// Search filters items down to those matching the query, preserving
// input order.
//
// # Description
//
// A query stripped of all whitespace and left empty matches
// everything. Otherwise the remaining characters form a
// case-insensitive subsequence pattern ("abc" matches "a...b...c")
// tested against the item's title when present, its body otherwise.
// There is no relevance ranking beyond matches / doesn't.
func Search(items []SearchableItem, query string) []SearchableItem {
	pattern, ok := compileQuery(query)
	if !ok {
		out := make([]SearchableItem, len(items))
		copy(out, items)
		return out
	}

	out := make([]SearchableItem, 0, len(items))
	for _, item := range items {
		haystack := item.Body
		if item.Title != "" {
			haystack = item.Title
		}
		if pattern.MatchString(haystack) {
			out = append(out, item)
		}
	}
	return out
}

// compileQuery builds the subsequence pattern. The second return is
// false when the query is effectively empty.
func compileQuery(query string) (*regexp.Regexp, bool) {
	stripped := strings.Join(strings.Fields(query), "")
	if stripped == "" {
		return nil, false
	}
	parts := make([]string, 0, len(stripped))
	for _, r := range stripped {
		parts = append(parts, regexp.QuoteMeta(string(r)))
	}
	return regexp.MustCompile("(?i)" + strings.Join(parts, ".*")), true
}
