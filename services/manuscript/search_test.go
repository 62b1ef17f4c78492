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
	"testing"
)

func searchFixture() []SearchableItem {
	return []SearchableItem{
		{ID: "1", SourceKind: SourceBlock, Body: "The Cathedral rose over the town"},
		{ID: "2", SourceKind: SourceNote, Title: "Plot threads", Body: "unresolved arcs"},
		{ID: "3", SourceKind: SourceCharacter, Title: "Marianne", Body: "a retired cartographer"},
		{ID: "4", SourceKind: SourceResearch, Body: "medieval masonry guilds, 1300s"},
	}
}

func ids(items []SearchableItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

// =============================================================================
// Matching predicate
// =============================================================================

func TestSearch_EmptyQueryMatchesEverything(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"tabs and newlines", " \t\n "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Search(searchFixture(), tt.query)
			if len(got) != 4 {
				t.Fatalf("Search(%q) returned %d items, want all 4", tt.query, len(got))
			}
			for i, id := range ids(got) {
				if want := searchFixture()[i].ID; id != want {
					t.Errorf("result[%d] = %q, want input order preserved (%q)", i, id, want)
				}
			}
		})
	}
}

func TestSearch_SubsequenceMatch(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"case-insensitive substring", "cat", []string{"1"}},
		{"scattered subsequence", "Cdrl", []string{"1"}},
		{"title preferred over body", "Marianne", []string{"3"}},
		{"digits", "1300", []string{"4"}},
		{"no match", "xyz", nil},
		{"whitespace stripped from query", "c a t", []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Search(searchFixture(), tt.query))
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Search(%q) = %v, want %v", tt.query, got, tt.wantIDs)
			}
			for i := range tt.wantIDs {
				if got[i] != tt.wantIDs[i] {
					t.Errorf("Search(%q)[%d] = %q, want %q", tt.query, i, got[i], tt.wantIDs[i])
				}
			}
		})
	}
}

func TestSearch_TitleShadowsBody(t *testing.T) {
	// When a title is present, the body is not consulted.
	items := []SearchableItem{
		{ID: "n", SourceKind: SourceNote, Title: "shopping", Body: "dragons"},
	}

	if got := Search(items, "dragons"); len(got) != 0 {
		t.Errorf("body matched despite title being present: %v", ids(got))
	}
	if got := Search(items, "shop"); len(got) != 1 {
		t.Error("title did not match")
	}
}

func TestSearch_RegexMetacharactersAreLiteral(t *testing.T) {
	items := []SearchableItem{
		{ID: "a", SourceKind: SourceBlock, Body: "price (USD) is $4.99"},
		{ID: "b", SourceKind: SourceBlock, Body: "plain text"},
	}

	got := Search(items, "($.")
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Search with metacharacters = %v, want just %q", ids(got), "a")
	}
}

func TestSearch_StableOrder(t *testing.T) {
	items := []SearchableItem{
		{ID: "1", SourceKind: SourceBlock, Body: "alpha match"},
		{ID: "2", SourceKind: SourceNote, Body: "no hit"},
		{ID: "3", SourceKind: SourceResearch, Body: "another match"},
	}

	got := ids(Search(items, "match"))
	if len(got) != 2 || got[0] != "1" || got[1] != "3" {
		t.Errorf("Search order = %v, want [1 3]", got)
	}
}

func TestItemFromBlock(t *testing.T) {
	b := newBlock(Paragraph, "some prose")

	item := ItemFromBlock(b)
	if item.ID != b.ID || item.SourceKind != SourceBlock || item.Body != "some prose" {
		t.Errorf("projection = %+v", item)
	}
	if item.Title != "" {
		t.Errorf("block projection has a title: %q", item.Title)
	}
}
