// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package collections

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/AleutianScribe/services/manuscript"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// =============================================================================
// DirSource
// =============================================================================

func TestDirSource_ReadsMarkdownFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "marianne.md", "# Marianne\n\nA retired cartographer.")
	writeFile(t, dir, "untitled.md", "Loose fragment with no heading.")
	writeFile(t, dir, "ignored.txt", "not markdown")

	src := NewDirSource(dir, manuscript.SourceCharacter)
	items, err := src.Items()
	if err != nil {
		t.Fatalf("Items() error = %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Title != "Marianne" {
		t.Errorf("title = %q, want %q", items[0].Title, "Marianne")
	}
	if items[0].Body != "A retired cartographer." {
		t.Errorf("body = %q", items[0].Body)
	}
	if items[1].Title != "" || items[1].Body != "Loose fragment with no heading." {
		t.Errorf("untitled item = %+v", items[1])
	}
	for _, item := range items {
		if item.SourceKind != manuscript.SourceCharacter {
			t.Errorf("source kind = %q, want character", item.SourceKind)
		}
	}
}

func TestDirSource_MissingDirYieldsNothing(t *testing.T) {
	src := NewDirSource(filepath.Join(t.TempDir(), "absent"), manuscript.SourceNote)

	items, err := src.Items()
	if err != nil {
		t.Fatalf("Items() error = %v, missing dirs are tolerated", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want 0", len(items))
	}
}

func TestDirSource_StableIDsAcrossReloads(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "note.md", "# Note\n\nbody")
	src := NewDirSource(dir, manuscript.SourceNote)

	first, _ := src.Items()
	second, _ := src.Items()

	if first[0].ID != second[0].ID {
		t.Errorf("id changed across reloads: %q vs %q", first[0].ID, second[0].ID)
	}
}

func TestSplitTitle(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTitle string
		wantBody  string
	}{
		{"titled", "# The Tower\n\nIt stood alone.", "The Tower", "It stood alone."},
		{"no title", "Just body text.", "", "Just body text."},
		{"title only", "# Bare Title", "Bare Title", ""},
		{"deep heading is body", "## Subsection\ntext", "", "## Subsection\ntext"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, body := splitTitle(tt.input)
			if title != tt.wantTitle || body != tt.wantBody {
				t.Errorf("splitTitle() = %q, %q; want %q, %q", title, body, tt.wantTitle, tt.wantBody)
			}
		})
	}
}

// =============================================================================
// Library
// =============================================================================

func TestLibrary_AggregatesInSourceOrder(t *testing.T) {
	notesDir, charsDir := t.TempDir(), t.TempDir()
	writeFile(t, notesDir, "a.md", "# Note A\n\nfirst note")
	writeFile(t, charsDir, "b.md", "# Character B\n\na person")

	lib := NewLibrary(nil,
		NewDirSource(notesDir, manuscript.SourceNote),
		NewDirSource(charsDir, manuscript.SourceCharacter),
	)
	if err := lib.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	items := lib.Items()
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].SourceKind != manuscript.SourceNote || items[1].SourceKind != manuscript.SourceCharacter {
		t.Errorf("source order not preserved: %q then %q", items[0].SourceKind, items[1].SourceKind)
	}
}

func TestLibrary_SearchAcrossSources(t *testing.T) {
	notesDir := t.TempDir()
	writeFile(t, notesDir, "plot.md", "# Cathedral plot\n\nthe spire collapses")

	lib := NewLibrary(nil, NewDirSource(notesDir, manuscript.SourceNote))
	if err := lib.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	blocks := manuscript.Segment("The Cathedral rose over the town")
	items := append([]manuscript.SearchableItem{manuscript.ItemFromBlock(blocks[0])}, lib.Items()...)

	got := manuscript.Search(items, "cat")
	if len(got) != 2 {
		t.Fatalf("cross-source search returned %d items, want 2", len(got))
	}
	if got[0].SourceKind != manuscript.SourceBlock || got[1].SourceKind != manuscript.SourceNote {
		t.Errorf("result order = %q, %q", got[0].SourceKind, got[1].SourceKind)
	}
}

func TestLibrary_EmptyWithoutReload(t *testing.T) {
	lib := NewLibrary(nil, NewDirSource(t.TempDir(), manuscript.SourceNote))

	if items := lib.Items(); len(items) != 0 {
		t.Errorf("unloaded library has %d items, want 0", len(items))
	}
}
