// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package collections adapts external writing-material collections
// (notes, character profiles, research entries) into the
// SearchableItem projection the fuzzy finder consumes.
//
// Each collection is a directory of markdown files. A file's first
// top-level heading becomes the item title; the rest is the body. Ids
// are derived deterministically from the file path so they stay
// stable across reloads.
package collections

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianScribe/services/manuscript"
)

// Source supplies one collection's items.
type Source interface {
	Kind() manuscript.SourceKind
	Items() ([]manuscript.SearchableItem, error)
}

// =============================================================================
// Directory-backed source
// =============================================================================

// DirSource reads a directory of .md files as one collection.
type DirSource struct {
	dir  string
	kind manuscript.SourceKind
}

// NewDirSource creates a source over dir tagged with kind.
func NewDirSource(dir string, kind manuscript.SourceKind) *DirSource {
	return &DirSource{dir: dir, kind: kind}
}

// Dir returns the watched directory.
func (s *DirSource) Dir() string { return s.dir }

// Kind implements Source.
func (s *DirSource) Kind() manuscript.SourceKind { return s.kind }

// Items implements Source. A missing directory yields no items rather
// than an error; collections are optional.
func (s *DirSource) Items() ([]manuscript.SearchableItem, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]manuscript.SearchableItem, 0, len(names))
	for _, name := range names {
		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		title, body := splitTitle(string(data))
		out = append(out, manuscript.SearchableItem{
			ID:         stableID(path),
			SourceKind: s.kind,
			Title:      title,
			Body:       body,
		})
	}
	return out, nil
}

// splitTitle peels a leading "# Title" heading off the content.
func splitTitle(content string) (title, body string) {
	content = strings.TrimSpace(content)
	lines := strings.SplitN(content, "\n", 2)
	first := strings.TrimSpace(lines[0])
	if strings.HasPrefix(first, "# ") {
		title = strings.TrimSpace(strings.TrimPrefix(first, "# "))
		if len(lines) > 1 {
			body = strings.TrimSpace(lines[1])
		}
		return title, body
	}
	return "", content
}

// stableID derives a deterministic id from the file path, so the same
// file keeps its identity across reloads.
func stableID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String()
}
