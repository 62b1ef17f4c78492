// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package manuscript implements the manuscript state engine: the
// block-structured document model, its mutation operations, bounded
// undo/redo history, paste segmentation, snapshot diffing for review,
// the batch revision sweep, and cross-source fuzzy search.
//
// # Thread Safety
//
// The document, history, and review state are mutated only by the
// foreground interaction goroutine. The one exception is the revision
// Runner, which serializes its write-backs through the Store it was
// given; see runner.go.
package manuscript

import (
	"github.com/google/uuid"
)

// =============================================================================
// Block
// =============================================================================

// Kind classifies a block within the manuscript.
type Kind int

const (
	// Paragraph is ordinary prose.
	Paragraph Kind = iota

	// Heading is a section title (marker stripped, text only).
	Heading

	// Rule is a horizontal separator. Its text is always empty.
	Rule
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case Paragraph:
		return "paragraph"
	case Heading:
		return "heading"
	case Rule:
		return "rule"
	default:
		return "unknown"
	}
}

// Block is an atomic unit of the manuscript.
//
// The ID is assigned once at creation and never reused or mutated.
// Blocks carry only a kind tag and plain text; there is no rich-text
// markup at this layer.
type Block struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

// newBlock creates a block with a fresh id.
func newBlock(kind Kind, text string) Block {
	return Block{ID: uuid.NewString(), Kind: kind, Text: text}
}

// =============================================================================
// Document
// =============================================================================

// Document is the ordered block sequence of one manuscript.
//
// A Document is a value: components that need a fixed reference point
// (history entries, the comparison snapshot) take a Clone so the live
// sequence can keep mutating without aliasing.
//
// Invariant: a live Document always contains at least one block, and
// block ids never repeat within it.
type Document []Block

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	copy(out, d)
	return out
}

// Equal reports whether two documents have identical blocks in
// identical order.
func (d Document) Equal(other Document) bool {
	if len(d) != len(other) {
		return false
	}
	for i := range d {
		if d[i] != other[i] {
			return false
		}
	}
	return true
}

// indexOf returns the position of the block with the given id,
// or -1 when no such block exists.
func (d Document) indexOf(id string) int {
	for i := range d {
		if d[i].ID == id {
			return i
		}
	}
	return -1
}

// emptyDocument returns the one-block document a fresh session starts
// with, and that Clear and last-block removal reset to.
func emptyDocument() Document {
	return Document{newBlock(Paragraph, "")}
}
