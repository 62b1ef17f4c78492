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
	"log/slog"
	"strings"
	"sync"
)

// =============================================================================
// Store
// =============================================================================

// Store owns the canonical block sequence of one manuscript and every
// structural mutation on it.
//
// # Description
//
// All other components receive full-copy snapshots via Blocks or Get,
// never live references; history and review diffing depend on being
// able to compare an old copy against the current document without
// aliasing.
//
// Operations that reference an unknown id are silent no-ops. The UI
// can race ahead of state during rapid input, and ignoring a stale
// reference is preferable to crashing an editing session.
//
// # Thread Safety
//
// Structural edits come from the foreground interaction goroutine; the
// revision Runner writes corrections back from its own goroutine. The
// internal mutex serializes both against concurrent reads.
//
// The onMutate hook runs outside the lock but must not block; it is
// meant for scheduling work (debounced persistence), not doing it.
type Store struct {
	mu      sync.RWMutex
	doc     Document
	history History
	log     *slog.Logger

	onMutate func()
}

// NewStore creates a store holding a fresh one-block manuscript.
func NewStore(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{doc: emptyDocument(), log: log}
}

// Load replaces the document wholesale, e.g. from persistence at
// session start. Empty input falls back to the fresh one-block state.
// Load does not record history.
func (s *Store) Load(doc Document) {
	s.mu.Lock()
	if len(doc) == 0 {
		doc = emptyDocument()
	}
	s.doc = doc.Clone()
	s.mu.Unlock()
	s.notify()
}

// SetOnMutate registers the post-mutation hook. Pass nil to clear.
func (s *Store) SetOnMutate(fn func()) {
	s.mu.Lock()
	s.onMutate = fn
	s.mu.Unlock()
}

// Blocks returns a deep copy of the current document.
func (s *Store) Blocks() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Len returns the number of blocks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.doc)
}

// Get returns a copy of the block with the given id.
func (s *Store) Get(id string) (Block, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.doc.indexOf(id); i >= 0 {
		return s.doc[i], true
	}
	return Block{}, false
}

// CanUndo reports whether an undo entry is available.
func (s *Store) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanUndo()
}

// CanRedo reports whether a redo entry is available.
func (s *Store) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanRedo()
}

// =============================================================================
// Mutations
// =============================================================================

// InsertAfter inserts a new Paragraph immediately after the anchor
// block, or at the end when the anchor is unknown. Records history.
// Returns the new block's id for focus handoff.
func (s *Store) InsertAfter(anchorID, text string) string {
	s.mu.Lock()
	s.history.Checkpoint(s.doc)
	nb := newBlock(Paragraph, text)
	at := s.doc.indexOf(anchorID)
	if at < 0 {
		at = len(s.doc) - 1
	}
	s.doc = spliceAfter(s.doc, at, Document{nb})
	s.mu.Unlock()
	s.notify()
	return nb.ID
}

// UpdateContent replaces one block's text in place.
//
// Typing a bare run of three or more '-', '*' or '_' promotes the
// block to a Rule and clears its text; writing anything else into a
// Rule demotes it back to a Paragraph, keeping the invariant that a
// Rule's text is always empty.
//
// UpdateContent does not record history: content edits are coalesced,
// and callers decide when a checkpoint is warranted (before a paste or
// a bulk action, not on every keystroke).
func (s *Store) UpdateContent(id, text string) {
	s.mu.Lock()
	i := s.doc.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		s.log.Debug("update on unknown block ignored", "block_id", id)
		return
	}
	s.applyText(i, text)
	s.mu.Unlock()
	s.notify()
}

// ReplaceContent is UpdateContent with a history checkpoint first. Use
// it for bulk replacements, such as applying a rewrite suggestion,
// where a single undo should restore the prior text.
func (s *Store) ReplaceContent(id, text string) {
	s.mu.Lock()
	i := s.doc.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		s.log.Debug("replace on unknown block ignored", "block_id", id)
		return
	}
	s.history.Checkpoint(s.doc)
	s.applyText(i, text)
	s.mu.Unlock()
	s.notify()
}

// applyText writes text into block i, handling Rule promotion and
// demotion. Caller holds the write lock.
func (s *Store) applyText(i int, text string) {
	if rulePattern.MatchString(strings.TrimSpace(text)) {
		s.doc[i].Kind = Rule
		s.doc[i].Text = ""
	} else {
		if s.doc[i].Kind == Rule {
			s.doc[i].Kind = Paragraph
		}
		s.doc[i].Text = text
	}
}

// Remove deletes a block. Removing the last remaining block resets
// the manuscript to a single empty Paragraph rather than leaving it
// empty. Records history. Unknown ids are ignored.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	i := s.doc.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		s.log.Debug("remove of unknown block ignored", "block_id", id)
		return
	}
	s.history.Checkpoint(s.doc)
	s.doc = append(s.doc[:i], s.doc[i+1:]...)
	if len(s.doc) == 0 {
		s.doc = emptyDocument()
	}
	s.mu.Unlock()
	s.notify()
}

// SplitAt cuts a block in two at a rune offset: the block keeps
// [0, offset) and a new Paragraph after it takes the rest. Records
// history. Returns the new block's id, or "" for an unknown id.
func (s *Store) SplitAt(id string, offset int) string {
	s.mu.Lock()
	i := s.doc.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		s.log.Debug("split of unknown block ignored", "block_id", id)
		return ""
	}
	s.history.Checkpoint(s.doc)
	runes := []rune(s.doc[i].Text)
	if offset < 0 {
		offset = 0
	}
	if offset > len(runes) {
		offset = len(runes)
	}
	nb := newBlock(Paragraph, string(runes[offset:]))
	s.doc[i].Text = string(runes[:offset])
	s.doc = spliceAfter(s.doc, i, Document{nb})
	s.mu.Unlock()
	s.notify()
	return nb.ID
}

// PasteInto routes bulk text through the segmenter. When the target
// is an empty Paragraph the parsed blocks replace it in place;
// otherwise they are inserted after it. Records history before
// mutating. Whitespace-only paste and unknown ids are no-ops.
func (s *Store) PasteInto(id, raw string) {
	parsed := Segment(raw)
	if len(parsed) == 0 {
		return
	}
	s.mu.Lock()
	i := s.doc.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		s.log.Debug("paste into unknown block ignored", "block_id", id)
		return
	}
	s.history.Checkpoint(s.doc)
	if s.doc[i].Kind == Paragraph && strings.TrimSpace(s.doc[i].Text) == "" {
		s.doc = append(s.doc[:i], append(Document(parsed), s.doc[i+1:].Clone()...)...)
	} else {
		s.doc = spliceAfter(s.doc, i, parsed)
	}
	s.mu.Unlock()
	s.log.Info("paste segmented", "blocks", len(parsed))
	s.notify()
}

// Reorder replaces the document order with the given permutation of
// the current id set. Anything that is not an exact permutation is
// rejected as a no-op.
func (s *Store) Reorder(newOrder []string) {
	s.mu.Lock()
	if len(newOrder) != len(s.doc) {
		s.mu.Unlock()
		s.log.Debug("reorder rejected", "reason", "length mismatch")
		return
	}
	byID := make(map[string]Block, len(s.doc))
	for _, b := range s.doc {
		byID[b.ID] = b
	}
	next := make(Document, 0, len(newOrder))
	for _, id := range newOrder {
		b, ok := byID[id]
		if !ok {
			s.mu.Unlock()
			s.log.Debug("reorder rejected", "reason", "unknown id", "block_id", id)
			return
		}
		delete(byID, id)
		next = append(next, b)
	}
	s.history.Checkpoint(s.doc)
	s.doc = next
	s.mu.Unlock()
	s.notify()
}

// Clear resets the manuscript to its fresh one-block state. Records
// history so an accidental clear can be undone.
func (s *Store) Clear() {
	s.mu.Lock()
	s.history.Checkpoint(s.doc)
	s.doc = emptyDocument()
	s.mu.Unlock()
	s.notify()
}

// =============================================================================
// Undo / Redo
// =============================================================================

// Undo restores the most recent checkpoint. Returns false when there
// is nothing to undo.
func (s *Store) Undo() bool {
	s.mu.Lock()
	doc, ok := s.history.Undo(s.doc)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.doc = doc
	s.mu.Unlock()
	s.notify()
	return true
}

// Redo restores the most recently undone state. Returns false when
// there is nothing to redo.
func (s *Store) Redo() bool {
	s.mu.Lock()
	doc, ok := s.history.Redo(s.doc)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.doc = doc
	s.mu.Unlock()
	s.notify()
	return true
}

// restore replaces the document under a fresh checkpoint; used by the
// review engine's Revert.
func (s *Store) restore(doc Document) {
	s.mu.Lock()
	s.history.Checkpoint(s.doc)
	s.doc = doc.Clone()
	s.mu.Unlock()
	s.notify()
}

func (s *Store) notify() {
	s.mu.RLock()
	fn := s.onMutate
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// spliceAfter inserts blocks immediately after index at, cloning the
// tail so the insertion cannot alias history snapshots.
func spliceAfter(doc Document, at int, blocks Document) Document {
	return append(doc[:at+1], append(blocks, doc[at+1:].Clone()...)...)
}
