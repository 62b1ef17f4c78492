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
	"strings"
	"sync"
)

// diffLookahead bounds how far ahead the word matcher searches the old
// token stream for each new token.
const diffLookahead = 10

// =============================================================================
// Review
// =============================================================================

// Review holds the frozen comparison snapshot used to mark blocks
// dirty and render word-level change highlighting.
//
// # Description
//
// The snapshot is outside the undo/redo chain: it exists purely so the
// live document can be diffed against a fixed reference point while
// edits (or a revision sweep) land on top of it. Approve replaces it
// with the live document; Revert replaces the live document with it.
//
// # Thread Safety
//
// The revision Runner takes a snapshot on sweep entry from its own
// goroutine while the UI polls dirty state, so snapshot access is
// mutex-guarded.
type Review struct {
	store *Store

	mu       sync.RWMutex
	snapshot Document
	taken    bool
}

// NewReview creates a review engine over the given store, with no
// snapshot taken yet.
func NewReview(store *Store) *Review {
	return &Review{store: store}
}

// TakeSnapshot freezes a deep copy of the live document as the new
// comparison point.
func (r *Review) TakeSnapshot() {
	doc := r.store.Blocks()
	r.mu.Lock()
	r.snapshot = doc
	r.taken = true
	r.mu.Unlock()
}

// HasSnapshot reports whether a comparison point exists.
func (r *Review) HasSnapshot() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.taken
}

// IsDirty reports whether the block's live text differs from the
// snapshot, or the block is absent from it. Without a snapshot nothing
// is dirty.
func (r *Review) IsDirty(blockID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.taken {
		return false
	}
	live, ok := r.store.Get(blockID)
	if !ok {
		return false
	}
	at := r.snapshot.indexOf(blockID)
	if at < 0 {
		return true
	}
	return r.snapshot[at].Text != live.Text
}

// SnapshotText returns the snapshot's text for a block id, for diff
// rendering. The second return is false when the block is not in the
// snapshot.
func (r *Review) SnapshotText(blockID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.taken {
		return "", false
	}
	at := r.snapshot.indexOf(blockID)
	if at < 0 {
		return "", false
	}
	return r.snapshot[at].Text, true
}

// Approve accepts the live document as the new comparison point.
func (r *Review) Approve() { r.TakeSnapshot() }

// Revert restores the live document from the snapshot. No-op when no
// snapshot has been taken. The restore goes through the store so it
// is undoable.
func (r *Review) Revert() {
	r.mu.RLock()
	taken := r.taken
	snapshot := r.snapshot
	r.mu.RUnlock()
	if !taken {
		return
	}
	r.store.restore(snapshot)
}

// =============================================================================
// Word diff
// =============================================================================

// DiffTag labels a token in a word-level diff.
type DiffTag int

const (
	// Same marks a token carried over from the old text.
	Same DiffTag = iota

	// Added marks a token not matched in the old text.
	Added
)

// DiffToken is one word (or whitespace-joined token) of the new text
// with its diff tag.
type DiffToken struct {
	Token string
	Tag   DiffTag
}

// WordDiff computes an approximate word-level diff of newText against
// oldText.
//
// # Description
//
// Both strings are tokenized on whitespace. New tokens are walked left
// to right; each is searched for in a bounded lookahead window of the
// old stream starting at the last matched position. A hit advances the
// old cursor past it and tags the token Same; a miss tags it Added.
//
// # Limitations
//
// This is a forward-only display heuristic for "what did the rewrite
// change" highlighting. It is not a minimal-edit-script algorithm and
// deletions are not represented.
func WordDiff(oldText, newText string) []DiffToken {
	oldTokens := strings.Fields(oldText)
	newTokens := strings.Fields(newText)

	out := make([]DiffToken, 0, len(newTokens))
	cursor := 0
	for _, tok := range newTokens {
		found := -1
		limit := cursor + diffLookahead
		if limit > len(oldTokens) {
			limit = len(oldTokens)
		}
		for i := cursor; i < limit; i++ {
			if oldTokens[i] == tok {
				found = i
				break
			}
		}
		if found >= 0 {
			cursor = found + 1
			out = append(out, DiffToken{Token: tok, Tag: Same})
		} else {
			out = append(out, DiffToken{Token: tok, Tag: Added})
		}
	}
	return out
}
