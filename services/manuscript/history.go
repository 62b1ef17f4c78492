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

// maxUndoDepth caps the undo stack; the oldest entry is discarded
// first when the cap is exceeded.
const maxUndoDepth = 20

// =============================================================================
// History
// =============================================================================

// History is a bounded, linear undo/redo stack of full-document
// snapshots.
//
// # Description
//
// Checkpoint pushes a deep copy of the pre-mutation document; any
// checkpoint clears the redo stack, so there is no branching history.
// Undo and Redo exchange the current document for the top of the
// respective stack and are no-ops when that stack is empty.
//
// # Thread Safety
//
// History is mutated only by the foreground interaction goroutine,
// alongside the Store that owns it.
type History struct {
	undo []Document
	redo []Document
}

// Checkpoint records the given pre-mutation document.
//
// The snapshot is deep-copied, the stack trimmed to maxUndoDepth, and
// the redo stack cleared.
func (h *History) Checkpoint(doc Document) {
	h.undo = append(h.undo, doc.Clone())
	if len(h.undo) > maxUndoDepth {
		h.undo = h.undo[len(h.undo)-maxUndoDepth:]
	}
	h.redo = nil
}

// Undo exchanges current for the most recent checkpoint.
//
// Returns the restored document and true, or (nil, false) when the
// undo stack is empty. The current document is pushed onto the redo
// stack so Undo followed by Redo round-trips.
func (h *History) Undo(current Document) (Document, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	h.redo = append(h.redo, current.Clone())
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return top, true
}

// Redo is the symmetric inverse of Undo.
func (h *History) Redo(current Document) (Document, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	h.undo = append(h.undo, current.Clone())
	top := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return top, true
}

// CanUndo reports whether an undo entry is available.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo entry is available.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
