// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm provides the rewriting/generation collaborator used by
// the manuscript engine: grammar corrections for the revision sweep
// and instruction-driven rewrite suggestions for the editor.
package llm

import "context"

// Client is the standard interface for any rewriting backend.
type Client interface {
	// Correct returns a corrected version of the text, preserving
	// meaning and voice. Implementations should return the input
	// unchanged when no correction is needed.
	Correct(ctx context.Context, text string) (string, error)

	// Rewrite returns alternative phrasings of the text following
	// the given instruction.
	Rewrite(ctx context.Context, text, instruction string) ([]string, error)
}

const (
	correctionSystemPrompt = "You are a meticulous copy editor. Fix spelling, grammar, and " +
		"punctuation in the user's text. Preserve the author's voice, meaning, and formatting. " +
		"Reply with the corrected text only, no commentary."

	rewriteSystemPrompt = "You are a writing assistant. Rewrite the user's text following " +
		"their instruction. Reply with the rewritten text only, no commentary."
)
