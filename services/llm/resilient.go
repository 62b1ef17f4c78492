// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"log/slog"
)

// Resilient wraps a Client with the degrade-on-failure policy the
// editor relies on: a failed correction yields the original text
// unchanged and a failed rewrite yields no suggestions. Either way
// the UI sees "nothing happened" instead of a hard error.
type Resilient struct {
	inner Client
	log   *slog.Logger
}

// NewResilient wraps the given backend.
func NewResilient(inner Client, log *slog.Logger) *Resilient {
	if log == nil {
		log = slog.Default()
	}
	return &Resilient{inner: inner, log: log}
}

// Correct implements Client; it never returns an error.
func (r *Resilient) Correct(ctx context.Context, text string) (string, error) {
	out, err := r.inner.Correct(ctx, text)
	if err != nil {
		r.log.Warn("correction degraded to original text", "error", err)
		return text, nil
	}
	if out == "" {
		return text, nil
	}
	return out, nil
}

// Rewrite implements Client; it never returns an error.
func (r *Resilient) Rewrite(ctx context.Context, text, instruction string) ([]string, error) {
	out, err := r.inner.Rewrite(ctx, text, instruction)
	if err != nil {
		r.log.Warn("rewrite degraded to no suggestions", "error", err)
		return nil, nil
	}
	return out, nil
}
