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
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// Batch revision runner
// =============================================================================

// Corrector produces a corrected version of one block's text. The
// external LLM collaborator satisfies this; see services/llm.
type Corrector interface {
	Correct(ctx context.Context, text string) (string, error)
}

// ErrSweepRunning is returned when a sweep is requested while one is
// already in flight. Concurrent sweeps are never allowed.
var ErrSweepRunning = errors.New("revision sweep already running")

// RunnerConfig tunes the sweep's pacing and safety bounds.
type RunnerConfig struct {
	// PaceDelay is inserted after each processed block so progress is
	// observable rather than instantaneous.
	PaceDelay time.Duration

	// Timeout is the hard upper bound on one whole sweep. It
	// guarantees a return to idle even if the collaborator hangs.
	Timeout time.Duration
}

// DefaultRunnerConfig returns the production pacing and timeout.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		PaceDelay: 150 * time.Millisecond,
		Timeout:   20 * time.Second,
	}
}

// Runner sweeps the manuscript block by block, replacing each eligible
// block's text with the collaborator's corrected version.
//
// # Description
//
// Exactly one sweep runs at a time. On entry the runner takes a
// comparison snapshot so the sweep's whole effect is reviewable, then
// walks blocks in document order. Rules, headings, and blocks with
// fewer than two characters of trimmed text are skipped. Corrections
// are awaited one at a time, by design: partially-applied corrections
// stay visible and attributable block by block, and at most one
// request is ever in flight.
//
// A per-block failure is logged and the sweep continues. The safety
// timeout forces a return to idle regardless of progress. On any exit
// the progress cursor is cleared.
type Runner struct {
	store     *Store
	review    *Review
	corrector Corrector
	config    RunnerConfig
	log       *slog.Logger

	mu       sync.Mutex
	running  bool
	progress string
}

// NewRunner creates a runner over the given store and review engine.
func NewRunner(store *Store, review *Review, corrector Corrector, config RunnerConfig, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		store:     store,
		review:    review,
		corrector: corrector,
		config:    config,
		log:       log,
	}
}

// Running reports whether a sweep is in flight.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Progress returns the id of the block currently being corrected, or
// "" when none is.
func (r *Runner) Progress() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress
}

// Run executes one sweep and blocks until it finishes. Returns
// ErrSweepRunning when a sweep is already in flight; a timeout is not
// an error, it is a normal (if noisy) way for a sweep to end.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrSweepRunning
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.progress = ""
		r.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	r.review.TakeSnapshot()

	blocks := r.store.Blocks()
	r.log.Info("revision sweep started", "blocks", len(blocks))

	corrected := 0
	for _, b := range blocks {
		if ctx.Err() != nil {
			r.log.Warn("revision sweep timed out", "corrected", corrected)
			return nil
		}
		// Re-fetch: the block may have been edited or removed since
		// the sweep began.
		live, ok := r.store.Get(b.ID)
		if !ok || !eligible(live) {
			continue
		}

		r.setProgress(b.ID)
		fixed, err := r.corrector.Correct(ctx, live.Text)
		if err != nil {
			r.log.Warn("correction failed, continuing", "block_id", b.ID, "error", err)
			continue
		}
		if fixed != live.Text {
			// Validate the id again before writing back; the block
			// may have been removed while the request was in flight.
			if _, ok := r.store.Get(b.ID); ok {
				r.store.UpdateContent(b.ID, fixed)
				corrected++
			}
		}

		select {
		case <-ctx.Done():
			r.log.Warn("revision sweep timed out", "corrected", corrected)
			return nil
		case <-time.After(r.config.PaceDelay):
		}
	}

	r.log.Info("revision sweep finished", "corrected", corrected)
	return nil
}

// eligible reports whether a block is processed by the sweep.
func eligible(b Block) bool {
	if b.Kind != Paragraph {
		return false
	}
	return len(strings.TrimSpace(b.Text)) >= 2
}

func (r *Runner) setProgress(id string) {
	r.mu.Lock()
	r.progress = id
	r.mu.Unlock()
}
