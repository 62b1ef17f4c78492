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
	"strings"
	"sync"
	"testing"
	"time"
)

// correctorFunc adapts a function to the Corrector interface.
type correctorFunc func(ctx context.Context, text string) (string, error)

func (f correctorFunc) Correct(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

func testRunnerConfig() RunnerConfig {
	return RunnerConfig{PaceDelay: time.Millisecond, Timeout: 5 * time.Second}
}

func identityCorrector() Corrector {
	return correctorFunc(func(_ context.Context, text string) (string, error) {
		return text, nil
	})
}

// =============================================================================
// Sweep behavior
// =============================================================================

func TestRun_IdentityCorrectorChangesNothing(t *testing.T) {
	s := newTestStore(t, "block one", "block two", "block three")
	r := NewReview(s)
	before := s.Blocks()

	runner := NewRunner(s, r, identityCorrector(), testRunnerConfig(), nil)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !s.Blocks().Equal(before) {
		t.Errorf("identity sweep changed the document: %v", texts(s.Blocks()))
	}
	if runner.Running() {
		t.Error("runner still running after completion")
	}
	if runner.Progress() != "" {
		t.Errorf("progress cursor = %q, want cleared", runner.Progress())
	}
}

func TestRun_AppliesCorrections(t *testing.T) {
	s := newTestStore(t, "teh cat", "on teh mat")
	r := NewReview(s)
	upper := correctorFunc(func(_ context.Context, text string) (string, error) {
		return strings.ReplaceAll(text, "teh", "the"), nil
	})

	runner := NewRunner(s, r, upper, testRunnerConfig(), nil)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := texts(s.Blocks())
	if got[0] != "the cat" || got[1] != "on the mat" {
		t.Errorf("doc = %v", got)
	}
}

func TestRun_TakesSnapshotOnEntry(t *testing.T) {
	s := newTestStore(t, "original text")
	r := NewReview(s)
	rewrite := correctorFunc(func(_ context.Context, _ string) (string, error) {
		return "rewritten text", nil
	})

	runner := NewRunner(s, r, rewrite, testRunnerConfig(), nil)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	id := s.Blocks()[0].ID
	if !r.IsDirty(id) {
		t.Error("swept block not dirty against the entry snapshot")
	}
	if snap, _ := r.SnapshotText(id); snap != "original text" {
		t.Errorf("snapshot text = %q, want pre-sweep text", snap)
	}
}

func TestRun_SkipsIneligibleBlocks(t *testing.T) {
	s := NewStore(nil)
	s.Load(Document{
		newBlock(Heading, "Chapter One"),
		newBlock(Rule, ""),
		newBlock(Paragraph, "x"),
		newBlock(Paragraph, "  "),
		newBlock(Paragraph, "real prose here"),
	})
	r := NewReview(s)

	var mu sync.Mutex
	var seen []string
	spy := correctorFunc(func(_ context.Context, text string) (string, error) {
		mu.Lock()
		seen = append(seen, text)
		mu.Unlock()
		return text, nil
	})

	runner := NewRunner(s, r, spy, testRunnerConfig(), nil)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(seen) != 1 || seen[0] != "real prose here" {
		t.Errorf("corrector saw %v, want only the eligible paragraph", seen)
	}
}

func TestRun_ContinuesPastPerBlockFailure(t *testing.T) {
	s := newTestStore(t, "first block", "second block")
	r := NewReview(s)
	calls := 0
	flaky := correctorFunc(func(_ context.Context, text string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("model unavailable")
		}
		return text + "!", nil
	})

	runner := NewRunner(s, r, flaky, testRunnerConfig(), nil)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	got := texts(s.Blocks())
	if got[0] != "first block" {
		t.Errorf("failed block was modified: %q", got[0])
	}
	if got[1] != "second block!" {
		t.Errorf("sweep did not continue past the failure: %q", got[1])
	}
}

func TestRun_RejectsConcurrentSweep(t *testing.T) {
	s := newTestStore(t, "some text here")
	r := NewReview(s)
	started := make(chan struct{})
	release := make(chan struct{})
	slow := correctorFunc(func(_ context.Context, text string) (string, error) {
		close(started)
		<-release
		return text, nil
	})

	runner := NewRunner(s, r, slow, testRunnerConfig(), nil)
	done := make(chan error, 1)
	go func() { done <- runner.Run(context.Background()) }()

	<-started
	if err := runner.Run(context.Background()); !errors.Is(err, ErrSweepRunning) {
		t.Errorf("second Run() error = %v, want ErrSweepRunning", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Errorf("first Run() error = %v", err)
	}
}

func TestRun_TimeoutForcesIdle(t *testing.T) {
	s := newTestStore(t, "block one", "block two", "block three")
	r := NewReview(s)
	hang := correctorFunc(func(ctx context.Context, text string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	config := RunnerConfig{PaceDelay: time.Millisecond, Timeout: 50 * time.Millisecond}
	runner := NewRunner(s, r, hang, config, nil)

	start := time.Now()
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, timeout must not surface as an error", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("sweep took %v, timeout did not bound it", elapsed)
	}
	if runner.Running() {
		t.Error("runner stuck in running state after timeout")
	}
	if runner.Progress() != "" {
		t.Errorf("progress cursor = %q, want cleared after timeout", runner.Progress())
	}
}

func TestRun_RevalidatesBlockBeforeWriteBack(t *testing.T) {
	s := newTestStore(t, "doomed block text")
	r := NewReview(s)
	id := s.Blocks()[0].ID

	removing := correctorFunc(func(_ context.Context, text string) (string, error) {
		// The block disappears while the correction is in flight.
		s.Remove(id)
		return "corrected " + text, nil
	})

	runner := NewRunner(s, r, removing, testRunnerConfig(), nil)
	if err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, b := range s.Blocks() {
		if strings.HasPrefix(b.Text, "corrected") {
			t.Errorf("write-back landed on a removed block: %q", b.Text)
		}
	}
}
