// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianScribe/services/manuscript"
)

func runSweep(cmd *cobra.Command, args []string) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.close()

	if !hasContent(s.store.Blocks()) {
		return fmt.Errorf("the manuscript is empty, nothing to sweep")
	}

	fmt.Println("Running a revision sweep...")
	if err := s.runner.Run(context.Background()); err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	changed := 0
	for _, block := range s.store.Blocks() {
		if !s.review.IsDirty(block.ID) {
			continue
		}
		changed++
		before, _ := s.review.SnapshotText(block.ID)
		fmt.Println()
		fmt.Println(formatDiff(manuscript.WordDiff(before, block.Text)))
	}

	if changed == 0 {
		fmt.Println("No changes suggested.")
	} else {
		fmt.Printf("\n%d block(s) changed. Open `scribe edit` to review.\n", changed)
	}
	return nil
}

// formatDiff renders diff tokens for a plain terminal, prefixing
// additions with '+'.
func formatDiff(tokens []manuscript.DiffToken) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		if tok.Tag == manuscript.Added {
			parts[i] = "+" + tok.Token
		} else {
			parts[i] = tok.Token
		}
	}
	return strings.Join(parts, " ")
}
