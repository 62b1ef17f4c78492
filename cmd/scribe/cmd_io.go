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
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianScribe/services/manuscript"
)

func runImport(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("could not read %s: %w", args[0], err)
	}

	blocks := manuscript.Segment(string(raw))
	if len(blocks) == 0 {
		return fmt.Errorf("%s contains no text to import", args[0])
	}

	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.close()

	if hasContent(s.store.Blocks()) && !importYes {
		var overwrite bool
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("A manuscript already exists.").
				Description("Importing replaces it. The stored draft cannot be recovered.").
				Affirmative("Overwrite").
				Negative("Keep").
				Value(&overwrite),
		))
		if err := form.Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Import cancelled.")
			return nil
		}
	}

	s.store.Load(blocks)
	fmt.Printf("Imported %d blocks from %s\n", len(blocks), args[0])
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := openSession(false)
	if err != nil {
		return err
	}
	defer s.close()

	doc := s.store.Blocks()
	if !hasContent(doc) {
		return fmt.Errorf("the manuscript is empty, nothing to export")
	}

	if err := os.WriteFile(args[0], []byte(renderDocument(doc)), 0644); err != nil {
		return fmt.Errorf("could not write %s: %w", args[0], err)
	}
	fmt.Printf("Exported %d blocks to %s\n", len(doc), args[0])
	return nil
}

// hasContent reports whether the document is anything beyond the
// single empty paragraph a fresh manuscript starts with.
func hasContent(doc manuscript.Document) bool {
	if len(doc) > 1 {
		return true
	}
	return len(doc) == 1 && strings.TrimSpace(doc[0].Text) != ""
}
