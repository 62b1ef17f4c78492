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

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianScribe/services/editor/tui"
)

func runEdit(cmd *cobra.Command, args []string) error {
	// Quiet logging: the TUI owns the terminal.
	s, err := openSession(true)
	if err != nil {
		return err
	}
	defer s.close()

	// Re-index collections while editing so new notes show up in
	// search without a restart.
	watchCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := s.library.Watch(watchCtx); err != nil && watchCtx.Err() == nil {
			s.logger.Warn("collection watch stopped", "error", err)
		}
	}()

	model := tui.NewModel(tui.Session{
		Store:   s.store,
		Review:  s.review,
		Runner:  s.runner,
		Library: s.library,
		Client:  s.client,
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("editor exited with an error: %w", err)
	}
	return nil
}
