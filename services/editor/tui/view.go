// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AleutianAI/AleutianScribe/services/manuscript"
)

// =============================================================================
// Styles
// =============================================================================

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	dirtyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	addedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	resultTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("75"))

	resultKindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	sweepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

const ruleGlyph = "────────"

// =============================================================================
// View
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	var body string
	switch m.mode {
	case modeEdit:
		body = m.editView()
	case modeSearch:
		body = m.searchView()
	case modeInstruct:
		body = m.instructView()
	case modeSuggest:
		body = m.suggestView()
	case modeConfirm:
		body = m.confirmView()
	default:
		body = m.listView()
	}

	m.viewport.SetContent(body)
	return m.viewport.View() + "\n" + m.footer()
}

func (m Model) listView() string {
	doc := m.session.Store.Blocks()
	sweeping := m.session.Runner.Running()
	sweepingID := m.session.Runner.Progress()

	var b strings.Builder
	for i, block := range doc {
		marker := "  "
		switch {
		case sweeping && block.ID == sweepingID:
			marker = m.spin.View() + " "
		case i == m.cursor:
			marker = cursorStyle.Render("> ")
		}

		dirty := ""
		if m.session.Review.HasSnapshot() && m.session.Review.IsDirty(block.ID) {
			dirty = dirtyStyle.Render(" ●")
		}

		b.WriteString(marker)
		b.WriteString(m.renderBlock(block))
		b.WriteString(dirty)
		b.WriteString("\n\n")
	}
	return b.String()
}

// renderBlock renders one block's text, switching to the word diff
// when review mode is on.
func (m Model) renderBlock(block manuscript.Block) string {
	switch block.Kind {
	case manuscript.Rule:
		return ruleStyle.Render(ruleGlyph)
	case manuscript.Heading:
		return headingStyle.Render(block.Text)
	}

	if m.reviewing {
		if before, ok := m.session.Review.SnapshotText(block.ID); ok && before != block.Text {
			return renderDiff(manuscript.WordDiff(before, block.Text))
		}
	}
	return block.Text
}

// renderDiff joins diff tokens, highlighting additions.
func renderDiff(tokens []manuscript.DiffToken) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		if tok.Tag == manuscript.Added {
			parts[i] = addedStyle.Render(tok.Token)
		} else {
			parts[i] = tok.Token
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) editView() string {
	return m.editor.View()
}

func (m Model) searchView() string {
	var b strings.Builder
	b.WriteString(m.query.View())
	b.WriteString("\n\n")
	for _, item := range m.results {
		b.WriteString(resultKindStyle.Render(fmt.Sprintf("[%s] ", item.SourceKind)))
		if item.Title != "" {
			b.WriteString(resultTitleStyle.Render(item.Title))
			b.WriteString("  ")
		}
		b.WriteString(firstLine(item.Body, 80))
		b.WriteString("\n")
	}
	if len(m.results) == 0 {
		b.WriteString(statusStyle.Render("no matches"))
	}
	return b.String()
}

func (m Model) instructView() string {
	return "How should this paragraph change?\n\n" + m.instruct.View()
}

func (m Model) suggestView() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Suggestions"))
	b.WriteString("\n\n")
	for i, s := range m.suggestions {
		marker := "  "
		if i == m.suggestion {
			marker = cursorStyle.Render("> ")
		}
		b.WriteString(marker)
		b.WriteString(s)
		b.WriteString("\n\n")
	}
	b.WriteString(helpStyle.Render("enter apply • esc discard"))
	return b.String()
}

func (m Model) confirmView() string {
	var prompt string
	switch m.confirming {
	case confirmClear:
		prompt = "Clear the whole manuscript?"
	case confirmRevert:
		prompt = "Throw away every change since the snapshot?"
	}
	return prompt + "\n\n" + helpStyle.Render("y confirm • any other key cancel")
}

func (m Model) footer() string {
	if m.session.Runner.Running() {
		return sweepStyle.Render(m.spin.View() + " revision sweep in progress")
	}
	if m.status != "" {
		return statusStyle.Render(m.status)
	}

	var help string
	switch m.mode {
	case modeEdit:
		help = "esc done • ctrl+j split"
	case modeSearch:
		help = "esc close"
	case modeInstruct:
		help = "enter rewrite • esc cancel"
	default:
		review := ""
		if m.reviewing {
			review = " • reviewing"
		}
		help = "enter edit • n new • d delete • / search • R rewrite • c sweep • s snapshot • v review • u undo • q quit" + review
	}
	return helpStyle.Render(help)
}

// firstLine returns the first line of s, truncated to max runes.
func firstLine(s string, max int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max-1]) + "…"
	}
	return s
}
