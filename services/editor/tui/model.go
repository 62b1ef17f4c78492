// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package tui implements the interactive manuscript editor using
// bubbletea.
//
// # Thread Safety
//
// TUI state lives inside the bubbletea event loop. The one background
// worker is the revision sweep, which mutates the manuscript through
// the thread-safe Store and reports back via messages.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/AleutianAI/AleutianScribe/services/collections"
	"github.com/AleutianAI/AleutianScribe/services/llm"
	"github.com/AleutianAI/AleutianScribe/services/manuscript"
)

// =============================================================================
// Modes
// =============================================================================

// mode determines which surface has focus.
type mode int

const (
	// modeList navigates the block list.
	modeList mode = iota

	// modeEdit edits one block's text in a textarea.
	modeEdit

	// modeSearch runs cross-source fuzzy search on each keystroke.
	modeSearch

	// modeInstruct collects a rewrite instruction for one block.
	modeInstruct

	// modeSuggest picks one of the returned rewrite suggestions.
	modeSuggest

	// modeConfirm awaits y/n for a destructive action.
	modeConfirm
)

// confirmAction is the destructive action pending confirmation.
type confirmAction int

const (
	confirmNone confirmAction = iota
	confirmClear
	confirmRevert
)

// =============================================================================
// Messages
// =============================================================================

// sweepDoneMsg signals the revision sweep finished (or was rejected).
type sweepDoneMsg struct {
	err error
}

// sweepTickMsg drives progress refresh while a sweep runs.
type sweepTickMsg struct{}

// suggestionsMsg carries rewrite suggestions for one block.
type suggestionsMsg struct {
	blockID     string
	suggestions []string
}

// =============================================================================
// Session
// =============================================================================

// Session bundles the engine components the editor operates on.
type Session struct {
	Store   *manuscript.Store
	Review  *manuscript.Review
	Runner  *manuscript.Runner
	Library *collections.Library
	Client  llm.Client
}

// Model is the bubbletea model for the manuscript editor.
type Model struct {
	session Session

	mode       mode
	cursor     int
	reviewing  bool
	confirming confirmAction
	status     string

	// Edit surface
	editor  textarea.Model
	editing string // block id under edit

	// Search surface
	query   textinput.Model
	results []manuscript.SearchableItem

	// Rewrite surface
	instruct    textinput.Model
	rewriteID   string
	suggestions []string
	suggestion  int

	// Chrome
	viewport viewport.Model
	spin     spinner.Model
	width    int
	height   int
	ready    bool
	quitting bool
}

// NewModel creates the editor over a session.
func NewModel(session Session) Model {
	editor := textarea.New()
	editor.Placeholder = "Write..."
	editor.CharLimit = 0

	query := textinput.New()
	query.Placeholder = "search everywhere"

	instruct := textinput.New()
	instruct.Placeholder = "rewrite instruction, e.g. tighten this up"

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return Model{
		session:  session,
		editor:   editor,
		query:    query,
		instruct: instruct,
		spin:     spin,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

// =============================================================================
// Update
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-2)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 2
		}
		m.editor.SetWidth(msg.Width - 4)
		return m, nil

	case sweepDoneMsg:
		if msg.err != nil {
			m.status = "sweep: " + msg.err.Error()
		} else {
			m.status = "sweep finished, review with v"
		}
		return m, nil

	case sweepTickMsg:
		if m.session.Runner.Running() {
			return m, sweepTick()
		}
		return m, nil

	case suggestionsMsg:
		if len(msg.suggestions) == 0 {
			m.status = "no suggestions"
			m.mode = modeList
			return m, nil
		}
		m.mode = modeSuggest
		m.rewriteID = msg.blockID
		m.suggestions = msg.suggestions
		m.suggestion = 0
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Bracketed paste routes through the segmenter wherever it lands.
	if msg.Paste && m.mode == modeList {
		if id, ok := m.currentBlockID(); ok {
			m.session.Store.PasteInto(id, string(msg.Runes))
			m.status = "pasted"
		}
		return m.clampCursor(), nil
	}

	switch m.mode {
	case modeEdit:
		return m.handleEditKey(msg)
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeInstruct:
		return m.handleInstructKey(msg)
	case modeSuggest:
		return m.handleSuggestKey(msg)
	case modeConfirm:
		return m.handleConfirmKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.session.Store.Len()-1 {
			m.cursor++
		}

	case "enter":
		if id, ok := m.currentBlockID(); ok {
			block, _ := m.session.Store.Get(id)
			if block.Kind != manuscript.Rule {
				m.mode = modeEdit
				m.editing = id
				m.editor.SetValue(block.Text)
				m.editor.Focus()
				return m, textarea.Blink
			}
		}

	case "n":
		if id, ok := m.currentBlockID(); ok {
			newID := m.session.Store.InsertAfter(id, "")
			m.cursor = m.indexOf(newID)
			m.mode = modeEdit
			m.editing = newID
			m.editor.SetValue("")
			m.editor.Focus()
			return m, textarea.Blink
		}

	case "d":
		if id, ok := m.currentBlockID(); ok {
			m.session.Store.Remove(id)
			m.status = "block removed"
		}
		return m.clampCursor(), nil

	case "K":
		return m.moveBlock(-1), nil
	case "J":
		return m.moveBlock(1), nil

	case "u":
		if m.session.Store.Undo() {
			m.status = "undone"
		}
		return m.clampCursor(), nil
	case "ctrl+r":
		if m.session.Store.Redo() {
			m.status = "redone"
		}
		return m.clampCursor(), nil

	case "/":
		m.mode = modeSearch
		m.query.SetValue("")
		m.query.Focus()
		m.results = m.searchAll("")
		return m, textinput.Blink

	case "R":
		if id, ok := m.currentBlockID(); ok {
			block, _ := m.session.Store.Get(id)
			if block.Kind == manuscript.Paragraph && strings.TrimSpace(block.Text) != "" {
				m.mode = modeInstruct
				m.rewriteID = id
				m.instruct.SetValue("")
				m.instruct.Focus()
				return m, textinput.Blink
			}
		}

	case "s":
		m.session.Review.TakeSnapshot()
		m.status = "snapshot taken"
	case "v":
		if m.session.Review.HasSnapshot() {
			m.reviewing = !m.reviewing
		} else {
			m.status = "no snapshot to review against (take one with s)"
		}
	case "a":
		if m.session.Review.HasSnapshot() {
			m.session.Review.Approve()
			m.status = "changes approved"
		}
	case "x":
		if m.session.Review.HasSnapshot() {
			m.mode = modeConfirm
			m.confirming = confirmRevert
		}
	case "C":
		m.mode = modeConfirm
		m.confirming = confirmClear

	case "c":
		if m.session.Runner.Running() {
			m.status = "sweep already running"
			return m, nil
		}
		m.status = "sweeping..."
		return m, tea.Batch(runSweep(m.session.Runner), sweepTick())
	}
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.session.Store.UpdateContent(m.editing, m.editor.Value())
		m.mode = modeList
		m.editing = ""
		m.editor.Blur()
		return m, nil

	case "ctrl+j":
		// Split the block at the cursor; the tail becomes a new
		// paragraph and keeps focus.
		m.session.Store.UpdateContent(m.editing, m.editor.Value())
		offset := m.editorCursorOffset()
		if newID := m.session.Store.SplitAt(m.editing, offset); newID != "" {
			block, _ := m.session.Store.Get(newID)
			m.cursor = m.indexOf(newID)
			m.editing = newID
			m.editor.SetValue(block.Text)
			m.editor.CursorStart()
		}
		return m, nil

	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.mode = modeList
		m.query.Blur()
		return m, nil
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	m.results = m.searchAll(m.query.Value())
	return m, cmd
}

func (m Model) handleInstructKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.instruct.Blur()
		return m, nil
	case "enter":
		instruction := strings.TrimSpace(m.instruct.Value())
		m.instruct.Blur()
		if instruction == "" {
			m.mode = modeList
			return m, nil
		}
		block, ok := m.session.Store.Get(m.rewriteID)
		if !ok {
			m.mode = modeList
			return m, nil
		}
		m.status = "rewriting..."
		m.mode = modeList
		return m, fetchSuggestions(m.session.Client, m.rewriteID, block.Text, instruction)
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.instruct, cmd = m.instruct.Update(msg)
	return m, cmd
}

func (m Model) handleSuggestKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.suggestions = nil
	case "up", "k":
		if m.suggestion > 0 {
			m.suggestion--
		}
	case "down", "j":
		if m.suggestion < len(m.suggestions)-1 {
			m.suggestion++
		}
	case "enter":
		if _, ok := m.session.Store.Get(m.rewriteID); ok {
			m.session.Store.ReplaceContent(m.rewriteID, m.suggestions[m.suggestion])
			m.status = "suggestion applied"
		}
		m.mode = modeList
		m.suggestions = nil
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		switch m.confirming {
		case confirmClear:
			m.session.Store.Clear()
			m.status = "manuscript cleared"
		case confirmRevert:
			m.session.Review.Revert()
			m.status = "reverted to snapshot"
		}
	}
	m.confirming = confirmNone
	m.mode = modeList
	return m.clampCursor(), nil
}

// =============================================================================
// Helpers and commands
// =============================================================================

func (m Model) currentBlockID() (string, bool) {
	doc := m.session.Store.Blocks()
	if m.cursor < 0 || m.cursor >= len(doc) {
		return "", false
	}
	return doc[m.cursor].ID, true
}

func (m Model) indexOf(id string) int {
	if at := docIndexOf(m.session.Store.Blocks(), id); at >= 0 {
		return at
	}
	return 0
}

func docIndexOf(doc manuscript.Document, id string) int {
	for i := range doc {
		if doc[i].ID == id {
			return i
		}
	}
	return -1
}

func (m Model) clampCursor() Model {
	if max := m.session.Store.Len() - 1; m.cursor > max {
		m.cursor = max
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m
}

func (m Model) moveBlock(delta int) Model {
	doc := m.session.Store.Blocks()
	target := m.cursor + delta
	if m.cursor < 0 || m.cursor >= len(doc) || target < 0 || target >= len(doc) {
		return m
	}
	order := make([]string, len(doc))
	for i, b := range doc {
		order[i] = b.ID
	}
	order[m.cursor], order[target] = order[target], order[m.cursor]
	m.session.Store.Reorder(order)
	m.cursor = target
	return m
}

// searchAll runs the fuzzy finder over manuscript blocks plus every
// external collection, blocks first.
func (m Model) searchAll(query string) []manuscript.SearchableItem {
	doc := m.session.Store.Blocks()
	items := make([]manuscript.SearchableItem, 0, len(doc))
	for _, b := range doc {
		if b.Kind == manuscript.Rule {
			continue
		}
		items = append(items, manuscript.ItemFromBlock(b))
	}
	if m.session.Library != nil {
		items = append(items, m.session.Library.Items()...)
	}
	return manuscript.Search(items, query)
}

// editorCursorOffset maps the textarea cursor to a rune offset in the
// block's text.
func (m Model) editorCursorOffset() int {
	lines := strings.Split(m.editor.Value(), "\n")
	row := m.editor.Line()
	offset := 0
	for i := 0; i < row && i < len(lines); i++ {
		offset += len([]rune(lines[i])) + 1
	}
	info := m.editor.LineInfo()
	return offset + info.ColumnOffset
}

func runSweep(runner *manuscript.Runner) tea.Cmd {
	return func() tea.Msg {
		return sweepDoneMsg{err: runner.Run(context.Background())}
	}
}

func sweepTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return sweepTickMsg{}
	})
}

func fetchSuggestions(client llm.Client, blockID, text, instruction string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		suggestions, err := client.Rewrite(ctx, text, instruction)
		if err != nil {
			// Degraded backends never error, but a raw one might.
			return suggestionsMsg{blockID: blockID}
		}
		return suggestionsMsg{blockID: blockID, suggestions: suggestions}
	}
}
