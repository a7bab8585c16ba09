// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands defines the palette command set.
//
// Commands are ephemeral: the registry regenerates the full list from the
// current session set every time the palette opens, so rows never go stale.
// Executing a command emits a message; the chat model routes it to the
// session controller. Nothing in this package performs I/O.
package commands

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/doctalk-tui/internal/api"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command is one palette row.
type Command struct {
	// ID uniquely identifies the command (static name or "session:<id>").
	ID string

	// Title is the searchable display text.
	Title string

	// Icon is a short glyph shown before the title.
	Icon string

	// Action is the primary action, invoked on confirm.
	Action tea.Cmd

	// Rebuild and Delete are per-session secondary actions. Nil for
	// commands that do not target a session.
	Rebuild tea.Cmd
	Delete  tea.Cmd
}

// IsSession reports whether this row targets a session.
func (c Command) IsSession() bool {
	return c.Rebuild != nil || c.Delete != nil
}

// =============================================================================
// ACTION MESSAGES
// =============================================================================

// NewSessionMsg opens the session creation form.
type NewSessionMsg struct{}

// OpenSettingsMsg opens the settings editor for the current session.
type OpenSettingsMsg struct{}

// RefreshSessionsMsg re-fetches the session list.
type RefreshSessionsMsg struct{}

// QuitMsg exits the program.
type QuitMsg struct{}

// SelectSessionMsg makes the session current.
type SelectSessionMsg struct{ ID string }

// RebuildSessionMsg rebuilds the session's index (selecting it first).
type RebuildSessionMsg struct{ ID string }

// DeleteSessionMsg deletes the session.
type DeleteSessionMsg struct{ ID string }

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// =============================================================================
// REGISTRY
// =============================================================================

// Build produces the ordered command list for the palette: static entries
// first, then one row per known session in the order the backend returned
// them. currentID marks the active session's row.
func Build(sessions []api.Session, currentID string) []Command {
	cmds := []Command{
		{
			ID:     "new-session",
			Title:  "New session",
			Icon:   "+",
			Action: emit(NewSessionMsg{}),
		},
		{
			ID:     "refresh-sessions",
			Title:  "Refresh sessions",
			Icon:   "~",
			Action: emit(RefreshSessionsMsg{}),
		},
	}

	if currentID != "" {
		cmds = append(cmds, Command{
			ID:     "edit-settings",
			Title:  "Edit session settings",
			Icon:   "=",
			Action: emit(OpenSettingsMsg{}),
		})
	}

	cmds = append(cmds, Command{
		ID:     "quit",
		Title:  "Quit",
		Icon:   "x",
		Action: emit(QuitMsg{}),
	})

	for _, s := range sessions {
		cmds = append(cmds, sessionCommand(s, s.ID == currentID))
	}

	return cmds
}

// sessionCommand builds the palette row for one session.
func sessionCommand(s api.Session, current bool) Command {
	id := s.ID

	marker := ""
	if current {
		marker = " [current]"
	}

	title := fmt.Sprintf("Session %s (%d messages)%s", shortID(id), s.MessageCount, marker)
	if s.Created != "" && s.Created != "now" {
		title = fmt.Sprintf("Session %s (%d messages, %s)%s", shortID(id), s.MessageCount, s.Created, marker)
	}

	return Command{
		ID:      "session:" + id,
		Title:   title,
		Icon:    ">",
		Action:  emit(SelectSessionMsg{ID: id}),
		Rebuild: emit(RebuildSessionMsg{ID: id}),
		Delete:  emit(DeleteSessionMsg{ID: id}),
	}
}

// shortID truncates long session ids for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// =============================================================================
// FILTERING
// =============================================================================

// Filter returns the commands whose title contains term as a
// case-insensitive substring, preserving the original relative order. An
// empty term returns the full list.
func Filter(cmds []Command, term string) []Command {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return cmds
	}

	var out []Command
	for _, c := range cmds {
		if strings.Contains(strings.ToLower(c.Title), term) {
			out = append(out, c)
		}
	}
	return out
}
