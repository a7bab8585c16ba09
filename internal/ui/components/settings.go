// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"encoding/json"
	"errors"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/ui/styles"
)

// SettingsCommitMsg asks for the parsed settings document to be saved.
// The editor stays open until the save result comes back.
type SettingsCommitMsg struct {
	SessionID string
	Settings  *api.Settings
}

// =============================================================================
// SETTINGS EDITOR
// =============================================================================

// SettingsEditor edits a session's settings document as JSON text.
//
// The buffer re-parses on every edit: malformed JSON flags the editor
// invalid and disables commit, but the typed text is never discarded.
// Commit additionally requires non-empty decision and generation models.
type SettingsEditor struct {
	textarea  textarea.Model
	sessionID string

	visible    bool
	invalid    bool
	diagnostic string
	saving     bool

	theme  *styles.Theme
	width  int
	height int
}

// NewSettingsEditor creates a hidden settings editor.
func NewSettingsEditor(theme *styles.Theme) *SettingsEditor {
	ta := textarea.New()
	ta.Placeholder = "{}"
	ta.CharLimit = 0
	ta.SetWidth(60)
	ta.SetHeight(12)

	return &SettingsEditor{
		textarea: ta,
		theme:    theme,
	}
}

// Show opens the editor over the given session's settings.
func (e *SettingsEditor) Show(sessionID string, settings *api.Settings) {
	e.sessionID = sessionID
	e.visible = true
	e.invalid = false
	e.diagnostic = ""
	e.saving = false

	text := "{}"
	if settings != nil {
		if encoded, err := json.MarshalIndent(settings, "", "  "); err == nil {
			text = string(encoded)
		}
	}
	e.textarea.SetValue(text)
	e.textarea.Focus()
}

// Hide closes the editor, discarding the buffer.
func (e *SettingsEditor) Hide() {
	e.visible = false
	e.textarea.Blur()
}

// IsVisible reports whether the editor is open.
func (e *SettingsEditor) IsVisible() bool {
	return e.visible
}

// SetSize sets dimensions used for centering.
func (e *SettingsEditor) SetSize(width, height int) {
	e.width = width
	e.height = height
}

// Invalid reports whether the buffer currently fails to parse. Exposed
// for tests.
func (e *SettingsEditor) Invalid() bool {
	return e.invalid
}

// Diagnostic returns the current parse or validation message.
func (e *SettingsEditor) Diagnostic() string {
	return e.diagnostic
}

// Buffer returns the current text. Exposed for tests.
func (e *SettingsEditor) Buffer() string {
	return e.textarea.Value()
}

// SetBuffer replaces the buffer text and revalidates. Exposed for tests.
func (e *SettingsEditor) SetBuffer(text string) {
	e.textarea.SetValue(text)
	e.revalidate()
}

// SaveFailed reports a backend save failure; the editor stays open with
// the buffer intact.
func (e *SettingsEditor) SaveFailed(reason string) {
	e.saving = false
	e.diagnostic = "save failed: " + reason
}

// Saved closes the editor after a successful commit.
func (e *SettingsEditor) Saved() {
	e.saving = false
	e.Hide()
}

// =============================================================================
// PARSING
// =============================================================================

// ParseSettings parses a settings document from buffer text.
func ParseSettings(text string) (*api.Settings, error) {
	var s api.Settings
	if err := json.Unmarshal([]byte(text), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// revalidate re-parses the buffer, updating the invalid flag and the
// diagnostic. Missing required fields are deliberately not flagged here;
// that check belongs to commit.
func (e *SettingsEditor) revalidate() {
	if _, err := ParseSettings(e.textarea.Value()); err != nil {
		e.invalid = true
		e.diagnostic = "invalid JSON: " + err.Error()
		return
	}
	e.invalid = false
	e.diagnostic = ""
}

// commit validates the buffer and emits a SettingsCommitMsg, or records
// why it cannot.
func (e *SettingsEditor) commit() tea.Cmd {
	if e.invalid || e.saving {
		return nil
	}

	settings, err := ParseSettings(e.textarea.Value())
	if err != nil {
		e.invalid = true
		e.diagnostic = "invalid JSON: " + err.Error()
		return nil
	}

	if err := settings.Validate(); err != nil {
		// Required-field failure: surface it, keep the buffer.
		var msg string
		switch {
		case errors.Is(err, api.ErrMissingDecisionModel):
			msg = "decision_model is required"
		case errors.Is(err, api.ErrMissingGenerationModel):
			msg = "generation_model is required"
		default:
			msg = err.Error()
		}
		e.diagnostic = msg
		return nil
	}

	e.saving = true
	e.diagnostic = ""
	sessionID := e.sessionID
	return func() tea.Msg {
		return SettingsCommitMsg{SessionID: sessionID, Settings: settings}
	}
}

// =============================================================================
// UPDATE / VIEW
// =============================================================================

// Update handles editor input. ctrl+s commits, esc discards.
func (e *SettingsEditor) Update(msg tea.Msg) (*SettingsEditor, tea.Cmd) {
	if !e.visible {
		return e, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			e.Hide()
			return e, nil
		case "ctrl+s":
			return e, e.commit()
		}
	}

	var cmd tea.Cmd
	previous := e.textarea.Value()
	e.textarea, cmd = e.textarea.Update(msg)
	if e.textarea.Value() != previous {
		e.revalidate()
	}
	return e, cmd
}

// View renders the editor overlay.
func (e *SettingsEditor) View() string {
	if !e.visible {
		return ""
	}

	title := e.theme.OverlayTitle.Render("Session settings")

	status := e.theme.Hint.Render("ctrl+s save | esc cancel")
	if e.saving {
		status = e.theme.Hint.Render("saving...")
	}
	if e.diagnostic != "" {
		status = e.theme.FieldError.Render(e.diagnostic)
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		e.textarea.View(),
		"",
		status,
	)

	box := e.theme.OverlayBox.Render(content)
	if e.width > 0 && e.height > 0 {
		return lipgloss.Place(e.width, e.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
