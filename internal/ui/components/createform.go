// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/doctalk-tui/internal/ui/styles"
)

// CreateSubmitMsg asks for a new session to be created from the form's
// values. At least one source is guaranteed non-empty.
type CreateSubmitMsg struct {
	CodeSource      string
	DocsSource      string
	ExcludePatterns []string
}

// Field indices in the create form.
const (
	fieldCodeSource = iota
	fieldDocsSource
	fieldExcludes
	createFieldCount
)

// =============================================================================
// CREATE FORM
// =============================================================================

// CreateForm collects the inputs for a new session: a code source, a docs
// source, and optional exclude patterns. At least one source is required;
// the form enforces that locally and never submits an empty pair.
type CreateForm struct {
	inputs  [createFieldCount]textinput.Model
	focused int

	visible  bool
	errText  string
	creating bool

	theme  *styles.Theme
	width  int
	height int
}

// NewCreateForm creates a hidden session creation form.
func NewCreateForm(theme *styles.Theme) *CreateForm {
	f := &CreateForm{theme: theme}

	placeholders := [createFieldCount]string{
		"./src (path or GitHub URL)",
		"./docs (path or GitHub URL)",
		"*.test.js, vendor/* (comma separated)",
	}
	for i := range f.inputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		in.CharLimit = 512
		in.Width = 48
		f.inputs[i] = in
	}
	return f
}

// Show opens the form with cleared fields.
func (f *CreateForm) Show() {
	f.visible = true
	f.errText = ""
	f.creating = false
	f.focused = fieldCodeSource
	for i := range f.inputs {
		f.inputs[i].Reset()
		f.inputs[i].Blur()
	}
	f.inputs[f.focused].Focus()
}

// Hide closes the form.
func (f *CreateForm) Hide() {
	f.visible = false
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

// IsVisible reports whether the form is open.
func (f *CreateForm) IsVisible() bool {
	return f.visible
}

// SetSize sets dimensions used for centering.
func (f *CreateForm) SetSize(width, height int) {
	f.width = width
	f.height = height
}

// Error returns the current validation or backend error. Exposed for tests.
func (f *CreateForm) Error() string {
	return f.errText
}

// SetField sets a field's value directly. Exposed for tests.
func (f *CreateForm) SetField(index int, value string) {
	f.inputs[index].SetValue(value)
}

// Field returns a field's current value. Exposed for tests.
func (f *CreateForm) Field(index int) string {
	return f.inputs[index].Value()
}

// CreateFailed reports a backend creation failure; the form stays open
// with its values intact.
func (f *CreateForm) CreateFailed(reason string) {
	f.creating = false
	f.errText = "create failed: " + reason
}

// Created closes the form after a successful creation.
func (f *CreateForm) Created() {
	f.creating = false
	f.Hide()
}

// splitPatterns parses the comma separated exclude field.
func splitPatterns(raw string) []string {
	var patterns []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// submit validates locally and emits a CreateSubmitMsg.
func (f *CreateForm) submit() tea.Cmd {
	if f.creating {
		return nil
	}

	code := strings.TrimSpace(f.inputs[fieldCodeSource].Value())
	docs := strings.TrimSpace(f.inputs[fieldDocsSource].Value())
	if code == "" && docs == "" {
		f.errText = "at least one of code source or docs source is required"
		return nil
	}

	patterns := splitPatterns(f.inputs[fieldExcludes].Value())

	f.creating = true
	f.errText = ""
	return func() tea.Msg {
		return CreateSubmitMsg{
			CodeSource:      code,
			DocsSource:      docs,
			ExcludePatterns: patterns,
		}
	}
}

// focusField moves focus to the given field index, wrapping around.
func (f *CreateForm) focusField(index int) {
	f.inputs[f.focused].Blur()
	f.focused = (index + createFieldCount) % createFieldCount
	f.inputs[f.focused].Focus()
}

// =============================================================================
// UPDATE / VIEW
// =============================================================================

// Update handles form input. tab/shift+tab move between fields, enter
// submits, esc cancels.
func (f *CreateForm) Update(msg tea.Msg) (*CreateForm, tea.Cmd) {
	if !f.visible {
		return f, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			f.Hide()
			return f, nil
		case "enter":
			return f, f.submit()
		case "tab", "down":
			f.focusField(f.focused + 1)
			return f, nil
		case "shift+tab", "up":
			f.focusField(f.focused - 1)
			return f, nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return f, cmd
}

// View renders the form overlay.
func (f *CreateForm) View() string {
	if !f.visible {
		return ""
	}

	title := f.theme.OverlayTitle.Render("New session")
	labels := [createFieldCount]string{"Code source", "Docs source", "Exclude patterns"}

	rows := make([]string, 0, createFieldCount*2+4)
	rows = append(rows, title, "")
	for i := range f.inputs {
		rows = append(rows,
			f.theme.FieldLabel.Render(labels[i]),
			f.inputs[i].View(),
		)
	}

	status := f.theme.Hint.Render("enter create | tab next field | esc cancel")
	if f.creating {
		status = f.theme.Hint.Render("creating...")
	}
	if f.errText != "" {
		status = f.theme.FieldError.Render(f.errText)
	}
	rows = append(rows, "", status)

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	box := f.theme.OverlayBox.Render(content)
	if f.width > 0 && f.height > 0 {
		return lipgloss.Place(f.width, f.height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
