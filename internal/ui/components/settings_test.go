// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/ui/styles"
)

func newTestEditor() *SettingsEditor {
	e := NewSettingsEditor(styles.NewTheme("default"))
	temp := 0.2
	e.Show("sess-1", &api.Settings{
		DecisionModel:   "claude-haiku",
		GenerationModel: "claude-sonnet",
		Temperature:     &temp,
	})
	return e
}

func TestSettingsEditorShowSerializesDocument(t *testing.T) {
	e := newTestEditor()

	assert.True(t, e.IsVisible())
	assert.False(t, e.Invalid())
	assert.Contains(t, e.Buffer(), `"decision_model": "claude-haiku"`)
	assert.Contains(t, e.Buffer(), `"generation_model": "claude-sonnet"`)
	assert.Contains(t, e.Buffer(), `"temperature": 0.2`)
}

func TestSettingsEditorMalformedBufferFlagged(t *testing.T) {
	e := newTestEditor()

	e.SetBuffer(`{"decision_model": `)
	assert.True(t, e.Invalid())
	assert.NotEmpty(t, e.Diagnostic())

	// Commit is refused while the buffer does not parse.
	e, cmd := e.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.True(t, e.IsVisible())

	// Fixing the text clears the flag without losing the buffer.
	e.SetBuffer(`{"decision_model": "a", "generation_model": "b"}`)
	assert.False(t, e.Invalid())
	assert.Empty(t, e.Diagnostic())
}

func TestSettingsEditorCommitRequiresModels(t *testing.T) {
	e := newTestEditor()

	e.SetBuffer(`{"decision_model": "", "generation_model": "claude-sonnet"}`)
	require.False(t, e.Invalid(), "empty model is valid JSON, invalid settings")

	e, cmd := e.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.True(t, e.IsVisible())
	assert.Equal(t, "decision_model is required", e.Diagnostic())

	e.SetBuffer(`{"decision_model": "claude-haiku", "generation_model": ""}`)
	e, cmd = e.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.Equal(t, "generation_model is required", e.Diagnostic())
}

func TestSettingsEditorCommitEmitsSave(t *testing.T) {
	e := newTestEditor()

	e.SetBuffer(`{"decision_model": "claude-haiku", "generation_model": "claude-opus", "max_tokens": 4096}`)
	e, cmd := e.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)

	msg, ok := cmd().(SettingsCommitMsg)
	require.True(t, ok)
	assert.Equal(t, "sess-1", msg.SessionID)
	assert.Equal(t, "claude-opus", msg.Settings.GenerationModel)
	require.NotNil(t, msg.Settings.MaxTokens)
	assert.Equal(t, 4096, *msg.Settings.MaxTokens)

	// Editor stays open until the save result arrives.
	assert.True(t, e.IsVisible())

	// Duplicate commits are suppressed while a save is in flight.
	e, cmd = e.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)

	e.Saved()
	assert.False(t, e.IsVisible())
}

func TestSettingsEditorSaveFailureKeepsBuffer(t *testing.T) {
	e := newTestEditor()

	text := `{"decision_model": "a", "generation_model": "b"}`
	e.SetBuffer(text)
	e, cmd := e.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)

	e.SaveFailed("backend unavailable")
	assert.True(t, e.IsVisible())
	assert.Equal(t, text, e.Buffer())
	assert.Contains(t, e.Diagnostic(), "backend unavailable")

	// A retry is allowed after the failure.
	e, cmd = e.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.NotNil(t, cmd)
}

func TestSettingsEditorEscDiscards(t *testing.T) {
	e := newTestEditor()

	e.SetBuffer(`{"decision_model": "changed", "generation_model": "changed"}`)
	e, cmd := e.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.False(t, e.IsVisible())
}
