// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/doctalk-tui/internal/ui/styles"
)

func newTestForm() *CreateForm {
	f := NewCreateForm(styles.NewTheme("default"))
	f.Show()
	return f
}

func TestCreateFormRequiresASource(t *testing.T) {
	f := newTestForm()

	f, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.True(t, f.IsVisible())
	assert.NotEmpty(t, f.Error())

	// Whitespace does not count as a source.
	f.SetField(fieldCodeSource, "   ")
	f, cmd = f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.NotEmpty(t, f.Error())
}

func TestCreateFormSubmit(t *testing.T) {
	f := newTestForm()

	f.SetField(fieldCodeSource, " ./src ")
	f.SetField(fieldExcludes, "*.test.js, vendor/* ,")

	f, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(CreateSubmitMsg)
	require.True(t, ok)
	assert.Equal(t, "./src", msg.CodeSource)
	assert.Empty(t, msg.DocsSource)
	assert.Equal(t, []string{"*.test.js", "vendor/*"}, msg.ExcludePatterns)

	// Form stays open until the backend answers; duplicate submits are
	// suppressed meanwhile.
	assert.True(t, f.IsVisible())
	f, cmd = f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	f.Created()
	assert.False(t, f.IsVisible())
}

func TestCreateFormDocsSourceAloneIsEnough(t *testing.T) {
	f := newTestForm()

	f.SetField(fieldDocsSource, "https://github.com/example/docs")
	f, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(CreateSubmitMsg)
	require.True(t, ok)
	assert.Empty(t, msg.CodeSource)
	assert.Equal(t, "https://github.com/example/docs", msg.DocsSource)
}

func TestCreateFormFailureKeepsValues(t *testing.T) {
	f := newTestForm()

	f.SetField(fieldCodeSource, "./src")
	f, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	f.CreateFailed("backend unavailable")
	assert.True(t, f.IsVisible())
	assert.Equal(t, "./src", f.Field(fieldCodeSource))
	assert.Contains(t, f.Error(), "backend unavailable")

	// Retry allowed after failure.
	f, cmd = f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
}

func TestCreateFormTabMovesFocus(t *testing.T) {
	f := newTestForm()

	f, _ = f.Update(keyRunes("./code"))
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyTab})
	f, _ = f.Update(keyRunes("./docs"))

	assert.Equal(t, "./code", f.Field(fieldCodeSource))
	assert.Equal(t, "./docs", f.Field(fieldDocsSource))
}

func TestCreateFormShowClearsPreviousValues(t *testing.T) {
	f := newTestForm()

	f.SetField(fieldCodeSource, "./src")
	f, _ = f.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, f.IsVisible())

	f.Show()
	assert.Empty(t, f.Field(fieldCodeSource))
	assert.Empty(t, f.Error())
}
