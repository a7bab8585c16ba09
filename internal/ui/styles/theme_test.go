// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestNamedThemesPinPaletteSide(t *testing.T) {
	light := NewTheme("light")
	assert.Equal(t, lipgloss.Color(Cyan.Light), light.HeaderTitle.GetForeground())
	assert.Equal(t, lipgloss.Color(Rose.Light), light.Banner.GetBackground())

	dark := NewTheme("dark")
	assert.Equal(t, lipgloss.Color(Cyan.Dark), dark.HeaderTitle.GetForeground())
	assert.Equal(t, lipgloss.Color(Rose.Dark), dark.Banner.GetBackground())

	assert.NotEqual(t, light.HeaderTitle.GetForeground(), dark.HeaderTitle.GetForeground())
}

func TestUnknownThemeNameFallsBackToAdaptive(t *testing.T) {
	th := NewTheme("")
	assert.Equal(t, Cyan, th.HeaderTitle.GetForeground())
}
