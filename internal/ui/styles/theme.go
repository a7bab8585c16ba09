// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling for the doctalk TUI.
// Colors use Lip Gloss AdaptiveColor so light and dark terminals both work.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PALETTE
// =============================================================================

// Cyan - brand color, user messages, input prompt
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Purple - assistant messages, palette accents, selections
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Emerald - success states, context status
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - errors and the notice banner
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - transient status, rebuild-in-progress
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Surface - overlay backgrounds
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// Overlay - borders and separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// TextPrimary - main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextMuted - hints, placeholders, timestamps
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// TextInverse - text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#11111B"}

// =============================================================================
// THEME
// =============================================================================

// Theme holds the styled components for the application.
type Theme struct {
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Streaming      lipgloss.Style

	StatusBar     lipgloss.Style
	StatusSession lipgloss.Style
	StatusState   lipgloss.Style
	StatusContext lipgloss.Style
	TransientLine lipgloss.Style
	RebuildInfo   lipgloss.Style
	RebuildError  lipgloss.Style

	Banner lipgloss.Style

	InputPrompt lipgloss.Style

	PaletteBox      lipgloss.Style
	PaletteHeader   lipgloss.Style
	PaletteItem     lipgloss.Style
	PaletteSelected lipgloss.Style
	PaletteEmpty    lipgloss.Style
	PaletteHelp     lipgloss.Style

	OverlayBox   lipgloss.Style
	OverlayTitle lipgloss.Style
	FieldLabel   lipgloss.Style
	FieldError   lipgloss.Style
	Hint         lipgloss.Style
}

// pick resolves one palette entry for the named theme. "light" and "dark"
// pin the corresponding side; anything else keeps the adaptive color so
// terminal background detection decides.
func pick(name string, c lipgloss.AdaptiveColor) lipgloss.TerminalColor {
	switch name {
	case "light":
		return lipgloss.Color(c.Light)
	case "dark":
		return lipgloss.Color(c.Dark)
	default:
		return c
	}
}

// NewTheme builds the theme for the configured name ("dark" or "light").
func NewTheme(name string) *Theme {
	col := func(c lipgloss.AdaptiveColor) lipgloss.TerminalColor {
		return pick(name, c)
	}

	return &Theme{
		Header:      lipgloss.NewStyle().Foreground(col(TextMuted)),
		HeaderTitle: lipgloss.NewStyle().Foreground(col(Cyan)).Bold(true),

		UserLabel:      lipgloss.NewStyle().Foreground(col(Cyan)).Bold(true),
		AssistantLabel: lipgloss.NewStyle().Foreground(col(Purple)).Bold(true),
		Streaming:      lipgloss.NewStyle().Foreground(col(TextPrimary)),

		StatusBar:     lipgloss.NewStyle().Foreground(col(TextMuted)),
		StatusSession: lipgloss.NewStyle().Foreground(col(Cyan)),
		StatusState:   lipgloss.NewStyle().Foreground(col(Purple)),
		StatusContext: lipgloss.NewStyle().Foreground(col(Emerald)),
		TransientLine: lipgloss.NewStyle().Foreground(col(Amber)).Italic(true),
		RebuildInfo:   lipgloss.NewStyle().Foreground(col(Emerald)),
		RebuildError:  lipgloss.NewStyle().Foreground(col(Rose)).Bold(true),

		Banner: lipgloss.NewStyle().
			Foreground(col(TextInverse)).
			Background(col(Rose)).
			Padding(0, 1),

		InputPrompt: lipgloss.NewStyle().Foreground(col(Cyan)).Bold(true),

		PaletteBox: lipgloss.NewStyle().
			Background(col(Surface)).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(col(Purple)).
			Padding(1, 2),
		PaletteHeader:   lipgloss.NewStyle().Foreground(col(Purple)).Bold(true),
		PaletteItem:     lipgloss.NewStyle().Foreground(col(TextPrimary)),
		PaletteSelected: lipgloss.NewStyle().Background(col(Purple)).Foreground(col(TextInverse)).Padding(0, 1),
		PaletteEmpty:    lipgloss.NewStyle().Foreground(col(TextMuted)).Italic(true).Padding(1, 0),
		PaletteHelp:     lipgloss.NewStyle().Foreground(col(TextMuted)),

		OverlayBox: lipgloss.NewStyle().
			Background(col(Surface)).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(col(Cyan)).
			Padding(1, 2),
		OverlayTitle: lipgloss.NewStyle().Foreground(col(Cyan)).Bold(true),
		FieldLabel:   lipgloss.NewStyle().Foreground(col(TextMuted)),
		FieldError:   lipgloss.NewStyle().Foreground(col(Rose)),
		Hint:         lipgloss.NewStyle().Foreground(col(TextMuted)).Italic(true),
	}
}
