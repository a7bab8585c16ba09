// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/doctalk-tui/internal/commands"
	"github.com/jeranaias/doctalk-tui/internal/ui/styles"
)

// =============================================================================
// COMMAND PALETTE
// =============================================================================

// Palette is the overlay for searching and executing commands. It is the
// sole control surface for session management: selection, creation,
// deletion, and index rebuilds all go through it.
type Palette struct {
	// Input field for filtering
	input textinput.Model

	// Full command list for this open, regenerated on every Show
	commands []commands.Command

	// Filtered commands, original order preserved
	filtered []commands.Command

	// Selection cursor into filtered
	selected int

	// Dimensions for centering
	width  int
	height int

	// Visibility
	visible bool

	// Theme
	theme *styles.Theme

	// Maximum items to show
	maxItems int
}

// NewPalette creates a hidden command palette.
func NewPalette(theme *styles.Theme) *Palette {
	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.Prompt = "> "
	ti.CharLimit = 100
	ti.Width = 50
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true)

	return &Palette{
		input:    ti,
		theme:    theme,
		maxItems: 12,
	}
}

// =============================================================================
// VISIBILITY
// =============================================================================

// Show opens the palette over a freshly built command list.
func (p *Palette) Show(cmds []commands.Command) {
	p.commands = cmds
	p.visible = true
	p.input.Reset()
	p.input.Focus()
	p.refilter()
}

// Hide closes the palette without side effects.
func (p *Palette) Hide() {
	p.visible = false
	p.input.Blur()
}

// IsVisible reports whether the palette is open.
func (p *Palette) IsVisible() bool {
	return p.visible
}

// SetSize sets the dimensions used for centering the overlay.
func (p *Palette) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Selected returns the cursor position. Exposed for tests.
func (p *Palette) Selected() int {
	return p.selected
}

// Filtered returns the current filtered list. Exposed for tests.
func (p *Palette) Filtered() []commands.Command {
	return p.filtered
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles key input while the palette is open. Confirm invokes the
// selected command's primary action; ctrl+r and ctrl+x invoke the row's
// rebuild and delete secondary actions without touching the primary one.
func (p *Palette) Update(msg tea.Msg) (*Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}

	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			p.Hide()
			return p, nil

		case "enter":
			if len(p.filtered) == 0 {
				return p, nil
			}
			action := p.filtered[p.selected].Action
			p.Hide()
			return p, action

		case "ctrl+r":
			if len(p.filtered) == 0 {
				return p, nil
			}
			if rebuild := p.filtered[p.selected].Rebuild; rebuild != nil {
				p.Hide()
				return p, rebuild
			}
			return p, nil

		case "ctrl+x":
			if len(p.filtered) == 0 {
				return p, nil
			}
			if del := p.filtered[p.selected].Delete; del != nil {
				p.Hide()
				return p, del
			}
			return p, nil

		case "up":
			if len(p.filtered) == 0 {
				return p, nil
			}
			p.selected = (p.selected - 1 + len(p.filtered)) % len(p.filtered)
			return p, nil

		case "down", "tab", "ctrl+n":
			if len(p.filtered) == 0 {
				return p, nil
			}
			p.selected = (p.selected + 1) % len(p.filtered)
			return p, nil
		}
	}

	previous := p.input.Value()
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != previous {
		p.refilter()
	}

	return p, cmd
}

// refilter recomputes the filtered list and resets the cursor to the
// first match.
func (p *Palette) refilter() {
	p.filtered = commands.Filter(p.commands, p.input.Value())
	p.selected = 0
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the palette overlay.
func (p *Palette) View() string {
	if !p.visible {
		return ""
	}

	boxWidth := 64
	if p.width > 0 && p.width < boxWidth+10 {
		boxWidth = p.width - 10
	}
	if boxWidth < 40 {
		boxWidth = 40
	}

	header := p.theme.PaletteHeader.Render("Sessions")
	separator := lipgloss.NewStyle().Foreground(styles.Overlay).Render(strings.Repeat("-", boxWidth-4))

	p.input.Width = boxWidth - 6
	inputView := p.input.View()

	var rows []string
	for i, c := range p.filtered {
		if i >= p.maxItems {
			remaining := len(p.filtered) - p.maxItems
			rows = append(rows, p.theme.PaletteEmpty.Render("  ... "+strconv.Itoa(remaining)+" more"))
			break
		}
		rows = append(rows, p.renderItem(c, i == p.selected, boxWidth-6))
	}

	list := strings.Join(rows, "\n")
	if len(p.filtered) == 0 {
		list = p.theme.PaletteEmpty.Render("No matching commands")
	}

	help := p.theme.PaletteHelp.Render("up/down navigate | enter run | ctrl+r rebuild | ctrl+x delete | esc close")

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		separator,
		inputView,
		separator,
		list,
		"",
		help,
	)

	box := p.theme.PaletteBox.Width(boxWidth).Render(content)

	if p.width > 0 && p.height > 0 {
		return lipgloss.Place(
			p.width, p.height,
			lipgloss.Center, lipgloss.Center,
			box,
			lipgloss.WithWhitespaceChars(" "),
		)
	}
	return box
}

// renderItem renders a single command row.
func (p *Palette) renderItem(c commands.Command, selected bool, width int) string {
	indicator := "  "
	if selected {
		indicator = "> "
	}

	line := indicator + c.Icon + " " + TruncateText(c.Title, width-5)
	if selected {
		return p.theme.PaletteSelected.Width(width).Render(line)
	}
	return p.theme.PaletteItem.Render(line)
}
