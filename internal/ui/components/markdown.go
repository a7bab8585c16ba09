// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/glamour"
)

// Renderer wraps the glamour markdown renderer for assistant messages.
// Rendering falls back to raw text on any failure; a display glitch must
// never hide an answer.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewRenderer builds a renderer for the given wrap width.
func NewRenderer(width int) *Renderer {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return &Renderer{width: width}
	}
	return &Renderer{renderer: r, width: width}
}

// Width returns the renderer's wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render renders markdown to styled terminal text.
func (r *Renderer) Render(markdown string) string {
	if r.renderer == nil {
		return markdown
	}
	out, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}
