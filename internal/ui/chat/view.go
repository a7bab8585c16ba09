// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/doctalk-tui/internal/api"
	core "github.com/jeranaias/doctalk-tui/internal/chat"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the full screen. Open overlays replace the chat view.
func (m *Model) View() string {
	if !m.ready {
		return "Starting doctalk..."
	}

	if m.palette.IsVisible() {
		return m.palette.View()
	}
	if m.settings.IsVisible() {
		return m.settings.View()
	}
	if m.createForm.IsVisible() {
		return m.createForm.View()
	}

	sections := []string{
		m.headerView(),
		m.viewport.View(),
		m.transientView(),
		m.noticeView(),
		m.inputView(),
		m.statusBarView(),
	}

	var nonEmpty []string
	for _, s := range sections {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, nonEmpty...)
}

func (m *Model) headerView() string {
	title := m.theme.HeaderTitle.Render("doctalk")
	hint := m.theme.Header.Render("  ctrl+p palette | esc dismiss | ctrl+c quit")
	return title + hint
}

// transientView shows the backend status line and the rebuild banner.
func (m *Model) transientView() string {
	if status, isError := m.controller.RebuildStatus(); status != "" {
		if isError {
			return m.theme.RebuildError.Render(status)
		}
		return m.theme.RebuildInfo.Render(status)
	}
	if s := m.machine.Status(); s != "" {
		return m.theme.TransientLine.Render(m.spinner.View() + " " + s)
	}
	if m.machine.State() == core.StateSending {
		return m.theme.TransientLine.Render(m.spinner.View() + " Waiting for response...")
	}
	return ""
}

// noticeView shows error and lifecycle notices.
func (m *Model) noticeView() string {
	if n := m.machine.Notice(); n != "" {
		return m.theme.Banner.Render(n + " (esc to dismiss)")
	}
	if m.banner != "" {
		return m.theme.Banner.Render(m.banner + " (esc to dismiss)")
	}
	return ""
}

func (m *Model) inputView() string {
	return m.input.View()
}

func (m *Model) statusBarView() string {
	parts := []string{}

	if id := m.controller.CurrentID(); id != "" {
		parts = append(parts, m.theme.StatusSession.Render("session "+shortID(id)))
	} else {
		parts = append(parts, m.theme.StatusBar.Render("no session"))
	}

	parts = append(parts, m.theme.StatusState.Render(m.machine.State().String()))

	if cs := m.machine.ContextStatus(); cs != nil {
		parts = append(parts, m.theme.StatusContext.Render(contextSummary(cs)))
	}

	if m.conn == nil || !m.conn.Open() {
		parts = append(parts, m.theme.StatusBar.Render("offline"))
	}

	return m.theme.StatusBar.Render(strings.Join(parts, " | "))
}

// contextSummary formats the retrieval annotation for the status bar.
func contextSummary(cs *api.ContextStatus) string {
	switch cs.Action {
	case "new":
		return fmt.Sprintf("context: %d sources, %d tokens", cs.ContextCount, cs.TokenCount)
	case "additional":
		return fmt.Sprintf("context: +%d sources, %d tokens", cs.ContextCount, cs.TokenCount)
	default:
		return "context: reused"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// =============================================================================
// CONVERSATION RENDERING
// =============================================================================

// refreshViewport rebuilds the conversation text and pins to the bottom.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	var b strings.Builder
	for _, msg := range m.machine.Messages() {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	if live := m.machine.Live(); live != "" {
		b.WriteString(m.theme.AssistantLabel.Render("doc2talk"))
		b.WriteString("\n")
		b.WriteString(m.theme.Streaming.Render(live))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// renderMessage formats one settled conversation entry. Assistant text
// goes through the Markdown renderer; user text is shown verbatim.
func (m *Model) renderMessage(msg api.Message) string {
	if msg.Role == api.RoleUser {
		label := m.theme.UserLabel.Render("you")
		body := lipgloss.NewStyle().Width(m.viewport.Width).Render(msg.Content)
		return label + "\n" + body + "\n"
	}
	label := m.theme.AssistantLabel.Render("doc2talk")
	return label + "\n" + m.renderer.Render(msg.Content)
}
