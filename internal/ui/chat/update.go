// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	core "github.com/jeranaias/doctalk-tui/internal/chat"
	"github.com/jeranaias/doctalk-tui/internal/commands"
	"github.com/jeranaias/doctalk-tui/internal/controller"
	"github.com/jeranaias/doctalk-tui/internal/ui/components"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update routes messages to the overlays, the conversation machine, and
// the session controller.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m, m.resize(msg)

	case spinner.TickMsg:
		if m.machine.State() == core.StateSending || m.machine.State() == core.StateStreaming {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	// Channel lifecycle
	case ConnOpenedMsg:
		return m, m.handleConnOpened(msg)
	case EventMsg:
		return m, m.handleEvent(msg)
	case ChannelClosedMsg:
		return m, m.handleChannelClosed(msg)
	case SendFailedMsg:
		return m, m.handleSendFailed(msg)

	// Palette actions
	case commands.NewSessionMsg:
		m.createForm.Show()
		return m, nil
	case commands.OpenSettingsMsg:
		return m, m.openSettings()
	case commands.RefreshSessionsMsg:
		return m, m.controller.FetchSessionsCmd()
	case commands.QuitMsg:
		return m, tea.Quit
	case commands.SelectSessionMsg:
		if msg.ID == m.controller.CurrentID() {
			return m, nil
		}
		return m, m.selectSession(msg.ID)
	case commands.RebuildSessionMsg:
		return m, m.startRebuild(msg.ID)
	case commands.DeleteSessionMsg:
		return m, m.controller.DeleteSessionCmd(msg.ID)

	// Overlay submissions
	case components.CreateSubmitMsg:
		return m, m.controller.CreateSessionCmd(msg.CodeSource, msg.DocsSource, msg.ExcludePatterns)
	case components.SettingsCommitMsg:
		return m, m.controller.SaveSettingsCmd(msg.SessionID, msg.Settings)

	// Controller results
	case controller.SessionsLoadedMsg:
		m.controller.ApplySessions(msg)
		if msg.Err != nil {
			m.banner = "Error: failed to load sessions: " + msg.Err.Error()
		}
		return m, nil
	case controller.SessionCreatedMsg:
		return m, m.handleCreated(msg)
	case controller.MessagesLoadedMsg:
		return m, m.handleMessages(msg)
	case controller.SettingsLoadedMsg:
		return m, m.handleSettingsLoaded(msg)
	case controller.SettingsSavedMsg:
		if m.controller.ApplySettingsSaved(msg) {
			m.settings.Hide()
			m.sessionGone()
			return m, nil
		}
		if msg.Err != nil {
			m.settings.SaveFailed(msg.Err.Error())
			return m, nil
		}
		m.settings.Saved()
		return m, nil
	case controller.SessionDeletedMsg:
		if m.controller.ApplyDeleted(msg) {
			m.dropConn()
			m.machine.ResetForSession(nil)
			m.refreshViewport()
		}
		return m, nil
	case controller.RebuildFinishedMsg:
		cmd, cleared := m.controller.ApplyRebuildFinished(msg)
		if cleared {
			m.sessionGone()
		}
		return m, cmd
	case controller.RebuildStatusClearMsg:
		m.controller.ApplyStatusClear(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Everything else (cursor blink and other component ticks) goes to
	// the input so its animations keep running.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit works everywhere, overlays included.
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	// An open overlay owns the keyboard.
	if m.palette.IsVisible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}
	if m.settings.IsVisible() {
		var cmd tea.Cmd
		m.settings, cmd = m.settings.Update(msg)
		return m, cmd
	}
	if m.createForm.IsVisible() {
		var cmd tea.Cmd
		m.createForm, cmd = m.createForm.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keyMap.Palette):
		m.palette.Show(commands.Build(m.controller.Sessions(), m.controller.CurrentID()))
		return m, nil

	case key.Matches(msg, m.keyMap.Dismiss):
		m.banner = ""
		m.machine.DismissNotice()
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m, m.submit()

	case key.Matches(msg, m.keyMap.Up),
		key.Matches(msg, m.keyMap.Down),
		key.Matches(msg, m.keyMap.PageUp),
		key.Matches(msg, m.keyMap.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit validates and sends the composed message.
func (m *Model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	if m.controller.CurrentID() == "" {
		m.banner = "No session selected. Open the palette (ctrl+p) to pick one."
		return nil
	}
	if m.controller.Rebuilding() {
		// Submission stays disabled until the rebuild settles.
		return nil
	}
	if m.conn == nil || !m.conn.Open() {
		m.machine.ConnectionLost()
		return m.reconnect()
	}
	if !m.machine.CanSend() {
		return nil
	}

	if !m.machine.Submit(text) {
		return nil
	}
	m.input.Reset()
	m.refreshViewport()
	return tea.Batch(sendCmd(m.conn, text), m.spinner.Tick)
}

// =============================================================================
// CHANNEL HANDLING
// =============================================================================

func (m *Model) handleConnOpened(msg ConnOpenedMsg) tea.Cmd {
	if msg.SessionID != m.controller.CurrentID() {
		// The user switched sessions while the dial was in flight.
		if msg.Conn != nil {
			msg.Conn.Close()
		}
		return nil
	}
	if msg.Err != nil {
		m.log.Warn("channel dial failed", zap.String("session", msg.SessionID), zap.Error(msg.Err))
		m.machine.ConnectionLost()
		m.reconnecting = false
		return nil
	}

	listen := m.adoptConn(&channelConn{Conn: msg.Conn})
	if m.reconnecting {
		m.reconnecting = false
		// Resync the conversation; anything lost while the channel was
		// down shows up in the refetched history.
		return tea.Batch(listen, m.controller.FetchMessagesCmd(msg.SessionID))
	}
	return listen
}

func (m *Model) handleEvent(msg EventMsg) tea.Cmd {
	if msg.Gen != m.connGen {
		// Event from a closed or superseded channel instance.
		return nil
	}
	m.machine.Apply(msg.Event)
	m.refreshViewport()
	return m.listen()
}

func (m *Model) handleChannelClosed(msg ChannelClosedMsg) tea.Cmd {
	if msg.Gen != m.connGen {
		return nil
	}
	m.conn = nil
	m.connGen = 0
	m.reconnecting = false
	if m.controller.CurrentID() == "" {
		return nil
	}
	// No automatic redial on an unexpected closure: the notice stays up
	// and the next submit dials through the dead-connection path.
	m.machine.ConnectionLost()
	m.refreshViewport()
	return nil
}

func (m *Model) handleSendFailed(msg SendFailedMsg) tea.Cmd {
	if msg.Gen != m.connGen {
		return nil
	}
	m.log.Warn("send failed", zap.Error(msg.Err))
	m.dropConn()
	m.machine.ConnectionLost()
	return m.reconnect()
}

// reconnect dials the current session's channel again and flags the next
// successful open for a history resync.
func (m *Model) reconnect() tea.Cmd {
	id := m.controller.CurrentID()
	if id == "" {
		return nil
	}
	m.reconnecting = true
	return dialCmd(m.serverURL, id, m.log)
}

// listen re-arms the single event listener for the active connection.
func (m *Model) listen() tea.Cmd {
	if real, ok := m.conn.(*channelConn); ok {
		return listenCmd(real.Conn)
	}
	return nil
}

// =============================================================================
// SESSION RESULT HANDLING
// =============================================================================

func (m *Model) handleCreated(msg controller.SessionCreatedMsg) tea.Cmd {
	if msg.Err != nil {
		m.createForm.CreateFailed(msg.Err.Error())
		return nil
	}
	m.createForm.Created()

	m.dropConn()
	m.machine.ResetForSession(nil)
	m.banner = ""
	return tea.Batch(
		m.controller.ApplyCreated(msg),
		dialCmd(m.serverURL, msg.Session.ID, m.log),
	)
}

// sessionGone clears local state after the backend reports the current
// session no longer exists. No retry, no reconnect.
func (m *Model) sessionGone() {
	m.dropConn()
	m.reconnecting = false
	m.machine.ResetForSession(nil)
	m.banner = "Session deleted remotely"
	m.refreshViewport()
}

func (m *Model) handleMessages(msg controller.MessagesLoadedMsg) tea.Cmd {
	if m.controller.ApplyMessages(msg) {
		m.sessionGone()
		return nil
	}
	if msg.Err != nil {
		if msg.SessionID == m.controller.CurrentID() {
			m.banner = "Error: failed to load history: " + msg.Err.Error()
		}
		return nil
	}
	if msg.SessionID == m.controller.CurrentID() {
		m.machine.ResetForSession(msg.Messages)
		m.refreshViewport()
	}
	return nil
}

func (m *Model) openSettings() tea.Cmd {
	id := m.controller.CurrentID()
	if id == "" {
		return nil
	}
	if s := m.controller.Settings(); s != nil {
		m.settings.Show(id, s)
		return nil
	}
	m.settingsPending = true
	return m.controller.FetchSettingsCmd(id)
}

func (m *Model) handleSettingsLoaded(msg controller.SettingsLoadedMsg) tea.Cmd {
	if m.controller.ApplySettings(msg) {
		m.settingsPending = false
		m.sessionGone()
		return nil
	}
	if !m.settingsPending || msg.SessionID != m.controller.CurrentID() {
		return nil
	}
	m.settingsPending = false
	if msg.Err != nil {
		m.banner = "Error: failed to load settings: " + msg.Err.Error()
		return nil
	}
	m.settings.Show(msg.SessionID, m.controller.Settings())
	return nil
}

func (m *Model) startRebuild(id string) tea.Cmd {
	var dial tea.Cmd
	if id != m.controller.CurrentID() {
		m.dropConn()
		m.machine.ResetForSession(nil)
		m.banner = ""
		dial = dialCmd(m.serverURL, id, m.log)
	}
	rebuild := m.controller.StartRebuild(id)
	if dial != nil {
		return tea.Batch(rebuild, dial)
	}
	return rebuild
}

// =============================================================================
// RESIZE
// =============================================================================

func (m *Model) resize(msg tea.WindowSizeMsg) tea.Cmd {
	m.width = msg.Width
	m.height = msg.Height

	// Header, status line, banner slot, input, status bar.
	chromeHeight := 6
	vpHeight := msg.Height - chromeHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
	}

	m.input.Width = msg.Width - 4
	m.palette.SetSize(msg.Width, msg.Height)
	m.settings.SetSize(msg.Width, msg.Height)
	m.createForm.SetSize(msg.Width, msg.Height)

	m.refreshViewport()
	return nil
}
