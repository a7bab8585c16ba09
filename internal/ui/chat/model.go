// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	core "github.com/jeranaias/doctalk-tui/internal/chat"
	"github.com/jeranaias/doctalk-tui/internal/config"
	"github.com/jeranaias/doctalk-tui/internal/controller"
	"github.com/jeranaias/doctalk-tui/internal/ui/components"
	"github.com/jeranaias/doctalk-tui/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the doctalk client.
type Model struct {
	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// Configuration snapshot
	serverURL string

	// Conversation state machine for the current session
	machine *core.Machine

	// Session lifecycle
	controller *controller.Controller

	// Active channel. conn is nil when no session is current or the
	// channel is down; connGen gates inbound events to this instance.
	conn    connection
	connGen uint64

	// Set while a redial is in flight; the next successful open
	// refetches history to resync the conversation.
	reconnecting bool

	// Lifecycle notice shown above the input (session deleted remotely,
	// and similar). Distinct from the machine's protocol error notice.
	banner string

	// Overlays
	palette    *components.Palette
	settings   *components.SettingsEditor
	createForm *components.CreateForm

	// When true, the settings editor opens as soon as the current
	// session's settings arrive.
	settingsPending bool

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	renderer *components.Renderer

	// Key bindings
	keyMap KeyMap

	log *zap.Logger
}

// connection is the subset of channel.Conn the update loop uses. Tests
// substitute a fake to drive send failures without a socket.
type connection interface {
	Gen() uint64
	Open() bool
	SessionID() string
	Close()
	Send(text string) error
}

// New builds the chat model. ctrl should already have had RestoreCurrent
// called; Init picks up the restored session.
func New(cfg config.Config, ctrl *controller.Controller, log *zap.Logger) *Model {
	if log == nil {
		log = zap.NewNop()
	}

	theme := styles.NewTheme(cfg.UI.Theme)

	ti := textinput.New()
	ti.Placeholder = "Ask about the codebase..."
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	return &Model{
		theme:      theme,
		serverURL:  cfg.Server.URL,
		machine:    core.NewMachine(),
		controller: ctrl,
		palette:    components.NewPalette(theme),
		settings:   components.NewSettingsEditor(theme),
		createForm: components.NewCreateForm(theme),
		input:      ti,
		spinner:    sp,
		renderer:   components.NewRenderer(cfg.UI.MarkdownWidth),
		keyMap:     DefaultKeyMap(),
		log:        log,
	}
}

// Init starts the session list fetch and, when a current session was
// restored, its history fetch and channel dial.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.spinner.Tick,
		m.controller.FetchSessionsCmd(),
	}
	if id := m.controller.CurrentID(); id != "" {
		cmds = append(cmds,
			m.controller.FetchMessagesCmd(id),
			m.controller.FetchSettingsCmd(id),
			dialCmd(m.serverURL, id, m.log),
		)
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// CONNECTION HELPERS
// =============================================================================

// dropConn closes the active channel, if any. Late events from it are
// discarded by the generation check.
func (m *Model) dropConn() {
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	m.connGen = 0
}

// adoptConn installs a freshly dialed connection and starts its listener.
func (m *Model) adoptConn(conn connection) tea.Cmd {
	m.dropConn()
	m.conn = conn
	m.connGen = conn.Gen()
	return m.listen()
}

// selectSession switches the UI to another session: the old channel is
// torn down, the conversation clears until history arrives, and a new
// channel is dialed.
func (m *Model) selectSession(id string) tea.Cmd {
	m.dropConn()
	m.machine.ResetForSession(nil)
	m.banner = ""
	return tea.Batch(
		m.controller.Select(id),
		dialCmd(m.serverURL, id, m.log),
	)
}

// overlayOpen reports whether any overlay currently captures input.
func (m *Model) overlayOpen() bool {
	return m.palette.IsVisible() || m.settings.IsVisible() || m.createForm.IsVisible()
}
