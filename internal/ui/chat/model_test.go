// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/channel"
	core "github.com/jeranaias/doctalk-tui/internal/chat"
	"github.com/jeranaias/doctalk-tui/internal/commands"
	"github.com/jeranaias/doctalk-tui/internal/config"
	"github.com/jeranaias/doctalk-tui/internal/controller"
	"github.com/jeranaias/doctalk-tui/internal/store"
)

// fakeConn drives the update loop without a socket.
type fakeConn struct {
	gen       uint64
	sessionID string
	open      bool
	sent      []string
	sendErr   error
}

func (f *fakeConn) Gen() uint64        { return f.gen }
func (f *fakeConn) Open() bool         { return f.open }
func (f *fakeConn) SessionID() string  { return f.sessionID }
func (f *fakeConn) Close()             { f.open = false }
func (f *fakeConn) Send(text string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, text)
	return nil
}

func newTestModel(t *testing.T) (*Model, *controller.Controller) {
	t.Helper()
	client := api.NewClient("http://127.0.0.1:1", nil)
	ctrl := controller.New(client, store.NewMemoryStore(), nil)
	m := New(config.Default(), ctrl, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, ctrl
}

// attach wires a live fake connection for the given session.
func attach(m *Model, ctrl *controller.Controller, sessionID string, gen uint64) *fakeConn {
	ctrl.Select(sessionID)
	conn := &fakeConn{gen: gen, sessionID: sessionID, open: true}
	m.conn = conn
	m.connGen = gen
	return conn
}

func TestSubmitSendsAndEntersSending(t *testing.T) {
	m, ctrl := newTestModel(t)
	conn := attach(m, ctrl, "sess-1", 7)

	m.input.SetValue("how does auth work?")
	cmd := m.submit()
	require.NotNil(t, cmd)

	assert.Equal(t, core.StateSending, m.machine.State())
	assert.Empty(t, m.input.Value())

	msgs := m.machine.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, api.RoleUser, msgs[0].Role)
	assert.Equal(t, "how does auth work?", msgs[0].Content)
	_ = conn
}

func TestSubmitRefusedWithoutSession(t *testing.T) {
	m, _ := newTestModel(t)

	m.input.SetValue("hello")
	cmd := m.submit()
	assert.Nil(t, cmd)
	assert.Equal(t, core.StateIdle, m.machine.State())
	assert.NotEmpty(t, m.banner)
}

func TestSubmitRefusedWhileRebuilding(t *testing.T) {
	m, ctrl := newTestModel(t)
	attach(m, ctrl, "sess-1", 1)
	ctrl.StartRebuild("sess-1")

	m.input.SetValue("hello")
	cmd := m.submit()
	assert.Nil(t, cmd)
	assert.Equal(t, core.StateIdle, m.machine.State())
	assert.Equal(t, "hello", m.input.Value(), "input is preserved while disabled")
}

func TestSubmitOnDeadConnReconnects(t *testing.T) {
	m, ctrl := newTestModel(t)
	conn := attach(m, ctrl, "sess-1", 1)
	conn.open = false

	m.input.SetValue("hello")
	cmd := m.submit()
	require.NotNil(t, cmd, "a redial is issued")
	assert.Equal(t, "connection lost", m.machine.Notice())
	assert.Equal(t, core.StateIdle, m.machine.State(), "nothing was appended")
	assert.True(t, m.reconnecting)
}

func TestStaleEventsAreDropped(t *testing.T) {
	m, ctrl := newTestModel(t)
	attach(m, ctrl, "sess-1", 3)

	m.input.SetValue("q")
	require.NotNil(t, m.submit())

	// Gen 2 belongs to an earlier, closed channel instance.
	m.Update(EventMsg{Gen: 2, Event: channel.Event{Type: channel.EventChunk, Content: "stale"}})
	assert.Empty(t, m.machine.Live())

	m.Update(EventMsg{Gen: 3, Event: channel.Event{Type: channel.EventChunk, Content: "fresh"}})
	assert.Equal(t, "fresh", m.machine.Live())
	assert.Equal(t, core.StateStreaming, m.machine.State())
}

func TestSendFailureDropsConnAndRedials(t *testing.T) {
	m, ctrl := newTestModel(t)
	attach(m, ctrl, "sess-1", 5)

	cmd := m.handleSendFailed(SendFailedMsg{Gen: 5, Err: errors.New("broken pipe")})
	require.NotNil(t, cmd)
	assert.Nil(t, m.conn)
	assert.Equal(t, "connection lost", m.machine.Notice())
	assert.True(t, m.reconnecting)

	// A stale failure from an already-replaced conn is ignored.
	conn := attach(m, ctrl, "sess-1", 6)
	m.reconnecting = false
	cmd = m.handleSendFailed(SendFailedMsg{Gen: 5, Err: errors.New("late")})
	assert.Nil(t, cmd)
	assert.True(t, conn.open)
}

func TestRetryPossibleAfterSendAndRedialBothFail(t *testing.T) {
	m, ctrl := newTestModel(t)
	attach(m, ctrl, "sess-1", 5)

	m.input.SetValue("q")
	require.NotNil(t, m.submit())
	require.Equal(t, core.StateSending, m.machine.State())

	// The send fails and the automatic redial fails too.
	require.NotNil(t, m.handleSendFailed(SendFailedMsg{Gen: 5, Err: errors.New("broken pipe")}))
	m.Update(ConnOpenedMsg{SessionID: "sess-1", Err: errors.New("connection refused")})

	assert.Equal(t, core.StateIdle, m.machine.State(), "machine must not stay in sending")
	assert.True(t, m.machine.CanSend())
	assert.False(t, m.reconnecting)

	// Retrying from here dials again instead of going nowhere.
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m.input.SetValue("q again")
	require.NotNil(t, m.submit(), "resubmitting dials again")
	assert.True(t, m.reconnecting)
}

func TestChannelClosedSurfacesNoticeWithoutRedial(t *testing.T) {
	m, ctrl := newTestModel(t)
	attach(m, ctrl, "sess-1", 4)

	cmd := m.handleChannelClosed(ChannelClosedMsg{Gen: 4})
	assert.Nil(t, cmd, "closure alone never redials")
	assert.Nil(t, m.conn)
	assert.False(t, m.reconnecting)
	assert.Equal(t, "connection lost", m.machine.Notice())

	// The next submit goes through the dead-connection path and dials.
	m.input.SetValue("still there?")
	require.NotNil(t, m.submit())
	assert.True(t, m.reconnecting)
}

func TestChannelClosedMidStreamUnblocksSending(t *testing.T) {
	m, ctrl := newTestModel(t)
	attach(m, ctrl, "sess-1", 4)

	m.input.SetValue("q")
	require.NotNil(t, m.submit())
	m.Update(EventMsg{Gen: 4, Event: channel.Event{Type: channel.EventChunk, Content: "par"}})
	require.Equal(t, core.StateStreaming, m.machine.State())

	m.handleChannelClosed(ChannelClosedMsg{Gen: 4})
	assert.Equal(t, core.StateIdle, m.machine.State(), "interrupted exchange is abandoned")
	assert.Empty(t, m.machine.Live())
	assert.True(t, m.machine.CanSend())
}

func TestStaleChannelClosureIsIgnored(t *testing.T) {
	m, ctrl := newTestModel(t)
	attach(m, ctrl, "sess-1", 9)

	cmd := m.handleChannelClosed(ChannelClosedMsg{Gen: 4})
	assert.Nil(t, cmd)
	assert.NotNil(t, m.conn, "live channel survives a stale closure")
	assert.Empty(t, m.machine.Notice())
}

func TestRemoteDeletionClearsSession(t *testing.T) {
	m, ctrl := newTestModel(t)
	conn := attach(m, ctrl, "sess-1", 2)

	m.Update(controller.MessagesLoadedMsg{SessionID: "sess-1", Err: api.ErrSessionNotFound})

	assert.Empty(t, ctrl.CurrentID())
	assert.Nil(t, m.conn)
	assert.False(t, conn.open)
	assert.Equal(t, "Session deleted remotely", m.banner)
	assert.Empty(t, m.machine.Messages())
}

func TestSettingsFetchNotFoundDropsSession(t *testing.T) {
	m, ctrl := newTestModel(t)
	conn := attach(m, ctrl, "sess-1", 3)
	m.settingsPending = true

	m.Update(controller.SettingsLoadedMsg{SessionID: "sess-1", Err: api.ErrSessionNotFound})

	assert.Empty(t, ctrl.CurrentID())
	assert.Nil(t, m.conn)
	assert.False(t, conn.open)
	assert.False(t, m.settingsPending)
	assert.Equal(t, "Session deleted remotely", m.banner)
}

func TestRebuildNotFoundDropsSession(t *testing.T) {
	m, ctrl := newTestModel(t)
	conn := attach(m, ctrl, "sess-1", 3)
	require.NotNil(t, m.startRebuild("sess-1"))

	m.Update(controller.RebuildFinishedMsg{SessionID: "sess-1", Seq: 1, Err: api.ErrSessionNotFound})

	assert.Empty(t, ctrl.CurrentID())
	assert.False(t, ctrl.Rebuilding())
	assert.Nil(t, m.conn)
	assert.False(t, conn.open)
	assert.Equal(t, "Session deleted remotely", m.banner)
	status, _ := ctrl.RebuildStatus()
	assert.Empty(t, status)
}

func TestHistoryLoadResetsMachine(t *testing.T) {
	m, ctrl := newTestModel(t)
	attach(m, ctrl, "sess-1", 2)

	history := []api.Message{
		{Role: api.RoleUser, Content: "q"},
		{Role: api.RoleAssistant, Content: "a"},
	}
	m.Update(controller.MessagesLoadedMsg{SessionID: "sess-1", Messages: history})
	assert.Len(t, m.machine.Messages(), 2)

	// History for a no-longer-current session is ignored.
	m.Update(controller.MessagesLoadedMsg{SessionID: "other", Messages: []api.Message{{Role: api.RoleUser, Content: "x"}}})
	assert.Len(t, m.machine.Messages(), 2)
}

func TestDismissClearsNoticeAndBanner(t *testing.T) {
	m, ctrl := newTestModel(t)
	attach(m, ctrl, "sess-1", 1)
	m.machine.ConnectionLost()
	m.banner = "Session deleted remotely"

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.machine.Notice())
	assert.Empty(t, m.banner)
}

func TestPaletteOpensOnCtrlP(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.True(t, m.palette.IsVisible())

	// While open, the palette owns the keyboard; typing must not reach
	// the message input.
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("quit")})
	assert.Empty(t, m.input.Value())
}

func TestSelectSameSessionKeepsChannel(t *testing.T) {
	m, ctrl := newTestModel(t)
	conn := attach(m, ctrl, "sess-1", 1)

	_, cmd := m.Update(commands.SelectSessionMsg{ID: "sess-1"})
	assert.Nil(t, cmd)
	assert.True(t, conn.open)
	assert.Same(t, conn, m.conn)
}

func TestRebuildOfOtherSessionRetargetsChannel(t *testing.T) {
	m, ctrl := newTestModel(t)
	conn := attach(m, ctrl, "sess-1", 1)

	cmd := m.startRebuild("sess-2")
	require.NotNil(t, cmd)
	assert.False(t, conn.open, "old channel is torn down")
	assert.Equal(t, "sess-2", ctrl.CurrentID())
	assert.True(t, ctrl.Rebuilding())
}

func TestStatusEventsDoNotChangeState(t *testing.T) {
	m, ctrl := newTestModel(t)
	attach(m, ctrl, "sess-1", 1)

	m.Update(EventMsg{Gen: 1, Event: channel.Event{Type: channel.EventStatus, Content: "Analyzing question..."}})
	assert.Equal(t, core.StateIdle, m.machine.State())
	assert.Equal(t, "Analyzing question...", m.machine.Status())

	m.Update(EventMsg{Gen: 1, Event: channel.Event{Type: channel.EventStatus, Content: ""}})
	assert.Empty(t, m.machine.Status())
}
