// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/doctalk-tui/internal/channel"
)

// =============================================================================
// CHANNEL MESSAGES
// =============================================================================

// ConnOpenedMsg reports the outcome of a channel dial.
type ConnOpenedMsg struct {
	SessionID string
	Conn      *channel.Conn
	Err       error
}

// EventMsg delivers one inbound channel event. Gen identifies the
// connection instance the event came from.
type EventMsg struct {
	Gen   uint64
	Event channel.Event
}

// ChannelClosedMsg reports that a connection's event stream ended.
type ChannelClosedMsg struct {
	Gen uint64
}

// SendFailedMsg reports a failed outbound write on the given connection.
type SendFailedMsg struct {
	Gen uint64
	Err error
}

// =============================================================================
// CHANNEL COMMANDS
// =============================================================================

// dialCmd opens the WebSocket channel for a session.
func dialCmd(baseURL, sessionID string, log *zap.Logger) tea.Cmd {
	return func() tea.Msg {
		conn, err := channel.Dial(context.Background(), baseURL, sessionID, log)
		return ConnOpenedMsg{SessionID: sessionID, Conn: conn, Err: err}
	}
}

// listenCmd waits for the next inbound event. The update loop re-issues it
// after each event, so exactly one listener runs per connection.
func listenCmd(conn *channel.Conn) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-conn.Events()
		if !ok {
			return ChannelClosedMsg{Gen: conn.Gen()}
		}
		return EventMsg{Gen: conn.Gen(), Event: ev}
	}
}

// sendCmd writes one user message to the channel.
func sendCmd(conn connection, text string) tea.Cmd {
	return func() tea.Msg {
		if err := conn.Send(text); err != nil {
			return SendFailedMsg{Gen: conn.Gen(), Err: err}
		}
		return nil
	}
}

// channelConn adapts channel.Conn to the connection interface, wrapping
// outbound text in the message envelope.
type channelConn struct {
	*channel.Conn
}

func (c *channelConn) Send(text string) error {
	return c.Conn.Send(channel.NewOutboundMessage(text))
}
