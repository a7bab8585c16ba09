// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/channel"
)

// =============================================================================
// CHANNEL STATE
// =============================================================================

// State represents the streaming client's channel state.
type State int

const (
	StateIdle       State = iota // Ready for input
	StateSending                 // Message sent, waiting for the first chunk
	StateStreaming               // Receiving chunk events
	StateErrorShown              // An error notice is on screen
)

// String returns the state name for logs and the status bar.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateErrorShown:
		return "error"
	default:
		return "unknown"
	}
}

// =============================================================================
// MACHINE
// =============================================================================

// Machine reconstructs one session's conversation from protocol events.
//
// Chunk contents are display-only: they accumulate in a live buffer while
// streaming, and the buffer is discarded when the complete event delivers
// the authoritative final text.
type Machine struct {
	state State

	messages    []api.Message
	accumulator strings.Builder

	status        string // transient status line ("Analyzing question...")
	contextStatus *api.ContextStatus
	notice        string // error / connection-lost notice
}

// NewMachine returns a machine in StateIdle with no messages.
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// State returns the current channel state.
func (m *Machine) State() State {
	return m.state
}

// Messages returns the conversation so far. The returned slice is owned by
// the machine; callers must not mutate it.
func (m *Machine) Messages() []api.Message {
	return m.messages
}

// Live returns the in-progress assistant text accumulated from chunks.
func (m *Machine) Live() string {
	return m.accumulator.String()
}

// Status returns the transient status line, or "" when cleared.
func (m *Machine) Status() string {
	return m.status
}

// ContextStatus returns the last-known retrieval annotation, or nil.
func (m *Machine) ContextStatus() *api.ContextStatus {
	return m.contextStatus
}

// Notice returns the current error notice, or "" when none is shown.
func (m *Machine) Notice() string {
	return m.notice
}

// CanSend reports whether a new user message may be submitted. A shown
// error does not block sending; submitting again is how the user retries.
func (m *Machine) CanSend() bool {
	return m.state == StateIdle || m.state == StateErrorShown
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Submit records an outgoing user message: the text is appended to the
// conversation optimistically and the machine enters StateSending. Callers
// check CanSend and channel openness first; Submit returns false if the
// machine refuses (mid-stream, or empty text).
func (m *Machine) Submit(text string) bool {
	if !m.CanSend() || strings.TrimSpace(text) == "" {
		return false
	}
	m.messages = append(m.messages, api.Message{Role: api.RoleUser, Content: text})
	m.state = StateSending
	m.notice = ""
	m.status = ""
	return true
}

// Apply advances the machine by one inbound channel event.
//
// Only chunk, complete, and error events may change the channel state;
// context_status and status events annotate without transitioning.
func (m *Machine) Apply(ev channel.Event) {
	switch ev.Type {
	case channel.EventChunk:
		// Chunks are appended strictly in arrival order, never reordered
		// or deduplicated.
		if m.state == StateSending || m.state == StateStreaming {
			m.accumulator.WriteString(ev.Content)
			m.state = StateStreaming
		}

	case channel.EventContextStatus:
		if ev.Status != nil {
			m.contextStatus = ev.Status
		}

	case channel.EventStatus:
		// Empty content is the backend's "clear the status line".
		m.status = ev.Content

	case channel.EventComplete:
		// The complete event carries the authoritative final text; the
		// chunk accumulation is discarded, not trusted.
		if m.state == StateSending || m.state == StateStreaming {
			m.messages = append(m.messages, api.Message{Role: api.RoleAssistant, Content: ev.Content})
		}
		m.accumulator.Reset()
		m.status = ""
		m.state = StateIdle

	case channel.EventError:
		// No partial assistant message survives an error.
		m.accumulator.Reset()
		m.status = ""
		m.notice = ev.Content
		m.state = StateErrorShown

	case channel.EventMessageReceived:
		// Delivery ack. Nothing to do.
	}
}

// ConnectionLost surfaces a dropped channel. An in-flight exchange is
// abandoned: accumulated chunks are discarded and the machine returns to
// Idle, so submitting again retries rather than waiting on a reply that
// will never arrive.
func (m *Machine) ConnectionLost() {
	m.notice = "connection lost"
	if m.state == StateSending || m.state == StateStreaming {
		m.accumulator.Reset()
		m.status = ""
		m.state = StateIdle
	}
}

// DismissNotice clears the visible notice and returns an ErrorShown
// machine to Idle.
func (m *Machine) DismissNotice() {
	m.notice = ""
	if m.state == StateErrorShown {
		m.state = StateIdle
	}
}

// ResetForSession replaces the conversation wholesale with a freshly
// fetched history and clears all transient state. Used on session switch
// and after a rebuild refetch.
func (m *Machine) ResetForSession(messages []api.Message) {
	m.messages = append([]api.Message(nil), messages...)
	m.accumulator.Reset()
	m.status = ""
	m.contextStatus = nil
	m.notice = ""
	m.state = StateIdle
}
