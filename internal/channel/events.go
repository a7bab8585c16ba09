// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package channel

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jeranaias/doctalk-tui/internal/api"
)

// =============================================================================
// EVENT TYPES
// =============================================================================

// Server-to-client event discriminators.
const (
	EventChunk           = "chunk"
	EventContextStatus   = "context_status"
	EventStatus          = "status"
	EventComplete        = "complete"
	EventError           = "error"
	EventMessageReceived = "message_received"
)

// Event is one decoded server-to-client envelope.
//
// Content is meaningful for chunk, status, complete, and error events. A
// status event with empty content clears the transient status line.
// Status is set only for context_status events.
type Event struct {
	Type      string
	Content   string
	Status    *api.ContextStatus
	MessageID string // message_received acks echo the client message id
}

// envelope is the raw wire shape. Content is a RawMessage because the
// backend sends JSON null for "clear status".
type envelope struct {
	Type      string             `json:"type"`
	Content   json.RawMessage    `json:"content"`
	Status    *api.ContextStatus `json:"status"`
	MessageID string             `json:"message_id"`
}

// decodeEvent parses one inbound frame. Unknown types decode successfully;
// the Conn logs and drops them so new server event types never break older
// clients.
func decodeEvent(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Event{}, fmt.Errorf("malformed server event: %w", err)
	}
	if env.Type == "" {
		return Event{}, fmt.Errorf("server event missing type")
	}

	ev := Event{
		Type:      env.Type,
		Status:    env.Status,
		MessageID: env.MessageID,
	}

	if len(env.Content) > 0 && string(env.Content) != "null" {
		if err := json.Unmarshal(env.Content, &ev.Content); err != nil {
			return Event{}, fmt.Errorf("malformed event content: %w", err)
		}
	}
	return ev, nil
}

// known reports whether the event type is part of the protocol this client
// understands.
func known(eventType string) bool {
	switch eventType {
	case EventChunk, EventContextStatus, EventStatus, EventComplete, EventError, EventMessageReceived:
		return true
	}
	return false
}

// =============================================================================
// CLIENT ENVELOPE
// =============================================================================

// OutboundMessage is the client-to-server envelope for a user message.
type OutboundMessage struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Content string `json:"content"`
}

// NewOutboundMessage wraps user text in a message envelope with a fresh
// unique id.
func NewOutboundMessage(content string) OutboundMessage {
	return OutboundMessage{
		Type:    "message",
		ID:      uuid.NewString(),
		Content: content,
	}
}
