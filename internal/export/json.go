// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter renders a transcript as indented JSON for downstream
// tooling. Message objects keep the backend's wire field names.
type JSONExporter struct{}

type jsonDocument struct {
	SessionID string        `json:"session_id"`
	Created   string        `json:"created,omitempty"`
	Messages  []jsonMessage `json:"messages"`
}

type jsonMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Export renders the transcript.
func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	doc := jsonDocument{
		SessionID: t.SessionID,
		Created:   t.Created,
		Messages:  make([]jsonMessage, 0, len(t.Messages)),
	}
	for _, msg := range t.Messages {
		doc.Messages = append(doc.Messages, jsonMessage{Role: msg.Role, Content: msg.Content})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns ".json".
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
