// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

// =============================================================================
// WIRE TYPES
// =============================================================================

// Session describes one backend chat session. MessageCount is informational
// and comes from the backend as-is; the client never recomputes it.
type Session struct {
	ID           string `json:"session_id"`
	MessageCount int    `json:"message_count"`
	Created      string `json:"created"`
}

// Message roles used by the backend.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in a session's conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Settings is a session's LLM configuration document. It is fetched and
// replaced wholesale; the client performs no partial updates.
type Settings struct {
	DecisionModel   string   `json:"decision_model"`
	GenerationModel string   `json:"generation_model"`
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxTokens       *int     `json:"max_tokens,omitempty"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty"`
}

// Validate checks the required settings fields. Both models must be
// non-empty before the document may be committed to the backend.
func (s *Settings) Validate() error {
	if s.DecisionModel == "" {
		return ErrMissingDecisionModel
	}
	if s.GenerationModel == "" {
		return ErrMissingGenerationModel
	}
	return nil
}

// ContextStatus annotates the most recent assistant answer with retrieval
// metadata. Action is one of "new", "additional", or "none".
type ContextStatus struct {
	ContextCount int    `json:"context_count"`
	TokenCount   int    `json:"token_count"`
	Action       string `json:"action"`
}

// CreateSessionRequest is the body for POST /api/sessions. At least one of
// CodeSource or DocsSource must be set; the client enforces this locally.
type CreateSessionRequest struct {
	CodeSource      string   `json:"code_source,omitempty"`
	DocsSource      string   `json:"docs_source,omitempty"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty"`
}

// sessionDetailResponse is the body of GET /api/sessions/{id}.
type sessionDetailResponse struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}

// errorResponse is the backend's error body shape.
type errorResponse struct {
	Detail string `json:"detail"`
}
