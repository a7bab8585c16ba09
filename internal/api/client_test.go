// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSessions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/sessions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"session_id": "abc123", "message_count": 4, "created": "2025-06-01T12:00:00"},
			{"session_id": "def456", "message_count": 0, "created": "2025-06-02T08:30:00"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	sessions, err := client.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "abc123", sessions[0].ID)
	assert.Equal(t, 4, sessions[0].MessageCount)
	assert.Equal(t, "def456", sessions[1].ID)
}

func TestCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/sessions", r.URL.Path)

		var req CreateSessionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "./src", req.CodeSource)
		assert.Equal(t, "./docs", req.DocsSource)
		assert.Equal(t, []string{"*.test.js"}, req.ExcludePatterns)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"session_id": "new789", "message_count": 0, "created": "now"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	session, err := client.CreateSession(context.Background(), "./src", "./docs", []string{"*.test.js"})
	require.NoError(t, err)
	assert.Equal(t, "new789", session.ID)
	assert.Equal(t, 0, session.MessageCount)
}

func TestCreateSessionNoSourcesFailsLocally(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)

	_, err := client.CreateSession(context.Background(), "", "", nil)
	assert.ErrorIs(t, err, ErrNoSources)

	// Whitespace-only sources are empty too.
	_, err = client.CreateSession(context.Background(), "   ", "\t", nil)
	assert.ErrorIs(t, err, ErrNoSources)

	assert.False(t, called, "backend must not be contacted on local validation failure")
}

func TestGetMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/sessions/abc123", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"session_id": "abc123", "messages": [
			{"role": "user", "content": "How does the crawler work?"},
			{"role": "assistant", "content": "The crawler indexes files."}
		]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	messages, err := client.GetMessages(context.Background(), "abc123")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, RoleUser, messages[0].Role)
	assert.Equal(t, RoleAssistant, messages[1].Role)
}

func TestGetMessagesNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Session not found: no such file"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.GetMessages(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDeleteSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/sessions/abc123", r.URL.Path)
		w.Write([]byte(`{"success": true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	assert.NoError(t, client.DeleteSession(context.Background(), "abc123"))
}

func TestSettingsRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/sessions/abc123/settings", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"decision_model": "gpt-4o", "generation_model": "gpt-4o-mini", "temperature": 0.7}`))
		case http.MethodPut:
			var s Settings
			require.NoError(t, json.NewDecoder(r.Body).Decode(&s))
			assert.Equal(t, "gpt-4o", s.DecisionModel)
			w.Write([]byte(`{"success": true}`))
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	settings, err := client.GetSettings(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", settings.DecisionModel)
	require.NotNil(t, settings.Temperature)
	assert.InDelta(t, 0.7, *settings.Temperature, 1e-9)

	require.NoError(t, client.UpdateSettings(context.Background(), "abc123", settings))
}

func TestUpdateSettingsValidation(t *testing.T) {
	client := NewClient("http://unused.invalid", nil)

	err := client.UpdateSettings(context.Background(), "abc", &Settings{
		DecisionModel:   "",
		GenerationModel: "x",
	})
	assert.ErrorIs(t, err, ErrMissingDecisionModel)

	err = client.UpdateSettings(context.Background(), "abc", &Settings{
		DecisionModel:   "a",
		GenerationModel: "",
	})
	assert.ErrorIs(t, err, ErrMissingGenerationModel)
}

func TestRebuildIndexError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/sessions/abc123/rebuild", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "Cannot rebuild index: No source information available."}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	err := client.RebuildIndex(context.Background(), "abc123")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Detail, "No source information")
}
