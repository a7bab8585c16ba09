// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Configuration constants for the backend API.
const (
	// DefaultTimeout is the default timeout for API requests. Rebuilds can
	// run long on large corpora, so this is deliberately generous.
	DefaultTimeout = 120 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

// Error variables for common backend errors.
var (
	// ErrSessionNotFound indicates an {id}-scoped call returned 404. The
	// session no longer exists server-side.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoSources indicates session creation was attempted without a code
	// source or a docs source. Raised locally, before any request.
	ErrNoSources = errors.New("at least one of code source or docs source is required")

	// ErrMissingDecisionModel indicates settings lack a decision model.
	ErrMissingDecisionModel = errors.New("decision_model must not be empty")

	// ErrMissingGenerationModel indicates settings lack a generation model.
	ErrMissingGenerationModel = errors.New("generation_model must not be empty")
)

// APIError represents a non-2xx response from the backend.
type APIError struct {
	Status int
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a client for the doc2talk backend REST surface.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a client for the backend rooted at baseURL, e.g.
// "http://127.0.0.1:8000". The "/api" prefix is appended per request.
func NewClient(baseURL string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		log: log,
	}
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// ListSessions fetches all known sessions, newest ordering as returned by
// the backend.
func (c *Client) ListSessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	if err := c.do(ctx, http.MethodGet, "/api/sessions", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CreateSession creates a new session from the given sources. At least one
// of codeSource or docsSource must be non-empty; otherwise ErrNoSources is
// returned without contacting the backend.
func (c *Client) CreateSession(ctx context.Context, codeSource, docsSource string, excludePatterns []string) (*Session, error) {
	if strings.TrimSpace(codeSource) == "" && strings.TrimSpace(docsSource) == "" {
		return nil, ErrNoSources
	}

	req := CreateSessionRequest{
		CodeSource:      strings.TrimSpace(codeSource),
		DocsSource:      strings.TrimSpace(docsSource),
		ExcludePatterns: excludePatterns,
	}

	var session Session
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetMessages fetches the full message history for a session. A deleted
// session yields ErrSessionNotFound.
func (c *Client) GetMessages(ctx context.Context, sessionID string) ([]Message, error) {
	var detail sessionDetailResponse
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+sessionID, nil, &detail); err != nil {
		return nil, err
	}
	return detail.Messages, nil
}

// DeleteSession removes a session server-side.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions/"+sessionID, nil, nil)
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings fetches a session's settings document.
func (c *Client) GetSettings(ctx context.Context, sessionID string) (*Settings, error) {
	var settings Settings
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+sessionID+"/settings", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateSettings replaces a session's settings document wholesale.
func (c *Client) UpdateSettings(ctx context.Context, sessionID string, settings *Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPut, "/api/sessions/"+sessionID+"/settings", settings, nil)
}

// =============================================================================
// INDEX REBUILD
// =============================================================================

// RebuildIndex regenerates the knowledge graph index for a session. This is
// a long-running call; the caller's context bounds it.
func (c *Client) RebuildIndex(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/api/sessions/"+sessionID+"/rebuild", nil, nil)
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// do performs one request against the backend. A non-nil body is sent as
// JSON; a non-nil out receives the decoded success body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug("request complete",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	payload, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.handleErrorResponse(resp.StatusCode, payload)
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	payload, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(payload)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return payload, nil
}

// handleErrorResponse converts non-2xx responses to typed errors. A 404 is
// always the "session gone" signal, for every {id}-scoped endpoint.
func (c *Client) handleErrorResponse(statusCode int, payload []byte) error {
	detail := ""
	var errResp errorResponse
	if err := json.Unmarshal(payload, &errResp); err == nil {
		detail = errResp.Detail
	}

	if statusCode == http.StatusNotFound {
		if detail != "" {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, detail)
		}
		return ErrSessionNotFound
	}

	return &APIError{Status: statusCode, Detail: detail}
}
