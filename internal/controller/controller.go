// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller owns session lifecycle state.
//
// The controller holds the known session set, the current session id, and
// the rebuild status banner. All of its mutating methods run on the Bubble
// Tea update loop; backend calls are wrapped in tea.Cmds whose results come
// back as messages and are applied through the Apply* methods. The current
// session id is mirrored into the durable store on every change so the
// session survives restarts.
package controller

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/store"
)

// Rebuild status banner display times.
const (
	// StatusSuccessDuration is how long a successful rebuild banner stays.
	StatusSuccessDuration = 3 * time.Second

	// StatusErrorDuration is how long a failed rebuild banner stays.
	StatusErrorDuration = 5 * time.Second
)

// =============================================================================
// RESULT MESSAGES
// =============================================================================

// SessionsLoadedMsg delivers the refreshed session list.
type SessionsLoadedMsg struct {
	Sessions []api.Session
	Err      error
}

// SessionCreatedMsg delivers the result of a create call.
type SessionCreatedMsg struct {
	Session *api.Session
	Err     error
}

// MessagesLoadedMsg delivers a session's fetched history.
type MessagesLoadedMsg struct {
	SessionID string
	Messages  []api.Message
	Err       error
}

// SettingsLoadedMsg delivers a session's fetched settings.
type SettingsLoadedMsg struct {
	SessionID string
	Settings  *api.Settings
	Err       error
}

// SettingsSavedMsg delivers the result of a settings commit.
type SettingsSavedMsg struct {
	SessionID string
	Settings  *api.Settings
	Err       error
}

// SessionDeletedMsg delivers the result of a delete call.
type SessionDeletedMsg struct {
	SessionID string
	Err       error
}

// RebuildFinishedMsg delivers the result of a rebuild call. Seq ties the
// result to the rebuild that started it.
type RebuildFinishedMsg struct {
	SessionID string
	Seq       int
	Err       error
}

// RebuildStatusClearMsg fires when a rebuild banner's display time is up.
// A stale Seq (an older rebuild's timer) is ignored, so a new rebuild is
// never blanked by its predecessor's timer.
type RebuildStatusClearMsg struct {
	Seq int
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the session set and the current-session pointer.
type Controller struct {
	client *api.Client
	state  store.Store
	log    *zap.Logger

	sessions  []api.Session
	currentID string
	settings  *api.Settings

	rebuilding    bool
	rebuildSeq    int
	status        string
	statusIsError bool
}

// New creates a controller. state persists the current session id.
func New(client *api.Client, state store.Store, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{client: client, state: state, log: log}
}

// Sessions returns the known session list.
func (c *Controller) Sessions() []api.Session {
	return c.sessions
}

// CurrentID returns the current session id, or "" when none is selected.
func (c *Controller) CurrentID() string {
	return c.currentID
}

// Settings returns the current session's settings, or nil if not loaded.
func (c *Controller) Settings() *api.Settings {
	return c.settings
}

// Rebuilding reports whether an index rebuild is in flight. Message
// submission is disabled while true.
func (c *Controller) Rebuilding() bool {
	return c.rebuilding
}

// RebuildStatus returns the banner text and whether it is an error.
func (c *Controller) RebuildStatus() (string, bool) {
	return c.status, c.statusIsError
}

// =============================================================================
// STARTUP RESTORE
// =============================================================================

// RestoreCurrent loads the persisted session id, if any, and adopts it as
// current. The id is not yet verified; the subsequent message fetch does
// that, and a not-found result clears it again via ApplyMessages.
func (c *Controller) RestoreCurrent() string {
	id, ok, err := c.state.Get(store.CurrentSessionKey)
	if err != nil {
		c.log.Warn("failed to read persisted session", zap.Error(err))
		return ""
	}
	if !ok || id == "" {
		return ""
	}
	c.currentID = id
	c.log.Info("restored session", zap.String("session", id))
	return id
}

// =============================================================================
// COMMANDS (backend calls)
// =============================================================================

// FetchSessionsCmd lists sessions from the backend.
func (c *Controller) FetchSessionsCmd() tea.Cmd {
	client := c.client
	return func() tea.Msg {
		sessions, err := client.ListSessions(context.Background())
		return SessionsLoadedMsg{Sessions: sessions, Err: err}
	}
}

// CreateSessionCmd creates a session. Source validation is local and
// happens inside the API client before any request is made.
func (c *Controller) CreateSessionCmd(codeSource, docsSource string, excludePatterns []string) tea.Cmd {
	client := c.client
	return func() tea.Msg {
		session, err := client.CreateSession(context.Background(), codeSource, docsSource, excludePatterns)
		return SessionCreatedMsg{Session: session, Err: err}
	}
}

// FetchMessagesCmd fetches a session's history.
func (c *Controller) FetchMessagesCmd(sessionID string) tea.Cmd {
	client := c.client
	return func() tea.Msg {
		messages, err := client.GetMessages(context.Background(), sessionID)
		return MessagesLoadedMsg{SessionID: sessionID, Messages: messages, Err: err}
	}
}

// FetchSettingsCmd fetches a session's settings.
func (c *Controller) FetchSettingsCmd(sessionID string) tea.Cmd {
	client := c.client
	return func() tea.Msg {
		settings, err := client.GetSettings(context.Background(), sessionID)
		return SettingsLoadedMsg{SessionID: sessionID, Settings: settings, Err: err}
	}
}

// SaveSettingsCmd commits a settings document wholesale.
func (c *Controller) SaveSettingsCmd(sessionID string, settings *api.Settings) tea.Cmd {
	client := c.client
	return func() tea.Msg {
		err := client.UpdateSettings(context.Background(), sessionID, settings)
		return SettingsSavedMsg{SessionID: sessionID, Settings: settings, Err: err}
	}
}

// DeleteSessionCmd deletes a session server-side.
func (c *Controller) DeleteSessionCmd(sessionID string) tea.Cmd {
	client := c.client
	return func() tea.Msg {
		err := client.DeleteSession(context.Background(), sessionID)
		return SessionDeletedMsg{SessionID: sessionID, Err: err}
	}
}

// =============================================================================
// SELECTION
// =============================================================================

// Select makes id the current session, persists it, and returns the fetch
// commands for its history and settings. The caller retargets the
// streaming channel when it observes the selection change.
func (c *Controller) Select(id string) tea.Cmd {
	c.currentID = id
	c.settings = nil
	if err := c.state.Set(store.CurrentSessionKey, id); err != nil {
		c.log.Warn("failed to persist session id", zap.Error(err))
	}
	c.log.Info("selected session", zap.String("session", id))

	return tea.Batch(c.FetchMessagesCmd(id), c.FetchSettingsCmd(id))
}

// ClearCurrent drops the current-session pointer, including its durable
// copy. Used when the session is deleted locally or found missing remotely.
func (c *Controller) ClearCurrent() {
	if c.currentID != "" {
		c.log.Info("clearing current session", zap.String("session", c.currentID))
	}
	c.currentID = ""
	c.settings = nil
	if err := c.state.Clear(store.CurrentSessionKey); err != nil {
		c.log.Warn("failed to clear persisted session id", zap.Error(err))
	}
}

// =============================================================================
// RESULT APPLICATION
// =============================================================================

// ApplySessions folds a list result in. A failed fetch keeps the prior
// in-memory list untouched.
func (c *Controller) ApplySessions(msg SessionsLoadedMsg) {
	if msg.Err != nil {
		c.log.Warn("session list fetch failed", zap.Error(msg.Err))
		return
	}
	c.sessions = msg.Sessions
}

// ApplyCreated folds a create result in. On success the new session joins
// the known set and becomes current; the returned command fetches its
// (empty) history and settings.
func (c *Controller) ApplyCreated(msg SessionCreatedMsg) tea.Cmd {
	if msg.Err != nil || msg.Session == nil {
		return nil
	}
	c.sessions = append(c.sessions, *msg.Session)
	return c.Select(msg.Session.ID)
}

// ApplyMessages decides what a history fetch result means for lifecycle
// state. It returns (cleared, notFound): cleared is true when the current
// session was dropped because the backend no longer knows it.
func (c *Controller) ApplyMessages(msg MessagesLoadedMsg) (cleared bool) {
	if msg.Err == nil {
		return false
	}
	if errors.Is(msg.Err, api.ErrSessionNotFound) && msg.SessionID == c.currentID {
		// Session deleted remotely. Clear rather than retry.
		c.ClearCurrent()
		c.removeSession(msg.SessionID)
		return true
	}
	return false
}

// ApplySettings folds a settings fetch in, ignoring stale results from a
// previously selected session. Returns true when the backend answered 404
// for the current session, which drops it like any other remote deletion.
func (c *Controller) ApplySettings(msg SettingsLoadedMsg) (cleared bool) {
	if msg.Err != nil {
		if errors.Is(msg.Err, api.ErrSessionNotFound) {
			return c.dropMissing(msg.SessionID)
		}
		c.log.Warn("settings fetch failed", zap.String("session", msg.SessionID), zap.Error(msg.Err))
		return false
	}
	if msg.SessionID == c.currentID {
		c.settings = msg.Settings
	}
	return false
}

// ApplySettingsSaved adopts the committed document on success. As with the
// fetch path, a 404 means the session was deleted remotely and true is
// returned when that clears the current selection.
func (c *Controller) ApplySettingsSaved(msg SettingsSavedMsg) (cleared bool) {
	if msg.Err != nil {
		if errors.Is(msg.Err, api.ErrSessionNotFound) {
			return c.dropMissing(msg.SessionID)
		}
		return false
	}
	if msg.SessionID == c.currentID {
		c.settings = msg.Settings
	}
	return false
}

// dropMissing removes a session the backend reported as unknown. Returns
// true when it was the current session.
func (c *Controller) dropMissing(id string) bool {
	c.removeSession(id)
	if id == c.currentID {
		c.ClearCurrent()
		return true
	}
	return false
}

// ApplyDeleted folds a delete result in. Returns true when the deleted
// session was current, meaning the caller must drop its channel and
// message list.
func (c *Controller) ApplyDeleted(msg SessionDeletedMsg) (wasCurrent bool) {
	if msg.Err != nil && !errors.Is(msg.Err, api.ErrSessionNotFound) {
		c.log.Warn("delete failed", zap.String("session", msg.SessionID), zap.Error(msg.Err))
		return false
	}
	// Already-gone sessions are removed locally all the same.
	c.removeSession(msg.SessionID)
	if msg.SessionID == c.currentID {
		c.ClearCurrent()
		return true
	}
	return false
}

func (c *Controller) removeSession(id string) {
	kept := c.sessions[:0]
	for _, s := range c.sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	c.sessions = kept
}

// =============================================================================
// REBUILD
// =============================================================================

// StartRebuild forces the session current (persisting the selection) and
// issues the rebuild request. While in flight the rebuilding flag disables
// message submission.
func (c *Controller) StartRebuild(id string) tea.Cmd {
	var selectCmd tea.Cmd
	if c.currentID != id {
		selectCmd = c.Select(id)
	}

	c.rebuilding = true
	c.rebuildSeq++
	seq := c.rebuildSeq
	c.status = "Rebuilding index..."
	c.statusIsError = false

	client := c.client
	rebuildCmd := func() tea.Msg {
		err := client.RebuildIndex(context.Background(), id)
		return RebuildFinishedMsg{SessionID: id, Seq: seq, Err: err}
	}

	if selectCmd != nil {
		return tea.Batch(selectCmd, rebuildCmd)
	}
	return rebuildCmd
}

// ApplyRebuildFinished folds a rebuild result in and returns the follow-up
// commands: the banner auto-clear timer and, on success, a history refetch.
// The boolean is true when a 404 cleared the current session.
func (c *Controller) ApplyRebuildFinished(msg RebuildFinishedMsg) (tea.Cmd, bool) {
	if msg.Seq != c.rebuildSeq {
		// A newer rebuild superseded this one.
		return nil, false
	}
	c.rebuilding = false

	if msg.Err != nil && errors.Is(msg.Err, api.ErrSessionNotFound) {
		// The session vanished mid-rebuild. Same handling as a 404 on
		// any other session-scoped call: drop it, no error banner.
		c.status = ""
		c.statusIsError = false
		c.log.Info("rebuild target deleted remotely", zap.String("session", msg.SessionID))
		return nil, c.dropMissing(msg.SessionID)
	}

	var cmds []tea.Cmd
	if msg.Err != nil {
		c.status = "Error: rebuild failed: " + msg.Err.Error()
		c.statusIsError = true
		cmds = append(cmds, c.statusClearCmd(msg.Seq, StatusErrorDuration))
		c.log.Warn("rebuild failed", zap.String("session", msg.SessionID), zap.Error(msg.Err))
	} else {
		c.status = "Index rebuilt"
		c.statusIsError = false
		cmds = append(cmds, c.statusClearCmd(msg.Seq, StatusSuccessDuration))
		cmds = append(cmds, c.FetchMessagesCmd(msg.SessionID))
		c.log.Info("rebuild complete", zap.String("session", msg.SessionID))
	}
	return tea.Batch(cmds...), false
}

// ApplyStatusClear blanks the rebuild banner if the timer belongs to the
// most recent rebuild.
func (c *Controller) ApplyStatusClear(msg RebuildStatusClearMsg) {
	if msg.Seq != c.rebuildSeq {
		return
	}
	c.status = ""
	c.statusIsError = false
}

// statusClearCmd schedules the banner clear for one rebuild generation.
func (c *Controller) statusClearCmd(seq int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return RebuildStatusClearMsg{Seq: seq}
	})
}
