// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main Bubble Tea model for the doctalk TUI.
//
// The model composes the conversation machine, the session controller, and
// the overlay components (command palette, settings editor, session
// creation form) into one update loop. All backend I/O runs in tea.Cmd
// closures; results come back as typed messages and are folded into state
// on the update goroutine, so no mutex guards any of it.
//
// WebSocket events are tagged with the connection's generation number.
// The update loop drops events whose generation does not match the active
// connection, which keeps a closed session's late events from bleeding
// into a newly selected one.
package chat
