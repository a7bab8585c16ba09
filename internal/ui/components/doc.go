// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the doctalk TUI: the
// command palette, the settings editor, the session creation form, and
// the markdown renderer boundary.
package components
