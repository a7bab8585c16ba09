// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat holds the streaming conversation state machine.
//
// The machine is pure state transformation: the UI feeds it decoded channel
// events and reads back the message list, the live streaming buffer, and
// the transient status. Nothing here touches the network or the terminal,
// which keeps every transition unit-testable.
package chat
