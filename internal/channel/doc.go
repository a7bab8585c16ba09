// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package channel implements the per-session duplex connection to the
// doc2talk backend.
//
// Exactly one Conn exists per current session; switching sessions closes
// the old Conn and dials a new one. Every event a Conn delivers carries
// that Conn's generation number, so events from a just-closed connection
// can be recognized and discarded instead of leaking into the session that
// replaced it.
package channel
