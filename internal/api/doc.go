// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the REST client for the doc2talk backend.
//
// The backend exposes session lifecycle under /api: listing, creation,
// deletion, message history, per-session settings, and index rebuilds.
// Streaming answers travel over a separate WebSocket channel (see the
// channel package); this package covers only the request/response side.
//
// Error taxonomy:
//   - ErrSessionNotFound: a 404 on any {id}-scoped call. Callers treat this
//     as "session deleted remotely", never as a generic failure.
//   - ErrNoSources: local validation failure on session creation. The
//     backend is never contacted.
//   - APIError: any other non-2xx response, carrying the backend's detail
//     string when one was provided.
package api
