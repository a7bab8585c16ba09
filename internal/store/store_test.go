// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get(CurrentSessionKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(CurrentSessionKey, "abc123"))

	v, ok, err := s.Get(CurrentSessionKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc123", v)

	// Overwrite
	require.NoError(t, s.Set(CurrentSessionKey, "def456"))
	v, _, err = s.Get(CurrentSessionKey)
	require.NoError(t, err)
	assert.Equal(t, "def456", v)

	// Clear twice: second clear is a no-op, not an error.
	require.NoError(t, s.Clear(CurrentSessionKey))
	require.NoError(t, s.Clear(CurrentSessionKey))
	_, ok, err = s.Get(CurrentSessionKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(CurrentSessionKey, "abc123"))
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	v, ok, err := s2.Get(CurrentSessionKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc123", v)
}

func TestMemoryStore(t *testing.T) {
	var s Store = NewMemoryStore()

	require.NoError(t, s.Set("k", "v"))
	v, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, s.Clear("k"))
	_, ok, _ = s.Get("k")
	assert.False(t, ok)
}
