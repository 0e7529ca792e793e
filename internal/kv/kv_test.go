// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns a fresh store of every kind.
func backends(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), SQLiteFileName))
	require.NoError(t, err)

	stores := map[string]Store{
		BackendFile:   fileStore,
		BackendSQLite: sqliteStore,
		BackendMemory: NewMemoryStore(),
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

// =============================================================================
// CONTRACT TESTS (ALL BACKENDS)
// =============================================================================

func TestStore_GetSetDelete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get("chat-list")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Set("chat-list", `["a"]`))
			v, ok, err := s.Get("chat-list")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `["a"]`, v)

			require.NoError(t, s.Set("chat-list", `["a","b"]`))
			v, _, err = s.Get("chat-list")
			require.NoError(t, err)
			assert.Equal(t, `["a","b"]`, v)

			require.NoError(t, s.Delete("chat-list"))
			_, ok, err = s.Get("chat-list")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Delete("chat-list"), "deleting an absent key is fine")
		})
	}
}

func TestStore_EmptyValue(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set("darkMode", ""))
			v, ok, err := s.Get("darkMode")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "", v)
		})
	}
}

func TestStore_KeysByPrefix(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set("chat-b", "[]"))
			require.NoError(t, s.Set("chat-a", "[]"))
			require.NoError(t, s.Set("chat-list", "[]"))
			require.NoError(t, s.Set("darkMode", "true"))
			require.NoError(t, s.Set("CHAT-upper", "[]"))

			keys, err := s.Keys("chat-")
			require.NoError(t, err)
			assert.Equal(t, []string{"chat-a", "chat-b", "chat-list"}, keys)

			all, err := s.Keys("")
			require.NoError(t, err)
			assert.Len(t, all, 5)
		})
	}
}

func TestStore_InvalidKeys(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "a/b", `a\b`, "..", "."} {
				err := s.Set(key, "x")
				assert.True(t, errors.Is(err, ErrInvalidKey), "key %q: %v", key, err)

				_, _, err = s.Get(key)
				assert.True(t, errors.Is(err, ErrInvalidKey), "key %q", key)
			}
		})
	}
}

func TestSQLiteKeys_LiteralPrefix(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), SQLiteFileName))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("chat_1", "x"))
	require.NoError(t, s.Set("chatX1", "x"))

	keys, err := s.Keys("chat_")
	require.NoError(t, err)
	assert.Equal(t, []string{"chat_1"}, keys)
}

// =============================================================================
// PERSISTENCE TESTS
// =============================================================================

func TestFileStore_Layout(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set("chat-abc", `[]`))

	data, err := os.ReadFile(filepath.Join(dir, "chat-abc.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	// stray files are not keys
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tmp-123"), []byte("x"), 0600))
	keys, err := s.Keys("")
	require.NoError(t, err)
	assert.Equal(t, []string{"chat-abc"}, keys)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	for _, backend := range []string{BackendFile, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			s, err := Open(backend, filepath.Join(dir, backend))
			require.NoError(t, err)
			require.NoError(t, s.Set("chat-list", `["x"]`))
			require.NoError(t, s.Close())

			s, err = Open(backend, filepath.Join(dir, backend))
			require.NoError(t, err)
			defer s.Close()

			v, ok, err := s.Get("chat-list")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `["x"]`, v)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("redis", t.TempDir())
	assert.True(t, errors.Is(err, ErrUnknownBackend))
}

func TestClosedStore(t *testing.T) {
	m := NewMemoryStore()
	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Set("a", "b"), ErrClosed)

	f, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, f.Close())
	_, _, err = f.Get("a")
	assert.ErrorIs(t, err, ErrClosed)
}

// =============================================================================
// WATCH TESTS
// =============================================================================

func TestFileStore_WatchReportsExternalWrites(t *testing.T) {
	dir := t.TempDir()

	ours, err := NewFileStore(dir)
	require.NoError(t, err)
	theirs, err := NewFileStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := ours.Watch(ctx)
	require.NoError(t, err)

	// our own write is not reported
	require.NoError(t, ours.Set("chat-mine", "[]"))
	// another instance's write is
	require.NoError(t, theirs.Set("chat-list", `["x"]`))

	select {
	case key := <-changes:
		assert.Equal(t, "chat-list", key)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	for range changes {
		// drain until closed
	}
}

func TestFileStore_WatchReportsExternalWriteAfterOwnWrite(t *testing.T) {
	dir := t.TempDir()

	ours, err := NewFileStore(dir)
	require.NoError(t, err)
	theirs, err := NewFileStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := ours.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, ours.Set("chat-list", `["a"]`))
	time.Sleep(3 * WatchDebounce)
	require.NoError(t, theirs.Set("chat-list", `["a","b"]`))

	select {
	case key := <-changes:
		assert.Equal(t, "chat-list", key)
	case <-time.After(5 * time.Second):
		t.Fatal("external change to a key we wrote was not reported")
	}

	// the store now agrees with disk again; our next write stays quiet
	require.NoError(t, ours.Set("chat-list", `["a","b","c"]`))
	select {
	case key := <-changes:
		t.Fatalf("own write reported as %s", key)
	case <-time.After(4 * WatchDebounce):
	}

	cancel()
	for range changes {
		// drain until closed
	}
}

func TestFileStore_IsOwnWrite(t *testing.T) {
	dir := t.TempDir()
	ours, err := NewFileStore(dir)
	require.NoError(t, err)
	theirs, err := NewFileStore(dir)
	require.NoError(t, err)

	assert.False(t, ours.isOwnWrite("k"), "never written")

	require.NoError(t, ours.Set("k", "1"))
	assert.True(t, ours.isOwnWrite("k"))
	assert.True(t, ours.isOwnWrite("k"), "mark survives repeated events for the same write")

	require.NoError(t, theirs.Set("k", "2"))
	assert.False(t, ours.isOwnWrite("k"))

	// the mark was dropped, so even restoring our old content counts as external
	require.NoError(t, theirs.Set("k", "1"))
	assert.False(t, ours.isOwnWrite("k"))

	require.NoError(t, ours.Delete("k"))
	assert.True(t, ours.isOwnWrite("k"))
}
