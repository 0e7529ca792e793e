// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package kv provides the string key-value persistence layer under the
// thread store.
//
// Values are opaque strings (the thread store writes JSON text). Three
// backends exist:
//   - FileStore: one file per key, crash-safe writes, change watching
//   - SQLiteStore: a single table in a pure-Go SQLite database
//   - MemoryStore: map-backed, for tests and ephemeral sessions
//
// No locking happens across processes; the last write wins.
package kv

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidKey is returned for empty keys or keys containing path separators.
	ErrInvalidKey = errors.New("invalid key")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store is closed")

	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// =============================================================================
// INTERFACES
// =============================================================================

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Keys returns all keys starting with prefix, sorted.
	Keys(prefix string) ([]string, error)

	// Close releases the store's resources.
	Close() error
}

// Watcher is implemented by stores that can report changes made by other
// processes sharing the same data.
type Watcher interface {
	// Watch emits the key of every externally changed entry until ctx is
	// done, then closes the channel.
	Watch(ctx context.Context) (<-chan string, error)
}

// ValidateKey reports whether key may be stored.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, filepath.Separator) {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidKey, key)
	}
	if key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// =============================================================================
// FACTORY
// =============================================================================

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// SQLiteFileName is the database file created inside the data directory.
const SQLiteFileName = "chatbox.db"

// Open creates the store for backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch strings.ToLower(backend) {
	case BackendFile:
		return NewFileStore(dir)
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(dir, SQLiteFileName))
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
