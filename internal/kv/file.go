// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kv

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jeranaias/chatbox/internal/util"
)

// fileSuffix is appended to every key to form its file name.
const fileSuffix = ".json"

// FileStore keeps one file per key in a directory.
// RELIABILITY: writes go through util.AtomicWriteFile, so a crash leaves
// either the old or the new value on disk.
type FileStore struct {
	dir string

	mu     sync.RWMutex
	closed bool

	// own records what this store last wrote per key so Watch can skip
	// events whose file still holds exactly that
	ownMu sync.Mutex
	own   map[string]writeMark
}

// writeMark is the state of a key's file after one of our writes.
type writeMark struct {
	exists bool
	sum    [sha256.Size]byte
}

// NewFileStore opens (creating if needed) a file store in dir.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store directory is empty")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{
		dir: dir,
		own: make(map[string]writeMark),
	}, nil
}

// Dir returns the directory holding the store's files.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+fileSuffix)
}

func (s *FileStore) Get(key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), true, nil
}

func (s *FileStore) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.markOwnWrite(key, writeMark{exists: true, sum: sha256.Sum256([]byte(value))})
	if err := util.AtomicWriteFile(s.path(key), []byte(value), 0600); err != nil {
		s.clearOwnWrite(key)
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	s.markOwnWrite(key, writeMark{exists: false})
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.clearOwnWrite(key)
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Keys(prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list data directory: %w", err)
	}

	var keys []string
	for _, e := range entries {
		key, ok := keyFromFileName(e.Name())
		if !ok || e.IsDir() {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// keyFromFileName maps a directory entry back to its key.
func keyFromFileName(name string) (string, bool) {
	if util.IsTempFile(name) || !strings.HasSuffix(name, fileSuffix) {
		return "", false
	}
	key := strings.TrimSuffix(name, fileSuffix)
	return key, key != ""
}

func (s *FileStore) markOwnWrite(key string, mark writeMark) {
	s.ownMu.Lock()
	s.own[key] = mark
	s.ownMu.Unlock()
}

func (s *FileStore) clearOwnWrite(key string) {
	s.ownMu.Lock()
	delete(s.own, key)
	s.ownMu.Unlock()
}

// isOwnWrite reports whether key's file still holds what this store last
// wrote. Once the file differs the mark is dropped, so every later change
// by another process is reported.
func (s *FileStore) isOwnWrite(key string) bool {
	s.ownMu.Lock()
	mark, ok := s.own[key]
	s.ownMu.Unlock()
	if !ok {
		return false
	}

	current := writeMark{}
	data, err := os.ReadFile(s.path(key))
	switch {
	case err == nil:
		current = writeMark{exists: true, sum: sha256.Sum256(data)}
	case !errors.Is(err, os.ErrNotExist):
		return false
	}
	if current == mark {
		return true
	}

	s.ownMu.Lock()
	if s.own[key] == mark {
		delete(s.own, key)
	}
	s.ownMu.Unlock()
	return false
}
