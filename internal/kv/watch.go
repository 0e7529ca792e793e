// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kv

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jeranaias/chatbox/internal/logger"
)

// WatchDebounce is how long a key must be quiet before its change is
// reported. An atomic write produces several events for one key.
var WatchDebounce = 150 * time.Millisecond

// Watch reports keys changed in the data directory by other processes.
func (s *FileStore) Watch(ctx context.Context) (<-chan string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	out := make(chan string, 16)
	go s.watchLoop(ctx, w, out)
	return out, nil
}

func (s *FileStore) watchLoop(ctx context.Context, w *fsnotify.Watcher, out chan<- string) {
	log := logger.Component("kv")
	defer close(out)
	defer w.Close()

	ticker := time.NewTicker(WatchDebounce / 3)
	defer ticker.Stop()

	// key -> last event time
	pending := make(map[string]time.Time)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			key, ok := keyFromFileName(filepath.Base(event.Name))
			if !ok {
				continue
			}
			pending[key] = time.Now()

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warn("watcher error", "dir", s.dir, "error", err)

		case <-ticker.C:
			now := time.Now()
			for key, at := range pending {
				if now.Sub(at) < WatchDebounce {
					continue
				}
				delete(pending, key)
				if s.isOwnWrite(key) {
					continue
				}
				select {
				case out <- key:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}
