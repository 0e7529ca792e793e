// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logger writes chatbox diagnostics to a log file.
//
// The terminal belongs to the TUI, so nothing is ever logged to stdout or
// stderr. Until Init succeeds all output is discarded.
//
// Example:
//
//	log := logger.Component("cloud")
//	log.Error("completion failed", "thread", id, "error", err)
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu       sync.Mutex
	levelVar = new(slog.LevelVar)
	logFile  *os.File
	sink     = &switchWriter{w: io.Discard}
	base     = slog.New(slog.NewTextHandler(sink, &slog.HandlerOptions{Level: levelVar}))
)

// switchWriter is the single sink behind every handler. Swapping its target
// redirects loggers that were handed out before Init or Close.
type switchWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// swap installs w. No write to the old target is in flight once it returns.
func (s *switchWriter) swap(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

// ParseLevel converts a config level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// Init opens path for appending and routes all loggers to it at the given
// level. Calling Init again switches to the new file.
func Init(path, level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	mu.Lock()
	defer mu.Unlock()

	sink.swap(f)
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	levelVar.Set(lvl)

	base.Info("Logger initialized", "path", path, "level", lvl.String())
	return nil
}

// SetLevel changes the minimum level of every logger handed out so far.
func SetLevel(level slog.Level) {
	levelVar.Set(level)
}

// Get returns the process logger.
func Get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return base
}

// Component returns a logger with the component attribute pre-attached.
//
// Every logger shares one sink, so a component logger cached before Init
// still follows later Init and Close calls.
func Component(name string) *slog.Logger {
	return Get().With(slog.String("component", name))
}

// WithThread returns a component logger tagged with a thread id.
func WithThread(component, threadID string) *slog.Logger {
	return Component(component).With(slog.String("thread", threadID))
}

// Close closes the log file and reverts to discarding output. Loggers
// obtained earlier stay usable and write to the next file Init opens.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	sink.swap(io.Discard)
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
