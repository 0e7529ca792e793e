// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jeranaias/chatbox/internal/cloud"
	"github.com/jeranaias/chatbox/internal/config"
	"github.com/jeranaias/chatbox/internal/exchange"
	"github.com/jeranaias/chatbox/internal/kv"
	"github.com/jeranaias/chatbox/internal/logger"
	"github.com/jeranaias/chatbox/internal/model"
	"github.com/jeranaias/chatbox/internal/session"
	"github.com/jeranaias/chatbox/internal/storage"
)

// env is everything a command needs, opened from the config.
type env struct {
	cfg     *config.Config
	kv      kv.Store
	threads *storage.ThreadStore
	client  *cloud.Client
	svc     *exchange.Service
}

// openEnv loads the config, starts logging and opens the storage backend.
func openEnv(opts *globalOptions) (*env, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if logPath, err := cfg.LogPath(); err == nil {
		if err := logger.Init(logPath, cfg.Log.Level); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
		}
	}
	if opts.debug {
		logger.SetLevel(slog.LevelDebug)
	}

	backend := cfg.Storage.Backend
	if opts.ephemeral {
		backend = kv.BackendMemory
	}
	dir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}
	store, err := kv.Open(backend, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", backend, err)
	}

	client := cloud.NewClientFromConfig(cfg.Cloud)
	threads := storage.NewThreadStore(store, cfg.Storage.MaxMessages)
	svc := exchange.NewService(threads, cloud.NewGateway(client), session.NewTracker())

	logger.Component("cli").Debug("environment ready",
		"backend", backend,
		"model", client.Model(),
		"key", client.KeyFingerprint(),
	)
	return &env{cfg: cfg, kv: store, threads: threads, client: client, svc: svc}, nil
}

// Close cancels pending requests and releases storage and the log file.
func (e *env) Close() error {
	e.svc.CancelAll()
	err := e.kv.Close()
	logger.Close()
	return err
}

// errAmbiguousThread is returned when an id prefix matches several threads.
var errAmbiguousThread = errors.New("ambiguous thread id")

// resolveThread maps a command-line thread argument to an indexed id. It
// accepts a 1-based "Chat N" number, a full id or a unique id prefix.
func (e *env) resolveThread(arg string) (model.ThreadID, error) {
	arg = strings.TrimSpace(arg)
	ids, err := e.threads.ListThreads()
	if err != nil {
		return "", err
	}

	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(ids) {
		return ids[n-1], nil
	}

	var matches []model.ThreadID
	for _, id := range ids {
		if string(id) == arg {
			return id, nil
		}
		if arg != "" && strings.HasPrefix(string(id), arg) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", storage.ErrThreadNotFound, arg)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %q matches %d threads", errAmbiguousThread, arg, len(matches))
	}
}
