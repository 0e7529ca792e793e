// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatbox.
//
// Configuration is stored as TOML with sensible defaults, environment
// variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - CloudConfig: Completion provider endpoint, model and key
//   - StorageConfig: Persistence backend and history cap
//   - UIConfig: Theme and layout preferences
//   - LogConfig: Log file location and level
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CHATBOX_*, OPENAI_API_KEY)
//   - ~/.chatbox/config.toml (or the path given with --config)
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	dir, _ := cfg.DataDir()
package config
