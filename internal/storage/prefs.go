// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
	"strconv"

	"github.com/jeranaias/chatbox/internal/logger"
)

// DarkModeKey holds the persisted theme toggle.
const DarkModeKey = "darkMode"

// DarkMode returns the persisted theme toggle. ok is false when the user
// has never toggled the theme or the stored value is unreadable.
func (s *ThreadStore) DarkMode() (dark bool, ok bool, err error) {
	raw, found, err := s.kv.Get(DarkModeKey)
	if err != nil {
		return false, false, fmt.Errorf("failed to load theme preference: %w", err)
	}
	if !found {
		return false, false, nil
	}
	dark, perr := strconv.ParseBool(raw)
	if perr != nil {
		logger.Component("storage").Warn("ignoring malformed theme preference", "key", DarkModeKey, "value", raw)
		return false, false, nil
	}
	return dark, true, nil
}

// SetDarkMode persists the theme toggle as "true" or "false".
func (s *ThreadStore) SetDarkMode(dark bool) error {
	if err := s.kv.Set(DarkModeKey, strconv.FormatBool(dark)); err != nil {
		return fmt.Errorf("failed to save theme preference: %w", err)
	}
	return nil
}
