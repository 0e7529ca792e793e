// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across chatbox.
//
// # Key Functions
//
// String Utilities:
//   - TruncateWidth: display-width aware truncation with ellipsis
//   - PadRight: pad a string to a display width
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//   - ExpandHome: resolve a leading "~/" against the user's home directory
//
// # Usage
//
//	label := util.TruncateWidth(title, 20)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
