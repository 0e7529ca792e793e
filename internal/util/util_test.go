// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")

	require.NoError(t, AtomicWriteFile(path, []byte(`["a"]`), 0600))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `["a"]`, string(content))
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "deep", "test.json")

	require.NoError(t, AtomicWriteFile(path, []byte("x"), 0600))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestAtomicWriteFile_OverwritesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.json")

	require.NoError(t, AtomicWriteFile(path, []byte("initial"), 0600))
	require.NoError(t, AtomicWriteFile(path, []byte("updated"), 0600))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "updated", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, IsTempFile(e.Name()), "temp file left behind: %s", e.Name())
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/.chatbox/data")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".chatbox", "data"), got)

	got, err = ExpandHome("/var/lib/chatbox")
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/chatbox", got)
}

// =============================================================================
// STRING TESTS
// =============================================================================

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "Chat 1", 10, "Chat 1"},
		{"exact", "Chat 1", 6, "Chat 1"},
		{"ascii truncated", "Hello, world", 6, "Hello…"},
		{"zero width", "Hello", 0, ""},
		{"wide runes", "你好世界", 5, "你好…"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TruncateWidth(tc.in, tc.width)
			assert.Equal(t, tc.want, got)
			assert.LessOrEqual(t, StringWidth(got), tc.width)
		})
	}
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "ab   ", PadRight("ab", 5))
	assert.Equal(t, 6, StringWidth(PadRight("你好", 6)))
}

func TestSingleLine(t *testing.T) {
	assert.Equal(t, "a b c", SingleLine("a\nb\r\nc"))
}
