// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePalette(t *testing.T) {
	light := ResolvePalette(false)
	assert.False(t, light.Dark)
	assert.Equal(t, lipgloss.Color("#f7f8fc"), light.Background)
	assert.Equal(t, lipgloss.Color("#007aff"), light.UserMessage)
	assert.Equal(t, "light", light.GlamourStyle())

	dark := ResolvePalette(true)
	assert.True(t, dark.Dark)
	assert.Equal(t, lipgloss.Color("#121212"), dark.Background)
	assert.Equal(t, lipgloss.Color("#2c2c2c"), dark.AssistantMessage)
	assert.Equal(t, "dark", dark.Name())
}

func TestInitialDark(t *testing.T) {
	orig := backgroundIsDark
	t.Cleanup(func() { backgroundIsDark = orig })
	backgroundIsDark = func() bool { return true }

	tests := []struct {
		name         string
		theme        string
		persisted    bool
		hasPersisted bool
		want         bool
	}{
		{"default light", "light", false, false, false},
		{"configured dark", "dark", false, false, true},
		{"auto follows terminal", "auto", false, false, true},
		{"unknown is light", "neon", false, false, false},
		{"persisted overrides config", "dark", false, true, false},
		{"persisted dark", "light", true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InitialDark(tt.theme, tt.persisted, tt.hasPersisted))
		})
	}
}

func TestNewTheme(t *testing.T) {
	theme := NewTheme(DarkPalette)
	require.NotNil(t, theme)
	assert.True(t, theme.IsDark())
	assert.Equal(t, DarkPalette.UserMessage, theme.UserBubble.GetBackground())
	assert.Equal(t, DarkPalette.AssistantMessage, theme.AssistantBubble.GetBackground())

	light := NewTheme(LightPalette)
	assert.False(t, light.IsDark())
	assert.Equal(t, LightPalette.SidebarBackground, light.Sidebar.GetBackground())
}
