// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// PALETTE
// =============================================================================

// Palette is the set of named colors the UI draws with. There are exactly
// two palettes, light and dark.
type Palette struct {
	Dark bool

	Background        lipgloss.Color
	ChatBackground    lipgloss.Color
	UserMessage       lipgloss.Color
	UserText          lipgloss.Color
	UserMessageHover  lipgloss.Color
	AssistantMessage  lipgloss.Color
	AssistantText     lipgloss.Color
	SidebarBackground lipgloss.Color
	SidebarText       lipgloss.Color
	InputBackground   lipgloss.Color
	InputText         lipgloss.Color
	Border            lipgloss.Color
	Text              lipgloss.Color
}

// LightPalette is the default palette.
var LightPalette = Palette{
	Dark:              false,
	Background:        lipgloss.Color("#f7f8fc"),
	ChatBackground:    lipgloss.Color("#ffffff"),
	UserMessage:       lipgloss.Color("#007aff"),
	UserText:          lipgloss.Color("#ffffff"),
	UserMessageHover:  lipgloss.Color("#005ecb"),
	AssistantMessage:  lipgloss.Color("#f1f1f1"),
	AssistantText:     lipgloss.Color("#333333"),
	SidebarBackground: lipgloss.Color("#ffffff"),
	SidebarText:       lipgloss.Color("#000000"),
	InputBackground:   lipgloss.Color("#f1f1f1"),
	InputText:         lipgloss.Color("#000000"),
	Border:            lipgloss.Color("#dddddd"),
	Text:              lipgloss.Color("#000000"),
}

// DarkPalette is used when dark mode is on.
var DarkPalette = Palette{
	Dark:              true,
	Background:        lipgloss.Color("#121212"),
	ChatBackground:    lipgloss.Color("#1e1e1e"),
	UserMessage:       lipgloss.Color("#007aff"),
	UserText:          lipgloss.Color("#ffffff"),
	UserMessageHover:  lipgloss.Color("#005ecb"),
	AssistantMessage:  lipgloss.Color("#2c2c2c"),
	AssistantText:     lipgloss.Color("#ffffff"),
	SidebarBackground: lipgloss.Color("#222222"),
	SidebarText:       lipgloss.Color("#ffffff"),
	InputBackground:   lipgloss.Color("#333333"),
	InputText:         lipgloss.Color("#ffffff"),
	Border:            lipgloss.Color("#444444"),
	Text:              lipgloss.Color("#ffffff"),
}

// ResolvePalette returns the dark palette when dark is set, the light one
// otherwise.
func ResolvePalette(dark bool) Palette {
	if dark {
		return DarkPalette
	}
	return LightPalette
}

// GlamourStyle is the glamour standard style name matching the palette.
func (p Palette) GlamourStyle() string {
	if p.Dark {
		return "dark"
	}
	return "light"
}

// Name is "dark" or "light".
func (p Palette) Name() string {
	return p.GlamourStyle()
}

// =============================================================================
// MODE RESOLUTION
// =============================================================================

// backgroundIsDark is swapped in tests.
var backgroundIsDark = termenv.HasDarkBackground

// InitialDark decides the starting mode. A persisted preference wins over the
// configured theme; "auto" asks the terminal for its background.
func InitialDark(theme string, persisted, hasPersisted bool) bool {
	if hasPersisted {
		return persisted
	}
	switch strings.ToLower(strings.TrimSpace(theme)) {
	case "dark":
		return true
	case "auto":
		return backgroundIsDark()
	default:
		return false
	}
}
