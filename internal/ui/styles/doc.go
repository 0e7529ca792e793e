// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling for the chatbox TUI.

# Palettes (colors.go)

There are two palettes, LightPalette and DarkPalette. ResolvePalette maps the
dark-mode flag onto one of them. InitialDark picks the starting mode from the
persisted "darkMode" preference, falling back to the configured ui.theme
("light", "dark" or "auto", where auto asks the terminal via termenv).

# Theme (theme.go)

NewTheme derives every lipgloss style from a Palette. Toggling dark mode
builds a fresh Theme:

	theme := styles.NewTheme(styles.ResolvePalette(dark))
	view := theme.UserBubble.Render(text)

Palette.GlamourStyle names the glamour style used for assistant Markdown.
*/
package styles
