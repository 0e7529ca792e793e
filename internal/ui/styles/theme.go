// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// SidebarWidth is the expanded sidebar width in cells.
const SidebarWidth = 24

// CollapsedSidebarWidth is the width of the sidebar when collapsed.
const CollapsedSidebarWidth = 5

// Theme holds every lipgloss style the UI uses, derived from one Palette.
type Theme struct {
	Palette      Palette
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// LAYOUT
	// ==========================================================================

	App  lipgloss.Style
	Chat lipgloss.Style

	// ==========================================================================
	// SIDEBAR
	// ==========================================================================

	Sidebar           lipgloss.Style
	SidebarTitle      lipgloss.Style
	SidebarNew        lipgloss.Style
	SidebarItem       lipgloss.Style
	SidebarItemActive lipgloss.Style
	SidebarCursor     lipgloss.Style
	SidebarToggle     lipgloss.Style
	SidebarFooter     lipgloss.Style
	UnreadDot         lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	Typing          lipgloss.Style

	// ==========================================================================
	// COMPOSER
	// ==========================================================================

	Composer        lipgloss.Style
	ComposerFocused lipgloss.Style
	SendButton      lipgloss.Style
	SendDisabled    lipgloss.Style
	Caption         lipgloss.Style

	// ==========================================================================
	// LANDING + STATUS
	// ==========================================================================

	LandingTitle    lipgloss.Style
	LandingSubtitle lipgloss.Style
	Status          lipgloss.Style
	StatusError     lipgloss.Style
}

// NewTheme builds the styles for p.
func NewTheme(p Palette) *Theme {
	profile := termenv.ColorProfile()
	t := &Theme{
		Palette:      p,
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

// IsDark reports whether the theme uses the dark palette.
func (t *Theme) IsDark() bool {
	return t.Palette.Dark
}

func (t *Theme) initStyles() {
	p := t.Palette

	t.App = lipgloss.NewStyle().
		Background(p.Background).
		Foreground(p.Text)

	t.Chat = lipgloss.NewStyle().
		Background(p.ChatBackground).
		Foreground(p.Text).
		Padding(0, 1)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		Background(p.SidebarBackground).
		Foreground(p.SidebarText).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(p.Border).
		Padding(0, 1)

	t.SidebarTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.SidebarText).
		MarginBottom(1)

	t.SidebarNew = lipgloss.NewStyle().
		Foreground(p.UserMessage).
		Bold(true)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(p.SidebarText)

	t.SidebarItemActive = lipgloss.NewStyle().
		Foreground(p.UserText).
		Background(p.UserMessage).
		Bold(true)

	t.SidebarCursor = lipgloss.NewStyle().
		Foreground(p.UserMessageHover).
		Bold(true)

	t.SidebarToggle = lipgloss.NewStyle().
		Foreground(p.SidebarText).
		Faint(true)

	t.SidebarFooter = lipgloss.NewStyle().
		Foreground(p.SidebarText).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(p.Border)

	t.UnreadDot = lipgloss.NewStyle().
		Foreground(p.UserMessage).
		Bold(true)

	// Messages
	t.UserBubble = lipgloss.NewStyle().
		Foreground(p.UserText).
		Background(p.UserMessage).
		Padding(0, 1)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(p.AssistantText).
		Background(p.AssistantMessage).
		Padding(0, 1)

	t.Typing = lipgloss.NewStyle().
		Foreground(p.AssistantText).
		Italic(true)

	// Composer
	t.Composer = lipgloss.NewStyle().
		Background(p.InputBackground).
		Foreground(p.InputText).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Border)

	t.ComposerFocused = t.Composer.
		BorderForeground(p.UserMessage)

	t.SendButton = lipgloss.NewStyle().
		Foreground(p.UserText).
		Background(p.UserMessage).
		Padding(0, 1).
		Bold(true)

	t.SendDisabled = lipgloss.NewStyle().
		Foreground(p.Border).
		Background(p.InputBackground).
		Padding(0, 1)

	t.Caption = lipgloss.NewStyle().
		Foreground(p.Text).
		Faint(true).
		Align(lipgloss.Center)

	// Landing and status
	t.LandingTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Text)

	t.LandingSubtitle = lipgloss.NewStyle().
		Foreground(p.Text).
		Faint(true)

	t.Status = lipgloss.NewStyle().
		Foreground(p.Text).
		Faint(true)

	t.StatusError = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#e5484d")).
		Bold(true)
}
