// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatbox/internal/util"
)

// View renders the sidebar, the main pane and the status line.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	bodyHeight := m.height - 1
	side := m.sidebar.View()

	mainWidth := m.width - lipgloss.Width(side)
	if mainWidth < 1 {
		mainWidth = 1
	}

	var main string
	if m.Route().IsLanding() {
		main = m.renderLanding(mainWidth, bodyHeight)
	} else {
		main = m.theme.Chat.Width(mainWidth).Height(bodyHeight).Render(m.chat.View())
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, side, main)
	view := lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatus())
	return m.theme.App.Render(view)
}

func (m *Model) renderLanding(width, height int) string {
	text := lipgloss.JoinVertical(lipgloss.Center,
		m.theme.LandingTitle.Render(LandingTitle),
		"",
		m.theme.LandingSubtitle.Render(LandingSubtitle),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text,
		lipgloss.WithWhitespaceBackground(m.theme.Palette.ChatBackground))
}

func (m *Model) renderStatus() string {
	if m.status != "" {
		style := m.theme.Status
		if m.statusErr {
			style = m.theme.StatusError
		}
		return style.Render(util.TruncateWidth(util.SingleLine(m.status), m.width))
	}

	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	help := strings.Join(parts, " · ")
	if m.focus == FocusSidebar {
		help = "sidebar: up/down move · Enter open · Del delete · Esc back"
	}
	return m.theme.Status.Render(util.TruncateWidth(help, m.width))
}
