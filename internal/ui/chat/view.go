// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatbox/internal/model"
	"github.com/jeranaias/chatbox/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the message list, the pending indicator, the composer and
// the caption.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderIndicator())
	b.WriteString("\n")
	b.WriteString(m.renderComposer())
	b.WriteString("\n")
	b.WriteString(m.theme.Caption.Width(m.width).Render(Caption))
	return b.String()
}

func (m Model) renderIndicator() string {
	if !m.Pending() {
		return ""
	}
	return " " + m.spinner.View()
}

func (m Model) renderComposer() string {
	box := m.theme.Composer
	if m.focused {
		box = m.theme.ComposerFocused
	}
	input := box.Render(m.input.View())

	button := m.theme.SendDisabled.Render(sendLabel)
	if m.CanSubmit() {
		button = m.theme.SendButton.Render(sendLabel)
	}
	button = lipgloss.PlaceVertical(lipgloss.Height(input), lipgloss.Center, button)

	return lipgloss.JoinHorizontal(lipgloss.Top, input, " ", button)
}

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// renderMessages draws the whole thread for the viewport.
func (m *Model) renderMessages() string {
	if m.width <= 0 || len(m.messages) == 0 {
		return ""
	}

	parts := make([]string, 0, len(m.messages))
	for _, msg := range m.messages {
		if msg.IsUser() {
			parts = append(parts, m.renderUserMessage(msg))
		} else {
			parts = append(parts, m.renderAssistantMessage(msg))
		}
	}
	return strings.Join(parts, "\n\n")
}

// bubbleWidth is the widest a message may be, including padding.
func (m *Model) bubbleWidth() int {
	w := int(float64(m.width) * bubbleRatio)
	if w < 12 {
		w = m.width
	}
	return w
}

// renderUserMessage renders a right-aligned bubble sized to its text.
func (m *Model) renderUserMessage(msg model.Message) string {
	maxWidth := m.bubbleWidth()

	textWidth := 0
	for _, line := range strings.Split(msg.Content, "\n") {
		if w := util.StringWidth(line); w > textWidth {
			textWidth = w
		}
	}
	// +2 for horizontal padding
	width := textWidth + 2
	if width > maxWidth {
		width = maxWidth
	}

	bubble := m.theme.UserBubble.Width(width).Render(msg.Content)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, bubble)
}

// renderAssistantMessage renders Markdown through glamour. Plain wrapped
// text in an assistant bubble is the fallback.
func (m *Model) renderAssistantMessage(msg model.Message) string {
	maxWidth := m.bubbleWidth()

	if out, ok := m.markdown(msg.Content, maxWidth); ok {
		return out
	}
	return m.theme.AssistantBubble.MaxWidth(maxWidth).Width(maxWidth).Render(msg.Content)
}

// markdown renders content with a renderer cached per width and style.
func (m *Model) markdown(content string, width int) (string, bool) {
	style := m.theme.Palette.GlamourStyle()
	if m.renderer == nil || m.rendererWidth != width || m.rendererStyle != style {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", false
		}
		m.renderer = r
		m.rendererWidth = width
		m.rendererStyle = style
		m.rendered = make(map[string]string)
	}

	if out, ok := m.rendered[content]; ok {
		return out, true
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return "", false
	}
	out = strings.Trim(out, "\n")
	m.rendered[content] = out
	return out, true
}
