// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sidebar renders the thread list of the chatbox TUI.
package sidebar

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatbox/internal/model"
	"github.com/jeranaias/chatbox/internal/storage"
	"github.com/jeranaias/chatbox/internal/ui/styles"
	"github.com/jeranaias/chatbox/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	Title          = "ChatBox"
	NewChatLabel   = "+ New Chat"
	DarkModeLabel  = "Dark Mode"
	LightModeLabel = "Light Mode"

	unreadMark = "●"
)

// =============================================================================
// ACTIONS
// =============================================================================

// NewThreadMsg asks the shell to create a thread.
type NewThreadMsg struct{}

// SelectMsg asks the shell to open a thread.
type SelectMsg struct {
	ID model.ThreadID
}

// DeleteMsg asks the shell to delete a thread.
type DeleteMsg struct {
	ID model.ThreadID
}

// ToggleThemeMsg asks for the other palette.
type ToggleThemeMsg struct{}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// =============================================================================
// KEYS
// =============================================================================

// KeyMap defines the keys the sidebar handles while it has focus.
type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Delete key.Binding
}

// DefaultKeyMap returns the default sidebar bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "open"),
		),
		Delete: key.NewBinding(
			key.WithKeys("delete", "x"),
			key.WithHelp("Del/x", "delete chat"),
		),
	}
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the sidebar. The cursor walks "+ New Chat", then every thread,
// then the theme toggle.
type Model struct {
	theme *styles.Theme
	keys  KeyMap

	threads []model.ThreadID
	active  model.ThreadID
	unread  map[model.ThreadID]bool

	cursor  int
	open    bool
	focused bool
	height  int
}

// New creates a sidebar, expanded when open is set.
func New(theme *styles.Theme, open bool) Model {
	return Model{
		theme:  theme,
		keys:   DefaultKeyMap(),
		unread: make(map[model.ThreadID]bool),
		open:   open,
	}
}

// SetTheme switches palettes.
func (m *Model) SetTheme(theme *styles.Theme) {
	m.theme = theme
}

// SetHeight sets the available rows.
func (m *Model) SetHeight(h int) {
	m.height = h
}

// Width is the rendered width for the current open state.
func (m Model) Width() int {
	if m.open {
		return styles.SidebarWidth
	}
	return styles.CollapsedSidebarWidth
}

// Open reports whether the sidebar is expanded.
func (m Model) Open() bool {
	return m.open
}

// Toggle collapses or expands the sidebar. Collapsing drops focus.
func (m *Model) Toggle() {
	m.open = !m.open
	if !m.open {
		m.focused = false
	}
}

// Focus gives the sidebar keyboard focus. The cursor starts on the active
// thread.
func (m *Model) Focus() {
	m.focused = true
	if i := m.indexOf(m.active); i >= 0 {
		m.cursor = i + 1
	}
}

// Blur drops keyboard focus.
func (m *Model) Blur() {
	m.focused = false
}

// Focused reports whether the sidebar has focus.
func (m Model) Focused() bool {
	return m.focused
}

// SetThreads replaces the listed threads and the active one. Unread marks
// for threads that are gone are dropped, and so is the mark of the active
// thread.
//
// The cursor stays on the row it was on: "+ New Chat", the theme toggle, or
// the same thread. When that thread is gone it moves to the thread now at its
// position, or the last one.
func (m *Model) SetThreads(ids []model.ThreadID, active model.ThreadID) {
	onToggle := m.cursor >= m.lastRow()
	selected, onThread := m.Selected()
	oldRow := m.cursor

	m.threads = ids
	m.active = active
	delete(m.unread, active)
	for id := range m.unread {
		if m.indexOf(id) < 0 {
			delete(m.unread, id)
		}
	}

	switch {
	case onToggle:
		m.cursor = m.lastRow()
	case onThread:
		if i := m.indexOf(selected); i >= 0 {
			m.cursor = i + 1
		} else if len(m.threads) == 0 {
			m.cursor = 0
		} else {
			m.cursor = min(oldRow, len(m.threads))
		}
	}
	m.clampCursor()
}

// Threads returns the listed threads.
func (m Model) Threads() []model.ThreadID {
	return m.threads
}

// Active returns the highlighted thread.
func (m Model) Active() model.ThreadID {
	return m.active
}

// MarkUnread flags a thread that received a reply while not displayed.
func (m *Model) MarkUnread(id model.ThreadID) {
	if id == m.active || m.indexOf(id) < 0 {
		return
	}
	m.unread[id] = true
}

// Unread reports whether id carries the unread mark.
func (m Model) Unread(id model.ThreadID) bool {
	return m.unread[id]
}

// Selected returns the thread under the cursor, if the cursor is on one.
func (m Model) Selected() (model.ThreadID, bool) {
	i := m.cursor - 1
	if i < 0 || i >= len(m.threads) {
		return "", false
	}
	return m.threads[i], true
}

func (m Model) indexOf(id model.ThreadID) int {
	if id == "" {
		return -1
	}
	for i, t := range m.threads {
		if t == id {
			return i
		}
	}
	return -1
}

// lastRow is the cursor position of the theme toggle.
func (m Model) lastRow() int {
	return len(m.threads) + 1
}

func (m *Model) clampCursor() {
	if m.cursor > m.lastRow() {
		m.cursor = m.lastRow()
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles navigation keys while focused.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < m.lastRow() {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Select):
		return m, m.activate()
	case key.Matches(keyMsg, m.keys.Delete):
		if id, ok := m.Selected(); ok {
			return m, emit(DeleteMsg{ID: id})
		}
	}
	return m, nil
}

func (m Model) activate() tea.Cmd {
	switch {
	case m.cursor == 0:
		return emit(NewThreadMsg{})
	case m.cursor == m.lastRow():
		return emit(ToggleThemeMsg{})
	default:
		id, _ := m.Selected()
		return emit(SelectMsg{ID: id})
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the sidebar at its current width and height.
func (m Model) View() string {
	t := m.theme
	inner := m.Width() - 3 // right border + horizontal padding

	var top []string
	if m.open {
		top = append(top, t.SidebarTitle.Render(util.TruncateWidth(Title, inner)))
	} else {
		top = append(top, t.SidebarToggle.Render("≡"))
	}

	newLabel := NewChatLabel
	if !m.open {
		newLabel = "+"
	}
	top = append(top, m.row(0, t.SidebarNew, newLabel, inner))

	if m.open {
		for i, id := range m.threads {
			style := t.SidebarItem
			if id == m.active {
				style = t.SidebarItemActive
			}
			if !m.unread[id] {
				top = append(top, m.row(i+1, style, storage.Label(i), inner))
				continue
			}
			dot := " " + t.UnreadDot.Render(unreadMark)
			top = append(top, m.row(i+1, style, storage.Label(i), inner-lipgloss.Width(dot))+dot)
		}
	}

	footer := m.row(m.lastRow(), t.SidebarItem, m.themeLabel(), inner)
	footer = t.SidebarFooter.Width(inner).Render(footer)

	body := strings.Join(top, "\n")
	gap := m.height - lipgloss.Height(body) - lipgloss.Height(footer)
	if gap > 0 {
		body += strings.Repeat("\n", gap)
	}

	view := lipgloss.JoinVertical(lipgloss.Left, body, footer)
	style := t.Sidebar.Width(m.Width() - 1)
	if m.height > 0 {
		style = style.Height(m.height)
	}
	return style.Render(view)
}

func (m Model) themeLabel() string {
	dark := m.theme.IsDark()
	switch {
	case !m.open && dark:
		return "☀"
	case !m.open:
		return "☾"
	case dark:
		return LightModeLabel
	default:
		return DarkModeLabel
	}
}

// row renders one selectable line; the cursor is shown only with focus.
func (m Model) row(index int, style lipgloss.Style, label string, width int) string {
	prefix := "  "
	if m.focused && m.cursor == index {
		prefix = m.theme.SidebarCursor.Render("> ")
	}
	if !m.open {
		prefix = ""
		if m.focused && m.cursor == index {
			prefix = m.theme.SidebarCursor.Render(">")
		}
	}
	label = util.TruncateWidth(label, width-lipgloss.Width(prefix))
	return prefix + style.Render(label)
}
