// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatbox/internal/cloud"
	"github.com/jeranaias/chatbox/internal/exchange"
	"github.com/jeranaias/chatbox/internal/logger"
	"github.com/jeranaias/chatbox/internal/model"
	"github.com/jeranaias/chatbox/internal/ui/chat"
	"github.com/jeranaias/chatbox/internal/ui/sidebar"
	"github.com/jeranaias/chatbox/internal/ui/styles"
)

// Update is the single place where UI state changes.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateSizes()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case chat.ReplyMsg:
		return m, m.applyReply(msg)

	case chat.ErrorMsg:
		m.setError(msg.Err)
		return m, nil

	case sidebar.NewThreadMsg:
		return m, m.newThread()

	case sidebar.SelectMsg:
		return m, m.selectThread(msg.ID)

	case sidebar.DeleteMsg:
		return m, m.deleteThread(msg.ID)

	case sidebar.ToggleThemeMsg:
		m.toggleTheme()
		return m, nil

	case ChangedMsg:
		return m, tea.Batch(m.reload(msg.Key), waitForChange(m.changes))
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.NewThread):
		return m, m.newThread()

	case key.Matches(msg, m.keys.DeleteThread):
		id, ok := m.activeThread()
		if m.focus == FocusSidebar {
			id, ok = m.sidebar.Selected()
		}
		if !ok {
			return m, nil
		}
		return m, m.deleteThread(id)

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.sidebar.Toggle()
		m.updateSizes()
		if m.focus == FocusSidebar && !m.sidebar.Open() {
			return m, m.setFocus(FocusComposer)
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleTheme):
		m.toggleTheme()
		return m, nil

	case key.Matches(msg, m.keys.SwitchFocus):
		if m.focus == FocusSidebar {
			return m, m.setFocus(FocusComposer)
		}
		return m, m.setFocus(FocusSidebar)

	case key.Matches(msg, m.keys.Back) && m.focus == FocusSidebar:
		return m, m.setFocus(FocusComposer)
	}

	if m.focus == FocusSidebar {
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}

	if m.Route().IsLanding() {
		return m, nil
	}
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(msg)
	return m, cmd
}

// =============================================================================
// ACTIONS
// =============================================================================

// applyReply persists a reply into its own thread. A reply for a thread that
// is not displayed marks it unread instead of touching the view.
func (m *Model) applyReply(msg chat.ReplyMsg) tea.Cmd {
	id := msg.Request.ThreadID
	msgs, outcome, err := m.svc.Complete(msg.Request, msg.Reply)
	if err != nil {
		m.setError(err)
		return nil
	}
	if outcome != exchange.OutcomeAppended {
		return nil
	}
	if msg.Reply.Err != nil {
		logger.WithThread("app", string(id)).Warn("reply failed", "error", msg.Reply.Err)
		m.status = cloud.HintFor(msg.Reply.Err).String()
		m.statusErr = true
	}

	if active, ok := m.activeThread(); ok && active == id {
		m.chat.SetMessages(msgs)
		return nil
	}
	m.sidebar.MarkUnread(id)
	return nil
}

func (m *Model) newThread() tea.Cmd {
	if _, err := m.shell.NewThread(); err != nil {
		m.setError(err)
		return nil
	}
	m.clearStatus()
	return tea.Batch(m.sync(), m.setFocus(FocusComposer))
}

func (m *Model) selectThread(id model.ThreadID) tea.Cmd {
	if _, err := m.shell.Select(id); err != nil {
		m.setError(err)
		return nil
	}
	m.clearStatus()
	return tea.Batch(m.sync(), m.setFocus(FocusComposer))
}

func (m *Model) deleteThread(id model.ThreadID) tea.Cmd {
	if _, err := m.shell.Delete(id); err != nil {
		m.setError(err)
		return nil
	}
	m.setStatus("Chat deleted")
	return m.sync()
}

func (m *Model) toggleTheme() {
	dark := !m.theme.IsDark()
	if err := m.store.SetDarkMode(dark); err != nil {
		m.setError(err)
	}
	m.applyTheme(dark)
}

func (m *Model) applyTheme(dark bool) {
	m.theme = styles.NewTheme(styles.ResolvePalette(dark))
	m.chat.SetTheme(m.theme)
	m.sidebar.SetTheme(m.theme)
	m.updateSizes()
}

// reload refreshes after another instance changed key.
func (m *Model) reload(changed string) tea.Cmd {
	logger.Component("app").Debug("storage changed", "key", changed)

	if dark, ok, err := m.store.DarkMode(); err == nil && ok && dark != m.theme.IsDark() {
		m.applyTheme(dark)
	}
	if _, err := m.shell.Refresh(); err != nil {
		m.setError(err)
		return nil
	}
	return m.sync()
}
