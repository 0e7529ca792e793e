// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root Bubble Tea model of the chatbox TUI. It joins the
// sidebar and the chat view and drives navigation through nav.Shell.
package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatbox/internal/exchange"
	"github.com/jeranaias/chatbox/internal/kv"
	"github.com/jeranaias/chatbox/internal/logger"
	"github.com/jeranaias/chatbox/internal/model"
	"github.com/jeranaias/chatbox/internal/nav"
	"github.com/jeranaias/chatbox/internal/storage"
	"github.com/jeranaias/chatbox/internal/ui/chat"
	"github.com/jeranaias/chatbox/internal/ui/sidebar"
	"github.com/jeranaias/chatbox/internal/ui/styles"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	LandingTitle    = "Welcome to the Chat App"
	LandingSubtitle = "Select a chat from the sidebar to start messaging."
)

// Focus is the pane receiving keys.
type Focus int

const (
	FocusComposer Focus = iota
	FocusSidebar
)

func (f Focus) String() string {
	if f == FocusSidebar {
		return "sidebar"
	}
	return "composer"
}

// Options configure New.
type Options struct {
	// Route is the starting route; the zero value is landing.
	Route nav.Route
	// Theme is the configured ui.theme, used until a preference is stored.
	Theme string
	// SidebarOpen starts the sidebar expanded.
	SidebarOpen bool
	// Watch reloads on changes made by other instances when the storage
	// backend supports it.
	Watch bool
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the root TUI model.
type Model struct {
	svc   *exchange.Service
	store *storage.ThreadStore
	shell *nav.Shell

	theme   *styles.Theme
	chat    chat.Model
	sidebar sidebar.Model
	keys    KeyMap
	focus   Focus

	width  int
	height int

	status    string
	statusErr bool

	watch       bool
	changes     <-chan string
	watchCancel context.CancelFunc
}

// New builds the root model and resolves the starting route.
func New(svc *exchange.Service, opts Options) (*Model, error) {
	store := svc.Store()

	persisted, hasPersisted, err := store.DarkMode()
	if err != nil {
		return nil, err
	}
	dark := styles.InitialDark(opts.Theme, persisted, hasPersisted)
	theme := styles.NewTheme(styles.ResolvePalette(dark))

	m := &Model{
		svc:     svc,
		store:   store,
		shell:   nav.NewShell(store, svc),
		theme:   theme,
		chat:    chat.New(svc, theme),
		sidebar: sidebar.New(theme, opts.SidebarOpen),
		keys:    DefaultKeyMap(),
		watch:   opts.Watch,
	}

	route, err := m.shell.Start(opts.Route)
	if err != nil {
		return nil, err
	}
	logger.Component("app").Info("started", "route", route.Path(), "dark", dark)
	m.sync()
	m.chat.Focus()
	return m, nil
}

// Init starts the cursor blink and, when enabled, the storage watcher.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.chat.Focus()}
	if m.watch {
		if cmd := m.startWatch(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// Close cancels in-flight requests and stops the watcher.
func (m *Model) Close() {
	if n := m.svc.CancelAll(); n > 0 {
		logger.Component("app").Info("canceled pending requests", "count", n)
	}
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
}

// Route returns the current route.
func (m *Model) Route() nav.Route {
	return m.shell.Route()
}

// Focus returns the focused pane.
func (m *Model) Focus() Focus {
	return m.focus
}

// Dark reports whether the dark palette is active.
func (m *Model) Dark() bool {
	return m.theme.IsDark()
}

// Status returns the status line message, if any.
func (m *Model) Status() (string, bool) {
	return m.status, m.statusErr
}

// =============================================================================
// STATE HELPERS
// =============================================================================

// sync pushes the shell's route into the sidebar and the chat view.
func (m *Model) sync() tea.Cmd {
	ids, err := m.shell.Threads()
	if err != nil {
		m.setError(err)
	}

	active, ok := m.shell.Active()
	m.sidebar.SetThreads(ids, active)
	if !ok {
		m.chat.Clear()
		return nil
	}

	msgs, err := m.store.Load(active)
	if err != nil {
		m.setError(err)
		return nil
	}
	if shown, ok := m.chat.ThreadID(); ok && shown == active {
		m.chat.SetMessages(msgs)
		return nil
	}
	return m.chat.SetThread(active, msgs)
}

func (m *Model) setError(err error) {
	logger.Component("app").Error("operation failed", "error", err)
	m.status = err.Error()
	m.statusErr = true
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusErr = false
}

func (m *Model) setFocus(f Focus) tea.Cmd {
	if f == FocusSidebar && !m.sidebar.Open() {
		f = FocusComposer
	}
	m.focus = f
	if f == FocusSidebar {
		m.chat.Blur()
		m.sidebar.Focus()
		return nil
	}
	m.sidebar.Blur()
	return m.chat.Focus()
}

func (m *Model) updateSizes() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// one row for the status line
	bodyHeight := m.height - 1
	m.sidebar.SetHeight(bodyHeight)

	mainWidth := m.width - m.sidebar.Width() - m.theme.Chat.GetHorizontalFrameSize()
	if mainWidth < 10 {
		mainWidth = 10
	}
	m.chat.SetSize(mainWidth, bodyHeight)
}

// activeThread returns the displayed thread.
func (m *Model) activeThread() (model.ThreadID, bool) {
	return m.shell.Active()
}

// =============================================================================
// STORAGE WATCH
// =============================================================================

// ChangedMsg reports a key changed by another instance.
type ChangedMsg struct {
	Key string
}

func (m *Model) startWatch() tea.Cmd {
	w, ok := m.store.KV().(kv.Watcher)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := w.Watch(ctx)
	if err != nil {
		cancel()
		logger.Component("app").Warn("storage watch unavailable", "error", err)
		return nil
	}
	m.changes = ch
	m.watchCancel = cancel
	return waitForChange(ch)
}

// waitForChange blocks for the next change; nil once the channel closes.
func waitForChange(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		key, ok := <-ch
		if !ok {
			return nil
		}
		return ChangedMsg{Key: key}
	}
}
