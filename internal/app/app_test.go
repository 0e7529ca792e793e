// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatbox/internal/cloud"
	"github.com/jeranaias/chatbox/internal/exchange"
	"github.com/jeranaias/chatbox/internal/kv"
	"github.com/jeranaias/chatbox/internal/model"
	"github.com/jeranaias/chatbox/internal/nav"
	"github.com/jeranaias/chatbox/internal/storage"
	"github.com/jeranaias/chatbox/internal/ui/chat"
	"github.com/jeranaias/chatbox/internal/ui/sidebar"
)

type staticCompleter struct {
	content string
}

func (s staticCompleter) Complete(ctx context.Context, text string) (string, error) {
	return s.content, nil
}

func newStore(t *testing.T) *storage.ThreadStore {
	t.Helper()
	mem := kv.NewMemoryStore()
	t.Cleanup(func() { mem.Close() })
	return storage.NewThreadStore(mem, storage.DefaultMaxMessages)
}

func newApp(t *testing.T, store *storage.ThreadStore, opts Options) (*Model, *exchange.Service) {
	t.Helper()
	svc := exchange.NewService(store, cloud.NewGateway(staticCompleter{content: "hi there"}), nil)
	m, err := New(svc, opts)
	require.NoError(t, err)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m, svc
}

func keyMsg(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func send(m *Model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

// collect runs cmd and flattens batches.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// submit types text, presses enter and returns the pending reply.
func submit(t *testing.T, m *Model, text string) chat.ReplyMsg {
	t.Helper()
	send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	for _, msg := range collect(send(m, keyMsg(tea.KeyEnter))) {
		if r, ok := msg.(chat.ReplyMsg); ok {
			return r
		}
	}
	t.Fatal("no reply produced")
	return chat.ReplyMsg{}
}

func TestNew_EmptyStoreShowsLanding(t *testing.T) {
	m, _ := newApp(t, newStore(t), Options{SidebarOpen: true})

	assert.True(t, m.Route().IsLanding())
	view := ansi.Strip(m.View())
	assert.Contains(t, view, LandingTitle)
	assert.Contains(t, view, LandingSubtitle)
	assert.Contains(t, view, sidebar.NewChatLabel)
}

func TestNew_OpensMostRecentThread(t *testing.T) {
	store := newStore(t)
	_, err := store.CreateThread()
	require.NoError(t, err)
	second, err := store.CreateThread()
	require.NoError(t, err)

	m, _ := newApp(t, store, Options{})
	assert.Equal(t, nav.ThreadRoute(second), m.Route())
}

func TestNew_ThreadRoute(t *testing.T) {
	store := newStore(t)
	first, err := store.CreateThread()
	require.NoError(t, err)
	_, err = store.CreateThread()
	require.NoError(t, err)

	m, _ := newApp(t, store, Options{Route: nav.ThreadRoute(first)})
	assert.Equal(t, nav.ThreadRoute(first), m.Route())
}

func TestNewThreadAndExchange(t *testing.T) {
	store := newStore(t)
	m, _ := newApp(t, store, Options{SidebarOpen: true})

	send(m, keyMsg(tea.KeyCtrlN))
	id, ok := m.activeThread()
	require.True(t, ok)
	assert.Contains(t, ansi.Strip(m.View()), "Chat 1")

	reply := submit(t, m, "hello")
	send(m, reply)

	want := []model.Message{
		{Sender: model.RoleUser, Content: "hello"},
		{Sender: model.RoleAssistant, Content: "hi there"},
	}
	assert.Equal(t, want, m.chat.Messages())

	stored, err := store.Load(id)
	require.NoError(t, err)
	assert.Equal(t, want, stored)
}

func TestReplyForOtherThreadMarksUnread(t *testing.T) {
	store := newStore(t)
	m, _ := newApp(t, store, Options{SidebarOpen: true})

	send(m, keyMsg(tea.KeyCtrlN))
	first, _ := m.activeThread()
	reply := submit(t, m, "hello")

	send(m, keyMsg(tea.KeyCtrlN))
	second, _ := m.activeThread()
	require.NotEqual(t, first, second)

	send(m, reply)
	assert.Empty(t, m.chat.Messages(), "displayed thread is untouched")
	assert.True(t, m.sidebar.Unread(first))

	stored, err := store.Load(first)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	send(m, sidebar.SelectMsg{ID: first})
	assert.False(t, m.sidebar.Unread(first))
	assert.Len(t, m.chat.Messages(), 2)
}

func TestDeleteOnlyThreadGoesToLanding(t *testing.T) {
	m, _ := newApp(t, newStore(t), Options{SidebarOpen: true})

	send(m, keyMsg(tea.KeyCtrlN))
	require.False(t, m.Route().IsLanding())

	send(m, keyMsg(tea.KeyCtrlD))
	assert.True(t, m.Route().IsLanding())
	assert.Contains(t, ansi.Strip(m.View()), LandingTitle)
}

func TestDeleteActiveGoesToMostRecentRemaining(t *testing.T) {
	store := newStore(t)
	m, _ := newApp(t, store, Options{SidebarOpen: true})

	send(m, keyMsg(tea.KeyCtrlN))
	first, _ := m.activeThread()
	send(m, keyMsg(tea.KeyCtrlN))
	second, _ := m.activeThread()
	send(m, keyMsg(tea.KeyCtrlN))
	third, _ := m.activeThread()

	send(m, sidebar.SelectMsg{ID: second})
	send(m, keyMsg(tea.KeyCtrlD))
	assert.Equal(t, nav.ThreadRoute(third), m.Route())

	send(m, sidebar.DeleteMsg{ID: third})
	assert.Equal(t, nav.ThreadRoute(first), m.Route())
}

func TestDeleteDuringRequestDiscardsReply(t *testing.T) {
	store := newStore(t)
	m, svc := newApp(t, store, Options{SidebarOpen: true})

	send(m, keyMsg(tea.KeyCtrlN))
	id, _ := m.activeThread()
	reply := submit(t, m, "hello")
	require.True(t, svc.Pending(id))

	send(m, keyMsg(tea.KeyCtrlD))
	assert.False(t, svc.Pending(id))

	send(m, reply)
	known, err := store.Contains(id)
	require.NoError(t, err)
	assert.False(t, known)

	msgs, err := store.Load(id)
	require.NoError(t, err)
	for _, msg := range msgs {
		assert.NotEqual(t, model.RoleAssistant, msg.Sender)
	}
}

func TestToggleThemePersists(t *testing.T) {
	store := newStore(t)
	m, _ := newApp(t, store, Options{Theme: "light"})
	require.False(t, m.Dark())

	send(m, keyMsg(tea.KeyCtrlT))
	assert.True(t, m.Dark())

	dark, ok, err := store.DarkMode()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, dark)

	again, _ := newApp(t, store, Options{Theme: "light"})
	assert.True(t, again.Dark(), "stored preference wins over config")

	send(m, sidebar.ToggleThemeMsg{})
	assert.False(t, m.Dark())
}

func TestFocusSwitching(t *testing.T) {
	m, _ := newApp(t, newStore(t), Options{SidebarOpen: true})
	send(m, keyMsg(tea.KeyCtrlN))
	assert.Equal(t, FocusComposer, m.Focus())

	send(m, keyMsg(tea.KeyTab))
	assert.Equal(t, FocusSidebar, m.Focus())
	assert.True(t, m.sidebar.Focused())
	assert.False(t, m.chat.Focused())

	send(m, keyMsg(tea.KeyEsc))
	assert.Equal(t, FocusComposer, m.Focus())

	send(m, keyMsg(tea.KeyTab))
	send(m, keyMsg(tea.KeyCtrlB))
	assert.False(t, m.sidebar.Open())
	assert.Equal(t, FocusComposer, m.Focus(), "collapsing drops sidebar focus")

	send(m, keyMsg(tea.KeyTab))
	assert.Equal(t, FocusComposer, m.Focus(), "collapsed sidebar cannot take focus")
}

func TestSidebarEnterOpensThread(t *testing.T) {
	m, _ := newApp(t, newStore(t), Options{SidebarOpen: true})
	send(m, keyMsg(tea.KeyCtrlN))
	first, _ := m.activeThread()
	send(m, keyMsg(tea.KeyCtrlN))

	send(m, keyMsg(tea.KeyTab))
	send(m, keyMsg(tea.KeyUp))
	msgs := collect(send(m, keyMsg(tea.KeyEnter)))
	require.Len(t, msgs, 1)
	assert.Equal(t, sidebar.SelectMsg{ID: first}, msgs[0])

	send(m, msgs[0])
	assert.Equal(t, nav.ThreadRoute(first), m.Route())
	assert.Equal(t, FocusComposer, m.Focus())
}

func TestLandingIgnoresTyping(t *testing.T) {
	m, _ := newApp(t, newStore(t), Options{})
	send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("hello")})
	assert.Equal(t, "", m.chat.Value())
}

func TestQuitCancelsPending(t *testing.T) {
	m, svc := newApp(t, newStore(t), Options{})
	send(m, keyMsg(tea.KeyCtrlN))
	id, _ := m.activeThread()
	submit(t, m, "hello")
	require.True(t, svc.Pending(id))

	cmd := send(m, keyMsg(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, svc.Pending(id))
}

func TestChangedReloadsIndex(t *testing.T) {
	store := newStore(t)
	m, _ := newApp(t, store, Options{SidebarOpen: true})
	require.True(t, m.Route().IsLanding())

	id, err := store.CreateThread()
	require.NoError(t, err)
	send(m, ChangedMsg{Key: storage.IndexKey})
	assert.Equal(t, []model.ThreadID{id}, m.sidebar.Threads())

	require.NoError(t, store.SetDarkMode(true))
	send(m, ChangedMsg{Key: storage.DarkModeKey})
	assert.True(t, m.Dark())
}

func TestErrorMsgShowsStatus(t *testing.T) {
	m, _ := newApp(t, newStore(t), Options{})
	send(m, chat.ErrorMsg{Err: assert.AnError})

	status, isErr := m.Status()
	assert.True(t, isErr)
	assert.Equal(t, assert.AnError.Error(), status)
	assert.Contains(t, ansi.Strip(m.View()), status)
}

func TestFailedReplyShowsHint(t *testing.T) {
	m, _ := newApp(t, newStore(t), Options{})
	send(m, keyMsg(tea.KeyCtrlN))

	r := submit(t, m, "hello")
	r.Reply = cloud.Reply{ThreadID: r.Request.ThreadID, Text: cloud.FailureReplyText, Err: cloud.ErrAuthFailed}
	send(m, r)

	msgs := m.chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, cloud.FailureReplyText, msgs[1].Content)

	status, isErr := m.Status()
	assert.True(t, isErr)
	assert.Equal(t, cloud.HintFor(cloud.ErrAuthFailed).String(), status)
}
