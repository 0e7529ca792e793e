// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/chatbox/internal/exchange"
	"github.com/jeranaias/chatbox/internal/logger"
	"github.com/jeranaias/chatbox/internal/model"
	"github.com/jeranaias/chatbox/internal/ui/styles"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// Placeholder is shown in the empty composer.
	Placeholder = "Type a message..."

	// Caption is shown under the composer.
	Caption = "AI can make mistakes. Check important info."

	// MinComposerRows and MaxComposerRows bound the composer height.
	MinComposerRows = 1
	MaxComposerRows = 5

	sendLabel = "Send"

	// bubbleRatio is the share of the chat width a message may use.
	bubbleRatio = 0.6
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat view for one thread.
type Model struct {
	svc   *exchange.Service
	theme *styles.Theme
	keys  KeyMap

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model

	threadID model.ThreadID
	messages []model.Message

	width   int
	height  int
	focused bool

	renderer      *glamour.TermRenderer
	rendererWidth int
	rendererStyle string
	rendered      map[string]string
}

// New creates a chat view backed by svc.
func New(svc *exchange.Service, theme *styles.Theme) Model {
	ta := textarea.New()
	ta.Placeholder = Placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetHeight(MinComposerRows)
	keys := DefaultKeyMap()
	ta.KeyMap.InsertNewline = keys.Newline

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		svc:      svc,
		keys:     keys,
		viewport: viewport.New(0, 0),
		input:    ta,
		spinner:  sp,
	}
	m.SetTheme(theme)
	return m
}

// SetTheme switches palettes and re-renders the message list.
func (m *Model) SetTheme(theme *styles.Theme) {
	m.theme = theme
	p := theme.Palette

	focused, blurred := textarea.DefaultStyles()
	for _, st := range []*textarea.Style{&focused, &blurred} {
		st.Base = st.Base.Background(p.InputBackground).Foreground(p.InputText)
		st.Text = st.Text.Background(p.InputBackground).Foreground(p.InputText)
		st.CursorLine = st.CursorLine.Background(p.InputBackground).Foreground(p.InputText)
		st.Placeholder = st.Placeholder.Background(p.InputBackground).Foreground(p.Border)
		st.EndOfBuffer = st.EndOfBuffer.Background(p.InputBackground).Foreground(p.InputBackground)
	}
	m.input.FocusedStyle = focused
	m.input.BlurredStyle = blurred
	m.spinner.Style = m.spinner.Style.Foreground(p.UserMessage)

	m.renderer = nil
	m.refresh(false)
}

// SetSize lays the view out in w by h cells.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.layout()
	m.refresh(false)
}

// Focus gives the composer keyboard focus.
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	return m.input.Focus()
}

// Blur removes keyboard focus from the composer.
func (m *Model) Blur() {
	m.focused = false
	m.input.Blur()
}

// Focused reports whether the composer has focus.
func (m Model) Focused() bool {
	return m.focused
}

// ThreadID returns the displayed thread, if any.
func (m Model) ThreadID() (model.ThreadID, bool) {
	return m.threadID, m.threadID != ""
}

// Messages returns the displayed messages.
func (m Model) Messages() []model.Message {
	return m.messages
}

// Value returns the composer text.
func (m Model) Value() string {
	return m.input.Value()
}

// SetValue replaces the composer text.
func (m *Model) SetValue(s string) {
	m.input.SetValue(s)
	m.layout()
}

// SetThread displays id with msgs. The composer keeps its text. The returned
// command restarts the spinner when id is already awaiting a reply.
func (m *Model) SetThread(id model.ThreadID, msgs []model.Message) tea.Cmd {
	m.threadID = id
	m.messages = msgs
	m.refresh(true)
	if m.Pending() {
		return m.spinner.Tick
	}
	return nil
}

// Clear shows no thread.
func (m *Model) Clear() {
	m.threadID = ""
	m.messages = nil
	m.refresh(true)
}

// SetMessages replaces the displayed messages and scrolls to the newest one
// when the sequence changed.
func (m *Model) SetMessages(msgs []model.Message) {
	changed := !sameMessages(m.messages, msgs)
	m.messages = msgs
	m.refresh(changed)
}

// Pending reports whether the displayed thread awaits a reply.
func (m Model) Pending() bool {
	return m.threadID != "" && m.svc.Pending(m.threadID)
}

// CanSubmit reports whether Enter would send the composer text.
func (m Model) CanSubmit() bool {
	return m.threadID != "" && !m.Pending() && strings.TrimSpace(m.input.Value()) != ""
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles keys, mouse scrolling and spinner ticks.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if !m.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	if !m.focused {
		return m, nil
	}

	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.layout()
	return m, cmd
}

// submit sends the composer text. Blank text and a pending thread are
// silent no-ops.
func (m Model) submit() (Model, tea.Cmd) {
	if m.threadID == "" {
		return m, nil
	}
	req, msgs, err := m.svc.Submit(m.threadID, m.input.Value())
	switch {
	case errors.Is(err, exchange.ErrEmptyMessage), errors.Is(err, exchange.ErrReplyPending):
		return m, nil
	case err != nil:
		logger.WithThread("chat", string(m.threadID)).Error("submit failed", "error", err)
		return m, errorCmd(err)
	}

	m.input.Reset()
	m.layout()
	m.SetMessages(msgs)
	return m, tea.Batch(SendCmd(req), m.spinner.Tick)
}

// =============================================================================
// LAYOUT
// =============================================================================

// composerRows is the textarea height for the current text.
func (m Model) composerRows() int {
	rows := m.input.LineCount()
	if rows < MinComposerRows {
		rows = MinComposerRows
	}
	if rows > MaxComposerRows {
		rows = MaxComposerRows
	}
	return rows
}

// layout sizes the composer and gives the rest of the height to the
// message list.
func (m *Model) layout() {
	rows := m.composerRows()
	m.input.SetHeight(rows)

	inputWidth := m.width - len(sendLabel) - 2 - 3
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.SetWidth(inputWidth)

	// composer border (2) + rows, indicator line, caption line
	listHeight := m.height - (rows + 2) - 2
	if listHeight < 1 {
		listHeight = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = listHeight
}

func (m *Model) refresh(gotoBottom bool) {
	m.viewport.SetContent(m.renderMessages())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

func sameMessages(a, b []model.Message) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
