// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatbox/internal/cloud"
	"github.com/jeranaias/chatbox/internal/exchange"
)

// =============================================================================
// MESSAGES
// =============================================================================

// ReplyMsg carries the outcome of a gateway call back to the update loop.
type ReplyMsg struct {
	Request *exchange.Request
	Reply   cloud.Reply
}

// ErrorMsg reports a failure the view could not handle itself, such as a
// storage write error during submit.
type ErrorMsg struct {
	Err error
}

// SendCmd runs the gateway call for req off the update loop.
func SendCmd(req *exchange.Request) tea.Cmd {
	return func() tea.Msg {
		return ReplyMsg{Request: req, Reply: req.Do(context.Background())}
	}
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}
