// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"errors"

	"github.com/jeranaias/chatbox/internal/logger"
	"github.com/jeranaias/chatbox/internal/model"
)

// Reply texts used in place of a real completion.
const (
	// EmptyReplyText is used when the provider answers with empty content.
	EmptyReplyText = "I couldn't process that."

	// FailureReplyText is used for every failed request.
	FailureReplyText = "Error: Failed to fetch AI response."
)

// Reply is the outcome of one Send, tagged with the thread it belongs to.
type Reply struct {
	ThreadID model.ThreadID
	Text     string

	// Err is the underlying failure, for logging only. Text is already set
	// to FailureReplyText when Err is non-nil.
	Err error

	// Canceled is set when the caller's context was canceled. Canceled
	// replies must not be persisted.
	Canceled bool
}

// Gateway turns completions into reply text that can always be shown.
type Gateway struct {
	completer Completer
}

// NewGateway creates a gateway over c.
func NewGateway(c Completer) *Gateway {
	return &Gateway{completer: c}
}

// Send requests a completion for text on behalf of threadID. It never
// fails: errors become FailureReplyText and are logged.
func (g *Gateway) Send(ctx context.Context, threadID model.ThreadID, text string) Reply {
	log := logger.WithThread("cloud", string(threadID))

	content, err := g.completer.Complete(ctx, text)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			log.Debug("completion canceled")
			return Reply{ThreadID: threadID, Canceled: true, Err: err}
		}
		log.Error("completion failed", "error", err)
		return Reply{ThreadID: threadID, Text: FailureReplyText, Err: err}
	}

	if content == "" {
		log.Warn("completion returned empty content")
		return Reply{ThreadID: threadID, Text: EmptyReplyText}
	}
	return Reply{ThreadID: threadID, Text: content}
}
