// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jeranaias/chatbox/internal/model"
	"github.com/jeranaias/chatbox/internal/util"
)

// ThreadSummary describes one indexed thread for listings.
type ThreadSummary struct {
	ID           model.ThreadID
	Label        string
	MessageCount int
	Preview      string // first user message, single line
}

// Summaries returns one summary per indexed thread, in creation order.
func (s *ThreadStore) Summaries() ([]ThreadSummary, error) {
	ids, err := s.ListThreads()
	if err != nil {
		return nil, err
	}

	summaries := make([]ThreadSummary, 0, len(ids))
	for i, id := range ids {
		msgs, err := s.Load(id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, ThreadSummary{
			ID:           id,
			Label:        Label(i),
			MessageCount: len(msgs),
			Preview:      firstUserPreview(msgs),
		})
	}
	return summaries, nil
}

func firstUserPreview(msgs []model.Message) string {
	for _, m := range msgs {
		if m.IsUser() && strings.TrimSpace(m.Content) != "" {
			return m.Preview()
		}
	}
	return ""
}

// ExportMarkdown renders an indexed thread as Markdown.
func (s *ThreadStore) ExportMarkdown(id model.ThreadID) (string, error) {
	pos, err := s.Position(id)
	if err != nil {
		return "", err
	}
	if pos < 0 {
		return "", fmt.Errorf("%w: %s", ErrThreadNotFound, id)
	}

	msgs, err := s.Load(id)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("# " + Label(pos) + "\n\n")
	sb.WriteString("Thread: `" + string(id) + "`\n\n")
	sb.WriteString("---\n\n")

	if len(msgs) == 0 {
		sb.WriteString("_No messages yet._\n")
		return sb.String(), nil
	}

	for _, msg := range msgs {
		sb.WriteString("**" + msg.Sender.DisplayName() + "**:\n\n")
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n---\n\n")
	}
	return sb.String(), nil
}

// FormatThreadList formats summaries as a table for terminal display.
func FormatThreadList(summaries []ThreadSummary) string {
	if len(summaries) == 0 {
		return "No threads yet. Start one with 'chatbox new'."
	}

	var sb strings.Builder
	sb.WriteString(util.PadRight("Thread", 10) + " " + util.PadRight("ID", 36) + " " + util.PadRight("Messages", 8) + " Preview\n")
	sb.WriteString(strings.Repeat("-", 90) + "\n")

	for _, s := range summaries {
		sb.WriteString(util.PadRight(s.Label, 10) + " " +
			util.PadRight(string(s.ID), 36) + " " +
			util.PadRight(strconv.Itoa(s.MessageCount), 8) + " " +
			util.TruncateWidth(util.SingleLine(s.Preview), 32) + "\n")
	}
	return sb.String()
}
