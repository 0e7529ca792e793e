// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// THREAD ID
// =============================================================================

// ThreadID identifies a conversation thread.
type ThreadID string

// NewThreadID returns a fresh random (v4) thread id.
func NewThreadID() ThreadID {
	return ThreadID(uuid.NewString())
}

// String returns the id as a plain string.
func (id ThreadID) String() string {
	return string(id)
}

// Short returns the first 8 characters of the id, for compact display.
func (id ThreadID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in a thread. Messages are never edited once
// created.
type Message struct {
	Sender  Role   `json:"sender"`
	Content string `json:"content"`
}

// NewUserMessage creates a message typed by the user.
// Content is kept as typed apart from NFC normalization.
func NewUserMessage(content string) Message {
	return Message{Sender: RoleUser, Content: norm.NFC.String(content)}
}

// NewAssistantMessage creates a message produced by the completion provider.
func NewAssistantMessage(content string) Message {
	return Message{Sender: RoleAssistant, Content: norm.NFC.String(content)}
}

// IsUser reports whether the message was sent by the user.
func (m Message) IsUser() bool {
	return m.Sender == RoleUser
}

// Preview returns the first line of the content, for thread summaries.
func (m Message) Preview() string {
	line, _, _ := strings.Cut(strings.TrimSpace(m.Content), "\n")
	return line
}
