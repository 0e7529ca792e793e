// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by every chatbox layer.
//
// # Key Types
//
//   - ThreadID: opaque identifier of one conversation thread
//   - Role: who sent a message ("user" or "assistant")
//   - Message: one immutable entry of a thread
//
// Messages serialize to the persisted form {"sender": ..., "content": ...}.
package model
