// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks which threads are awaiting a reply.
//
// Each thread has at most one in-flight request. The Tracker owns the
// request's cancel function so that deleting a thread or quitting the
// program can abort it, and hands out a token so a late reply can tell
// whether it is still the one being waited for.
package session
