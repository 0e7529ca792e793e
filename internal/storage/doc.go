// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides thread persistence for chatbox.
//
// Threads live in a kv.Store under these keys:
//
//	chat-list   -> ["id1","id2",...]                      thread index, creation order
//	chat-{id}   -> [{"sender":"user","content":"..."}]    at most MaxMessages entries
//	darkMode    -> "true" | "false"                       theme preference
//
// Corrupt data never surfaces as an error: it is logged and read as empty.
// Only failures of the underlying store are returned.
//
// # Usage
//
//	store := storage.NewThreadStore(kvStore, 100)
//	id, _ := store.CreateThread()
//	msgs, err := store.Append(id, model.NewUserMessage("hello"))
package storage
