// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud talks to an OpenAI-compatible chat-completion endpoint.
//
// # Key Types
//
//   - Client: one POST per call to {base_url}/chat/completions, no retries
//   - Completer: the interface Client satisfies, for substituting fakes
//   - Gateway: wraps a Completer and turns every outcome into a Reply text
//
// Client reports failures honestly as errors. Gateway never fails: errors
// become the fixed text "Error: Failed to fetch AI response." and the cause
// is logged.
//
// # Usage
//
//	client := cloud.NewClient(key).WithModel("gpt-3.5-turbo")
//	gw := cloud.NewGateway(client)
//	reply := gw.Send(ctx, threadID, "hello")
package cloud
