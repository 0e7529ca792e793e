// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat view of the chatbox TUI.

The view shows one thread at a time: a scrolling message list (bubbles
viewport) above a multi-line composer (bubbles textarea) and the caption
"AI can make mistakes. Check important info.".

User messages are right-aligned bubbles. Assistant messages are left-aligned
and rendered as Markdown with glamour, using the glamour style that matches
the active palette.

# Sending

Enter submits the composer through exchange.Service.Submit, which persists
the user message and marks the thread pending. The gateway call then runs in
a tea.Cmd (SendCmd) and comes back as a ReplyMsg. The owner of the view
applies the ReplyMsg with exchange.Service.Complete, so a reply for a thread
that is no longer displayed still lands in its own thread.

While the displayed thread awaits a reply the view shows a spinner and submit
is disabled. Other threads can still be used.
*/
package chat
