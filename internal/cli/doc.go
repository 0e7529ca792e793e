// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package cli implements the chatbox command line.

	chatbox                       open the TUI (same as "chatbox tui")
	chatbox --route /chat/{id}    open the TUI on a thread
	chatbox ask [--thread T] MSG  one exchange, reply on stdout
	chatbox chat [--thread T]     line-based REPL with history
	chatbox threads               list threads
	chatbox show T                print a thread as Markdown
	chatbox new                   create a thread and print its id
	chatbox delete T              delete a thread
	chatbox prune                 remove messages of deleted threads
	chatbox config show|get|set|path|keys
	chatbox version

A thread argument T is a 1-based "Chat N" number, a full id or a unique id
prefix.

Every command shares --config (config file path) and --ephemeral (memory
backend, nothing is written to disk). Commands return errors; main prints
them as "Error: ..." and exits 1.
*/
package cli
