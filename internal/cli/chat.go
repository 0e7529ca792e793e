// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/chatbox/internal/cloud"
	"github.com/jeranaias/chatbox/internal/config"
	"github.com/jeranaias/chatbox/internal/exchange"
	"github.com/jeranaias/chatbox/internal/model"
	"github.com/jeranaias/chatbox/internal/storage"
)

const (
	historyFileName = "chat_history"
	chatPrompt      = "you> "
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides line editing and persistent history for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor and loads history from the config dir.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, historyFileName),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads one line; non-blank input is added to history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory writes history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// errQuit ends the REPL loop.
var errQuit = errors.New("quit")

// repl holds the state of one chat session on the command line.
type repl struct {
	env    *env
	out    io.Writer
	errOut io.Writer
	thread model.ThreadID
}

const replHelp = `Commands:
  /new        start a new thread
  /threads    list threads
  /open N     switch to thread N (number, id or id prefix)
  /help       show this help
  /exit       leave`

// handle processes one input line. A failed completion prints the fallback
// reply to out and a hint to errOut without ending the session.
func (r *repl) handle(ctx context.Context, input string) error {
	line := strings.TrimSpace(input)
	if line == "" {
		return nil
	}

	if strings.HasPrefix(line, "/") {
		return r.command(line)
	}

	_, reply, err := r.env.svc.Exchange(ctx, r.thread, input)
	if err != nil {
		if errors.Is(err, exchange.ErrEmptyMessage) {
			return nil
		}
		return err
	}
	writeMarkdown(r.out, reply.Text)
	if reply.Err != nil {
		fmt.Fprintln(r.errOut, cloud.HintFor(reply.Err))
	}
	return nil
}

// send runs one line under a context that Ctrl-C cancels, so an interrupt
// abandons the pending request instead of killing the process.
func (r *repl) send(ctx context.Context, input string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return r.handle(ctx, input)
}

func (r *repl) command(line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/exit", "/quit":
		return errQuit
	case "/help":
		fmt.Fprintln(r.out, replHelp)
	case "/new":
		id, err := r.env.threads.CreateThread()
		if err != nil {
			return err
		}
		r.thread = id
		fmt.Fprintf(r.out, "Started %s\n", r.label())
	case "/threads":
		summaries, err := r.env.threads.Summaries()
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, storage.FormatThreadList(summaries))
	case "/open":
		if len(fields) < 2 {
			return fmt.Errorf("usage: /open N")
		}
		id, err := r.env.resolveThread(fields[1])
		if err != nil {
			return err
		}
		r.thread = id
		fmt.Fprintf(r.out, "Switched to %s\n", r.label())
	default:
		return fmt.Errorf("unknown command %s (try /help)", fields[0])
	}
	return nil
}

func (r *repl) label() string {
	pos, err := r.env.threads.Position(r.thread)
	if err != nil || pos < 0 {
		return r.thread.Short()
	}
	return storage.Label(pos)
}

func newChatCommand(opts *globalOptions) *cobra.Command {
	var thread string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive line-based chat",
		Long: `Chat on the command line with input history. Without --thread the most
recent thread is continued, or a new one is created.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			r := &repl{env: e, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
			if r.thread, err = startThread(e, thread); err != nil {
				return err
			}

			editor := NewChatCLI()
			defer editor.Close()

			fmt.Fprintf(r.out, "chatbox %s, %s. Type /help for commands.\n", Version, r.label())
			for {
				input, err := editor.ReadInput(chatPrompt)
				if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return err
				}

				err = r.send(cmd.Context(), input)
				if errors.Is(err, errQuit) {
					return nil
				}
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				}
			}
		},
	}

	cmd.Flags().StringVarP(&thread, "thread", "t", "", "thread to continue (number, id or id prefix)")
	return cmd
}

// startThread resolves arg, or falls back to the most recent thread, or
// creates one.
func startThread(e *env, arg string) (model.ThreadID, error) {
	if arg != "" {
		return e.resolveThread(arg)
	}
	id, ok, err := e.threads.MostRecent()
	if err != nil {
		return "", err
	}
	if ok {
		return id, nil
	}
	return e.threads.CreateThread()
}
