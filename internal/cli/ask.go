// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatbox/internal/cloud"
	"github.com/jeranaias/chatbox/internal/model"
)

// errNoMessage is returned by ask when neither args nor stdin carry text.
var errNoMessage = errors.New("no message given")

func newAskCommand(opts *globalOptions) *cobra.Command {
	var thread string

	cmd := &cobra.Command{
		Use:   "ask [message...]",
		Short: "Send one message and print the reply",
		Long: `Send one message and print the assistant's reply.

Without --thread a new thread is created. With no message arguments the
message is read from stdin.`,
		Example: `  chatbox ask "What is a goroutine?"
  echo "Summarize this" | chatbox ask --thread 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "" && !IsTTY() {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				text = string(data)
			}
			if strings.TrimSpace(text) == "" {
				return errNoMessage
			}

			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			var id model.ThreadID
			if thread != "" {
				id, err = e.resolveThread(thread)
			} else {
				id, err = e.threads.CreateThread()
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "thread %s\n", id)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			_, reply, err := e.svc.Exchange(ctx, id, text)
			if err != nil {
				return err
			}
			writeMarkdown(cmd.OutOrStdout(), reply.Text)
			if reply.Err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), cloud.HintFor(reply.Err))
				return fmt.Errorf("completion failed: %w", reply.Err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&thread, "thread", "t", "", "thread to continue (number, id or id prefix)")
	return cmd
}
