// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatbox/internal/storage"
)

func newThreadsCommand(opts *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "threads",
		Aliases: []string{"list", "ls"},
		Short:   "List threads",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			summaries, err := e.threads.Summaries()
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summariesJSON(summaries))
			}
			fmt.Fprintln(cmd.OutOrStdout(), storage.FormatThreadList(summaries))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

type threadJSON struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Messages int    `json:"messages"`
	Preview  string `json:"preview,omitempty"`
}

func summariesJSON(summaries []storage.ThreadSummary) []threadJSON {
	out := make([]threadJSON, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, threadJSON{
			ID:       string(s.ID),
			Label:    s.Label,
			Messages: s.MessageCount,
			Preview:  s.Preview,
		})
	}
	return out
}

func newShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show THREAD",
		Short: "Print a thread as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			id, err := e.resolveThread(args[0])
			if err != nil {
				return err
			}
			md, err := e.threads.ExportMarkdown(id)
			if err != nil {
				return err
			}
			writeMarkdown(cmd.OutOrStdout(), md)
			return nil
		},
	}
}

func newNewCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Create a thread and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			id, err := e.threads.CreateThread()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func newDeleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete THREAD",
		Aliases: []string{"rm"},
		Short:   "Delete a thread",
		Long: `Remove a thread from the list. Its messages stay on disk until
"chatbox prune" removes them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			id, err := e.resolveThread(args[0])
			if err != nil {
				return err
			}
			if err := e.threads.DeleteThread(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
}

func newPruneCommand(opts *globalOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove stored messages of deleted threads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if dryRun {
				orphans, err := e.threads.Orphans()
				if err != nil {
					return err
				}
				for _, id := range orphans {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			}

			n, err := e.threads.Prune()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d orphaned thread(s)\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list orphaned thread ids without removing them")
	return cmd
}
