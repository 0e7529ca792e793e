// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/chatbox/internal/nav"
)

// Version information, set from main.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	ephemeral  bool
	debug      bool
	route      string
}

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the TUI.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "chatbox",
		Short: "Multi-thread LLM chat in the terminal",
		Long: `chatbox keeps any number of chat threads with an OpenAI-compatible
completion API. Threads are stored locally and keep their last 100 messages.

Run without a command to open the TUI.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
	root.Version = Version
	root.SetVersionTemplate(versionTemplate())

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.chatbox/config.toml)")
	flags.BoolVar(&opts.ephemeral, "ephemeral", false, "keep threads in memory only")
	flags.BoolVar(&opts.debug, "debug", false, "log at debug level regardless of log.level")
	root.Flags().StringVar(&opts.route, "route", nav.Landing.Path(), "start route, / or /chat/{id}")

	root.AddCommand(
		newTUICommand(opts),
		newAskCommand(opts),
		newChatCommand(opts),
		newThreadsCommand(opts),
		newShowCommand(opts),
		newNewCommand(opts),
		newDeleteCommand(opts),
		newPruneCommand(opts),
		newConfigCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

func versionTemplate() string {
	if GitCommit != "unknown" && GitCommit != "" {
		return fmt.Sprintf("chatbox %s\n  commit: %s\n  built:  %s\n", Version, GitCommit, BuildDate)
	}
	return fmt.Sprintf("chatbox %s\n", Version)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), versionTemplate())
		},
	}
}
