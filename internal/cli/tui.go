// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/chatbox/internal/app"
	"github.com/jeranaias/chatbox/internal/nav"
)

func newTUICommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal UI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.route, "route", nav.Landing.Path(), "start route, / or /chat/{id}")
	return cmd
}

// runTUI opens the environment and runs the Bubble Tea program until quit.
func runTUI(cmd *cobra.Command, opts *globalOptions) error {
	route, err := nav.Parse(opts.route)
	if err != nil {
		return err
	}

	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	m, err := app.New(e.svc, app.Options{
		Route:       route,
		Theme:       e.cfg.UI.Theme,
		SidebarOpen: e.cfg.UI.SidebarOpen,
		Watch:       true,
	})
	if err != nil {
		return err
	}
	defer m.Close()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running chatbox: %w", err)
	}
	return nil
}
