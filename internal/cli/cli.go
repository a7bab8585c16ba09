// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli defines the doctalk command line interface. The bare command
// launches the interactive TUI; subcommands cover quick non-interactive
// lookups against the backend.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/doctalk-tui/internal/config"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configPath string
	serverURL  string
)

// loadConfig resolves the effective configuration from the config file,
// environment, and flags, in that order of increasing precedence.
func loadConfig() (config.Config, error) {
	var cfg config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}
	if serverURL != "" {
		cfg.Server.URL = serverURL
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newRootCmd builds the command tree. runTUI launches the interactive
// client; it is injected so this package stays free of Bubble Tea wiring.
func newRootCmd(runTUI func(config.Config) error) *cobra.Command {
	root := &cobra.Command{
		Use:   "doctalk",
		Short: "Terminal client for the doc2talk knowledge assistant",
		Long: `doctalk is a terminal client for a doc2talk backend.

It streams answers about an indexed codebase over a WebSocket channel and
manages chat sessions through the backend's REST API. Run it bare to open
the interactive TUI; use subcommands for quick scripting.

Keys inside the TUI:
  ctrl+p  command palette (sessions, settings, rebuild)
  enter   send message
  esc     dismiss notices
  ctrl+c  quit`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runTUI(cfg)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.doctalk/config.toml)")
	root.PersistentFlags().StringVar(&serverURL, "server", "", "backend base URL (overrides config)")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(newSessionsCmd())
	root.AddCommand(newExportCmd())
	return root
}

// Execute parses arguments and dispatches. runTUI launches the
// interactive client when no subcommand is given.
func Execute(runTUI func(config.Config) error) {
	if err := newRootCmd(runTUI).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
