// doctalk - a terminal client for the doc2talk knowledge assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/cli"
	"github.com/jeranaias/doctalk-tui/internal/config"
	"github.com/jeranaias/doctalk-tui/internal/controller"
	"github.com/jeranaias/doctalk-tui/internal/logging"
	"github.com/jeranaias/doctalk-tui/internal/store"
	"github.com/jeranaias/doctalk-tui/internal/ui/chat"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cli.Execute(runTUI)
}

// runTUI wires the client together and runs the Bubble Tea program. The
// TUI owns stdout, so logs go to a file under the config directory.
func runTUI(cfg config.Config) error {
	if err := os.MkdirAll(config.Dir(), 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", config.Dir(), err)
	}

	logger, err := logging.New(cfg.LogPath(), cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logger.Sync()

	st, err := store.Open(cfg.StatePath())
	if err != nil {
		return fmt.Errorf("failed to open state db %s: %w", cfg.StatePath(), err)
	}
	defer st.Close()

	client := api.NewClient(cfg.Server.URL, logger)
	ctrl := controller.New(client, st, logger)
	if id := ctrl.RestoreCurrent(); id != "" {
		logger.Info("restored session", zap.String("session", id))
	}

	model := chat.New(cfg, ctrl, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting doctalk",
		zap.String("version", Version),
		zap.String("server", cfg.Server.URL),
		zap.String("config_dir", filepath.Clean(config.Dir())),
	)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
