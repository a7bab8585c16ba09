// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for doctalk-tui.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides:
//   - ~/.doctalk/config.toml
//   - DOCTALK_SERVER_URL, DOCTALK_LOG_LEVEL overrides
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete doctalk-tui configuration.
type Config struct {
	// Server configuration
	Server ServerConfig `toml:"server"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Log configuration
	Log LogConfig `toml:"log"`
}

// ServerConfig locates the doc2talk backend.
type ServerConfig struct {
	// URL is the backend base URL. The REST surface lives under /api and
	// the streaming channel under /ws/{session_id}.
	URL string `toml:"url"`
}

// UIConfig contains terminal UI preferences.
type UIConfig struct {
	// Theme selects the color theme: "dark" or "light".
	Theme string `toml:"theme"`
	// MarkdownWidth caps rendered assistant message width (0 = terminal width).
	MarkdownWidth int `toml:"markdown_width"`
}

// LogConfig controls the diagnostic log file. The TUI owns stdout, so logs
// always go to a file.
type LogConfig struct {
	// Level is "debug", "info", "warn", or "error".
	Level string `toml:"level"`
	// Path overrides the log file location (default ~/.doctalk/doctalk.log).
	Path string `toml:"path"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{URL: "http://127.0.0.1:8000"},
		UI:     UIConfig{Theme: "dark", MarkdownWidth: 100},
		Log:    LogConfig{Level: "info"},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Dir returns the doctalk state directory (~/.doctalk).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".doctalk"
	}
	return filepath.Join(home, ".doctalk")
}

// Load reads configuration from the default location, applies environment
// overrides, and validates the result. A missing file is not an error; the
// defaults apply.
func Load() (Config, error) {
	return LoadFrom(filepath.Join(Dir(), "config.toml"))
}

// LoadFrom reads configuration from an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnvOverrides applies DOCTALK_* environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DOCTALK_SERVER_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("DOCTALK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks the configuration for values the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("invalid server url %q: %w", c.Server.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server url %q must use http or https", c.Server.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("server url %q has no host", c.Server.URL)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}

	switch c.UI.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("unknown theme %q", c.UI.Theme)
	}

	return nil
}

// LogPath returns the configured log file path, defaulting into Dir().
func (c *Config) LogPath() string {
	if c.Log.Path != "" {
		return c.Log.Path
	}
	return filepath.Join(Dir(), "doctalk.log")
}

// StatePath returns the durable state database path.
func (c *Config) StatePath() string {
	return filepath.Join(Dir(), "state.db")
}
