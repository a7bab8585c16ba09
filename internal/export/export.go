// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes session transcripts to local files. Supports
// Markdown for reading and JSON for downstream tooling.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/doctalk-tui/internal/api"
)

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is one session's exportable conversation.
type Transcript struct {
	SessionID string
	Created   string
	Messages  []api.Message
}

// =============================================================================
// EXPORTER INTERFACE
// =============================================================================

// Exporter converts a transcript to one output format.
type Exporter interface {
	// Export renders the transcript.
	Export(t *Transcript) ([]byte, error)

	// FileExtension returns the output extension, e.g. ".md".
	FileExtension() string
}

// ForFormat returns the exporter for a format name.
func ForFormat(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q (want md or json)", format)
	}
}

// =============================================================================
// FILE OUTPUT
// =============================================================================

// ExportToFile renders the transcript and writes it under outputDir,
// returning the written path. The filename embeds the session id and the
// export time, so repeated exports never clobber each other.
func ExportToFile(t *Transcript, exporter Exporter, outputDir string) (string, error) {
	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", outputDir, err)
	}

	filename := fmt.Sprintf("doctalk_%s_%s%s",
		sanitizeFilename(t.SessionID),
		time.Now().Format("20060102_150405"),
		exporter.FileExtension(),
	)
	path := filepath.Join(outputDir, filename)

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// sanitizeFilename keeps only characters safe for filenames on every
// supported platform.
func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if len(out) > 40 {
		out = out[:40]
	}
	if out == "" {
		out = "session"
	}
	return out
}
