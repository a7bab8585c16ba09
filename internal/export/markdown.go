// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"strings"

	"github.com/jeranaias/doctalk-tui/internal/api"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders a transcript as a readable Markdown document.
// Assistant messages are already Markdown and pass through untouched; user
// messages are quoted so code-looking questions do not break the document
// structure.
type MarkdownExporter struct{}

// Export renders the transcript.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# doctalk session ")
	b.WriteString(t.SessionID)
	b.WriteString("\n\n")
	if t.Created != "" {
		b.WriteString("Created: ")
		b.WriteString(t.Created)
		b.WriteString("\n\n")
	}
	b.WriteString("---\n\n")

	for _, msg := range t.Messages {
		if msg.Role == api.RoleUser {
			b.WriteString("## You\n\n")
			for _, line := range strings.Split(msg.Content, "\n") {
				b.WriteString("> ")
				b.WriteString(line)
				b.WriteString("\n")
			}
			b.WriteString("\n")
			continue
		}
		b.WriteString("## doc2talk\n\n")
		b.WriteString(msg.Content)
		if !strings.HasSuffix(msg.Content, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return []byte(b.String()), nil
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}
