// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/doctalk-tui/internal/api"
	"github.com/jeranaias/doctalk-tui/internal/export"
)

// newExportCmd writes a session transcript to a local file.
func newExportCmd() *cobra.Command {
	var (
		format    string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export a session transcript to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			exporter, err := export.ForFormat(format)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			client := api.NewClient(cfg.Server.URL, nil)
			sessionID := args[0]

			messages, err := client.GetMessages(ctx, sessionID)
			if err != nil {
				return err
			}

			transcript := &export.Transcript{
				SessionID: sessionID,
				Messages:  messages,
			}
			if list, err := client.ListSessions(ctx); err == nil {
				for _, s := range list {
					if s.ID == sessionID {
						transcript.Created = s.Created
						break
					}
				}
			}

			path, err := export.ExportToFile(transcript, exporter, outputDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", sessionID, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "md", "output format: md or json")
	cmd.Flags().StringVarP(&outputDir, "out", "o", ".", "output directory")
	return cmd
}
