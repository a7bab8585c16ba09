// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/doctalk-tui/internal/api"
)

const requestTimeout = 15 * time.Second

// newSessionsCmd lists and manages backend sessions without entering the
// TUI. Useful for scripting and for checking what the palette will show.
func newSessionsCmd() *cobra.Command {
	sessions := &cobra.Command{
		Use:   "sessions",
		Short: "List backend sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			client := api.NewClient(cfg.Server.URL, nil)
			list, err := client.ListSessions(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sessions.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SESSION\tMESSAGES\tCREATED")
			for _, s := range list {
				fmt.Fprintf(w, "%s\t%d\t%s\n", s.ID, s.MessageCount, s.Created)
			}
			return w.Flush()
		},
	}

	sessions.AddCommand(&cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a backend session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()

			client := api.NewClient(cfg.Server.URL, nil)
			if err := client.DeleteSession(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	})

	return sessions
}
