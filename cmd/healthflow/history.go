package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewHistoryCmd prints the local session audit trail.
func NewHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		limit int
		prune time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent logins, logouts and token renewals",
		Long: `Show the session events recorded in the token database, newest first.

Examples:
  healthflow history --limit 20
  healthflow history --prune 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.withSession(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if prune > 0 {
				n, err := a.store.CleanupEvents(prune)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d events older than %s\n", n, prune)
			}

			events, err := a.store.ListEvents(limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(out, "No session events recorded")
				return nil
			}
			renderEvents(out, events)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of events to show")
	cmd.Flags().DurationVar(&prune, "prune", 0, "Delete events older than this before listing")

	return cmd
}
