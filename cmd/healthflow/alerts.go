package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/victorgomez09/healthflow/internal/hooks"
	"github.com/victorgomez09/healthflow/internal/models"
)

const writePermission = "write"

// NewAlertsCmd groups the alert commands that act on a single alert.
func NewAlertsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Inspect and update alerts",
	}
	cmd.AddCommand(newAlertShowCmd(opts))
	cmd.AddCommand(newAlertUpdateCmd(opts))
	return cmd
}

func newAlertShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.withSession(); err != nil {
				return err
			}
			if _, err := a.requireAuth(cmd.Context()); err != nil {
				return err
			}

			resp, err := a.client.Alert(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderAlert(cmd.OutOrStdout(), resp.Data)
			return nil
		},
	}
}

func newAlertUpdateCmd(opts *rootOptions) *cobra.Command {
	var status, assignee string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the status or assignee of an alert",
		Long: `Change the status or assignee of an alert. The server records who acknowledged
or resolved it.

Statuses: new, acknowledged, in_progress, resolved, dismissed

Examples:
  healthflow alerts update 1 --status acknowledged
  healthflow alerts update 2 --assigned-to "Jane Analyst"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var update models.AlertUpdate
			if cmd.Flags().Changed("status") {
				st, ok := models.ParseAlertStatus(status)
				if !ok {
					return fmt.Errorf("unknown alert status %q", status)
				}
				update.Status = &st
			}
			if cmd.Flags().Changed("assigned-to") {
				update.AssignedTo = &assignee
			}
			if update.Status == nil && update.AssignedTo == nil {
				return fmt.Errorf("nothing to update: pass --status or --assigned-to")
			}

			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.withSession(); err != nil {
				return err
			}
			snap, err := a.requireAuth(cmd.Context())
			if err != nil {
				return err
			}
			if !snap.User.HasPermission(writePermission) {
				return fmt.Errorf("%s accounts cannot update alerts", snap.User.Role)
			}

			updated, err := updateAlert(cmd.Context(), a, args[0], update)
			if err != nil {
				return err
			}
			renderAlert(cmd.OutOrStdout(), updated)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "New status")
	cmd.Flags().StringVar(&assignee, "assigned-to", "", "Assignee name")

	return cmd
}

// updateAlert patches id through an alerts hook holding the unfiltered list, the same
// path the alerts view takes, and returns the server's copy.
func updateAlert(ctx context.Context, a *app, id string, update models.AlertUpdate) (models.Alert, error) {
	h := hooks.NewAlerts(ctx, a.hookDeps())
	defer h.Close()

	h.Update(models.AlertQuery{}, hooks.DefaultOptions())
	h.Wait()
	if err := h.UpdateAlert(ctx, id, update); err != nil {
		return models.Alert{}, err
	}

	for _, alert := range h.State().Data {
		if alert.ID == id {
			return alert, nil
		}
	}
	// the server paged the list without it
	resp, err := a.client.Alert(ctx, id)
	if err != nil {
		return models.Alert{}, err
	}
	return resp.Data, nil
}
