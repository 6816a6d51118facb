package main

import (
	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	ConfigPath  string
	LogConfigs  []string
	BaseURL     string
	TokenDB     string
	MetricsAddr string
}

// NewRootCmd creates the healthflow command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "healthflow",
		Short: "Terminal client for the HealthFlow health supply chain API",
		Long: `healthflow signs in to the HealthFlow API, keeps the session token on disk and
renders the dashboard, facility, stock and alert views in the terminal.

Examples:
  healthflow mock-server
  healthflow login --email admin@example.com --password password
  healthflow open /alerts
  healthflow watch stock --interval 10s
  healthflow browse`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "healthflow.yaml", "Path to the configuration file")
	flags.StringSliceVar(&opts.LogConfigs, "log-config", nil, "Additional log config files (comma separated)")
	flags.StringVar(&opts.BaseURL, "base-url", "", "Override api.base_url")
	flags.StringVar(&opts.TokenDB, "token-db", "", "Override storage.token_db")
	flags.StringVar(&opts.MetricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address")

	cmd.AddCommand(NewLoginCmd(opts))
	cmd.AddCommand(NewLogoutCmd(opts))
	cmd.AddCommand(NewWhoamiCmd(opts))
	cmd.AddCommand(NewOpenCmd(opts))
	cmd.AddCommand(NewBrowseCmd(opts))
	cmd.AddCommand(NewWatchCmd(opts))
	cmd.AddCommand(NewAlertsCmd(opts))
	cmd.AddCommand(NewRefCmd(opts))
	cmd.AddCommand(NewHistoryCmd(opts))
	cmd.AddCommand(NewMockServerCmd(opts))

	return cmd
}
