package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/victorgomez09/healthflow/internal/mockapi"
)

// NewMockServerCmd serves the demo API until interrupted.
func NewMockServerCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve the HealthFlow API over demo data",
		Long: `Serve the HealthFlow REST API under /api using built-in demo data. Every demo
account uses the password "` + mockapi.DemoPassword + `".

Examples:
  healthflow mock-server --addr 127.0.0.1:8000
  healthflow --base-url http://127.0.0.1:8000/api login --email admin@example.com --password password`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			if addr == "" {
				addr = a.cfg.Mock.Addr
			}
			srv, err := mockapi.New(
				mockapi.OptionsFromConfig(a.cfg.Mock, a.cfg.Router.Origin),
				a.metrics,
				a.logManager.Named("mockapi"),
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			return srv.ListenAndServe(cmd.Context(), addr, func(bound net.Addr) {
				fmt.Fprintf(out, "Mock API listening on http://%s/api\n", bound)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default mock.addr)")

	return cmd
}
