package main

import (
	"github.com/spf13/cobra"
)

// NewRefCmd prints reference data.
func NewRefCmd(opts *rootOptions) *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:       "ref <states|lgas|commodities|categories>",
		Short:     "List reference data",
		ValidArgs: []string{"states", "lgas", "commodities", "categories"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.withSession(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if _, err := a.requireAuth(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch args[0] {
			case "states":
				resp, err := a.client.States(ctx)
				if err != nil {
					return err
				}
				renderStates(out, resp.Data)
			case "lgas":
				resp, err := a.client.LGAs(ctx, state)
				if err != nil {
					return err
				}
				renderLGAs(out, resp.Data)
			case "commodities":
				resp, err := a.client.Commodities(ctx)
				if err != nil {
					return err
				}
				renderCommodities(out, resp.Data)
			case "categories":
				resp, err := a.client.CommodityCategories(ctx)
				if err != nil {
					return err
				}
				renderCategories(out, resp.Data)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "Only LGAs of this state (name or code)")

	return cmd
}
