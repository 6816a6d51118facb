package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/victorgomez09/healthflow/internal/hooks"
	"github.com/victorgomez09/healthflow/internal/models"
)

type watchOptions struct {
	viewOptions
	Count int
}

// NewWatchCmd polls one resource and prints every completed fetch.
func NewWatchCmd(opts *rootOptions) *cobra.Command {
	wo := &watchOptions{}

	cmd := &cobra.Command{
		Use:       "watch <facilities|stock|alerts|dashboard>",
		Short:     "Poll a resource and print every refresh",
		ValidArgs: []string{hooks.ResourceFacilities, hooks.ResourceStock, hooks.ResourceAlerts, hooks.ResourceDashboard},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Long: `Poll a resource on an interval and print the result of every fetch until
interrupted or until --count results have been printed.

Examples:
  healthflow watch alerts --interval 30s
  healthflow watch stock --state Kano --count 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			interval := a.cfg.Hooks.DefaultInterval
			if cmd.Flags().Changed("interval") {
				interval = wo.Interval
			}
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive")
			}
			if err := a.withSession(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if _, err := a.requireAuth(ctx); err != nil {
				return err
			}

			hopts := hooks.Options{Enabled: true, RefetchInterval: interval}
			filters := wo.filters()
			deps := a.hookDeps()
			out := cmd.OutOrStdout()

			switch args[0] {
			case hooks.ResourceFacilities:
				h := hooks.NewFacilities(ctx, deps)
				return watch(ctx, out, h.Query, filters.Facilities, hopts, wo.Count, renderFacilities)
			case hooks.ResourceStock:
				h := hooks.NewStock(ctx, deps)
				return watch(ctx, out, h.Query, filters.Stock, hopts, wo.Count, renderStock)
			case hooks.ResourceAlerts:
				h := hooks.NewAlerts(ctx, deps)
				return watch(ctx, out, h.Query, filters.Alerts, hopts, wo.Count, func(w io.Writer, r hooks.Result[[]models.Alert]) {
					renderAlerts(w, "Alerts", r)
				})
			default:
				h := hooks.NewDashboard(ctx, deps)
				return watch(ctx, out, h.Query, filters.Dashboard, hopts, wo.Count, renderDashboard)
			}
		},
	}
	wo.bind(cmd)
	cmd.Flags().DurationVar(&wo.Interval, "interval", 0, "Polling interval (default hooks.default_interval)")
	cmd.Flags().IntVar(&wo.Count, "count", 0, "Stop after this many results (0 runs until interrupted)")

	return cmd
}

// watch drives q with params until ctx ends or count results were rendered.
func watch[P comparable, D any](
	ctx context.Context,
	out io.Writer,
	q *hooks.Query[P, D],
	params P,
	opts hooks.Options,
	count int,
	render func(io.Writer, hooks.Result[D]),
) error {
	defer q.Close()

	var (
		once     sync.Once
		done     = make(chan struct{})
		rendered int
		lastSeq  uint64
	)
	// Notifications are coalesced, so a completion may arrive already marked Loading by
	// the next poll. Settled still holds it.
	q.Subscribe(func(hooks.Result[D]) {
		r := q.Settled()
		if r.Seq == 0 || r.Seq == lastSeq {
			return
		}
		lastSeq = r.Seq
		fmt.Fprintf(out, "\n%s\n", time.Now().Format(time.DateTime))
		render(out, r)
		rendered++
		if count > 0 && rendered >= count {
			once.Do(func() { close(done) })
		}
	})
	q.Update(params, opts)

	select {
	case <-ctx.Done():
		return nil
	case <-done:
		return nil
	}
}
