package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/victorgomez09/healthflow/internal/models"
	"github.com/victorgomez09/healthflow/internal/shell"
	"github.com/victorgomez09/healthflow/internal/view"
)

// viewOptions are the flags shared by open and browse.
type viewOptions struct {
	State    string
	LGA      string
	Interval time.Duration
}

func (o *viewOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.State, "state", "", "Restrict every view to one state")
	cmd.Flags().StringVar(&o.LGA, "lga", "", "Restrict every view to one LGA")
}

func (o *viewOptions) filters() shell.Filters {
	f := shell.DefaultFilters()
	f.Dashboard.State, f.Dashboard.LGA = o.State, o.LGA
	f.RecentAlerts.State, f.RecentAlerts.LGA = o.State, o.LGA
	f.Facilities.State, f.Facilities.LGA = o.State, o.LGA
	f.Stock.State, f.Stock.LGA = o.State, o.LGA
	f.Alerts.State, f.Alerts.LGA = o.State, o.LGA
	return f
}

// NewOpenCmd renders one route once.
func NewOpenCmd(opts *rootOptions) *cobra.Command {
	vo := &viewOptions{}

	cmd := &cobra.Command{
		Use:   "open [path]",
		Short: "Render the view for a route",
		Long: `Render the view the dashboard would show for a route and exit.

Routes: ` + strings.Join(view.Routes(), ", ") + `

Examples:
  healthflow open
  healthflow open /stock --state Lagos`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}

			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.withShell(path, vo.filters(), 0); err != nil {
				return err
			}

			a.shell.Init(cmd.Context())
			renderCurrent(cmd.OutOrStdout(), a.shell)
			return nil
		},
	}
	vo.bind(cmd)

	return cmd
}

// NewBrowseCmd runs an interactive navigation loop over stdin.
func NewBrowseCmd(opts *rootOptions) *cobra.Command {
	vo := &viewOptions{}

	cmd := &cobra.Command{
		Use:   "browse [path]",
		Short: "Navigate the views interactively",
		Long: `Start at a route and read navigation commands from stdin.

Commands:
  go <path>       navigate to a route
  click <href>    follow a link; links to other origins are reported, not followed
  back, forward   move through the history
  refresh         refetch the current view
  show            render the current view again
  quit            exit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}

			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()
			if err := a.withShell(path, vo.filters(), vo.Interval); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			unsubscribe := a.shell.Subscribe(func(v view.View) {
				fmt.Fprintf(out, "-> %s\n", v)
			})
			defer unsubscribe()

			a.shell.Init(cmd.Context())
			renderCurrent(out, a.shell)
			return browse(cmd.Context(), cmd.InOrStdin(), out, a.shell)
		},
	}
	vo.bind(cmd)
	cmd.Flags().DurationVar(&vo.Interval, "interval", 0, "Refetch the current view on this interval (0 disables)")

	return cmd
}

func browse(ctx context.Context, in io.Reader, out io.Writer, s *shell.Shell) error {
	r := s.Router()
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprintf(out, "%s> ", r.Path())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		verb, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)
		switch verb {
		case "":
			continue
		case "go":
			if arg == "" {
				fmt.Fprintln(out, "usage: go <path>")
				continue
			}
			r.Navigate(arg)
		case "click":
			if !r.HandleLinkClick(arg) {
				fmt.Fprintf(out, "external link: %s\n", arg)
				continue
			}
		case "back":
			if !r.Back() {
				fmt.Fprintln(out, "no previous entry")
				continue
			}
		case "forward":
			if !r.Forward() {
				fmt.Fprintln(out, "no next entry")
				continue
			}
		case "refresh":
			if _, m := s.Current(); m != nil {
				m.Refetch()
			}
		case "update":
			if err := browseUpdate(ctx, s, arg); err != nil {
				fmt.Fprintln(out, err)
				continue
			}
		case "show":
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(out, "unknown command %q\n", verb)
			continue
		}
		renderCurrent(out, s)
	}
}

// browseUpdate handles "update <id> <status>" on the alerts view.
func browseUpdate(ctx context.Context, s *shell.Shell, arg string) error {
	id, status, _ := strings.Cut(arg, " ")
	status = strings.TrimSpace(status)
	if id == "" || status == "" {
		return errors.New("usage: update <id> <status>")
	}
	st, ok := models.ParseAlertStatus(status)
	if !ok {
		return fmt.Errorf("unknown alert status %q", status)
	}
	_, m := s.Current()
	if m == nil || m.Alerts == nil {
		return errors.New("update works on the alerts view")
	}
	if err := m.Alerts.UpdateAlert(ctx, id, models.AlertUpdate{Status: &st}); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	return nil
}

// renderCurrent waits for the active view's fetches and renders it.
func renderCurrent(w io.Writer, s *shell.Shell) {
	v, m := s.Current()
	if m != nil {
		m.Wait()
	}
	renderView(w, v, m)
}
