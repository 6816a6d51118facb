package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	authmodels "github.com/victorgomez09/healthflow/internal/auth/models"
	"github.com/victorgomez09/healthflow/internal/hooks"
	"github.com/victorgomez09/healthflow/internal/models"
	"github.com/victorgomez09/healthflow/internal/shell"
	"github.com/victorgomez09/healthflow/internal/view"
)

const dateLayout = "2006-01-02 15:04"

var (
	severityColors = map[models.Severity]*color.Color{
		models.SeverityCritical: color.New(color.FgRed, color.Bold),
		models.SeverityError:    color.New(color.FgRed),
		models.SeverityWarning:  color.New(color.FgYellow),
		models.SeverityInfo:     color.New(color.FgCyan),
	}
	stockColors = map[models.StockStatus]*color.Color{
		models.StockOut:       color.New(color.FgRed, color.Bold),
		models.StockLow:       color.New(color.FgYellow),
		models.StockOverstock: color.New(color.FgMagenta),
		models.StockInStock:   color.New(color.FgGreen),
	}
)

// paint colors v when stdout is a terminal; color disables itself otherwise.
func paint[K comparable](palette map[K]*color.Color, v K) string {
	if c, ok := palette[v]; ok {
		return c.Sprint(v)
	}
	return fmt.Sprint(v)
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle("%s", title)
	}
	return t
}

func renderUser(w io.Writer, u *authmodels.User) {
	t := newTable(w, "")
	t.AppendRow(table.Row{"Name", u.FullName()})
	t.AppendRow(table.Row{"Email", u.Email})
	t.AppendRow(table.Row{"Role", u.Role})
	if u.State != "" {
		t.AppendRow(table.Row{"State", u.State})
	}
	if u.LastLogin != nil {
		t.AppendRow(table.Row{"Last login", u.LastLogin.Local().Format(dateLayout)})
	}
	t.Render()
}

// renderView prints what the shell currently shows. m is nil for public views.
func renderView(w io.Writer, v view.View, m *shell.ViewModel) {
	switch v.Kind {
	case view.Landing:
		fmt.Fprintln(w, "HealthFlow: health supply chain visibility. Run `healthflow login` to sign in.")
	case view.ScaleLanding:
		fmt.Fprintln(w, "HealthFlow at scale: national stock, reporting and alert monitoring.")
	case view.Login:
		fmt.Fprintln(w, "Sign in required. Run `healthflow login --email <email> --password <password>`.")
	case view.Loading:
		fmt.Fprintln(w, "Loading...")
	case view.Protected:
		if m == nil {
			return
		}
		switch v.Name {
		case view.Dashboard:
			renderDashboard(w, m.Dashboard.State())
			renderAlerts(w, "Recent alerts", m.RecentAlerts.State())
		case view.Facilities:
			renderFacilities(w, m.Facilities.State())
		case view.Stock:
			renderStock(w, m.Stock.State())
		case view.Alerts:
			renderAlerts(w, "Alerts", m.Alerts.State())
		}
	}
}

// renderStatus prints the loading or error line of a result and reports whether the
// data should still be rendered.
func renderStatus[D any](w io.Writer, r hooks.Result[D]) bool {
	if r.Error != "" {
		fmt.Fprintln(w, "Error:", r.Error)
		return false
	}
	if r.Loading {
		fmt.Fprintln(w, "Loading...")
	}
	return true
}

func pageCaption(t table.Writer, meta *models.Meta) {
	if meta == nil || meta.TotalPages == 0 {
		return
	}
	t.SetCaption("page %d of %d, %d total", meta.Page, meta.TotalPages, meta.Total)
}

func renderDashboard(w io.Writer, r hooks.Result[models.Dashboard]) {
	if !renderStatus(w, r) || r.Data.Metrics == nil {
		return
	}

	m := r.Data.Metrics
	t := newTable(w, "Dashboard")
	t.AppendRow(table.Row{"Facilities", m.TotalFacilities})
	t.AppendRow(table.Row{"Commodities tracked", m.CommoditiesTracked})
	t.AppendRow(table.Row{"Stockouts", m.Stockouts})
	t.AppendRow(table.Row{"Reporting completeness", percent(m.ReportingCompleteness)})
	t.AppendRow(table.Row{"Last updated", m.LastUpdated.Local().Format(dateLayout)})
	t.Render()

	if len(r.Data.ReportingCompleteness) == 0 {
		return
	}
	rc := newTable(w, "Reporting completeness")
	rc.AppendHeader(table.Row{"Period", "State", "Received", "Expected", "Completeness"})
	for _, c := range r.Data.ReportingCompleteness {
		rc.AppendRow(table.Row{c.Period, c.State, c.ReceivedReports, c.ExpectedReports, percent(c.Completeness)})
	}
	rc.Render()
}

func renderFacilities(w io.Writer, r hooks.Result[[]models.Facility]) {
	if !renderStatus(w, r) {
		return
	}
	t := newTable(w, "Facilities")
	t.AppendHeader(table.Row{"ID", "Name", "State", "LGA", "Type", "Source", "Reporting"})
	for _, f := range r.Data {
		t.AppendRow(table.Row{f.ID, f.Name, f.State, f.LGA, f.Type, f.SourceSystem, f.ReportingStatus})
	}
	pageCaption(t, r.Meta)
	t.Render()
}

func renderStock(w io.Writer, r hooks.Result[[]models.StockData]) {
	if !renderStatus(w, r) {
		return
	}
	t := newTable(w, "Stock")
	t.AppendHeader(table.Row{"Facility", "Commodity", "On hand", "Reorder", "Unit", "Status"})
	for _, s := range r.Data {
		t.AppendRow(table.Row{s.FacilityName, s.CommodityName, s.StockOnHand, s.ReorderLevel, s.Unit, paint(stockColors, s.Status())})
	}
	pageCaption(t, r.Meta)
	t.Render()
}

func renderAlerts(w io.Writer, title string, r hooks.Result[[]models.Alert]) {
	if !renderStatus(w, r) {
		return
	}
	t := newTable(w, title)
	t.AppendHeader(table.Row{"ID", "Severity", "Status", "Title", "Facility", "Created"})
	for _, a := range r.Data {
		t.AppendRow(table.Row{a.ID, paint(severityColors, a.Severity), a.Status, a.Title, a.FacilityName, a.CreatedAt.Local().Format(dateLayout)})
	}
	pageCaption(t, r.Meta)
	t.Render()
}

func renderAlert(w io.Writer, a models.Alert) {
	t := newTable(w, "Alert "+a.ID)
	t.AppendRow(table.Row{"Title", a.Title})
	t.AppendRow(table.Row{"Severity", paint(severityColors, a.Severity)})
	t.AppendRow(table.Row{"Status", a.Status})
	if a.AssignedTo != "" {
		t.AppendRow(table.Row{"Assigned to", a.AssignedTo})
	}
	if a.AcknowledgedBy != "" {
		t.AppendRow(table.Row{"Acknowledged by", a.AcknowledgedBy})
	}
	if a.ResolvedBy != "" {
		t.AppendRow(table.Row{"Resolved by", a.ResolvedBy})
	}
	t.AppendRow(table.Row{"Updated", a.UpdatedAt.Local().Format(dateLayout)})
	t.Render()
}

func renderStates(w io.Writer, states []models.State) {
	t := newTable(w, "States")
	t.AppendHeader(table.Row{"Code", "Name"})
	for _, s := range states {
		t.AppendRow(table.Row{s.Code, s.Name})
	}
	t.Render()
}

func renderLGAs(w io.Writer, lgas []models.LGA) {
	t := newTable(w, "LGAs")
	t.AppendHeader(table.Row{"Code", "Name", "State"})
	for _, l := range lgas {
		t.AppendRow(table.Row{l.Code, l.Name, l.State})
	}
	t.Render()
}

func renderCommodities(w io.Writer, commodities []models.Commodity) {
	t := newTable(w, "Commodities")
	t.AppendHeader(table.Row{"ID", "Code", "Name", "Category"})
	for _, c := range commodities {
		t.AppendRow(table.Row{c.ID, c.Code, c.Name, c.Category})
	}
	t.Render()
}

func renderCategories(w io.Writer, categories []models.CommodityCategory) {
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	t := newTable(w, "Categories")
	t.AppendHeader(table.Row{"Name", "Commodities"})
	for _, c := range categories {
		t.AppendRow(table.Row{c.Name, c.Count})
	}
	t.Render()
}

func renderEvents(w io.Writer, events []authmodels.SessionEvent) {
	t := newTable(w, "Session history")
	t.AppendHeader(table.Row{"Time", "Action", "Status", "Email", "Details"})
	for _, e := range events {
		t.AppendRow(table.Row{e.CreatedAt.Local().Format(time.DateTime), e.Action, e.Status, e.Email, e.Details})
	}
	t.Render()
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
