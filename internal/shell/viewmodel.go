package shell

import (
	"context"
	"time"

	"github.com/victorgomez09/healthflow/internal/hooks"
	"github.com/victorgomez09/healthflow/internal/models"
	"github.com/victorgomez09/healthflow/internal/view"
)

// Filters are the initial filter records of each protected view.
type Filters struct {
	Dashboard    models.AggregationQuery
	RecentAlerts models.AlertQuery
	Facilities   models.FacilityQuery
	Stock        models.StockQuery
	Alerts       models.AlertQuery
}

// DefaultFilters matches what the web dashboard shows on first load.
func DefaultFilters() Filters {
	return Filters{
		RecentAlerts: models.AlertQuery{
			Status:     models.AlertNew,
			Pagination: models.Pagination{Limit: 5, SortBy: "createdAt", SortOrder: models.SortDesc},
		},
		Facilities: models.FacilityQuery{Pagination: models.Pagination{Page: 1, Limit: 20, SortBy: "name", SortOrder: models.SortAsc}},
		Stock:      models.StockQuery{Pagination: models.Pagination{Page: 1, Limit: 20}},
		Alerts:     models.AlertQuery{Pagination: models.Pagination{Page: 1, Limit: 20, SortBy: "createdAt", SortOrder: models.SortDesc}},
	}
}

// ViewModel owns the hooks of one protected view. Only the hooks of its view are set.
type ViewModel struct {
	View view.View

	Dashboard    *hooks.Dashboard
	RecentAlerts *hooks.Alerts
	Facilities   *hooks.Facilities
	Stock        *hooks.Stock
	Alerts       *hooks.Alerts

	opts hooks.Options
}

func newViewModel(ctx context.Context, v view.View, deps hooks.Deps, filters Filters, interval time.Duration) *ViewModel {
	m := &ViewModel{
		View: v,
		opts: hooks.Options{Enabled: true, RefetchInterval: interval},
	}

	switch v.Name {
	case view.Dashboard:
		m.Dashboard = hooks.NewDashboard(ctx, deps)
		m.Dashboard.Update(filters.Dashboard, m.opts)
		m.RecentAlerts = hooks.NewAlerts(ctx, deps)
		m.RecentAlerts.Update(filters.RecentAlerts, m.opts)
	case view.Facilities:
		m.Facilities = hooks.NewFacilities(ctx, deps)
		m.Facilities.Update(filters.Facilities, m.opts)
	case view.Stock:
		m.Stock = hooks.NewStock(ctx, deps)
		m.Stock.Update(filters.Stock, m.opts)
	case view.Alerts:
		m.Alerts = hooks.NewAlerts(ctx, deps)
		m.Alerts.Update(filters.Alerts, m.opts)
	}
	return m
}

// Options are the hook options the view model was created with.
func (m *ViewModel) Options() hooks.Options {
	return m.opts
}

// Refetch re-runs every hook of the view.
func (m *ViewModel) Refetch() {
	m.each(func(h hook) { h.Refetch() })
}

// Wait blocks until every fetch issued before the call has completed.
func (m *ViewModel) Wait() {
	m.each(func(h hook) { h.Wait() })
}

// Close stops polling and drops pending results of every hook.
func (m *ViewModel) Close() {
	m.each(func(h hook) { h.Close() })
}

// hook is the lifecycle surface shared by every resource hook.
type hook interface {
	Refetch()
	Wait()
	Close()
}

func (m *ViewModel) each(fn func(hook)) {
	if m.Dashboard != nil {
		fn(m.Dashboard)
	}
	if m.RecentAlerts != nil {
		fn(m.RecentAlerts)
	}
	if m.Facilities != nil {
		fn(m.Facilities)
	}
	if m.Stock != nil {
		fn(m.Stock)
	}
	if m.Alerts != nil {
		fn(m.Alerts)
	}
}
