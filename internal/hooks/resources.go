package hooks

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/victorgomez09/healthflow/internal/api"
	"github.com/victorgomez09/healthflow/internal/models"
	"github.com/victorgomez09/healthflow/internal/obs"
)

// Client is the part of the API gateway the resource hooks use.
type Client interface {
	Facilities(ctx context.Context, q models.FacilityQuery) (*api.Response[[]models.Facility], error)
	Stock(ctx context.Context, q models.StockQuery) (*api.Response[[]models.StockData], error)
	Alerts(ctx context.Context, q models.AlertQuery) (*api.Response[[]models.Alert], error)
	UpdateAlert(ctx context.Context, id string, update models.AlertUpdate) (*api.Response[models.Alert], error)
	DashboardMetrics(ctx context.Context, q models.AggregationQuery) (*api.Response[models.DashboardMetrics], error)
	ReportingCompleteness(ctx context.Context, q models.AggregationQuery) (*api.Response[[]models.ReportingCompleteness], error)
}

// Resource names, used as hook names in logs and metrics.
const (
	ResourceFacilities = "facilities"
	ResourceStock      = "stock"
	ResourceAlerts     = "alerts"
	ResourceDashboard  = "dashboard"
)

// Deps are shared by every hook of a view.
type Deps struct {
	Client  Client
	Metrics *obs.Metrics
	Logger  *zap.Logger
}

type Facilities struct {
	*Query[models.FacilityQuery, []models.Facility]
}

func NewFacilities(ctx context.Context, d Deps) *Facilities {
	fetch := func(ctx context.Context, q models.FacilityQuery) ([]models.Facility, *models.Meta, error) {
		resp, err := d.Client.Facilities(ctx, q)
		if err != nil {
			return nil, nil, err
		}
		return resp.Data, resp.Meta, nil
	}
	return &Facilities{NewQuery(ctx, ResourceFacilities, fetch, d.Metrics, d.Logger)}
}

type Stock struct {
	*Query[models.StockQuery, []models.StockData]
}

func NewStock(ctx context.Context, d Deps) *Stock {
	fetch := func(ctx context.Context, q models.StockQuery) ([]models.StockData, *models.Meta, error) {
		resp, err := d.Client.Stock(ctx, q)
		if err != nil {
			return nil, nil, err
		}
		return resp.Data, resp.Meta, nil
	}
	return &Stock{NewQuery(ctx, ResourceStock, fetch, d.Metrics, d.Logger)}
}

type Alerts struct {
	*Query[models.AlertQuery, []models.Alert]
	client Client
}

func NewAlerts(ctx context.Context, d Deps) *Alerts {
	fetch := func(ctx context.Context, q models.AlertQuery) ([]models.Alert, *models.Meta, error) {
		resp, err := d.Client.Alerts(ctx, q)
		if err != nil {
			return nil, nil, err
		}
		return resp.Data, resp.Meta, nil
	}
	return &Alerts{
		Query:  NewQuery(ctx, ResourceAlerts, fetch, d.Metrics, d.Logger),
		client: d.Client,
	}
}

// UpdateAlert patches one alert on the server. On success only the item with that id is
// replaced by the server's copy; on failure Error is set, the list is kept and the error
// is returned.
func (a *Alerts) UpdateAlert(ctx context.Context, id string, update models.AlertUpdate) error {
	resp, err := a.client.UpdateAlert(ctx, id, update)
	if err != nil {
		a.mutate(func(r Result[[]models.Alert]) Result[[]models.Alert] {
			r.Error = err.Error()
			return r
		})
		return err
	}

	updated := resp.Data
	a.mutate(func(r Result[[]models.Alert]) Result[[]models.Alert] {
		alerts := make([]models.Alert, len(r.Data))
		copy(alerts, r.Data)
		for i := range alerts {
			if alerts[i].ID == id {
				alerts[i] = updated
			}
		}
		r.Data = alerts
		return r
	})
	return nil
}

type Dashboard struct {
	*Query[models.AggregationQuery, models.Dashboard]
}

// NewDashboard fetches metrics and reporting completeness concurrently. If either fails
// both are cleared.
func NewDashboard(ctx context.Context, d Deps) *Dashboard {
	fetch := func(ctx context.Context, q models.AggregationQuery) (models.Dashboard, *models.Meta, error) {
		var (
			metrics   *models.DashboardMetrics
			reporting []models.ReportingCompleteness
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			resp, err := d.Client.DashboardMetrics(gctx, q)
			if err != nil {
				return err
			}
			m := resp.Data
			metrics = &m
			return nil
		})
		g.Go(func() error {
			resp, err := d.Client.ReportingCompleteness(gctx, q)
			if err != nil {
				return err
			}
			reporting = resp.Data
			return nil
		})
		if err := g.Wait(); err != nil {
			return models.Dashboard{}, nil, err
		}
		return models.Dashboard{Metrics: metrics, ReportingCompleteness: reporting}, nil, nil
	}
	return &Dashboard{NewQuery(ctx, ResourceDashboard, fetch, d.Metrics, d.Logger)}
}
