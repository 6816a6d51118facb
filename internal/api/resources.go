package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/victorgomez09/healthflow/internal/cerr"
	"github.com/victorgomez09/healthflow/internal/models"
)

func errMissing(field string) error {
	return errors.New("response is missing " + field)
}

// Facilities

func (c *Client) Facilities(ctx context.Context, q models.FacilityQuery) (*Response[[]models.Facility], error) {
	return get[[]models.Facility](ctx, c, "/facilities", q.Params())
}

func (c *Client) Facility(ctx context.Context, id string) (*Response[models.Facility], error) {
	return get[models.Facility](ctx, c, "/facilities/"+url.PathEscape(id), nil)
}

// FacilityStats ignores the pagination fields of q.
func (c *Client) FacilityStats(ctx context.Context, q models.FacilityQuery) (*Response[models.FacilityStats], error) {
	q.Pagination = models.Pagination{}
	return get[models.FacilityStats](ctx, c, "/facilities/stats", q.Params())
}

// Stock

func (c *Client) Stock(ctx context.Context, q models.StockQuery) (*Response[[]models.StockData], error) {
	return get[[]models.StockData](ctx, c, "/stock", q.Params())
}

func (c *Client) StockTrends(ctx context.Context, q models.StockQuery) (*Response[[]models.StockTrend], error) {
	q.Pagination = models.Pagination{}
	return get[[]models.StockTrend](ctx, c, "/stock/trends", q.Params())
}

func (c *Client) CommodityStats(ctx context.Context, q models.StockQuery) (*Response[[]models.CommodityStats], error) {
	q.Pagination = models.Pagination{}
	return get[[]models.CommodityStats](ctx, c, "/stock/commodity-stats", q.Params())
}

// Alerts

func (c *Client) Alerts(ctx context.Context, q models.AlertQuery) (*Response[[]models.Alert], error) {
	return get[[]models.Alert](ctx, c, "/alerts", q.Params())
}

func (c *Client) Alert(ctx context.Context, id string) (*Response[models.Alert], error) {
	return get[models.Alert](ctx, c, "/alerts/"+url.PathEscape(id), nil)
}

func (c *Client) AlertStats(ctx context.Context, q models.AlertQuery) (*Response[models.AlertStats], error) {
	q.Pagination = models.Pagination{}
	return get[models.AlertStats](ctx, c, "/alerts/stats", q.Params())
}

// UpdateAlert sends a partial alert and returns the server's updated copy.
func (c *Client) UpdateAlert(ctx context.Context, id string, update models.AlertUpdate) (*Response[models.Alert], error) {
	path := "/alerts/" + url.PathEscape(id)
	resp, err := doJSON[models.Alert](ctx, c, http.MethodPatch, path, update)
	if err != nil {
		return nil, err
	}
	if resp.Data.ID == "" {
		return nil, cerr.NewDecodeError("PATCH /alerts/"+id, http.StatusOK, errMissing("alert id"))
	}
	return resp, nil
}

// Dashboard

func (c *Client) DashboardMetrics(ctx context.Context, q models.AggregationQuery) (*Response[models.DashboardMetrics], error) {
	return get[models.DashboardMetrics](ctx, c, "/dashboard/metrics", q.Params())
}

func (c *Client) ReportingCompleteness(ctx context.Context, q models.AggregationQuery) (*Response[[]models.ReportingCompleteness], error) {
	return get[[]models.ReportingCompleteness](ctx, c, "/dashboard/reporting-completeness", q.Params())
}

// Reference data

func (c *Client) States(ctx context.Context) (*Response[[]models.State], error) {
	return get[[]models.State](ctx, c, "/geography/states", nil)
}

// LGAs lists local government areas, optionally of one state.
func (c *Client) LGAs(ctx context.Context, state string) (*Response[[]models.LGA], error) {
	return get[[]models.LGA](ctx, c, "/geography/lgas", map[string]any{"state": state})
}

func (c *Client) Commodities(ctx context.Context) (*Response[[]models.Commodity], error) {
	return get[[]models.Commodity](ctx, c, "/commodities", nil)
}

func (c *Client) CommodityCategories(ctx context.Context) (*Response[[]models.CommodityCategory], error) {
	return get[[]models.CommodityCategory](ctx, c, "/commodities/categories", nil)
}
