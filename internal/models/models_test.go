package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueriesAreComparable(t *testing.T) {
	a := FacilityQuery{State: "Lagos", Pagination: Pagination{Page: 1, Limit: 20}}
	b := FacilityQuery{State: "Lagos", Pagination: Pagination{Page: 1, Limit: 20}}
	assert.True(t, a == b)

	b.State = "Kano"
	assert.False(t, a == b)
}

func TestFacilityQuery_Params(t *testing.T) {
	q := FacilityQuery{State: "Lagos", Type: FacilityPrimary, Pagination: Pagination{Page: 2}}
	p := q.Params()

	assert.Equal(t, "Lagos", p["state"])
	assert.Equal(t, "primary", p["type"])
	assert.Equal(t, 2, p["page"])
	assert.NotContains(t, p, "limit")
	assert.Equal(t, "", p["lga"])
}

func TestAggregationQuery_Metrics(t *testing.T) {
	q := AggregationQuery{Metrics: "stockouts, completeness,,"}
	assert.Equal(t, []string{"stockouts", "completeness"}, q.MetricList())
	assert.Equal(t, []string{"stockouts", "completeness"}, q.Params()["metrics"])

	assert.NotContains(t, AggregationQuery{}.Params(), "metrics")
}

func TestAlertUpdate_Apply(t *testing.T) {
	now := time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)
	status := AlertResolved
	by := "Dr. Johnson"
	before := Alert{ID: "1", Status: AlertNew, Title: "Stockout"}

	after := AlertUpdate{Status: &status, ResolvedBy: &by}.Apply(before, now)

	assert.Equal(t, AlertResolved, after.Status)
	assert.Equal(t, "Dr. Johnson", after.ResolvedBy)
	assert.Equal(t, &now, after.ResolvedAt)
	assert.Equal(t, now, after.UpdatedAt)
	assert.Equal(t, "Stockout", after.Title)
	assert.Equal(t, AlertNew, before.Status)
}

func TestStockData_Status(t *testing.T) {
	assert.Equal(t, StockOut, StockData{StockOnHand: 0, ReorderLevel: 200}.Status())
	assert.Equal(t, StockLow, StockData{StockOnHand: 25, ReorderLevel: 50}.Status())
	assert.Equal(t, StockOverstock, StockData{StockOnHand: 600, ReorderLevel: 100, MaxStock: 500}.Status())
	assert.Equal(t, StockInStock, StockData{StockOnHand: 150, ReorderLevel: 100, MaxStock: 500}.Status())
}

func TestParseAlertStatus(t *testing.T) {
	s, ok := ParseAlertStatus("in_progress")
	assert.True(t, ok)
	assert.Equal(t, AlertInProgress, s)

	_, ok = ParseAlertStatus("closed")
	assert.False(t, ok)
}
