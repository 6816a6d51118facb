package models

import (
	"strings"
	"time"
)

type DashboardMetrics struct {
	TotalFacilities       int       `json:"totalFacilities"`
	CommoditiesTracked    int       `json:"commoditiesTracked"`
	Stockouts             int       `json:"stockouts"`
	ReportingCompleteness float64   `json:"reportingCompleteness"`
	LastUpdated           time.Time `json:"lastUpdated"`
}

type FacilityReport struct {
	FacilityID   string     `json:"facilityId"`
	FacilityName string     `json:"facilityName"`
	HasReported  bool       `json:"hasReported"`
	ReportDate   *time.Time `json:"reportDate,omitempty"`
}

type ReportingCompleteness struct {
	Period            string           `json:"period"`
	State             string           `json:"state"`
	LGA               string           `json:"lga,omitempty"`
	ExpectedReports   int              `json:"expectedReports"`
	ReceivedReports   int              `json:"receivedReports"`
	Completeness      float64          `json:"completeness"`
	FacilityBreakdown []FacilityReport `json:"facilityBreakdown"`
}

type GroupBy string

const (
	GroupByState     GroupBy = "state"
	GroupByLGA       GroupBy = "lga"
	GroupByFacility  GroupBy = "facility"
	GroupByCommodity GroupBy = "commodity"
	GroupByDate      GroupBy = "date"
)

// AggregationQuery is the typed filter record of the dashboard. Metrics is a
// comma-separated list so the record stays comparable; it is sent as a JSON array.
type AggregationQuery struct {
	State     string
	LGA       string
	Ward      string
	StartDate string
	EndDate   string
	GroupBy   GroupBy
	Metrics   string
}

// MetricList splits Metrics, dropping blanks.
func (q AggregationQuery) MetricList() []string {
	var out []string
	for _, m := range strings.Split(q.Metrics, ",") {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

func (q AggregationQuery) Params() map[string]any {
	m := map[string]any{
		"state":     q.State,
		"lga":       q.LGA,
		"ward":      q.Ward,
		"startDate": q.StartDate,
		"endDate":   q.EndDate,
		"groupBy":   string(q.GroupBy),
	}
	if metrics := q.MetricList(); len(metrics) > 0 {
		m["metrics"] = metrics
	}
	return m
}

// Dashboard is the combined result of the dashboard hook.
type Dashboard struct {
	Metrics               *DashboardMetrics       `json:"metrics"`
	ReportingCompleteness []ReportingCompleteness `json:"reportingCompleteness"`
}
