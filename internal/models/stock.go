package models

import "time"

type StockStatus string

const (
	StockInStock   StockStatus = "in_stock"
	StockLow       StockStatus = "low_stock"
	StockOut       StockStatus = "stockout"
	StockOverstock StockStatus = "overstock"
)

type StockData struct {
	ID                string       `json:"id"`
	FacilityID        string       `json:"facilityId"`
	FacilityName      string       `json:"facilityName"`
	CommodityID       string       `json:"commodityId"`
	CommodityName     string       `json:"commodityName"`
	CommodityCode     string       `json:"commodityCode"`
	CommodityCategory string       `json:"commodityCategory"`
	StockOnHand       int          `json:"stockOnHand"`
	ReorderLevel      int          `json:"reorderLevel"`
	MaxStock          int          `json:"maxStock"`
	Unit              string       `json:"unit"`
	BatchNumber       string       `json:"batchNumber,omitempty"`
	ExpiryDate        string       `json:"expiryDate,omitempty"`
	LastUpdated       time.Time    `json:"lastUpdated"`
	SourceSystem      SourceSystem `json:"sourceSystem"`
	ReportingPeriod   string       `json:"reportingPeriod"`
}

// Status derives the stock status from the levels.
func (s StockData) Status() StockStatus {
	switch {
	case s.StockOnHand <= 0:
		return StockOut
	case s.StockOnHand < s.ReorderLevel:
		return StockLow
	case s.MaxStock > 0 && s.StockOnHand > s.MaxStock:
		return StockOverstock
	default:
		return StockInStock
	}
}

type StockTrend struct {
	Date         string `json:"date"`
	StockOnHand  int    `json:"stockOnHand"`
	ReorderLevel int    `json:"reorderLevel"`
	FacilityID   string `json:"facilityId"`
	CommodityID  string `json:"commodityId"`
}

type CommodityStats struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Category           string    `json:"category"`
	TotalFacilities    int       `json:"totalFacilities"`
	StockedFacilities  int       `json:"stockedFacilities"`
	StockoutFacilities int       `json:"stockoutFacilities"`
	LowStockFacilities int       `json:"lowStockFacilities"`
	AverageStock       float64   `json:"averageStock"`
	LastUpdated        time.Time `json:"lastUpdated"`
}

// StockQuery is the typed filter record of the stock view.
type StockQuery struct {
	FacilityID        string
	State             string
	LGA               string
	CommodityCategory string
	CommodityID       string
	AlertType         string
	Severity          string
	DateFrom          string
	DateTo            string
	StockStatus       StockStatus
	SourceSystem      SourceSystem
	Pagination
}

func (q StockQuery) Params() map[string]any {
	m := map[string]any{
		"facilityId":        q.FacilityID,
		"state":             q.State,
		"lga":               q.LGA,
		"commodityCategory": q.CommodityCategory,
		"commodityId":       q.CommodityID,
		"alertType":         q.AlertType,
		"severity":          q.Severity,
		"dateFrom":          q.DateFrom,
		"dateTo":            q.DateTo,
		"stockStatus":       string(q.StockStatus),
		"sourceSystem":      string(q.SourceSystem),
	}
	q.Pagination.params(m)
	return m
}
