package models

import "time"

type AlertType string

const (
	AlertStockout      AlertType = "stockout"
	AlertLowStock      AlertType = "low_stock"
	AlertLateReporting AlertType = "late_reporting"
	AlertDataQuality   AlertType = "data_quality"
	AlertSystemError   AlertType = "system_error"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

type AlertStatus string

const (
	AlertNew          AlertStatus = "new"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertInProgress   AlertStatus = "in_progress"
	AlertResolved     AlertStatus = "resolved"
	AlertDismissed    AlertStatus = "dismissed"
)

// ParseAlertStatus validates a status name.
func ParseAlertStatus(s string) (AlertStatus, bool) {
	switch st := AlertStatus(s); st {
	case AlertNew, AlertAcknowledged, AlertInProgress, AlertResolved, AlertDismissed:
		return st, true
	}
	return "", false
}

type Evidence struct {
	ReportID   string    `json:"reportId,omitempty"`
	DataValues []any     `json:"dataValues,omitempty"`
	SourceURL  string    `json:"sourceUrl,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type Alert struct {
	ID             string         `json:"id"`
	Type           AlertType      `json:"type"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Severity       Severity       `json:"severity"`
	FacilityID     string         `json:"facilityId,omitempty"`
	FacilityName   string         `json:"facilityName,omitempty"`
	CommodityID    string         `json:"commodityId,omitempty"`
	CommodityName  string         `json:"commodityName,omitempty"`
	State          string         `json:"state,omitempty"`
	LGA            string         `json:"lga,omitempty"`
	SourceSystem   SourceSystem   `json:"sourceSystem"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	Evidence       *Evidence      `json:"evidence,omitempty"`
	Status         AlertStatus    `json:"status"`
	AssignedTo     string         `json:"assignedTo,omitempty"`
	AcknowledgedAt *time.Time     `json:"acknowledgedAt,omitempty"`
	AcknowledgedBy string         `json:"acknowledgedBy,omitempty"`
	ResolvedAt     *time.Time     `json:"resolvedAt,omitempty"`
	ResolvedBy     string         `json:"resolvedBy,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// AlertUpdate is the partial alert sent with PATCH /alerts/{id}. Nil fields are left
// untouched by the server.
type AlertUpdate struct {
	Status         *AlertStatus `json:"status,omitempty"`
	AssignedTo     *string      `json:"assignedTo,omitempty"`
	AcknowledgedBy *string      `json:"acknowledgedBy,omitempty"`
	ResolvedBy     *string      `json:"resolvedBy,omitempty"`
}

// Apply returns a copy of a with the non-nil fields of u applied and the transition
// timestamps set.
func (u AlertUpdate) Apply(a Alert, now time.Time) Alert {
	if u.Status != nil {
		a.Status = *u.Status
		switch a.Status {
		case AlertAcknowledged:
			a.AcknowledgedAt = &now
		case AlertResolved:
			a.ResolvedAt = &now
		}
	}
	if u.AssignedTo != nil {
		a.AssignedTo = *u.AssignedTo
	}
	if u.AcknowledgedBy != nil {
		a.AcknowledgedBy = *u.AcknowledgedBy
	}
	if u.ResolvedBy != nil {
		a.ResolvedBy = *u.ResolvedBy
	}
	a.UpdatedAt = now
	return a
}

type AlertStats struct {
	Total           int            `json:"total"`
	ByType          map[string]int `json:"byType"`
	BySeverity      map[string]int `json:"bySeverity"`
	ByStatus        map[string]int `json:"byStatus"`
	BySourceSystem  map[string]int `json:"bySourceSystem"`
	RecentCount     int            `json:"recentCount"`
	UnresolvedCount int            `json:"unresolvedCount"`
}

// AlertQuery is the typed filter record of the alerts view.
type AlertQuery struct {
	Type         AlertType
	Severity     Severity
	Status       AlertStatus
	FacilityID   string
	State        string
	LGA          string
	SourceSystem SourceSystem
	DateFrom     string
	DateTo       string
	AssignedTo   string
	Pagination
}

func (q AlertQuery) Params() map[string]any {
	m := map[string]any{
		"type":         string(q.Type),
		"severity":     string(q.Severity),
		"status":       string(q.Status),
		"facilityId":   q.FacilityID,
		"state":        q.State,
		"lga":          q.LGA,
		"sourceSystem": string(q.SourceSystem),
		"dateFrom":     q.DateFrom,
		"dateTo":       q.DateTo,
		"assignedTo":   q.AssignedTo,
	}
	q.Pagination.params(m)
	return m
}
