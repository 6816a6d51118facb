package models

import "time"

type FacilityType string

const (
	FacilityPrimary   FacilityType = "primary"
	FacilitySecondary FacilityType = "secondary"
	FacilityTertiary  FacilityType = "tertiary"
)

type Ownership string

const (
	OwnershipPublic     Ownership = "public"
	OwnershipPrivate    Ownership = "private"
	OwnershipFaithBased Ownership = "faith_based"
)

type ReportingStatus string

const (
	ReportingCurrent ReportingStatus = "current"
	ReportingLate    ReportingStatus = "late"
	ReportingMissing ReportingStatus = "missing"
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Contact struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

type Facility struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Code            string          `json:"code"`
	State           string          `json:"state"`
	LGA             string          `json:"lga"`
	Ward            string          `json:"ward,omitempty"`
	Type            FacilityType    `json:"type"`
	Ownership       Ownership       `json:"ownership"`
	SourceSystem    SourceSystem    `json:"sourceSystem"`
	Coordinates     *Coordinates    `json:"coordinates,omitempty"`
	Contact         *Contact        `json:"contact,omitempty"`
	LastReportDate  *time.Time      `json:"lastReportDate,omitempty"`
	ReportingStatus ReportingStatus `json:"reportingStatus"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type FacilityStats struct {
	Total             int            `json:"total"`
	ByState           map[string]int `json:"byState"`
	ByType            map[string]int `json:"byType"`
	ByReportingStatus map[string]int `json:"byReportingStatus"`
	BySourceSystem    map[string]int `json:"bySourceSystem"`
}

// FacilityQuery is the typed filter record of the facilities view. It is comparable:
// two queries are equal when every field is equal.
type FacilityQuery struct {
	State           string
	LGA             string
	Type            FacilityType
	Ownership       Ownership
	SourceSystem    SourceSystem
	ReportingStatus ReportingStatus
	Search          string
	Pagination
}

func (q FacilityQuery) Params() map[string]any {
	m := map[string]any{
		"state":           q.State,
		"lga":             q.LGA,
		"type":            string(q.Type),
		"ownership":       string(q.Ownership),
		"sourceSystem":    string(q.SourceSystem),
		"reportingStatus": string(q.ReportingStatus),
		"search":          q.Search,
	}
	q.Pagination.params(m)
	return m
}
