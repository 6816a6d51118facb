package models

// Meta is the pagination block returned alongside list responses.
type Meta struct {
	Page       int `json:"page,omitempty"`
	Limit      int `json:"limit,omitempty"`
	Total      int `json:"total,omitempty"`
	TotalPages int `json:"totalPages,omitempty"`
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Pagination is embedded in every list query. Zero values mean "server default".
type Pagination struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder SortOrder
}

func (p Pagination) params(m map[string]any) {
	if p.Page > 0 {
		m["page"] = p.Page
	}
	if p.Limit > 0 {
		m["limit"] = p.Limit
	}
	m["sortBy"] = p.SortBy
	m["sortOrder"] = string(p.SortOrder)
}

// SourceSystem identifies where a record was reported from.
type SourceSystem string

const (
	SourceDHIS2    SourceSystem = "dhis2"
	SourceOpenLMIS SourceSystem = "openlmis"
	SourceInternal SourceSystem = "system"
)
