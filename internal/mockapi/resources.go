package mockapi

import (
	"cmp"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/victorgomez09/healthflow/internal/models"
)

// recentWindow bounds AlertStats.RecentCount.
const recentWindow = 7 * 24 * time.Hour

// Facilities

var facilitySorts = map[string]func(a, b models.Facility) int{
	"name":      func(a, b models.Facility) int { return cmp.Compare(a.Name, b.Name) },
	"code":      func(a, b models.Facility) int { return cmp.Compare(a.Code, b.Code) },
	"state":     func(a, b models.Facility) int { return cmp.Compare(a.State, b.State) },
	"lga":       func(a, b models.Facility) int { return cmp.Compare(a.LGA, b.LGA) },
	"createdAt": func(a, b models.Facility) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updatedAt": func(a, b models.Facility) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
}

func (s *Server) facilitiesMatching(q url.Values) []models.Facility {
	search := strings.ToLower(q.Get("search"))

	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(s.data.facilities, func(f models.Facility) bool {
		return matches(q, "state", f.State) &&
			matches(q, "lga", f.LGA) &&
			matches(q, "type", string(f.Type)) &&
			matches(q, "ownership", string(f.Ownership)) &&
			matches(q, "sourceSystem", string(f.SourceSystem)) &&
			matches(q, "reportingStatus", string(f.ReportingStatus)) &&
			(search == "" ||
				strings.Contains(strings.ToLower(f.Name), search) ||
				strings.Contains(strings.ToLower(f.Code), search))
	})
}

func (s *Server) listFacilities(w http.ResponseWriter, r *http.Request) {
	list(w, r, s.facilitiesMatching(r.URL.Query()), facilitySorts)
}

func (s *Server) getFacility(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.data.facilities {
		if f.ID == id {
			respond(w, f, nil)
			return
		}
	}
	fail(w, http.StatusNotFound, "Facility not found")
}

func (s *Server) facilityStats(w http.ResponseWriter, r *http.Request) {
	stats := models.FacilityStats{
		ByState:           map[string]int{},
		ByType:            map[string]int{},
		ByReportingStatus: map[string]int{},
		BySourceSystem:    map[string]int{},
	}
	for _, f := range s.facilitiesMatching(r.URL.Query()) {
		stats.Total++
		stats.ByState[f.State]++
		stats.ByType[string(f.Type)]++
		stats.ByReportingStatus[string(f.ReportingStatus)]++
		stats.BySourceSystem[string(f.SourceSystem)]++
	}
	respond(w, stats, nil)
}

// Stock

var stockSorts = map[string]func(a, b models.StockData) int{
	"stockOnHand":   func(a, b models.StockData) int { return cmp.Compare(a.StockOnHand, b.StockOnHand) },
	"commodityName": func(a, b models.StockData) int { return cmp.Compare(a.CommodityName, b.CommodityName) },
	"facilityName":  func(a, b models.StockData) int { return cmp.Compare(a.FacilityName, b.FacilityName) },
	"lastUpdated":   func(a, b models.StockData) int { return a.LastUpdated.Compare(b.LastUpdated) },
}

func (s *Server) stockMatching(q url.Values) []models.StockData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	facilities := make(map[string]models.Facility, len(s.data.facilities))
	for _, f := range s.data.facilities {
		facilities[f.ID] = f
	}

	return filter(s.data.stock, func(st models.StockData) bool {
		f := facilities[st.FacilityID]
		return matches(q, "facilityId", st.FacilityID) &&
			matches(q, "state", f.State) &&
			matches(q, "lga", f.LGA) &&
			matches(q, "commodityCategory", st.CommodityCategory) &&
			matches(q, "commodityId", st.CommodityID) &&
			matches(q, "stockStatus", string(st.Status())) &&
			matches(q, "sourceSystem", string(st.SourceSystem)) &&
			inRange(q, "dateFrom", "dateTo", st.LastUpdated.Format(time.RFC3339))
	})
}

func (s *Server) listStock(w http.ResponseWriter, r *http.Request) {
	list(w, r, s.stockMatching(r.URL.Query()), stockSorts)
}

// stockTrends derives six monthly points per stock record, falling linearly from above
// the reorder level to the current stock on hand.
func (s *Server) stockTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	trimmed := url.Values{}
	for k, v := range q {
		if k != "dateFrom" && k != "dateTo" {
			trimmed[k] = v
		}
	}

	trends := []models.StockTrend{}
	for _, st := range s.stockMatching(trimmed) {
		step := max(st.ReorderLevel/5, 1)
		for i := 5; i >= 0; i-- {
			date := st.LastUpdated.AddDate(0, -i, 0).Format(time.DateOnly)
			if !inRange(q, "dateFrom", "dateTo", date) {
				continue
			}
			trends = append(trends, models.StockTrend{
				Date:         date,
				StockOnHand:  st.StockOnHand + i*step,
				ReorderLevel: st.ReorderLevel,
				FacilityID:   st.FacilityID,
				CommodityID:  st.CommodityID,
			})
		}
	}
	respond(w, trends, nil)
}

func (s *Server) commodityStats(w http.ResponseWriter, r *http.Request) {
	byID := map[string]*models.CommodityStats{}
	facilities := map[string]map[string]bool{}
	totals := map[string]int{}

	for _, st := range s.stockMatching(r.URL.Query()) {
		cs, ok := byID[st.CommodityID]
		if !ok {
			cs = &models.CommodityStats{ID: st.CommodityID, Name: st.CommodityName, Category: st.CommodityCategory}
			byID[st.CommodityID] = cs
			facilities[st.CommodityID] = map[string]bool{}
		}

		if !facilities[st.CommodityID][st.FacilityID] {
			facilities[st.CommodityID][st.FacilityID] = true
			cs.TotalFacilities++
		}
		switch st.Status() {
		case models.StockOut:
			cs.StockoutFacilities++
		case models.StockLow:
			cs.LowStockFacilities++
			cs.StockedFacilities++
		default:
			cs.StockedFacilities++
		}
		totals[st.CommodityID] += st.StockOnHand
		if st.LastUpdated.After(cs.LastUpdated) {
			cs.LastUpdated = st.LastUpdated
		}
	}

	out := make([]models.CommodityStats, 0, len(byID))
	for id, cs := range byID {
		cs.AverageStock = float64(totals[id]) / float64(cs.TotalFacilities)
		out = append(out, *cs)
	}
	slices.SortFunc(out, func(a, b models.CommodityStats) int { return cmp.Compare(a.Name, b.Name) })
	respond(w, out, nil)
}

// Alerts

var severityRank = map[models.Severity]int{
	models.SeverityInfo:     0,
	models.SeverityWarning:  1,
	models.SeverityError:    2,
	models.SeverityCritical: 3,
}

var alertSorts = map[string]func(a, b models.Alert) int{
	"createdAt": func(a, b models.Alert) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"updatedAt": func(a, b models.Alert) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	"title":     func(a, b models.Alert) int { return cmp.Compare(a.Title, b.Title) },
	"severity": func(a, b models.Alert) int {
		return cmp.Compare(severityRank[a.Severity], severityRank[b.Severity])
	},
}

func (s *Server) alertsMatching(q url.Values) []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter(s.data.alerts, func(a models.Alert) bool {
		return matches(q, "type", string(a.Type)) &&
			matches(q, "severity", string(a.Severity)) &&
			matches(q, "status", string(a.Status)) &&
			matches(q, "facilityId", a.FacilityID) &&
			matches(q, "state", a.State) &&
			matches(q, "lga", a.LGA) &&
			matches(q, "sourceSystem", string(a.SourceSystem)) &&
			matches(q, "assignedTo", a.AssignedTo) &&
			inRange(q, "dateFrom", "dateTo", a.CreatedAt.Format(time.RFC3339))
	})
}

func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	list(w, r, s.alertsMatching(r.URL.Query()), alertSorts)
}

func (s *Server) getAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.data.alerts {
		if a.ID == id {
			respond(w, a, nil)
			return
		}
	}
	fail(w, http.StatusNotFound, "Alert not found")
}

func (s *Server) alertStats(w http.ResponseWriter, r *http.Request) {
	stats := models.AlertStats{
		ByType:         map[string]int{},
		BySeverity:     map[string]int{},
		ByStatus:       map[string]int{},
		BySourceSystem: map[string]int{},
	}
	since := s.now().Add(-recentWindow)
	for _, a := range s.alertsMatching(r.URL.Query()) {
		stats.Total++
		stats.ByType[string(a.Type)]++
		stats.BySeverity[string(a.Severity)]++
		stats.ByStatus[string(a.Status)]++
		stats.BySourceSystem[string(a.SourceSystem)]++
		if a.CreatedAt.After(since) {
			stats.RecentCount++
		}
		if a.Status != models.AlertResolved && a.Status != models.AlertDismissed {
			stats.UnresolvedCount++
		}
	}
	respond(w, stats, nil)
}

// updateAlert applies a partial update. Acknowledging or resolving without naming who
// did it records the calling user.
func (s *Server) updateAlert(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var update models.AlertUpdate
	if err := decodeBody(r, &update); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if update.Status != nil {
		if _, ok := models.ParseAlertStatus(string(*update.Status)); !ok {
			fail(w, http.StatusBadRequest, "Invalid alert status", string(*update.Status))
			return
		}
	}

	actor := ""
	if claims, ok := ClaimsFrom(r.Context()); ok {
		if u, err := s.auth.user(claims.Subject); err == nil {
			actor = u.FullName()
		}
	}
	if update.Status != nil && actor != "" {
		switch *update.Status {
		case models.AlertAcknowledged:
			if update.AcknowledgedBy == nil {
				update.AcknowledgedBy = &actor
			}
		case models.AlertResolved:
			if update.ResolvedBy == nil {
				update.ResolvedBy = &actor
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.data.alerts {
		if a.ID != id {
			continue
		}
		s.data.alerts[i] = update.Apply(a, s.now().UTC())
		s.logger.Info("Alert updated",
			zap.String("alert_id", id),
			zap.String("status", string(s.data.alerts[i].Status)),
			zap.String("by", actor))
		respond(w, s.data.alerts[i], nil)
		return
	}
	fail(w, http.StatusNotFound, "Alert not found")
}

// Dashboard

// dashboardMetrics returns the national figures, or figures derived from the fixtures
// when a state is given.
func (s *Server) dashboardMetrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	s.mu.RLock()
	defer s.mu.RUnlock()

	state := q.Get("state")
	if state == "" {
		respond(w, s.data.metrics, nil)
		return
	}

	m := models.DashboardMetrics{LastUpdated: s.data.metrics.LastUpdated}
	inState := map[string]bool{}
	for _, f := range s.data.facilities {
		if strings.EqualFold(f.State, state) {
			inState[f.ID] = true
			m.TotalFacilities++
		}
	}
	commodities := map[string]bool{}
	for _, st := range s.data.stock {
		if !inState[st.FacilityID] {
			continue
		}
		commodities[st.CommodityID] = true
		if st.Status() == models.StockOut {
			m.Stockouts++
		}
	}
	m.CommoditiesTracked = len(commodities)
	for _, rc := range s.data.reporting {
		if strings.EqualFold(rc.State, state) {
			m.ReportingCompleteness = rc.Completeness
		}
	}
	respond(w, m, nil)
}

func (s *Server) reportingCompleteness(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	s.mu.RLock()
	out := filter(s.data.reporting, func(rc models.ReportingCompleteness) bool {
		return matches(q, "state", rc.State) &&
			matches(q, "lga", rc.LGA) &&
			inRange(q, "startDate", "endDate", rc.Period)
	})
	s.mu.RUnlock()

	respond(w, out, nil)
}

// Reference data

func (s *Server) listStates(w http.ResponseWriter, r *http.Request) {
	respond(w, s.data.states, nil)
}

// listLGAs filters by state name or state code.
func (s *Server) listLGAs(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	for _, st := range s.data.states {
		if strings.EqualFold(st.Code, state) {
			state = st.Name
			break
		}
	}

	out := filter(s.data.lgas, func(l models.LGA) bool {
		return state == "" || strings.EqualFold(l.State, state)
	})
	respond(w, out, nil)
}

func (s *Server) listCommodities(w http.ResponseWriter, r *http.Request) {
	respond(w, s.data.commodities, nil)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	counts := map[string]int{}
	for _, c := range s.data.commodities {
		counts[c.Category]++
	}

	out := make([]models.CommodityCategory, 0, len(counts))
	for name, n := range counts {
		out = append(out, models.CommodityCategory{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b models.CommodityCategory) int { return cmp.Compare(a.Name, b.Name) })
	respond(w, out, nil)
}
