package mockapi

import (
	"time"

	authmodels "github.com/victorgomez09/healthflow/internal/auth/models"
	"github.com/victorgomez09/healthflow/internal/models"
)

// DemoPassword is the password of every active fixture user.
const DemoPassword = "password"

// dataset is the mutable state behind the mock API. Only alerts and users change.
type dataset struct {
	users       []authmodels.User
	facilities  []models.Facility
	stock       []models.StockData
	alerts      []models.Alert
	metrics     models.DashboardMetrics
	reporting   []models.ReportingCompleteness
	states      []models.State
	lgas        []models.LGA
	commodities []models.Commodity
}

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func tsPtr(s string) *time.Time {
	t := ts(s)
	return &t
}

// fixtures returns a fresh copy of the demo data set.
func fixtures() *dataset {
	created := ts("2023-01-01T00:00:00Z")

	return &dataset{
		users: []authmodels.User{
			{
				ID: "1", Email: "admin@example.com", FirstName: "John", LastName: "Admin",
				Role: authmodels.RoleAdmin, Permissions: []string{"read", "write", "delete", "admin"},
				IsActive: true, CreatedAt: created,
			},
			{
				ID: "2", Email: "analyst@example.com", FirstName: "Jane", LastName: "Analyst",
				Role: authmodels.RoleAnalyst, Permissions: []string{"read", "write"}, State: "Lagos",
				IsActive: true, CreatedAt: created,
			},
			{
				ID: "3", Email: "facility@example.com", FirstName: "Michael", LastName: "Manager",
				Role: authmodels.RoleFacilityManager, Permissions: []string{"read"}, State: "Lagos", LGA: "Ikeja",
				FacilityIDs: []string{"2"}, IsActive: true, CreatedAt: created,
			},
			{
				ID: "4", Email: "viewer@example.com", FirstName: "Vera", LastName: "Viewer",
				Role: authmodels.RoleViewer, Permissions: []string{"read"},
				IsActive: false, CreatedAt: created,
			},
		},

		facilities: []models.Facility{
			{
				ID: "1", Name: "General Hospital Lagos", Code: "GHL001",
				State: "Lagos", LGA: "Lagos Island", Ward: "Lagos Island I",
				Type: models.FacilitySecondary, Ownership: models.OwnershipPublic, SourceSystem: models.SourceDHIS2,
				Coordinates: &models.Coordinates{Latitude: 6.4531, Longitude: 3.3958},
				Contact: &models.Contact{
					Phone: "+234-801-234-5678", Email: "admin@ghl.gov.ng",
					Address: "123 Marina Street, Lagos Island",
				},
				LastReportDate:  tsPtr("2024-01-15T08:30:00Z"),
				ReportingStatus: models.ReportingCurrent,
				CreatedAt:       ts("2023-01-01T00:00:00Z"),
				UpdatedAt:       ts("2024-01-15T08:30:00Z"),
			},
			{
				ID: "2", Name: "PHC Ikeja", Code: "PHC002",
				State: "Lagos", LGA: "Ikeja", Ward: "Ikeja GRA",
				Type: models.FacilityPrimary, Ownership: models.OwnershipPublic, SourceSystem: models.SourceOpenLMIS,
				Contact:         &models.Contact{Phone: "+234-802-345-6789", Email: "phc.ikeja@health.lg.gov.ng"},
				LastReportDate:  tsPtr("2024-01-10T14:20:00Z"),
				ReportingStatus: models.ReportingLate,
				CreatedAt:       ts("2023-02-15T00:00:00Z"),
				UpdatedAt:       ts("2024-01-10T14:20:00Z"),
			},
			{
				ID: "3", Name: "Specialist Hospital Kano", Code: "SHK003",
				State: "Kano", LGA: "Kano Municipal",
				Type: models.FacilityTertiary, Ownership: models.OwnershipPublic, SourceSystem: models.SourceDHIS2,
				Contact:         &models.Contact{Phone: "+234-803-456-7890"},
				ReportingStatus: models.ReportingMissing,
				CreatedAt:       ts("2022-12-01T00:00:00Z"),
				UpdatedAt:       ts("2023-06-15T12:00:00Z"),
			},
			{
				ID: "4", Name: "Faith Medical Centre", Code: "FMC004",
				State: "Rivers", LGA: "Port Harcourt",
				Type: models.FacilitySecondary, Ownership: models.OwnershipFaithBased, SourceSystem: models.SourceOpenLMIS,
				Contact:         &models.Contact{Email: "info@faithmedical.org"},
				LastReportDate:  tsPtr("2024-01-14T16:45:00Z"),
				ReportingStatus: models.ReportingCurrent,
				CreatedAt:       ts("2023-03-20T00:00:00Z"),
				UpdatedAt:       ts("2024-01-14T16:45:00Z"),
			},
		},

		stock: []models.StockData{
			{
				ID: "1", FacilityID: "1", FacilityName: "General Hospital Lagos",
				CommodityID: "PAR500", CommodityName: "Paracetamol 500mg", CommodityCode: "PAR500",
				CommodityCategory: "Essential Medicines",
				StockOnHand:       150, ReorderLevel: 100, MaxStock: 500, Unit: "tablets",
				BatchNumber: "B2024001", ExpiryDate: "2025-12-31",
				LastUpdated: ts("2024-01-15T08:30:00Z"), SourceSystem: models.SourceDHIS2, ReportingPeriod: "2024-01",
			},
			{
				ID: "2", FacilityID: "2", FacilityName: "PHC Ikeja",
				CommodityID: "AMX250", CommodityName: "Amoxicillin 250mg", CommodityCode: "AMX250",
				CommodityCategory: "Antibiotics",
				StockOnHand:       25, ReorderLevel: 50, MaxStock: 200, Unit: "capsules",
				LastUpdated: ts("2024-01-14T16:20:00Z"), SourceSystem: models.SourceOpenLMIS, ReportingPeriod: "2024-01",
			},
			{
				ID: "3", FacilityID: "1", FacilityName: "General Hospital Lagos",
				CommodityID: "ORS001", CommodityName: "ORS Sachets", CommodityCode: "ORS001",
				CommodityCategory: "Medical Supplies",
				StockOnHand:       0, ReorderLevel: 200, MaxStock: 1000, Unit: "sachets",
				LastUpdated: ts("2024-01-15T08:30:00Z"), SourceSystem: models.SourceDHIS2, ReportingPeriod: "2024-01",
			},
			{
				ID: "4", FacilityID: "4", FacilityName: "Faith Medical Centre",
				CommodityID: "VITA001", CommodityName: "Vitamin A Capsules", CommodityCode: "VITA001",
				CommodityCategory: "Nutritional Supplements",
				StockOnHand:       75, ReorderLevel: 30, MaxStock: 150, Unit: "capsules",
				LastUpdated: ts("2024-01-14T16:45:00Z"), SourceSystem: models.SourceOpenLMIS, ReportingPeriod: "2024-01",
			},
		},

		alerts: []models.Alert{
			{
				ID: "1", Type: models.AlertStockout, Title: "Complete Stockout - ORS Sachets",
				Message:  "ORS Sachets have reached zero stock level at General Hospital Lagos. Immediate restocking required.",
				Severity: models.SeverityCritical,
				FacilityID: "1", FacilityName: "General Hospital Lagos",
				CommodityID: "ORS001", CommodityName: "ORS Sachets",
				State: "Lagos", LGA: "Lagos Island", SourceSystem: models.SourceDHIS2,
				Status: models.AlertNew,
				Evidence: &models.Evidence{
					ReportID:  "RPT-2024-001",
					Timestamp: ts("2024-01-15T08:30:00Z"),
					SourceURL: "https://dhis2.example.com/reports/RPT-2024-001",
				},
				CreatedAt: ts("2024-01-15T08:30:00Z"),
				UpdatedAt: ts("2024-01-15T08:30:00Z"),
			},
			{
				ID: "2", Type: models.AlertLowStock, Title: "Low Stock Alert - Amoxicillin 250mg",
				Message:  "Amoxicillin 250mg stock has fallen below reorder level at PHC Ikeja.",
				Severity: models.SeverityWarning,
				FacilityID: "2", FacilityName: "PHC Ikeja",
				CommodityID: "AMX250", CommodityName: "Amoxicillin 250mg",
				State: "Lagos", LGA: "Ikeja", SourceSystem: models.SourceOpenLMIS,
				Status:         models.AlertAcknowledged,
				AcknowledgedAt: tsPtr("2024-01-14T10:00:00Z"),
				AcknowledgedBy: "Dr. Johnson",
				Evidence: &models.Evidence{
					ReportID:  "OLMIS-2024-045",
					Timestamp: ts("2024-01-14T16:20:00Z"),
				},
				CreatedAt: ts("2024-01-14T16:20:00Z"),
				UpdatedAt: ts("2024-01-14T16:20:00Z"),
			},
		},

		metrics: models.DashboardMetrics{
			TotalFacilities:       1247,
			CommoditiesTracked:    156,
			Stockouts:             23,
			ReportingCompleteness: 94.2,
			LastUpdated:           ts("2024-01-15T08:30:00Z"),
		},

		reporting: []models.ReportingCompleteness{
			{
				Period: "2024-01", State: "Lagos", ExpectedReports: 150, ReceivedReports: 142, Completeness: 94.7,
				FacilityBreakdown: []models.FacilityReport{
					{FacilityID: "1", FacilityName: "General Hospital Lagos", HasReported: true, ReportDate: tsPtr("2024-01-15T08:30:00Z")},
					{FacilityID: "2", FacilityName: "PHC Ikeja", HasReported: true, ReportDate: tsPtr("2024-01-10T14:20:00Z")},
				},
			},
			{
				Period: "2024-01", State: "Kano", ExpectedReports: 95, ReceivedReports: 87, Completeness: 91.6,
				FacilityBreakdown: []models.FacilityReport{
					{FacilityID: "3", FacilityName: "Specialist Hospital Kano", HasReported: false},
				},
			},
		},

		states: []models.State{
			{Code: "LA", Name: "Lagos"},
			{Code: "KA", Name: "Kano"},
			{Code: "RI", Name: "Rivers"},
			{Code: "KD", Name: "Kaduna"},
			{Code: "AB", Name: "Abia"},
		},

		lgas: []models.LGA{
			{Code: "LAI", Name: "Lagos Island", State: "Lagos"},
			{Code: "IKE", Name: "Ikeja", State: "Lagos"},
			{Code: "KAM", Name: "Kano Municipal", State: "Kano"},
			{Code: "PHC", Name: "Port Harcourt", State: "Rivers"},
		},

		commodities: []models.Commodity{
			{ID: "PAR500", Name: "Paracetamol 500mg", Code: "PAR500", Category: "Essential Medicines"},
			{ID: "AMX250", Name: "Amoxicillin 250mg", Code: "AMX250", Category: "Antibiotics"},
			{ID: "ORS001", Name: "ORS Sachets", Code: "ORS001", Category: "Medical Supplies"},
			{ID: "VITA001", Name: "Vitamin A Capsules", Code: "VITA001", Category: "Nutritional Supplements"},
		},
	}
}
