package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

func int64Ptr(v int64) *int64 { return &v }

func floatPtr(v float64) *float64 { return &v }

func timePtr(v time.Time) *time.Time { return &v }

// docResult builds a fully populated contract covering every document
// section.
func docResult() *models.InferenceResult {
	anchor := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	minDate := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	queueQuality := models.RelationshipQuality{
		FromTable: "FactSales", FromColumn: "QueueKey",
		ToTable: "DimQueue", ToColumn: "QueueKey",
		BlankRows:    int64Ptr(300),
		TotalRows:    int64Ptr(5000),
		DistinctKeys: int64Ptr(12),
		OrphanKeys:   int64Ptr(2),
		BlankRatio:   floatPtr(0.06),
		Coverage:     floatPtr(0.833333),
		Severity:     models.SeverityRed,
	}
	dateQuality := models.RelationshipQuality{
		FromTable: "FactSales", FromColumn: "OrderDateKey",
		ToTable: "DimDate", ToColumn: "DateKey",
		BlankRows:    int64Ptr(0),
		TotalRows:    int64Ptr(5000),
		DistinctKeys: int64Ptr(365),
		OrphanKeys:   int64Ptr(0),
		BlankRatio:   floatPtr(0),
		Coverage:     floatPtr(1),
		Severity:     models.SeverityGreen,
	}

	return &models.InferenceResult{
		Version:     models.ContractVersion,
		Dataset:     "sales-model",
		Workspace:   "ws-1",
		GeneratedAt: time.Date(2025, 8, 21, 10, 0, 0, 0, time.UTC),
		DateAxis:    &models.DateAxis{Table: "DimDate", KeyColumn: "DateKey", DateColumn: "CalendarDate"},
		Roles: map[string]models.TableRole{
			"FactSales": models.RoleFact,
			"DimDate":   models.RoleDimension,
			"DimQueue":  models.RoleDimension,
		},
		Facts: map[string]*models.FactSummary{
			"FactSales": {
				TimeAxis: &models.FactTimeAxis{
					HasDateAxis:    true,
					FactKeyColumn:  "OrderDateKey",
					DimensionTable: "DimDate",
					DimensionKey:   "DateKey",
					DateColumn:     "CalendarDate",
				},
				RowCount: int64Ptr(5000),
				Profile: &models.TimeAnchorProfile{
					Source:          models.AnchorDirect,
					AnchorColumn:    "SubmittedDate",
					ReferenceColumn: "SubmittedDate",
					MinDate:         timePtr(minDate),
					MaxDate:         timePtr(anchor),
					Anchor:          timePtr(anchor),
					NonBlankRows:    int64Ptr(4800),
					RowsLast7:       int64Ptr(70),
					RowsLast30:      int64Ptr(300),
					RowsLast90:      int64Ptr(900),
				},
				Dimensions: []models.DimensionEdge{
					{Dimension: "DimDate", FactColumn: "OrderDateKey", DimensionColumn: "DateKey"},
					{Dimension: "DimQueue", FactColumn: "QueueKey", DimensionColumn: "QueueKey", CrossFilter: "both"},
				},
				EnumValues: map[string][]models.EnumValue{
					"Status": {{Value: "Billing", Rows: 120}, {Value: "Churn", Rows: 80}},
				},
			},
		},
		Dimensions: map[string]*models.DimensionSummary{
			"DimDate":  {LabelColumn: "CalendarDate", KeyColumns: []string{"DateKey"}, IsDateAxis: true},
			"DimQueue": {LabelColumn: "QueueName", Aliases: []string{"Queue", "Queues"}, KeyColumns: []string{"QueueKey"}},
		},
		Relationships: []models.RelationshipSummary{
			{FromTable: "FactSales", FromColumn: "OrderDateKey", ToTable: "DimDate", ToColumn: "DateKey", Active: true, CrossFilter: "single"},
			{FromTable: "FactSales", FromColumn: "QueueKey", ToTable: "DimQueue", ToColumn: "QueueKey", Active: true, CrossFilter: "both"},
			{
				FromTable: "FactSales", FromColumn: "ShipDateKey", ToTable: "DimDate", ToColumn: "DateKey",
				Active:              false,
				UseRelationshipHint: "USERELATIONSHIP('FactSales'[ShipDateKey], 'DimDate'[DateKey])",
			},
		},
		Measures: map[string]*models.MeasureSummary{
			"Total Sales": {
				Table: "FactSales", Category: "aggregation", Format: "#,0",
				DependsOn:  []string{"FactSales[Amount]"},
				Expression: "SUM(FactSales[Amount])",
			},
			"Sales YoY": {Table: "FactSales", Category: "time_intelligence", DependsOn: []string{"[Total Sales]"}},
		},
		Quality: &models.QualityReport{
			Summary: []models.RelationshipQuality{queueQuality},
			Details: []models.RelationshipQuality{queueQuality, dateQuality},
			Lints: []string{
				"dimension DimDate is joined through multiple key columns (DateId, DateKey); standardize on one surrogate key or add a bridge table",
			},
			Thresholds: models.DefaultQualityThresholds(),
		},
		Counts: models.ContractCounts{
			Tables: 3, Facts: 1, Dimensions: 2,
			Measures: 2, Relationships: 4, BusinessRelationships: 2,
			InactiveFiltered: 1, AutoDateFiltered: 1,
		},
		Warnings: []string{"failed to list columns: query timeout"},
	}
}

func TestRenderDispatch(t *testing.T) {
	result := docResult()
	formats := []struct {
		format string
		probe  string
	}{
		{"markdown", "# Semantic Model Documentation"},
		{"md", "# Semantic Model Documentation"},
		{"", "# Semantic Model Documentation"},
		{"json", `"version": "semdoc/1"`},
		{"JSON", `"version": "semdoc/1"`},
		{"yaml", "version: semdoc/1"},
		{"yml", "version: semdoc/1"},
	}
	for _, tt := range formats {
		var buf bytes.Buffer
		if err := Render(&buf, tt.format, result); err != nil {
			t.Fatalf("Render(%q) error: %v", tt.format, err)
		}
		if !strings.Contains(buf.String(), tt.probe) {
			t.Errorf("Render(%q) output missing %q", tt.format, tt.probe)
		}
	}

	var buf bytes.Buffer
	if err := Render(&buf, "xml", result); err == nil {
		t.Error("Render(xml) should fail")
	}
}

func TestRenderJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderJSON(&buf, docResult()); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	var decoded models.InferenceResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Version != models.ContractVersion {
		t.Errorf("version = %q, want %q", decoded.Version, models.ContractVersion)
	}
	if decoded.Counts.BusinessRelationships != 2 {
		t.Errorf("business relationships = %d, want 2", decoded.Counts.BusinessRelationships)
	}
	if decoded.Facts["FactSales"].Profile.Source != models.AnchorDirect {
		t.Errorf("profile source = %q, want direct", decoded.Facts["FactSales"].Profile.Source)
	}
	if !strings.HasPrefix(buf.String(), "{\n  \"version\"") {
		t.Error("output should be indented with two spaces")
	}
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderYAML(&buf, docResult()); err != nil {
		t.Fatalf("RenderYAML: %v", err)
	}

	out := buf.String()
	for _, probe := range []string{
		"version: semdoc/1",
		"dataset: sales-model",
		"FactSales:",
		"source: direct",
		"severity: RED",
	} {
		if !strings.Contains(out, probe) {
			t.Errorf("yaml output missing %q", probe)
		}
	}
}
