package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

func TestRenderMarkdownSections(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderMarkdown(&buf, docResult()); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	out := buf.String()

	probes := []string{
		"# Semantic Model Documentation: sales-model",
		"from workspace ws-1",
		"(contract semdoc/1)",
		"## Overview",
		"Business tables",
		"Primary date axis: DimDate, date column CalendarDate, keyed by DateKey.",
		"## Data Freshness",
		"direct",
		"SubmittedDate",
		"2025-08-20",
		"switch to a fixed month or quarter",
		"## Star Schema",
		"**FactSales** (fact)",
		"- DimDate (OrderDateKey -> DateKey)",
		"- DimQueue (QueueKey -> QueueKey), cross-filter both",
		"## Relationships",
		"FactSales[ShipDateKey]",
		"USERELATIONSHIP('FactSales'[ShipDateKey], 'DimDate'[DateKey])",
		"## Relationship Quality",
		"Grading: RED when coverage < 0.95 or blank ratio > 0.05",
		"### Worst Edges",
		"FactSales[QueueKey] -> DimQueue[QueueKey]",
		"RED",
		"6.0%",
		"### All Measured Relationships",
		"### Lints",
		"- dimension DimDate is joined through multiple key columns",
		"## Dimensions",
		"QueueName",
		"Queue, Queues",
		"## Measures",
		"### Aggregation",
		"#### [Total Sales]",
		"format `#,0`",
		"Depends on: FactSales[Amount].",
		"```dax\nSUM(FactSales[Amount])\n```",
		"### Time Intelligence",
		"#### [Sales YoY]",
		"## Example Queries",
		"### Basic Queries",
		"### Time Series",
		"DATESINPERIOD('DimDate'[CalendarDate], AnchorDate, -90, DAY)",
		"## Warnings",
		"- failed to list columns: query timeout",
	}
	for _, probe := range probes {
		if !strings.Contains(out, probe) {
			t.Errorf("document missing %q", probe)
		}
	}
}

func TestRenderMarkdownSkipsEmptySections(t *testing.T) {
	result := &models.InferenceResult{
		Version:     models.ContractVersion,
		Dataset:     "empty-model",
		GeneratedAt: time.Date(2025, 8, 21, 10, 0, 0, 0, time.UTC),
		Roles:       map[string]models.TableRole{},
		Facts:       map[string]*models.FactSummary{},
		Dimensions:  map[string]*models.DimensionSummary{},
	}

	var buf bytes.Buffer
	if err := RenderMarkdown(&buf, result); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "## Overview") {
		t.Error("overview must always render")
	}
	for _, absent := range []string{
		"## Data Freshness",
		"## Star Schema",
		"## Relationships",
		"## Relationship Quality",
		"## Dimensions",
		"## Measures",
		"## Example Queries",
		"## Warnings",
		"Primary date axis",
	} {
		if strings.Contains(out, absent) {
			t.Errorf("empty model should not render %q", absent)
		}
	}
}

func TestRenderMarkdownTruncatesLongRelationshipList(t *testing.T) {
	result := docResult()
	result.Relationships = nil
	for i := 0; i < maxRelationshipRows+5; i++ {
		result.Relationships = append(result.Relationships, models.RelationshipSummary{
			FromTable: "FactSales", FromColumn: "Key" + strings.Repeat("x", i%7),
			ToTable: "DimQueue", ToColumn: "QueueKey", Active: true,
		})
	}

	var buf bytes.Buffer
	if err := RenderMarkdown(&buf, result); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if !strings.Contains(buf.String(), "5 more relationships omitted.") {
		t.Error("long relationship list should be truncated with a count")
	}
}

func TestRenderMarkdownCapsMeasureCategory(t *testing.T) {
	result := docResult()
	result.Measures = make(map[string]*models.MeasureSummary)
	for _, name := range []string{
		"M01", "M02", "M03", "M04", "M05", "M06",
		"M07", "M08", "M09", "M10", "M11", "M12",
	} {
		result.Measures[name] = &models.MeasureSummary{Table: "FactSales", Category: "aggregation"}
	}

	var buf bytes.Buffer
	if err := RenderMarkdown(&buf, result); err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "#### [M10]") {
		t.Error("first ten measures should render")
	}
	if strings.Contains(out, "#### [M11]") {
		t.Error("measures past the category cap should not render")
	}
	if !strings.Contains(out, "2 more measures in this category omitted.") {
		t.Error("capped category should report the omitted count")
	}
}

func TestCategoryTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"aggregation", "Aggregation"},
		{"time_intelligence", "Time Intelligence"},
		{"other", "Other"},
	}
	for _, tt := range tests {
		if got := categoryTitle(tt.in); got != tt.want {
			t.Errorf("categoryTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
