package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

const (
	// maxRelationshipRows bounds the relationship table; very large models
	// report the remainder as a count.
	maxRelationshipRows = 80
	// maxMeasuresPerCategory bounds each measure category section.
	maxMeasuresPerCategory = 10
)

// measureCategoryOrder fixes the section order for measure categories.
var measureCategoryOrder = []string{
	"aggregation", "counting", "statistical", "filtered",
	"time_intelligence", "calculation", "other",
}

// exampleCategoryTitles maps example categories to section headings.
var exampleCategoryTitles = map[string]string{
	"basic":       "Basic Queries",
	"time_series": "Time Series",
	"filtering":   "Filtering",
}

// RenderMarkdown writes the full model document: overview, data freshness,
// star schema, relationships, quality, dimensions, measures, example
// queries, and warnings.
func RenderMarkdown(w io.Writer, result *models.InferenceResult) error {
	var b strings.Builder

	writeHeader(&b, result)
	writeOverview(&b, result)
	writeTimeAnchors(&b, result)
	writeStarSchema(&b, result)
	writeRelationships(&b, result)
	writeQuality(&b, result)
	writeDimensions(&b, result)
	writeMeasures(&b, result)
	writeExamples(&b, result)
	writeWarnings(&b, result)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeHeader(b *strings.Builder, result *models.InferenceResult) {
	fmt.Fprintf(b, "# Semantic Model Documentation: %s\n\n", result.Dataset)
	fmt.Fprintf(b, "Generated %s", result.GeneratedAt.UTC().Format(time.RFC3339))
	if result.Workspace != "" {
		fmt.Fprintf(b, " from workspace %s", result.Workspace)
	}
	fmt.Fprintf(b, " (contract %s).\n\n", result.Version)
}

func writeOverview(b *strings.Builder, result *models.InferenceResult) {
	b.WriteString("## Overview\n\n")

	c := result.Counts
	tw := table.NewWriter()
	tw.SetOutputMirror(b)
	tw.AppendHeader(table.Row{"Metric", "Count"})
	tw.AppendRows([]table.Row{
		{"Business tables", c.Tables},
		{"Fact tables", c.Facts},
		{"Dimension tables", c.Dimensions},
		{"Bridge tables", c.Bridges},
		{"Unclassified tables", c.Other},
		{"Columns", c.Columns},
		{"Visible measures", c.Measures},
		{"Relationships", c.Relationships},
		{"Business relationships", c.BusinessRelationships},
		{"Inactive relationships filtered", c.InactiveFiltered},
		{"Auto-date relationships filtered", c.AutoDateFiltered},
	})
	tw.RenderMarkdown()
	b.WriteString("\n")

	if axis := result.DateAxis; axis != nil {
		fmt.Fprintf(b, "Primary date axis: %s, date column %s, keyed by %s.\n\n",
			axis.Table, axis.DateColumn, axis.KeyColumn)
	}
}

func writeTimeAnchors(b *strings.Builder, result *models.InferenceResult) {
	var rows []table.Row
	for _, name := range sortedKeys(result.Facts) {
		f := result.Facts[name]
		if f.Profile == nil && f.RowCount == nil {
			continue
		}
		row := table.Row{name, "", "", "", "", "", "", "", "", "", countCell(f.RowCount)}
		if p := f.Profile; p != nil {
			row = table.Row{
				name, string(p.Source), p.AnchorColumn,
				dateCell(p.MinDate), dateCell(p.MaxDate), dateCell(p.Anchor),
				countCell(p.NonBlankRows), countCell(p.RowsLast7),
				countCell(p.RowsLast30), countCell(p.RowsLast90),
				countCell(f.RowCount),
			}
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return
	}

	b.WriteString("## Data Freshness\n\n")
	tw := table.NewWriter()
	tw.SetOutputMirror(b)
	tw.AppendHeader(table.Row{
		"Fact", "Strategy", "Anchor Column", "Min", "Max", "Anchor",
		"Non-blank", "Last 7d", "Last 30d", "Last 90d", "Rows",
	})
	tw.AppendRows(rows)
	tw.RenderMarkdown()
	b.WriteString("\n> Window queries should use the anchor date, not the wall clock; switch to a fixed month or quarter when the 90-day count is zero.\n\n")
}

func writeStarSchema(b *strings.Builder, result *models.InferenceResult) {
	var schema strings.Builder
	for _, name := range sortedKeys(result.Facts) {
		edges := result.Facts[name].Dimensions
		if len(edges) == 0 {
			continue
		}
		fmt.Fprintf(&schema, "**%s** (fact)\n\n", name)
		for _, e := range edges {
			fmt.Fprintf(&schema, "- %s (%s -> %s)", e.Dimension, e.FactColumn, e.DimensionColumn)
			if e.CrossFilter != "" {
				fmt.Fprintf(&schema, ", cross-filter %s", e.CrossFilter)
			}
			schema.WriteString("\n")
		}
		schema.WriteString("\n")
	}
	if schema.Len() == 0 {
		return
	}
	b.WriteString("## Star Schema\n\n")
	b.WriteString(schema.String())
}

func writeRelationships(b *strings.Builder, result *models.InferenceResult) {
	rels := result.Relationships
	if len(rels) == 0 {
		return
	}

	b.WriteString("## Relationships\n\n")
	tw := table.NewWriter()
	tw.SetOutputMirror(b)
	tw.AppendHeader(table.Row{"From", "To", "Active", "Cross Filter", "Activation Hint"})
	shown := rels
	if len(shown) > maxRelationshipRows {
		shown = shown[:maxRelationshipRows]
	}
	for _, r := range shown {
		active := "yes"
		if !r.Active {
			active = "no"
		}
		tw.AppendRow(table.Row{
			endpoint(r.FromTable, r.FromColumn), endpoint(r.ToTable, r.ToColumn),
			active, r.CrossFilter, r.UseRelationshipHint,
		})
	}
	tw.RenderMarkdown()
	if len(rels) > maxRelationshipRows {
		fmt.Fprintf(b, "\n%d more relationships omitted.\n", len(rels)-maxRelationshipRows)
	}
	b.WriteString("\n")
}

func writeQuality(b *strings.Builder, result *models.InferenceResult) {
	q := result.Quality
	if q == nil {
		return
	}

	b.WriteString("## Relationship Quality\n\n")
	th := q.Thresholds
	fmt.Fprintf(b, "Grading: RED when coverage < %g or blank ratio > %g; YELLOW when coverage < %g or blank ratio > %g.\n\n",
		th.CoverageRed, th.BlankRed, th.CoverageYellow, th.BlankYellow)

	if len(q.Summary) > 0 {
		b.WriteString("### Worst Edges\n\n")
		writeQualityTable(b, q.Summary)
	}
	if len(q.Details) > len(q.Summary) {
		b.WriteString("### All Measured Relationships\n\n")
		writeQualityTable(b, q.Details)
	}
	if len(q.Lints) > 0 {
		b.WriteString("### Lints\n\n")
		for _, lint := range q.Lints {
			fmt.Fprintf(b, "- %s\n", lint)
		}
		b.WriteString("\n")
	}
}

func writeQualityTable(b *strings.Builder, rows []models.RelationshipQuality) {
	tw := table.NewWriter()
	tw.SetOutputMirror(b)
	tw.AppendHeader(table.Row{
		"Relationship", "Severity", "Blank Ratio", "Coverage",
		"Blank Rows", "Orphan Keys", "Compared As", "Note",
	})
	for i := range rows {
		d := &rows[i]
		rel := fmt.Sprintf("%s -> %s", endpoint(d.FromTable, d.FromColumn), endpoint(d.ToTable, d.ToColumn))
		tw.AppendRow(table.Row{
			rel, string(d.Severity), ratioCell(d.BlankRatio), ratioCell(d.Coverage),
			countCell(d.BlankRows), countCell(d.OrphanKeys), string(d.ComparisonKind), d.Error,
		})
	}
	tw.RenderMarkdown()
	b.WriteString("\n")
}

func writeDimensions(b *strings.Builder, result *models.InferenceResult) {
	names := sortedKeys(result.Dimensions)
	if len(names) == 0 {
		return
	}

	b.WriteString("## Dimensions\n\n")
	tw := table.NewWriter()
	tw.SetOutputMirror(b)
	tw.AppendHeader(table.Row{"Dimension", "Label Column", "Key Columns", "Aliases", "Date Axis"})
	for _, name := range names {
		d := result.Dimensions[name]
		axis := ""
		if d.IsDateAxis {
			axis = "yes"
		}
		tw.AppendRow(table.Row{
			name, d.LabelColumn,
			strings.Join(d.KeyColumns, ", "), strings.Join(d.Aliases, ", "), axis,
		})
	}
	tw.RenderMarkdown()
	b.WriteString("\n")
}

func writeMeasures(b *strings.Builder, result *models.InferenceResult) {
	if len(result.Measures) == 0 {
		return
	}

	byCategory := make(map[string][]string)
	for name, m := range result.Measures {
		byCategory[m.Category] = append(byCategory[m.Category], name)
	}

	b.WriteString("## Measures\n\n")
	for _, cat := range presentCategories(byCategory) {
		names := byCategory[cat]
		sort.Strings(names)
		fmt.Fprintf(b, "### %s\n\n", categoryTitle(cat))

		shown := names
		if len(shown) > maxMeasuresPerCategory {
			shown = shown[:maxMeasuresPerCategory]
		}
		for _, name := range shown {
			m := result.Measures[name]
			fmt.Fprintf(b, "#### [%s]\n\n", name)
			fmt.Fprintf(b, "Defined on %s", m.Table)
			if m.Format != "" {
				fmt.Fprintf(b, ", format `%s`", m.Format)
			}
			b.WriteString(".\n")
			if len(m.DependsOn) > 0 {
				fmt.Fprintf(b, "Depends on: %s.\n", strings.Join(m.DependsOn, ", "))
			}
			if m.Expression != "" {
				fmt.Fprintf(b, "\n```dax\n%s\n```\n", m.Expression)
			}
			b.WriteString("\n")
		}
		if len(names) > maxMeasuresPerCategory {
			fmt.Fprintf(b, "%d more measures in this category omitted.\n\n", len(names)-maxMeasuresPerCategory)
		}
	}
}

func writeExamples(b *strings.Builder, result *models.InferenceResult) {
	examples := BuildExamples(result)
	if len(examples) == 0 {
		return
	}

	b.WriteString("## Example Queries\n\n")
	seen := make(map[string]bool)
	var categories []string
	for _, ex := range examples {
		if !seen[ex.Category] {
			seen[ex.Category] = true
			categories = append(categories, ex.Category)
		}
	}
	for _, cat := range categories {
		fmt.Fprintf(b, "### %s\n\n", exampleCategoryTitle(cat))
		for _, ex := range examples {
			if ex.Category != cat {
				continue
			}
			fmt.Fprintf(b, "#### %s\n\n%s\n\n```dax\n%s\n```\n\n", ex.Title, ex.Description, ex.DAX)
		}
	}
}

func writeWarnings(b *strings.Builder, result *models.InferenceResult) {
	if len(result.Warnings) == 0 {
		return
	}
	b.WriteString("## Warnings\n\n")
	for _, warning := range result.Warnings {
		fmt.Fprintf(b, "- %s\n", warning)
	}
	b.WriteString("\n")
}

func endpoint(tbl, col string) string {
	return fmt.Sprintf("%s[%s]", tbl, col)
}

func dateCell(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func countCell(n *int64) string {
	if n == nil {
		return ""
	}
	return strconv.FormatInt(*n, 10)
}

func ratioCell(r *float64) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%.1f%%", *r*100)
}

// presentCategories returns the known categories in fixed order followed by
// any others alphabetically.
func presentCategories(byCategory map[string][]string) []string {
	var cats []string
	known := make(map[string]bool, len(measureCategoryOrder))
	for _, cat := range measureCategoryOrder {
		known[cat] = true
		if len(byCategory[cat]) > 0 {
			cats = append(cats, cat)
		}
	}
	var extra []string
	for cat := range byCategory {
		if !known[cat] {
			extra = append(extra, cat)
		}
	}
	sort.Strings(extra)
	return append(cats, extra...)
}

func categoryTitle(cat string) string {
	words := strings.Split(cat, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func exampleCategoryTitle(cat string) string {
	if title, ok := exampleCategoryTitles[cat]; ok {
		return title
	}
	return categoryTitle(cat)
}
