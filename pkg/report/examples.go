package report

import (
	"fmt"
	"sort"

	"github.com/wlvh/Process-SemanticModel/pkg/dax"
	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// ExampleQuery is one ready-to-run DAX query included in the document. The
// queries are derived from the documented model, never from hardcoded table
// names.
type ExampleQuery struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	DAX         string `json:"dax"`
}

// BuildExamples derives example queries from the inference result: a single
// measure evaluation, a preview of the first fact table, one anchor-window
// aggregation per fact with a resolved time axis, and a filtered measure
// when sampled enum values supply a realistic literal.
func BuildExamples(result *models.InferenceResult) []ExampleQuery {
	var examples []ExampleQuery

	measures := sortedKeys(result.Measures)
	facts := sortedKeys(result.Facts)

	if len(measures) > 0 {
		examples = append(examples, ExampleQuery{
			Title:       "Single measure value",
			Description: "Evaluates one measure over the whole model.",
			Category:    "basic",
			DAX:         fmt.Sprintf("EVALUATE\nROW(\"Result\", %s)", dax.MeasureRef(measures[0])),
		})
	}

	if len(facts) > 0 {
		examples = append(examples, ExampleQuery{
			Title:       fmt.Sprintf("First rows of %s", facts[0]),
			Description: "Previews the grain of the fact table.",
			Category:    "basic",
			DAX:         fmt.Sprintf("EVALUATE\nTOPN(10, %s)", dax.TableRef(facts[0])),
		})
	}

	for _, name := range facts {
		if ex, ok := anchorWindowExample(name, result.Facts[name]); ok {
			examples = append(examples, ex)
		}
	}

	if len(measures) > 0 {
		if ex, ok := filteredMeasureExample(measures[0], facts, result.Facts); ok {
			examples = append(examples, ex)
		}
	}

	return examples
}

// anchorWindowExample counts a fact's rows inside a 90-day window ending at
// the data-driven anchor rather than the wall-clock date. Needs a resolved
// relationship-based time axis.
func anchorWindowExample(fact string, summary *models.FactSummary) (ExampleQuery, bool) {
	axis := summary.TimeAxis
	if axis == nil || !axis.HasDateAxis || axis.FactKeyColumn == "" ||
		axis.DimensionTable == "" || axis.DimensionKey == "" || axis.DateColumn == "" {
		return ExampleQuery{}, false
	}

	// Anchor on the fact's own date column when profiling found one; a fact
	// that only reaches dates through its key anchors on the dimension dates
	// its keys can reach.
	anchor := fmt.Sprintf("CALCULATE(MAX(%s), TREATAS(VALUES(%s), %s))",
		dax.ColumnRef(axis.DimensionTable, axis.DateColumn),
		dax.ColumnRef(fact, axis.FactKeyColumn),
		dax.ColumnRef(axis.DimensionTable, axis.DimensionKey))
	if p := summary.Profile; p != nil && p.ReferenceColumn != "" &&
		(p.Source == models.AnchorDirect || p.Source == models.AnchorCoalesce) {
		anchor = fmt.Sprintf("CALCULATE(MAX(%s))", dax.ColumnRef(fact, p.ReferenceColumn))
	}

	query := fmt.Sprintf(`EVALUATE
VAR AnchorDate = %s
VAR Window = DATESINPERIOD(%s, AnchorDate, -90, DAY)
RETURN
ROW("Rows Last 90d", CALCULATE(COUNTROWS(%s), Window))`,
		anchor,
		dax.ColumnRef(axis.DimensionTable, axis.DateColumn),
		dax.TableRef(fact))

	return ExampleQuery{
		Title:       fmt.Sprintf("Recent activity in %s", fact),
		Description: "Counts rows in a 90-day window ending at the data anchor, not the wall clock.",
		Category:    "time_series",
		DAX:         query,
	}, true
}

// filteredMeasureExample evaluates a measure under a literal column filter.
// The literal comes from sampled enum values, so the query works against
// real data.
func filteredMeasureExample(measure string, facts []string, summaries map[string]*models.FactSummary) (ExampleQuery, bool) {
	for _, fact := range facts {
		enums := summaries[fact].EnumValues
		if len(enums) == 0 {
			continue
		}
		cols := make([]string, 0, len(enums))
		for col := range enums {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		for _, col := range cols {
			values := enums[col]
			if len(values) == 0 {
				continue
			}
			query := fmt.Sprintf(`EVALUATE
ROW(
    "Filtered", CALCULATE(%s, %s = %s)
)`,
				dax.MeasureRef(measure),
				dax.ColumnRef(fact, col),
				dax.QuoteString(values[0].Value))
			return ExampleQuery{
				Title:       fmt.Sprintf("Filter %s by %s", fact, col),
				Description: "Evaluates a measure under a single-value column filter.",
				Category:    "filtering",
				DAX:         query,
			}, true
		}
	}
	return ExampleQuery{}, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
