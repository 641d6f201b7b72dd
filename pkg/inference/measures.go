package inference

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Measure categories, matched against definition text in priority order. The
// engine only surface-matches expressions; it never evaluates them.
const (
	CategoryAggregation      = "aggregation"
	CategoryCounting         = "counting"
	CategoryStatistical      = "statistical"
	CategoryFiltered         = "filtered"
	CategoryTimeIntelligence = "time_intelligence"
	CategoryCalculation      = "calculation"
	CategoryOther            = "other"
)

var (
	aggregationPattern = regexp.MustCompile(`\bsumx?\(`)
	countingPattern    = regexp.MustCompile(`\b(distinctcount|count)\b`)
	statisticalPattern = regexp.MustCompile(`\b(average|median|medianx|stdevx?|variance|percentile)\b`)
	timeIntelPattern   = regexp.MustCompile(`\b(dateadd|sameperiod|datesytd|datesmtd|datesqtd)\b`)
	dividePattern      = regexp.MustCompile(`\bdivide\(`)

	qualifiedColumnPattern = regexp.MustCompile(`'([^']+)'\[([^\]]+)\]`)
	bracketRefPattern      = regexp.MustCompile(`\[([^\[\]]+)\]`)
)

// CategorizeMeasure buckets a measure by the dominant function family of its
// expression. First matching family wins.
func CategorizeMeasure(expression string) string {
	d := strings.ToLower(expression)
	switch {
	case aggregationPattern.MatchString(d):
		return CategoryAggregation
	case countingPattern.MatchString(d):
		return CategoryCounting
	case statisticalPattern.MatchString(d):
		return CategoryStatistical
	case strings.Contains(d, "calculate("):
		return CategoryFiltered
	case timeIntelPattern.MatchString(d):
		return CategoryTimeIntelligence
	case strings.Contains(d, "/") || dividePattern.MatchString(d):
		return CategoryCalculation
	default:
		return CategoryOther
	}
}

// MeasureDependencies extracts the column and measure references a
// definition mentions. Qualified references ("'Table'[Column]") are columns;
// bare bracket references that do not collide with a referenced column name
// are treated as measures. The result is sorted: measures as "[Name]",
// columns as "Table[Column]".
func MeasureDependencies(expression string) []string {
	if expression == "" {
		return nil
	}

	columnNames := make(map[string]bool)
	columnRefs := make(map[string]bool)
	for _, m := range qualifiedColumnPattern.FindAllStringSubmatch(expression, -1) {
		columnRefs[fmt.Sprintf("%s[%s]", m[1], m[2])] = true
		columnNames[m[2]] = true
	}

	measureRefs := make(map[string]bool)
	for _, m := range bracketRefPattern.FindAllStringSubmatch(expression, -1) {
		if !columnNames[m[1]] {
			measureRefs[fmt.Sprintf("[%s]", m[1])] = true
		}
	}

	deps := make([]string, 0, len(measureRefs)+len(columnRefs))
	for ref := range measureRefs {
		deps = append(deps, ref)
	}
	for ref := range columnRefs {
		deps = append(deps, ref)
	}
	sort.Strings(deps)
	if len(deps) == 0 {
		return nil
	}
	return deps
}
