package inference

import (
	"sort"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// labelKeywords order the fallback scan for a display column when no column
// name ends in "name" or "title".
var labelKeywords = []string{"country", "region", "area", "site", "queue", "category", "partner", "product", "language"}

// dimensionPrefixes are stripped from table names before alias expansion.
var dimensionPrefixes = []string{"dim_", "dim"}

// PickLabelColumn chooses a dimension's human-facing display column: a
// visible text column ending in "name" or "title", else one carrying a known
// entity keyword, else the first visible text column, else the first visible
// column.
func PickLabelColumn(index *MetadataIndex, table string) string {
	var visible, textCols []models.Column
	for _, c := range index.Columns(table) {
		if c.IsHidden {
			continue
		}
		visible = append(visible, c)
		if NormalizeDataType(c.DataType) == models.KindText {
			textCols = append(textCols, c)
		}
	}

	for _, c := range textCols {
		n := strings.ToLower(c.Name)
		if strings.HasSuffix(n, "name") || strings.HasSuffix(n, "title") {
			return c.Name
		}
	}
	for _, kw := range labelKeywords {
		for _, c := range textCols {
			if strings.Contains(strings.ToLower(c.Name), kw) {
				return c.Name
			}
		}
	}
	if len(textCols) > 0 {
		return textCols[0].Name
	}
	if len(visible) > 0 {
		return visible[0].Name
	}
	return ""
}

// ExpandAliases produces the name variants a reader might use for a
// dimension: the label (or the table name stripped of its dim prefix) with
// underscores spaced out, in original, lower and singular/plural forms.
func ExpandAliases(table, label string) []string {
	base := label
	if base == "" {
		base = stripDimensionPrefix(table)
	}
	base = strings.TrimSpace(strings.ReplaceAll(base, "_", " "))
	if base == "" {
		return nil
	}

	forms := []string{
		base,
		inflection.Singular(base),
		inflection.Plural(base),
	}
	variants := make(map[string]bool, len(forms)*2)
	for _, f := range forms {
		variants[f] = true
		variants[strings.ToLower(f)] = true
	}

	out := make([]string, 0, len(variants))
	for v := range variants {
		if v != "" {
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func stripDimensionPrefix(table string) string {
	name := table
	lower := strings.ToLower(name)
	if i := strings.Index(lower, "dim"); i >= 0 {
		for _, prefix := range dimensionPrefixes {
			if strings.HasPrefix(lower[i:], prefix) {
				return name[i+len(prefix):]
			}
		}
	}
	return name
}
