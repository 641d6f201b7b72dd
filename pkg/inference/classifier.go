package inference

import (
	"strings"

	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// dateDimensionNameTerms mark a table name as calendar-flavored.
var dateDimensionNameTerms = []string{"dimdate", "date", "calendar"}

// TableClassifier assigns each business table a structural role. Rules are
// evaluated in fixed priority order against the raw snapshot; no table's
// role depends on another table's already-computed role, only on relationship
// counts, so classification order cannot matter.
type TableClassifier struct {
	index *MetadataIndex
	adj   Adjacency
}

// NewTableClassifier builds a classifier over one snapshot and its business
// adjacency counts.
func NewTableClassifier(index *MetadataIndex, adj Adjacency) *TableClassifier {
	return &TableClassifier{index: index, adj: adj}
}

// ClassifyAll classifies every business table.
func (c *TableClassifier) ClassifyAll() map[string]models.TableRole {
	roles := make(map[string]models.TableRole)
	for _, t := range c.index.BusinessTables() {
		roles[t.Name] = c.Classify(t.Name)
	}
	return roles
}

// Classify returns exactly one role for a table. An empty name is a
// programmer error.
//
// Naming is a strong but unreliable signal: hand-authored models prefix
// inconsistently, so a name match is tried first and structural signals
// (fan-out, fan-in, column-type mix) recover the role when naming lies.
func (c *TableClassifier) Classify(table string) models.TableRole {
	if table == "" {
		panic("inference: empty table name")
	}

	cols := c.index.Columns(table)
	outgoing := c.adj.Outgoing[table]
	incoming := c.adj.Incoming[table]

	if hasFactPrefix(table) {
		// Tiny fact-named tables sitting between two fans are junctions.
		if len(cols) <= 3 && outgoing >= 2 && incoming >= 2 {
			return models.RoleBridge
		}
		return models.RoleFact
	}

	if c.looksLikeDateDimension(table) {
		return models.RoleDimension
	}

	if outgoing >= 2 {
		return models.RoleFact
	}

	textCols, numberCols := 0, 0
	for _, col := range cols {
		switch NormalizeDataType(col.DataType) {
		case models.KindText:
			textCols++
		case models.KindNumber:
			numberCols++
		}
	}
	if incoming > outgoing || textCols > numberCols {
		return models.RoleDimension
	}
	if len(cols) > 0 && len(cols) <= 3 && outgoing >= 2 {
		return models.RoleBridge
	}
	return models.RoleOther
}

// hasFactPrefix reports whether the name follows a fact naming convention:
// it starts with "fact" or any underscore-separated segment does (view
// prefixes like "vw_factorders" or "vwpcse_factsurvey" count).
func hasFactPrefix(table string) bool {
	name := strings.ToLower(table)
	if strings.HasPrefix(name, "fact") {
		return true
	}
	for _, seg := range strings.Split(name, "_") {
		if strings.HasPrefix(seg, "fact") {
			return true
		}
	}
	return false
}

// looksLikeDateDimension marks calendar tables: a date-flavored name or at
// least two date-typed columns, carrying at most one measure. Measure-heavy
// tables are facts regardless of how date-like they look.
func (c *TableClassifier) looksLikeDateDimension(table string) bool {
	name := strings.ToLower(table)
	nameHit := false
	for _, term := range dateDimensionNameTerms {
		if strings.Contains(name, term) {
			nameHit = true
			break
		}
	}

	dateCols := len(c.index.DateColumns(table))
	fewMeasures := len(c.index.Measures(table)) <= 1

	return (nameHit || dateCols >= 2) && fewMeasures
}
