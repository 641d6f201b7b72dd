// Package inference reconstructs the implicit structure of a star-schema
// model: which tables are facts and dimensions, how facts reach a calendar,
// how fresh the data is, and which joins can be trusted. Everything except
// the profiling queries is a pure function over an in-memory metadata
// snapshot.
package inference

import (
	"regexp"
	"sort"

	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// autoDatePattern matches the modeling service's auto-generated calendar
// tables. These are implementation artifacts of time intelligence, never
// part of the business model.
var autoDatePattern = regexp.MustCompile(`(?i)^(LocalDateTable_|DateTableTemplate_)`)

// IsAutoDateTable reports whether a table is an auto-generated calendar.
func IsAutoDateTable(name string) bool {
	return autoDatePattern.MatchString(name)
}

// MetadataIndex holds one metadata snapshot in queryable form. It is
// immutable after construction; classification and resolution re-run against
// a fresh index when the snapshot changes.
type MetadataIndex struct {
	md              *models.ModelMetadata
	tables          map[string]models.Table
	columnsByTable  map[string][]models.Column
	measuresByTable map[string][]models.Measure
	columnKinds     map[string]map[string]models.ColumnKind
}

// NewMetadataIndex builds the lookup structures for a snapshot.
func NewMetadataIndex(md *models.ModelMetadata) *MetadataIndex {
	idx := &MetadataIndex{
		md:              md,
		tables:          make(map[string]models.Table, len(md.Tables)),
		columnsByTable:  make(map[string][]models.Column),
		measuresByTable: make(map[string][]models.Measure),
		columnKinds:     make(map[string]map[string]models.ColumnKind),
	}
	for _, t := range md.Tables {
		idx.tables[t.Name] = t
	}
	for _, c := range md.Columns {
		idx.columnsByTable[c.Table] = append(idx.columnsByTable[c.Table], c)
		kinds := idx.columnKinds[c.Table]
		if kinds == nil {
			kinds = make(map[string]models.ColumnKind)
			idx.columnKinds[c.Table] = kinds
		}
		kinds[c.Name] = NormalizeDataType(c.DataType)
	}
	for _, m := range md.Measures {
		idx.measuresByTable[m.Table] = append(idx.measuresByTable[m.Table], m)
	}
	return idx
}

// Dataset returns the snapshot's dataset identifier.
func (idx *MetadataIndex) Dataset() string {
	return idx.md.Dataset
}

// Workspace returns the snapshot's workspace identifier, empty for the
// default workspace.
func (idx *MetadataIndex) Workspace() string {
	return idx.md.Workspace
}

// Snapshot returns the underlying metadata.
func (idx *MetadataIndex) Snapshot() *models.ModelMetadata {
	return idx.md
}

// Table looks up one table record.
func (idx *MetadataIndex) Table(name string) (models.Table, bool) {
	t, ok := idx.tables[name]
	return t, ok
}

// BusinessTables returns all visible tables that are not auto-generated
// calendars, sorted by name.
func (idx *MetadataIndex) BusinessTables() []models.Table {
	tables := make([]models.Table, 0, len(idx.md.Tables))
	for _, t := range idx.md.Tables {
		if IsAutoDateTable(t.Name) || t.IsHidden {
			continue
		}
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables
}

// Columns returns a table's columns in snapshot order.
func (idx *MetadataIndex) Columns(table string) []models.Column {
	return idx.columnsByTable[table]
}

// Measures returns a table's measures in snapshot order.
func (idx *MetadataIndex) Measures(table string) []models.Measure {
	return idx.measuresByTable[table]
}

// Relationships returns the snapshot's raw relationship list, auto-date
// endpoints included. Callers filter through IsBusinessRelationship.
func (idx *MetadataIndex) Relationships() []models.Relationship {
	return idx.md.Relationships
}

// ColumnKind returns the normalized kind of one column. Unknown columns
// report KindText, matching the normalization default for untyped data.
func (idx *MetadataIndex) ColumnKind(table, column string) models.ColumnKind {
	if kinds, ok := idx.columnKinds[table]; ok {
		if k, ok := kinds[column]; ok {
			return k
		}
	}
	return models.KindText
}

// DateColumns returns a table's date-kind columns in snapshot order.
func (idx *MetadataIndex) DateColumns(table string) []models.Column {
	var out []models.Column
	for _, c := range idx.columnsByTable[table] {
		if NormalizeDataType(c.DataType) == models.KindDate {
			out = append(out, c)
		}
	}
	return out
}
