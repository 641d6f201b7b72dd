package dax

import (
	"fmt"
	"strings"
)

// Metadata listing queries. INFO.VIEW functions carry the full object model;
// SELECTCOLUMNS projects the fields the engine consumes, with stable aliases
// so the row decoder stays independent of service-side naming.

// TablesQuery lists model tables.
func TablesQuery() string {
	return `EVALUATE SELECTCOLUMNS(
    INFO.VIEW.TABLES(),
    "table_name", [Name],
    "is_hidden", [IsHidden],
    "description", [Description],
    "storage_mode", [StorageMode]
)`
}

// ColumnsQuery lists model columns.
func ColumnsQuery() string {
	return `EVALUATE SELECTCOLUMNS(
    INFO.VIEW.COLUMNS(),
    "table_name", [Table],
    "column_name", [Name],
    "data_type", [DataType],
    "is_hidden", [IsHidden]
)`
}

// MeasuresQuery lists model measures with their definition text.
func MeasuresQuery() string {
	return `EVALUATE SELECTCOLUMNS(
    INFO.VIEW.MEASURES(),
    "table_name", [Table],
    "measure_name", [Name],
    "expression", [Expression],
    "format_string", [FormatString],
    "is_hidden", [IsHidden]
)`
}

// RelationshipsQuery lists model relationships.
func RelationshipsQuery() string {
	return `EVALUATE SELECTCOLUMNS(
    INFO.VIEW.RELATIONSHIPS(),
    "from_table", [FromTable],
    "from_column", [FromColumn],
    "from_cardinality", [FromCardinality],
    "to_table", [ToTable],
    "to_column", [ToColumn],
    "to_cardinality", [ToCardinality],
    "is_active", [IsActive],
    "cross_filter", [CrossFilteringBehavior]
)`
}

// RowCountQuery counts the rows of one table.
func RowCountQuery(table string) string {
	return fmt.Sprintf(`EVALUATE ROW("row_count", COUNTROWS(%s))`, TableRef(table))
}

// DirectAnchorQuery profiles data freshness against one of the fact's own
// columns. valueExpr is the per-row date expression: the bare column
// reference for date-typed columns, or a parse expression (TextToDateExpr)
// for text-typed ones. The window counts include only rows whose value
// parsed.
func DirectAnchorQuery(table, column, valueExpr string) string {
	t := TableRef(table)
	return fmt.Sprintf(`EVALUATE
VAR _rows = FILTER(%s, NOT ISBLANK(%s))
VAR _min = MINX(_rows, %s)
VAR _max = MAXX(_rows, %s)
VAR _nonblank = COUNTROWS(_rows)
VAR _cnt7 = IF(NOT ISBLANK(_max), COUNTROWS(FILTER(_rows, %s > _max - 7 && %s <= _max)), BLANK())
VAR _cnt30 = IF(NOT ISBLANK(_max), COUNTROWS(FILTER(_rows, %s > _max - 30 && %s <= _max)), BLANK())
VAR _cnt90 = IF(NOT ISBLANK(_max), COUNTROWS(FILTER(_rows, %s > _max - 90 && %s <= _max)), BLANK())
RETURN
ROW("column", %s, "min", _min, "max", _max, "anchor", _max, "nonblank", _nonblank, "cnt7", _cnt7, "cnt30", _cnt30, "cnt90", _cnt90)`,
		t, valueExpr,
		valueExpr, valueExpr,
		valueExpr, valueExpr,
		valueExpr, valueExpr,
		valueExpr, valueExpr,
		QuoteString(column))
}

// ViaKeyAnchorQuery profiles data freshness through the date dimension. The
// fact's non-blank key values restrict the dimension's date column; the last
// 7/30/90 day windows are mapped back to key sets and counted against the
// fact. factKeyExpr converts the fact key toward the dimension key's type;
// dimKeyExpr converts the other way for the window back-mapping. Both are
// bare column references when the endpoint types already agree.
func ViaKeyAnchorQuery(fact, factKey, dim, dimKey, dimDate, factKeyExpr, dimKeyExpr string) string {
	f := TableRef(fact)
	fk := ColumnRef(fact, factKey)
	dk := ColumnRef(dim, dimKey)
	dc := ColumnRef(dim, dimDate)
	return fmt.Sprintf(`EVALUATE
VAR K =
  SELECTCOLUMNS(
    FILTER(VALUES(%s), NOT ISBLANK(%s)),
    "__k", %s
  )
VAR Anchor = CALCULATE(MAX(%s), TREATAS(K, %s))
VAR MinDate = CALCULATE(MIN(%s), TREATAS(K, %s))
VAR _nonblank = COUNTROWS(FILTER(%s, NOT ISBLANK(%s)))
VAR W7 = IF(NOT ISBLANK(Anchor), FILTER(ALL(%s), %s > Anchor - 7 && %s <= Anchor))
VAR W30 = IF(NOT ISBLANK(Anchor), FILTER(ALL(%s), %s > Anchor - 30 && %s <= Anchor))
VAR W90 = IF(NOT ISBLANK(Anchor), FILTER(ALL(%s), %s > Anchor - 90 && %s <= Anchor))
VAR W7K = SELECTCOLUMNS(CALCULATETABLE(VALUES(%s), W7), "__k", %s)
VAR W30K = SELECTCOLUMNS(CALCULATETABLE(VALUES(%s), W30), "__k", %s)
VAR W90K = SELECTCOLUMNS(CALCULATETABLE(VALUES(%s), W90), "__k", %s)
RETURN
ROW(
  "min", MinDate,
  "max", Anchor,
  "anchor", Anchor,
  "nonblank", _nonblank,
  "cnt7", CALCULATE(COUNTROWS(%s), TREATAS(W7K, %s)),
  "cnt30", CALCULATE(COUNTROWS(%s), TREATAS(W30K, %s)),
  "cnt90", CALCULATE(COUNTROWS(%s), TREATAS(W90K, %s))
)`,
		fk, fk,
		factKeyExpr,
		dc, dk,
		dc, dk,
		f, fk,
		dc, dc, dc,
		dc, dc, dc,
		dc, dc, dc,
		dk, dimKeyExpr,
		dk, dimKeyExpr,
		dk, dimKeyExpr,
		f, fk,
		f, fk,
		f, fk)
}

// CoalesceAnchorQuery profiles freshness against the row-wise first
// non-blank of up to three date columns.
func CoalesceAnchorQuery(table string, columns []string) string {
	t := TableRef(table)
	refs := make([]string, 0, len(columns))
	for _, c := range columns {
		refs = append(refs, ColumnRef(table, c))
	}
	coalesce := fmt.Sprintf("COALESCE(%s)", strings.Join(refs, ", "))
	return fmt.Sprintf(`EVALUATE
VAR B = FILTER(SELECTCOLUMNS(%s, "__d", %s), NOT ISBLANK([__d]))
VAR Mi = MINX(B, [__d])
VAR Ma = MAXX(B, [__d])
VAR _nonblank = COUNTROWS(B)
VAR W7 = IF(NOT ISBLANK(Ma), FILTER(B, [__d] > Ma - 7 && [__d] <= Ma))
VAR W30 = IF(NOT ISBLANK(Ma), FILTER(B, [__d] > Ma - 30 && [__d] <= Ma))
VAR W90 = IF(NOT ISBLANK(Ma), FILTER(B, [__d] > Ma - 90 && [__d] <= Ma))
RETURN
ROW("min", Mi, "max", Ma, "anchor", Ma, "nonblank", _nonblank, "cnt7", COUNTROWS(W7), "cnt30", COUNTROWS(W30), "cnt90", COUNTROWS(W90))`,
		t, coalesce)
}

// BlankStatsQuery measures blank and distinct counts of a foreign key.
func BlankStatsQuery(table, column string) string {
	t := TableRef(table)
	c := ColumnRef(table, column)
	return fmt.Sprintf(`EVALUATE ROW(
 "blank_fk", COUNTROWS(FILTER(%s, ISBLANK(%s))),
 "total_rows", COUNTROWS(%s),
 "distinct_fk", DISTINCTCOUNT(%s)
)`, t, c, t, c)
}

// OrphanQuery counts distinct foreign-key values with no match on the
// dimension side. fromExpr and toExpr are the comparison expressions for the
// two endpoints, already coerced to a common type.
func OrphanQuery(fact, factColumn, dim, dimColumn, fromExpr, toExpr string) string {
	fc := ColumnRef(fact, factColumn)
	dc := ColumnRef(dim, dimColumn)
	return fmt.Sprintf(`EVALUATE
VAR FK = SELECTCOLUMNS(FILTER(VALUES(%s), NOT ISBLANK(%s)), "__k", %s)
VAR PK = SELECTCOLUMNS(FILTER(VALUES(%s), NOT ISBLANK(%s)), "__k", %s)
RETURN ROW("orphan_fk", COUNTROWS(EXCEPT(FK, PK)))`,
		fc, fc, fromExpr,
		dc, dc, toExpr)
}

// EnumTopValuesQuery samples the most frequent values of a column.
func EnumTopValuesQuery(table, column string, limit int) string {
	t := TableRef(table)
	c := ColumnRef(table, column)
	return fmt.Sprintf(`EVALUATE
TOPN(%d,
  SUMMARIZE(%s, %s, "cnt", COUNTROWS(%s)),
  [cnt], DESC
)
ORDER BY [cnt] DESC`, limit, t, c, t)
}
