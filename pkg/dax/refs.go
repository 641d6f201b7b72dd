// Package dax authors every query and expression fragment the engine sends
// to the tabular query service. Components never concatenate query text
// themselves; they pass table and column names (and pre-built value
// expressions) to the builders here.
package dax

import "strings"

// TableRef renders a quoted table reference: 'Fact Survey'.
// Embedded single quotes are doubled per DAX escaping rules.
func TableRef(table string) string {
	return "'" + strings.ReplaceAll(table, "'", "''") + "'"
}

// ColumnRef renders a fully qualified column reference: 'Table'[Column].
// Embedded closing brackets are doubled per DAX escaping rules.
func ColumnRef(table, column string) string {
	return TableRef(table) + "[" + escapeBracket(column) + "]"
}

// MeasureRef renders a measure reference: [Measure].
func MeasureRef(name string) string {
	return "[" + escapeBracket(name) + "]"
}

// QuoteString renders a DAX string literal with embedded quotes doubled.
func QuoteString(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func escapeBracket(name string) string {
	return strings.ReplaceAll(name, "]", "]]")
}
