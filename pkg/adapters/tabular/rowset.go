package tabular

import (
	"strings"
	"time"

	"github.com/wlvh/Process-SemanticModel/pkg/jsonutil"
)

// Row is one result row keyed by normalized column name.
//
// The query service names row fields after the output column, e.g.
// "[table_name]" for an aliased projection or "Sales[Amount]" for a bare
// column reference. NormalizeKey reduces both forms to "table_name" and
// "amount" so callers can address fields without caring which form the
// service picked.
type Row map[string]any

// RowSet is the decoded result of a single query.
type RowSet struct {
	Rows []Row
}

// NormalizeKey reduces a result field name to lowercase snake case with
// bracket qualifiers removed.
func NormalizeKey(raw string) string {
	s := raw
	if i := strings.LastIndex(s, "["); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(s, "]")
	s = strings.TrimSpace(strings.ToLower(s))
	return strings.ReplaceAll(s, " ", "_")
}

// NewRow normalizes every key of a decoded JSON object.
func NewRow(raw map[string]any) Row {
	row := make(Row, len(raw))
	for k, v := range raw {
		row[NormalizeKey(k)] = v
	}
	return row
}

// Empty reports whether the result contains no rows.
func (rs *RowSet) Empty() bool {
	return rs == nil || len(rs.Rows) == 0
}

// First returns the first row, or nil when the result is empty.
func (rs *RowSet) First() Row {
	if rs.Empty() {
		return nil
	}
	return rs.Rows[0]
}

// String returns the field as a string. Numeric and boolean values are
// formatted; missing or null fields return "".
func (r Row) String(key string) string {
	return jsonutil.FlexibleString(r[key])
}

// Int64 returns the field as an int64 when it holds a whole number.
func (r Row) Int64(key string) (int64, bool) {
	if p := jsonutil.FlexibleInt64(r[key]); p != nil {
		return *p, true
	}
	return 0, false
}

// Float64 returns the field as a float64.
func (r Row) Float64(key string) (float64, bool) {
	if p := jsonutil.FlexibleFloat64(r[key]); p != nil {
		return *p, true
	}
	return 0, false
}

// Bool returns the field as a bool, accepting the service's habit of
// returning booleans as strings or 0/1.
func (r Row) Bool(key string) bool {
	return jsonutil.FlexibleBool(r[key])
}

// Time parses the field as a timestamp in any of the service's date
// formats, normalized to UTC.
func (r Row) Time(key string) (time.Time, bool) {
	if p := jsonutil.FlexibleTime(r[key]); p != nil {
		return *p, true
	}
	return time.Time{}, false
}
