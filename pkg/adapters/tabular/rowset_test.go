package tabular

import (
	"testing"
	"time"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"aliased projection", "[table_name]", "table_name"},
		{"qualified column", "Sales[Order Date]", "order_date"},
		{"bare alias", "[cnt7]", "cnt7"},
		{"no brackets", "row_count", "row_count"},
		{"mixed case", "[StorageMode]", "storagemode"},
		{"spaces", "[Total Rows]", "total_rows"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKey(tt.raw); got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNewRowNormalizesKeys(t *testing.T) {
	row := NewRow(map[string]any{
		"[table_name]":   "Fact Sales",
		"Sales[Row Cnt]": float64(42),
	})

	if got := row.String("table_name"); got != "Fact Sales" {
		t.Errorf("String(table_name) = %q, want %q", got, "Fact Sales")
	}
	if got, ok := row.Int64("row_cnt"); !ok || got != 42 {
		t.Errorf("Int64(row_cnt) = %d, %v, want 42, true", got, ok)
	}
}

func TestRowAccessors(t *testing.T) {
	row := Row{
		"name":     "DimDate",
		"count":    float64(100),
		"ratio":    0.25,
		"hidden":   true,
		"flag_str": "true",
		"anchor":   "2024-03-01T00:00:00",
		"missing":  nil,
	}

	if got := row.String("name"); got != "DimDate" {
		t.Errorf("String(name) = %q", got)
	}
	if got := row.String("missing"); got != "" {
		t.Errorf("String(missing) = %q, want empty", got)
	}
	if got, ok := row.Int64("count"); !ok || got != 100 {
		t.Errorf("Int64(count) = %d, %v", got, ok)
	}
	if _, ok := row.Int64("ratio"); ok {
		t.Error("Int64(ratio) should reject fractional values")
	}
	if got, ok := row.Float64("ratio"); !ok || got != 0.25 {
		t.Errorf("Float64(ratio) = %v, %v", got, ok)
	}
	if !row.Bool("hidden") {
		t.Error("Bool(hidden) = false, want true")
	}
	if !row.Bool("flag_str") {
		t.Error("Bool(flag_str) = false, want true")
	}

	ts, ok := row.Time("anchor")
	if !ok {
		t.Fatal("Time(anchor) not parsed")
	}
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Errorf("Time(anchor) = %v, want %v", ts, want)
	}
}

func TestRowSetFirstAndEmpty(t *testing.T) {
	var nilSet *RowSet
	if !nilSet.Empty() {
		t.Error("nil RowSet should be empty")
	}
	if nilSet.First() != nil {
		t.Error("nil RowSet First() should be nil")
	}

	empty := &RowSet{}
	if !empty.Empty() {
		t.Error("zero RowSet should be empty")
	}

	rs := &RowSet{Rows: []Row{{"a": 1}, {"a": 2}}}
	if rs.Empty() {
		t.Error("populated RowSet should not be empty")
	}
	if got := rs.First(); got == nil {
		t.Fatal("First() returned nil")
	}
}
