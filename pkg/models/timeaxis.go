package models

import "time"

// DateAxis is the model-wide date dimension pick: the table, the surrogate
// key facts join on, and the human-facing date column.
type DateAxis struct {
	Table      string `json:"table"`
	KeyColumn  string `json:"key_column"`
	DateColumn string `json:"date_column"`
}

// FactTimeAxis describes how a single fact table reaches the date axis.
// When no relationship to a date dimension exists, LocalDateColumn carries
// the fact's own best date column instead and HasDateAxis is false.
type FactTimeAxis struct {
	HasDateAxis     bool   `json:"has_date_axis"`
	FactKeyColumn   string `json:"fact_key_column,omitempty"`
	DimensionTable  string `json:"dimension_table,omitempty"`
	DimensionKey    string `json:"dimension_key,omitempty"`
	DateColumn      string `json:"date_column,omitempty"`
	LocalDateColumn string `json:"local_date_column,omitempty"`
}

// AnchorSource tags which freshness strategy produced a time anchor profile.
type AnchorSource string

const (
	AnchorDirect   AnchorSource = "direct"
	AnchorViaKey   AnchorSource = "via_key"
	AnchorCoalesce AnchorSource = "coalesce"
	AnchorFallback AnchorSource = "fallback"
)

// ValidAnchorSources contains all valid anchor source values.
var ValidAnchorSources = []AnchorSource{AnchorDirect, AnchorViaKey, AnchorCoalesce, AnchorFallback}

// TimeAnchorProfile is the data-freshness profile of one fact table.
// All measured fields are nil when the producing strategy could not obtain
// them; Source is always set, AnchorFallback marking the structurally empty
// profile that only names a candidate column.
type TimeAnchorProfile struct {
	Source          AnchorSource `json:"source"`
	AnchorColumn    string       `json:"anchor_column,omitempty"`
	ReferenceColumn string       `json:"reference_column,omitempty"`
	MinDate         *time.Time   `json:"min_date,omitempty"`
	MaxDate         *time.Time   `json:"max_date,omitempty"`
	Anchor          *time.Time   `json:"anchor,omitempty"`
	NonBlankRows    *int64       `json:"non_blank_rows,omitempty"`
	RowsLast7       *int64       `json:"rows_last_7d,omitempty"`
	RowsLast30      *int64       `json:"rows_last_30d,omitempty"`
	RowsLast90      *int64       `json:"rows_last_90d,omitempty"`
}

// Empty reports whether the profile carries no measured data at all.
func (p *TimeAnchorProfile) Empty() bool {
	if p == nil {
		return true
	}
	return p.Anchor == nil && p.MinDate == nil && p.MaxDate == nil &&
		p.NonBlankRows == nil && p.RowsLast7 == nil && p.RowsLast30 == nil && p.RowsLast90 == nil
}
