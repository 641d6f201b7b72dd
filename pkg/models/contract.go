package models

import "time"

// ContractVersion identifies the output contract shape for downstream
// consumers (renderers, MCP clients, stored runs).
const ContractVersion = "semdoc/1"

// DimensionEdge is one fact-to-dimension join in the reconstructed star
// schema.
type DimensionEdge struct {
	Dimension       string `json:"dimension"`
	FactColumn      string `json:"fact_column"`
	DimensionColumn string `json:"dimension_column"`
	CrossFilter     string `json:"cross_filter,omitempty"`
	FromCardinality string `json:"from_cardinality,omitempty"`
	ToCardinality   string `json:"to_cardinality,omitempty"`
}

// EnumValue is one sampled value of a low-cardinality column.
type EnumValue struct {
	Value string `json:"value"`
	Rows  int64  `json:"rows"`
}

// FactSummary is everything inferred about one fact table.
type FactSummary struct {
	TimeAxis   *FactTimeAxis          `json:"time_axis,omitempty"`
	RowCount   *int64                 `json:"row_count,omitempty"`
	Profile    *TimeAnchorProfile     `json:"profile,omitempty"`
	Dimensions []DimensionEdge        `json:"dimensions,omitempty"`
	EnumValues map[string][]EnumValue `json:"enum_values,omitempty"`
}

// DimensionSummary is everything inferred about one dimension table.
type DimensionSummary struct {
	LabelColumn string   `json:"label_column,omitempty"`
	Aliases     []string `json:"aliases,omitempty"`
	KeyColumns  []string `json:"key_columns,omitempty"`
	IsDateAxis  bool     `json:"is_date_axis,omitempty"`
}

// RelationshipSummary is one business-table relationship in the contract.
// Inactive relationships carry a ready-made USERELATIONSHIP hint so query
// authors know how to activate them.
type RelationshipSummary struct {
	FromTable           string `json:"from_table"`
	FromColumn          string `json:"from_column"`
	ToTable             string `json:"to_table"`
	ToColumn            string `json:"to_column"`
	Active              bool   `json:"active"`
	CrossFilter         string `json:"cross_filter,omitempty"`
	UseRelationshipHint string `json:"use_relationship_hint,omitempty"`
}

// MeasureSummary is one visible measure in the contract. Expression is only
// populated when the caller opted into carrying definition text.
type MeasureSummary struct {
	Table      string   `json:"table"`
	Category   string   `json:"category"`
	Format     string   `json:"format,omitempty"`
	DependsOn  []string `json:"depends_on,omitempty"`
	Expression string   `json:"expression,omitempty"`
}

// ContractCounts summarizes model shape and relationship filtering. The
// filter counts are computed per run and returned here rather than held as
// component state.
type ContractCounts struct {
	Tables                int `json:"tables"`
	Facts                 int `json:"facts"`
	Dimensions            int `json:"dimensions"`
	Bridges               int `json:"bridges"`
	Other                 int `json:"other"`
	Columns               int `json:"columns"`
	Measures              int `json:"measures"`
	Relationships         int `json:"relationships"`
	BusinessRelationships int `json:"business_relationships"`
	InactiveFiltered      int `json:"inactive_filtered"`
	AutoDateFiltered      int `json:"auto_date_filtered"`
}

// InferenceResult is the engine's full output contract.
type InferenceResult struct {
	Version       string                       `json:"version"`
	Dataset       string                       `json:"dataset"`
	Workspace     string                       `json:"workspace,omitempty"`
	GeneratedAt   time.Time                    `json:"generated_at"`
	DateAxis      *DateAxis                    `json:"date_axis,omitempty"`
	Roles         map[string]TableRole         `json:"roles"`
	Facts         map[string]*FactSummary      `json:"facts"`
	Dimensions    map[string]*DimensionSummary `json:"dimensions"`
	Relationships []RelationshipSummary        `json:"relationships"`
	Measures      map[string]*MeasureSummary   `json:"measures,omitempty"`
	Quality       *QualityReport               `json:"relationship_quality,omitempty"`
	Counts        ContractCounts               `json:"counts"`
	Warnings      []string                     `json:"warnings,omitempty"`
}
