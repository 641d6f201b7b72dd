package models

import "time"

// Table is one table listed by the model's metadata views.
type Table struct {
	Name        string `json:"name"`
	IsHidden    bool   `json:"is_hidden"`
	StorageMode string `json:"storage_mode,omitempty"`
	Description string `json:"description,omitempty"`
}

// Column is one column listed by the model's metadata views. DataType carries
// the service's raw type string (e.g. "Int64", "DateTime", "String"); kind
// normalization happens in the inference layer.
type Column struct {
	Table    string `json:"table"`
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	IsHidden bool   `json:"is_hidden"`
}

// Measure is one model measure. Expression is the raw definition text; the
// engine only surface-matches it, it never evaluates it.
type Measure struct {
	Table        string `json:"table"`
	Name         string `json:"name"`
	Expression   string `json:"expression,omitempty"`
	FormatString string `json:"format_string,omitempty"`
	IsHidden     bool   `json:"is_hidden"`
}

// Relationship is one model relationship as reported by the service.
// Cardinality and cross-filter values are kept verbatim ("One", "Many",
// "OneDirection", ...).
type Relationship struct {
	FromTable       string `json:"from_table"`
	FromColumn      string `json:"from_column"`
	ToTable         string `json:"to_table"`
	ToColumn        string `json:"to_column"`
	IsActive        bool   `json:"is_active"`
	CrossFilter     string `json:"cross_filter,omitempty"`
	FromCardinality string `json:"from_cardinality,omitempty"`
	ToCardinality   string `json:"to_cardinality,omitempty"`
}

// ModelMetadata is a point-in-time snapshot of the four metadata listings the
// engine consumes. Warnings records categories that could not be fetched;
// their slices stay empty rather than failing the whole snapshot.
type ModelMetadata struct {
	Dataset       string         `json:"dataset"`
	Workspace     string         `json:"workspace,omitempty"`
	FetchedAt     time.Time      `json:"fetched_at"`
	Tables        []Table        `json:"tables"`
	Columns       []Column       `json:"columns"`
	Measures      []Measure      `json:"measures"`
	Relationships []Relationship `json:"relationships"`
	Warnings      []string       `json:"warnings,omitempty"`
}
