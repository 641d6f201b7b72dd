package models

// Severity grades a relationship's join quality.
type Severity string

const (
	SeverityRed    Severity = "RED"
	SeverityYellow Severity = "YELLOW"
	SeverityGreen  Severity = "GREEN"
)

// Rank orders severities worst-first (RED=0) for deterministic sorting.
func (s Severity) Rank() int {
	switch s {
	case SeverityRed:
		return 0
	case SeverityYellow:
		return 1
	default:
		return 2
	}
}

// QualityThresholds is the severity policy for relationship quality grading.
// Comparisons are strict: a coverage exactly at CoverageRed is not RED.
type QualityThresholds struct {
	CoverageRed    float64 `json:"coverage_red" yaml:"coverage_red" env:"SEMDOC_COVERAGE_RED" env-default:"0.95"`
	CoverageYellow float64 `json:"coverage_yellow" yaml:"coverage_yellow" env:"SEMDOC_COVERAGE_YELLOW" env-default:"0.98"`
	BlankRed       float64 `json:"blank_red" yaml:"blank_red" env:"SEMDOC_BLANK_RED" env-default:"0.05"`
	BlankYellow    float64 `json:"blank_yellow" yaml:"blank_yellow" env:"SEMDOC_BLANK_YELLOW" env-default:"0.02"`
}

// DefaultQualityThresholds returns the standard severity policy.
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		CoverageRed:    0.95,
		CoverageYellow: 0.98,
		BlankRed:       0.05,
		BlankYellow:    0.02,
	}
}

// RelationshipQuality is the measured join health of one business
// relationship. Ratio fields are nil whenever their denominator was zero or
// the backing query failed; Severity grades whatever could be measured.
type RelationshipQuality struct {
	FromTable      string     `json:"from_table"`
	FromColumn     string     `json:"from_column"`
	ToTable        string     `json:"to_table"`
	ToColumn       string     `json:"to_column"`
	BlankRows      *int64     `json:"blank_rows,omitempty"`
	TotalRows      *int64     `json:"total_rows,omitempty"`
	DistinctKeys   *int64     `json:"distinct_keys,omitempty"`
	OrphanKeys     *int64     `json:"orphan_keys,omitempty"`
	BlankRatio     *float64   `json:"blank_ratio,omitempty"`
	Coverage       *float64   `json:"coverage,omitempty"`
	Severity       Severity   `json:"severity"`
	ComparisonKind ColumnKind `json:"comparison_type,omitempty"`
	TypeMismatch   bool       `json:"type_mismatch,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// Indicator is the single badness number used for ranking: the larger of the
// blank ratio and the uncovered share. Missing ratios count as zero here so
// unmeasurable edges rank below measured ones of equal severity.
func (q *RelationshipQuality) Indicator() float64 {
	var ind float64
	if q.BlankRatio != nil && *q.BlankRatio > ind {
		ind = *q.BlankRatio
	}
	if q.Coverage != nil {
		if miss := 1 - *q.Coverage; miss > ind {
			ind = miss
		}
	}
	return ind
}

// QualityReport bundles the analyzer output: a bounded worst-first summary,
// the full per-relationship details, and structural lints.
type QualityReport struct {
	Summary    []RelationshipQuality `json:"summary"`
	Details    []RelationshipQuality `json:"details"`
	Lints      []string              `json:"lints,omitempty"`
	Thresholds QualityThresholds     `json:"thresholds"`
}
