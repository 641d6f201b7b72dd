package inference

import (
	"strings"

	"github.com/wlvh/Process-SemanticModel/pkg/dax"
	"github.com/wlvh/Process-SemanticModel/pkg/models"
)

// Type vocabularies for three-way normalization. The service reports types
// as free text ("Int64", "DateTime", "Decimal", "String", ...), so matching
// is substring-based on the lowercase form. Date is checked first: composite
// names like "smalldatetime" must not fall into the numeric bucket.
var (
	dateTypeTerms   = []string{"date", "timestamp"}
	numberTypeTerms = []string{"int", "decimal", "double", "number", "numeric", "currency", "whole", "float", "real", "long"}
	textTypeTerms   = []string{"text", "string", "char"}
)

// NormalizeDataType maps a raw type string to the three-way column kind.
// Unrecognized and empty types normalize to text, the safest comparison
// representation. Every component that needs a column kind goes through
// here; nothing else inspects raw type strings.
func NormalizeDataType(raw string) models.ColumnKind {
	t := strings.ToLower(strings.TrimSpace(raw))
	if t == "" {
		return models.KindText
	}
	for _, term := range dateTypeTerms {
		if strings.Contains(t, term) {
			return models.KindDate
		}
	}
	for _, term := range numberTypeTerms {
		if strings.Contains(t, term) {
			return models.KindNumber
		}
	}
	for _, term := range textTypeTerms {
		if strings.Contains(t, term) {
			return models.KindText
		}
	}
	return models.KindText
}

// ComparisonKind picks the representation two differently-typed endpoints
// are compared in: date over number over text, so numeric keys are never
// compared as strings ("1024" vs 1024) and date keys keep calendar order.
func ComparisonKind(a, b models.ColumnKind) models.ColumnKind {
	if a == b {
		return a
	}
	if a == models.KindDate || b == models.KindDate {
		return models.KindDate
	}
	if a == models.KindNumber || b == models.KindNumber {
		return models.KindNumber
	}
	return models.KindText
}

// CoercedComparison carries ready-to-embed expressions for both endpoints of
// a join, cast to a common kind. Mismatch records that the native kinds
// disagreed; the comparison still proceeds on the coerced expressions.
type CoercedComparison struct {
	Kind     models.ColumnKind
	FromExpr string
	ToExpr   string
	Mismatch bool
}

// BuildComparison normalizes both endpoint types and coerces whichever side
// does not already match the comparison kind. Parse failures inside the
// produced expressions evaluate to blank, never to an error.
func BuildComparison(fromTable, fromColumn string, fromKind models.ColumnKind, toTable, toColumn string, toKind models.ColumnKind) CoercedComparison {
	kind := ComparisonKind(fromKind, toKind)
	return CoercedComparison{
		Kind:     kind,
		FromExpr: coerceExpr(dax.ColumnRef(fromTable, fromColumn), fromKind, kind),
		ToExpr:   coerceExpr(dax.ColumnRef(toTable, toColumn), toKind, kind),
		Mismatch: fromKind != toKind,
	}
}

// coerceExpr wraps a column reference so it evaluates as the target kind.
// Number-to-date assumes the yyyymmdd surrogate-key convention; anything
// unparseable comes back blank and drops out of set comparisons.
func coerceExpr(ref string, from, to models.ColumnKind) string {
	if from == to {
		return ref
	}
	switch {
	case from == models.KindNumber && to == models.KindText:
		return dax.NumberToTextExpr(ref)
	case from == models.KindText && to == models.KindNumber:
		return dax.TextToNumberExpr(ref)
	case from == models.KindText && to == models.KindDate:
		return dax.TextToDateExpr(ref)
	case from == models.KindNumber && to == models.KindDate:
		return dax.NumberToDateExpr(ref)
	case from == models.KindDate && to == models.KindText:
		return dax.DateToTextExpr(ref)
	default:
		return ref
	}
}
