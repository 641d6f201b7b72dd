package dax

import "fmt"

// Value coercion expressions. Each takes a rendered column reference (see
// ColumnRef) and returns a DAX expression yielding the converted value, or
// BLANK() when the source value cannot be converted.

// NumberToTextExpr stringifies a numeric column with a fixed format so equal
// numbers always produce equal text.
func NumberToTextExpr(colRef string) string {
	return fmt.Sprintf(`FORMAT(%s, "0")`, colRef)
}

// TextToNumberExpr parses a text column as a number, blank on failure.
func TextToNumberExpr(colRef string) string {
	return fmt.Sprintf(`IFERROR(VALUE(%s), BLANK())`, colRef)
}

// TextToDateExpr parses a text column as a date with an optional time part.
// The literal is split on the first space: the head must parse as a date,
// the tail (when present) is added as a time of day. Unparseable values
// yield blank rather than an error.
func TextToDateExpr(colRef string) string {
	return fmt.Sprintf(
		`VAR __s = TRIM(%s) `+
			`VAR __p = FIND(" ", __s & " ") `+
			`VAR __d = LEFT(__s, __p - 1) `+
			`VAR __t = MID(__s, __p + 1, LEN(__s)) `+
			`RETURN IF(LEN(__s) > 0, IFERROR(DATEVALUE(__d) + IF(LEN(__t) > 0, IFERROR(TIMEVALUE(__t), 0), 0), BLANK()), BLANK())`,
		colRef)
}

// NumberToDateExpr reads a yyyymmdd surrogate key (20240102) as a date,
// blank when the digits do not form a valid date.
func NumberToDateExpr(colRef string) string {
	return fmt.Sprintf(`IFERROR(DATEVALUE(FORMAT(%s, "0000-00-00")), BLANK())`, colRef)
}

// DateToTextExpr stringifies a date column to ISO form for text comparisons.
func DateToTextExpr(colRef string) string {
	return fmt.Sprintf(`FORMAT(%s, "yyyy-mm-dd")`, colRef)
}
