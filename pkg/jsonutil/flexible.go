package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FlexibleString converts a decoded JSON value to a string, handling cells
// where the service returns numbers or booleans instead of strings. Returns
// empty string for nil.
func FlexibleString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	case json.Number:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// FlexibleInt64 converts a decoded JSON value to an int64 when it carries a
// whole number in any representation. Returns nil for null, blanks, and
// values that are not whole numbers.
func FlexibleInt64(v any) *int64 {
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		n := int64(val)
		if float64(n) != val {
			return nil
		}
		return &n
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil
		}
		return &n
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

// FlexibleFloat64 converts a decoded JSON value to a float64. Returns nil
// for null, blanks, and non-numeric values.
func FlexibleFloat64(v any) *float64 {
	switch val := v.(type) {
	case nil:
		return nil
	case float64:
		f := val
		return &f
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// FlexibleBool converts a decoded JSON value to a bool. Accepts JSON
// booleans, 0/1 numbers, and common truthy strings. Returns false otherwise.
func FlexibleBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "1", "yes":
			return true
		}
		return false
	default:
		return false
	}
}

// dateLayouts lists the timestamp shapes the query service emits, most
// specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006",
}

// FlexibleTime converts a decoded JSON value to a UTC timestamp. Returns nil
// for null, blanks, and strings no known layout can parse.
func FlexibleTime(v any) *time.Time {
	s := strings.TrimSpace(FlexibleString(v))
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}
