package jsonutil

import (
	"testing"
	"time"
)

func TestFlexibleString(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{
			name:  "string value",
			input: "hello",
			want:  "hello",
		},
		{
			name:  "whole float renders as integer",
			input: float64(42),
			want:  "42",
		},
		{
			name:  "fractional float",
			input: 3.14,
			want:  "3.14",
		},
		{
			name:  "boolean true",
			input: true,
			want:  "true",
		},
		{
			name:  "boolean false",
			input: false,
			want:  "false",
		},
		{
			name:  "nil value",
			input: nil,
			want:  "",
		},
		{
			name:  "negative integer",
			input: float64(-7),
			want:  "-7",
		},
		{
			name:  "zero",
			input: float64(0),
			want:  "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlexibleString(tt.input)
			if got != tt.want {
				t.Errorf("FlexibleString(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFlexibleInt64(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  *int64
	}{
		{
			name:  "whole float",
			input: float64(120),
			want:  ptr(int64(120)),
		},
		{
			name:  "numeric string",
			input: "42",
			want:  ptr(int64(42)),
		},
		{
			name:  "fractional float rejected",
			input: 1.5,
			want:  nil,
		},
		{
			name:  "nil",
			input: nil,
			want:  nil,
		},
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
		{
			name:  "non-numeric string",
			input: "abc",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlexibleInt64(tt.input)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("FlexibleInt64(%v) = %v, want %v", tt.input, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("FlexibleInt64(%v) = %d, want %d", tt.input, *got, *tt.want)
			}
		})
	}
}

func TestFlexibleFloat64(t *testing.T) {
	if got := FlexibleFloat64(0.25); got == nil || *got != 0.25 {
		t.Errorf("FlexibleFloat64(0.25) = %v, want 0.25", got)
	}
	if got := FlexibleFloat64("0.5"); got == nil || *got != 0.5 {
		t.Errorf("FlexibleFloat64(\"0.5\") = %v, want 0.5", got)
	}
	if got := FlexibleFloat64(nil); got != nil {
		t.Errorf("FlexibleFloat64(nil) = %v, want nil", got)
	}
	if got := FlexibleFloat64("n/a"); got != nil {
		t.Errorf("FlexibleFloat64(\"n/a\") = %v, want nil", got)
	}
}

func TestFlexibleBool(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  bool
	}{
		{name: "bool true", input: true, want: true},
		{name: "bool false", input: false, want: false},
		{name: "one", input: float64(1), want: true},
		{name: "zero", input: float64(0), want: false},
		{name: "string true", input: "True", want: true},
		{name: "string no", input: "no", want: false},
		{name: "nil", input: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FlexibleBool(tt.input); got != tt.want {
				t.Errorf("FlexibleBool(%v) = %t, want %t", tt.input, got, tt.want)
			}
		})
	}
}

func TestFlexibleTime(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{
			name:  "rfc3339",
			input: "2024-06-01T10:30:00Z",
			want:  "2024-06-01T10:30:00Z",
		},
		{
			name:  "datetime without zone",
			input: "2024-06-01T10:30:00",
			want:  "2024-06-01T10:30:00Z",
		},
		{
			name:  "space separated",
			input: "2024-06-01 10:30:00",
			want:  "2024-06-01T10:30:00Z",
		},
		{
			name:  "date only",
			input: "2024-06-01",
			want:  "2024-06-01T00:00:00Z",
		},
		{
			name:  "us style",
			input: "6/1/2024",
			want:  "2024-06-01T00:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FlexibleTime(tt.input)
			if got == nil {
				t.Fatalf("FlexibleTime(%v) = nil, want %s", tt.input, tt.want)
			}
			if got.Format(time.RFC3339) != tt.want {
				t.Errorf("FlexibleTime(%v) = %s, want %s", tt.input, got.Format(time.RFC3339), tt.want)
			}
		})
	}

	if got := FlexibleTime(nil); got != nil {
		t.Errorf("FlexibleTime(nil) = %v, want nil", got)
	}
	if got := FlexibleTime("not a date"); got != nil {
		t.Errorf("FlexibleTime(\"not a date\") = %v, want nil", got)
	}
}

func ptr[T any](v T) *T { return &v }
