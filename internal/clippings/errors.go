package clippings

import (
	"errors"
	"fmt"
	"strings"
)

// StructuralError means the record does not follow the expected line layout.
type StructuralError struct {
	Clause string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("malformed %s: %s", e.Clause, e.Reason)
}

// NumericFormatError means a location or date component is not a number
// or lies outside its valid range.
type NumericFormatError struct {
	Field string
	Value string
}

func (e *NumericFormatError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// UnknownMonthError means the month name is missing from the active month table.
type UnknownMonthError struct {
	Month  string
	Locale string
}

func (e *UnknownMonthError) Error() string {
	return fmt.Sprintf("unknown month name %q for locale %q", e.Month, e.Locale)
}

// RecordError ties a parse failure to the record it came from.
// Index is the zero-based position of the record in the live input.
type RecordError struct {
	Index   int    `json:"index" yaml:"index"`
	Raw     string `json:"raw" yaml:"raw"`
	Kind    string `json:"kind" yaml:"kind"`
	Message string `json:"error" yaml:"error"`
	Err     error  `json:"-" yaml:"-"`
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d (%s): %v", e.Index, firstLine(e.Raw), e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

func structural(clause, reason string) error {
	return &StructuralError{Clause: clause, Reason: reason}
}

func firstLine(s string) string {
	s = strings.TrimPrefix(s, bom)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > 60 {
		s = string(r[:60]) + "..."
	}
	return s
}

// Error kinds reported by ErrorKind.
const (
	ErrorKindStructural    = "structural"
	ErrorKindNumericFormat = "numeric_format"
	ErrorKindUnknownMonth  = "unknown_month"
)

// ErrorKind names the parse failure category of err, or "" when err is not
// a parse failure.
func ErrorKind(err error) string {
	var structuralErr *StructuralError
	var numericErr *NumericFormatError
	var monthErr *UnknownMonthError
	switch {
	case errors.As(err, &structuralErr):
		return ErrorKindStructural
	case errors.As(err, &numericErr):
		return ErrorKindNumericFormat
	case errors.As(err, &monthErr):
		return ErrorKindUnknownMonth
	default:
		return ""
	}
}
