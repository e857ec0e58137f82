package bloodpressure

import (
	"fmt"
	"strings"
)

// FieldError describes why a single field was rejected.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) String() string { return e.Field + ": " + e.Reason }

// ValidationError is returned when a reading is missing required values or
// has values that cannot be parsed. The ledger is left unchanged.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "invalid reading: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the rejected ones.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *ValidationError) add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// orNil returns e as an error if it holds at least one field error.
func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ParseError is returned when an imported document is not valid JSON.
// The ledger is left unchanged.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "cannot parse document: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// NotFoundError is returned when updating a reading that does not exist.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("reading %q not found", e.ID) }
