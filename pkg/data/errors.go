package data

import "fmt"

// SchemaError reports a referenced column that is absent or has the wrong type.
type SchemaError struct {
	Op     string
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: column %q not found", e.Op, e.Column)
	}
	return fmt.Sprintf("%s: column %q: %s", e.Op, e.Column, e.Reason)
}

// DomainError reports a cell value outside the set an operation accepts.
// Row is -1 when the error concerns the column as a whole.
type DomainError struct {
	Op     string
	Column string
	Row    int
	Value  string
	Reason string
}

func (e *DomainError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("%s: column %q: %s", e.Op, e.Column, e.Reason)
	}
	return fmt.Sprintf("%s: column %q row %d: value %q %s", e.Op, e.Column, e.Row, e.Value, e.Reason)
}

// DegenerateColumnError is returned when a column has zero variance and cannot be standardized.
type DegenerateColumnError struct {
	Column string
}

func (e *DegenerateColumnError) Error() string {
	return fmt.Sprintf("scale: column %q has zero standard deviation", e.Column)
}
