package dataset

import "fmt"

// SchemaError reports a malformed input table: a missing column or a cell
// that does not parse as a number.
type SchemaError struct {
	Column string
	Line   int // 0 when the error concerns the header
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("schema: line %d column %q: %s", e.Line, e.Column, e.Reason)
	}
	return fmt.Sprintf("schema: column %q: %s", e.Column, e.Reason)
}

// DataError reports a missing record or a zero denominator. Key names the
// offending combination; zero-valued fields of Key are not part of it.
type DataError struct {
	Key    Key
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data: %s: %s", e.describeKey(), e.Reason)
}

func (e *DataError) describeKey() string {
	switch {
	case e.Key.Alternative == 0 && e.Key.CustomerGroup == 0:
		return fmt.Sprintf("scenario=%d", e.Key.Scenario)
	case e.Key.CustomerGroup == 0:
		return fmt.Sprintf("scenario=%d alternative=%d", e.Key.Scenario, e.Key.Alternative)
	default:
		return e.Key.String()
	}
}
