package builtin

import (
	"fmt"
	"strings"

	"vlingest/pkg/records"
)

// DefaultNullToken is the text StringifyNulls writes for a null string cell.
const DefaultNullToken = "<NA>"

// CoerceError reports a numeric cell that could not be parsed in strict mode.
type CoerceError struct {
	Column string
	Row    int
	Value  any
}

func (e *CoerceError) Error() string {
	return fmt.Sprintf("coerce: column %s row %d: %#v is not numeric", e.Column, e.Row, e.Value)
}

// Coerce normalizes value types column by column. Only columns present in the
// table are touched.
//
//   - Numeric columns become float64, or null when the cell is null, a null
//     spelling, or unparsable.
//   - String columns become their textual rendering. Null stays null unless
//     StringifyNulls is set, in which case it becomes NullToken.
type Coerce struct {
	Numeric []string
	String  []string

	// Strict fails on a non-empty numeric cell that does not parse instead of
	// nulling it.
	Strict bool

	StringifyNulls bool
	NullToken      string

	// OnInvalid, if set, is called for each non-empty numeric cell that was
	// nulled because it did not parse.
	OnInvalid func(column string, row int, value any)
}

// Apply implements transformer.Transformer. Rows are modified in place.
func (c Coerce) Apply(in records.Table) (records.Table, error) {
	token := c.NullToken
	if token == "" {
		token = DefaultNullToken
	}
	for _, col := range c.Numeric {
		if !in.HasColumn(col) {
			continue
		}
		for i, r := range in.Rows {
			v := r[col]
			f, ok := records.Float(v)
			if ok {
				r[col] = f
				continue
			}
			r[col] = nil
			if !invalidNumeric(v) {
				continue
			}
			if c.Strict {
				return records.Table{}, &CoerceError{Column: col, Row: i, Value: v}
			}
			if c.OnInvalid != nil {
				c.OnInvalid(col, i, v)
			}
		}
	}
	for _, col := range c.String {
		if !in.HasColumn(col) {
			continue
		}
		for _, r := range in.Rows {
			v := r[col]
			switch {
			case records.IsNull(v) && c.StringifyNulls:
				r[col] = token
			case records.IsNull(v):
				r[col] = nil
			default:
				r[col] = records.Text(v)
			}
		}
	}
	return in, nil
}

// invalidNumeric reports whether a value that failed to parse carried real
// content, as opposed to being null or a null spelling.
func invalidNumeric(v any) bool {
	if records.IsNull(v) {
		return false
	}
	if s, ok := v.(string); ok {
		return !records.IsNullToken(strings.TrimSpace(s))
	}
	return true
}
