// Package builtin contains the reusable steps study descriptors are built
// from, plus the two fixed final stages every study passes through: Enforce
// (canonical column set and order) and Coerce (canonical value types).
package builtin

import "vlingest/pkg/records"

// Enforce projects a table onto a fixed ordered column list. Missing columns
// are added as null, extra columns are dropped, and the output column order
// equals Columns exactly. Rows are copied into fresh maps so the result shares
// no state with the input.
type Enforce struct {
	Columns []string
}

// Apply implements transformer.Transformer. It never fails.
func (e Enforce) Apply(in records.Table) (records.Table, error) {
	return EnforceSchema(in, e.Columns), nil
}

// EnforceSchema is the function form of Enforce.
func EnforceSchema(in records.Table, columns []string) records.Table {
	out := records.Table{
		Columns: append([]string(nil), columns...),
		Rows:    make([]records.Record, len(in.Rows)),
	}
	for i, r := range in.Rows {
		nr := make(records.Record, len(columns))
		for _, c := range columns {
			nr[c] = r[c]
		}
		out.Rows[i] = nr
	}
	return out
}
