package builtin

import (
	"fmt"

	"vlingest/internal/transformer"
	"vlingest/pkg/records"
)

// Require removes any row missing a value for one of Columns. Null, NaN, and
// the empty string count as missing.
type Require struct {
	Columns []string
}

// Apply filters rows in place.
func (q Require) Apply(in records.Table) (records.Table, error) {
	if err := transformer.RequireColumns(in, q.Columns...); err != nil {
		return records.Table{}, fmt.Errorf("require: %w", err)
	}
	out := in.Rows[:0]
	for _, r := range in.Rows {
		ok := true
		for _, c := range q.Columns {
			v := r[c]
			if records.IsNull(v) || v == "" {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, r)
		}
	}
	in.Rows = out
	return in, nil
}
