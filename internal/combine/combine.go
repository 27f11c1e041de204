// Package combine stacks per-study outputs into the final dataset.
package combine

import (
	"errors"
	"fmt"
	"slices"

	"vlingest/pkg/records"
)

// ErrSchemaMismatch is returned when the inputs do not share one column list.
var ErrSchemaMismatch = errors.New("schema mismatch")

// Combine concatenates tables row-wise in argument order. Rows are neither
// deduplicated nor copied. Every table must have exactly the same columns in
// the same order; zero tables yield an empty table.
func Combine(tables ...records.Table) (records.Table, error) {
	if len(tables) == 0 {
		return records.Table{}, nil
	}
	cols := tables[0].Columns
	n := 0
	for i, t := range tables {
		if !slices.Equal(cols, t.Columns) {
			return records.Table{}, fmt.Errorf("%w: table %d has columns %v, want %v", ErrSchemaMismatch, i, t.Columns, cols)
		}
		n += t.Len()
	}
	out := records.Table{
		Columns: slices.Clone(cols),
		Rows:    make([]records.Record, 0, n),
	}
	for _, t := range tables {
		out.Rows = append(out.Rows, t.Rows...)
	}
	return out, nil
}

// Rows returns the table as positional rows aligned with t.Columns, the shape
// storage backends consume.
func Rows(t records.Table) [][]any {
	out := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		row := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = r[c]
		}
		out[i] = row
	}
	return out
}
