// Package transformer defines the table-level transformation contract used by
// every per-study step, plus Chain for running steps in order.
package transformer

import (
	"errors"
	"fmt"

	"vlingest/pkg/records"
)

// ErrColumnNotFound is returned when a step needs a raw column that the input
// table does not carry. It is a structural failure and aborts the study.
var ErrColumnNotFound = errors.New("column not found")

// Transformer maps one table to another. Implementations may reuse the input
// row maps; callers must not rely on the input after Apply returns.
type Transformer interface {
	Apply(in records.Table) (records.Table, error)
}

// Func adapts a plain function to Transformer.
type Func func(in records.Table) (records.Table, error)

// Apply calls f(in).
func (f Func) Apply(in records.Table) (records.Table, error) { return f(in) }

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply feeds the output of each transformer into the next. The first error
// stops the chain and is returned wrapped with the failing step index.
func (c Chain) Apply(in records.Table) (records.Table, error) {
	out := in
	for i, t := range c {
		var err error
		if out, err = t.Apply(out); err != nil {
			return records.Table{}, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return out, nil
}

// MissingColumns returns the names in want that t does not carry, in order.
func MissingColumns(t records.Table, want ...string) []string {
	var missing []string
	for _, c := range want {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// RequireColumns returns an error wrapping ErrColumnNotFound when any of want
// is absent from t.
func RequireColumns(t records.Table, want ...string) error {
	if missing := MissingColumns(t, want...); len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrColumnNotFound, missing)
	}
	return nil
}
