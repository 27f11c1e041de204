package builtin

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"vlingest/pkg/records"
)

const nbsp = "\u00a0"

// Normalize cleans string cells: NBSP becomes a space, surrounding whitespace
// is trimmed, and the text is put in Unicode NFC form. With Lower the result is
// lower-cased. Columns limits the pass; empty means every column.
type Normalize struct {
	Columns []string
	Lower   bool
}

// Apply modifies rows in place.
func (n Normalize) Apply(in records.Table) (records.Table, error) {
	cols := n.Columns
	if len(cols) == 0 {
		cols = in.Columns
	}
	for _, r := range in.Rows {
		for _, c := range cols {
			if s, ok := r[c].(string); ok {
				r[c] = n.clean(s)
			}
		}
	}
	return in, nil
}

func (n Normalize) clean(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, nbsp, " "))
	s = norm.NFC.String(s)
	if n.Lower {
		s = strings.ToLower(s)
	}
	return s
}
