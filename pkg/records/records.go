// Package records defines the in-memory row model shared by parsers,
// transformers, and storage backends.
//
// A Record is a loosely typed row keyed by column name. A nil value is the
// null sentinel; a float64 NaN is treated as null by every helper in this
// package so that values produced by math functions never leak into output.
package records

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Record is a single row keyed by column name.
type Record map[string]any

// Table is an ordered set of columns plus the rows that carry them. Rows may
// omit keys listed in Columns; a missing key reads as null.
type Table struct {
	Columns []string
	Rows    []Record
}

// NewTable returns an empty table with the given columns.
func NewTable(columns ...string) Table {
	return Table{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// HasColumn reports whether name is one of the table's columns.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends name to Columns unless it is already present. Row values
// are left untouched.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// RenameColumn renames from to to in Columns and in every row. Renaming onto
// an existing column replaces it. Absent columns are ignored.
func (t *Table) RenameColumn(from, to string) {
	if from == to || !t.HasColumn(from) {
		return
	}
	if t.HasColumn(to) {
		t.DropColumns(to)
	}
	for i, c := range t.Columns {
		if c == from {
			t.Columns[i] = to
		}
	}
	for _, r := range t.Rows {
		if v, ok := r[from]; ok {
			r[to] = v
			delete(r, from)
		}
	}
}

// DropColumns removes the named columns from Columns and from every row.
func (t *Table) DropColumns(names ...string) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	kept := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if _, ok := drop[c]; !ok {
			kept = append(kept, c)
		}
	}
	t.Columns = kept
	for _, r := range t.Rows {
		for n := range drop {
			delete(r, n)
		}
	}
}

// Values returns the column as a slice aligned with Rows.
func (t Table) Values(name string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out
}

// Concat stacks tables row-wise. The result's columns are the union of the
// inputs' columns in first-seen order; rows are not copied.
func Concat(tables ...Table) Table {
	var out Table
	for _, t := range tables {
		for _, c := range t.Columns {
			out.AddColumn(c)
		}
		out.Rows = append(out.Rows, t.Rows...)
	}
	return out
}

// nullTokens are textual spellings of a missing value produced by common
// spreadsheet and dataframe exports.
var nullTokens = map[string]struct{}{
	"na":     {},
	"n/a":    {},
	"nan":    {},
	"<na>":   {},
	"null":   {},
	"none":   {},
	"nat":    {},
	"#n/a":   {},
	"-nan":   {},
	"<null>": {},
}

// IsNullToken reports whether s spells a missing value (case-insensitive,
// surrounding space ignored). The empty string counts as null.
func IsNullToken(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	_, ok := nullTokens[strings.ToLower(s)]
	return ok
}

// IsNull reports whether v is the null sentinel (nil or a NaN float).
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// Float converts v to a float64. It accepts Go numeric types, bools (1/0),
// and strings holding a decimal or scientific literal. Null values, null
// tokens, NaN, and anything unparsable report ok=false.
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		f := float64(x)
		return f, !math.IsNaN(f)
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(x)
		if IsNullToken(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Text renders v as text. Floats use the shortest decimal form that round
// trips ("3", "11.34089"); nil renders as "".
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case []byte:
		return string(x)
	case interface{ String() string }:
		return x.String()
	}
	return fmt.Sprint(v)
}
