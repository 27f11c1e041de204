package builtin

import (
	"fmt"
	"math"
	"regexp"
	"sort"

	"vlingest/internal/transformer"
	"vlingest/pkg/records"
)

// ValueMap replaces cells of Column whose text is a key of Map. Unmapped and
// null cells are kept.
type ValueMap struct {
	Column string
	Map    map[string]any
}

// Apply implements transformer.Transformer.
func (m ValueMap) Apply(in records.Table) (records.Table, error) {
	if err := transformer.RequireColumns(in, m.Column); err != nil {
		return records.Table{}, fmt.Errorf("value_map: %w", err)
	}
	for _, r := range in.Rows {
		v := r[m.Column]
		if records.IsNull(v) {
			continue
		}
		if nv, ok := m.Map[records.Text(v)]; ok {
			r[m.Column] = nv
		}
	}
	return in, nil
}

// Lookup derives To from the text of From through Map. Unmapped and null
// keys yield null.
type Lookup struct {
	From string
	To   string
	Map  map[string]any
}

// Apply implements transformer.Transformer.
func (l Lookup) Apply(in records.Table) (records.Table, error) {
	if err := transformer.RequireColumns(in, l.From); err != nil {
		return records.Table{}, fmt.Errorf("lookup: %w", err)
	}
	in.AddColumn(l.To)
	for _, r := range in.Rows {
		v := r[l.From]
		if records.IsNull(v) {
			r[l.To] = nil
			continue
		}
		r[l.To] = l.Map[records.Text(v)]
	}
	return in, nil
}

// Constant sets fixed values on every row. With IfAbsent only columns the
// table does not already carry are set.
type Constant struct {
	Values   map[string]any
	IfAbsent bool
}

// Apply implements transformer.Transformer.
func (c Constant) Apply(in records.Table) (records.Table, error) {
	cols := make([]string, 0, len(c.Values))
	for k := range c.Values {
		if c.IfAbsent && in.HasColumn(k) {
			continue
		}
		cols = append(cols, k)
	}
	sort.Strings(cols)
	for _, col := range cols {
		in.AddColumn(col)
		v := c.Values[col]
		for _, r := range in.Rows {
			r[col] = v
		}
	}
	return in, nil
}

// Copy duplicates From into To.
type Copy struct {
	From string
	To   string
}

// Apply implements transformer.Transformer.
func (c Copy) Apply(in records.Table) (records.Table, error) {
	if err := transformer.RequireColumns(in, c.From); err != nil {
		return records.Table{}, fmt.Errorf("copy: %w", err)
	}
	in.AddColumn(c.To)
	for _, r := range in.Rows {
		r[c.To] = r[c.From]
	}
	return in, nil
}

// SafeLog10 returns log10(v) for a positive numeric v. Zero, negative, null,
// and unparsable inputs report ok=false.
func SafeLog10(v any) (float64, bool) {
	f, ok := records.Float(v)
	if !ok || f <= 0 || math.IsInf(f, 0) {
		return 0, false
	}
	return math.Log10(f), true
}

// Log10Source is one candidate input of Log10.
type Log10Source struct {
	Column string
	Units  string
}

// Log10 writes the base-10 logarithm of a source column into To. The first
// source that is present and has at least one numeric value is used, and its
// Units are written into UnitsColumn on every row. When no source has a value
// To is null on every row and UnitsColumn is left untouched. A missing source
// set is an error only when Required is set.
type Log10 struct {
	To          string
	Sources     []Log10Source
	UnitsColumn string
	Required    bool
}

// Apply implements transformer.Transformer.
func (l Log10) Apply(in records.Table) (records.Table, error) {
	src, present, ok := l.pick(in)
	if !present && l.Required {
		names := make([]string, len(l.Sources))
		for i, s := range l.Sources {
			names[i] = s.Column
		}
		return records.Table{}, fmt.Errorf("log10: %w: none of %v", transformer.ErrColumnNotFound, names)
	}
	in.AddColumn(l.To)
	for _, r := range in.Rows {
		r[l.To] = nil
		if !ok {
			continue
		}
		if f, fok := SafeLog10(r[src.Column]); fok {
			r[l.To] = f
		}
	}
	if ok && src.Units != "" && l.UnitsColumn != "" {
		in.AddColumn(l.UnitsColumn)
		for _, r := range in.Rows {
			r[l.UnitsColumn] = src.Units
		}
	}
	return in, nil
}

// pick returns the first source with a numeric value. present reports whether
// any source column exists at all.
func (l Log10) pick(in records.Table) (src Log10Source, present, ok bool) {
	for _, s := range l.Sources {
		if !in.HasColumn(s.Column) {
			continue
		}
		present = true
		for _, r := range in.Rows {
			if _, fok := records.Float(r[s.Column]); fok {
				return s, true, true
			}
		}
	}
	return Log10Source{}, present, false
}

// Mean writes the arithmetic mean of the numeric cells of Columns into To.
// Rows without any numeric cell get null.
type Mean struct {
	Columns []string
	To      string
}

// Apply implements transformer.Transformer.
func (m Mean) Apply(in records.Table) (records.Table, error) {
	if err := transformer.RequireColumns(in, m.Columns...); err != nil {
		return records.Table{}, fmt.Errorf("mean: %w", err)
	}
	in.AddColumn(m.To)
	for _, r := range in.Rows {
		var sum float64
		n := 0
		for _, c := range m.Columns {
			if f, ok := records.Float(r[c]); ok {
				sum += f
				n++
			}
		}
		if n == 0 {
			r[m.To] = nil
			continue
		}
		r[m.To] = sum / float64(n)
	}
	return in, nil
}

// NullBelow nulls numeric cells of Column that are <= Limit. Unparsable cells
// are nulled too; surviving cells become float64.
type NullBelow struct {
	Column string
	Limit  float64
}

// Apply implements transformer.Transformer.
func (n NullBelow) Apply(in records.Table) (records.Table, error) {
	if err := transformer.RequireColumns(in, n.Column); err != nil {
		return records.Table{}, fmt.Errorf("null_below: %w", err)
	}
	for _, r := range in.Rows {
		f, ok := records.Float(r[n.Column])
		if !ok || f <= n.Limit {
			r[n.Column] = nil
			continue
		}
		r[n.Column] = f
	}
	return in, nil
}

// RegexReplace rewrites string cells of Column, replacing every match of
// Pattern with Replacement (regexp.ReplaceAllString syntax). Non-string cells
// are left alone.
type RegexReplace struct {
	Column      string
	Pattern     *regexp.Regexp
	Replacement string
}

// Apply implements transformer.Transformer.
func (x RegexReplace) Apply(in records.Table) (records.Table, error) {
	if err := transformer.RequireColumns(in, x.Column); err != nil {
		return records.Table{}, fmt.Errorf("regex_replace: %w", err)
	}
	for _, r := range in.Rows {
		if s, ok := r[x.Column].(string); ok {
			r[x.Column] = x.Pattern.ReplaceAllString(s, x.Replacement)
		}
	}
	return in, nil
}
