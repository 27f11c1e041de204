package builtin

import (
	"fmt"

	"vlingest/internal/transformer"
	"vlingest/pkg/records"
)

// Select keeps only Columns, in that order. A missing column fails with
// transformer.ErrColumnNotFound unless Optional, in which case only the
// present columns are kept.
type Select struct {
	Columns  []string
	Optional bool
}

// Apply implements transformer.Transformer.
func (s Select) Apply(in records.Table) (records.Table, error) {
	if len(s.Columns) == 0 {
		return in, nil
	}
	keep := s.Columns
	if missing := transformer.MissingColumns(in, s.Columns...); len(missing) > 0 {
		if !s.Optional {
			return records.Table{}, fmt.Errorf("select: %w: %v", transformer.ErrColumnNotFound, missing)
		}
		keep = make([]string, 0, len(s.Columns))
		for _, c := range s.Columns {
			if in.HasColumn(c) {
				keep = append(keep, c)
			}
		}
	}
	return EnforceSchema(in, keep), nil
}

// Rename renames raw columns. Map keys absent from the table are ignored.
// Renames apply in column order.
type Rename struct {
	Map map[string]string
}

// Apply implements transformer.Transformer.
func (r Rename) Apply(in records.Table) (records.Table, error) {
	// Snapshot so a rename cannot feed into a later entry of the same map.
	cols := append([]string(nil), in.Columns...)
	type stagedRename struct{ from, to string }
	var staged []stagedRename
	for i, c := range cols {
		to, ok := r.Map[c]
		if !ok || to == c {
			continue
		}
		tmp := fmt.Sprintf("\x00rename%d", i)
		in.RenameColumn(c, tmp)
		staged = append(staged, stagedRename{from: tmp, to: to})
	}
	// Column order: when two sources share a target the later column wins.
	for _, s := range staged {
		in.RenameColumn(s.from, s.to)
	}
	return in, nil
}

// Melt reshapes wide to long. Each input row yields one output row per value
// column carrying the ID columns, the value column's name in VarName, and its
// cell in ValueName. Output rows are grouped by value column, then input order.
type Melt struct {
	IDColumns    []string
	ValueColumns []string // empty: every non-ID column
	VarName      string   // default "variable"
	ValueName    string   // default "value"
}

// Apply implements transformer.Transformer.
func (m Melt) Apply(in records.Table) (records.Table, error) {
	if err := transformer.RequireColumns(in, m.IDColumns...); err != nil {
		return records.Table{}, fmt.Errorf("melt: %w", err)
	}
	if err := transformer.RequireColumns(in, m.ValueColumns...); err != nil {
		return records.Table{}, fmt.Errorf("melt: %w", err)
	}
	varName, valueName := m.VarName, m.ValueName
	if varName == "" {
		varName = "variable"
	}
	if valueName == "" {
		valueName = "value"
	}
	values := m.ValueColumns
	if len(values) == 0 {
		ids := make(map[string]struct{}, len(m.IDColumns))
		for _, c := range m.IDColumns {
			ids[c] = struct{}{}
		}
		for _, c := range in.Columns {
			if _, ok := ids[c]; !ok {
				values = append(values, c)
			}
		}
	}

	out := records.NewTable(append(append([]string(nil), m.IDColumns...), varName, valueName)...)
	out.Rows = make([]records.Record, 0, len(in.Rows)*len(values))
	for _, vc := range values {
		for _, r := range in.Rows {
			nr := make(records.Record, len(m.IDColumns)+2)
			for _, id := range m.IDColumns {
				nr[id] = r[id]
			}
			nr[varName] = vc
			nr[valueName] = r[vc]
			out.Rows = append(out.Rows, nr)
		}
	}
	return out, nil
}
