package builtin

import (
	"fmt"

	"vlingest/internal/transformer"
	"vlingest/pkg/records"
)

// Rebaseline shifts each person's time series so that zero is the earliest
// time at which Measure is present.
//
// Rows are grouped by the text of Person. A row is valid when both Measure and
// Time are non-null and Time is numeric. The group offset is the minimum Time
// over valid rows. Valid rows get Time-offset in To; every other row gets null,
// unless KeepInvalid is set, in which case any row with a numeric Time is
// shifted too. A group without valid rows, or a row without a person, gets null.
type Rebaseline struct {
	Person      string
	Time        string
	Measure     string
	To          string // default: Time
	KeepInvalid bool
}

// Apply implements transformer.Transformer.
func (b Rebaseline) Apply(in records.Table) (records.Table, error) {
	if err := transformer.RequireColumns(in, b.Person, b.Time, b.Measure); err != nil {
		return records.Table{}, fmt.Errorf("rebaseline: %w", err)
	}
	to := b.To
	if to == "" {
		to = b.Time
	}

	offsets := make(map[string]float64)
	for _, r := range in.Rows {
		key, t, ok := b.valid(r)
		if !ok {
			continue
		}
		if cur, seen := offsets[key]; !seen || t < cur {
			offsets[key] = t
		}
	}

	in.AddColumn(to)
	for _, r := range in.Rows {
		var shifted any
		if p := r[b.Person]; !records.IsNull(p) {
			key := records.Text(p)
			off, has := offsets[key]
			t, tok := records.Float(r[b.Time])
			_, _, valid := b.valid(r)
			if has && tok && (valid || b.KeepInvalid) {
				shifted = t - off
			}
		}
		r[to] = shifted
	}
	return in, nil
}

func (b Rebaseline) valid(r records.Record) (string, float64, bool) {
	p := r[b.Person]
	if records.IsNull(p) || !present(r[b.Measure]) {
		return "", 0, false
	}
	t, ok := records.Float(r[b.Time])
	if !ok {
		return "", 0, false
	}
	return records.Text(p), t, true
}

// present reports whether v carries a value: not null and not a null spelling.
func present(v any) bool {
	if records.IsNull(v) {
		return false
	}
	if s, ok := v.(string); ok {
		return !records.IsNullToken(s)
	}
	return true
}
