package builtin

import (
	"fmt"
	"regexp"
	"strconv"

	"vlingest/internal/transformer"
	"vlingest/pkg/records"
)

// agePatterns are tried in order; each captures (lower, upper).
var agePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[\[\(](\d+),\s*(\d+)[\)\]]`), // [30, 39) or (30, 39]
	regexp.MustCompile(`(\d+)[\s\-–to]+(\d+)`),       // 30-39, 30–39, 30 to 39
}

// SplitAgeRange parses a column of age-range texts into lower and upper
// bounds. The first pattern that matches at least one cell is used for the
// whole column; cells it does not match get null. When no pattern matches any
// cell both outputs are all null. Outputs are float64 or nil, aligned with
// values.
func SplitAgeRange(values []any) (lower, upper []any) {
	lower = make([]any, len(values))
	upper = make([]any, len(values))
	for _, re := range agePatterns {
		matched := false
		for i, v := range values {
			if records.IsNull(v) {
				continue
			}
			m := re.FindStringSubmatch(records.Text(v))
			if m == nil {
				continue
			}
			lo, err1 := strconv.ParseFloat(m[1], 64)
			hi, err2 := strconv.ParseFloat(m[2], 64)
			if err1 != nil || err2 != nil {
				continue
			}
			lower[i], upper[i] = lo, hi
			matched = true
		}
		if matched {
			return lower, upper
		}
	}
	return lower, upper
}

// AgeRange applies SplitAgeRange to Column, writing Lower and Upper.
type AgeRange struct {
	Column string
	Lower  string
	Upper  string
}

// Apply implements transformer.Transformer.
func (a AgeRange) Apply(in records.Table) (records.Table, error) {
	if err := transformer.RequireColumns(in, a.Column); err != nil {
		return records.Table{}, fmt.Errorf("age_range: %w", err)
	}
	lo, hi := SplitAgeRange(in.Values(a.Column))
	in.AddColumn(a.Lower)
	in.AddColumn(a.Upper)
	for i, r := range in.Rows {
		r[a.Lower] = lo[i]
		r[a.Upper] = hi[i]
	}
	return in, nil
}
