package webui

import (
	"encoding/csv"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"sort"

	"vlingest/internal/schema"
	"vlingest/pkg/records"
)

// DayCount is the number of samples taken on one TimeDays value.
type DayCount struct {
	Day   float64
	Count int
}

// Label renders Day the way the combined CSV writes it.
func (d DayCount) Label() string { return records.Text(d.Day) }

// TimeDayCounts reads the combined CSV at path, drops rows whose TimeDays is
// null, and returns the per-value frequencies sorted by value.
func TimeDayCounts(path string) ([]DayCount, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty file", path)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := -1
	for i, h := range header {
		if h == schema.TimeDays {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%s: no %s column", path, schema.TimeDays)
	}

	freq := map[float64]int{}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if col >= len(rec) {
			continue
		}
		if v, ok := records.Float(rec[col]); ok {
			freq[v]++
		}
	}

	out := make([]DayCount, 0, len(freq))
	for d, c := range freq {
		out = append(out, DayCount{Day: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}

var funcs = template.FuncMap{
	// pct scales n against top for the bar width.
	"pct": func(n, top int) float64 {
		if top == 0 {
			return 0
		}
		return float64(n) * 100 / float64(top)
	},
}
