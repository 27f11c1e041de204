package etl

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

const sampleLimit = 5

// nullAgg counts numeric cells that coercion nulled, per study and column,
// and keeps the first few as examples for the end-of-run log.
type nullAgg struct {
	mu     sync.Mutex
	limit  int
	count  int64
	first  []nullSample
	counts map[string]map[string]int64 // study -> column -> n
}

type nullSample struct {
	study, column, value string
	row                  int
}

func newNullAgg(limit int) *nullAgg {
	return &nullAgg{limit: limit, counts: make(map[string]map[string]int64)}
}

func (a *nullAgg) add(study, column string, row int, value any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	m := a.counts[study]
	if m == nil {
		m = make(map[string]int64)
		a.counts[study] = m
	}
	m[column]++
	if len(a.first) < a.limit {
		a.first = append(a.first, nullSample{study: study, column: column, value: fmt.Sprint(value), row: row})
	}
	a.count++
}

// byColumn returns a copy of the per-column counts for study.
func (a *nullAgg) byColumn(study string) map[string]int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]int64, len(a.counts[study]))
	for k, v := range a.counts[study] {
		out[k] = v
	}
	return out
}

func (a *nullAgg) total() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

func (a *nullAgg) log(log *zap.Logger) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.count == 0 {
		return
	}
	studies := make([]string, 0, len(a.counts))
	for s := range a.counts {
		studies = append(studies, s)
	}
	sort.Strings(studies)
	log.Info("etl: coerce nulls", zap.Int64("count", a.count), zap.Strings("studies", studies))
	for i, s := range a.first {
		log.Debug("etl: coerce null sample",
			zap.Int("n", i+1),
			zap.String("study", s.study),
			zap.Int("row", s.row),
			zap.String("column", s.column),
			zap.String("value", s.value))
	}
}
