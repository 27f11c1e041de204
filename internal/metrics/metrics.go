// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from an ingestion run.
//
//   - Backend is a narrow interface of counters and timings.
//   - The global backend defaults to a no-op, so recording is always safe.
//   - Concrete systems live in subpackages (prompush, datadog).
package metrics

import "time"

// Metric names shared by the helpers below and the backends.
const (
	StudyTotal      = "vlingest_study_total"
	StudyDuration   = "vlingest_study_duration_seconds"
	RowsTotal       = "vlingest_rows_total"
	CoerceNullTotal = "vlingest_coerce_nulls_total"
	BatchesTotal    = "vlingest_batches_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordStudy counts one study execution and its duration, labeled with the
// outcome.
func RecordStudy(job, study string, err error, d time.Duration) {
	lbls := Labels{
		"job":    job,
		"study":  study,
		"status": status(err),
	}
	backend.IncCounter(StudyTotal, 1, lbls)
	backend.ObserveHistogram(StudyDuration, d.Seconds(), lbls)
}

// RecordRows increments the row counter for kind: "emitted" for canonical
// rows a study produced, "loaded" for rows written to storage.
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RowsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordCoerceNulls counts numeric cells that held text but were nulled by
// coercion.
func RecordCoerceNulls(job, study, column string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(CoerceNullTotal, float64(delta), Labels{
		"job":    job,
		"study":  study,
		"column": column,
	})
}

// RecordBatches increments the storage batch counter for job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(BatchesTotal, float64(delta), Labels{
		"job": job,
	})
}
