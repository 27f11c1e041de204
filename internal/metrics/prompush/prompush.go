// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package. Collected metrics are pushed to a Pushgateway at Flush
// rather than exposed on a scrape endpoint, which suits a batch CLI run.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"vlingest/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend. The job label is the
// Pushgateway grouping key, so it is not repeated on each series.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	studyCounter  *prometheus.CounterVec // study, status
	studyDuration *prometheus.SummaryVec // study, status
	rowCounter    *prometheus.CounterVec // kind
	nullCounter   *prometheus.CounterVec // study, column
	batchCounter  prometheus.Counter
}

// NewBackend constructs a Prometheus Pushgateway backend. An empty jobName
// defaults to "vlingest".
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "vlingest"
	}

	reg := prometheus.NewRegistry()

	studyCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.StudyTotal,
			Help: "Study executions, partitioned by study and status.",
		},
		[]string{"study", "status"},
	)
	studyDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.StudyDuration,
			Help:       "Study execution time in seconds, partitioned by study and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"study", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.RowsTotal,
			Help: "Row counts per kind (emitted, loaded).",
		},
		[]string{"kind"},
	)
	nullCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.CoerceNullTotal,
			Help: "Numeric cells holding text that coercion turned into null.",
		},
		[]string{"study", "column"},
	)
	batchCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: metrics.BatchesTotal,
			Help: "Storage batches flushed for this job.",
		},
	)

	for name, c := range map[string]prometheus.Collector{
		"study counter": studyCounter,
		"study summary": studyDuration,
		"row counter":   rowCounter,
		"null counter":  nullCounter,
		"batch counter": batchCounter,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		studyCounter:  studyCounter,
		studyDuration: studyDuration,
		rowCounter:    rowCounter,
		nullCounter:   nullCounter,
		batchCounter:  batchCounter,
	}, nil
}

// IncCounter implements metrics.Backend. Unknown names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StudyTotal:
		if b.studyCounter != nil {
			b.studyCounter.WithLabelValues(labels["study"], labels["status"]).Add(delta)
		}
	case metrics.RowsTotal:
		if b.rowCounter != nil {
			b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)
		}
	case metrics.CoerceNullTotal:
		if b.nullCounter != nil {
			b.nullCounter.WithLabelValues(labels["study"], labels["column"]).Add(delta)
		}
	case metrics.BatchesTotal:
		if b.batchCounter != nil {
			b.batchCounter.Add(delta)
		}
	}
}

// ObserveHistogram implements metrics.Backend.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StudyDuration || b.studyDuration == nil {
		return
	}
	b.studyDuration.WithLabelValues(labels["study"], labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
