package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"vlingest/internal/metrics"
)

// readCounterValue reads the current value of a Counter for assertions.
func readCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Counter.Write() error = %v", err)
	}
	return m.GetCounter().GetValue()
}

// TestNewBackend validates defaults and the required gateway URL.
func TestNewBackend(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend("vl", ""); err == nil {
		t.Fatal("expected error for missing gateway URL")
	}
	b, err := NewBackend("", "http://pushgateway:9091")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	if b.jobName != "vlingest" {
		t.Fatalf("jobName=%q; want default vlingest", b.jobName)
	}
}

/*
TestIncCounter routes each metric name to its collector and ignores unknown
names.
*/
func TestIncCounter(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("vl", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}

	b.IncCounter(metrics.StudyTotal, 1, metrics.Labels{"study": "ke2022", "status": "success"})
	b.IncCounter(metrics.RowsTotal, 5, metrics.Labels{"kind": "emitted"})
	b.IncCounter(metrics.RowsTotal, 2, metrics.Labels{"kind": "emitted"})
	b.IncCounter(metrics.CoerceNullTotal, 3, metrics.Labels{"study": "ke2022", "column": "Log10VL"})
	b.IncCounter(metrics.BatchesTotal, 1, nil)
	b.IncCounter("unknown_metric", 9, nil)

	if got := readCounterValue(t, b.studyCounter.WithLabelValues("ke2022", "success")); got != 1 {
		t.Fatalf("study counter=%v; want 1", got)
	}
	if got := readCounterValue(t, b.rowCounter.WithLabelValues("emitted")); got != 7 {
		t.Fatalf("row counter=%v; want 7", got)
	}
	if got := readCounterValue(t, b.nullCounter.WithLabelValues("ke2022", "Log10VL")); got != 3 {
		t.Fatalf("null counter=%v; want 3", got)
	}
	if got := readCounterValue(t, b.batchCounter); got != 1 {
		t.Fatalf("batch counter=%v; want 1", got)
	}
}

func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("vl", "http://example.com")
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.ObserveHistogram(metrics.StudyDuration, 1.5, metrics.Labels{"study": "ke2022", "status": "success"})
	b.ObserveHistogram("other", 9, nil)

	m := &dto.Metric{}
	obs, ok := b.studyDuration.WithLabelValues("ke2022", "success").(prometheus.Metric)
	if !ok {
		t.Fatal("summary does not implement prometheus.Metric")
	}
	if err := obs.Write(m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if m.GetSummary().GetSampleCount() != 1 || m.GetSummary().GetSampleSum() != 1.5 {
		t.Fatalf("summary=%v", m.GetSummary())
	}
}

// TestFlush verifies that Flush pushes the registry to the configured
// Pushgateway URL under the job grouping key.
func TestFlush(t *testing.T) {
	t.Parallel()

	type pushed struct {
		method string
		path   string
		body   string
	}
	reqCh := make(chan pushed, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, _ := io.ReadAll(r.Body)
		reqCh <- pushed{method: r.Method, path: r.URL.Path, body: string(body)}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	b, err := NewBackend("vl-job", server.URL)
	if err != nil {
		t.Fatalf("NewBackend: %v", err)
	}
	b.IncCounter(metrics.RowsTotal, 1, metrics.Labels{"kind": "loaded"})

	if err := b.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	select {
	case req := <-reqCh:
		if req.method != http.MethodPut {
			t.Fatalf("method=%s; want PUT", req.method)
		}
		if !strings.Contains(req.path, "/job/vl-job") {
			t.Fatalf("path=%s; want job grouping", req.path)
		}
		if len(req.body) == 0 {
			t.Fatal("empty push body")
		}
	default:
		t.Fatal("Flush did not reach the Pushgateway")
	}
}
