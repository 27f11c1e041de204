package etl

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

/*
TestNullAgg_CountsAndSamples verifies per-column counts, the sample limit, and
that each sample is logged with structured fields.
*/
func TestNullAgg_CountsAndSamples(t *testing.T) {
	t.Parallel()

	a := newNullAgg(2)
	a.add("kissler2023", "Log10VL", 1, "BLOD")
	a.add("kissler2023", "Log10VL", 4, "n/a")
	a.add("ke2022", "TimeDays", 0, "day one")

	if got := a.total(); got != 3 {
		t.Fatalf("total=%d; want 3", got)
	}
	if diff := cmp.Diff(map[string]int64{"Log10VL": 2}, a.byColumn("kissler2023")); diff != "" {
		t.Fatalf("byColumn (-want +got):\n%s", diff)
	}

	core, logs := observer.New(zapcore.DebugLevel)
	a.log(zap.New(core))

	if n := logs.FilterMessage("etl: coerce nulls").Len(); n != 1 {
		t.Fatalf("summary entries=%d; want 1", n)
	}
	samples := logs.FilterMessage("etl: coerce null sample").All()
	if len(samples) != 2 {
		t.Fatalf("sample entries=%d; want 2", len(samples))
	}
	want := map[string]any{
		"n":      int64(2),
		"study":  "kissler2023",
		"row":    int64(4),
		"column": "Log10VL",
		"value":  "n/a",
	}
	if diff := cmp.Diff(want, samples[1].ContextMap()); diff != "" {
		t.Fatalf("sample fields (-want +got):\n%s", diff)
	}
}

func TestNullAgg_LogsNothingWhenEmpty(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	newNullAgg(sampleLimit).log(zap.New(core))
	if logs.Len() != 0 {
		t.Fatalf("entries=%d; want 0", logs.Len())
	}
}
