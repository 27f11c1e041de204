package builtin

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"vlingest/internal/transformer"
	"vlingest/pkg/records"
)

func rebaselineInput() records.Table {
	return records.Table{
		Columns: []string{"PersonID", "TimeDays", "Log10VL"},
		Rows: []records.Record{
			{"PersonID": "P", "TimeDays": 5.0, "Log10VL": nil},
			{"PersonID": "P", "TimeDays": 7.0, "Log10VL": 2.1},
			{"PersonID": "P", "TimeDays": 10.0, "Log10VL": 3.0},
			{"PersonID": "Q", "TimeDays": 1.0, "Log10VL": nil},
			{"PersonID": "Q", "TimeDays": 2.0, "Log10VL": "NA"},
			{"PersonID": "R", "TimeDays": "4", "Log10VL": 1.0},
			{"PersonID": nil, "TimeDays": 3.0, "Log10VL": 1.0},
		},
	}
}

/*
TestRebaseline_FirstDetection verifies the per-person offset is the earliest
time with a measurement: P {5:null, 7:2.1, 10:3.0} becomes {5:null, 7:0, 10:3},
an all-null person gets null everywhere, and rows without a person get null.
*/
func TestRebaseline_FirstDetection(t *testing.T) {
	out, err := Rebaseline{Person: "PersonID", Time: "TimeDays", Measure: "Log10VL"}.Apply(rebaselineInput())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []any{nil, 0.0, 3.0, nil, nil, 0.0, nil}
	if diff := cmp.Diff(want, out.Values("TimeDays")); diff != "" {
		t.Fatalf("TimeDays (-want +got):\n%s", diff)
	}
}

func TestRebaseline_KeepInvalidAndTo(t *testing.T) {
	b := Rebaseline{Person: "PersonID", Time: "TimeDays", Measure: "Log10VL", To: "Shifted", KeepInvalid: true}
	out, err := b.Apply(rebaselineInput())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []any{-2.0, 0.0, 3.0, nil, nil, 0.0, nil}
	if diff := cmp.Diff(want, out.Values("Shifted")); diff != "" {
		t.Fatalf("Shifted (-want +got):\n%s", diff)
	}
	if out.Rows[0]["TimeDays"] != 5.0 {
		t.Fatalf("source time column modified: %#v", out.Rows[0])
	}
}

func TestRebaseline_MissingColumn(t *testing.T) {
	in := records.Table{Columns: []string{"PersonID", "TimeDays"}}
	_, err := Rebaseline{Person: "PersonID", Time: "TimeDays", Measure: "Log10VL"}.Apply(in)
	if !errors.Is(err, transformer.ErrColumnNotFound) {
		t.Fatalf("err=%v; want ErrColumnNotFound", err)
	}
}
