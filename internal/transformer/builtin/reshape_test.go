package builtin

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"vlingest/internal/transformer"
	"vlingest/pkg/records"
)

func TestSelect(t *testing.T) {
	in := records.Table{
		Columns: []string{"a", "b", "c"},
		Rows:    []records.Record{{"a": 1, "b": 2, "c": 3}},
	}
	out, err := Select{Columns: []string{"c", "a"}}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if diff := cmp.Diff(records.Table{Columns: []string{"c", "a"}, Rows: []records.Record{{"c": 3, "a": 1}}}, out); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	if _, err := (Select{Columns: []string{"a", "zz"}}).Apply(in); !errors.Is(err, transformer.ErrColumnNotFound) {
		t.Fatalf("err=%v; want ErrColumnNotFound", err)
	}

	out, err = Select{Columns: []string{"zz", "b"}, Optional: true}.Apply(in)
	if err != nil {
		t.Fatalf("optional Apply: %v", err)
	}
	if diff := cmp.Diff([]string{"b"}, out.Columns); diff != "" {
		t.Fatalf("optional columns (-want +got):\n%s", diff)
	}
}

/*
TestRename_SwapAndAbsent verifies renames are applied from a snapshot of the
input, so swapping two names works, and that absent sources are ignored.
*/
func TestRename_SwapAndAbsent(t *testing.T) {
	in := records.Table{
		Columns: []string{"x", "y"},
		Rows:    []records.Record{{"x": 1, "y": 2}},
	}
	out, err := Rename{Map: map[string]string{"x": "y", "y": "x", "missing": "m"}}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if diff := cmp.Diff([]string{"y", "x"}, out.Columns); diff != "" {
		t.Fatalf("columns (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(records.Record{"y": 1, "x": 2}, out.Rows[0]); diff != "" {
		t.Fatalf("row (-want +got):\n%s", diff)
	}
}

/*
TestRename_SharedTargetFollowsColumnOrder verifies that when two raw columns
map to one name, the one further right in the input wins, including past the
tenth column.
*/
func TestRename_SharedTargetFollowsColumnOrder(t *testing.T) {
	cols := make([]string, 12)
	row := records.Record{}
	for i := range cols {
		cols[i] = fmt.Sprintf("c%d", i)
		row[cols[i]] = i
	}
	in := records.Table{Columns: cols, Rows: []records.Record{row}}

	out, err := Rename{Map: map[string]string{"c2": "Ct", "c10": "Ct"}}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := out.Rows[0]["Ct"]; got != 10 {
		t.Fatalf("Ct=%v; want 10 from c10", got)
	}
	if out.HasColumn("c2") || out.HasColumn("c10") {
		t.Fatalf("sources should be gone: %v", out.Columns)
	}
}

/*
TestMelt_WideToLong models the ke2022 layout: one row per person and day with
three measurement columns becomes three rows per input row, grouped by
measurement column.
*/
func TestMelt_WideToLong(t *testing.T) {
	in := records.Table{
		Columns: []string{"Ind", "Time", "Nasal_CN", "Saliva_Ct"},
		Rows: []records.Record{
			{"Ind": "a", "Time": 0, "Nasal_CN": 5.1, "Saliva_Ct": 30},
			{"Ind": "b", "Time": 1, "Nasal_CN": nil, "Saliva_Ct": 28},
		},
	}
	m := Melt{
		IDColumns:    []string{"Ind", "Time"},
		ValueColumns: []string{"Nasal_CN", "Saliva_Ct"},
		VarName:      "SampleType",
		ValueName:    "Log10VL",
	}
	out, err := m.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := records.Table{
		Columns: []string{"Ind", "Time", "SampleType", "Log10VL"},
		Rows: []records.Record{
			{"Ind": "a", "Time": 0, "SampleType": "Nasal_CN", "Log10VL": 5.1},
			{"Ind": "b", "Time": 1, "SampleType": "Nasal_CN", "Log10VL": nil},
			{"Ind": "a", "Time": 0, "SampleType": "Saliva_Ct", "Log10VL": 30},
			{"Ind": "b", "Time": 1, "SampleType": "Saliva_Ct", "Log10VL": 28},
		},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestMelt_DefaultsAndMissing(t *testing.T) {
	in := records.Table{
		Columns: []string{"Study day", "P1", "P2"},
		Rows:    []records.Record{{"Study day": 1, "P1": 10, "P2": 20}},
	}
	out, err := Melt{IDColumns: []string{"Study day"}}.Apply(in)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if diff := cmp.Diff([]string{"Study day", "variable", "value"}, out.Columns); diff != "" {
		t.Fatalf("columns (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"P1", "P2"}, out.Values("variable")); diff != "" {
		t.Fatalf("variable (-want +got):\n%s", diff)
	}

	_, err = Melt{IDColumns: []string{"Day"}}.Apply(in)
	if !errors.Is(err, transformer.ErrColumnNotFound) {
		t.Fatalf("err=%v; want ErrColumnNotFound", err)
	}
}
