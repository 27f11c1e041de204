package builtin

import (
	"testing"

	"vlingest/pkg/records"
)

/*
TestNormalize_TableDriven verifies NBSP replacement, trimming, NFC composition,
optional lower-casing, and that non-string values are untouched.
*/
func TestNormalize_TableDriven(t *testing.T) {
	tests := []struct {
		name string
		n    Normalize
		in   any
		want any
	}{
		{"non_string", Normalize{}, 5, 5},
		{"trim", Normalize{}, " \tnasal\n", "nasal"},
		{"nbsp", Normalize{}, "\u00a0Saliva\u00a0", "Saliva"},
		{"nfc", Normalize{}, "e\u0301", "\u00e9"},
		{"lower", Normalize{Lower: true}, " Nasal ", "nasal"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := records.Table{Columns: []string{"c"}, Rows: []records.Record{{"c": tc.in}}}
			out, _ := tc.n.Apply(in)
			if out.Rows[0]["c"] != tc.want {
				t.Fatalf("got %#v; want %#v", out.Rows[0]["c"], tc.want)
			}
		})
	}
}

func TestNormalize_ColumnsLimit(t *testing.T) {
	in := records.Table{Columns: []string{"a", "b"}, Rows: []records.Record{{"a": " A ", "b": " B "}}}
	out, _ := Normalize{Columns: []string{"a"}, Lower: true}.Apply(in)
	if out.Rows[0]["a"] != "a" || out.Rows[0]["b"] != " B " {
		t.Fatalf("row=%#v", out.Rows[0])
	}
}
