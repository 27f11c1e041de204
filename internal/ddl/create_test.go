package ddl

import (
	"strings"
	"testing"

	"vlingest/internal/schema"
)

// TestBuildCreateTableSQL verifies that BuildCreateTableSQL generates the
// expected CREATE TABLE statements and surfaces appropriate errors for invalid
// inputs.
func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	bracket := Dialect{
		Name:       "test ddl",
		QuoteIdent: func(s string) string { return "[" + s + "]" },
		Wrap:       func(fqn, body string) string { return "CREATE " + fqn + " (" + body + ")" },
	}

	tests := []struct {
		name        string
		def         TableDef
		dialect     Dialect
		wantSQL     string
		errContains string
	}{
		{
			name:        "empty FQN returns error",
			def:         TableDef{Columns: []ColumnDef{{Name: "id", SQLType: "INT"}}},
			dialect:     Generic,
			errContains: "table FQN must not be empty",
		},
		{
			name:        "no columns returns error",
			def:         TableDef{FQN: "public.t"},
			dialect:     Generic,
			errContains: "at least one column is required",
		},
		{
			name:        "column with empty name returns error",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{SQLType: "INT"}}},
			dialect:     bracket,
			errContains: "test ddl: column with empty name",
		},
		{
			name:        "column with empty type returns error",
			def:         TableDef{FQN: "t", Columns: []ColumnDef{{Name: "id"}}},
			dialect:     Generic,
			errContains: "missing SQLType",
		},
		{
			name: "generic nullable and not null",
			def: TableDef{FQN: "t", Columns: []ColumnDef{
				{Name: "id", SQLType: "INT"},
				{Name: "v", SQLType: "REAL", Nullable: true},
			}},
			dialect: Generic,
			wantSQL: "CREATE TABLE t (\n  id INT NOT NULL,\n  v REAL\n);",
		},
		{
			name:    "dialect quoting and wrap",
			def:     TableDef{FQN: "dbo.t", Columns: []ColumnDef{{Name: "v", SQLType: "FLOAT", Nullable: true}}},
			dialect: bracket,
			wantSQL: "CREATE [dbo].[t] ([v] FLOAT)",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := BuildCreateTableSQL(tt.def, tt.dialect)
			if tt.errContains != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("err=%v; want containing %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.wantSQL {
				t.Fatalf("SQL mismatch\n got: %q\nwant: %q", got, tt.wantSQL)
			}
		})
	}
}

func TestQuoteFQN_SkipsEmptySegments(t *testing.T) {
	q := func(s string) string { return `"` + s + `"` }
	if got := QuoteFQN("a..b", q); got != `"a"."b"` {
		t.Fatalf("QuoteFQN=%s", got)
	}
}

/*
TestFromRegistry verifies column types follow the registry kinds, every column
is nullable, and an empty column list selects the whole schema.
*/
func TestFromRegistry(t *testing.T) {
	t.Parallel()

	mapType := func(k schema.Kind) string {
		if k == schema.KindNumeric {
			return "NUM"
		}
		return "STR"
	}

	td, err := FromRegistry("vl", nil, schema.Canonical, mapType)
	if err != nil {
		t.Fatalf("FromRegistry: %v", err)
	}
	if len(td.Columns) != len(schema.Canonical.Columns()) {
		t.Fatalf("columns=%d; want %d", len(td.Columns), len(schema.Canonical.Columns()))
	}
	for _, c := range td.Columns {
		if !c.Nullable {
			t.Fatalf("%s not nullable", c.Name)
		}
		want := "STR"
		if schema.Canonical.Kind(c.Name) == schema.KindNumeric {
			want = "NUM"
		}
		if c.SQLType != want {
			t.Fatalf("%s type=%s; want %s", c.Name, c.SQLType, want)
		}
	}

	if _, err := FromRegistry("vl", []string{"PersonID", "Nope"}, schema.Canonical, mapType); err == nil {
		t.Fatalf("expected error for non-schema column")
	}
	if _, err := FromRegistry("", nil, schema.Canonical, mapType); err == nil {
		t.Fatalf("expected error for missing table")
	}
}
