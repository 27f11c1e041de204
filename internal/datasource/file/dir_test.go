package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDir_Resolve(t *testing.T) {
	t.Parallel()

	d := NewDir("data")
	if got := d.Resolve("raw/hakki2022/trajectories.csv"); got != filepath.Join("data", "raw", "hakki2022", "trajectories.csv") {
		t.Fatalf("Resolve = %q", got)
	}
	abs := filepath.Join(string(filepath.Separator), "srv", "x.csv")
	if got := d.Resolve(abs); got != abs {
		t.Fatalf("absolute path rewritten: %q", got)
	}
	if got := NewDir("").Resolve("a/../b.csv"); got != "b.csv" {
		t.Fatalf("empty base Resolve = %q", got)
	}
	if got := d.Local("k.csv").Name(); got != "k.csv" {
		t.Fatalf("Name = %q", got)
	}
}

/*
TestDir_Glob verifies matches come back in lexical order, rooted at the base,
and that an empty match set reads like a missing file.
*/
func TestDir_Glob(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	raw := filepath.Join(base, "raw", "savela2022")
	if err := os.MkdirAll(raw, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, n := range []string{"Fig_2C_data.xlsx", "Fig_2A_data.xlsx", "Fig_1_panelA.xlsx"} {
		if err := os.WriteFile(filepath.Join(raw, n), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	d := NewDir(base)
	got, err := d.Glob("raw/savela2022/Fig_2*.xlsx")
	if err != nil {
		t.Fatalf("Glob: %v", err)
	}
	if len(got) != 2 || got[0].Name() != "Fig_2A_data.xlsx" || got[1].Name() != "Fig_2C_data.xlsx" {
		t.Fatalf("Glob = %v", got)
	}
	rc, err := got[0].Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = rc.Close()

	if _, err := d.Glob("raw/none/*.csv"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("empty glob err=%v; want os.ErrNotExist", err)
	}
}
