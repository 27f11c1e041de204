package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/zeebo/xxh3"

	"vlingest/internal/storage"
)

/*
TestRepository_WritesHeaderNullsAndFloats verifies the header is written once,
nulls become empty fields, floats use the shortest decimal form, and the
digest matches the file contents.
*/
func TestRepository_WritesHeaderNullsAndFloats(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "combined.csv")
	repo, err := storage.New(context.Background(), storage.Config{Kind: "csv", DSN: path})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}

	cols := []string{"StudyID", "TimeDays", "Log10VL", "Symptoms1"}
	if _, err := repo.CopyFrom(context.Background(), cols, [][]any{
		{"kissler2023", 3.0, 11.34089, nil},
	}); err != nil {
		t.Fatalf("CopyFrom 1: %v", err)
	}
	n, err := repo.CopyFrom(context.Background(), cols, [][]any{
		{"ke2022", -0.5, nil, "cough, fever"},
	})
	if err != nil || n != 1 {
		t.Fatalf("CopyFrom 2 = %d, %v", n, err)
	}
	digest := repo.(*Repository).Digest()
	repo.Close()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "StudyID,TimeDays,Log10VL,Symptoms1\n" +
		"kissler2023,3,11.34089,\n" +
		"ke2022,-0.5,,\"cough, fever\"\n"
	if string(b) != want {
		t.Fatalf("file mismatch\n got: %q\nwant: %q", b, want)
	}
	if digest != xxh3.Hash(b) {
		t.Fatalf("digest %x != xxh3(file) %x", digest, xxh3.Hash(b))
	}
}

func TestRepository_RejectsBadInput(t *testing.T) {
	t.Parallel()

	r, err := NewRepository(context.Background(), Config{Path: filepath.Join(t.TempDir(), "x.csv")})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	defer r.Close()

	if _, err := r.CopyFrom(context.Background(), []string{"a", "b"}, [][]any{{1}}); err == nil {
		t.Fatal("expected error for short row")
	}
	if _, err := r.CopyFrom(context.Background(), []string{"a"}, nil); err == nil {
		t.Fatal("expected error for changed columns")
	}
	if _, err := NewRepository(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

/*
TestRepository_HeaderOnOpen verifies that configured columns are written when
the file is opened, so closing without any CopyFrom leaves a header-only file,
and that a later CopyFrom with the same columns does not repeat the header.
*/
func TestRepository_HeaderOnOpen(t *testing.T) {
	t.Parallel()

	cols := []string{"StudyID", "TimeDays"}
	tests := []struct {
		name string
		rows [][]any
		want string
	}{
		{name: "no rows", want: "StudyID,TimeDays\n"},
		{name: "one row", rows: [][]any{{"ke2022", 1.5}}, want: "StudyID,TimeDays\nke2022,1.5\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "combined.csv")
			repo, err := storage.New(context.Background(), storage.Config{Kind: "csv", DSN: path, Columns: cols})
			if err != nil {
				t.Fatalf("storage.New: %v", err)
			}
			if tc.rows != nil {
				if _, err := repo.CopyFrom(context.Background(), cols, tc.rows); err != nil {
					t.Fatalf("CopyFrom: %v", err)
				}
			}
			repo.Close()

			b, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(b) != tc.want {
				t.Fatalf("file = %q, want %q", b, tc.want)
			}
		})
	}
}
