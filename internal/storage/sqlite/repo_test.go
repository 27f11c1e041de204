package sqlite

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"vlingest/internal/config"
	"vlingest/internal/schema"
	"vlingest/internal/storage"
)

/*
TestStorageRoundTrip opens an in-memory database through the storage factory,
creates the table from the registry, loads rows including nulls, and reads
them back.
*/
func TestStorageRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cols := []string{schema.StudyID, schema.PersonID, schema.TimeDays, schema.Log10VL}
	spec := config.Pipeline{Storage: config.Storage{
		Kind: "sqlite",
		DB:   config.DBConfig{DSN: ":memory:", Table: "viral_load", Columns: cols, AutoCreateTable: true},
	}}

	repo, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: ":memory:", Table: "viral_load", Columns: cols})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()

	if err := storage.EnsureTableFromPipeline(ctx, spec, schema.Canonical, repo); err != nil {
		t.Fatalf("EnsureTableFromPipeline: %v", err)
	}
	// Idempotent.
	if err := storage.EnsureTableFromPipeline(ctx, spec, schema.Canonical, repo); err != nil {
		t.Fatalf("second EnsureTableFromPipeline: %v", err)
	}

	n, err := repo.CopyFrom(ctx, cols, [][]any{
		{"ke2022", "P1", 0.0, 7.25},
		{"ke2022", "P1", 1.5, nil},
	})
	if err != nil || n != 2 {
		t.Fatalf("CopyFrom = %d, %v", n, err)
	}

	db := repo.(*wrappedRepo).db
	rows, err := db.QueryContext(ctx, `SELECT "PersonID", "TimeDays", "Log10VL" FROM "viral_load" ORDER BY "TimeDays"`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()

	type row struct {
		Person string
		Time   float64
		VL     *float64
	}
	var got []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.Person, &r.Time, &r.VL); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, r)
	}
	vl := 7.25
	want := []row{{"P1", 0, &vl}, {"P1", 1.5, nil}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("rows (-want +got):\n%s", diff)
	}
}

func TestCopyFrom_RowLengthMismatch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r, closeFn, err := NewRepository(ctx, Config{DSN: ":memory:", Table: "t"})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	defer closeFn()

	if err := r.Exec(ctx, `CREATE TABLE "t" ("a" TEXT, "b" TEXT)`); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if _, err := r.CopyFrom(ctx, []string{"a", "b"}, [][]any{{"x"}}); err == nil {
		t.Fatal("expected row length error")
	}
}

func TestNewRepository_Validation(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{Table: "t"}); err == nil {
		t.Fatal("expected error for empty DSN")
	}
	if _, _, err := NewRepository(context.Background(), Config{DSN: ":memory:"}); err == nil {
		t.Fatal("expected error for empty table")
	}
}

// TestAdapter_UsesHook verifies the factory maps storage.Config fields and
// that Close runs the cleanup function.
func TestAdapter_UsesHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var got Config
	closed := false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		got = cfg
		return &Repository{}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: "x.db", Table: "vl", Columns: []string{"a"}})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	repo.Close()
	if got.DSN != "x.db" || got.Table != "vl" || len(got.Columns) != 1 || !closed {
		t.Fatalf("cfg=%+v closed=%v", got, closed)
	}
}
