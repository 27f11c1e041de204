package storage

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// TestLoadBatches_Basic verifies rows are grouped into batches and copyFn is
// called with the expected counts. The total equals the sum of all successful
// copyFn returns.
func TestLoadBatches_Basic(t *testing.T) {
	t.Parallel()

	columns := []string{"StudyID", "Log10VL"}
	in := make(chan []any, 8)
	for i := 0; i < 7; i++ {
		in <- []any{"s", float64(i)}
	}
	close(in)

	var calls int32
	var sizes []int
	copyFn := func(_ context.Context, cols []string, rows [][]any) (int64, error) {
		atomic.AddInt32(&calls, 1)
		if len(cols) != 2 {
			t.Errorf("columns=%v", cols)
		}
		sizes = append(sizes, len(rows))
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(context.Background(), columns, in, 3, copyFn)
	if err != nil {
		t.Fatalf("LoadBatches error: %v", err)
	}
	if total != 7 {
		t.Fatalf("total rows %d, want 7", total)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("copyFn calls %d, want 3 (3+3+1)", got)
	}
	if sizes[2] != 1 {
		t.Fatalf("final batch size %d, want 1", sizes[2])
	}
}

// TestLoadBatches_ErrorPropagation ensures the first copy error is returned
// and processing stops after that batch.
func TestLoadBatches_ErrorPropagation(t *testing.T) {
	t.Parallel()

	in := make(chan []any, 5)
	for i := 0; i < 5; i++ {
		in <- []any{i}
	}
	close(in)

	wantErr := errors.New("copy failed")
	var batches int
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		batches++
		if batches == 2 {
			return 0, wantErr
		}
		return int64(len(rows)), nil
	}

	total, err := LoadBatches(context.Background(), []string{"c"}, in, 2, copyFn)
	if !errors.Is(err, wantErr) {
		t.Fatalf("want error %v, got %v", wantErr, err)
	}
	if total != 2 || batches != 2 {
		t.Fatalf("total=%d batches=%d; want 2 and 2", total, batches)
	}
}

func TestLoadBatches_InvalidArgs(t *testing.T) {
	t.Parallel()

	in := make(chan []any)
	if _, err := LoadBatches(context.Background(), nil, in, 0, func(context.Context, []string, [][]any) (int64, error) { return 0, nil }); err == nil {
		t.Fatal("expected error for batchSize 0")
	}
	if _, err := LoadBatches(context.Background(), nil, in, 1, nil); err == nil {
		t.Fatal("expected error for nil copyFn")
	}
}

// TestLoadBatches_ContextCancel checks the loader exits on context cancellation.
func TestLoadBatches_ContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan []any)
	errCh := make(chan error, 1)
	go func() {
		_, err := LoadBatches(ctx, []string{"c"}, in, 2, func(context.Context, []string, [][]any) (int64, error) {
			return 0, nil
		})
		errCh <- err
	}()

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err=%v; want context.Canceled", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("LoadBatches did not return after context cancel")
	}
}
