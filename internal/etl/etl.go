// Package etl runs a pipeline end to end: every configured study is loaded and
// normalized, the outputs are combined, and the combined rows are streamed
// into the configured storage backend.
//
// The package depends only on the storage factory, never on a concrete
// backend; callers blank-import internal/storage/all (or a single backend) to
// register the kinds they need.
package etl

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vlingest/internal/combine"
	"vlingest/internal/config"
	"vlingest/internal/datasource/file"
	"vlingest/internal/metrics"
	"vlingest/internal/schema"
	"vlingest/internal/storage"
	"vlingest/internal/study"
	"vlingest/pkg/records"
)

// newRepositoryFn is a test seam around the storage factory.
var newRepositoryFn = storage.New

// Runner executes one pipeline.
type Runner struct {
	Spec config.Pipeline

	// BaseDir resolves relative study descriptor paths, normally the
	// directory of the pipeline file.
	BaseDir string

	// Registry is the output schema. Nil means schema.Canonical.
	Registry *schema.Registry

	// Logger is the run logger. Nil means zap.L().
	Logger *zap.Logger
}

// StudyResult reports one study of a run.
type StudyResult struct {
	ID          string
	Rows        int
	CoerceNulls int64
	Elapsed     time.Duration
	Err         error
}

// Summary reports a finished run.
type Summary struct {
	RunID   string
	Studies []StudyResult
	Rows    int   // combined rows
	Loaded  int64 // rows the backend accepted
	Batches int64
}

// Failed returns the studies that did not complete.
func (s Summary) Failed() []StudyResult {
	var out []StudyResult
	for _, r := range s.Studies {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Run executes the pipeline. A study failure aborts the run unless
// runtime.continue_on_error is set, in which case the study is skipped and
// reported in the summary. The summary is returned even on error.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	reg := r.Registry
	if reg == nil {
		reg = schema.Canonical
	}
	runID := uuid.NewString()
	log := r.Logger
	if log == nil {
		log = zap.L()
	}
	log = log.With(zap.String("run_id", runID), zap.String("job", r.Spec.Job))
	sum := Summary{RunID: runID}

	descs, err := study.ResolveAll(r.Spec.Studies, r.BaseDir)
	if err != nil {
		return sum, fmt.Errorf("resolve studies: %w", err)
	}
	log.Info("etl: run started",
		zap.Int("studies", len(descs)),
		zap.String("data_dir", r.Spec.DataDir),
		zap.String("storage", r.Spec.Storage.Kind))

	dir := file.NewDir(r.Spec.DataDir)
	nulls := newNullAgg(sampleLimit)

	var outputs []records.Table
	for _, desc := range descs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		res, t := r.runStudy(ctx, desc, dir, reg, nulls, log)
		sum.Studies = append(sum.Studies, res)
		if res.Err != nil {
			if !r.Spec.Runtime.ContinueOnError {
				return sum, res.Err
			}
			log.Warn("etl: study skipped", zap.String("study", res.ID), zap.Error(res.Err))
			continue
		}
		outputs = append(outputs, t)
	}
	nulls.log(log)

	combined, err := combine.Combine(outputs...)
	if err != nil {
		return sum, fmt.Errorf("combine: %w", err)
	}
	if len(outputs) == 0 {
		combined.Columns = reg.Columns()
	}
	sum.Rows = combined.Len()

	loaded, batches, err := r.load(ctx, combined, reg, log)
	sum.Loaded, sum.Batches = loaded, batches
	if err != nil {
		return sum, err
	}

	log.Info("etl: summary",
		zap.Int("studies", len(sum.Studies)),
		zap.Int("failed", len(sum.Failed())),
		zap.Int("rows", sum.Rows),
		zap.Int64("loaded", sum.Loaded),
		zap.Int64("batches", sum.Batches),
		zap.Int64("coerce_nulls", nulls.total()))
	return sum, nil
}

func (r *Runner) runStudy(
	ctx context.Context,
	desc config.Study,
	dir file.Dir,
	reg *schema.Registry,
	nulls *nullAgg,
	log *zap.Logger,
) (StudyResult, records.Table) {
	start := time.Now()
	res := StudyResult{ID: desc.StudyID}

	var studyNulls atomic.Int64
	s, err := study.Compile(desc, study.Options{
		Registry: reg,
		Coerce:   r.Spec.Coerce,
		Logger:   log,
		OnInvalid: func(id, column string, row int, value any) {
			studyNulls.Add(1)
			nulls.add(id, column, row, value)
		},
	})
	var t records.Table
	if err == nil {
		t, err = s.Run(ctx, dir)
	}

	res.Elapsed = time.Since(start)
	res.Err = err
	res.Rows = t.Len()
	res.CoerceNulls = studyNulls.Load()

	metrics.RecordStudy(r.Spec.Job, res.ID, err, res.Elapsed)
	if err == nil {
		metrics.RecordRows(r.Spec.Job, "emitted", int64(res.Rows))
		for col, n := range nulls.byColumn(res.ID) {
			metrics.RecordCoerceNulls(r.Spec.Job, res.ID, col, n)
		}
	}
	return res, t
}

// load opens the backend, optionally creates the table, and streams the
// combined rows through storage.LoadBatches.
func (r *Runner) load(ctx context.Context, t records.Table, reg *schema.Registry, log *zap.Logger) (int64, int64, error) {
	rt := newRuntimeConfig(r.Spec)
	cols := r.Spec.Storage.DB.Columns
	if len(cols) == 0 {
		cols = reg.Columns()
	}
	for _, c := range cols {
		if !t.HasColumn(c) {
			return 0, 0, fmt.Errorf("storage column %q is not in the combined output", c)
		}
	}

	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:    r.Spec.Storage.Kind,
		DSN:     r.Spec.Storage.DB.DSN,
		Table:   r.Spec.Storage.DB.Table,
		Columns: cols,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("init repo: %w", err)
	}
	defer repo.Close()

	if r.Spec.Storage.DB.AutoCreateTable {
		if err := storage.EnsureTableFromPipeline(ctx, r.Spec, reg, repo); err != nil {
			return 0, 0, fmt.Errorf("apply DDL: %w", err)
		}
		log.Info("etl: table ensured", zap.String("table", r.Spec.Storage.DB.Table))
	}

	log.Debug("etl: loading",
		zap.Int("batch", rt.batchSize),
		zap.Int("buffer", rt.bufferSize),
		zap.Int("columns", len(cols)))

	var batches atomic.Int64
	copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		n, err := repo.CopyFrom(ctx, columns, rows)
		if err == nil {
			batches.Add(1)
			metrics.RecordBatches(r.Spec.Job, 1)
		}
		return n, err
	}

	g, gctx := errgroup.WithContext(ctx)
	ch := make(chan []any, rt.bufferSize)

	g.Go(func() error {
		defer close(ch)
		for _, rec := range t.Rows {
			row := make([]any, len(cols))
			for j, c := range cols {
				row[j] = rec[c]
			}
			select {
			case ch <- row:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	var loaded int64
	g.Go(func() error {
		n, err := storage.LoadBatches(gctx, cols, ch, rt.batchSize, copyFn)
		loaded = n
		return err
	})

	err = g.Wait()
	metrics.RecordRows(r.Spec.Job, "loaded", loaded)
	if err != nil {
		return loaded, batches.Load(), fmt.Errorf("load: %w", err)
	}
	return loaded, batches.Load(), nil
}
