package storage

// This file implements a generic, batched loader that drains positional rows
// from a channel and invokes a backend's bulk-write function (CopyFn) per
// batch. On every successful flush a progress line is logged with running
// totals and rows/sec since the previous flush.

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations insert
// the provided rows (aligned to columns) and return the number of rows
// written. They should cancel promptly when ctx is done.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches drains rows from in, groups them into batches of batchSize, and
// calls copyFn for each non-empty batch. It returns the total number of rows
// reported by copyFn and the first error encountered.
//
// Cancellation: returns (total, ctx.Err()) when canceled.
func LoadBatches(
	ctx context.Context,
	columns []string,
	in <-chan []any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total       int64
		batches     int64
		batch       = make([][]any, 0, batchSize)
		start       = time.Now()
		lastFlushTS = start
		lastTotal   int64
		log         = zap.L()
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n

		// copyFn must not retain the slice; the backing array is reused.
		batch = batch[:0]

		if err != nil {
			log.Error("loader: copy failed", zap.Int64("after", n), zap.Int64("total", total), zap.Error(err))
			return err
		}

		batches++
		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(total-lastTotal) / sinceLast.Seconds()
		}
		log.Info("loader: batch written",
			zap.Int64("batch", batches),
			zap.Float64("rps", rps),
			zap.Int64("inserted", n),
			zap.Int64("total_inserted", total),
			zap.Duration("elapsed", now.Sub(start).Truncate(time.Millisecond)),
		)
		lastFlushTS = now
		lastTotal = total
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case row, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				log.Debug("loader: input closed", zap.Int64("total_inserted", total))
				return total, nil
			}
			batch = append(batch, row)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}
