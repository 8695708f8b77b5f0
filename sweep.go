package htmgo

import (
	"context"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"
)

// SweepOptions configures a parameter sweep.
type SweepOptions struct {
	// Parallelism bounds the number of engines running concurrently.
	// Defaults to GOMAXPROCS.
	Parallelism int

	// Learn is passed to every Compute call. Defaults to true.
	Learn bool

	// Logger receives the sweep-level completion log. Per-run engines log
	// through their own (noop) loggers. Defaults to NoopLogger.
	Logger *Logger
}

// SweepResult summarizes one sweep run.
type SweepResult struct {
	// Seed the run's engine was created with.
	Seed int64

	// PredictionScore is the mean, over all non-empty steps after the
	// first, of the fraction of each step's active columns that the
	// engine predicted from the previous step.
	PredictionScore float64

	// NumSegments and NumSynapses describe the learned structure.
	NumSegments int
	NumSynapses int
}

// Sweep runs one independent engine per seed over the same column stream
// and reports per-run prediction quality. Engines never share a store or a
// random source, so each run is reproducible in isolation and the sweep as
// a whole is reproducible regardless of scheduling.
func Sweep(ctx context.Context, params Params, seeds []int64, stream [][]int, optFns ...func(o *SweepOptions)) ([]SweepResult, error) {
	opts := SweepOptions{
		Parallelism: runtime.GOMAXPROCS(0),
		Learn:       true,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 1
	}
	if opts.Logger == nil {
		opts.Logger = NoopLogger()
	}

	results := make([]SweepResult, len(seeds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallelism)

	for i, seed := range seeds {
		g.Go(func() error {
			runParams := params
			runParams.Seed = seed

			tm, err := New(runParams)
			if err != nil {
				return err
			}

			res, err := sweepRun(ctx, tm, stream, opts.Learn)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	err := g.Wait()
	opts.Logger.LogSweep(ctx, len(seeds), len(stream), err)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func sweepRun(ctx context.Context, tm *TemporalMemory, stream [][]int, learn bool) (SweepResult, error) {
	var scoreSum float64
	var scored int

	for step, cols := range stream {
		if err := ctx.Err(); err != nil {
			return SweepResult{}, err
		}

		predicted := columnsBitmap(tm.PredictedColumns())

		if err := tm.Compute(ctx, cols, learn); err != nil {
			return SweepResult{}, err
		}

		// The first step has nothing to predict from.
		if step == 0 || len(cols) == 0 {
			continue
		}

		actual := columnsBitmap(cols)
		hit := roaring.And(predicted, actual).GetCardinality()
		scoreSum += float64(hit) / float64(len(cols))
		scored++
	}

	res := SweepResult{
		Seed:        tm.Params().Seed,
		NumSegments: tm.Connections().NumSegments(),
		NumSynapses: tm.Connections().NumSynapses(),
	}
	if scored > 0 {
		res.PredictionScore = scoreSum / float64(scored)
	}
	return res, nil
}

func columnsBitmap(cols []int) *roaring.Bitmap {
	bm := roaring.New()
	for _, col := range cols {
		bm.Add(uint32(col))
	}
	return bm
}
