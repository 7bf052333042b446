package backtest

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"strategylab/internal/types"
)

// Job is one independent backtest of a batch
type Job struct {
	ID       string
	Symbol   string
	Strategy string
	Bars     []types.OHLCV
	Signals  []types.Signal
	Params   Params
}

// JobResult pairs a job with its outcome. Err is set instead of Result when
// the job's input was rejected.
type JobResult struct {
	ID       string
	Symbol   string
	Strategy string
	Result   *Result
	Err      error
}

// RunBatch runs jobs on at most concurrency goroutines. Jobs share no state.
// Results keep the order of jobs. The returned error is only the context
// error; jobs not started before cancellation have a nil Result and Err set.
func RunBatch(ctx context.Context, jobs []Job, concurrency int) ([]JobResult, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([]JobResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, job := range jobs {
		i, job := i, job
		if job.ID == "" {
			job.ID = uuid.NewString()
		}
		results[i] = JobResult{ID: job.ID, Symbol: job.Symbol, Strategy: job.Strategy}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i].Err = err
				return err
			}
			res, err := Run(job.Bars, job.Signals, job.Params)
			if err != nil {
				results[i].Err = err
				return nil
			}
			res.Symbol = job.Symbol
			res.Strategy = job.Strategy
			results[i].Result = res
			return nil
		})
	}
	err := g.Wait()
	return results, err
}
