// Package sweep runs independent rating engines over one shared history with
// different parameters.
package sweep

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/roundelo/internal/domain/model"
	"github.com/okian/roundelo/internal/domain/rating"
	"github.com/okian/roundelo/pkg/logger"
	"github.com/okian/roundelo/pkg/metrics"
)

// Job is one parameter set to evaluate.
type Job struct {
	Name   string
	Params rating.Params
}

// Outcome is the result of a job. Result may be partial when Err is set.
type Outcome struct {
	Job    Job
	Result *rating.Result
	Err    error
	Took   time.Duration
}

// Runner distributes jobs over a fixed pool of workers. Each job gets a
// fresh engine; the history is only read.
type Runner struct {
	workers int
	roster  []string
	logger  logger.Logger
}

// NewRunner creates a runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers < 1 {
		r.workers = runtime.NumCPU()
	}
	if r.logger == nil {
		r.logger = logger.Get().Named("sweep")
	}
	return r
}

type task struct {
	index int
	job   Job
}

// Run evaluates every job and returns outcomes in job order. A failing job
// does not stop the others. Jobs not started before ctx is done report the
// context error.
func (r *Runner) Run(ctx context.Context, h model.History, jobs []Job) []Outcome {
	out := make([]Outcome, len(jobs))
	if len(jobs) == 0 {
		return out
	}

	workers := r.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	tasks := make(chan task, len(jobs))
	for i, j := range jobs {
		tasks <- task{index: i, job: j}
	}
	close(tasks)

	metrics.UpdateSweepWorkers(workers)
	defer metrics.UpdateSweepWorkers(0)
	r.logger.Info(ctx, "sweep started", logger.Int("jobs", len(jobs)), logger.Int("workers", workers))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			r.work(ctx, name, h, tasks, out)
		}("worker-" + strconv.Itoa(w))
	}
	wg.Wait()
	return out
}

// work drains tasks. Each index of out is written by exactly one worker.
func (r *Runner) work(ctx context.Context, name string, h model.History, tasks <-chan task, out []Outcome) {
	log := r.logger.Named(name)
	for t := range tasks {
		if err := ctx.Err(); err != nil {
			out[t.index] = Outcome{Job: t.job, Err: fmt.Errorf("sweep job %s: %w", t.job.Name, err)}
			metrics.RecordSweepJob(metrics.OutcomeCancelled)
			continue
		}
		out[t.index] = r.runJob(ctx, log, h, t.job)
	}
}

func (r *Runner) runJob(ctx context.Context, log logger.Logger, h model.History, job Job) Outcome {
	start := time.Now()
	opts := []rating.Option{rating.WithLogger(log.With(logger.String("job", job.Name)))}
	if r.roster != nil {
		opts = append(opts, rating.WithRoster(r.roster))
	}

	res, err := rating.Compute(ctx, h, job.Params, opts...)
	o := Outcome{Job: job, Result: res, Took: time.Since(start)}
	if err != nil {
		o.Err = fmt.Errorf("sweep job %s: %w", job.Name, err)
		metrics.RecordSweepJob(metrics.OutcomeFailed)
		log.Warn(ctx, "sweep job failed", logger.String("job", job.Name), logger.Error(err))
		return o
	}
	metrics.RecordSweepJob(metrics.OutcomeComplete)
	log.Debug(ctx, "sweep job done", logger.String("job", job.Name), logger.Duration("took", o.Took))
	return o
}

// KFactorJobs derives one job per K from base.
func KFactorJobs(base rating.Params, ks []float64) []Job {
	jobs := make([]Job, len(ks))
	for i, k := range ks {
		p := base
		p.K = k
		jobs[i] = Job{Name: "k=" + strconv.FormatFloat(k, 'g', -1, 64), Params: p}
	}
	return jobs
}
