package sweep

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"aitrader/internal/domain"
)

// Executor runs one job to completion. LocalExecutor runs it in-process;
// RemoteExecutor submits it to a runner and polls. Both satisfy the same
// completion contract, so the reducer never knows which one produced a
// result.
type Executor interface {
	Execute(ctx context.Context, job domain.SweepJob) (*domain.SweepResult, error)
}

// Dispatcher fans jobs out across a fixed-size worker pool and streams one
// terminal result per job over a completion channel. Transient executor
// errors retry with jittered exponential backoff; exhausted retries yield a
// failed result, and cancellation yields cancelled results for every job not
// yet finished. The channel always carries exactly len(jobs) records.
type Dispatcher struct {
	exec        Executor
	workers     int
	maxAttempts int
	backoff     time.Duration
	log         *slog.Logger
}

// NewDispatcher creates a Dispatcher with the given pool size and retry
// policy.
func NewDispatcher(exec Executor, workers, maxAttempts int, backoff time.Duration, log *slog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		exec:        exec,
		workers:     workers,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		log:         log.With("component", "dispatcher"),
	}
}

// Run schedules the jobs and returns the completion channel. The channel
// closes after the last terminal result; callers drain it to completion.
func (d *Dispatcher) Run(ctx context.Context, jobs []domain.SweepJob) <-chan domain.SweepResult {
	jobCh := make(chan domain.SweepJob, len(jobs))
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)

	results := make(chan domain.SweepResult, len(jobs))
	var wg sync.WaitGroup

	workers := d.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				results <- d.runJob(ctx, job)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()
	return results
}

// runJob executes one job with retries and always returns a terminal result.
func (d *Dispatcher) runJob(ctx context.Context, job domain.SweepJob) domain.SweepResult {
	var lastErr error

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return cancelledResult(job, attempt-1)
		}

		res, err := d.exec.Execute(ctx, job)
		if err == nil {
			res.Attempts = attempt
			if res.Params == nil {
				res.Params = job.Params
			}
			return *res
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return cancelledResult(job, attempt)
		}

		lastErr = err
		d.log.Warn("job attempt failed",
			"job", job.ID,
			"attempt", attempt,
			"max", d.maxAttempts,
			"err", err,
		)
		if attempt < d.maxAttempts && d.backoff > 0 {
			select {
			case <-ctx.Done():
				return cancelledResult(job, attempt)
			case <-time.After(retryDelay(nil, d.backoff, attempt)):
			}
		}
	}

	return domain.SweepResult{
		JobID:    job.ID,
		Params:   job.Params,
		Status:   domain.JobFailed,
		Error:    lastErr.Error(),
		Attempts: d.maxAttempts,
	}
}

// maxRetryDelay caps the exponential growth of the retry sleep.
const maxRetryDelay = 30 * time.Second

// retryDelay returns the sleep before the next attempt: a uniform random
// duration in (0, d], where d doubles per completed attempt from base and is
// clamped at maxRetryDelay. The jitter keeps a pool of workers retrying a
// flapping runner from waking in lockstep. A nil rng uses the shared global
// source.
func retryDelay(rng *rand.Rand, base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxRetryDelay {
			d = maxRetryDelay
			break
		}
	}
	if rng != nil {
		return time.Duration(rng.Int63n(int64(d))) + 1
	}
	return time.Duration(rand.Int63n(int64(d))) + 1
}

func cancelledResult(job domain.SweepJob, attempts int) domain.SweepResult {
	return domain.SweepResult{
		JobID:    job.ID,
		Params:   job.Params,
		Status:   domain.JobCancelled,
		Error:    context.Canceled.Error(),
		Attempts: attempts,
	}
}
