package sweep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"aitrader/internal/domain"
	"aitrader/internal/sweep/pb"
)

// Compile-time interface check.
var _ Executor = (*RemoteExecutor)(nil)

// RemoteExecutor delegates jobs to a runner process over gRPC. It submits,
// then polls until the job reaches a terminal state. A runner that stops
// answering polls for longer than the heartbeat timeout is treated as dead
// and the job is handed back to the dispatcher for retry.
type RemoteExecutor struct {
	client       pb.JobRunnerClient
	pollInterval time.Duration
	heartbeat    time.Duration
	log          *slog.Logger
}

// NewRemoteExecutor wraps a JobRunner client with the given poll cadence and
// heartbeat timeout.
func NewRemoteExecutor(client pb.JobRunnerClient, pollInterval, heartbeat time.Duration, log *slog.Logger) *RemoteExecutor {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if heartbeat <= 0 {
		heartbeat = 2 * time.Minute
	}
	if log == nil {
		log = slog.Default()
	}
	return &RemoteExecutor{
		client:       client,
		pollInterval: pollInterval,
		heartbeat:    heartbeat,
		log:          log.With("component", "remote-executor"),
	}
}

// Execute submits the job and polls it to completion. Runner-side failures
// come back as errors so the dispatcher's retry policy applies to them the
// same way it applies to transport failures.
func (e *RemoteExecutor) Execute(ctx context.Context, job domain.SweepJob) (*domain.SweepResult, error) {
	spec, err := jobSpec(job)
	if err != nil {
		return nil, err
	}

	reply, err := e.client.Submit(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("submitting %s: %w", job.ID, err)
	}
	if !reply.GetAccepted() {
		// The runner already holds this job, typically a resubmit after a
		// missed heartbeat. Re-attach to the existing execution and poll it
		// instead of failing the attempt.
		e.log.Info("re-attaching to submitted job", "job", job.ID, "msg", reply.GetMessage())
	}

	return e.poll(ctx, job)
}

// poll watches the job until it terminates, the runner goes silent, or the
// caller cancels.
func (e *RemoteExecutor) poll(ctx context.Context, job domain.SweepJob) (*domain.SweepResult, error) {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	lastContact := time.Now()
	for {
		select {
		case <-ctx.Done():
			e.cancelRemote(job.ID)
			return nil, ctx.Err()
		case <-ticker.C:
		}

		st, err := e.client.Poll(ctx, &pb.PollRequest{JobId: job.ID})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				e.cancelRemote(job.ID)
				return nil, ctx.Err()
			}
			if time.Since(lastContact) > e.heartbeat {
				return nil, fmt.Errorf("runner silent for %s on %s: %w", e.heartbeat, job.ID, err)
			}
			e.log.Warn("poll failed", "job", job.ID, "err", err)
			continue
		}
		lastContact = time.Now()

		switch domain.JobStatus(st.GetStatus()) {
		case domain.JobCompleted:
			return remoteResult(job, st)
		case domain.JobFailed:
			return nil, fmt.Errorf("runner reported %s failed: %s", job.ID, st.GetError())
		case domain.JobCancelled:
			return nil, context.Canceled
		}
	}
}

// cancelRemote tells the runner to stop a job we no longer want. Best effort:
// the dispatcher is already walking away.
func (e *RemoteExecutor) cancelRemote(jobID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := e.client.Cancel(ctx, &pb.CancelRequest{JobId: jobID}); err != nil {
		e.log.Warn("remote cancel failed", "job", jobID, "err", err)
	}
}

// jobSpec converts a sweep job to its wire form.
func jobSpec(job domain.SweepJob) (*pb.JobSpec, error) {
	params, err := json.Marshal(job.Params)
	if err != nil {
		return nil, fmt.Errorf("encoding params for %s: %w", job.ID, err)
	}
	return &pb.JobSpec{
		JobId:      job.ID,
		Index:      int32(job.Index),
		Strategy:   job.Strategy,
		Symbol:     job.Symbol,
		ParamsJson: string(params),
	}, nil
}

// remoteResult converts a terminal JobStatus into the dispatcher's result
// record.
func remoteResult(job domain.SweepJob, st *pb.JobStatus) (*domain.SweepResult, error) {
	res := &domain.SweepResult{
		JobID:       job.ID,
		Params:      job.Params,
		ArtifactURI: st.GetArtifactUri(),
		Status:      domain.JobCompleted,
	}
	if raw := st.GetMetricsJson(); raw != "" {
		var m domain.MetricsSummary
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("decoding metrics for %s: %w", job.ID, err)
		}
		res.Metrics = &m
	}
	return res, nil
}
