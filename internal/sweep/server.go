package sweep

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"aitrader/internal/domain"
	"aitrader/internal/sweep/pb"
)

// Compile-time interface check.
var _ pb.JobRunnerServer = (*RunnerServer)(nil)

// runnerJob is the server-side record for one submitted job.
type runnerJob struct {
	status domain.JobStatus
	result *domain.SweepResult
	errMsg string
	cancel context.CancelFunc
}

// RunnerServer is the gRPC surface of a remote job runner. Submitted jobs
// execute asynchronously against the injected executor; dispatchers learn the
// outcome by polling. State lives in memory only, so a restarted runner
// forgets its jobs and the dispatcher's heartbeat timeout reclaims them.
type RunnerServer struct {
	pb.UnimplementedJobRunnerServer

	exec Executor
	log  *slog.Logger

	mu   sync.Mutex
	jobs map[string]*runnerJob
	wg   sync.WaitGroup
}

// NewRunnerServer wraps an executor for serving over gRPC.
func NewRunnerServer(exec Executor, log *slog.Logger) *RunnerServer {
	if log == nil {
		log = slog.Default()
	}
	return &RunnerServer{
		exec: exec,
		log:  log.With("component", "runner-server"),
		jobs: make(map[string]*runnerJob),
	}
}

// Submit accepts a job and starts executing it in the background. Submitting
// a job ID the runner already knows is rejected so a confused dispatcher
// cannot run the same job twice.
func (s *RunnerServer) Submit(ctx context.Context, spec *pb.JobSpec) (*pb.SubmitReply, error) {
	if spec.GetJobId() == "" {
		return nil, status.Error(codes.InvalidArgument, "job_id is required")
	}

	var params map[string]any
	if raw := spec.GetParamsJson(); raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "decoding params_json: %v", err)
		}
	}

	job := domain.SweepJob{
		ID:       spec.GetJobId(),
		Index:    int(spec.GetIndex()),
		Strategy: spec.GetStrategy(),
		Symbol:   spec.GetSymbol(),
		Params:   params,
		Status:   domain.JobQueued,
	}

	s.mu.Lock()
	if _, exists := s.jobs[job.ID]; exists {
		s.mu.Unlock()
		return &pb.SubmitReply{Accepted: false, Message: "job already submitted"}, nil
	}
	jobCtx, cancel := context.WithCancel(context.Background())
	rec := &runnerJob{status: domain.JobQueued, cancel: cancel}
	s.jobs[job.ID] = rec
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(jobCtx, cancel, job)

	s.log.Info("job accepted", "job", job.ID, "strategy", job.Strategy, "symbol", job.Symbol)
	return &pb.SubmitReply{Accepted: true}, nil
}

// run executes one job and records its terminal state.
func (s *RunnerServer) run(ctx context.Context, cancel context.CancelFunc, job domain.SweepJob) {
	defer s.wg.Done()
	defer cancel()

	s.setStatus(job.ID, domain.JobRunning, nil, "")

	res, err := s.exec.Execute(ctx, job)
	switch {
	case ctx.Err() != nil:
		s.setStatus(job.ID, domain.JobCancelled, nil, ctx.Err().Error())
	case err != nil:
		s.setStatus(job.ID, domain.JobFailed, nil, err.Error())
	default:
		s.setStatus(job.ID, domain.JobCompleted, res, "")
	}
}

func (s *RunnerServer) setStatus(jobID string, st domain.JobStatus, res *domain.SweepResult, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.jobs[jobID]
	if !ok || !rec.status.CanTransition(st) {
		return
	}
	rec.status = st
	rec.result = res
	rec.errMsg = errMsg
}

// Poll reports a job's status. Completed jobs carry their metrics and
// artifact location; failed and cancelled jobs carry the error.
func (s *RunnerServer) Poll(ctx context.Context, req *pb.PollRequest) (*pb.JobStatus, error) {
	s.mu.Lock()
	rec, ok := s.jobs[req.GetJobId()]
	if !ok {
		s.mu.Unlock()
		return nil, status.Errorf(codes.NotFound, "unknown job %q", req.GetJobId())
	}
	st := rec.status
	res := rec.result
	errMsg := rec.errMsg
	s.mu.Unlock()

	reply := &pb.JobStatus{
		JobId:  req.GetJobId(),
		Status: string(st),
		Error:  errMsg,
	}
	if res != nil {
		reply.ArtifactUri = res.ArtifactURI
		if res.Metrics != nil {
			b, err := json.Marshal(res.Metrics)
			if err != nil {
				return nil, status.Errorf(codes.Internal, "encoding metrics: %v", err)
			}
			reply.MetricsJson = string(b)
		}
	}
	return reply, nil
}

// Cancel stops a job if it is still in flight. Cancelling a terminal or
// unknown job reports cancelled=false rather than an error.
func (s *RunnerServer) Cancel(ctx context.Context, req *pb.CancelRequest) (*pb.CancelReply, error) {
	s.mu.Lock()
	rec, ok := s.jobs[req.GetJobId()]
	var cancel context.CancelFunc
	if ok && !rec.status.Terminal() {
		cancel = rec.cancel
	}
	s.mu.Unlock()

	if cancel == nil {
		return &pb.CancelReply{Cancelled: false}, nil
	}
	cancel()
	s.log.Info("job cancelled", "job", req.GetJobId())
	return &pb.CancelReply{Cancelled: true}, nil
}

// Wait blocks until all in-flight jobs have reached a terminal state. Used
// during shutdown so artifacts finish writing before the process exits.
func (s *RunnerServer) Wait() {
	s.wg.Wait()
}
