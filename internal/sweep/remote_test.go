package sweep

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"aitrader/internal/domain"
	"aitrader/internal/sweep/pb"
)

// startRunner serves a RunnerServer over an in-memory connection and returns
// a connected client.
func startRunner(t *testing.T, exec Executor) pb.JobRunnerClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	pb.RegisterJobRunnerServer(srv, NewRunnerServer(exec, nil))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return pb.NewJobRunnerClient(conn)
}

func TestRemoteExecuteEndToEnd(t *testing.T) {
	exec := newStubExecutor()
	client := startRunner(t, exec)
	remote := NewRemoteExecutor(client, 5*time.Millisecond, time.Second, nil)

	job := domain.SweepJob{
		ID:       "job-0001",
		Index:    3,
		Strategy: "sma_cross",
		Symbol:   "AAPL",
		Params:   map[string]any{"fast": float64(5)},
		Status:   domain.JobQueued,
	}

	res, err := remote.Execute(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, "job-0001", res.JobID)
	assert.Equal(t, domain.JobCompleted, res.Status)
	require.NotNil(t, res.Metrics)
	assert.Equal(t, 3.0, res.Metrics.Sharpe, "metrics survive the JSON round trip")
	assert.Equal(t, job.Params, res.Params)
}

func TestRemoteExecuteRunnerFailure(t *testing.T) {
	exec := newStubExecutor()
	exec.failJob = "job-0001"
	client := startRunner(t, exec)
	remote := NewRemoteExecutor(client, 5*time.Millisecond, time.Second, nil)

	_, err := remote.Execute(context.Background(), domain.SweepJob{ID: "job-0001"})
	require.Error(t, err, "runner failure surfaces as a retryable error")
	assert.Contains(t, err.Error(), "scripted failure")
}

func TestRemoteExecuteCancellation(t *testing.T) {
	exec := newStubExecutor()
	exec.delay = 5 * time.Second
	client := startRunner(t, exec)
	remote := NewRemoteExecutor(client, 5*time.Millisecond, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := remote.Execute(ctx, domain.SweepJob{ID: "job-0001"})
	require.ErrorIs(t, err, context.Canceled)

	// The remote job should be cancelled too, not left running.
	require.Eventually(t, func() bool {
		st, err := client.Poll(context.Background(), &pb.PollRequest{JobId: "job-0001"})
		return err == nil && st.GetStatus() == string(domain.JobCancelled)
	}, time.Second, 10*time.Millisecond)
}

func TestRemoteReattachesToSubmittedJob(t *testing.T) {
	exec := newStubExecutor()
	client := startRunner(t, exec)
	remote := NewRemoteExecutor(client, 5*time.Millisecond, time.Second, nil)

	// The runner already took the job on a previous attempt whose poll loop
	// was abandoned after a missed heartbeat.
	first, err := client.Submit(context.Background(), &pb.JobSpec{JobId: "job-0001", Index: 2})
	require.NoError(t, err)
	require.True(t, first.GetAccepted())

	res, err := remote.Execute(context.Background(), domain.SweepJob{ID: "job-0001", Index: 2})
	require.NoError(t, err, "duplicate submit must fall through to polling")
	assert.Equal(t, domain.JobCompleted, res.Status)
	require.NotNil(t, res.Metrics)
	assert.Equal(t, 2.0, res.Metrics.Sharpe)
}

func TestRunnerRejectsDuplicateSubmit(t *testing.T) {
	exec := newStubExecutor()
	client := startRunner(t, exec)

	spec := &pb.JobSpec{JobId: "job-0001", Strategy: "sma_cross", Symbol: "AAPL"}
	first, err := client.Submit(context.Background(), spec)
	require.NoError(t, err)
	assert.True(t, first.GetAccepted())

	second, err := client.Submit(context.Background(), spec)
	require.NoError(t, err)
	assert.False(t, second.GetAccepted())
}

func TestRunnerPollUnknownJob(t *testing.T) {
	client := startRunner(t, newStubExecutor())

	_, err := client.Poll(context.Background(), &pb.PollRequest{JobId: "job-9999"})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestRunnerCancelFinishedJobIsNoOp(t *testing.T) {
	exec := newStubExecutor()
	client := startRunner(t, exec)

	_, err := client.Submit(context.Background(), &pb.JobSpec{JobId: "job-0001"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		st, err := client.Poll(context.Background(), &pb.PollRequest{JobId: "job-0001"})
		return err == nil && domain.JobStatus(st.GetStatus()).Terminal()
	}, time.Second, 5*time.Millisecond)

	reply, err := client.Cancel(context.Background(), &pb.CancelRequest{JobId: "job-0001"})
	require.NoError(t, err)
	assert.False(t, reply.GetCancelled())
}
