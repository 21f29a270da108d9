package sweep

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitrader/internal/domain"
)

func completedResult(id string, sharpe float64) domain.SweepResult {
	return domain.SweepResult{
		JobID:   id,
		Params:  map[string]any{"fast": 5},
		Metrics: &domain.MetricsSummary{Sharpe: sharpe},
		Status:  domain.JobCompleted,
	}
}

func TestReducerIdempotentIngest(t *testing.T) {
	r, err := NewReducer("sharpe", "", nil, nil)
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()
	require.NoError(t, r.Ingest(ctx, completedResult("job-0001", 1.0)))
	require.NoError(t, r.Ingest(ctx, completedResult("job-0001", 2.0)))

	results := r.Results()
	require.Len(t, results, 1)
	assert.Equal(t, 1.0, results[0].Metrics.Sharpe, "duplicate must not replace the first record")
}

func TestReducerLeaderboard(t *testing.T) {
	r, err := NewReducer("sharpe", "", nil, nil)
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()
	require.NoError(t, r.Ingest(ctx, completedResult("job-0003", 0.5)))
	require.NoError(t, r.Ingest(ctx, completedResult("job-0001", 1.5)))
	require.NoError(t, r.Ingest(ctx, completedResult("job-0004", 1.5)))
	require.NoError(t, r.Ingest(ctx, domain.SweepResult{
		JobID:  "job-0002",
		Status: domain.JobFailed,
		Error:  "boom",
	}))

	board := r.Leaderboard(0)
	require.Len(t, board, 3, "failed jobs never rank")
	assert.Equal(t, "job-0001", board[0].JobID, "ties break on job ID")
	assert.Equal(t, "job-0004", board[1].JobID)
	assert.Equal(t, "job-0003", board[2].JobID)

	top := r.Leaderboard(2)
	require.Len(t, top, 2)
	assert.Equal(t, "job-0001", top[0].JobID)
}

func TestReducerCounts(t *testing.T) {
	r, err := NewReducer("sharpe", "", nil, nil)
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()
	require.NoError(t, r.Ingest(ctx, completedResult("job-0001", 1.0)))
	require.NoError(t, r.Ingest(ctx, domain.SweepResult{JobID: "job-0002", Status: domain.JobFailed}))
	require.NoError(t, r.Ingest(ctx, domain.SweepResult{JobID: "job-0003", Status: domain.JobCancelled}))

	completed, failed, cancelled := r.Counts()
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, cancelled)
}

func TestReducerSummaryStream(t *testing.T) {
	dir := t.TempDir()
	r, err := NewReducer("sharpe", dir, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, r.Ingest(ctx, completedResult("job-0001", 1.0)))
	require.NoError(t, r.Ingest(ctx, completedResult("job-0001", 1.0))) // duplicate
	require.NoError(t, r.Ingest(ctx, completedResult("job-0002", 2.0)))
	require.NoError(t, r.Close())

	f, err := os.Open(filepath.Join(dir, "summary.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, 2, lines, "one line per accepted result, duplicates skipped")
}
