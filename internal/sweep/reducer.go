package sweep

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"aitrader/internal/domain"
	"aitrader/internal/store"
)

// Reducer ingests terminal results as they complete and maintains a running
// leaderboard. Ingestion is idempotent by job ID: a retried or duplicated
// result never produces a second record. Each accepted result is appended to
// summary.jsonl and upserted into the sweep registry when one is attached.
type Reducer struct {
	metric string

	mu      sync.Mutex
	seen    map[string]bool
	results []domain.SweepResult

	summary  *os.File
	registry *store.SweepRegistry // optional
	log      *slog.Logger
}

// NewReducer creates a Reducer sorting by the given metric. outputDir, when
// non-empty, receives the summary.jsonl stream; registry, when non-nil,
// receives the terminal records.
func NewReducer(metric, outputDir string, registry *store.SweepRegistry, log *slog.Logger) (*Reducer, error) {
	if metric == "" {
		metric = "sharpe"
	}
	if log == nil {
		log = slog.Default()
	}
	r := &Reducer{
		metric:   metric,
		seen:     make(map[string]bool),
		registry: registry,
		log:      log.With("component", "reducer"),
	}
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output dir: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(outputDir, "summary.jsonl"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening summary stream: %w", err)
		}
		r.summary = f
	}
	return r, nil
}

// Close releases the summary stream.
func (r *Reducer) Close() error {
	if r.summary != nil {
		return r.summary.Close()
	}
	return nil
}

// Ingest folds one terminal result into the reducer. Duplicates (same job
// ID) are dropped silently.
func (r *Reducer) Ingest(ctx context.Context, res domain.SweepResult) error {
	r.mu.Lock()
	if r.seen[res.JobID] {
		r.mu.Unlock()
		r.log.Debug("duplicate result dropped", "job", res.JobID)
		return nil
	}
	r.seen[res.JobID] = true
	r.results = append(r.results, res)
	summary := r.summary
	r.mu.Unlock()

	if summary != nil {
		line, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("encoding result %s: %w", res.JobID, err)
		}
		if _, err := summary.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("appending result %s: %w", res.JobID, err)
		}
	}
	if r.registry != nil {
		if err := r.registry.SaveResult(ctx, res); err != nil {
			return fmt.Errorf("recording result %s: %w", res.JobID, err)
		}
	}
	return nil
}

// Leaderboard returns the top n completed results ordered by the configured
// metric, descending, with job ID as the deterministic tiebreak. n <= 0
// returns everything completed.
func (r *Reducer) Leaderboard(n int) []domain.SweepResult {
	r.mu.Lock()
	completed := make([]domain.SweepResult, 0, len(r.results))
	for _, res := range r.results {
		if res.Status == domain.JobCompleted && res.Metrics != nil {
			completed = append(completed, res)
		}
	}
	r.mu.Unlock()

	sort.Slice(completed, func(i, j int) bool {
		vi, _ := completed[i].Metrics.Metric(r.metric)
		vj, _ := completed[j].Metrics.Metric(r.metric)
		if vi != vj {
			return vi > vj
		}
		return completed[i].JobID < completed[j].JobID
	})
	if n > 0 && len(completed) > n {
		completed = completed[:n]
	}
	return completed
}

// Counts reports how many ingested results landed in each terminal state.
func (r *Reducer) Counts() (completed, failed, cancelled int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.results {
		switch res.Status {
		case domain.JobCompleted:
			completed++
		case domain.JobFailed:
			failed++
		case domain.JobCancelled:
			cancelled++
		}
	}
	return
}

// Results returns a copy of everything ingested so far.
func (r *Reducer) Results() []domain.SweepResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.SweepResult, len(r.results))
	copy(out, r.results)
	return out
}
