package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"aitrader/internal/broker"
	"aitrader/internal/config"
	"aitrader/internal/data"
	"aitrader/internal/domain"
	"aitrader/internal/engine"
	"aitrader/internal/risk"
	"aitrader/internal/store"
	"aitrader/internal/strategy"
)

// Compile-time interface check.
var _ Executor = (*LocalExecutor)(nil)

// LocalExecutor runs jobs in-process. Workers share one read-only bar cache;
// everything mutable (sizer, simulator, tracker) is constructed fresh per
// job from independent config copies.
type LocalExecutor struct {
	cache     *data.Cache
	registry  *strategy.Registry
	base      *config.Config
	sweep     *config.SweepConfig
	artifacts *store.ArtifactWriter // nil disables artifact writes (dry runs)
	start     time.Time
	end       time.Time
	log       *slog.Logger
}

// NewLocalExecutor builds an executor for one sweep run.
func NewLocalExecutor(cache *data.Cache, registry *strategy.Registry, base *config.Config,
	sc *config.SweepConfig, artifacts *store.ArtifactWriter, log *slog.Logger) (*LocalExecutor, error) {

	start, end, err := sc.DateRange()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &LocalExecutor{
		cache:     cache,
		registry:  registry,
		base:      base,
		sweep:     sc,
		artifacts: artifacts,
		start:     start,
		end:       end,
		log:       log.With("component", "local-executor"),
	}, nil
}

// Execute runs one job's full pipeline and returns its terminal result. Any
// returned error is retryable by the dispatcher; a completed result is final.
func (e *LocalExecutor) Execute(ctx context.Context, job domain.SweepJob) (*domain.SweepResult, error) {
	bars, err := e.cache.Load(ctx, job.Symbol, e.start, e.end)
	if err != nil {
		return nil, fmt.Errorf("loading bars for %s: %w", job.Symbol, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars for %s in [%s, %s]",
			job.Symbol, e.start.Format("2006-01-02"), e.end.Format("2006-01-02"))
	}

	strat, err := e.registry.New(job.Strategy, strategy.Params(job.Params))
	if err != nil {
		return nil, err
	}

	engineCfg, riskCfg, brokerCfg := e.jobConfigs()
	runner := engine.NewRunner(engineCfg, strat, riskCfg, brokerCfg, e.log.With("job", job.ID))

	res, err := runner.Run(ctx, bars)
	if err != nil {
		return nil, err
	}

	artifactDir := ""
	if e.artifacts != nil {
		artifactDir, err = e.artifacts.Write(job.Strategy, job.Symbol, job.Params,
			res.Curve, res.Trades, res.Metrics)
		if err != nil {
			return nil, fmt.Errorf("writing artifacts for %s: %w", job.ID, err)
		}
	}

	return &domain.SweepResult{
		JobID:       job.ID,
		Params:      job.Params,
		Metrics:     res.Metrics,
		ArtifactURI: artifactDir,
		Status:      domain.JobCompleted,
	}, nil
}

// jobConfigs copies the base run configs and applies the sweep document's
// overrides. Each job gets its own copies; nothing is shared.
func (e *LocalExecutor) jobConfigs() (engine.Config, risk.Config, broker.Config) {
	engineCfg := engine.DefaultConfig()
	engineCfg.InitialEquity = e.base.Backtest.InitialEquity
	engineCfg.PeriodsPerYear = e.base.Backtest.PeriodsPerYear
	engineCfg.RiskFreeRate = e.base.Backtest.RiskFreeRate

	riskCfg := e.base.Backtest.Risk
	brokerCfg := e.base.Backtest.Broker

	sc := e.sweep
	if sc.RiskAgent != "" {
		riskCfg.Agent = sc.RiskAgent
	}
	if sc.RiskAgentFraction > 0 {
		riskCfg.AgentFraction = sc.RiskAgentFraction
	}
	if sc.RiskFrac != nil {
		riskCfg.RiskFrac = *sc.RiskFrac
	}
	if sc.MinNotional != nil {
		riskCfg.MinNotional = *sc.MinNotional
	}
	if sc.SlippageBps != nil {
		brokerCfg.SlippageBps = *sc.SlippageBps
	}
	if sc.FeePerShare != nil {
		brokerCfg.FeePerShare = *sc.FeePerShare
	}
	return engineCfg, riskCfg, brokerCfg
}
