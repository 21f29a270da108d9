package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"aitrader/internal/config"
	"aitrader/internal/data"
	"aitrader/internal/store"
	"aitrader/internal/strategy/builtins"
	"aitrader/internal/sweep"
	"aitrader/internal/sweep/pb"
	"aitrader/internal/util"
)

func main() {
	sweepPath := flag.String("sweep", "", "path to the sweep document (required)")
	remote := flag.Bool("remote", false, "dispatch jobs to the configured gRPC runner")
	top := flag.Int("top", 10, "leaderboard size to print")
	flag.Parse()

	if *sweepPath == "" {
		log.Fatal("-sweep is required")
	}

	cfgPath := "config/aitrader.yaml"
	if p := os.Getenv("AITRADER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sc, err := config.LoadSweep(*sweepPath)
	if err != nil {
		log.Fatalf("failed to load sweep document: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)

	jobs, err := sweep.Jobs(sc)
	if err != nil {
		log.Fatalf("expanding sweep: %v", err)
	}
	logger.Info("sweep expanded",
		"jobs", len(jobs),
		"strategy", sc.Strategy,
		"symbol", sc.Symbol,
		"sampler", sc.Sampler,
		"workers", sc.MaxWorkers,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var registry *store.SweepRegistry
	if !sc.DryRun {
		registry, err = store.NewSweepRegistry(cfg.Storage.SQLitePath)
		if err != nil {
			log.Fatalf("opening sweep registry: %v", err)
		}
		defer registry.Close()
		for _, j := range jobs {
			if err := registry.RegisterJob(ctx, j); err != nil {
				log.Fatalf("registering %s: %v", j.ID, err)
			}
		}
	}

	exec, err := buildExecutor(cfg, sc, *remote, logger)
	if err != nil {
		log.Fatalf("building executor: %v", err)
	}

	reducer, err := sweep.NewReducer(sc.Metric, sc.OutputDir, registry, logger)
	if err != nil {
		log.Fatalf("creating reducer: %v", err)
	}
	defer reducer.Close()

	dispatcher := sweep.NewDispatcher(exec, sc.MaxWorkers, sc.MaxAttempts, sc.RetryBackoffDuration(), logger)
	for res := range dispatcher.Run(ctx, jobs) {
		if err := reducer.Ingest(context.Background(), res); err != nil {
			logger.Error("ingest failed", "job", res.JobID, "err", err)
		}
		if registry != nil {
			if err := registry.UpdateStatus(context.Background(), res.JobID, res.Status); err != nil {
				logger.Warn("status update rejected", "job", res.JobID, "err", err)
			}
		}
	}

	completed, failed, cancelled := reducer.Counts()
	logger.Info("sweep complete", "completed", completed, "failed", failed, "cancelled", cancelled)

	board := reducer.Leaderboard(*top)
	fmt.Printf("%-10s %10s %10s %10s %8s  %s\n", "JOB", sc.Metric, "cagr", "max_dd", "trades", "params")
	for _, res := range board {
		val, _ := res.Metrics.Metric(sc.Metric)
		fmt.Printf("%-10s %10.3f %10.3f %10.3f %8d  %v\n",
			res.JobID, val, res.Metrics.CAGR, res.Metrics.MaxDrawdown, res.Metrics.NTrades, res.Params)
	}
}

// buildExecutor wires either the in-process executor or a gRPC client pointed
// at the configured runner.
func buildExecutor(cfg *config.Config, sc *config.SweepConfig, remote bool, logger *slog.Logger) (sweep.Executor, error) {
	if remote {
		conn, err := grpc.NewClient(cfg.Runner.Addr,
			grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, fmt.Errorf("dialing runner %s: %w", cfg.Runner.Addr, err)
		}
		return sweep.NewRemoteExecutor(
			pb.NewJobRunnerClient(conn),
			cfg.Runner.PollIntervalDuration(),
			cfg.Runner.HeartbeatTimeoutDuration(),
			logger,
		), nil
	}

	cache := data.NewCache(store.NewParquetStore(cfg.Storage.DataDir))
	var artifacts *store.ArtifactWriter
	if !sc.DryRun {
		artifacts = store.NewArtifactWriter(cfg.Storage.ArtifactDir)
	}
	return sweep.NewLocalExecutor(cache, builtins.DefaultRegistry(), cfg, sc, artifacts, logger)
}
