package main

import (
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"

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
	addrFlag := flag.String("addr", "", "listen address (overrides config)")
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

	cache := data.NewCache(store.NewParquetStore(cfg.Storage.DataDir))
	var artifacts *store.ArtifactWriter
	if !sc.DryRun {
		artifacts = store.NewArtifactWriter(cfg.Storage.ArtifactDir)
	}
	exec, err := sweep.NewLocalExecutor(cache, builtins.DefaultRegistry(), cfg, sc, artifacts, logger)
	if err != nil {
		log.Fatalf("building executor: %v", err)
	}
	runner := sweep.NewRunnerServer(exec, logger)

	addr := cfg.Runner.Addr
	if *addrFlag != "" {
		addr = *addrFlag
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("listening on %s: %v", addr, err)
	}

	srv := grpc.NewServer()
	pb.RegisterJobRunnerServer(srv, runner)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Info("shutting down")
		srv.GracefulStop()
	}()

	logger.Info("runner listening", "addr", addr, "strategy", sc.Strategy, "symbol", sc.Symbol)
	if err := srv.Serve(lis); err != nil {
		log.Fatalf("serve error: %v", err)
	}
	// In-flight jobs finish writing artifacts before exit.
	runner.Wait()
}
