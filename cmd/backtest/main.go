package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aitrader/internal/config"
	"aitrader/internal/data"
	"aitrader/internal/engine"
	"aitrader/internal/store"
	"aitrader/internal/strategy"
	"aitrader/internal/strategy/builtins"
	"aitrader/internal/util"
)

func main() {
	symbol := flag.String("symbol", "", "symbol to backtest (required)")
	stratName := flag.String("strategy", "sma_cross", "strategy name")
	startFlag := flag.String("start", "2020-01-01", "start date YYYY-MM-DD")
	endFlag := flag.String("end", "", "end date YYYY-MM-DD (default today)")
	paramsJSON := flag.String("params", "{}", "strategy parameters as JSON")
	noArtifacts := flag.Bool("no-artifacts", false, "skip writing equity/trade artifacts")
	flag.Parse()

	if *symbol == "" {
		log.Fatal("-symbol is required")
	}

	cfgPath := "config/aitrader.yaml"
	if p := os.Getenv("AITRADER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)

	start, err := time.Parse("2006-01-02", *startFlag)
	if err != nil {
		log.Fatalf("invalid start date %q: %v", *startFlag, err)
	}
	end := time.Now().UTC().Truncate(24 * time.Hour)
	if *endFlag != "" {
		end, err = time.Parse("2006-01-02", *endFlag)
		if err != nil {
			log.Fatalf("invalid end date %q: %v", *endFlag, err)
		}
	}

	var params strategy.Params
	if err := json.Unmarshal([]byte(*paramsJSON), &params); err != nil {
		log.Fatalf("invalid -params: %v", err)
	}

	strat, err := builtins.DefaultRegistry().New(*stratName, params)
	if err != nil {
		log.Fatalf("building strategy: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cache := data.NewCache(store.NewParquetStore(cfg.Storage.DataDir))
	bars, err := cache.Load(ctx, *symbol, start, end)
	if err != nil {
		log.Fatalf("loading bars: %v", err)
	}
	if len(bars) == 0 {
		log.Fatalf("no bars for %s in [%s, %s]", *symbol, *startFlag, end.Format("2006-01-02"))
	}

	engineCfg := engine.DefaultConfig()
	engineCfg.InitialEquity = cfg.Backtest.InitialEquity
	engineCfg.PeriodsPerYear = cfg.Backtest.PeriodsPerYear
	engineCfg.RiskFreeRate = cfg.Backtest.RiskFreeRate

	runner := engine.NewRunner(engineCfg, strat, cfg.Backtest.Risk, cfg.Backtest.Broker, logger)
	res, err := runner.Run(ctx, bars)
	if err != nil {
		log.Fatalf("run error: %v", err)
	}

	if !*noArtifacts {
		writer := store.NewArtifactWriter(cfg.Storage.ArtifactDir)
		dir, err := writer.Write(strat.Name(), *symbol, params, res.Curve, res.Trades, res.Metrics)
		if err != nil {
			log.Fatalf("writing artifacts: %v", err)
		}
		logger.Info("artifacts written", "dir", dir)
	}

	logger.Info("run complete",
		"bars", len(bars),
		"orders", res.Orders,
		"fills", res.Fills,
		"trades", len(res.Trades),
		"rejections", len(res.Rejections),
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res.Metrics); err != nil {
		log.Fatalf("encoding metrics: %v", err)
	}
}
