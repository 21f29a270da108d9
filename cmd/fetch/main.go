package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"aitrader/internal/config"
	"aitrader/internal/data"
	"aitrader/internal/store"
	"aitrader/internal/util"
)

func main() {
	symbolsFlag := flag.String("symbols", "", "comma-separated symbols (overrides config)")
	startFlag := flag.String("start", "", "start date YYYY-MM-DD (overrides config)")
	endFlag := flag.String("end", "", "end date YYYY-MM-DD (default today)")
	flag.Parse()

	cfgPath := "config/aitrader.yaml"
	if p := os.Getenv("AITRADER_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)

	symbols := cfg.Fetch.Symbols
	if *symbolsFlag != "" {
		symbols = strings.Split(*symbolsFlag, ",")
		for i := range symbols {
			symbols[i] = strings.TrimSpace(symbols[i])
		}
	}
	if len(symbols) == 0 {
		log.Fatal("no symbols: set fetch.symbols in config or pass -symbols")
	}

	startDate := cfg.Fetch.StartDate
	if *startFlag != "" {
		startDate = *startFlag
	}
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		log.Fatalf("invalid start date %q: %v", startDate, err)
	}
	end := time.Now().UTC().Truncate(24 * time.Hour)
	if *endFlag != "" {
		end, err = time.Parse("2006-01-02", *endFlag)
		if err != nil {
			log.Fatalf("invalid end date %q: %v", *endFlag, err)
		}
	}

	pstore := store.NewParquetStore(cfg.Storage.DataDir)
	fetcher := data.NewFetcher(
		cfg.Alpaca.APIKey,
		cfg.Alpaca.APISecret,
		cfg.Alpaca.DataURL,
		pstore,
		cfg.Fetch.BatchSize,
		cfg.Fetch.RateLimitPerMin,
		logger,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("fetching daily bars",
		"symbols", len(symbols),
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"),
	)
	n, err := fetcher.Fetch(ctx, symbols, start, end)
	if err != nil {
		log.Fatalf("fetch error: %v", err)
	}
	logger.Info("fetch complete", "bars", n)
}
