package data

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"aitrader/internal/domain"
	"aitrader/internal/store"
	"aitrader/internal/util"
)

// Fetcher pulls daily OHLCV history for a configured symbol list from the
// Alpaca market-data API and writes it into the Parquet store. Fetches are
// batched per API call and rate limited; transient failures retry with
// backoff.
type Fetcher struct {
	client    *marketdata.Client
	store     store.BarStore
	batchSize int
	limiter   *util.RateLimiter
	log       *slog.Logger
}

// NewFetcher creates a Fetcher with the given Alpaca credentials and target
// store. batchSize caps the symbols per API call; ratePerMin caps API calls
// per minute (0 disables limiting).
func NewFetcher(apiKey, apiSecret, dataURL string, s store.BarStore, batchSize, ratePerMin int, log *slog.Logger) *Fetcher {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if log == nil {
		log = slog.Default()
	}
	var limiter *util.RateLimiter
	if ratePerMin > 0 {
		limiter = util.NewRateLimiter(ratePerMin)
	}
	return &Fetcher{
		client:    marketdata.NewClient(opts),
		store:     s,
		batchSize: batchSize,
		limiter:   limiter,
		log:       log.With("component", "fetcher"),
	}
}

// Fetch downloads daily bars for the symbols over [start, end] and persists
// them. It returns the total bar count written.
func (f *Fetcher) Fetch(ctx context.Context, symbols []string, start, end time.Time) (int, error) {
	total := 0
	runStart := time.Now()

	for i := 0; i < len(symbols); i += f.batchSize {
		batch := symbols[i:min(i+f.batchSize, len(symbols))]

		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return total, err
			}
		}

		var bars []domain.Bar
		err := util.Retry(ctx, 3, time.Second, func() error {
			var err error
			bars, err = f.fetchMultiBars(ctx, batch, start, end)
			return err
		})
		if err != nil {
			return total, fmt.Errorf("fetching batch starting at %s: %w", batch[0], err)
		}

		if len(bars) > 0 {
			if err := f.store.WriteBars(ctx, bars); err != nil {
				return total, fmt.Errorf("writing bars: %w", err)
			}
		}
		total += len(bars)
		f.log.Info("batch done",
			"symbols", len(batch),
			"bars", len(bars),
			"elapsed", time.Since(runStart).Round(time.Second),
		)
	}
	return total, nil
}

// fetchMultiBars fetches daily bars for multiple symbols in a single API call.
func (f *Fetcher) fetchMultiBars(ctx context.Context, symbols []string, start, end time.Time) ([]domain.Bar, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	multiBars, err := f.client.GetMultiBars(symbols, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
		Feed:      "sip",
	})
	if err != nil {
		return nil, fmt.Errorf("GetMultiBars: %w", err)
	}

	var bars []domain.Bar
	for symbol, alpacaBars := range multiBars {
		for _, ab := range alpacaBars {
			bars = append(bars, domain.Bar{
				Symbol:     strings.ToUpper(symbol),
				Timestamp:  ab.Timestamp,
				Open:       ab.Open,
				High:       ab.High,
				Low:        ab.Low,
				Close:      ab.Close,
				Volume:     int64(ab.Volume),
				TradeCount: int64(ab.TradeCount),
				VWAP:       ab.VWAP,
			})
		}
	}
	return bars, nil
}
