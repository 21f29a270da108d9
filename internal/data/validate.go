// Package data loads, validates, and caches bar series for backtest runs,
// and fetches history from the Alpaca market-data API.
package data

import (
	"fmt"

	"aitrader/internal/domain"
)

// ValidateBars checks a bar series before it feeds a run: timestamps must be
// strictly increasing (no duplicates, no regressions), prices must be
// positive, and each bar's high/low must bound its open and close. The first
// violation aborts the load with a *domain.DataError.
func ValidateBars(bars []domain.Bar) error {
	for i, b := range bars {
		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return &domain.DataError{
				Symbol: b.Symbol, Index: i,
				Reason: fmt.Sprintf("non-positive price at %s", b.Timestamp.Format("2006-01-02")),
			}
		}
		if b.High < b.Low || b.Open > b.High || b.Open < b.Low || b.Close > b.High || b.Close < b.Low {
			return &domain.DataError{
				Symbol: b.Symbol, Index: i,
				Reason: fmt.Sprintf("OHLC bounds violated at %s", b.Timestamp.Format("2006-01-02")),
			}
		}
		if b.Volume < 0 {
			return &domain.DataError{
				Symbol: b.Symbol, Index: i,
				Reason: fmt.Sprintf("negative volume at %s", b.Timestamp.Format("2006-01-02")),
			}
		}
		if i > 0 && !bars[i-1].Timestamp.Before(b.Timestamp) {
			return &domain.DataError{
				Symbol: b.Symbol, Index: i,
				Reason: fmt.Sprintf("timestamps not strictly increasing at %s", b.Timestamp.Format("2006-01-02")),
			}
		}
	}
	return nil
}
