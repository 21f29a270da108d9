package data

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"aitrader/internal/domain"
)

func series(start time.Time, closes ...float64) []domain.Bar {
	out := make([]domain.Bar, len(closes))
	for i, c := range closes {
		out[i] = domain.Bar{
			Symbol: "AAPL", Timestamp: start.AddDate(0, 0, i),
			Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000,
		}
	}
	return out
}

func TestValidateBars(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	t.Run("valid series passes", func(t *testing.T) {
		if err := ValidateBars(series(start, 100, 101, 102)); err != nil {
			t.Errorf("ValidateBars: %v", err)
		}
	})

	t.Run("empty series passes", func(t *testing.T) {
		if err := ValidateBars(nil); err != nil {
			t.Errorf("ValidateBars(nil): %v", err)
		}
	})

	t.Run("duplicate timestamp fails", func(t *testing.T) {
		bars := series(start, 100, 101)
		bars[1].Timestamp = bars[0].Timestamp
		assertDataError(t, ValidateBars(bars), 1)
	})

	t.Run("regressing timestamp fails", func(t *testing.T) {
		bars := series(start, 100, 101, 102)
		bars[2].Timestamp = start.AddDate(0, 0, -1)
		assertDataError(t, ValidateBars(bars), 2)
	})

	t.Run("non-positive price fails", func(t *testing.T) {
		bars := series(start, 100, 101)
		bars[1].Close = 0
		bars[1].Low = -1
		assertDataError(t, ValidateBars(bars), 1)
	})

	t.Run("high below low fails", func(t *testing.T) {
		bars := series(start, 100)
		bars[0].High = 98
		assertDataError(t, ValidateBars(bars), 0)
	})

	t.Run("close outside range fails", func(t *testing.T) {
		bars := series(start, 100)
		bars[0].Close = 200
		assertDataError(t, ValidateBars(bars), 0)
	})
}

func assertDataError(t *testing.T, err error, wantIndex int) {
	t.Helper()
	var de *domain.DataError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want *domain.DataError", err)
	}
	if de.Index != wantIndex {
		t.Errorf("error index = %d, want %d", de.Index, wantIndex)
	}
}

// fakeStore counts reads so the cache's load-once behavior is observable.
type fakeStore struct {
	bars  []domain.Bar
	err   error
	reads atomic.Int64
}

func (f *fakeStore) WriteBars(context.Context, []domain.Bar) error { return nil }
func (f *fakeStore) ListSymbols(context.Context) ([]string, error) { return nil, nil }
func (f *fakeStore) ReadBars(_ context.Context, _ string, _, _ time.Time) ([]domain.Bar, error) {
	f.reads.Add(1)
	return f.bars, f.err
}

func TestCacheLoadsOnce(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	fs := &fakeStore{bars: series(start, 100, 101, 102)}
	c := NewCache(fs)
	ctx := context.Background()

	end := start.AddDate(0, 0, 2)
	first, err := c.Load(ctx, "AAPL", start, end)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := c.Load(ctx, "AAPL", start, end)
	if err != nil {
		t.Fatalf("Load (cached): %v", err)
	}
	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("lengths = %d/%d, want 3/3", len(first), len(second))
	}
	if fs.reads.Load() != 1 {
		t.Errorf("store reads = %d, want 1", fs.reads.Load())
	}

	// A different range is a different cache entry.
	if _, err := c.Load(ctx, "AAPL", start, start.AddDate(0, 0, 1)); err != nil {
		t.Fatalf("Load (new range): %v", err)
	}
	if fs.reads.Load() != 2 {
		t.Errorf("store reads = %d, want 2", fs.reads.Load())
	}
}

func TestCacheRejectsInvalidSeries(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bad := series(start, 100, 101)
	bad[1].Timestamp = bad[0].Timestamp

	c := NewCache(&fakeStore{bars: bad})
	if _, err := c.Load(context.Background(), "AAPL", start, start.AddDate(0, 0, 1)); err == nil {
		t.Fatal("Load must fail validation for out-of-order bars")
	}
}

func TestCacheConcurrentLoads(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	fs := &fakeStore{bars: series(start, 100, 101, 102)}
	c := NewCache(fs)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bars, err := c.Load(context.Background(), "AAPL", start, start.AddDate(0, 0, 2))
			if err != nil || len(bars) != 3 {
				t.Errorf("concurrent Load = %d bars, %v", len(bars), err)
			}
		}()
	}
	wg.Wait()
}
