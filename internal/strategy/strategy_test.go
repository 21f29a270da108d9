package strategy

import (
	"math"
	"testing"
	"time"

	"aitrader/internal/domain"
)

func TestParamsAccessorsNormalizeNumericTypes(t *testing.T) {
	p := Params{
		"a": 5,
		"b": int64(7),
		"c": 2.5,
		"d": true,
		"e": "close",
	}
	if p.Int("a", 0) != 5 || p.Int("b", 0) != 7 || p.Int("c", 0) != 2 {
		t.Errorf("Int accessor: %d %d %d", p.Int("a", 0), p.Int("b", 0), p.Int("c", 0))
	}
	if p.Float("a", 0) != 5.0 || p.Float("c", 0) != 2.5 {
		t.Errorf("Float accessor: %v %v", p.Float("a", 0), p.Float("c", 0))
	}
	if !p.Bool("d", false) || p.Bool("missing", true) != true {
		t.Error("Bool accessor")
	}
	if p.Str("e", "") != "close" || p.Str("missing", "x") != "x" {
		t.Error("Str accessor")
	}
}

type stub struct{ name string }

func (s *stub) Name() string { return s.name }
func (s *stub) Warmup() int  { return 1 }
func (s *stub) Evaluate([]domain.Bar, domain.Position) *domain.Intent {
	return nil
}

func TestRegistryLookupAndUnknownName(t *testing.T) {
	r := NewRegistry()
	r.Register("stub", func(Params) (Strategy, error) { return &stub{name: "stub"}, nil })

	s, err := r.New("stub", nil)
	if err != nil || s.Name() != "stub" {
		t.Fatalf("New(stub) = %v, %v", s, err)
	}
	if _, err := r.New("nope", nil); err == nil {
		t.Fatal("unknown strategy name must error at construction time")
	}
	if got := r.List(); len(got) != 1 || got[0] != "stub" {
		t.Errorf("List() = %v", got)
	}
}

func barsFromCloses(closes ...float64) []domain.Bar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Bar, len(closes))
	for i, c := range closes {
		out[i] = domain.Bar{
			Symbol: "AAPL", Timestamp: start.AddDate(0, 0, i),
			Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 1000,
		}
	}
	return out
}

func TestSMA(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	if got := SMA(xs, 3); math.Abs(got-4) > 1e-9 {
		t.Errorf("SMA = %v, want 4", got)
	}
	if !math.IsNaN(SMA(xs, 6)) {
		t.Error("SMA of short series must be NaN")
	}
}

func TestEMAConstantSeries(t *testing.T) {
	xs := []float64{5, 5, 5, 5, 5}
	if got := EMA(xs, 3); math.Abs(got-5) > 1e-9 {
		t.Errorf("EMA of constant series = %v, want 5", got)
	}
}

func TestATRConstantRange(t *testing.T) {
	// Every bar has High-Low = 2 and no gaps, so TR = 2 everywhere.
	bars := barsFromCloses(100, 100, 100, 100, 100)
	if got := ATR(bars, 3); math.Abs(got-2) > 1e-9 {
		t.Errorf("ATR = %v, want 2", got)
	}
	if !math.IsNaN(ATR(bars, 5)) {
		t.Error("ATR needs n+1 bars")
	}
}

func TestHighestHighExcludesCurrentBar(t *testing.T) {
	bars := barsFromCloses(10, 20, 30, 40)
	// skip=1: max High over the first three bars = 31.
	if got := HighestHigh(bars, 3, 1); math.Abs(got-31) > 1e-9 {
		t.Errorf("HighestHigh = %v, want 31", got)
	}
}

func TestROCAndRank(t *testing.T) {
	xs := []float64{100, 110, 121}
	if got := ROC(xs, 2); math.Abs(got-0.21) > 1e-9 {
		t.Errorf("ROC = %v, want 0.21", got)
	}
	// Last value is the max of the window: rank 1.0.
	if got := PercentileRank(xs, 3); got != 1.0 {
		t.Errorf("rank = %v, want 1.0", got)
	}
	if got := PercentileRank([]float64{3, 2, 1}, 3); math.Abs(got-1.0/3) > 1e-9 {
		t.Errorf("rank of minimum = %v, want 1/3", got)
	}
}

func TestZScore(t *testing.T) {
	// mean 3, population std sqrt(2); last value 5 -> z = sqrt(2).
	xs := []float64{1, 2, 3, 4, 5}
	if got := ZScore(xs, 5); math.Abs(got-math.Sqrt2) > 1e-9 {
		t.Errorf("z = %v, want sqrt(2)", got)
	}
	if !math.IsNaN(ZScore([]float64{5, 5, 5}, 3)) {
		t.Error("zero-deviation z-score must be NaN")
	}
}
