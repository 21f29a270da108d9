package metrics

import (
	"math"
	"testing"
	"time"

	"aitrader/internal/domain"
)

func curveOf(start time.Time, equities ...float64) []domain.EquityPoint {
	out := make([]domain.EquityPoint, len(equities))
	for i, e := range equities {
		out[i] = domain.EquityPoint{Timestamp: start.AddDate(0, 0, i), Equity: e}
	}
	return out
}

func TestComputeFlatCurve(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	curve := curveOf(start, 1000, 1000, 1000, 1000, 1000)

	m := Compute(curve, nil, DefaultOptions())
	if m.TotalReturn != 0 {
		t.Errorf("total return = %v, want 0", m.TotalReturn)
	}
	if m.Sharpe != 0 || m.Sortino != 0 || m.Vol != 0 {
		t.Errorf("flat curve must have zero vol-based metrics: %+v", m)
	}
	if m.MaxDrawdown != 0 || m.MaxDDLen != 0 {
		t.Errorf("flat curve must have zero drawdown: dd=%v len=%v", m.MaxDrawdown, m.MaxDDLen)
	}
	if m.NTrades != 0 {
		t.Errorf("n_trades = %d, want 0", m.NTrades)
	}
	if m.Periods != 5 {
		t.Errorf("periods = %d, want 5", m.Periods)
	}
}

func TestComputeEmptyInputs(t *testing.T) {
	m := Compute(nil, nil, DefaultOptions())
	if m == nil {
		t.Fatal("Compute must return a summary for empty inputs")
	}
	if m.Periods != 0 || m.NTrades != 0 || m.Sharpe != 0 {
		t.Errorf("empty inputs must produce zero summary: %+v", m)
	}
}

func TestDrawdownDepthAndLength(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	// Peak 1200, trough 900 (-25%), underwater for four periods before a new high.
	curve := curveOf(start, 1000, 1200, 1000, 900, 1000, 1100, 1300)

	m := Compute(curve, nil, DefaultOptions())
	if math.Abs(m.MaxDrawdown-(-0.25)) > 1e-9 {
		t.Errorf("max drawdown = %v, want -0.25", m.MaxDrawdown)
	}
	if m.MaxDDLen != 4 {
		t.Errorf("max drawdown length = %d, want 4", m.MaxDDLen)
	}
	if m.MaxDrawdown > 0 {
		t.Error("drawdown must be <= 0")
	}
}

func TestSharpeKnownSeries(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	// Returns alternate +1% / -1%+eps so mean and std are hand-computable.
	curve := curveOf(start, 1000, 1010, 1000, 1010, 1000)

	m := Compute(curve, nil, Options{PeriodsPerYear: 252})

	// returns: 0 (first period), .01, -0.00990..., .01, -0.00990...
	r1, r2 := 0.01, 1000.0/1010.0-1
	mean := (2*r1 + 2*r2) / 5
	variance := (mean*mean + 2*(r1-mean)*(r1-mean) + 2*(r2-mean)*(r2-mean)) / 5
	wantSharpe := mean * 252 / (math.Sqrt(variance) * math.Sqrt(252))
	if math.Abs(m.Sharpe-wantSharpe) > 1e-9 {
		t.Errorf("sharpe = %v, want %v", m.Sharpe, wantSharpe)
	}
	// Both negative periods have the same return, so downside deviation is
	// zero and sortino is left unset.
	if m.Sortino != 0 {
		t.Errorf("sortino = %v, want 0 for degenerate downside", m.Sortino)
	}
}

func TestVolCountsFirstPeriodAsZeroReturn(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	curve := curveOf(start, 1000, 1010)

	// Returns are {0, 0.01}: mean 0.005, population std 0.005.
	m := Compute(curve, nil, Options{PeriodsPerYear: 252})
	want := 0.005 * math.Sqrt(252)
	if math.Abs(m.Vol-want) > 1e-12 {
		t.Errorf("vol = %v, want %v", m.Vol, want)
	}
	if math.Abs(m.Sharpe-math.Sqrt(252)) > 1e-9 {
		t.Errorf("sharpe = %v, want %v", m.Sharpe, math.Sqrt(252))
	}
}

func TestSortinoUsesDownsideDeviationOnly(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	curve := curveOf(start, 1000, 1020, 1010, 1030, 1000, 1040)

	m := Compute(curve, nil, Options{PeriodsPerYear: 252})
	if m.Sortino <= m.Sharpe {
		t.Errorf("sortino %v should exceed sharpe %v when downside vol < total vol", m.Sortino, m.Sharpe)
	}
}

func TestCAGRUsesElapsedTimeWithFloor(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	// One year, +10%.
	curve := []domain.EquityPoint{
		{Timestamp: start, Equity: 1000},
		{Timestamp: start.AddDate(1, 0, 0), Equity: 1100},
	}
	m := Compute(curve, nil, DefaultOptions())
	if math.Abs(m.CAGR-0.10) > 0.002 {
		t.Errorf("one-year CAGR = %v, want ~0.10", m.CAGR)
	}

	// Ten days, +10%: elapsed-time floor of a quarter year keeps the
	// annualization from exploding.
	short := []domain.EquityPoint{
		{Timestamp: start, Equity: 1000},
		{Timestamp: start.AddDate(0, 0, 10), Equity: 1100},
	}
	m = Compute(short, nil, DefaultOptions())
	want := math.Pow(1.1, 1/0.25) - 1
	if math.Abs(m.CAGR-want) > 1e-9 {
		t.Errorf("short-run CAGR = %v, want %v (0.25y floor)", m.CAGR, want)
	}
}

func TestMARIsCapped(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	// Huge gain with a microscopic dip: raw CAGR/|dd| would exceed the cap.
	curve := []domain.EquityPoint{
		{Timestamp: start, Equity: 1000},
		{Timestamp: start.AddDate(0, 0, 1), Equity: 999.99},
		{Timestamp: start.AddDate(0, 0, 2), Equity: 5000},
	}
	m := Compute(curve, nil, DefaultOptions())
	if m.MAR != 100 {
		t.Errorf("MAR = %v, want capped at 100", m.MAR)
	}
}

func TestTradeStats(t *testing.T) {
	trades := []domain.Trade{
		{PnL: 100}, {PnL: 200}, {PnL: -50}, {PnL: -150},
	}
	m := Compute(nil, trades, DefaultOptions())

	if m.NTrades != 4 {
		t.Fatalf("n_trades = %d, want 4", m.NTrades)
	}
	if math.Abs(m.WinRate-0.5) > 1e-9 {
		t.Errorf("win rate = %v, want 0.5", m.WinRate)
	}
	if math.Abs(m.AvgWin-150) > 1e-9 || math.Abs(m.AvgLoss-(-100)) > 1e-9 {
		t.Errorf("avg win/loss = %v/%v, want 150/-100", m.AvgWin, m.AvgLoss)
	}
	if math.Abs(m.Payoff-1.5) > 1e-9 {
		t.Errorf("payoff = %v, want 1.5", m.Payoff)
	}
	// Expectancy = 0.5*150 + 0.5*(-100) = 25 = average PnL.
	if math.Abs(m.Expectancy-25) > 1e-9 || math.Abs(m.AvgPnL-25) > 1e-9 {
		t.Errorf("expectancy=%v avg=%v, want 25/25", m.Expectancy, m.AvgPnL)
	}
	if m.Best != 200 || m.Worst != -150 {
		t.Errorf("best/worst = %v/%v, want 200/-150", m.Best, m.Worst)
	}
	if math.Abs(m.GrossProfit-300) > 1e-9 || math.Abs(m.GrossLoss-(-200)) > 1e-9 {
		t.Errorf("gross profit/loss = %v/%v, want 300/-200", m.GrossProfit, m.GrossLoss)
	}
}

func TestRiskFreeRateReducesSharpe(t *testing.T) {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	curve := curveOf(start, 1000, 1005, 1008, 1015, 1018, 1025)

	base := Compute(curve, nil, Options{PeriodsPerYear: 252})
	withRF := Compute(curve, nil, Options{PeriodsPerYear: 252, RiskFreeRate: 0.05})
	if withRF.Sharpe >= base.Sharpe {
		t.Errorf("sharpe with rf %v should be below %v", withRF.Sharpe, base.Sharpe)
	}
}
