// Package metrics derives summary statistics from an equity curve and a
// trade ledger. Compute is a pure function: same inputs, same outputs, no
// dependence on anything but the time-ordered series.
package metrics

import (
	"math"

	"aitrader/internal/domain"
)

// Options control annualization and the risk-free baseline.
type Options struct {
	PeriodsPerYear int     // 252 for daily bars
	RiskFreeRate   float64 // annual rate subtracted before Sharpe/Sortino
}

// DefaultOptions returns the daily-bar defaults.
func DefaultOptions() Options {
	return Options{PeriodsPerYear: 252}
}

// Compute derives a MetricsSummary from the equity curve and closed trades.
func Compute(curve []domain.EquityPoint, trades []domain.Trade, opts Options) *domain.MetricsSummary {
	if opts.PeriodsPerYear <= 0 {
		opts.PeriodsPerYear = 252
	}

	m := &domain.MetricsSummary{}
	equityStats(m, curve, opts)
	tradeStats(m, trades)
	return m
}

func equityStats(m *domain.MetricsSummary, curve []domain.EquityPoint, opts Options) {
	if len(curve) == 0 {
		return
	}
	m.Start = curve[0].Timestamp
	m.End = curve[len(curve)-1].Timestamp
	m.Periods = len(curve)

	rets := toReturns(curve)
	rfPerPeriod := opts.RiskFreeRate / float64(opts.PeriodsPerYear)
	if rfPerPeriod != 0 {
		for i := range rets {
			rets[i] -= rfPerPeriod
		}
	}

	mean := meanOf(rets)
	std := stddev(rets, mean)
	annFactor := math.Sqrt(float64(opts.PeriodsPerYear))
	annMean := mean * float64(opts.PeriodsPerYear)
	annStd := std * annFactor
	m.Vol = annStd
	if annStd > 0 {
		m.Sharpe = annMean / annStd
	}

	var neg []float64
	for _, r := range rets {
		if r < 0 {
			neg = append(neg, r)
		}
	}
	downside := stddev(neg, meanOf(neg))
	if downside > 0 {
		m.Sortino = annMean / (downside * annFactor)
	}

	m.MaxDrawdown, m.MaxDDLen = drawdown(curve)

	first, last := curve[0].Equity, curve[len(curve)-1].Equity
	if first > 0 {
		m.TotalReturn = last/first - 1
	}
	m.CAGR = cagr(curve)
	if m.MaxDrawdown < 0 {
		mar := m.CAGR / math.Abs(m.MaxDrawdown)
		m.MAR = math.Min(mar, 100)
	}
}

func tradeStats(m *domain.MetricsSummary, trades []domain.Trade) {
	if len(trades) == 0 {
		return
	}
	m.NTrades = len(trades)

	var wins, losses []float64
	best := math.Inf(-1)
	worst := math.Inf(1)
	sum := 0.0
	for _, tr := range trades {
		sum += tr.PnL
		best = math.Max(best, tr.PnL)
		worst = math.Min(worst, tr.PnL)
		if tr.PnL > 0 {
			wins = append(wins, tr.PnL)
		} else {
			losses = append(losses, tr.PnL)
		}
	}

	n := float64(len(trades))
	m.WinRate = float64(len(wins)) / n
	m.AvgPnL = sum / n
	m.Best = best
	m.Worst = worst
	m.AvgWin = meanOf(wins)
	m.AvgLoss = meanOf(losses)
	for _, w := range wins {
		m.GrossProfit += w
	}
	for _, l := range losses {
		m.GrossLoss += l
	}
	if m.AvgWin > 0 && m.AvgLoss < 0 {
		m.Payoff = m.AvgWin / math.Abs(m.AvgLoss)
	}
	m.Expectancy = m.WinRate*m.AvgWin + (1-m.WinRate)*m.AvgLoss
}

// toReturns converts the equity curve into per-period simple returns. The
// first period has no predecessor and contributes a zero return, so an
// n-point curve yields n samples for the mean and deviation.
func toReturns(curve []domain.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	rets := make([]float64, 0, len(curve))
	rets = append(rets, 0)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev <= 0 {
			rets = append(rets, 0)
			continue
		}
		r := curve[i].Equity/prev - 1
		if math.IsInf(r, 0) || math.IsNaN(r) {
			r = 0
		}
		rets = append(rets, r)
	}
	return rets
}

// drawdown returns the minimum of (equity - peak)/peak and the longest
// consecutive run of underwater periods.
func drawdown(curve []domain.EquityPoint) (float64, int) {
	peak := math.Inf(-1)
	maxDD := 0.0
	run, maxRun := 0, 0
	for _, pt := range curve {
		if pt.Equity > peak {
			peak = pt.Equity
		}
		dd := 0.0
		if peak > 0 {
			dd = pt.Equity/peak - 1
		}
		if dd < maxDD {
			maxDD = dd
		}
		if dd < 0 {
			run++
			if run > maxRun {
				maxRun = run
			}
		} else {
			run = 0
		}
	}
	return maxDD, maxRun
}

func cagr(curve []domain.EquityPoint) float64 {
	if len(curve) < 2 {
		return 0
	}
	start, end := curve[0], curve[len(curve)-1]
	if start.Equity <= 0 {
		return 0
	}
	years := end.Timestamp.Sub(start.Timestamp).Hours() / (24 * 365.25)
	years = math.Max(0.25, years)
	return math.Pow(end.Equity/start.Equity, 1/years) - 1
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the population standard deviation (ddof=0).
func stddev(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}
