package builtins

import (
	"fmt"
	"math"

	"aitrader/internal/domain"
	"aitrader/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*Momentum)(nil)

// Momentum is long-only rate-of-change momentum with an EMA trend filter and
// a percentile-rank gate: price must sit in the top tail of its recent range
// before an entry is considered.
type Momentum struct {
	rocLookback int
	emaFast     int
	rankWindow  int
	minRank     float64
	minROC      float64
	atrLen      int
	atrMult     float64
}

// NewMomentum builds a Momentum from sweep parameters.
func NewMomentum(p strategy.Params) (strategy.Strategy, error) {
	m := &Momentum{
		rocLookback: p.Int("roc_lookback", 60),
		emaFast:     p.Int("ema_fast", 50),
		rankWindow:  p.Int("rank_window", 100),
		minRank:     p.Float("min_rank", 0.80),
		minROC:      p.Float("min_roc", 0.0),
		atrLen:      p.Int("atr_len", 14),
		atrMult:     p.Float("atr_mult", 3.0),
	}
	if m.rocLookback <= 0 || m.emaFast <= 0 || m.rankWindow <= 0 || m.atrLen <= 0 {
		return nil, fmt.Errorf("momentum: periods must be positive")
	}
	if m.minRank < 0 || m.minRank > 1 {
		return nil, fmt.Errorf("momentum: min_rank must be in [0,1], got %v", m.minRank)
	}
	return m, nil
}

// Name returns "momentum".
func (m *Momentum) Name() string { return "momentum" }

func (m *Momentum) Warmup() int {
	return maxInt(m.rocLookback+1, m.emaFast, m.rankWindow, m.atrLen+1)
}

// Evaluate enters when momentum, rank, and trend all line up; exits when the
// trend breaks or momentum fades below the entry threshold.
func (m *Momentum) Evaluate(window []domain.Bar, pos domain.Position) *domain.Intent {
	if len(window) < m.Warmup() {
		return nil
	}
	last := window[len(window)-1]
	closes := strategy.Closes(window)
	ema := strategy.EMA(closes, m.emaFast)
	roc := strategy.ROC(closes, m.rocLookback)

	if pos.Qty > 0 {
		if last.Close < ema || roc < m.minROC || math.IsNaN(roc) {
			return &domain.Intent{
				Symbol:    last.Symbol,
				Action:    domain.IntentExit,
				Direction: domain.DirectionLong,
				Timestamp: last.Timestamp,
			}
		}
		return nil
	}
	if pos.Qty != 0 {
		return nil
	}

	rank := strategy.PercentileRank(closes, m.rankWindow)
	if math.IsNaN(roc) || math.IsNaN(rank) {
		return nil
	}
	if last.Close <= ema || roc < m.minROC || rank < m.minRank {
		return nil
	}

	atr := strategy.ATR(window, m.atrLen)
	if math.IsNaN(atr) {
		return nil
	}
	return &domain.Intent{
		Symbol:    last.Symbol,
		Action:    domain.IntentEnter,
		Direction: domain.DirectionLong,
		StopPrice: last.Close - m.atrMult*atr,
		Timestamp: last.Timestamp,
	}
}
