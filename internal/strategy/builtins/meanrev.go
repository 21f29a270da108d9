package builtins

import (
	"fmt"
	"math"

	"aitrader/internal/domain"
	"aitrader/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*MeanReversion)(nil)

// MeanReversion buys stretched declines: it enters long when the close sits
// far enough below its rolling mean in z-score terms, and exits once the
// z-score recovers toward zero (or the statistic degenerates).
type MeanReversion struct {
	lookback int
	zEntry   float64
	zExit    float64
	atrLen   int
	atrMult  float64
}

// NewMeanReversion builds a MeanReversion from sweep parameters.
func NewMeanReversion(p strategy.Params) (strategy.Strategy, error) {
	m := &MeanReversion{
		lookback: p.Int("lookback", 20),
		zEntry:   p.Float("z_entry", -2.0),
		zExit:    p.Float("z_exit", -0.5),
		atrLen:   p.Int("atr_len", 14),
		atrMult:  p.Float("atr_mult", 2.0),
	}
	if m.lookback <= 1 || m.atrLen <= 0 {
		return nil, fmt.Errorf("mean_reversion: periods must be positive (lookback=%d atr_len=%d)", m.lookback, m.atrLen)
	}
	if m.zEntry >= m.zExit {
		return nil, fmt.Errorf("mean_reversion: z_entry %v must be below z_exit %v", m.zEntry, m.zExit)
	}
	return m, nil
}

// Name returns "mean_reversion".
func (m *MeanReversion) Name() string { return "mean_reversion" }

func (m *MeanReversion) Warmup() int {
	return maxInt(m.lookback, m.atrLen+1)
}

func (m *MeanReversion) Evaluate(window []domain.Bar, pos domain.Position) *domain.Intent {
	if len(window) < m.Warmup() {
		return nil
	}
	last := window[len(window)-1]
	closes := strategy.Closes(window)
	z := strategy.ZScore(closes, m.lookback)

	if pos.Qty > 0 {
		if math.IsNaN(z) || z >= m.zExit {
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

	if math.IsNaN(z) || z > m.zEntry {
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
