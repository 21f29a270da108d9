package builtins

import (
	"fmt"
	"math"

	"aitrader/internal/domain"
	"aitrader/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*SMACross)(nil)

// SMACross is the classic moving-average crossover: enter long when the fast
// SMA crosses above the slow SMA, exit when it crosses back below.
type SMACross struct {
	fast    int
	slow    int
	atrLen  int
	atrMult float64
}

// NewSMACross builds an SMACross from sweep parameters.
func NewSMACross(p strategy.Params) (strategy.Strategy, error) {
	s := &SMACross{
		fast:    p.Int("fast", 10),
		slow:    p.Int("slow", 30),
		atrLen:  p.Int("atr_len", 14),
		atrMult: p.Float("atr_mult", 2.0),
	}
	if s.fast <= 0 || s.slow <= 0 || s.atrLen <= 0 {
		return nil, fmt.Errorf("sma_cross: periods must be positive (fast=%d slow=%d atr_len=%d)", s.fast, s.slow, s.atrLen)
	}
	if s.fast >= s.slow {
		return nil, fmt.Errorf("sma_cross: fast %d must be below slow %d", s.fast, s.slow)
	}
	return s, nil
}

// Name returns "sma_cross".
func (s *SMACross) Name() string { return "sma_cross" }

// Warmup needs one extra bar so the crossover can compare against the prior
// bar's averages.
func (s *SMACross) Warmup() int {
	return maxInt(s.slow+1, s.atrLen+1)
}

func (s *SMACross) Evaluate(window []domain.Bar, pos domain.Position) *domain.Intent {
	if len(window) < s.Warmup() {
		return nil
	}
	last := window[len(window)-1]
	closes := strategy.Closes(window)
	prev := closes[:len(closes)-1]

	fastNow, slowNow := strategy.SMA(closes, s.fast), strategy.SMA(closes, s.slow)
	fastPrev, slowPrev := strategy.SMA(prev, s.fast), strategy.SMA(prev, s.slow)
	if math.IsNaN(fastPrev) || math.IsNaN(slowPrev) {
		return nil
	}

	crossUp := fastNow > slowNow && fastPrev <= slowPrev
	crossDown := fastNow < slowNow && fastPrev >= slowPrev

	if pos.Qty > 0 {
		if crossDown {
			return &domain.Intent{
				Symbol:    last.Symbol,
				Action:    domain.IntentExit,
				Direction: domain.DirectionLong,
				Timestamp: last.Timestamp,
			}
		}
		return nil
	}
	if pos.Qty != 0 || !crossUp {
		return nil
	}

	atr := strategy.ATR(window, s.atrLen)
	if math.IsNaN(atr) {
		return nil
	}
	return &domain.Intent{
		Symbol:    last.Symbol,
		Action:    domain.IntentEnter,
		Direction: domain.DirectionLong,
		StopPrice: last.Close - s.atrMult*atr,
		Timestamp: last.Timestamp,
	}
}
