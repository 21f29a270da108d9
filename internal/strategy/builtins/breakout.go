// Package builtins provides the built-in strategy implementations and
// registers them by name.
package builtins

import (
	"fmt"
	"math"

	"aitrader/internal/domain"
	"aitrader/internal/strategy"
)

// Compile-time interface check.
var _ strategy.Strategy = (*Breakout)(nil)

// Breakout is a long-only channel breakout with an EMA trend filter. It
// enters when price trades through the prior N-bar channel (plus an optional
// buffer) while holding above the fast EMA, carries an ATR-multiple stop, and
// exits when price closes back below the EMA. The channel builds from highs
// by default and from closes with use_close_for_breakout; confirm_with_high
// chooses whether the wick or the close must clear it.
type Breakout struct {
	lookback    int
	emaFast     int
	atrLen      int
	atrMult     float64
	bufferPct   float64
	useEMA      bool
	confirmHigh bool
	closeChan   bool
}

// NewBreakout builds a Breakout from sweep parameters.
func NewBreakout(p strategy.Params) (strategy.Strategy, error) {
	b := &Breakout{
		lookback:    p.Int("lookback", 20),
		emaFast:     p.Int("ema_fast", 20),
		atrLen:      p.Int("atr_len", 14),
		atrMult:     p.Float("atr_mult", 2.0),
		bufferPct:   p.Float("breakout_buffer_pct", 0),
		useEMA:      p.Bool("use_ema_filter", true),
		confirmHigh: p.Bool("confirm_with_high", true),
		closeChan:   p.Bool("use_close_for_breakout", false),
	}
	if b.lookback <= 0 || b.emaFast <= 0 || b.atrLen <= 0 {
		return nil, fmt.Errorf("breakout: periods must be positive (lookback=%d ema_fast=%d atr_len=%d)", b.lookback, b.emaFast, b.atrLen)
	}
	if b.atrMult <= 0 {
		return nil, fmt.Errorf("breakout: atr_mult must be positive, got %v", b.atrMult)
	}
	return b, nil
}

// Name returns "breakout".
func (b *Breakout) Name() string { return "breakout" }

// Warmup covers the breakout channel (plus the excluded current bar), the
// EMA, and the ATR's previous-close requirement.
func (b *Breakout) Warmup() int {
	return maxInt(b.lookback+1, b.emaFast, b.atrLen+1)
}

// Evaluate emits an entry when the confirmation price clears the prior
// channel while the trend filter holds, and an exit when the close drops
// below the EMA.
func (b *Breakout) Evaluate(window []domain.Bar, pos domain.Position) *domain.Intent {
	if len(window) < b.Warmup() {
		return nil
	}
	last := window[len(window)-1]
	closes := strategy.Closes(window)
	ema := strategy.EMA(closes, b.emaFast)

	if pos.Qty > 0 {
		if b.useEMA && last.Close < ema {
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

	hh := strategy.HighestHigh(window, b.lookback, 1)
	if b.closeChan {
		hh = strategy.HighestClose(window, b.lookback, 1)
	}
	if math.IsNaN(hh) {
		return nil
	}
	ref := last.High
	if !b.confirmHigh {
		ref = last.Close
	}
	trigger := ref >= hh*(1+b.bufferPct)
	trendOK := !b.useEMA || last.Close > ema
	if !trigger || !trendOK {
		return nil
	}

	atr := strategy.ATR(window, b.atrLen)
	if math.IsNaN(atr) {
		return nil
	}
	return &domain.Intent{
		Symbol:    last.Symbol,
		Action:    domain.IntentEnter,
		Direction: domain.DirectionLong,
		StopPrice: last.Close - b.atrMult*atr,
		Timestamp: last.Timestamp,
	}
}

func maxInt(xs ...int) int {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
