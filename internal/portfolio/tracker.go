// Package portfolio applies fills to the run's positions, marks equity to
// market every bar, and emits closed-trade records.
package portfolio

import (
	"math"
	"time"

	"aitrader/internal/domain"
)

// Tracker owns the run's position and equity state. It is single-writer by
// construction: one tracker per pipeline, never shared between runs.
type Tracker struct {
	initial float64
	cash    float64
	pos     domain.Position
	peak    float64

	// round-trip accumulators for the open position
	entryQty      float64
	entryNotional float64
	exitQty       float64
	exitNotional  float64
	tripFees      float64
	tripRealized  float64
	entryTime     time.Time
	entryBar      int

	barCount int
	curve    []domain.EquityPoint
	trades   []domain.Trade
}

// NewTracker creates a Tracker starting with the given capital.
func NewTracker(symbol string, initialEquity float64) *Tracker {
	return &Tracker{
		initial: initialEquity,
		cash:    initialEquity,
		peak:    initialEquity,
		pos: domain.Position{
			Symbol: symbol,
			State:  domain.PositionFlat,
		},
	}
}

// Position returns a copy of the current position.
func (t *Tracker) Position() domain.Position { return t.pos }

// Equity returns cash plus the marked value of the open position.
func (t *Tracker) Equity(lastPrice float64) float64 {
	return t.cash + t.pos.Qty*lastPrice
}

// Cash returns the current cash balance.
func (t *Tracker) Cash() float64 { return t.cash }

// Curve returns the accumulated equity curve.
func (t *Tracker) Curve() []domain.EquityPoint { return t.curve }

// Trades returns the closed round-trips recorded so far.
func (t *Tracker) Trades() []domain.Trade { return t.trades }

// Apply folds a fill into the position. Realized PnL locks in on any fill
// that reduces |qty|; a Trade record is emitted exactly when qty returns to
// zero. The returned trade is nil unless this fill closed the position.
func (t *Tracker) Apply(fill domain.Fill) (domain.Position, *domain.Trade) {
	signed := fill.Qty
	if fill.Side == domain.OrderSideSell {
		signed = -fill.Qty
	}

	prior := t.pos.Qty
	next := prior + signed
	t.cash -= signed * fill.Price
	t.cash -= fill.Fee

	var trade *domain.Trade

	switch {
	case prior == 0:
		// Opening fill: Flat -> Long|Short.
		t.openTrip(fill, signed, fill.Fee)

	case sameSign(prior, signed):
		// Same-direction add: recompute the weighted average price.
		absPrior := math.Abs(prior)
		t.pos.AvgPrice = (absPrior*t.pos.AvgPrice + fill.Qty*fill.Price) / (absPrior + fill.Qty)
		t.entryQty += fill.Qty
		t.entryNotional += fill.Qty * fill.Price
		t.tripFees += fill.Fee

	default:
		// Reducing, closing, or crossing fill.
		closed := math.Min(fill.Qty, math.Abs(prior))
		dir := 1.0
		if prior < 0 {
			dir = -1.0
		}
		realized := (fill.Price - t.pos.AvgPrice) * closed * dir
		t.pos.RealizedPnL += realized
		t.tripRealized += realized
		t.exitQty += closed
		t.exitNotional += closed * fill.Price

		// A crossing fill's fee splits by quantity between the trip it
		// closes and the one it opens.
		feeClosed := fill.Fee
		if next != 0 && !sameSign(prior, next) && fill.Qty > 0 {
			feeClosed = fill.Fee * closed / fill.Qty
		}
		t.tripFees += feeClosed

		if next == 0 || !sameSign(prior, next) {
			trade = t.closeTrip(fill)
		}
		if next != 0 && !sameSign(prior, next) {
			// Crossing through zero opens a fresh position with the excess.
			t.openTrip(fill, next, fill.Fee-feeClosed)
		}
	}

	t.pos.Qty = next
	t.updateState(fill, prior, next)
	return t.pos, trade
}

// Mark records an equity point for the bar, computed every bar regardless of
// fills, using the close for unrealized PnL.
func (t *Tracker) Mark(b domain.Bar) domain.EquityPoint {
	t.barCount++
	t.pos.UnrealizedPnL = (b.Close - t.pos.AvgPrice) * t.pos.Qty

	equity := t.Equity(b.Close)
	if equity > t.peak {
		t.peak = equity
	}
	dd := 0.0
	if t.peak > 0 {
		dd = (equity - t.peak) / t.peak
	}
	pt := domain.EquityPoint{Timestamp: b.Timestamp, Equity: equity, Drawdown: dd}
	t.curve = append(t.curve, pt)
	return pt
}

func (t *Tracker) openTrip(fill domain.Fill, signedQty, fee float64) {
	t.entryQty = math.Abs(signedQty)
	t.entryNotional = math.Abs(signedQty) * fill.Price
	t.exitQty = 0
	t.exitNotional = 0
	t.tripRealized = 0
	t.tripFees = fee
	t.entryTime = fill.Timestamp
	t.entryBar = t.barCount
	t.pos.AvgPrice = fill.Price
	t.pos.OpenedAt = fill.Timestamp
}

func (t *Tracker) closeTrip(fill domain.Fill) *domain.Trade {
	dir := domain.DirectionLong
	if t.pos.Qty < 0 {
		dir = domain.DirectionShort
	}
	entryPx := 0.0
	if t.entryQty > 0 {
		entryPx = t.entryNotional / t.entryQty
	}
	exitPx := 0.0
	if t.exitQty > 0 {
		exitPx = t.exitNotional / t.exitQty
	}
	tr := domain.Trade{
		Symbol:     t.pos.Symbol,
		Direction:  dir,
		Qty:        t.exitQty,
		EntryTime:  t.entryTime,
		ExitTime:   fill.Timestamp,
		EntryPrice: entryPx,
		ExitPrice:  exitPx,
		PnL:        t.tripRealized,
		Fees:       t.tripFees,
		BarsHeld:   t.barCount - t.entryBar,
		ExitReason: exitReason(fill.Reason),
	}
	t.trades = append(t.trades, tr)
	return &tr
}

// updateState drives the position state machine. Transitions happen only on
// fills: Flat -> Long|Short on an opening fill, back to Flat on a closing
// fill, passing through Stopped or TakeProfit when the closing fill came
// from a protective order.
func (t *Tracker) updateState(fill domain.Fill, prior, next float64) {
	switch {
	case next > 0:
		t.pos.State = domain.PositionLong
	case next < 0:
		t.pos.State = domain.PositionShort
	default:
		// Closed out. Stop and take-profit closes surface their variant
		// before settling flat; AvgPrice is cleared with the position.
		switch fill.Reason {
		case domain.ReasonStopLoss:
			t.pos.State = domain.PositionStopped
		case domain.ReasonTakeProfit:
			t.pos.State = domain.PositionTakeProfit
		default:
			t.pos.State = domain.PositionFlat
		}
		t.pos.AvgPrice = 0
	}
	if prior == 0 && next == 0 {
		t.pos.State = domain.PositionFlat
	}
}

// Settle returns the position state to Flat after a Stopped or TakeProfit
// close has been observed by the caller.
func (t *Tracker) Settle() {
	if t.pos.Qty == 0 {
		t.pos.State = domain.PositionFlat
	}
}

func exitReason(r domain.OrderReason) string {
	switch r {
	case domain.ReasonStopLoss:
		return "STOP"
	case domain.ReasonTakeProfit:
		return "TP"
	default:
		return "EXIT"
	}
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
