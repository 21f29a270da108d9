// Package engine drives a single backtest run: one strategy over one bar
// series, with risk sizing, simulated execution, and portfolio tracking.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"aitrader/internal/broker"
	"aitrader/internal/data"
	"aitrader/internal/domain"
	"aitrader/internal/metrics"
	"aitrader/internal/portfolio"
	"aitrader/internal/risk"
	"aitrader/internal/strategy"
	"aitrader/internal/util"
)

// Config holds the per-run engine settings.
type Config struct {
	InitialEquity  float64
	PeriodsPerYear int
	RiskFreeRate   float64
	ADVWindow      int // bars used for the average-daily-volume estimate
}

// DefaultConfig returns the engine defaults: $100k starting capital, daily
// annualization, and a 20-bar ADV window.
func DefaultConfig() Config {
	return Config{
		InitialEquity:  100_000,
		PeriodsPerYear: 252,
		ADVWindow:      20,
	}
}

// Result is everything one run produces.
type Result struct {
	Curve      []domain.EquityPoint
	Trades     []domain.Trade
	Metrics    *domain.MetricsSummary
	Rejections []domain.Rejection
	Orders     int // orders submitted to the simulator
	Fills      int
}

// Runner executes one backtest. It owns its sizer, simulator, and tracker,
// so concurrent runs never share mutable state. The loop is strictly
// sequential and consumes only data available at each step: orders placed on
// bar t match against bar t+1, which keeps replays bit-identical.
type Runner struct {
	cfg     Config
	strat   strategy.Strategy
	sizer   *risk.Sizer
	sim     *broker.Simulator
	tracker *portfolio.Tracker
	log     *slog.Logger

	// order bookkeeping for the open position
	entryOrderID string
	exitOrderID  string
	stopOrderID  string
	stopPrice    float64
	stopSeq      int
	exitSeq      int
}

// NewRunner creates a Runner from independent config copies. One Runner
// serves one run; create a fresh Runner per job.
func NewRunner(cfg Config, strat strategy.Strategy, riskCfg risk.Config, brokerCfg broker.Config, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	if cfg.InitialEquity <= 0 {
		cfg.InitialEquity = 100_000
	}
	if cfg.ADVWindow <= 0 {
		cfg.ADVWindow = 20
	}
	log = log.With("strategy", strat.Name())
	return &Runner{
		cfg:   cfg,
		strat: strat,
		sizer: risk.NewSizer(riskCfg, log),
		sim:   broker.NewSimulator(brokerCfg, log),
		log:   log,
	}
}

// Run replays the bar series through the pipeline. The series is validated
// up front; a malformed series aborts the run before any order is placed.
func (r *Runner) Run(ctx context.Context, bars []domain.Bar) (*Result, error) {
	if err := data.ValidateBars(bars); err != nil {
		return nil, err
	}
	res := &Result{}
	if len(bars) == 0 {
		res.Metrics = &domain.MetricsSummary{}
		return res, nil
	}

	symbol := bars[0].Symbol
	r.tracker = portfolio.NewTracker(symbol, r.cfg.InitialEquity)

	sessionKey := ""
	sessionStart := r.cfg.InitialEquity
	prevClose := bars[0].Open

	for i, bar := range bars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if key := util.SessionKey(bar.Timestamp); key != sessionKey {
			sessionKey = key
			sessionStart = r.tracker.Equity(prevClose)
		}

		// 1. Match resting orders against this bar.
		fills, expired := r.sim.Step(bar)
		for _, fill := range fills {
			res.Fills++
			_, trade := r.tracker.Apply(fill)
			if trade != nil {
				r.sizer.RecordTrade(trade.PnL > 0)
			}
		}
		for _, o := range expired {
			r.log.Debug("order expired", "order", o.ID, "filled", o.FilledQty, "qty", o.Qty)
		}
		r.pruneOrderIDs()

		// 2. Keep the protective stop in sync with the position.
		res.Orders += r.syncStop()

		// 3. Mark to market, every bar regardless of fills; then settle any
		// Stopped/TakeProfit state back to Flat.
		r.tracker.Mark(bar)
		r.tracker.Settle()

		// 4. Evaluate the strategy. Orders submitted here rest until the
		// next bar.
		if i+1 >= r.strat.Warmup() {
			if intent := r.strat.Evaluate(bars[:i+1], r.tracker.Position()); intent != nil {
				r.handleIntent(*intent, bars, i, sessionStart, res)
			}
		}

		prevClose = bar.Close
	}

	r.sim.CancelAll()

	res.Curve = r.tracker.Curve()
	res.Trades = r.tracker.Trades()
	res.Metrics = metrics.Compute(res.Curve, res.Trades, metrics.Options{
		PeriodsPerYear: r.cfg.PeriodsPerYear,
		RiskFreeRate:   r.cfg.RiskFreeRate,
	})
	return res, nil
}

// handleIntent sizes and submits the order (if any) for one intent.
func (r *Runner) handleIntent(intent domain.Intent, bars []domain.Bar, i int, sessionStart float64, res *Result) {
	bar := bars[i]
	pos := r.tracker.Position()

	switch intent.Action {
	case domain.IntentExit:
		// A resting exit already covers the position.
		if pos.Qty == 0 || r.exitOrderID != "" {
			return
		}
		side := domain.OrderSideSell
		if pos.Qty < 0 {
			side = domain.OrderSideBuy
		}
		r.exitSeq++
		order := &domain.Order{
			ID:        fmt.Sprintf("ext-%04d", r.exitSeq),
			Symbol:    intent.Symbol,
			Side:      side,
			Type:      domain.OrderTypeMarket,
			Qty:       math.Abs(pos.Qty),
			Reason:    domain.ReasonSignal,
			CreatedAt: intent.Timestamp,
		}
		if err := r.sim.Submit(order); err != nil {
			r.log.Error("exit submit failed", "order", order.ID, "err", err)
			return
		}
		res.Orders++
		r.exitOrderID = order.ID
		// The exit replaces the protective stop; a stop firing alongside the
		// exit would oversell.
		if r.stopOrderID != "" {
			r.sim.Cancel(r.stopOrderID)
			r.stopOrderID = ""
		}

	case domain.IntentEnter:
		// Only enter from flat, and never stack entry orders.
		if pos.Qty != 0 || r.entryOrderID != "" {
			return
		}
		acct := risk.AccountState{
			Equity:             r.tracker.Equity(bar.Close),
			Cash:               r.tracker.Cash(),
			SessionStartEquity: sessionStart,
			GrossExposure:      math.Abs(pos.Qty) * bar.Close,
			ADV:                averageVolume(bars, i, r.cfg.ADVWindow),
			RefPrice:           bar.Close,
		}
		order, rej := r.sizer.Size(intent, acct)
		if rej != nil {
			res.Rejections = append(res.Rejections, *rej)
			r.log.Debug("entry rejected", "reason", rej.Reason, "detail", rej.Detail)
			return
		}
		if err := r.sim.Submit(order); err != nil {
			r.log.Error("entry submit failed", "order", order.ID, "err", err)
			return
		}
		res.Orders++
		r.entryOrderID = order.ID
		r.stopPrice = intent.StopPrice
	}
}

// syncStop keeps exactly one protective stop resting for the open position,
// resubmitting when the position size changes (partial entry fills) and
// cancelling when the position is gone. It returns the number of orders
// submitted. While an exit order is resting the stop stays down, so the two
// can never fill against the same position.
func (r *Runner) syncStop() int {
	pos := r.tracker.Position()

	if pos.Qty == 0 || r.stopPrice <= 0 || r.exitOrderID != "" {
		if r.stopOrderID != "" {
			r.sim.Cancel(r.stopOrderID)
			r.stopOrderID = ""
		}
		if pos.Qty == 0 {
			r.stopPrice = 0
		}
		return 0
	}

	want := math.Abs(pos.Qty)
	if r.stopOrderID != "" {
		for _, o := range r.sim.Open() {
			if o.ID == r.stopOrderID {
				if math.Abs(o.Remaining()-want) < 1e-9 {
					return 0
				}
				break
			}
		}
		r.sim.Cancel(r.stopOrderID)
		r.stopOrderID = ""
	}

	side := domain.OrderSideSell
	if pos.Qty < 0 {
		side = domain.OrderSideBuy
	}
	r.stopSeq++
	order := &domain.Order{
		ID:        fmt.Sprintf("stp-%04d", r.stopSeq),
		Symbol:    pos.Symbol,
		Side:      side,
		Type:      domain.OrderTypeStop,
		Qty:       want,
		StopPrice: r.stopPrice,
		Reason:    domain.ReasonStopLoss,
	}
	if err := r.sim.Submit(order); err != nil {
		r.log.Error("stop submit failed", "order", order.ID, "err", err)
		return 0
	}
	r.stopOrderID = order.ID
	return 1
}

// pruneOrderIDs clears bookkeeping for orders that left the book (filled,
// expired, or cancelled) during the last Step.
func (r *Runner) pruneOrderIDs() {
	open := make(map[string]bool, 4)
	for _, o := range r.sim.Open() {
		open[o.ID] = true
	}
	if r.entryOrderID != "" && !open[r.entryOrderID] {
		r.entryOrderID = ""
	}
	if r.exitOrderID != "" && !open[r.exitOrderID] {
		r.exitOrderID = ""
	}
	if r.stopOrderID != "" && !open[r.stopOrderID] {
		r.stopOrderID = ""
	}
}

// averageVolume is the mean volume over the window ending at bar i.
func averageVolume(bars []domain.Bar, i, window int) float64 {
	if window <= 0 {
		return 0
	}
	start := i + 1 - window
	if start < 0 {
		start = 0
	}
	n := i + 1 - start
	if n <= 0 {
		return 0
	}
	sum := 0.0
	for _, b := range bars[start : i+1] {
		sum += float64(b.Volume)
	}
	return sum / float64(n)
}
