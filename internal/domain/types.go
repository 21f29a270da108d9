// Package domain defines the core data types shared across the backtest
// pipeline and the sweep orchestrator: bars, intents, orders, fills,
// positions, trades, equity points, and sweep job records.
package domain

import "time"

// ---------------------------------------------------------------------------
// Market data
// ---------------------------------------------------------------------------

// Bar is a single OHLCV sample for a symbol. Timestamps are UTC and strictly
// increasing within a symbol stream.
type Bar struct {
	Symbol     string    `json:"symbol"`
	Timestamp  time.Time `json:"timestamp"`
	Open       float64   `json:"open"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Close      float64   `json:"close"`
	Volume     int64     `json:"volume"`
	TradeCount int64     `json:"trade_count"`
	VWAP       float64   `json:"vwap"`
}

// ---------------------------------------------------------------------------
// Intents
// ---------------------------------------------------------------------------

// IntentAction distinguishes entries from exits.
type IntentAction string

const (
	IntentEnter IntentAction = "enter"
	IntentExit  IntentAction = "exit"
)

// Direction is the desired exposure of an entry intent.
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// Intent is a strategy's desired action for one bar. At most one intent is
// produced per symbol per bar, and intents are immutable once emitted.
type Intent struct {
	Symbol    string       `json:"symbol"`
	Action    IntentAction `json:"action"`
	Direction Direction    `json:"direction"`
	SizeHint  float64      `json:"size_hint,omitempty"` // optional fraction scaling, 0 = default
	StopPrice float64      `json:"stop_price,omitempty"`
	ProbWin   float64      `json:"prob_win,omitempty"` // optional win-probability estimate
	Timestamp time.Time    `json:"timestamp"`
}

// ---------------------------------------------------------------------------
// Orders and fills
// ---------------------------------------------------------------------------

// OrderSide is the side of an order.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderType selects the matching rule applied by the broker simulator.
type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
	OrderTypeStop   OrderType = "stop"
)

// OrderStatus tracks the lifecycle of an order.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusPartial   OrderStatus = "partially_filled"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusExpired   OrderStatus = "expired"
)

// OrderReason records why an order was placed; fills inherit it so position
// state transitions can distinguish stop-outs and take-profits from plain
// signal exits.
type OrderReason string

const (
	ReasonSignal     OrderReason = "signal"
	ReasonStopLoss   OrderReason = "stop_loss"
	ReasonTakeProfit OrderReason = "take_profit"
)

// Order is a sized, broker-ready instruction. Qty and price fields must pass
// Validate before submission.
type Order struct {
	ID         string      `json:"id"`
	Symbol     string      `json:"symbol"`
	Side       OrderSide   `json:"side"`
	Type       OrderType   `json:"type"`
	Qty        float64     `json:"qty"`
	LimitPrice float64     `json:"limit_price,omitempty"`
	StopPrice  float64     `json:"stop_price,omitempty"`
	Reason     OrderReason `json:"reason"`
	Status     OrderStatus `json:"status"`
	FilledQty  float64     `json:"filled_qty"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Validate reports whether the order is well-formed for submission.
func (o *Order) Validate() error {
	if o.Symbol == "" {
		return &ExecutionError{OrderID: o.ID, Reason: "empty symbol"}
	}
	if o.Qty <= 0 {
		return &ExecutionError{OrderID: o.ID, Reason: "non-positive quantity"}
	}
	switch o.Side {
	case OrderSideBuy, OrderSideSell:
	default:
		return &ExecutionError{OrderID: o.ID, Reason: "invalid side " + string(o.Side)}
	}
	switch o.Type {
	case OrderTypeMarket:
	case OrderTypeLimit:
		if o.LimitPrice <= 0 {
			return &ExecutionError{OrderID: o.ID, Reason: "limit order without limit price"}
		}
	case OrderTypeStop:
		if o.StopPrice <= 0 {
			return &ExecutionError{OrderID: o.ID, Reason: "stop order without stop price"}
		}
	default:
		return &ExecutionError{OrderID: o.ID, Reason: "invalid type " + string(o.Type)}
	}
	return nil
}

// Remaining returns the unfilled quantity.
func (o *Order) Remaining() float64 {
	return o.Qty - o.FilledQty
}

// Fill is a simulated execution result. Cumulative fills per order never
// exceed the order quantity.
type Fill struct {
	OrderID   string      `json:"order_id"`
	Symbol    string      `json:"symbol"`
	Side      OrderSide   `json:"side"`
	Qty       float64     `json:"qty"`
	Price     float64     `json:"price"`
	Fee       float64     `json:"fee"`
	Slippage  float64     `json:"slippage"` // signed price offset vs. reference
	Reason    OrderReason `json:"reason"`
	Timestamp time.Time   `json:"timestamp"`
}

// ---------------------------------------------------------------------------
// Positions and trades
// ---------------------------------------------------------------------------

// PositionState is the tagged lifecycle variant of a position. Transitions
// are driven only by fills, never by time alone.
type PositionState string

const (
	PositionFlat       PositionState = "flat"
	PositionLong       PositionState = "long"
	PositionShort      PositionState = "short"
	PositionStopped    PositionState = "stopped"
	PositionTakeProfit PositionState = "take_profit"
)

// Position is the net holding in a symbol. Qty is signed; the sign flips only
// through a fill that crosses zero.
type Position struct {
	Symbol        string        `json:"symbol"`
	Qty           float64       `json:"qty"`
	AvgPrice      float64       `json:"avg_price"`
	RealizedPnL   float64       `json:"realized_pnl"`
	UnrealizedPnL float64       `json:"unrealized_pnl"`
	State         PositionState `json:"state"`
	OpenedAt      time.Time     `json:"opened_at"`
}

// Trade is a closed round-trip, created only when a position returns to zero.
type Trade struct {
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"`
	Qty        float64   `json:"qty"`
	EntryTime  time.Time `json:"entry_time"`
	ExitTime   time.Time `json:"exit_time"`
	EntryPrice float64   `json:"entry_price"` // fill-weighted
	ExitPrice  float64   `json:"exit_price"`  // fill-weighted
	PnL        float64   `json:"pnl"`
	Fees       float64   `json:"fees"`
	BarsHeld   int       `json:"bars_held"`
	ExitReason string    `json:"exit_reason"`
}

// EquityPoint is one sample of the equity time series. Drawdown is measured
// against the running peak and is always <= 0.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
	Drawdown  float64   `json:"drawdown"`
}

// ---------------------------------------------------------------------------
// Metrics
// ---------------------------------------------------------------------------

// MetricsSummary is the derived outcome of a run. It is immutable after
// computation.
type MetricsSummary struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Periods     int       `json:"periods"`
	CAGR        float64   `json:"cagr"`
	TotalReturn float64   `json:"total_return"`
	Vol         float64   `json:"vol"`
	Sharpe      float64   `json:"sharpe"`
	Sortino     float64   `json:"sortino"`
	MaxDrawdown float64   `json:"max_drawdown"`
	MaxDDLen    int       `json:"max_dd_len"`
	MAR         float64   `json:"mar"`

	NTrades     int     `json:"n_trades"`
	WinRate     float64 `json:"win_rate"`
	AvgPnL      float64 `json:"avg_pnl"`
	AvgWin      float64 `json:"avg_win"`
	AvgLoss     float64 `json:"avg_loss"`
	Payoff      float64 `json:"payoff"`
	Expectancy  float64 `json:"expectancy"`
	Best        float64 `json:"best"`
	Worst       float64 `json:"worst"`
	GrossProfit float64 `json:"gross_profit"`
	GrossLoss   float64 `json:"gross_loss"`
}

// Metric extracts a named metric value for leaderboard sorting. Unknown names
// return 0 and false.
func (m *MetricsSummary) Metric(name string) (float64, bool) {
	switch name {
	case "sharpe":
		return m.Sharpe, true
	case "sortino":
		return m.Sortino, true
	case "cagr":
		return m.CAGR, true
	case "total_return":
		return m.TotalReturn, true
	case "max_drawdown":
		return m.MaxDrawdown, true
	case "win_rate":
		return m.WinRate, true
	case "expectancy":
		return m.Expectancy, true
	case "mar":
		return m.MAR, true
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Sweep jobs
// ---------------------------------------------------------------------------

// JobStatus is the lifecycle status of a sweep job. Transitions are
// monotonic: a terminal status never reverts.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
	JobCancelled JobStatus = "cancelled"
)

// Terminal reports whether the status is an end state.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobCompleted, JobFailed, JobCancelled:
		return true
	}
	return false
}

// rank orders statuses so that transitions can be checked for monotonicity.
func (s JobStatus) rank() int {
	switch s {
	case JobQueued:
		return 0
	case JobRunning:
		return 1
	case JobCompleted, JobFailed, JobCancelled:
		return 2
	}
	return -1
}

// CanTransition reports whether moving from s to next is a legal, monotonic
// status transition.
func (s JobStatus) CanTransition(next JobStatus) bool {
	if s == next {
		return false
	}
	return next.rank() > s.rank()
}

// SweepJob is one parameter combination within a sweep.
type SweepJob struct {
	ID       string         `json:"job_id"`
	Index    int            `json:"index"`
	Strategy string         `json:"strategy"`
	Symbol   string         `json:"symbol"`
	Params   map[string]any `json:"params"`
	Status   JobStatus      `json:"status"`
}

// SweepResult is the single terminal record emitted for a job.
type SweepResult struct {
	JobID       string          `json:"job_id"`
	Params      map[string]any  `json:"params"`
	Metrics     *MetricsSummary `json:"metrics,omitempty"`
	ArtifactURI string          `json:"artifact_uri,omitempty"`
	Status      JobStatus       `json:"status"`
	Error       string          `json:"error,omitempty"`
	Attempts    int             `json:"attempts,omitempty"`
}
