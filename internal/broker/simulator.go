// Package broker simulates order execution against historical bars: market,
// limit, and stop matching with slippage, fees, partial fills, and expiry.
package broker

import (
	"log/slog"
	"math"

	"aitrader/internal/domain"
)

// Config holds the execution-model parameters for one run.
type Config struct {
	SlippageBps      float64 `yaml:"slippage_bps"`       // fixed slippage in basis points
	SlippageVolCoeff float64 `yaml:"slippage_vol_coeff"` // volume-proportional slippage component
	FeePerShare      float64 `yaml:"fee_per_share"`
	FeePct           float64 `yaml:"fee_pct"`
	VolumeLimitFrac  float64 `yaml:"volume_limit_frac"` // max fraction of bar volume filled per bar
	MaxFillBars      int     `yaml:"max_fill_bars"`     // partial-fill expiry horizon in bars
}

// DefaultConfig returns the documented execution defaults: 1bp fixed
// slippage, no fees, 10% volume participation, three-bar expiry.
func DefaultConfig() Config {
	return Config{
		SlippageBps:     1.0,
		VolumeLimitFrac: 0.10,
		MaxFillBars:     3,
	}
}

// pendingOrder is an order resting on the simulated book.
type pendingOrder struct {
	order    *domain.Order
	armed    bool // stop orders: true once the stop price has been touched
	barsOpen int
}

// Simulator matches pending orders against incoming bars. Orders submitted
// during bar t are matched against bar t+1, so signals never peek at their
// own fill bar. All matching is sequential and deterministic.
type Simulator struct {
	cfg     Config
	pending []*pendingOrder
	log     *slog.Logger
}

// NewSimulator creates a Simulator with the given execution config.
func NewSimulator(cfg Config, log *slog.Logger) *Simulator {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxFillBars <= 0 {
		cfg.MaxFillBars = 3
	}
	return &Simulator{cfg: cfg, log: log.With("component", "broker")}
}

// Submit validates the order and places it on the pending book. A malformed
// order is rejected immediately and is fatal to that order only.
func (s *Simulator) Submit(order *domain.Order) error {
	if err := order.Validate(); err != nil {
		order.Status = domain.OrderStatusRejected
		return err
	}
	order.Status = domain.OrderStatusNew
	s.pending = append(s.pending, &pendingOrder{order: order})
	return nil
}

// Cancel removes a pending order by ID. Cancelling an unknown or already
// terminal order is a no-op.
func (s *Simulator) Cancel(orderID string) {
	for i, p := range s.pending {
		if p.order.ID == orderID {
			p.order.Status = domain.OrderStatusCancelled
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// CancelAll clears the pending book, marking every resting order cancelled.
func (s *Simulator) CancelAll() {
	for _, p := range s.pending {
		p.order.Status = domain.OrderStatusCancelled
	}
	s.pending = s.pending[:0]
}

// Open returns the orders currently resting on the book.
func (s *Simulator) Open() []domain.Order {
	out := make([]domain.Order, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, *p.order)
	}
	return out
}

// Step matches the pending book against the next bar. It returns the fills
// produced and any orders that expired after exhausting their fill horizon.
func (s *Simulator) Step(bar domain.Bar) ([]domain.Fill, []domain.Order) {
	var fills []domain.Fill
	var expired []domain.Order
	keep := s.pending[:0]

	for _, p := range s.pending {
		fill, done := s.match(p, bar)
		if fill != nil {
			fills = append(fills, *fill)
		}
		if done {
			continue
		}
		p.barsOpen++
		if p.barsOpen >= s.cfg.MaxFillBars {
			p.order.Status = domain.OrderStatusExpired
			expired = append(expired, *p.order)
			s.log.Debug("order expired", "order", p.order.ID, "filled", p.order.FilledQty, "qty", p.order.Qty)
			continue
		}
		keep = append(keep, p)
	}
	s.pending = keep
	return fills, expired
}

// match attempts to fill one pending order against the bar. It returns the
// fill (nil if none) and whether the order left the book.
func (s *Simulator) match(p *pendingOrder, bar domain.Bar) (*domain.Fill, bool) {
	o := p.order
	var ref float64 // reference price before slippage
	slip := true

	switch o.Type {
	case domain.OrderTypeMarket:
		ref = bar.Open

	case domain.OrderTypeLimit:
		// Fill only if the bar's range crosses the limit, at the more
		// favorable of limit price or touch price. No slippage: the limit
		// is a hard bound.
		slip = false
		if o.Side == domain.OrderSideBuy {
			if bar.Low > o.LimitPrice {
				return nil, false
			}
			ref = math.Min(o.LimitPrice, bar.Open)
		} else {
			if bar.High < o.LimitPrice {
				return nil, false
			}
			ref = math.Max(o.LimitPrice, bar.Open)
		}

	case domain.OrderTypeStop:
		// Arm on touch, then fill as a market order through the stop.
		if !p.armed {
			if o.Side == domain.OrderSideBuy {
				if bar.High < o.StopPrice {
					return nil, false
				}
			} else {
				if bar.Low > o.StopPrice {
					return nil, false
				}
			}
			p.armed = true
		}
		if o.Side == domain.OrderSideBuy {
			ref = math.Max(bar.Open, o.StopPrice)
		} else {
			ref = math.Min(bar.Open, o.StopPrice)
		}

	default:
		o.Status = domain.OrderStatusRejected
		return nil, true
	}

	qty := o.Remaining()
	partial := false
	if s.cfg.VolumeLimitFrac > 0 && bar.Volume > 0 {
		maxQty := s.cfg.VolumeLimitFrac * float64(bar.Volume)
		if qty > maxQty {
			qty = maxQty
			partial = true
		}
	}
	if qty <= 0 {
		return nil, false
	}

	price := ref
	if slip {
		offset := ref * s.cfg.SlippageBps / 1e4
		if s.cfg.SlippageVolCoeff > 0 && bar.Volume > 0 {
			offset += ref * s.cfg.SlippageVolCoeff * qty / float64(bar.Volume)
		}
		if o.Side == domain.OrderSideBuy {
			price = ref + offset
		} else {
			price = ref - offset
		}
	}

	fee := s.cfg.FeePerShare*qty + s.cfg.FeePct*qty*price

	o.FilledQty += qty
	if partial {
		o.Status = domain.OrderStatusPartial
	} else {
		o.Status = domain.OrderStatusFilled
	}

	fill := &domain.Fill{
		OrderID:   o.ID,
		Symbol:    o.Symbol,
		Side:      o.Side,
		Qty:       qty,
		Price:     price,
		Fee:       fee,
		Slippage:  price - ref,
		Reason:    o.Reason,
		Timestamp: bar.Timestamp,
	}
	return fill, !partial
}
