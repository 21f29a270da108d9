package broker

import (
	"math"
	"testing"
	"time"

	"aitrader/internal/domain"
)

func bar(ts time.Time, o, h, l, c float64, vol int64) domain.Bar {
	return domain.Bar{
		Symbol: "AAPL", Timestamp: ts,
		Open: o, High: h, Low: l, Close: c, Volume: vol,
	}
}

func marketBuy(id string, qty float64) *domain.Order {
	return &domain.Order{
		ID: id, Symbol: "AAPL",
		Side: domain.OrderSideBuy, Type: domain.OrderTypeMarket,
		Qty: qty, Reason: domain.ReasonSignal,
	}
}

func TestMarketFillAtNextOpenWithSlippage(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SlippageBps = 100 // 1%
	s := NewSimulator(cfg, nil)

	if err := s.Submit(marketBuy("o1", 10)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	ts := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	fills, expired := s.Step(bar(ts, 100, 105, 99, 104, 1_000_000))
	if len(expired) != 0 {
		t.Fatalf("unexpected expiry: %v", expired)
	}
	if len(fills) != 1 {
		t.Fatalf("got %d fills, want 1", len(fills))
	}

	f := fills[0]
	if math.Abs(f.Price-101.0) > 1e-9 {
		t.Errorf("fill price = %v, want 101.0 (open * 1.01)", f.Price)
	}
	if math.Abs(f.Slippage-1.0) > 1e-9 {
		t.Errorf("slippage = %v, want 1.0", f.Slippage)
	}
	if f.Qty != 10 {
		t.Errorf("fill qty = %v, want 10", f.Qty)
	}
	// Fill bound: |price - reference| <= configured slippage.
	if math.Abs(f.Price-100.0) > 100.0*cfg.SlippageBps/1e4+1e-9 {
		t.Error("fill price violates the slippage bound")
	}
}

func TestSellSlippageIsAdverse(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SlippageBps = 100
	s := NewSimulator(cfg, nil)

	o := marketBuy("o1", 10)
	o.Side = domain.OrderSideSell
	if err := s.Submit(o); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	fills, _ := s.Step(bar(time.Now().UTC(), 100, 105, 99, 104, 1_000_000))
	if len(fills) != 1 {
		t.Fatalf("got %d fills, want 1", len(fills))
	}
	if math.Abs(fills[0].Price-99.0) > 1e-9 {
		t.Errorf("sell fill price = %v, want 99.0", fills[0].Price)
	}
}

func TestLimitFillsAtBetterOfLimitOrTouch(t *testing.T) {
	s := NewSimulator(DefaultConfig(), nil)

	limit := &domain.Order{
		ID: "l1", Symbol: "AAPL",
		Side: domain.OrderSideBuy, Type: domain.OrderTypeLimit,
		Qty: 10, LimitPrice: 98, Reason: domain.ReasonSignal,
	}
	if err := s.Submit(limit); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Bar never touches the limit: no fill.
	fills, _ := s.Step(bar(time.Now().UTC(), 100, 103, 99, 102, 1_000_000))
	if len(fills) != 0 {
		t.Fatalf("limit should not fill above the limit price, got %v", fills)
	}

	// Bar trades through the limit: fill at the limit (open was above).
	fills, _ = s.Step(bar(time.Now().UTC(), 99, 100, 97, 98, 1_000_000))
	if len(fills) != 1 {
		t.Fatalf("got %d fills, want 1", len(fills))
	}
	if fills[0].Price != 98 {
		t.Errorf("limit fill price = %v, want 98", fills[0].Price)
	}

	// A gap below the limit fills at the more favorable open.
	s2 := NewSimulator(DefaultConfig(), nil)
	limit2 := &domain.Order{
		ID: "l2", Symbol: "AAPL",
		Side: domain.OrderSideBuy, Type: domain.OrderTypeLimit,
		Qty: 10, LimitPrice: 98, Reason: domain.ReasonSignal,
	}
	if err := s2.Submit(limit2); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	fills, _ = s2.Step(bar(time.Now().UTC(), 95, 97, 94, 96, 1_000_000))
	if len(fills) != 1 || fills[0].Price != 95 {
		t.Fatalf("gap-down limit buy should fill at open 95, got %v", fills)
	}
}

func TestStopArmsOnTouchThenFills(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SlippageBps = 0
	s := NewSimulator(cfg, nil)

	stop := &domain.Order{
		ID: "s1", Symbol: "AAPL",
		Side: domain.OrderSideSell, Type: domain.OrderTypeStop,
		Qty: 10, StopPrice: 95, Reason: domain.ReasonStopLoss,
	}
	if err := s.Submit(stop); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Bar stays above the stop: not armed, no fill.
	fills, _ := s.Step(bar(time.Now().UTC(), 100, 102, 96, 101, 1_000_000))
	if len(fills) != 0 {
		t.Fatalf("stop should not trigger above the stop price, got %v", fills)
	}

	// Bar touches the stop: fills as a market order through the stop.
	fills, _ = s.Step(bar(time.Now().UTC(), 96, 97, 94, 95, 1_000_000))
	if len(fills) != 1 {
		t.Fatalf("got %d fills, want 1", len(fills))
	}
	if fills[0].Price != 95 {
		t.Errorf("stop fill price = %v, want 95 (min(open, stop))", fills[0].Price)
	}
	if fills[0].Reason != domain.ReasonStopLoss {
		t.Errorf("fill reason = %s, want %s", fills[0].Reason, domain.ReasonStopLoss)
	}
}

func TestPartialFillRequeuesAndExpires(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SlippageBps = 0
	cfg.VolumeLimitFrac = 0.10
	cfg.MaxFillBars = 2
	s := NewSimulator(cfg, nil)

	if err := s.Submit(marketBuy("o1", 300)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Bar volume 1000 -> at most 100 shares per bar.
	fills, expired := s.Step(bar(time.Now().UTC(), 100, 101, 99, 100, 1000))
	if len(fills) != 1 || fills[0].Qty != 100 {
		t.Fatalf("first partial fill = %v, want qty 100", fills)
	}
	if len(expired) != 0 {
		t.Fatal("order should requeue, not expire, after first partial")
	}

	// Second bar: another 100, then the remainder expires at the horizon.
	fills, expired = s.Step(bar(time.Now().UTC(), 100, 101, 99, 100, 1000))
	if len(fills) != 1 || fills[0].Qty != 100 {
		t.Fatalf("second partial fill = %v, want qty 100", fills)
	}
	if len(expired) != 1 {
		t.Fatalf("remainder should expire after %d bars, got %v", cfg.MaxFillBars, expired)
	}
	if expired[0].FilledQty != 200 {
		t.Errorf("expired order FilledQty = %v, want 200", expired[0].FilledQty)
	}
	if expired[0].Status != domain.OrderStatusExpired {
		t.Errorf("expired order status = %s, want %s", expired[0].Status, domain.OrderStatusExpired)
	}

	// Cumulative fills never exceed the order quantity.
	if expired[0].FilledQty > expired[0].Qty {
		t.Error("cumulative fills exceeded order quantity")
	}
}

func TestSubmitRejectsMalformedOrder(t *testing.T) {
	s := NewSimulator(DefaultConfig(), nil)
	bad := marketBuy("o1", -5)
	err := s.Submit(bad)
	if err == nil {
		t.Fatal("expected execution error for non-positive quantity")
	}
	if bad.Status != domain.OrderStatusRejected {
		t.Errorf("status = %s, want %s", bad.Status, domain.OrderStatusRejected)
	}
	if len(s.Open()) != 0 {
		t.Error("rejected order must not rest on the book")
	}
}

func TestCancelRemovesPending(t *testing.T) {
	s := NewSimulator(DefaultConfig(), nil)
	if err := s.Submit(marketBuy("o1", 10)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	s.Cancel("o1")
	if len(s.Open()) != 0 {
		t.Error("cancelled order still on the book")
	}
	fills, _ := s.Step(bar(time.Now().UTC(), 100, 101, 99, 100, 1_000_000))
	if len(fills) != 0 {
		t.Error("cancelled order must not fill")
	}
}
