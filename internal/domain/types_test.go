package domain

import (
	"testing"
	"time"
)

func TestOrderValidate(t *testing.T) {
	base := func() Order {
		return Order{
			ID:        "o-1",
			Symbol:    "AAPL",
			Side:      OrderSideBuy,
			Type:      OrderTypeMarket,
			Qty:       10,
			CreatedAt: time.Now(),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Order)
		wantErr bool
	}{
		{"valid market", func(o *Order) {}, false},
		{"zero qty", func(o *Order) { o.Qty = 0 }, true},
		{"negative qty", func(o *Order) { o.Qty = -5 }, true},
		{"empty symbol", func(o *Order) { o.Symbol = "" }, true},
		{"bad side", func(o *Order) { o.Side = "hold" }, true},
		{"limit without price", func(o *Order) { o.Type = OrderTypeLimit }, true},
		{"limit with price", func(o *Order) { o.Type = OrderTypeLimit; o.LimitPrice = 100 }, false},
		{"stop without price", func(o *Order) { o.Type = OrderTypeStop }, true},
		{"stop with price", func(o *Order) { o.Type = OrderTypeStop; o.StopPrice = 95 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := base()
			tt.mutate(&o)
			err := o.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJobStatusTransitions(t *testing.T) {
	if !JobQueued.CanTransition(JobRunning) {
		t.Error("queued -> running should be allowed")
	}
	if !JobRunning.CanTransition(JobCompleted) {
		t.Error("running -> completed should be allowed")
	}
	if !JobQueued.CanTransition(JobCancelled) {
		t.Error("queued -> cancelled should be allowed")
	}
	if JobCompleted.CanTransition(JobQueued) {
		t.Error("completed -> queued must be rejected")
	}
	if JobFailed.CanTransition(JobRunning) {
		t.Error("failed -> running must be rejected")
	}
	if JobCompleted.CanTransition(JobFailed) {
		t.Error("terminal -> terminal must be rejected")
	}

	for _, s := range []JobStatus{JobCompleted, JobFailed, JobCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []JobStatus{JobQueued, JobRunning} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestMetricsSummaryMetric(t *testing.T) {
	m := &MetricsSummary{Sharpe: 1.2, Sortino: 1.8, WinRate: 0.55, MaxDrawdown: -0.12}

	if v, ok := m.Metric("sharpe"); !ok || v != 1.2 {
		t.Errorf("Metric(sharpe) = %v, %v; want 1.2, true", v, ok)
	}
	if v, ok := m.Metric("max_drawdown"); !ok || v != -0.12 {
		t.Errorf("Metric(max_drawdown) = %v, %v; want -0.12, true", v, ok)
	}
	if _, ok := m.Metric("nonsense"); ok {
		t.Error("Metric(nonsense) should report not found")
	}
}

func TestOrderRemaining(t *testing.T) {
	o := Order{Qty: 100, FilledQty: 30}
	if got := o.Remaining(); got != 70 {
		t.Errorf("Remaining() = %v, want 70", got)
	}
}
