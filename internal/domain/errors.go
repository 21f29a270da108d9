package domain

import "fmt"

// DataError reports missing or out-of-order bars. It halts the affected
// symbol's run and is never retried: the problem lives upstream.
type DataError struct {
	Symbol string
	Index  int // offending bar's position in the series
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("data error for %s at bar %d: %s", e.Symbol, e.Index, e.Reason)
}

// ExecutionError reports a malformed order. It is fatal to that order only.
type ExecutionError struct {
	OrderID string
	Reason  string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution error on order %s: %s", e.OrderID, e.Reason)
}

// RejectReason enumerates the risk gates that can decline an order.
type RejectReason string

const (
	RejectRiskCap         RejectReason = "risk_cap"
	RejectExposureCap     RejectReason = "exposure_cap"
	RejectConcentration   RejectReason = "manual_approval_required"
	RejectDrawdownHalt    RejectReason = "daily_drawdown_halt"
	RejectProbabilityGate RejectReason = "probability_gate"
	RejectMinNotional     RejectReason = "below_min_notional"
)

// Rejection is a sizing rejection: a non-fatal event recorded in the run log.
// It is terminal for the bar that produced it and never retried within the
// same step.
type Rejection struct {
	Reason RejectReason `json:"reason"`
	Detail string       `json:"detail,omitempty"`
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return "sizing rejected: " + string(r.Reason)
	}
	return fmt.Sprintf("sizing rejected: %s (%s)", r.Reason, r.Detail)
}
