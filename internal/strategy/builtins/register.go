package builtins

import "aitrader/internal/strategy"

// Register adds every built-in strategy factory to the registry.
func Register(r *strategy.Registry) {
	r.Register("breakout", NewBreakout)
	r.Register("momentum", NewMomentum)
	r.Register("mean_reversion", NewMeanReversion)
	r.Register("sma_cross", NewSMACross)
}

// DefaultRegistry returns a registry preloaded with the built-ins.
func DefaultRegistry() *strategy.Registry {
	r := strategy.NewRegistry()
	Register(r)
	return r
}
