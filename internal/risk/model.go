// Package risk converts strategy intents into sized, broker-ready orders
// subject to per-trade risk, exposure, concentration, and drawdown gates.
package risk

// BetaWinrate models the strategy's win rate as a Beta posterior. It gates
// entries on the posterior mean and produces a capped Kelly fraction for
// probabilistic sizing. Updated once per closed trade.
type BetaWinrate struct {
	Alpha float64
	Beta  float64
	Gate  float64 // minimum posterior mean to allow entries
	Fmax  float64 // cap on the Kelly fraction
}

// NewBetaWinrate creates a model with a weak symmetric prior.
func NewBetaWinrate(gate, fmax float64) *BetaWinrate {
	return &BetaWinrate{Alpha: 2, Beta: 2, Gate: gate, Fmax: fmax}
}

// PMean returns the posterior mean of the win rate.
func (m *BetaWinrate) PMean() float64 {
	return m.Alpha / (m.Alpha + m.Beta)
}

// Allow reports whether the posterior mean clears the entry gate.
func (m *BetaWinrate) Allow() bool {
	return m.PMean() >= m.Gate
}

// KellyFraction returns the capped Kelly fraction for an even-payoff bet:
// max(0, 2p-1), clamped to Fmax.
func (m *BetaWinrate) KellyFraction() float64 {
	f := 2*m.PMean() - 1
	if f < 0 {
		f = 0
	}
	if f > m.Fmax {
		f = m.Fmax
	}
	return f
}

// KellyFractionFor computes the Kelly fraction for an explicit probability
// estimate and payoff ratio, clamped to [0, Fmax]. A non-positive payoff
// falls back to the even-payoff formula.
func (m *BetaWinrate) KellyFractionFor(p, payoff float64) float64 {
	var f float64
	if payoff > 0 {
		f = p - (1-p)/payoff
	} else {
		f = 2*p - 1
	}
	if f < 0 {
		f = 0
	}
	if f > m.Fmax {
		f = m.Fmax
	}
	return f
}

// Update folds the outcome of a closed trade into the posterior.
func (m *BetaWinrate) Update(win bool) {
	if win {
		m.Alpha++
	} else {
		m.Beta++
	}
}
