package risk

import (
	"fmt"
	"log/slog"
	"math"

	"aitrader/internal/domain"
	"aitrader/internal/util"
)

// Config holds the risk parameters for one run. Each sweep worker constructs
// its own Sizer from an independent copy, so runs never share risk state.
type Config struct {
	RiskFrac         float64 `yaml:"risk_frac"`           // fraction of equity risked per trade
	MaxADVFrac       float64 `yaml:"max_adv_frac"`        // order size cap as fraction of average daily volume
	ConcentrationPct float64 `yaml:"concentration_pct"`   // orders above this fraction of equity need manual approval
	DailyLossHaltPct float64 `yaml:"daily_loss_halt_pct"` // intraday loss that halts new entries for the session
	MinNotional      float64 `yaml:"min_notional"`
	AllowFractional  bool    `yaml:"allow_fractional"`

	Agent         string  `yaml:"agent"`          // "none" or "beta_winrate"
	AgentFraction float64 `yaml:"agent_fraction"` // fractional-Kelly scale
	MaxKellyFrac  float64 `yaml:"max_kelly_frac"`
	AgentGate     float64 `yaml:"agent_gate"` // minimum posterior win rate for entries
}

// DefaultConfig returns the documented risk defaults.
func DefaultConfig() Config {
	return Config{
		RiskFrac:         0.01,
		MaxADVFrac:       0.05,
		ConcentrationPct: 0.25,
		DailyLossHaltPct: 0.05,
		MinNotional:      100,
		AllowFractional:  true,
		Agent:            "none",
		AgentFraction:    0.5,
		MaxKellyFrac:     0.02,
		AgentGate:        0.52,
	}
}

// AccountState is a snapshot of the portfolio at sizing time.
type AccountState struct {
	Equity             float64
	Cash               float64
	SessionStartEquity float64
	GrossExposure      float64 // absolute notional of open positions
	ADV                float64 // average daily volume in shares, 0 = unknown
	RefPrice           float64 // expected fill reference (last close)
}

// Sizer applies the risk gates, in order: per-trade risk fraction, ADV
// exposure cap, concentration gate, daily-drawdown halt. Rejections are
// terminal for the bar that produced them.
type Sizer struct {
	cfg     Config
	model   *BetaWinrate
	seq     int
	session string
	halted  bool
	trades  int
	log     *slog.Logger
}

// NewSizer creates a Sizer for one run. A BetaWinrate model is attached when
// the configured agent is "beta_winrate".
func NewSizer(cfg Config, log *slog.Logger) *Sizer {
	if log == nil {
		log = slog.Default()
	}
	s := &Sizer{cfg: cfg, log: log.With("component", "risk")}
	if cfg.Agent == "beta_winrate" {
		gate := cfg.AgentGate
		if gate <= 0 {
			gate = 0.52
		}
		fmax := cfg.MaxKellyFrac
		if fmax <= 0 {
			fmax = 0.02
		}
		s.model = NewBetaWinrate(gate, fmax)
	}
	return s
}

// Model exposes the probability model, nil when the agent is "none".
func (s *Sizer) Model() *BetaWinrate { return s.model }

// Halted reports whether new entries are halted for the current session.
func (s *Sizer) Halted() bool { return s.halted }

// RecordTrade folds a closed trade's outcome into the probability model.
func (s *Sizer) RecordTrade(win bool) {
	s.trades++
	if s.model != nil {
		s.model.Update(win)
	}
}

// Size converts an entry intent into a concrete order or a rejection. Exit
// intents are not sized here: exits bypass the entry gates by design.
func (s *Sizer) Size(intent domain.Intent, acct AccountState) (*domain.Order, *domain.Rejection) {
	s.rollSession(intent, acct)

	if s.halted {
		return nil, &domain.Rejection{
			Reason: domain.RejectDrawdownHalt,
			Detail: fmt.Sprintf("intraday loss exceeded %.1f%%, entries halted until next session", s.cfg.DailyLossHaltPct*100),
		}
	}

	price := acct.RefPrice
	if price <= 0 || acct.Equity <= 0 {
		return nil, &domain.Rejection{Reason: domain.RejectRiskCap, Detail: "no reference price or equity"}
	}

	frac, rej := s.riskFraction(intent)
	if rej != nil {
		return nil, rej
	}
	if intent.SizeHint > 0 && intent.SizeHint < 1 {
		frac *= intent.SizeHint
	}

	// Gate 1: per-trade risk fraction, derived from stop distance. The
	// implied loss at the stop never exceeds frac * equity.
	riskDollar := acct.Equity * frac
	stopDist := math.Abs(price - intent.StopPrice)
	var qty float64
	if intent.StopPrice > 0 && stopDist > 1e-9 {
		qty = riskDollar / stopDist
	} else {
		// No stop supplied: risk the fraction as notional.
		qty = riskDollar / price
	}

	// Gate 2: exposure cap as a fraction of average daily volume.
	if s.cfg.MaxADVFrac > 0 && acct.ADV > 0 {
		maxQty := s.cfg.MaxADVFrac * acct.ADV
		if qty > maxQty {
			qty = maxQty
		}
		if qty <= 0 {
			return nil, &domain.Rejection{Reason: domain.RejectExposureCap, Detail: "ADV cap reduced size to zero"}
		}
	}

	if !s.cfg.AllowFractional {
		qty = math.Floor(qty)
	}
	notional := qty * price
	if qty <= 0 || (s.cfg.MinNotional > 0 && notional < s.cfg.MinNotional) {
		return nil, &domain.Rejection{
			Reason: domain.RejectMinNotional,
			Detail: fmt.Sprintf("notional %.2f below minimum %.2f", notional, s.cfg.MinNotional),
		}
	}

	// Gate 3: concentration. Oversized orders are not silently trimmed;
	// they come back as a manual-approval rejection.
	if s.cfg.ConcentrationPct > 0 && notional > s.cfg.ConcentrationPct*acct.Equity {
		return nil, &domain.Rejection{
			Reason: domain.RejectConcentration,
			Detail: fmt.Sprintf("order notional %.2f exceeds %.0f%% of equity", notional, s.cfg.ConcentrationPct*100),
		}
	}

	side := domain.OrderSideBuy
	if intent.Direction == domain.DirectionShort {
		side = domain.OrderSideSell
	}
	s.seq++
	order := &domain.Order{
		ID:        fmt.Sprintf("ord-%04d", s.seq),
		Symbol:    intent.Symbol,
		Side:      side,
		Type:      domain.OrderTypeMarket,
		Qty:       qty,
		Reason:    domain.ReasonSignal,
		Status:    domain.OrderStatusNew,
		CreatedAt: intent.Timestamp,
	}
	return order, nil
}

// riskFraction picks between fixed-fractional and fractional-Kelly sizing.
func (s *Sizer) riskFraction(intent domain.Intent) (float64, *domain.Rejection) {
	frac := s.cfg.RiskFrac
	if frac <= 0 || frac > 0.25 {
		frac = 0.01
	}

	if s.model == nil {
		return frac, nil
	}

	// First trade is always allowed even under a conservative prior.
	if !s.model.Allow() && s.trades > 0 && intent.ProbWin <= 0 {
		return 0, &domain.Rejection{
			Reason: domain.RejectProbabilityGate,
			Detail: fmt.Sprintf("posterior win rate %.3f below gate %.3f", s.model.PMean(), s.model.Gate),
		}
	}

	var kelly float64
	if intent.ProbWin > 0 {
		kelly = s.model.KellyFractionFor(intent.ProbWin, 0)
	} else {
		kelly = s.model.KellyFraction()
	}
	scaled := kelly * s.cfg.AgentFraction
	if scaled <= 0 {
		// Posterior carries no edge yet; fall back to fixed-fractional.
		return frac, nil
	}
	if scaled < frac {
		return scaled, nil
	}
	return frac, nil
}

// rollSession resets the drawdown halt at session boundaries and trips it
// when the intraday loss threshold is crossed.
func (s *Sizer) rollSession(intent domain.Intent, acct AccountState) {
	key := util.SessionKey(intent.Timestamp)
	if key != s.session {
		s.session = key
		s.halted = false
	}
	if s.halted || s.cfg.DailyLossHaltPct <= 0 || acct.SessionStartEquity <= 0 {
		return
	}
	loss := (acct.SessionStartEquity - acct.Equity) / acct.SessionStartEquity
	if loss >= s.cfg.DailyLossHaltPct {
		s.halted = true
		s.log.Warn("daily drawdown halt tripped",
			"session", key,
			"loss", fmt.Sprintf("%.4f", loss),
			"threshold", s.cfg.DailyLossHaltPct,
		)
	}
}
