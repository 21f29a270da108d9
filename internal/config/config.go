// Package config loads the application configuration and sweep documents
// from YAML, applying environment variable overrides after parse.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"aitrader/internal/broker"
	"aitrader/internal/risk"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the aitrader tools.
type Config struct {
	Storage  Storage  `yaml:"storage"`
	Alpaca   Alpaca   `yaml:"alpaca"`
	Logging  Logging  `yaml:"logging"`
	Fetch    Fetch    `yaml:"fetch"`
	Backtest Backtest `yaml:"backtest"`
	Runner   Runner   `yaml:"runner"`
}

// Storage holds paths for data and artifact persistence.
type Storage struct {
	DataDir     string `yaml:"data_dir"`
	ArtifactDir string `yaml:"artifact_dir"`
	SQLitePath  string `yaml:"sqlite_path"`
}

// Alpaca holds credentials and endpoints for the Alpaca market-data API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	DataURL   string `yaml:"data_url"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Fetch controls the daily-bar fetcher.
type Fetch struct {
	StartDate       string   `yaml:"start_date"`
	Symbols         []string `yaml:"symbols"`
	BatchSize       int      `yaml:"batch_size"`
	RateLimitPerMin int      `yaml:"rate_limit_per_min"`
}

// Backtest holds the defaults for a single run. The risk and broker sections
// are the construction-time configs passed into the sizer and the simulator;
// every sweep worker gets its own copy so runs never share mutable state.
type Backtest struct {
	InitialEquity  float64       `yaml:"initial_equity"`
	PeriodsPerYear int           `yaml:"periods_per_year"`
	RiskFreeRate   float64       `yaml:"risk_free_rate"`
	Risk           risk.Config   `yaml:"risk"`
	Broker         broker.Config `yaml:"broker"`
}

// Runner holds the gRPC listener/target settings for the remote job runner.
// The timeout fields are duration strings ("2m", "500ms").
type Runner struct {
	Addr             string `yaml:"addr"`
	HeartbeatTimeout string `yaml:"heartbeat_timeout"`
	PollInterval     string `yaml:"poll_interval"`
}

// HeartbeatTimeoutDuration parses the heartbeat timeout, default two minutes.
func (r Runner) HeartbeatTimeoutDuration() time.Duration {
	return parseDuration(r.HeartbeatTimeout, 2*time.Minute)
}

// PollIntervalDuration parses the poll interval, default two seconds.
func (r Runner) PollIntervalDuration() time.Duration {
	return parseDuration(r.PollInterval, 2*time.Second)
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Default returns a Config populated with documented defaults.
func Default() *Config {
	return &Config{
		Storage: Storage{
			DataDir:     "data",
			ArtifactDir: "artifacts/backtests",
			SQLitePath:  "data/sweeps.db",
		},
		Logging: Logging{Level: "info", Format: "json"},
		Fetch: Fetch{
			StartDate:       "2020-01-01",
			BatchSize:       200,
			RateLimitPerMin: 200,
		},
		Backtest: Backtest{
			InitialEquity:  100_000,
			PeriodsPerYear: 252,
			Risk:           risk.DefaultConfig(),
			Broker:         broker.DefaultConfig(),
		},
		Runner: Runner{
			Addr: "localhost:9190",
		},
	}
}

// Load reads the YAML configuration file at the given path, parses it over
// the defaults, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadOrDefault loads the config at path, falling back to defaults (plus env
// overrides) when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	return Load(path)
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("ARTIFACT_DIR"); v != "" {
		cfg.Storage.ArtifactDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RUNNER_ADDR"); v != "" {
		cfg.Runner.Addr = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	// Canonical Alpaca env vars take priority over the generic ones.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}

// ---------------------------------------------------------------------------
// Sweep documents
// ---------------------------------------------------------------------------

// SweepConfig is the external sweep configuration document: one symbol/date
// range/strategy plus a grid of candidate parameter values.
type SweepConfig struct {
	Symbol   string           `yaml:"symbol"`
	Start    string           `yaml:"start"`
	End      string           `yaml:"end"`
	Strategy string           `yaml:"strategy"`
	Params   map[string][]any `yaml:"params"`

	RiskAgent         string  `yaml:"risk_agent"`          // "none" or "beta_winrate"
	RiskAgentFraction float64 `yaml:"risk_agent_fraction"` // fractional-Kelly scale

	MaxWorkers int    `yaml:"max_workers"`
	Sampler    string `yaml:"sampler"` // grid | random | latin
	Samples    int    `yaml:"samples"` // for random/latin
	Seed       int64  `yaml:"seed"`

	Metric    string `yaml:"metric"` // leaderboard sort metric
	OutputDir string `yaml:"output_dir"`
	DryRun    bool   `yaml:"dry_run"`

	SlippageBps  *float64 `yaml:"slippage_bps,omitempty"`
	FeePerShare  *float64 `yaml:"fee_per_share,omitempty"`
	RiskFrac     *float64 `yaml:"risk_frac,omitempty"`
	MinNotional  *float64 `yaml:"min_notional,omitempty"`
	MaxAttempts  int      `yaml:"max_attempts"`
	RetryBackoff string   `yaml:"retry_backoff"` // duration string, default 1s
}

// LoadSweep reads and validates a sweep configuration document.
func LoadSweep(path string) (*SweepConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc := &SweepConfig{}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parsing sweep config %s: %w", path, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	sc.applyDefaults()
	return sc, nil
}

// Validate checks the required fields of a sweep document.
func (sc *SweepConfig) Validate() error {
	if sc.Symbol == "" {
		return fmt.Errorf("sweep config: symbol is required")
	}
	if sc.Strategy == "" {
		return fmt.Errorf("sweep config: strategy is required")
	}
	if sc.Start == "" {
		return fmt.Errorf("sweep config: start is required")
	}
	if _, err := time.Parse("2006-01-02", sc.Start); err != nil {
		return fmt.Errorf("sweep config: bad start date %q: %w", sc.Start, err)
	}
	if sc.End != "" {
		if _, err := time.Parse("2006-01-02", sc.End); err != nil {
			return fmt.Errorf("sweep config: bad end date %q: %w", sc.End, err)
		}
	}
	switch sc.Sampler {
	case "", "grid", "random", "latin":
	default:
		return fmt.Errorf("sweep config: unknown sampler %q", sc.Sampler)
	}
	return nil
}

func (sc *SweepConfig) applyDefaults() {
	if sc.MaxWorkers <= 0 {
		sc.MaxWorkers = 4
	}
	if sc.Sampler == "" {
		sc.Sampler = "grid"
	}
	if sc.Metric == "" {
		sc.Metric = "sharpe"
	}
	if sc.RiskAgent == "" {
		sc.RiskAgent = "none"
	}
	if sc.RiskAgentFraction <= 0 {
		sc.RiskAgentFraction = 0.5
	}
	if sc.MaxAttempts <= 0 {
		sc.MaxAttempts = 2
	}
	if sc.RetryBackoff == "" {
		sc.RetryBackoff = "1s"
	}
}

// RetryBackoffDuration parses the retry backoff, falling back to one second.
func (sc *SweepConfig) RetryBackoffDuration() time.Duration {
	d, err := time.ParseDuration(sc.RetryBackoff)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// DateRange parses the start/end dates. An empty end means "today".
func (sc *SweepConfig) DateRange() (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01-02", sc.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end := time.Now().UTC().Truncate(24 * time.Hour)
	if sc.End != "" {
		end, err = time.Parse("2006-01-02", sc.End)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}
