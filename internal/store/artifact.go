package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"aitrader/internal/domain"
)

// ArtifactWriter persists one run's outputs under a deterministic directory:
//
//	<root>/<strategy>/<SYMBOL>/<param-hash>/
//	  equity.parquet   per-bar equity curve
//	  trades.parquet   closed round-trips
//	  summary.json     params + metrics
//
// The directory is keyed by the parameter hash, so re-running the same job
// overwrites its own artifacts instead of accumulating copies.
type ArtifactWriter struct {
	Root string
}

// NewArtifactWriter creates an ArtifactWriter rooted at the given directory.
func NewArtifactWriter(root string) *ArtifactWriter {
	return &ArtifactWriter{Root: root}
}

// EquityRecord is the Parquet schema for equity curve points.
type EquityRecord struct {
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Equity    float64 `parquet:"equity"`
	Drawdown  float64 `parquet:"drawdown"`
}

// TradeRecord is the Parquet schema for closed round-trip trades.
type TradeRecord struct {
	Symbol     string  `parquet:"symbol"`
	Direction  string  `parquet:"direction"`
	Qty        float64 `parquet:"qty"`
	EntryTime  int64   `parquet:"entry_time,timestamp(millisecond)"`
	ExitTime   int64   `parquet:"exit_time,timestamp(millisecond)"`
	EntryPrice float64 `parquet:"entry_price"`
	ExitPrice  float64 `parquet:"exit_price"`
	PnL        float64 `parquet:"pnl"`
	Fees       float64 `parquet:"fees"`
	BarsHeld   int32   `parquet:"bars_held"`
	ExitReason string  `parquet:"exit_reason"`
}

// runSummary is the shape of summary.json. GeneratedAt records when the run
// was written; the directory path itself stays timestamp-free so a rerun of
// the same configuration overwrites its artifacts in place.
type runSummary struct {
	Strategy    string                 `json:"strategy"`
	Symbol      string                 `json:"symbol"`
	Params      map[string]any         `json:"params"`
	GeneratedAt time.Time              `json:"generated_at"`
	Metrics     *domain.MetricsSummary `json:"metrics"`
}

// ParamHash returns a short stable hash of the parameter set. Map keys are
// sorted by the JSON encoder, so equal parameter sets hash identically
// regardless of insertion order.
func ParamHash(params map[string]any) string {
	if params == nil {
		params = map[string]any{}
	}
	blob, err := json.Marshal(params)
	if err != nil {
		blob = []byte(fmt.Sprintf("%v", params))
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])[:12]
}

// Dir returns the artifact directory for a run without creating it.
func (w *ArtifactWriter) Dir(strategy, symbol string, params map[string]any) string {
	return filepath.Join(w.Root, strategy, strings.ToUpper(symbol), ParamHash(params))
}

// Write persists the equity curve, trades, and summary for one run and
// returns the artifact directory.
func (w *ArtifactWriter) Write(strategy, symbol string, params map[string]any,
	curve []domain.EquityPoint, trades []domain.Trade, metrics *domain.MetricsSummary) (string, error) {

	dir := w.Dir(strategy, symbol, params)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating artifact dir: %w", err)
	}

	eq := make([]EquityRecord, len(curve))
	for i, pt := range curve {
		eq[i] = EquityRecord{
			Timestamp: pt.Timestamp.UnixMilli(),
			Equity:    pt.Equity,
			Drawdown:  pt.Drawdown,
		}
	}
	if err := writeParquetFile(filepath.Join(dir, "equity.parquet"), eq); err != nil {
		return "", fmt.Errorf("writing equity curve: %w", err)
	}

	tr := make([]TradeRecord, len(trades))
	for i, t := range trades {
		tr[i] = TradeRecord{
			Symbol:     t.Symbol,
			Direction:  string(t.Direction),
			Qty:        t.Qty,
			EntryTime:  t.EntryTime.UnixMilli(),
			ExitTime:   t.ExitTime.UnixMilli(),
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			PnL:        t.PnL,
			Fees:       t.Fees,
			BarsHeld:   int32(t.BarsHeld),
			ExitReason: t.ExitReason,
		}
	}
	if err := writeParquetFile(filepath.Join(dir, "trades.parquet"), tr); err != nil {
		return "", fmt.Errorf("writing trades: %w", err)
	}

	summary := runSummary{
		Strategy:    strategy,
		Symbol:      symbol,
		Params:      params,
		GeneratedAt: time.Now().UTC(),
		Metrics:     metrics,
	}
	blob, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "summary.json"), append(blob, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("writing summary: %w", err)
	}
	return dir, nil
}

// ReadEquity loads the equity curve back from an artifact directory.
func (w *ArtifactWriter) ReadEquity(dir string) ([]domain.EquityPoint, error) {
	records, err := readParquetFile[EquityRecord](filepath.Join(dir, "equity.parquet"))
	if err != nil {
		return nil, err
	}
	out := make([]domain.EquityPoint, len(records))
	for i, r := range records {
		out[i] = domain.EquityPoint{
			Timestamp: time.UnixMilli(r.Timestamp).UTC(),
			Equity:    r.Equity,
			Drawdown:  r.Drawdown,
		}
	}
	return out, nil
}
