package sweep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aitrader/internal/config"
)

func sweepDoc(sampler string, samples int) *config.SweepConfig {
	return &config.SweepConfig{
		Symbol:   "AAPL",
		Start:    "2020-01-01",
		End:      "2021-01-01",
		Strategy: "sma_cross",
		Sampler:  sampler,
		Samples:  samples,
		Seed:     42,
		Params: map[string][]any{
			"fast": {5, 10, 20},
			"slow": {30, 50, 100},
		},
	}
}

func TestGridExpansionOrder(t *testing.T) {
	combos, err := Expand(sweepDoc("grid", 0))
	require.NoError(t, err)
	require.Len(t, combos, 9)

	// Sorted keys, last key fastest: fast is held while slow cycles.
	assert.Equal(t, map[string]any{"fast": 5, "slow": 30}, combos[0])
	assert.Equal(t, map[string]any{"fast": 5, "slow": 50}, combos[1])
	assert.Equal(t, map[string]any{"fast": 5, "slow": 100}, combos[2])
	assert.Equal(t, map[string]any{"fast": 10, "slow": 30}, combos[3])
	assert.Equal(t, map[string]any{"fast": 20, "slow": 100}, combos[8])
}

func TestGridExpansionDeterministic(t *testing.T) {
	a, err := Expand(sweepDoc("grid", 0))
	require.NoError(t, err)
	b, err := Expand(sweepDoc("grid", 0))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRandomSamplerSeeded(t *testing.T) {
	a, err := Expand(sweepDoc("random", 5))
	require.NoError(t, err)
	require.Len(t, a, 5)

	b, err := Expand(sweepDoc("random", 5))
	require.NoError(t, err)
	assert.Equal(t, a, b, "same seed must reproduce the same draw")

	sc := sweepDoc("random", 5)
	sc.Seed = 43
	c, err := Expand(sc)
	require.NoError(t, err)
	assert.NotEqual(t, a, c, "different seed should change the draw")
}

func TestLatinSamplerCoversValues(t *testing.T) {
	combos, err := Expand(sweepDoc("latin", 3))
	require.NoError(t, err)
	require.Len(t, combos, 3)

	// Three draws over three values per key must hit each value once.
	fasts := map[any]int{}
	slows := map[any]int{}
	for _, c := range combos {
		fasts[c["fast"]]++
		slows[c["slow"]]++
	}
	assert.Len(t, fasts, 3)
	assert.Len(t, slows, 3)
}

func TestSamplerErrors(t *testing.T) {
	sc := sweepDoc("random", 0)
	_, err := Expand(sc)
	assert.Error(t, err, "random without samples")

	sc = sweepDoc("bogus", 0)
	_, err = Expand(sc)
	assert.Error(t, err, "unknown sampler")

	sc = sweepDoc("grid", 0)
	sc.Params["empty"] = nil
	_, err = Expand(sc)
	assert.Error(t, err, "empty value list")
}

func TestJobsStableIDs(t *testing.T) {
	jobs, err := Jobs(sweepDoc("grid", 0))
	require.NoError(t, err)
	require.Len(t, jobs, 9)

	assert.Equal(t, "job-0001", jobs[0].ID)
	assert.Equal(t, "job-0009", jobs[8].ID)
	for i, j := range jobs {
		assert.Equal(t, i, j.Index)
		assert.Equal(t, "sma_cross", j.Strategy)
		assert.Equal(t, "AAPL", j.Symbol)
	}
}
