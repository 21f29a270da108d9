// Package sweep expands parameter grids into jobs and schedules them across
// a local worker pool or a remote runner, reducing results into a leaderboard.
package sweep

import (
	"fmt"
	"math/rand"
	"sort"

	"aitrader/internal/config"
	"aitrader/internal/domain"
)

// Expand produces the parameter combinations for a sweep document. The
// expansion is deterministic: keys are visited in sorted order with the last
// key varying fastest, and the random and latin samplers draw from the
// configured seed. Job ordering therefore never depends on map iteration.
func Expand(sc *config.SweepConfig) ([]map[string]any, error) {
	keys := make([]string, 0, len(sc.Params))
	for k := range sc.Params {
		if len(sc.Params[k]) == 0 {
			return nil, fmt.Errorf("sweep param %q has no values", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	switch sc.Sampler {
	case "", "grid":
		return expandGrid(keys, sc.Params), nil
	case "random":
		return sampleRandom(keys, sc.Params, sc.Samples, sc.Seed)
	case "latin":
		return sampleLatin(keys, sc.Params, sc.Samples, sc.Seed)
	default:
		return nil, fmt.Errorf("unknown sampler %q", sc.Sampler)
	}
}

// Jobs expands the sweep into ordered jobs with stable IDs. The same document
// always yields the same job list, so remote retries and re-runs line up.
func Jobs(sc *config.SweepConfig) ([]domain.SweepJob, error) {
	combos, err := Expand(sc)
	if err != nil {
		return nil, err
	}
	jobs := make([]domain.SweepJob, len(combos))
	for i, params := range combos {
		jobs[i] = domain.SweepJob{
			ID:       fmt.Sprintf("job-%04d", i+1),
			Index:    i,
			Strategy: sc.Strategy,
			Symbol:   sc.Symbol,
			Params:   params,
			Status:   domain.JobQueued,
		}
	}
	return jobs, nil
}

// expandGrid is the full Cartesian product.
func expandGrid(keys []string, params map[string][]any) []map[string]any {
	total := 1
	for _, k := range keys {
		total *= len(params[k])
	}

	out := make([]map[string]any, 0, total)
	idx := make([]int, len(keys))
	for {
		combo := make(map[string]any, len(keys))
		for i, k := range keys {
			combo[k] = params[k][idx[i]]
		}
		out = append(out, combo)

		// Odometer increment, last key fastest.
		i := len(keys) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(params[keys[i]]) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			break
		}
	}
	return out
}

// sampleRandom draws n independent combinations from the grid.
func sampleRandom(keys []string, params map[string][]any, n int, seed int64) ([]map[string]any, error) {
	if n <= 0 {
		return nil, fmt.Errorf("random sampler requires samples > 0")
	}
	rng := rand.New(rand.NewSource(seed))
	out := make([]map[string]any, n)
	for i := range out {
		combo := make(map[string]any, len(keys))
		for _, k := range keys {
			vals := params[k]
			combo[k] = vals[rng.Intn(len(vals))]
		}
		out[i] = combo
	}
	return out, nil
}

// sampleLatin draws n combinations, cycling each key's values through an
// independent shuffled order so every value appears at a near-equal rate.
func sampleLatin(keys []string, params map[string][]any, n int, seed int64) ([]map[string]any, error) {
	if n <= 0 {
		return nil, fmt.Errorf("latin sampler requires samples > 0")
	}
	rng := rand.New(rand.NewSource(seed))

	perms := make(map[string][]int, len(keys))
	for _, k := range keys {
		perms[k] = rng.Perm(len(params[k]))
	}

	out := make([]map[string]any, n)
	for i := range out {
		combo := make(map[string]any, len(keys))
		for _, k := range keys {
			vals := params[k]
			perm := perms[k]
			combo[k] = vals[perm[i%len(perm)]]
		}
		out[i] = combo
	}
	return out, nil
}
