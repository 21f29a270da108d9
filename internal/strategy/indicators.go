package strategy

import (
	"math"

	"aitrader/internal/domain"
)

// Closes extracts the close series from a bar window.
func Closes(window []domain.Bar) []float64 {
	out := make([]float64, len(window))
	for i, b := range window {
		out[i] = b.Close
	}
	return out
}

// SMA returns the simple moving average of the last n values. It returns NaN
// when fewer than n values are available.
func SMA(xs []float64, n int) float64 {
	if n <= 0 || len(xs) < n {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs[len(xs)-n:] {
		sum += x
	}
	return sum / float64(n)
}

// EMA returns the exponential moving average over the whole series with the
// given span, seeded from the first value. NaN when the series is empty.
func EMA(xs []float64, span int) float64 {
	if len(xs) == 0 || span <= 0 {
		return math.NaN()
	}
	alpha := 2.0 / (float64(span) + 1.0)
	ema := xs[0]
	for _, x := range xs[1:] {
		ema = alpha*x + (1-alpha)*ema
	}
	return ema
}

// ATR returns the average true range over the last n bars. True range uses
// the previous close, so n+1 bars are required; NaN otherwise. The result is
// floored at a small positive value so stop distances never collapse to zero.
func ATR(window []domain.Bar, n int) float64 {
	if n <= 0 || len(window) < n+1 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(window) - n; i < len(window); i++ {
		b := window[i]
		prevClose := window[i-1].Close
		tr := b.High - b.Low
		tr = math.Max(tr, math.Abs(b.High-prevClose))
		tr = math.Max(tr, math.Abs(b.Low-prevClose))
		sum += tr
	}
	return math.Max(sum/float64(n), 1e-6)
}

// HighestHigh returns the maximum high over the last n bars, excluding the
// final skip bars. skip=1 gives the classic breakout reference that ignores
// the current bar. NaN when the window is too short.
func HighestHigh(window []domain.Bar, n, skip int) float64 {
	end := len(window) - skip
	if n <= 0 || end < n {
		return math.NaN()
	}
	hh := math.Inf(-1)
	for _, b := range window[end-n : end] {
		if b.High > hh {
			hh = b.High
		}
	}
	return hh
}

// HighestClose is HighestHigh over the close series, for channels built from
// closes rather than wicks.
func HighestClose(window []domain.Bar, n, skip int) float64 {
	end := len(window) - skip
	if n <= 0 || end < n {
		return math.NaN()
	}
	hc := math.Inf(-1)
	for _, b := range window[end-n : end] {
		if b.Close > hc {
			hc = b.Close
		}
	}
	return hc
}

// ROC returns the n-period rate of change of the series, NaN when too short.
func ROC(xs []float64, n int) float64 {
	if n <= 0 || len(xs) < n+1 {
		return math.NaN()
	}
	base := xs[len(xs)-1-n]
	if base == 0 {
		return math.NaN()
	}
	return xs[len(xs)-1]/base - 1
}

// PercentileRank returns the fraction of the last n values that are less than
// or equal to the final value. NaN when too short.
func PercentileRank(xs []float64, n int) float64 {
	if n <= 0 || len(xs) < n {
		return math.NaN()
	}
	tail := xs[len(xs)-n:]
	last := tail[len(tail)-1]
	count := 0
	for _, x := range tail {
		if x <= last {
			count++
		}
	}
	return float64(count) / float64(n)
}

// StdDev returns the population standard deviation of the last n values.
func StdDev(xs []float64, n int) float64 {
	if n <= 0 || len(xs) < n {
		return math.NaN()
	}
	tail := xs[len(xs)-n:]
	mean := 0.0
	for _, x := range tail {
		mean += x
	}
	mean /= float64(n)
	sum := 0.0
	for _, x := range tail {
		d := x - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

// ZScore returns how many standard deviations the final value sits from the
// n-period mean. NaN when the deviation is zero or the window is too short.
func ZScore(xs []float64, n int) float64 {
	std := StdDev(xs, n)
	if math.IsNaN(std) || std == 0 {
		return math.NaN()
	}
	return (xs[len(xs)-1] - SMA(xs, n)) / std
}
