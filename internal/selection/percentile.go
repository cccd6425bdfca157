package selection

import (
	"math"
	"sort"
)

// Percentile linear interpolation between closest ranks (R-7).
// h = (n-1)p, result = x[floor(h)] + (h - floor(h)) * (x[floor(h)+1] - x[floor(h)])
// p is clamped to [0, 1]; empty input → NaN
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	switch {
	case p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[len(sorted)-1]
	}

	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// Median 50th percentile
func Median(values []float64) float64 {
	return Percentile(values, 0.5)
}
