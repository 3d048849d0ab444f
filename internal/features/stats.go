package features

import (
	"math"
	"sort"
)

// sortedValid returns the non-NaN values of values in ascending order.
func sortedValid(values []float64) []float64 {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	sort.Float64s(sorted)
	return sorted
}

// percentileValue interpolates linearly between the two closest ranks of a sorted
// slice, with rank = p*(n-1). It returns NaN for an empty slice.
func percentileValue(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	index := p * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

// Quantile returns the p-quantile of values, ignoring NaN.
func Quantile(values []float64, p float64) float64 {
	return percentileValue(sortedValid(values), p)
}

// Median returns the median of values, ignoring NaN.
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}
