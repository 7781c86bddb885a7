// Package stats holds the small descriptive statistics shared by the scoring
// and analytics packages.
package stats

import "math"

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// MeanStd returns the mean and the population standard deviation of values.
// Both are 0 for an empty slice; the deviation is 0 for a single value.
func MeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean = Mean(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(values)))
}

// Float returns a pointer to v, used for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}
