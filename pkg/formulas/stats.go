// Package formulas provides the statistics used to summarise simulated loss series.
package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// SampleStdDev calculates the sample standard deviation (divisor n-1).
// A single observation has no spread, so n < 2 returns 0.
func SampleStdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Max returns the largest value, or 0 for an empty slice
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return floats.Max(data)
}

// Min returns the smallest value, or 0 for an empty slice
func Min(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return floats.Min(data)
}

// Sorted returns an ascending copy of data
func Sorted(data []float64) []float64 {
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	return sorted
}

// Percentile returns the p-th percentile (0..100) of data using linear
// interpolation between closest ranks: rank = p/100 * (n-1), zero-indexed.
// data is not modified.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return PercentileSorted(Sorted(data), p)
}

// PercentileSorted is Percentile for input that is already sorted ascending
func PercentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	p = math.Max(0, math.Min(100, p))
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}

	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Median returns the 50th percentile
func Median(data []float64) float64 {
	return Percentile(data, 50)
}

// TailMean returns the average of the values at or above the p-th percentile
// (expected shortfall of a loss distribution).
func TailMean(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}

	sorted := Sorted(data)
	threshold := PercentileSorted(sorted, p)

	idx := sort.SearchFloat64s(sorted, threshold)
	tail := sorted[idx:]
	if len(tail) == 0 {
		return threshold
	}
	return stat.Mean(tail, nil)
}
