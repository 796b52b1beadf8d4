package formulas

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// ScottBandwidth returns Scott's rule-of-thumb bandwidth sigma * n^(-1/5)
func ScottBandwidth(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return SampleStdDev(data) * math.Pow(float64(len(data)), -1.0/5.0)
}

// KDEGrid returns points evenly spaced grid values covering the data plus
// three bandwidths on either side.
func KDEGrid(data []float64, bandwidth float64, points int) []float64 {
	if len(data) == 0 || points < 2 {
		return nil
	}
	lo := Min(data) - 3*bandwidth
	hi := Max(data) + 3*bandwidth
	return floats.Span(make([]float64, points), lo, hi)
}

// GaussianKDE evaluates a Gaussian kernel density estimate of data at each
// grid value. A non-positive bandwidth yields nil.
func GaussianKDE(data, grid []float64, bandwidth float64) []float64 {
	if len(data) == 0 || bandwidth <= 0 {
		return nil
	}

	n := float64(len(data))
	density := make([]float64, len(grid))
	for i, x := range grid {
		sum := 0.0
		for _, xi := range data {
			sum += distuv.UnitNormal.Prob((x - xi) / bandwidth)
		}
		density[i] = sum / (n * bandwidth)
	}
	return density
}
