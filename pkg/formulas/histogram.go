package formulas

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Histogram splits data into equal-width bins spanning [min, max].
// It returns the bin counts and the len(counts)+1 bin edges. The maximum
// value is counted in the last bin. When every value is equal a single bin
// holds all of them.
func Histogram(data []float64, bins int) (counts []float64, edges []float64) {
	if len(data) == 0 || bins < 1 {
		return nil, nil
	}

	sorted := Sorted(data)
	lo, hi := sorted[0], sorted[len(sorted)-1]

	if lo == hi {
		bins = 1
	}

	edges = make([]float64, bins+1)
	if bins == 1 {
		edges[0], edges[1] = lo, hi
	} else {
		floats.Span(edges, lo, hi)
	}

	// stat.Histogram wants the top divider strictly above the largest value
	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	dividers[len(dividers)-1] = math.Nextafter(hi, math.Inf(1))

	counts = stat.Histogram(nil, dividers, sorted, nil)
	return counts, edges
}
