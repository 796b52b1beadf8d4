// Package charts builds the chart data shown next to a simulated loss series:
// the histogram, a smoothed density curve and a rolling trend.
package charts

import (
	"github.com/aristath/reinsim/internal/domain"
	"github.com/aristath/reinsim/pkg/formulas"
)

// Defaults used when Options leaves a field at zero or sets it out of range
const (
	DefaultBins   = 30
	DefaultPoints = 200
	DefaultWindow = 5
)

// Upper limits on the resolution of a Distribution
const (
	MaxBins   = 1000
	MaxPoints = 5000
)

// Options controls the resolution of a Distribution
type Options struct {
	Bins   int
	Points int
	Window int
}

// withDefaults replaces invalid counts by the defaults and caps oversized ones
func (o Options) withDefaults() Options {
	if o.Bins < 1 {
		o.Bins = DefaultBins
	}
	if o.Bins > MaxBins {
		o.Bins = MaxBins
	}
	if o.Points < 2 {
		o.Points = DefaultPoints
	}
	if o.Points > MaxPoints {
		o.Points = MaxPoints
	}
	if o.Window < 1 {
		o.Window = DefaultWindow
	}
	return o
}

// Bin is a single histogram bar covering [Lower, Upper)
// The last bin also includes its upper edge.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// DensityPoint is one point of the kernel density curve
type DensityPoint struct {
	X       float64 `json:"x"`
	Density float64 `json:"density"`
}

// TrendPoint is the moving average ending at Year (1-based)
type TrendPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Distribution is the chart payload for one annual loss series
type Distribution struct {
	Bins      []Bin          `json:"bins"`
	Density   []DensityPoint `json:"density,omitempty"`
	Bandwidth float64        `json:"bandwidth,omitempty"`
	Trend     []TrendPoint   `json:"trend,omitempty"`
	Window    int            `json:"window,omitempty"`
}

// BuildDistribution computes the histogram, density and trend of series.
// Density is omitted for fewer than two values or zero spread; Trend is
// omitted when the series is shorter than the window.
func BuildDistribution(series []float64, opts Options) (Distribution, error) {
	if len(series) == 0 {
		return Distribution{}, domain.ErrEmptySeries
	}
	opts = opts.withDefaults()

	var dist Distribution

	counts, edges := formulas.Histogram(series, opts.Bins)
	dist.Bins = make([]Bin, len(counts))
	for i, c := range counts {
		dist.Bins[i] = Bin{Lower: edges[i], Upper: edges[i+1], Count: int(c)}
	}

	if h := formulas.ScottBandwidth(series); h > 0 {
		grid := formulas.KDEGrid(series, h, opts.Points)
		values := formulas.GaussianKDE(series, grid, h)
		dist.Density = make([]DensityPoint, len(grid))
		for i := range grid {
			dist.Density[i] = DensityPoint{X: grid[i], Density: values[i]}
		}
		dist.Bandwidth = h
	}

	if trend := formulas.RollingMean(series, opts.Window); trend != nil {
		dist.Trend = make([]TrendPoint, len(trend))
		for i, v := range trend {
			dist.Trend[i] = TrendPoint{Year: i + opts.Window, Value: v}
		}
		dist.Window = opts.Window
	}

	return dist, nil
}
