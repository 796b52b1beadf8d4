package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/reinsim/internal/domain"
	"github.com/aristath/reinsim/internal/modules/simulation"
)

func seeded(v uint64) *uint64 { return &v }

func TestBuildDistribution_Defaults(t *testing.T) {
	series, err := simulation.Generate(100, 5000, 2000, 50, seeded(7))
	require.NoError(t, err)

	dist, err := BuildDistribution(series, Options{})
	require.NoError(t, err)

	assert.Len(t, dist.Bins, DefaultBins)
	total := 0
	for _, b := range dist.Bins {
		total += b.Count
	}
	assert.Equal(t, len(series), total)
	assert.Equal(t, dist.Bins[0].Upper, dist.Bins[1].Lower)

	require.Len(t, dist.Density, DefaultPoints)
	assert.Greater(t, dist.Bandwidth, 0.0)

	// Trapezoidal integral of the density is close to one
	area := 0.0
	for i := 1; i < len(dist.Density); i++ {
		dx := dist.Density[i].X - dist.Density[i-1].X
		area += dx * (dist.Density[i].Density + dist.Density[i-1].Density) / 2
	}
	assert.InDelta(t, 1.0, area, 0.01)

	require.Len(t, dist.Trend, len(series)-DefaultWindow+1)
	assert.Equal(t, DefaultWindow, dist.Trend[0].Year)
	assert.Equal(t, len(series), dist.Trend[len(dist.Trend)-1].Year)
}

func TestBuildDistribution_ConstantSeries(t *testing.T) {
	dist, err := BuildDistribution([]float64{5000, 5000, 5000}, Options{Bins: 10, Window: 2})
	require.NoError(t, err)

	require.Len(t, dist.Bins, 1)
	assert.Equal(t, Bin{Lower: 5000, Upper: 5000, Count: 3}, dist.Bins[0])
	assert.Nil(t, dist.Density)
	require.Len(t, dist.Trend, 2)
	assert.Equal(t, 5000.0, dist.Trend[1].Value)
}

func TestBuildDistribution_SingleYear(t *testing.T) {
	dist, err := BuildDistribution([]float64{42}, Options{})
	require.NoError(t, err)

	assert.Len(t, dist.Bins, 1)
	assert.Nil(t, dist.Density)
	assert.Nil(t, dist.Trend)
	assert.Zero(t, dist.Window)
}

func TestBuildDistribution_Empty(t *testing.T) {
	_, err := BuildDistribution(nil, Options{})
	assert.ErrorIs(t, err, domain.ErrEmptySeries)
}

func TestOptions_WithDefaults(t *testing.T) {
	tests := []struct {
		name     string
		in       Options
		expected Options
	}{
		{name: "zero", in: Options{}, expected: Options{Bins: 30, Points: 200, Window: 5}},
		{name: "negative", in: Options{Bins: -1, Points: 1, Window: -3}, expected: Options{Bins: 30, Points: 200, Window: 5}},
		{name: "custom", in: Options{Bins: 12, Points: 50, Window: 3}, expected: Options{Bins: 12, Points: 50, Window: 3}},
		{name: "oversized", in: Options{Bins: 2000000, Points: 2000000, Window: 3}, expected: Options{Bins: MaxBins, Points: MaxPoints, Window: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.in.withDefaults())
		})
	}
}
