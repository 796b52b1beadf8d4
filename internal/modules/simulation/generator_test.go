package simulation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/reinsim/internal/domain"
	"github.com/aristath/reinsim/pkg/formulas"
)

func seedPtr(v uint64) *uint64 {
	return &v
}

func config(kind domain.PortfolioKind, policies int, mean, std float64, years int) domain.PortfolioConfig {
	return domain.PortfolioConfig{
		Kind: kind,
		LossParams: domain.LossParams{
			PolicyCount:    policies,
			MeanLoss:       mean,
			StdDev:         std,
			SimulatedYears: years,
		},
	}
}

func TestGenerate_ZeroStdDevIsDeterministic(t *testing.T) {
	series, err := Generate(1, 5000, 0, 3, seedPtr(1))
	require.NoError(t, err)

	assert.Equal(t, domain.AnnualLossSeries{5000, 5000, 5000}, series)
}

func TestGenerate_LengthMatchesYears(t *testing.T) {
	for _, years := range []int{1, 2, 17, 50} {
		series, err := Generate(100, 5000, 2000, years, nil)
		require.NoError(t, err)
		assert.Len(t, series, years)
	}
}

func TestGenerate_SameSeedReproduces(t *testing.T) {
	first, err := Generate(1000, 5000, 2000, 20, seedPtr(42))
	require.NoError(t, err)
	second, err := Generate(1000, 5000, 2000, 20, seedPtr(42))
	require.NoError(t, err)
	other, err := Generate(1000, 5000, 2000, 20, seedPtr(43))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
}

func TestGenerate_YearsAreIndependentDraws(t *testing.T) {
	series, err := Generate(10, 5000, 2000, 5, seedPtr(7))
	require.NoError(t, err)

	for i := 1; i < len(series); i++ {
		assert.NotEqual(t, series[0], series[i])
	}
}

func TestGenerate_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		policies int
		std      float64
		years    int
	}{
		{name: "zero policies", policies: 0, std: 100, years: 1},
		{name: "zero years", policies: 1, std: 100, years: 0},
		{name: "negative std dev", policies: 1, std: -1, years: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := Generate(tt.policies, 5000, tt.std, tt.years, seedPtr(1))
			assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
			assert.Nil(t, series)
		})
	}
}

func TestGenerate_LargePortfolioMoments(t *testing.T) {
	// 10,000 policies, mean 5000, std 2000, one year per run, 200 seeded runs
	const runs = 200
	totals := make([]float64, runs)
	for i := range totals {
		series, err := Generate(10000, 5000, 2000, 1, seedPtr(uint64(i+1)))
		require.NoError(t, err)
		totals[i] = series[0]
	}

	mean := formulas.Mean(totals)
	std := formulas.SampleStdDev(totals)

	// Standard error of the mean is 200,000 / sqrt(200) ~ 14,142
	assert.InDelta(t, 50_000_000, mean, 5*14_142)
	assert.InEpsilon(t, 200_000, std, 0.2)
}

func TestSimulate_LifeMatchesGenerate(t *testing.T) {
	cfg := config(domain.PortfolioLife, 500, 5000, 2000, 10)

	life, err := Simulate(cfg, seedPtr(99))
	require.NoError(t, err)
	direct, err := Generate(500, 5000, 2000, 10, seedPtr(99))
	require.NoError(t, err)

	assert.Equal(t, direct, life)
}

func TestSimulate_HealthScalingLaw(t *testing.T) {
	const policies = 1000
	cfg := config(domain.PortfolioHealth, policies, 5000, 2000, 400)

	series, err := Simulate(cfg, seedPtr(2024))
	require.NoError(t, err)
	require.Len(t, series, 400)

	expectedMean := 1.2 * 5000 * policies
	expectedStd := 0.8 * 2000 * math.Sqrt(policies)

	assert.InEpsilon(t, expectedMean, formulas.Mean(series), 0.01)
	assert.InEpsilon(t, expectedStd, formulas.SampleStdDev(series), 0.15)
}

func TestSimulate_HealthZeroStdDev(t *testing.T) {
	series, err := Simulate(config(domain.PortfolioHealth, 2, 5000, 0, 2), seedPtr(1))
	require.NoError(t, err)

	for _, v := range series {
		assert.InDelta(t, 12000.0, v, 1e-9)
	}
}

func TestSimulate_CombinedIsLifePlusHealth(t *testing.T) {
	seed := seedPtr(31337)

	life, err := Simulate(config(domain.PortfolioLife, 300, 5000, 2000, 25), seed)
	require.NoError(t, err)
	health, err := Simulate(config(domain.PortfolioHealth, 300, 5000, 2000, 25), seed)
	require.NoError(t, err)
	combined, err := Simulate(config(domain.PortfolioCombined, 300, 5000, 2000, 25), seed)
	require.NoError(t, err)

	require.Len(t, combined, 25)
	for i := range combined {
		assert.Equal(t, life[i]+health[i], combined[i], "year %d", i)
	}
}

func TestSimulate_CombinedMomentsAddUp(t *testing.T) {
	const policies = 400
	series, err := Simulate(config(domain.PortfolioCombined, policies, 5000, 2000, 400), seedPtr(5))
	require.NoError(t, err)

	expectedMean := (5000 + 6000) * float64(policies)
	expectedStd := math.Sqrt(policies * (2000*2000 + 1600*1600))

	assert.InEpsilon(t, expectedMean, formulas.Mean(series), 0.01)
	assert.InEpsilon(t, expectedStd, formulas.SampleStdDev(series), 0.15)
}

func TestSimulate_UnknownKind(t *testing.T) {
	_, err := Simulate(config(domain.PortfolioKind(0), 10, 5000, 2000, 1), seedPtr(1))
	assert.ErrorIs(t, err, domain.ErrUnknownPortfolioKind)

	_, err = Simulate(config(domain.PortfolioKind(4), 10, 5000, 2000, 1), seedPtr(1))
	assert.ErrorIs(t, err, domain.ErrUnknownPortfolioKind)
}

func TestSimulate_InvalidConfigurationBeforeSampling(t *testing.T) {
	_, err := Simulate(config(domain.PortfolioCombined, 0, 5000, 2000, 1), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestGenerateLosses_NilSourceStillWorks(t *testing.T) {
	series, err := GenerateLosses(domain.LossParams{PolicyCount: 3, MeanLoss: 10, StdDev: 1, SimulatedYears: 4}, nil)
	require.NoError(t, err)
	assert.Len(t, series, 4)
}
