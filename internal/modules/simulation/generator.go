// Package simulation draws Monte Carlo annual losses for Life, Health and
// Combined insurance portfolios.
package simulation

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/reinsim/internal/domain"
)

// PCG stream identifiers. The same seed drives Life and Health through
// separate streams so the two books never share draws.
const (
	lifeStream   uint64 = 0x4c494645 // "LIFE"
	healthStream uint64 = 0x484c5448 // "HLTH"
)

// NewSource returns the random source for one sub-portfolio. A nil seed
// yields a randomly seeded source.
func NewSource(seed *uint64, stream uint64) rand.Source {
	if seed == nil {
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return rand.NewPCG(*seed, stream)
}

// GenerateLosses draws params.PolicyCount independent Normal(MeanLoss, StdDev)
// losses per simulated year and returns the per-year totals in simulation
// order. Parameters are validated before any sampling happens.
func GenerateLosses(params domain.LossParams, src rand.Source) (domain.AnnualLossSeries, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = NewSource(nil, lifeStream)
	}

	dist := distuv.Normal{
		Mu:    params.MeanLoss,
		Sigma: params.StdDev,
		Src:   src,
	}

	series := make(domain.AnnualLossSeries, params.SimulatedYears)
	for year := range series {
		total := 0.0
		for i := 0; i < params.PolicyCount; i++ {
			total += dist.Rand()
		}
		series[year] = total
	}

	return series, nil
}

// Generate is GenerateLosses for a Life-style book with an optional seed.
// Generate(n, m, s, y, seed) equals Simulate of a Life config with the same seed.
func Generate(policyCount int, meanLoss, stdDev float64, simulatedYears int, seed *uint64) (domain.AnnualLossSeries, error) {
	params := domain.LossParams{
		PolicyCount:    policyCount,
		MeanLoss:       meanLoss,
		StdDev:         stdDev,
		SimulatedYears: simulatedYears,
	}
	return GenerateLosses(params, NewSource(seed, lifeStream))
}

// HealthParams applies the Health book scaling to base parameters
func HealthParams(base domain.LossParams) domain.LossParams {
	return base.Scaled(domain.HealthMeanFactor, domain.HealthStdDevFactor)
}

// Simulate generates the annual loss series for cfg.
//
// Life uses the base parameters, Health scales them (mean x1.2, std x0.8)
// and Combined adds an independently drawn Life and Health series year by
// year. Life and Health are assumed uncorrelated, so the Combined variance is
// the sum of both variances. With a fixed seed Combined[i] equals
// Life[i] + Health[i] exactly.
func Simulate(cfg domain.PortfolioConfig, seed *uint64) (domain.AnnualLossSeries, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Kind {
	case domain.PortfolioLife:
		return GenerateLosses(cfg.LossParams, NewSource(seed, lifeStream))

	case domain.PortfolioHealth:
		return GenerateLosses(HealthParams(cfg.LossParams), NewSource(seed, healthStream))

	case domain.PortfolioCombined:
		life, err := GenerateLosses(cfg.LossParams, NewSource(seed, lifeStream))
		if err != nil {
			return nil, fmt.Errorf("life component: %w", err)
		}
		health, err := GenerateLosses(HealthParams(cfg.LossParams), NewSource(seed, healthStream))
		if err != nil {
			return nil, fmt.Errorf("health component: %w", err)
		}

		combined := make(domain.AnnualLossSeries, len(life))
		for i := range combined {
			combined[i] = life[i] + health[i]
		}
		return combined, nil

	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownPortfolioKind, cfg.Kind)
	}
}
