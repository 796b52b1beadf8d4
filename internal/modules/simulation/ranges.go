package simulation

import (
	"math"

	"github.com/aristath/reinsim/internal/domain"
)

// ParameterRange is the accepted input range of one request parameter
type ParameterRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// Contains reports whether v lies within [Min, Max]
func (r ParameterRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// InputRanges are the ranges offered to interactive users. The generator
// itself only enforces the core invariants.
type InputRanges struct {
	PolicyCount    ParameterRange `json:"policy_count"`
	MeanLoss       ParameterRange `json:"mean_loss"`
	StdDev         ParameterRange `json:"std_dev"`
	SimulatedYears ParameterRange `json:"simulated_years"`
}

// DefaultInputRanges returns the dashboard ranges and defaults
func DefaultInputRanges() InputRanges {
	return InputRanges{
		PolicyCount:    ParameterRange{Min: 100, Max: 10000, Step: 100, Default: 1000},
		MeanLoss:       ParameterRange{Min: 1000, Max: 20000, Step: 500, Default: 5000},
		StdDev:         ParameterRange{Min: 500, Max: 10000, Step: 100, Default: 2000},
		SimulatedYears: ParameterRange{Min: 1, Max: 50, Step: 1, Default: 1},
	}
}

// DefaultConfig returns a config of the given kind with every parameter at its default
func (r InputRanges) DefaultConfig(kind domain.PortfolioKind) domain.PortfolioConfig {
	return domain.PortfolioConfig{
		Kind: kind,
		LossParams: domain.LossParams{
			PolicyCount:    int(r.PolicyCount.Default),
			MeanLoss:       r.MeanLoss.Default,
			StdDev:         r.StdDev.Default,
			SimulatedYears: int(r.SimulatedYears.Default),
		},
	}
}

// KindInfo describes a portfolio kind and how its parameters derive from the inputs.
// For Combined the factors describe the per-policy sum of both books, assuming
// Life and Health are uncorrelated.
type KindInfo struct {
	Name           string  `json:"name"`
	MeanFactor     float64 `json:"mean_factor"`
	StdDevFactor   float64 `json:"std_dev_factor"`
	CombinesLife   bool    `json:"combines_life"`
	CombinesHealth bool    `json:"combines_health"`
	Description    string  `json:"description"`
}

// Kinds lists every portfolio kind in display order
func Kinds() []KindInfo {
	infos := make([]KindInfo, 0, len(domain.AllPortfolioKinds))
	for _, kind := range domain.AllPortfolioKinds {
		info := KindInfo{Name: kind.String()}

		switch kind {
		case domain.PortfolioLife:
			info.MeanFactor = 1
			info.StdDevFactor = 1
			info.CombinesLife = true
			info.Description = "Base parameters as entered"
		case domain.PortfolioHealth:
			info.MeanFactor = domain.HealthMeanFactor
			info.StdDevFactor = domain.HealthStdDevFactor
			info.CombinesHealth = true
			info.Description = "Mean x1.2, std dev x0.8"
		case domain.PortfolioCombined:
			info.MeanFactor = 1 + domain.HealthMeanFactor
			info.StdDevFactor = math.Sqrt(1 + domain.HealthStdDevFactor*domain.HealthStdDevFactor)
			info.CombinesLife = true
			info.CombinesHealth = true
			info.Description = "Independent Life and Health books summed per year"
		}

		infos = append(infos, info)
	}
	return infos
}
