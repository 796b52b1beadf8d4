// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// PortfolioKind identifies the insurance book being simulated
type PortfolioKind int

const (
	// PortfolioLife is the base book; its parameters are used as entered
	PortfolioLife PortfolioKind = iota + 1
	// PortfolioHealth scales the base mean by 1.2 and the base std dev by 0.8
	PortfolioHealth
	// PortfolioCombined sums independent Life and Health series per year
	PortfolioCombined
)

// Health book scaling relative to the base (Life) parameters.
const (
	HealthMeanFactor   = 1.2
	HealthStdDevFactor = 0.8
)

// AllPortfolioKinds lists every kind in display order
var AllPortfolioKinds = []PortfolioKind{PortfolioLife, PortfolioHealth, PortfolioCombined}

// String returns the display name of the kind
func (k PortfolioKind) String() string {
	switch k {
	case PortfolioLife:
		return "Life"
	case PortfolioHealth:
		return "Health"
	case PortfolioCombined:
		return "Combined"
	default:
		return fmt.Sprintf("PortfolioKind(%d)", int(k))
	}
}

// Valid reports whether k is one of the known kinds
func (k PortfolioKind) Valid() bool {
	switch k {
	case PortfolioLife, PortfolioHealth, PortfolioCombined:
		return true
	default:
		return false
	}
}

// ParsePortfolioKind parses a kind name case-insensitively
func ParsePortfolioKind(s string) (PortfolioKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "life":
		return PortfolioLife, nil
	case "health":
		return PortfolioHealth, nil
	case "combined":
		return PortfolioCombined, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPortfolioKind, s)
	}
}

// MarshalText encodes the kind by name (used by JSON and msgpack)
func (k PortfolioKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPortfolioKind, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name
func (k *PortfolioKind) UnmarshalText(text []byte) error {
	parsed, err := ParsePortfolioKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// LossParams are the inputs of a single loss generation pass
type LossParams struct {
	PolicyCount    int     `json:"policy_count" msgpack:"policy_count"`
	MeanLoss       float64 `json:"mean_loss" msgpack:"mean_loss"`
	StdDev         float64 `json:"std_dev" msgpack:"std_dev"`
	SimulatedYears int     `json:"simulated_years" msgpack:"simulated_years"`
}

// Validate checks the core invariants. It does not apply UI ranges.
func (p LossParams) Validate() error {
	if p.PolicyCount < 1 {
		return fmt.Errorf("%w: policy_count must be >= 1, got %d", ErrInvalidConfiguration, p.PolicyCount)
	}
	if p.SimulatedYears < 1 {
		return fmt.Errorf("%w: simulated_years must be >= 1, got %d", ErrInvalidConfiguration, p.SimulatedYears)
	}
	if math.IsNaN(p.StdDev) || math.IsInf(p.StdDev, 0) || p.StdDev < 0 {
		return fmt.Errorf("%w: std_dev must be a finite value >= 0, got %v", ErrInvalidConfiguration, p.StdDev)
	}
	if math.IsNaN(p.MeanLoss) || math.IsInf(p.MeanLoss, 0) {
		return fmt.Errorf("%w: mean_loss must be finite, got %v", ErrInvalidConfiguration, p.MeanLoss)
	}
	return nil
}

// Scaled returns the parameters with mean and std dev multiplied by the given factors
func (p LossParams) Scaled(meanFactor, stdFactor float64) LossParams {
	p.MeanLoss *= meanFactor
	p.StdDev *= stdFactor
	return p
}

// PortfolioConfig is a complete simulation request
type PortfolioConfig struct {
	Kind PortfolioKind `json:"portfolio" msgpack:"portfolio"`
	LossParams
}

// Validate checks the kind and the core invariants
func (c PortfolioConfig) Validate() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownPortfolioKind, int(c.Kind))
	}
	return c.LossParams.Validate()
}

// AnnualLossSeries holds one aggregate loss per simulated year, in simulation order
type AnnualLossSeries []float64

// Len returns the number of simulated years
func (s AnnualLossSeries) Len() int {
	return len(s)
}

// Values returns a copy of the underlying values
func (s AnnualLossSeries) Values() []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}

// RiskSummary holds descriptive statistics of an annual loss series
type RiskSummary struct {
	Mean   float64 `json:"mean" msgpack:"mean"`
	Median float64 `json:"median" msgpack:"median"`
	Max    float64 `json:"max" msgpack:"max"`
	StdDev float64 `json:"std_dev" msgpack:"std_dev"`
	VaR995 float64 `json:"var_995" msgpack:"var_995"`
}

// Run is a completed simulation together with its derived summary
type Run struct {
	CreatedAt time.Time        `json:"created_at" msgpack:"created_at"`
	ID        string           `json:"id" msgpack:"id"`
	Seed      *uint64          `json:"seed,omitempty" msgpack:"seed,omitempty"`
	Config    PortfolioConfig  `json:"config" msgpack:"config"`
	Series    AnnualLossSeries `json:"series" msgpack:"series"`
	Summary   RiskSummary      `json:"summary" msgpack:"summary"`
}
