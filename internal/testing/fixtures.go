package testing

import (
	"time"

	"github.com/aristath/reinsim/internal/domain"
	"github.com/aristath/reinsim/internal/modules/risk"
)

// NewConfigFixture returns a portfolio config with the dashboard default parameters
func NewConfigFixture(kind domain.PortfolioKind, years int) domain.PortfolioConfig {
	return domain.PortfolioConfig{
		Kind: kind,
		LossParams: domain.LossParams{
			PolicyCount:    1000,
			MeanLoss:       5000,
			StdDev:         2000,
			SimulatedYears: years,
		},
	}
}

// NewRunFixture returns a Life run over series with its summary filled in.
// series must not be empty.
func NewRunFixture(id string, series ...float64) *domain.Run {
	summary, err := risk.Summarize(series)
	if err != nil {
		panic(err)
	}

	seed := uint64(42)
	return &domain.Run{
		ID:        id,
		CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		Seed:      &seed,
		Config:    NewConfigFixture(domain.PortfolioLife, len(series)),
		Series:    domain.AnnualLossSeries(series),
		Summary:   summary,
	}
}
