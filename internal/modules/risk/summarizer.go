// Package risk computes descriptive statistics and tail-risk measures of
// simulated annual loss series.
package risk

import (
	"github.com/aristath/reinsim/internal/domain"
	"github.com/aristath/reinsim/pkg/formulas"
)

// VaRPercentile is the solvency confidence level used for Value-at-Risk
const VaRPercentile = 99.5

// Summarize computes mean, median, max, sample standard deviation and the
// 99.5% Value-at-Risk of series. The input is not modified and repeated
// calls return identical results.
//
// Percentiles use rank = p * (n-1) over the sorted series with linear
// interpolation, so a single-year series reports that year as both median
// and VaR. The standard deviation of a single value is reported as 0.
func Summarize(series []float64) (domain.RiskSummary, error) {
	if len(series) == 0 {
		return domain.RiskSummary{}, domain.ErrEmptySeries
	}

	sorted := formulas.Sorted(series)

	return domain.RiskSummary{
		Mean:   formulas.Mean(series),
		Median: formulas.PercentileSorted(sorted, 50),
		Max:    sorted[len(sorted)-1],
		StdDev: formulas.SampleStdDev(series),
		VaR995: formulas.PercentileSorted(sorted, VaRPercentile),
	}, nil
}

// Quantile returns the p-th percentile (0..100) of series
func Quantile(series []float64, p float64) (float64, error) {
	if len(series) == 0 {
		return 0, domain.ErrEmptySeries
	}
	return formulas.Percentile(series, p), nil
}

// ExpectedShortfall returns the mean loss in the tail at or above the p-th
// percentile (TVaR). It is never below the matching quantile.
func ExpectedShortfall(series []float64, p float64) (float64, error) {
	if len(series) == 0 {
		return 0, domain.ErrEmptySeries
	}
	return formulas.TailMean(series, p), nil
}

// TailMetrics groups the additional quantiles reported alongside the summary
type TailMetrics struct {
	Min     float64 `json:"min"`
	P95     float64 `json:"p95"`
	P99     float64 `json:"p99"`
	TVaR995 float64 `json:"tvar_995"`
}

// Tail computes TailMetrics for series
func Tail(series []float64) (TailMetrics, error) {
	if len(series) == 0 {
		return TailMetrics{}, domain.ErrEmptySeries
	}

	sorted := formulas.Sorted(series)
	return TailMetrics{
		Min:     sorted[0],
		P95:     formulas.PercentileSorted(sorted, 95),
		P99:     formulas.PercentileSorted(sorted, 99),
		TVaR995: formulas.TailMean(sorted, VaRPercentile),
	}, nil
}
