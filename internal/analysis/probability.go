package analysis

import (
	"math"
	"strings"

	"github.com/montanaflynn/stats"

	"adoptdash/domain/adoption"
	domainStats "adoptdash/domain/stats"
	"adoptdash/internal/errors"
)

// DefaultThreshold is the adoption rate (percent) an observation must exceed.
const DefaultThreshold = 40.0

// EstimateOptions parameterizes Estimate.
type EstimateOptions struct {
	Threshold float64
	Baseline  domainStats.Baseline
}

// DefaultEstimateOptions returns threshold 40 against the mean investment.
func DefaultEstimateOptions() EstimateOptions {
	return EstimateOptions{Threshold: DefaultThreshold, Baseline: domainStats.BaselineMean}
}

// ParseBaseline accepts "mean" or "median" in any case. Empty means mean.
func ParseBaseline(s string) (domainStats.Baseline, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(domainStats.BaselineMean):
		return domainStats.BaselineMean, nil
	case string(domainStats.BaselineMedian):
		return domainStats.BaselineMedian, nil
	default:
		return "", errors.InvalidInput("baseline must be mean or median, got " + s)
	}
}

// Estimate returns the empirical probability that the adoption rate exceeds
// the threshold, unconditionally and within the high-investment subset.
//
// The subset holds observations whose investment is strictly above the
// baseline investment of the whole view. Both comparisons are strict, and
// an empty denominator yields 0. Missing values never satisfy a comparison.
func Estimate(view adoption.View, opts EstimateOptions) domainStats.ProbabilityEstimate {
	if opts.Baseline == "" {
		opts.Baseline = domainStats.BaselineMean
	}
	est := domainStats.ProbabilityEstimate{
		Threshold:          opts.Threshold,
		Baseline:           opts.Baseline,
		BaselineInvestment: math.NaN(),
		Total:              view.Len(),
	}
	if view.IsEmpty() {
		return est
	}

	est.BaselineInvestment = baselineInvestment(view, opts.Baseline)

	view.Each(func(o adoption.Observation) {
		above := o.AdoptionRatePercent > opts.Threshold
		if above {
			est.AboveThreshold++
		}
		if o.InvestmentMillions > est.BaselineInvestment {
			est.HighInvestment++
			if above {
				est.HighInvestmentAbove++
			}
		}
	})

	est.Unconditional = ratio(est.AboveThreshold, est.Total)
	est.Conditional = ratio(est.HighInvestmentAbove, est.HighInvestment)
	return est
}

func baselineInvestment(view adoption.View, baseline domainStats.Baseline) float64 {
	data := present(view.Values(adoption.InvestmentMillions))
	if len(data) == 0 {
		return math.NaN()
	}
	if baseline == domainStats.BaselineMedian {
		m, _ := stats.Median(data)
		return m
	}
	m, _ := stats.Mean(data)
	return m
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
