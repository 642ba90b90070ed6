package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adoptdash/domain/adoption"
	domainStats "adoptdash/domain/stats"
	"adoptdash/internal/errors"
)

func pairView(rates, invests []float64) adoption.View {
	rows := make([]adoption.Observation, len(rates))
	for i := range rates {
		rows[i] = obs("Q1_2024", "API REST", rates[i], invests[i])
	}
	return adoption.NewView(rows)
}

func TestEstimate_Scenario(t *testing.T) {
	view := pairView([]float64{10, 50, 45, 20}, []float64{1, 5, 6, 2})

	est := Estimate(view, DefaultEstimateOptions())

	assert.Equal(t, 0.5, est.Unconditional)
	assert.Equal(t, 1.0, est.Conditional)
	assert.Equal(t, 3.5, est.BaselineInvestment)
	assert.Equal(t, 4, est.Total)
	assert.Equal(t, 2, est.AboveThreshold)
	assert.Equal(t, 2, est.HighInvestment)
	assert.Equal(t, 2, est.HighInvestmentAbove)
	assert.Equal(t, 40.0, est.Threshold)
	assert.Equal(t, domainStats.BaselineMean, est.Baseline)
}

func TestEstimate_Thresholds(t *testing.T) {
	view := pairView([]float64{10, 50, 45, 20}, []float64{1, 5, 6, 2})

	tests := []struct {
		threshold  float64
		wantUncond float64
		wantCond   float64
	}{
		{0, 1.0, 1.0},
		{10, 0.75, 1.0},
		{20, 0.5, 1.0},
		{45, 0.25, 0.5},
		{50, 0, 0},
		{100, 0, 0},
	}
	for _, tt := range tests {
		est := Estimate(view, EstimateOptions{Threshold: tt.threshold})
		assert.Equal(t, tt.wantUncond, est.Unconditional, "threshold %v", tt.threshold)
		assert.Equal(t, tt.wantCond, est.Conditional, "threshold %v", tt.threshold)
	}
}

func TestEstimate_StrictComparisons(t *testing.T) {
	// Exactly at the threshold and exactly at the baseline do not count.
	view := pairView([]float64{40, 41}, []float64{2, 2})

	est := Estimate(view, DefaultEstimateOptions())

	assert.Equal(t, 0.5, est.Unconditional)
	assert.Equal(t, 0, est.HighInvestment)
	assert.Equal(t, 0.0, est.Conditional)
}

func TestEstimate_EmptyView(t *testing.T) {
	est := Estimate(adoption.View{}, DefaultEstimateOptions())

	assert.Equal(t, 0.0, est.Unconditional)
	assert.Equal(t, 0.0, est.Conditional)
	assert.Equal(t, 0, est.Total)
	assert.True(t, math.IsNaN(est.BaselineInvestment))
}

func TestEstimate_MedianBaseline(t *testing.T) {
	// Mean investment 28 leaves one row above; the median 3 leaves two.
	view := pairView([]float64{10, 50, 45, 60, 20}, []float64{1, 2, 3, 4, 130})

	mean := Estimate(view, EstimateOptions{Threshold: 40, Baseline: domainStats.BaselineMean})
	median := Estimate(view, EstimateOptions{Threshold: 40, Baseline: domainStats.BaselineMedian})

	assert.Equal(t, 1, mean.HighInvestment)
	assert.Equal(t, 0.0, mean.Conditional)
	assert.Equal(t, 2, median.HighInvestment)
	assert.Equal(t, 0.5, median.Conditional)
	assert.Equal(t, mean.Unconditional, median.Unconditional)
}

func TestEstimate_MissingValuesNeverPass(t *testing.T) {
	view := pairView([]float64{math.NaN(), 50}, []float64{10, math.NaN()})

	est := Estimate(view, DefaultEstimateOptions())

	assert.Equal(t, 0.5, est.Unconditional)
	assert.Equal(t, 10.0, est.BaselineInvestment)
	assert.Equal(t, 0, est.HighInvestment)
}

func TestEstimate_Idempotent(t *testing.T) {
	view := pairView([]float64{10, 50, 45, 20}, []float64{1, 5, 6, 2})
	assert.Equal(t, Estimate(view, DefaultEstimateOptions()), Estimate(view, DefaultEstimateOptions()))
}

func TestEstimate_ProbabilitiesInUnitInterval(t *testing.T) {
	rates := []float64{0, 12.5, 39.9, 40, 40.1, 77, 100, 63}
	invests := []float64{0, 3, 3, 9, 1, 2, 8, 5}
	view := pairView(rates, invests)
	for _, th := range []float64{0, 25, 40, 60, 99.9, 100} {
		est := Estimate(view, EstimateOptions{Threshold: th})
		assert.GreaterOrEqual(t, est.Unconditional, 0.0)
		assert.LessOrEqual(t, est.Unconditional, 1.0)
		assert.GreaterOrEqual(t, est.Conditional, 0.0)
		assert.LessOrEqual(t, est.Conditional, 1.0)
	}
}

func TestParseBaseline(t *testing.T) {
	b, err := ParseBaseline("")
	require.NoError(t, err)
	assert.Equal(t, domainStats.BaselineMean, b)

	b, err = ParseBaseline(" Median ")
	require.NoError(t, err)
	assert.Equal(t, domainStats.BaselineMedian, b)

	_, err = ParseBaseline("mode")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
