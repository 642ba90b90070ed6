// Package analysis computes the dashboard statistics over a filtered view of
// the adoption dataset. Every function is pure: the same view and options
// always give the same result, and nothing is cached between calls.
package analysis

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"adoptdash/domain/adoption"
	domainStats "adoptdash/domain/stats"
	"adoptdash/internal/errors"
)

// Describe computes one SummaryRow per attribute, in the order given. A nil
// or empty attrs list means adoption.NumericAttributes. An empty view gives
// an empty Summary.
func Describe(view adoption.View, attrs []adoption.Attribute) (domainStats.Summary, error) {
	if len(attrs) == 0 {
		attrs = adoption.NumericAttributes
	}
	for _, attr := range attrs {
		if !attr.IsNumeric() {
			return domainStats.Summary{}, errors.InvalidInput("unknown attribute: " + string(attr))
		}
	}
	if view.IsEmpty() {
		return domainStats.Summary{}, nil
	}

	summary := domainStats.Summary{Rows: make([]domainStats.SummaryRow, 0, len(attrs))}
	for _, attr := range attrs {
		summary.Rows = append(summary.Rows, describeColumn(attr, present(view.Values(attr))))
	}
	return summary, nil
}

func describeColumn(attr adoption.Attribute, data []float64) domainStats.SummaryRow {
	nan := math.NaN()
	row := domainStats.SummaryRow{
		Attribute: attr,
		Count:     len(data),
		Mean:      nan,
		Median:    nan,
		StdDev:    nan,
		Variance:  nan,
		Min:       nan,
		Q1:        nan,
		Q3:        nan,
		Max:       nan,
		CVPercent: nan,
		Skewness:  nan,
	}
	if len(data) == 0 {
		return row
	}

	// montanaflynn only errors on empty input, which is ruled out above.
	row.Mean, _ = stats.Mean(data)
	row.Median, _ = stats.Median(data)
	row.Min, _ = stats.Min(data)
	row.Max, _ = stats.Max(data)

	if len(data) >= 2 {
		row.Variance, _ = stats.SampleVariance(data)
		row.StdDev = math.Sqrt(row.Variance)
		if q, err := stats.Quartile(data); err == nil {
			row.Q1, row.Q3 = q.Q1, q.Q3
		}
	}

	row.CVPercent = coefficientOfVariation(row.Mean, row.StdDev)
	row.Skewness = skewness(data, row.StdDev)
	return row
}

// coefficientOfVariation returns 100*std/mean. With a zero mean it is +Inf
// for a positive std and NaN otherwise.
func coefficientOfVariation(mean, std float64) float64 {
	if math.IsNaN(std) || math.IsNaN(mean) {
		return math.NaN()
	}
	if mean == 0 {
		if std > 0 {
			return math.Inf(1)
		}
		return math.NaN()
	}
	return 100 * std / mean
}

// skewness is the adjusted Fisher-Pearson coefficient G1. It is NaN below
// three values and 0 for a constant column.
func skewness(data []float64, std float64) float64 {
	if len(data) < 3 {
		return math.NaN()
	}
	if std == 0 {
		return 0
	}
	return stat.Skew(data, nil)
}

// present drops missing (NaN) values.
func present(values []float64) []float64 {
	out := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// mean returns the mean of the non-missing values, NaN when there are none.
func mean(values []float64) float64 {
	data := present(values)
	if len(data) == 0 {
		return math.NaN()
	}
	m, _ := stats.Mean(data)
	return m
}
