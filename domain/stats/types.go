package stats

import (
	"adoptdash/domain/adoption"
)

// ============================================================================
// DESCRIPTIVE SUMMARY
// ============================================================================

// SummaryRow holds the descriptive statistics of one numeric attribute.
//
// INVARIANTS:
// - Count is the number of non-missing values
// - StdDev and Variance are NaN when Count < 2
// - Skewness is NaN when Count < 3
// - CVPercent is +Inf when Mean is 0 and StdDev > 0, NaN when both are 0
type SummaryRow struct {
	Attribute adoption.Attribute `json:"attribute"`
	Count     int                `json:"count"`
	Mean      float64            `json:"mean"`
	Median    float64            `json:"median"`
	StdDev    float64            `json:"std"`
	Variance  float64            `json:"variance"`
	Min       float64            `json:"min"`
	Q1        float64            `json:"q1"`
	Q3        float64            `json:"q3"`
	Max       float64            `json:"max"`
	CVPercent float64            `json:"cv_percent"`
	Skewness  float64            `json:"skewness"`
}

// Rounded returns a copy with every statistic rounded to places decimals.
func (r SummaryRow) Rounded(places int) SummaryRow {
	r.Mean = Round(r.Mean, places)
	r.Median = Round(r.Median, places)
	r.StdDev = Round(r.StdDev, places)
	r.Variance = Round(r.Variance, places)
	r.Min = Round(r.Min, places)
	r.Q1 = Round(r.Q1, places)
	r.Q3 = Round(r.Q3, places)
	r.Max = Round(r.Max, places)
	r.CVPercent = Round(r.CVPercent, places)
	r.Skewness = Round(r.Skewness, places)
	return r
}

// Summary is the ordered result of describing a dataset. It is empty for an
// empty dataset.
type Summary struct {
	Rows []SummaryRow `json:"rows"`
}

// IsEmpty reports whether the summary has no rows.
func (s Summary) IsEmpty() bool { return len(s.Rows) == 0 }

// Get returns the row for attr.
func (s Summary) Get(attr adoption.Attribute) (SummaryRow, bool) {
	for _, r := range s.Rows {
		if r.Attribute == attr {
			return r, true
		}
	}
	return SummaryRow{}, false
}

// Map returns the rows keyed by attribute.
func (s Summary) Map() map[adoption.Attribute]SummaryRow {
	m := make(map[adoption.Attribute]SummaryRow, len(s.Rows))
	for _, r := range s.Rows {
		m[r.Attribute] = r
	}
	return m
}

// Rounded rounds every row for display.
func (s Summary) Rounded(places int) Summary {
	out := Summary{Rows: make([]SummaryRow, len(s.Rows))}
	for i, r := range s.Rows {
		out.Rows[i] = r.Rounded(places)
	}
	return out
}

// ============================================================================
// PROBABILITY
// ============================================================================

// Baseline selects the investment statistic that splits the high-investment
// subset.
type Baseline string

const (
	BaselineMean   Baseline = "mean"
	BaselineMedian Baseline = "median"
)

// ProbabilityEstimate pairs the unconditional and conditional empirical
// probabilities of exceeding the adoption threshold, with the counts that
// produced them.
type ProbabilityEstimate struct {
	Unconditional float64 `json:"p_unconditional"`
	Conditional   float64 `json:"p_conditional"`

	Threshold          float64  `json:"threshold"`
	Baseline           Baseline `json:"baseline"`
	BaselineInvestment float64  `json:"baseline_investment"`

	Total               int `json:"total"`
	AboveThreshold      int `json:"above_threshold"`
	HighInvestment      int `json:"high_investment"`
	HighInvestmentAbove int `json:"high_investment_above"`
}

// ============================================================================
// KPIs AND COMPARISONS
// ============================================================================

// KPIs are the headline means shown above the dashboard.
type KPIs struct {
	Rows                     int     `json:"rows"`
	MeanAdoptionRate         float64 `json:"mean_adoption_rate"`
	MeanInvestment           float64 `json:"mean_investment"`
	MeanSatisfaction         float64 `json:"mean_satisfaction"`
	MeanImplementationMonths float64 `json:"mean_implementation_months"`
}

// RankEntry is one bar of a ranking.
type RankEntry struct {
	Technology string  `json:"technology"`
	Value      float64 `json:"value"`
	Count      int     `json:"count"`
}

// Ranking orders technologies by the mean of an attribute, ascending.
type Ranking struct {
	Attribute adoption.Attribute `json:"attribute"`
	Entries   []RankEntry        `json:"entries"`
}

// TrendPoint is the value of one period.
type TrendPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
	Count  int     `json:"count"`
}

// TrendSeries is an attribute over chronological periods for one technology.
type TrendSeries struct {
	Technology string             `json:"technology"`
	Attribute  adoption.Attribute `json:"attribute"`
	Points     []TrendPoint       `json:"points"`
}

// ============================================================================
// DISTRIBUTION
// ============================================================================

// HistogramBin covers [Lower, Upper); the last bin of a histogram is closed.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram is an equal-width binning of one attribute.
type Histogram struct {
	Attribute adoption.Attribute `json:"attribute"`
	Bins      []HistogramBin     `json:"bins"`
	Total     int                `json:"total"`
}

// BoxStats is the five-number summary of a group plus Tukey whiskers.
type BoxStats struct {
	Group        string    `json:"group"`
	Count        int       `json:"count"`
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers"`
	Values       []float64 `json:"-"`
}

// BoxPlot groups BoxStats by technology.
type BoxPlot struct {
	Attribute adoption.Attribute `json:"attribute"`
	Groups    []BoxStats         `json:"groups"`
}

// ============================================================================
// RELATIONSHIPS
// ============================================================================

// ScatterPoint is one observation projected on two attributes.
type ScatterPoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Technology string  `json:"technology"`
	Period     string  `json:"period"`
}

// Scatter pairs two attributes.
type Scatter struct {
	X      adoption.Attribute `json:"x"`
	Y      adoption.Attribute `json:"y"`
	Points []ScatterPoint     `json:"points"`
}

// CorrelationMatrix holds pairwise Pearson coefficients. Undefined entries
// (fewer than two rows, zero variance) are NaN.
type CorrelationMatrix struct {
	Attributes []adoption.Attribute `json:"attributes"`
	Values     [][]float64          `json:"values"`
	N          int                  `json:"n"`
}

// At returns the coefficient between attributes i and j.
func (m CorrelationMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// ChartSet carries every dataset needed to draw the dashboard charts.
type ChartSet struct {
	TrendTitle  string            `json:"trend_title"`
	Trend       []TrendSeries     `json:"trend"`
	Histogram   Histogram         `json:"histogram"`
	Box         BoxPlot           `json:"box"`
	Ranking     Ranking           `json:"ranking"`
	Scatter     Scatter           `json:"scatter"`
	Correlation CorrelationMatrix `json:"correlation"`
}
