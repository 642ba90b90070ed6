package stats

import (
	"time"

	"adoptdash/domain/adoption"
)

// Query selects what a report shows: the filter, the attribute ranked across
// technologies, the technology whose trend is drawn and the probability
// settings. The distribution panels of a report always show the adoption
// rate; the standalone distribution endpoint uses Metric.
type Query struct {
	Filter     adoption.Filter    `json:"filter"`
	Metric     adoption.Attribute `json:"metric,omitempty"`
	Technology string             `json:"technology,omitempty"`
	// Threshold overrides the configured adoption threshold when set.
	Threshold *float64 `json:"threshold,omitempty"`
	Baseline  Baseline `json:"baseline,omitempty"`
}

// Distribution bundles the histogram and box statistics of one attribute.
type Distribution struct {
	Histogram Histogram `json:"histogram"`
	Box       BoxPlot   `json:"box"`
}

// Report is every dashboard panel computed for one query.
type Report struct {
	DatasetID   string              `json:"dataset_id"`
	Source      string              `json:"source"`
	Query       Query               `json:"query"`
	KPIs        KPIs                `json:"kpis"`
	Summary     Summary             `json:"summary"`
	Probability ProbabilityEstimate `json:"probability"`
	Charts      ChartSet            `json:"charts"`
	Conclusions string              `json:"conclusions_html"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// IsEmpty reports whether the filter left no observations.
func (r *Report) IsEmpty() bool {
	return r == nil || r.KPIs.Rows == 0
}
