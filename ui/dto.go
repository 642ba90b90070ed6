package ui

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"adoptdash/domain/adoption"
	"adoptdash/domain/stats"
)

// displayPlaces is the rounding applied to every displayed statistic.
const displayPlaces = 2

// printer groups thousands in display strings ("1,234.56").
var printer = message.NewPrinter(language.English)

// display formats v with thousands grouping. Non-finite values use the
// markers of stats.Format.
func display(v float64) string {
	if !stats.IsFinite(v) {
		return stats.Format(v, displayPlaces)
	}
	return printer.Sprintf("%.2f", stats.Round(v, displayPlaces))
}

func displayPercent(p float64) string {
	if !stats.IsFinite(p) {
		return stats.Format(p, displayPlaces)
	}
	return printer.Sprintf("%.2f%%", stats.Round(p*100, displayPlaces))
}

// Wire types. Statistics that can be NaN or infinite are pointers so they
// encode as null; the display map then carries the human readable marker.

type summaryRowDTO struct {
	Attribute adoption.Attribute `json:"attribute"`
	Label     string             `json:"label"`
	Count     int                `json:"count"`
	Mean      *float64           `json:"mean"`
	Median    *float64           `json:"median"`
	StdDev    *float64           `json:"std"`
	Variance  *float64           `json:"variance"`
	Min       *float64           `json:"min"`
	Q1        *float64           `json:"q1"`
	Q3        *float64           `json:"q3"`
	Max       *float64           `json:"max"`
	CVPercent *float64           `json:"cv_percent"`
	Skewness  *float64           `json:"skewness"`
	Display   map[string]string  `json:"display"`
}

type summaryDTO struct {
	Rows []summaryRowDTO `json:"rows"`
}

func newSummaryDTO(s stats.Summary) summaryDTO {
	out := summaryDTO{Rows: make([]summaryRowDTO, 0, len(s.Rows))}
	for _, r := range s.Rows {
		out.Rows = append(out.Rows, summaryRowDTO{
			Attribute: r.Attribute,
			Label:     r.Attribute.Label(),
			Count:     r.Count,
			Mean:      stats.Finite(r.Mean),
			Median:    stats.Finite(r.Median),
			StdDev:    stats.Finite(r.StdDev),
			Variance:  stats.Finite(r.Variance),
			Min:       stats.Finite(r.Min),
			Q1:        stats.Finite(r.Q1),
			Q3:        stats.Finite(r.Q3),
			Max:       stats.Finite(r.Max),
			CVPercent: stats.Finite(r.CVPercent),
			Skewness:  stats.Finite(r.Skewness),
			Display: map[string]string{
				"mean":       display(r.Mean),
				"median":     display(r.Median),
				"std":        display(r.StdDev),
				"variance":   display(r.Variance),
				"min":        display(r.Min),
				"q1":         display(r.Q1),
				"q3":         display(r.Q3),
				"max":        display(r.Max),
				"cv_percent": display(r.CVPercent),
				"skewness":   display(r.Skewness),
			},
		})
	}
	return out
}

type probabilityDTO struct {
	Unconditional       float64           `json:"p_unconditional"`
	Conditional         float64           `json:"p_conditional"`
	Threshold           float64           `json:"threshold"`
	Baseline            stats.Baseline    `json:"baseline"`
	BaselineInvestment  *float64          `json:"baseline_investment"`
	Total               int               `json:"total"`
	AboveThreshold      int               `json:"above_threshold"`
	HighInvestment      int               `json:"high_investment"`
	HighInvestmentAbove int               `json:"high_investment_above"`
	Display             map[string]string `json:"display"`
}

func newProbabilityDTO(p stats.ProbabilityEstimate) probabilityDTO {
	return probabilityDTO{
		Unconditional:       p.Unconditional,
		Conditional:         p.Conditional,
		Threshold:           p.Threshold,
		Baseline:            p.Baseline,
		BaselineInvestment:  stats.Finite(p.BaselineInvestment),
		Total:               p.Total,
		AboveThreshold:      p.AboveThreshold,
		HighInvestment:      p.HighInvestment,
		HighInvestmentAbove: p.HighInvestmentAbove,
		Display: map[string]string{
			"p_unconditional":     displayPercent(p.Unconditional),
			"p_conditional":       displayPercent(p.Conditional),
			"baseline_investment": display(p.BaselineInvestment),
		},
	}
}

type kpisDTO struct {
	Rows                     int               `json:"rows"`
	MeanAdoptionRate         *float64          `json:"mean_adoption_rate"`
	MeanInvestment           *float64          `json:"mean_investment"`
	MeanSatisfaction         *float64          `json:"mean_satisfaction"`
	MeanImplementationMonths *float64          `json:"mean_implementation_months"`
	Display                  map[string]string `json:"display"`
}

func newKPIsDTO(k stats.KPIs) kpisDTO {
	return kpisDTO{
		Rows:                     k.Rows,
		MeanAdoptionRate:         stats.Finite(k.MeanAdoptionRate),
		MeanInvestment:           stats.Finite(k.MeanInvestment),
		MeanSatisfaction:         stats.Finite(k.MeanSatisfaction),
		MeanImplementationMonths: stats.Finite(k.MeanImplementationMonths),
		Display: map[string]string{
			"mean_adoption_rate":         display(k.MeanAdoptionRate),
			"mean_investment":            display(k.MeanInvestment),
			"mean_satisfaction":          display(k.MeanSatisfaction),
			"mean_implementation_months": display(k.MeanImplementationMonths),
		},
	}
}

type rankEntryDTO struct {
	Technology string   `json:"technology"`
	Value      *float64 `json:"value"`
	Count      int      `json:"count"`
	Display    string   `json:"display"`
}

type rankingDTO struct {
	Attribute adoption.Attribute `json:"attribute"`
	Label     string             `json:"label"`
	Entries   []rankEntryDTO     `json:"entries"`
}

func newRankingDTO(r stats.Ranking) rankingDTO {
	out := rankingDTO{Attribute: r.Attribute, Label: r.Attribute.Label(), Entries: make([]rankEntryDTO, 0, len(r.Entries))}
	for _, e := range r.Entries {
		out.Entries = append(out.Entries, rankEntryDTO{
			Technology: e.Technology,
			Value:      stats.Finite(e.Value),
			Count:      e.Count,
			Display:    display(e.Value),
		})
	}
	return out
}

type trendPointDTO struct {
	Period string   `json:"period"`
	Value  *float64 `json:"value"`
	Count  int      `json:"count"`
}

type trendSeriesDTO struct {
	Technology string             `json:"technology"`
	Attribute  adoption.Attribute `json:"attribute"`
	Points     []trendPointDTO    `json:"points"`
}

func newTrendDTO(series []stats.TrendSeries) []trendSeriesDTO {
	out := make([]trendSeriesDTO, 0, len(series))
	for _, s := range series {
		dto := trendSeriesDTO{Technology: s.Technology, Attribute: s.Attribute, Points: make([]trendPointDTO, 0, len(s.Points))}
		for _, p := range s.Points {
			dto.Points = append(dto.Points, trendPointDTO{Period: p.Period, Value: stats.Finite(p.Value), Count: p.Count})
		}
		out = append(out, dto)
	}
	return out
}

type correlationDTO struct {
	Attributes []adoption.Attribute `json:"attributes"`
	Values     [][]*float64         `json:"values"`
	N          int                  `json:"n"`
}

func newCorrelationDTO(m stats.CorrelationMatrix) correlationDTO {
	out := correlationDTO{Attributes: m.Attributes, N: m.N, Values: make([][]*float64, len(m.Values))}
	for i, row := range m.Values {
		out.Values[i] = make([]*float64, len(row))
		for j, v := range row {
			out.Values[i][j] = stats.Finite(v)
		}
	}
	return out
}

type boxStatsDTO struct {
	Group        string    `json:"group"`
	Count        int       `json:"count"`
	Min          *float64  `json:"min"`
	Q1           *float64  `json:"q1"`
	Median       *float64  `json:"median"`
	Q3           *float64  `json:"q3"`
	Max          *float64  `json:"max"`
	LowerWhisker *float64  `json:"lower_whisker"`
	UpperWhisker *float64  `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers"`
}

type distributionDTO struct {
	Attribute adoption.Attribute `json:"attribute"`
	Histogram stats.Histogram    `json:"histogram"`
	Box       []boxStatsDTO      `json:"box"`
}

func newDistributionDTO(d stats.Distribution) distributionDTO {
	out := distributionDTO{Attribute: d.Histogram.Attribute, Histogram: d.Histogram, Box: make([]boxStatsDTO, 0, len(d.Box.Groups))}
	for _, b := range d.Box.Groups {
		outliers := b.Outliers
		if outliers == nil {
			outliers = []float64{}
		}
		out.Box = append(out.Box, boxStatsDTO{
			Group:        b.Group,
			Count:        b.Count,
			Min:          stats.Finite(b.Min),
			Q1:           stats.Finite(b.Q1),
			Median:       stats.Finite(b.Median),
			Q3:           stats.Finite(b.Q3),
			Max:          stats.Finite(b.Max),
			LowerWhisker: stats.Finite(b.LowerWhisker),
			UpperWhisker: stats.Finite(b.UpperWhisker),
			Outliers:     outliers,
		})
	}
	return out
}

type queryDTO struct {
	Periods      []string           `json:"periods"`
	Technologies []string           `json:"technologies"`
	Metric       adoption.Attribute `json:"metric"`
	Technology   string             `json:"technology"`
	Threshold    *float64           `json:"threshold"`
	Baseline     stats.Baseline     `json:"baseline"`
}

type reportDTO struct {
	DatasetID    string           `json:"dataset_id"`
	Source       string           `json:"source"`
	Query        queryDTO         `json:"query"`
	KPIs         kpisDTO          `json:"kpis"`
	Summary      summaryDTO       `json:"summary"`
	Probability  probabilityDTO   `json:"probability"`
	Ranking      rankingDTO       `json:"ranking"`
	Trend        []trendSeriesDTO `json:"trend"`
	Distribution distributionDTO  `json:"distribution"`
	Scatter      stats.Scatter    `json:"scatter"`
	Correlation  correlationDTO   `json:"correlation"`
	Conclusions  string           `json:"conclusions_html"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

func newReportDTO(r *stats.Report) reportDTO {
	return reportDTO{
		DatasetID: r.DatasetID,
		Source:    r.Source,
		Query: queryDTO{
			Periods:      r.Query.Filter.Periods,
			Technologies: r.Query.Filter.Technologies,
			Metric:       r.Query.Metric,
			Technology:   r.Query.Technology,
			Threshold:    r.Query.Threshold,
			Baseline:     r.Query.Baseline,
		},
		KPIs:         newKPIsDTO(r.KPIs),
		Summary:      newSummaryDTO(r.Summary),
		Probability:  newProbabilityDTO(r.Probability),
		Ranking:      newRankingDTO(r.Charts.Ranking),
		Trend:        newTrendDTO(r.Charts.Trend),
		Distribution: newDistributionDTO(stats.Distribution{Histogram: r.Charts.Histogram, Box: r.Charts.Box}),
		Scatter:      r.Charts.Scatter,
		Correlation:  newCorrelationDTO(r.Charts.Correlation),
		Conclusions:  r.Conclusions,
		GeneratedAt:  r.GeneratedAt,
	}
}
