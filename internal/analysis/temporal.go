package analysis

import (
	"adoptdash/domain/adoption"
	domainStats "adoptdash/domain/stats"
)

// Trend follows the adoption rate of one technology across the periods of
// the view, in chronological order. Periods with several rows are averaged.
func Trend(view adoption.View, technology string) domainStats.TrendSeries {
	return TrendOf(view, technology, adoption.AdoptionRatePercent)
}

// TrendOf is Trend for an arbitrary attribute.
func TrendOf(view adoption.View, technology string, attr adoption.Attribute) domainStats.TrendSeries {
	series := domainStats.TrendSeries{Technology: technology, Attribute: attr}
	tech := view.Where(func(o adoption.Observation) bool { return o.Technology == technology })
	if tech.IsEmpty() {
		return series
	}

	for _, period := range tech.Periods() {
		p := period
		values := present(tech.Where(func(o adoption.Observation) bool { return o.Period == p }).Values(attr))
		series.Points = append(series.Points, domainStats.TrendPoint{
			Period: p,
			Value:  mean(values),
			Count:  len(values),
		})
	}
	return series
}

// TrendAll returns one adoption-rate series per technology in the view.
func TrendAll(view adoption.View) []domainStats.TrendSeries {
	techs := view.Technologies()
	out := make([]domainStats.TrendSeries, 0, len(techs))
	for _, t := range techs {
		out = append(out, Trend(view, t))
	}
	return out
}
