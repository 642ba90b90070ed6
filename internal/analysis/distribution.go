package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"adoptdash/domain/adoption"
	domainStats "adoptdash/domain/stats"
	"adoptdash/internal/errors"
)

// DefaultBins is the histogram resolution of the dashboard.
const DefaultBins = 10

// whiskerFactor scales the IQR for Tukey fences.
const whiskerFactor = 1.5

// Histogram bins attr into equal-width intervals from min to max. Every bin
// is half-open except the last, which is closed, so the bin counts always
// sum to the number of present values. When every value is equal a single
// bin holds them all.
func Histogram(view adoption.View, attr adoption.Attribute, bins int) (domainStats.Histogram, error) {
	if !attr.IsNumeric() {
		return domainStats.Histogram{}, errors.InvalidInput("unknown attribute: " + string(attr))
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	data := present(view.Values(attr))
	h := domainStats.Histogram{Attribute: attr, Total: len(data)}
	if len(data) == 0 {
		return h, nil
	}
	sort.Float64s(data)
	lo, hi := data[0], data[len(data)-1]
	if lo == hi {
		h.Bins = []domainStats.HistogramBin{{Lower: lo, Upper: hi, Count: len(data)}}
		return h, nil
	}

	edges := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram wants the last divider strictly above the maximum.
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, data, nil)

	h.Bins = make([]domainStats.HistogramBin, bins)
	for i := range h.Bins {
		h.Bins[i] = domainStats.HistogramBin{Lower: edges[i], Upper: edges[i+1], Count: int(counts[i])}
	}
	return h, nil
}

// BoxByTechnology computes box statistics of attr for every technology.
func BoxByTechnology(view adoption.View, attr adoption.Attribute) (domainStats.BoxPlot, error) {
	if !attr.IsNumeric() {
		return domainStats.BoxPlot{}, errors.InvalidInput("unknown attribute: " + string(attr))
	}
	groups := view.GroupByTechnology()
	box := domainStats.BoxPlot{Attribute: attr, Groups: make([]domainStats.BoxStats, 0, len(groups))}
	for _, g := range groups {
		box.Groups = append(box.Groups, boxStats(g.Key, present(g.View.Values(attr))))
	}
	return box, nil
}

func boxStats(group string, data []float64) domainStats.BoxStats {
	nan := math.NaN()
	b := domainStats.BoxStats{
		Group: group, Count: len(data),
		Min: nan, Q1: nan, Median: nan, Q3: nan, Max: nan,
		LowerWhisker: nan, UpperWhisker: nan,
	}
	if len(data) == 0 {
		return b
	}
	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	b.Values = sorted
	b.Min, b.Max = sorted[0], sorted[len(sorted)-1]
	b.Median, _ = stats.Median(sorted)
	b.Q1, b.Q3 = b.Median, b.Median
	if len(sorted) >= 2 {
		if q, err := stats.Quartile(sorted); err == nil {
			b.Q1, b.Q3 = q.Q1, q.Q3
		}
	}

	iqr := b.Q3 - b.Q1
	lowFence, highFence := b.Q1-whiskerFactor*iqr, b.Q3+whiskerFactor*iqr
	b.LowerWhisker, b.UpperWhisker = b.Max, b.Min
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		b.LowerWhisker = math.Min(b.LowerWhisker, v)
		b.UpperWhisker = math.Max(b.UpperWhisker, v)
	}
	return b
}

// Scatter pairs x and y per observation, skipping rows missing either value.
func Scatter(view adoption.View, x, y adoption.Attribute) (domainStats.Scatter, error) {
	if !x.IsNumeric() || !y.IsNumeric() {
		return domainStats.Scatter{}, errors.InvalidInput("unknown attribute pair: " + string(x) + ", " + string(y))
	}
	sc := domainStats.Scatter{X: x, Y: y, Points: make([]domainStats.ScatterPoint, 0, view.Len())}
	view.Each(func(o adoption.Observation) {
		xv, yv := o.Value(x), o.Value(y)
		if math.IsNaN(xv) || math.IsNaN(yv) {
			return
		}
		sc.Points = append(sc.Points, domainStats.ScatterPoint{X: xv, Y: yv, Technology: o.Technology, Period: o.Period})
	})
	return sc, nil
}
