// Package charts draws the dashboard panels with gonum/plot.
package charts

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"adoptdash/domain/stats"
	"adoptdash/internal/errors"
	"adoptdash/ports"
)

var (
	barColor     = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	outlierColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// Renderer implements ports.ChartRenderer
type Renderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewRenderer returns a renderer producing 8x4.5 inch images.
func NewRenderer() *Renderer {
	return &Renderer{Width: 8 * vg.Inch, Height: 4.5 * vg.Inch}
}

var _ ports.ChartRenderer = (*Renderer)(nil)

// Render draws one chart. Empty data yields a titled empty plot.
func (r *Renderer) Render(set stats.ChartSet, kind ports.ChartKind, format ports.ImageFormat) ([]byte, error) {
	if format != ports.FormatPNG && format != ports.FormatSVG {
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported image format %q", format))
	}

	var (
		p   *plot.Plot
		err error
	)
	switch kind {
	case ports.ChartTrend:
		p, err = trendPlot(set.TrendTitle, set.Trend)
	case ports.ChartHistogram:
		p, err = histogramPlot(set.Histogram)
	case ports.ChartBoxPlot:
		p, err = boxPlot(set.Box)
	case ports.ChartRanking:
		p, err = rankingPlot(set.Ranking)
	case ports.ChartScatter:
		p, err = scatterPlot(set.Scatter)
	case ports.ChartCorrelation:
		p, err = correlationPlot(set.Correlation)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown chart %q", kind))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build %s chart", kind)
	}

	w, err := p.WriterTo(r.Width, r.Height, string(format))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to render %s chart", kind)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, errors.Wrapf(err, "failed to encode %s chart", kind)
	}
	return buf.Bytes(), nil
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func trendPlot(title string, series []stats.TrendSeries) (*plot.Plot, error) {
	if title == "" {
		title = "Adoption rate over time"
	}
	p := newPlot(title, "Period", "Adoption rate (%)")
	p.Add(plotter.NewGrid())

	// Periods share one x axis across series, in first-seen order.
	position := make(map[string]int)
	var ticks []plot.Tick
	for _, s := range series {
		for _, pt := range s.Points {
			if _, ok := position[pt.Period]; !ok {
				position[pt.Period] = len(ticks)
				ticks = append(ticks, plot.Tick{Value: float64(len(ticks)), Label: pt.Period})
			}
		}
	}
	if len(ticks) > 0 {
		p.X.Tick.Marker = plot.ConstantTicks(ticks)
	}

	for i, s := range series {
		xys := make(plotter.XYs, 0, len(s.Points))
		for _, pt := range s.Points {
			if finite(pt.Value) {
				xys = append(xys, plotter.XY{X: float64(position[pt.Period]), Y: pt.Value})
			}
		}
		if len(xys) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(2)
		points.GlyphStyle.Color = plotutil.Color(i)
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(line, points)
		if len(series) > 1 {
			p.Legend.Add(s.Technology, line, points)
		}
	}
	p.Legend.Top = true
	return p, nil
}

func histogramPlot(h stats.Histogram) (*plot.Plot, error) {
	p := newPlot("Distribution of "+h.Attribute.Label(), h.Attribute.Label(), "Frequency")
	if len(h.Bins) == 0 {
		return p, nil
	}

	bins := make([]plotter.HistogramBin, len(h.Bins))
	for i, b := range h.Bins {
		lo, hi := b.Lower, b.Upper
		if lo == hi {
			lo, hi = lo-0.5, hi+0.5
		}
		bins[i] = plotter.HistogramBin{Min: lo, Max: hi, Weight: float64(b.Count)}
	}
	hist := &plotter.Histogram{
		Bins:      bins,
		Width:     bins[0].Max - bins[0].Min,
		FillColor: barColor,
		LineStyle: plotter.DefaultLineStyle,
	}
	p.Add(hist)
	return p, nil
}

func boxPlot(b stats.BoxPlot) (*plot.Plot, error) {
	p := newPlot(b.Attribute.Label()+" by technology", "Technology", b.Attribute.Label())
	p.Add(plotter.NewGrid())

	var names []string
	for _, g := range b.Groups {
		if len(g.Values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(24), float64(len(names)), plotter.Values(g.Values))
		if err != nil {
			return nil, err
		}
		box.FillColor = plotutil.Color(len(names))
		box.GlyphStyle.Color = outlierColor
		p.Add(box)
		names = append(names, g.Group)
	}
	if len(names) > 0 {
		p.NominalX(names...)
	}
	return p, nil
}

func rankingPlot(r stats.Ranking) (*plot.Plot, error) {
	p := newPlot("Mean "+r.Attribute.Label()+" by technology", r.Attribute.Label(), "")
	if len(r.Entries) == 0 {
		return p, nil
	}

	values := make(plotter.Values, len(r.Entries))
	names := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		if finite(e.Value) {
			values[i] = e.Value
		}
		names[i] = e.Technology
	}
	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalY(names...)
	return p, nil
}

func scatterPlot(s stats.Scatter) (*plot.Plot, error) {
	p := newPlot(s.X.Label()+" vs "+s.Y.Label(), s.X.Label(), s.Y.Label())
	p.Add(plotter.NewGrid())

	byTech := make(map[string]plotter.XYs)
	var order []string
	for _, pt := range s.Points {
		if _, ok := byTech[pt.Technology]; !ok {
			order = append(order, pt.Technology)
		}
		byTech[pt.Technology] = append(byTech[pt.Technology], plotter.XY{X: pt.X, Y: pt.Y})
	}
	for i, tech := range order {
		sc, err := plotter.NewScatter(byTech[tech])
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = plotutil.Color(i)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(4)
		p.Add(sc)
		p.Legend.Add(tech, sc)
	}
	p.Legend.Top = true
	return p, nil
}

// correlationGrid exposes a CorrelationMatrix as a plotter.GridXYZ. The first
// attribute is drawn at the top; undefined coefficients render as 0.
type correlationGrid struct {
	m stats.CorrelationMatrix
}

func (g correlationGrid) Dims() (c, r int) { return len(g.m.Attributes), len(g.m.Attributes) }
func (g correlationGrid) X(c int) float64  { return float64(c) }
func (g correlationGrid) Y(r int) float64  { return float64(r) }
func (g correlationGrid) Z(c, r int) float64 {
	v := g.m.At(len(g.m.Attributes)-1-r, c)
	if !finite(v) {
		return 0
	}
	return v
}

func correlationPlot(m stats.CorrelationMatrix) (*plot.Plot, error) {
	p := newPlot("Correlation matrix", "", "")
	k := len(m.Attributes)
	if k == 0 {
		return p, nil
	}

	hm := plotter.NewHeatMap(correlationGrid{m: m}, palette.Heat(12, 1))
	hm.Min, hm.Max = -1, 1
	p.Add(hm)

	xTicks := make([]plot.Tick, k)
	yTicks := make([]plot.Tick, k)
	var xys plotter.XYs
	var labels []string
	for i, attr := range m.Attributes {
		xTicks[i] = plot.Tick{Value: float64(i), Label: attr.Label()}
		yTicks[k-1-i] = plot.Tick{Value: float64(k - 1 - i), Label: attr.Label()}
		for j := range m.Attributes {
			xys = append(xys, plotter.XY{X: float64(j), Y: float64(k - 1 - i)})
			labels = append(labels, stats.Format(m.At(i, j), 2))
		}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = draw.XRight

	text, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, err
	}
	for i := range text.TextStyle {
		text.TextStyle[i].XAlign = draw.XCenter
		text.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(text)
	return p, nil
}
