package ports

import (
	"adoptdash/domain/stats"
)

// ChartKind names a dashboard chart.
type ChartKind string

const (
	ChartTrend       ChartKind = "trend"
	ChartHistogram   ChartKind = "histogram"
	ChartBoxPlot     ChartKind = "boxplot"
	ChartRanking     ChartKind = "ranking"
	ChartScatter     ChartKind = "scatter"
	ChartCorrelation ChartKind = "correlation"
)

// ChartKinds lists every chart in dashboard order.
var ChartKinds = []ChartKind{ChartTrend, ChartHistogram, ChartBoxPlot, ChartRanking, ChartScatter, ChartCorrelation}

// ImageFormat is an output encoding for charts.
type ImageFormat string

const (
	FormatPNG ImageFormat = "png"
	FormatSVG ImageFormat = "svg"
)

// ContentType returns the MIME type of the format.
func (f ImageFormat) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// ChartRenderer draws one chart of a ChartSet.
type ChartRenderer interface {
	Render(set stats.ChartSet, kind ChartKind, format ImageFormat) ([]byte, error)
}
