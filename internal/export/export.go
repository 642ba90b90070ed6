// Package export writes a dashboard snapshot to disk: every chart, a
// summary workbook and a markdown report.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"adoptdash/domain/stats"
	"adoptdash/internal"
	"adoptdash/internal/errors"
	"adoptdash/ports"
)

const (
	SummaryWorkbook = "summary.xlsx"
	ReportFile      = "report.md"
)

// Options selects the output directory and chart encoding.
type Options struct {
	Dir    string
	Format ports.ImageFormat
	// Conclusions is the markdown source of the conclusions. When empty the
	// rendered HTML of the report is embedded instead.
	Conclusions string
}

// Result lists the files written, in a stable order.
type Result struct {
	Files []string
}

// Exporter renders a report into files.
type Exporter struct {
	reader   ports.ReaderPort
	renderer ports.ChartRenderer
	logger   *internal.Logger
}

// New creates an exporter.
func New(reader ports.ReaderPort, renderer ports.ChartRenderer, logger *internal.Logger) *Exporter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Exporter{reader: reader, renderer: renderer, logger: logger}
}

// Run computes the report for q and writes it under opts.Dir. Charts render
// concurrently; each works on its own plot.
func (e *Exporter) Run(ctx context.Context, q stats.Query, opts Options) (*Result, error) {
	if opts.Format == "" {
		opts.Format = ports.FormatPNG
	}
	if opts.Format != ports.FormatPNG && opts.Format != ports.FormatSVG {
		return nil, errors.InvalidInput("unsupported image format: " + string(opts.Format))
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create %s", opts.Dir)
	}

	report, err := e.reader.Report(ctx, q)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	files := make([]string, len(ports.ChartKinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range ports.ChartKinds {
		i, kind := i, kind
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := e.renderer.Render(report.Charts, kind, opts.Format)
			if err != nil {
				return errors.Wrapf(err, "failed to render %s chart", kind)
			}
			path := filepath.Join(opts.Dir, string(kind)+"."+string(opts.Format))
			if err := os.WriteFile(path, img, 0o644); err != nil {
				return errors.Wrapf(err, "failed to write %s", path)
			}
			files[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	e.logger.Debug("[Export] %d charts rendered in %s", len(files), time.Since(start))

	workbook := filepath.Join(opts.Dir, SummaryWorkbook)
	if err := writeWorkbook(workbook, report); err != nil {
		return nil, err
	}
	markdown := filepath.Join(opts.Dir, ReportFile)
	if err := os.WriteFile(markdown, []byte(Markdown(report, opts.Conclusions)), 0o644); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", markdown)
	}

	files = append(files, workbook, markdown)
	e.logger.Info("[Export] wrote %d files to %s", len(files), opts.Dir)
	return &Result{Files: files}, nil
}

var summaryHeader = []interface{}{
	"Attribute", "Count", "Mean", "Median", "Std", "Variance", "Min", "Q1", "Q3", "Max", "CV %", "Skewness",
}

// cell leaves undefined statistics blank so spreadsheets do not read a
// marker string as data.
func cell(v float64) interface{} {
	if !stats.IsFinite(v) {
		return nil
	}
	return stats.Round(v, 4)
}

func writeWorkbook(path string, report *stats.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return errors.Wrap(err, "failed to name summary sheet")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "failed to create header style")
	}

	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		return errors.Wrap(err, "failed to write summary header")
	}
	_ = f.SetRowStyle(summarySheet, 1, 1, bold)
	for i, r := range report.Summary.Rows {
		row := []interface{}{
			r.Attribute.Label(), r.Count, cell(r.Mean), cell(r.Median), cell(r.StdDev), cell(r.Variance),
			cell(r.Min), cell(r.Q1), cell(r.Q3), cell(r.Max), cell(r.CVPercent), cell(r.Skewness),
		}
		axis, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(summarySheet, axis, &row); err != nil {
			return errors.Wrapf(err, "failed to write summary row %d", i+1)
		}
	}

	const rankingSheet = "Ranking"
	if _, err := f.NewSheet(rankingSheet); err != nil {
		return errors.Wrap(err, "failed to add ranking sheet")
	}
	header := []interface{}{"Technology", report.Charts.Ranking.Attribute.Label(), "Observations"}
	if err := f.SetSheetRow(rankingSheet, "A1", &header); err != nil {
		return errors.Wrap(err, "failed to write ranking header")
	}
	_ = f.SetRowStyle(rankingSheet, 1, 1, bold)
	for i, entry := range report.Charts.Ranking.Entries {
		row := []interface{}{entry.Technology, cell(entry.Value), entry.Count}
		axis, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(rankingSheet, axis, &row); err != nil {
			return errors.Wrapf(err, "failed to write ranking row %d", i+1)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save %s", path)
	}
	return nil
}

// Markdown renders the headline numbers of a report followed by the
// conclusions.
func Markdown(report *stats.Report, conclusions string) string {
	var b strings.Builder
	q := report.Query

	fmt.Fprintf(&b, "# Technology adoption report\n\n")
	fmt.Fprintf(&b, "Source: `%s` (dataset %s), generated %s.\n\n", report.Source, report.DatasetID, report.GeneratedAt.Format(time.RFC3339))
	if !q.Filter.IsEmpty() {
		fmt.Fprintf(&b, "Filters: periods %s; technologies %s.\n\n", selection(q.Filter.Periods), selection(q.Filter.Technologies))
	}

	if report.IsEmpty() {
		b.WriteString("No observations match the selected filters.\n\n")
	} else {
		b.WriteString("## Key figures\n\n")
		fmt.Fprintf(&b, "- Observations: %d\n", report.KPIs.Rows)
		fmt.Fprintf(&b, "- Mean adoption rate: %s%%\n", stats.Format(report.KPIs.MeanAdoptionRate, 2))
		fmt.Fprintf(&b, "- Mean investment (M): %s\n", stats.Format(report.KPIs.MeanInvestment, 2))
		fmt.Fprintf(&b, "- Mean satisfaction: %s\n", stats.Format(report.KPIs.MeanSatisfaction, 2))
		fmt.Fprintf(&b, "- Mean implementation time (months): %s\n\n", stats.Format(report.KPIs.MeanImplementationMonths, 2))

		p := report.Probability
		b.WriteString("## Adoption probability\n\n")
		fmt.Fprintf(&b, "- P(adoption rate > %s%%) = %s (%d of %d)\n",
			stats.Format(p.Threshold, 2), stats.Format(p.Unconditional, 4), p.AboveThreshold, p.Total)
		fmt.Fprintf(&b, "- P(adoption rate > %s%% | investment > %s %s) = %s (%d of %d)\n\n",
			stats.Format(p.Threshold, 2), p.Baseline, stats.Format(p.BaselineInvestment, 2),
			stats.Format(p.Conditional, 4), p.HighInvestmentAbove, p.HighInvestment)

		b.WriteString("## Descriptive statistics\n\n")
		b.WriteString("| Attribute | n | Mean | Median | Std | Min | Max | CV % | Skewness |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|---:|---:|\n")
		for _, r := range report.Summary.Rows {
			fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %s | %s | %s |\n",
				r.Attribute.Label(), r.Count, stats.Format(r.Mean, 2), stats.Format(r.Median, 2),
				stats.Format(r.StdDev, 2), stats.Format(r.Min, 2), stats.Format(r.Max, 2),
				stats.Format(r.CVPercent, 2), stats.Format(r.Skewness, 2))
		}
		b.WriteString("\n")
	}

	if conclusions == "" {
		conclusions = report.Conclusions
	}
	b.WriteString("## Conclusions\n\n")
	b.WriteString(conclusions)
	return b.String()
}

func selection(values []string) string {
	switch {
	case values == nil:
		return "all"
	case len(values) == 0:
		return "none"
	default:
		return strings.Join(values, ", ")
	}
}
