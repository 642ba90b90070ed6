package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"adoptdash/adapters/source"
	"adoptdash/adapters/sqlstore"
	"adoptdash/adapters/tabular"
	"adoptdash/domain/adoption"
	"adoptdash/domain/stats"
	"adoptdash/internal"
	"adoptdash/internal/analysis"
	"adoptdash/internal/config"
	"adoptdash/internal/container"
	"adoptdash/internal/export"
	"adoptdash/ports"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataSource string
	rootCmd := &cobra.Command{
		Use:           "adoptdash-cli",
		Short:         "Technology adoption statistics from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataSource, "source", "", "Data source (file path, s3://, postgres:// or sqlite://); overrides DATA_SOURCE")

	rootCmd.AddCommand(
		newDescribeCmd(&dataSource),
		newEstimateCmd(&dataSource),
		newExportCmd(&dataSource),
		newSeedCmd(&dataSource),
	)
	return rootCmd
}

// loadContainer reads the environment configuration and applies --source.
func loadContainer(ctx context.Context, dataSource string) (*container.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dataSource != "" {
		cfg.Data.Source = dataSource
	}
	cfg.Metrics.Enabled = false
	logger := internal.NewLogger(os.Stderr, internal.ParseLogLevel(cfg.Log.Level))
	return container.New(ctx, cfg, logger)
}

func newDescribeCmd(dataSource *string) *cobra.Command {
	var periods, technologies []string

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print descriptive statistics of every numeric attribute",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd.Context(), *dataSource)
			if err != nil {
				return err
			}
			defer c.Shutdown()

			summary, err := c.Dashboard.Summary(cmd.Context(), filterFromFlags(cmd, periods, technologies))
			if err != nil {
				return err
			}
			if summary.IsEmpty() {
				fmt.Fprintln(cmd.OutOrStdout(), "No observations match the selected filters.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(w, "attribute\tn\tmean\tmedian\tstd\tvariance\tmin\tq1\tq3\tmax\tcv %\tskewness\t")
			for _, r := range summary.Rows {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
					r.Attribute, r.Count,
					stats.Format(r.Mean, 2), stats.Format(r.Median, 2), stats.Format(r.StdDev, 2),
					stats.Format(r.Variance, 2), stats.Format(r.Min, 2), stats.Format(r.Q1, 2),
					stats.Format(r.Q3, 2), stats.Format(r.Max, 2), stats.Format(r.CVPercent, 2),
					stats.Format(r.Skewness, 2))
			}
			return w.Flush()
		},
	}
	addFilterFlags(cmd, &periods, &technologies)
	return cmd
}

func newEstimateCmd(dataSource *string) *cobra.Command {
	var periods, technologies []string
	var threshold float64
	var baseline string

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the probability that adoption exceeds a threshold",
		Long: `Estimate P(adoption rate > threshold), unconditionally and among
observations whose investment is above the mean (or median) investment.

Example: adoptdash-cli estimate --threshold 50 --baseline median`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd.Context(), *dataSource)
			if err != nil {
				return err
			}
			defer c.Shutdown()

			q := stats.Query{Filter: filterFromFlags(cmd, periods, technologies)}
			if baseline != "" {
				if q.Baseline, err = analysis.ParseBaseline(baseline); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("threshold") {
				q.Threshold = &threshold
			}
			p, err := c.Dashboard.Probability(cmd.Context(), q)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "P(adoption rate > %s%%)                  = %s  (%d of %d)\n",
				stats.Format(p.Threshold, 2), stats.Format(p.Unconditional, 4), p.AboveThreshold, p.Total)
			fmt.Fprintf(out, "P(adoption rate > %s%% | high investment) = %s  (%d of %d)\n",
				stats.Format(p.Threshold, 2), stats.Format(p.Conditional, 4), p.HighInvestmentAbove, p.HighInvestment)
			fmt.Fprintf(out, "high investment: above the %s investment of %s\n", p.Baseline, stats.Format(p.BaselineInvestment, 2))
			return nil
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 40, "Adoption rate threshold in percent (defaults to ADOPTION_THRESHOLD)")
	cmd.Flags().StringVar(&baseline, "baseline", "", "Investment baseline: mean or median (defaults to INVESTMENT_BASELINE)")
	addFilterFlags(cmd, &periods, &technologies)
	return cmd
}

func newExportCmd(dataSource *string) *cobra.Command {
	var periods, technologies []string
	var outDir, format, metric, tech string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every chart, summary.xlsx and report.md to a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadContainer(cmd.Context(), *dataSource)
			if err != nil {
				return err
			}
			defer c.Shutdown()

			q := stats.Query{Filter: filterFromFlags(cmd, periods, technologies), Technology: tech}
			if metric != "" {
				attr, err := adoption.ParseAttribute(metric)
				if err != nil {
					return err
				}
				q.Metric = attr
			}

			exp := export.New(c.Dashboard, c.Renderer, c.Logger)
			res, err := exp.Run(cmd.Context(), q, export.Options{
				Dir:         outDir,
				Format:      ports.ImageFormat(format),
				Conclusions: c.Dashboard.ConclusionsMarkdown(),
			})
			if err != nil {
				return err
			}
			for _, f := range res.Files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "export", "Output directory")
	cmd.Flags().StringVar(&format, "format", string(ports.FormatPNG), "Chart format: png or svg")
	cmd.Flags().StringVar(&metric, "metric", "", "Ranking metric column (default adoption rate)")
	cmd.Flags().StringVar(&tech, "tech", "", "Technology shown in the trend chart")
	addFilterFlags(cmd, &periods, &technologies)
	return cmd
}

func newSeedCmd(dataSource *string) *cobra.Command {
	var dsn, driver, table string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Copy the file dataset into a SQL table",
		Long: `Create the observations table and replace its content with the rows
of the file dataset, so the dashboard can read from the database instead.

Example: adoptdash-cli seed --source data/database.csv --dsn sqlite://adoption.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if *dataSource != "" {
				cfg.Data.Source = *dataSource
			}
			if table == "" {
				table = cfg.Data.Table
			}
			logger := internal.NewLogger(os.Stderr, internal.ParseLogLevel(cfg.Log.Level))

			ds, err := tabular.NewFileSource(cfg.Data.Source, source.TabularConfig(cfg.Data), logger).Load(ctx)
			if err != nil {
				return err
			}

			conn := dsn
			if driver == "" {
				driver, conn, err = sqlstore.ParseDSN(dsn)
				if err != nil {
					return err
				}
			}
			db, err := sqlstore.Open(ctx, driver, conn)
			if err != nil {
				return err
			}
			defer db.Close()

			repo, err := sqlstore.NewObservationRepository(db, table)
			if err != nil {
				return err
			}
			if err := repo.Migrate(ctx); err != nil {
				return err
			}

			rows := make([]adoption.Observation, 0, ds.Len())
			ds.All().Each(func(o adoption.Observation) { rows = append(rows, o) })
			if err := repo.Replace(ctx, rows); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d observations into %s table %s\n", len(rows), driver, table)
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "Target database URL (postgres://... or sqlite://path), or a raw DSN with --driver")
	cmd.Flags().StringVar(&driver, "driver", "", "Database driver (postgres or sqlite); inferred from --dsn when omitted")
	cmd.Flags().StringVar(&table, "table", "", "Target table (defaults to DATA_TABLE)")
	_ = cmd.MarkFlagRequired("dsn")
	return cmd
}

func addFilterFlags(cmd *cobra.Command, periods, technologies *[]string) {
	cmd.Flags().StringSliceVar(periods, "period", nil, "Restrict to these periods (repeatable)")
	cmd.Flags().StringSliceVar(technologies, "technology", nil, "Restrict to these technologies (repeatable)")
}

// filterFromFlags keeps a dimension unrestricted unless its flag was given.
func filterFromFlags(cmd *cobra.Command, periods, technologies []string) adoption.Filter {
	var f adoption.Filter
	if cmd.Flags().Changed("period") {
		f.Periods = append([]string{}, periods...)
	}
	if cmd.Flags().Changed("technology") {
		f.Technologies = append([]string{}, technologies...)
	}
	return f
}
