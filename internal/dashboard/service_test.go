package dashboard

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"adoptdash/domain/adoption"
	"adoptdash/domain/core"
	"adoptdash/domain/stats"
	"adoptdash/internal"
	"adoptdash/internal/errors"
	"adoptdash/internal/metrics"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Load(ctx context.Context) (*adoption.Dataset, error) {
	args := m.Called(ctx)
	ds, _ := args.Get(0).(*adoption.Dataset)
	return ds, args.Error(1)
}

func (m *mockSource) Describe() string { return "mock" }

func testDataset() *adoption.Dataset {
	row := func(period, tech string, rate, invest float64) adoption.Observation {
		return adoption.Observation{
			Period: period, Technology: tech,
			AdoptingCompanies: 10, AdoptionRatePercent: rate, InvestmentMillions: invest,
			TrainedProfessionals: 100, AverageSatisfaction: 7, ImplementationMonths: 6,
		}
	}
	return adoption.NewDataset([]adoption.Observation{
		row("Q1_2023", "IoT", 10, 1),
		row("Q2_2023", "IoT", 50, 5),
		row("Q1_2023", "Cloud Computing", 45, 6),
		row("Q2_2023", "Cloud Computing", 20, 2),
	}, adoption.Meta{Source: "mock", Hash: core.NewHash([]byte("fixture"))})
}

func newTestService(t *testing.T, src *mockSource) *Service {
	t.Helper()
	svc, err := NewService(src, Options{
		Threshold: 40,
		Logger:    internal.NewDiscardLogger(),
		Metrics:   metrics.New(),
	})
	require.NoError(t, err)
	return svc
}

func TestService_LoadsOnce(t *testing.T) {
	src := &mockSource{}
	src.On("Load", mock.Anything).Return(testDataset(), nil).Once()
	svc := newTestService(t, src)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Summary(context.Background(), adoption.Filter{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, err := svc.Options(context.Background())
	require.NoError(t, err)
	src.AssertNumberOfCalls(t, "Load", 1)
}

func TestService_MissingFileIsCached(t *testing.T) {
	src := &mockSource{}
	src.On("Load", mock.Anything).Return(nil, errors.MissingInputFile("data/database.csv", os.ErrNotExist)).Once()
	svc := newTestService(t, src)

	for i := 0; i < 3; i++ {
		_, err := svc.Report(context.Background(), stats.Query{})
		require.Error(t, err)
		assert.Equal(t, errors.CodeMissingInputFile, errors.GetCode(err))
	}
	src.AssertNumberOfCalls(t, "Load", 1)
}

func TestService_TransientErrorIsRetried(t *testing.T) {
	src := &mockSource{}
	src.On("Load", mock.Anything).Return(nil, stderrors.New("connection reset")).Once()
	src.On("Load", mock.Anything).Return(testDataset(), nil).Once()
	svc := newTestService(t, src)

	_, err := svc.Dataset(context.Background())
	require.Error(t, err)

	ds, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())
	src.AssertExpectations(t)
}

func TestService_Report(t *testing.T) {
	src := &mockSource{}
	src.On("Load", mock.Anything).Return(testDataset(), nil)
	svc := newTestService(t, src)

	report, err := svc.Report(context.Background(), stats.Query{})
	require.NoError(t, err)

	assert.Equal(t, 4, report.KPIs.Rows)
	assert.Len(t, report.Summary.Rows, len(adoption.NumericAttributes))
	assert.Equal(t, 0.5, report.Probability.Unconditional)
	assert.Equal(t, 1.0, report.Probability.Conditional)
	assert.Equal(t, adoption.AdoptionRatePercent, report.Query.Metric)
	assert.Equal(t, "IoT", report.Query.Technology)
	require.NotNil(t, report.Query.Threshold)
	assert.Equal(t, 40.0, *report.Query.Threshold)
	require.Len(t, report.Charts.Trend, 1)
	assert.Equal(t, "IoT", report.Charts.Trend[0].Technology)
	assert.Equal(t, "Adoption rate over time: IoT", report.Charts.TrendTitle)
	assert.Contains(t, report.Conclusions, "<li>")
	assert.NotEmpty(t, report.DatasetID)
}

func TestService_ReportFilteredAndOverridden(t *testing.T) {
	src := &mockSource{}
	src.On("Load", mock.Anything).Return(testDataset(), nil)
	svc := newTestService(t, src)

	threshold := 15.0
	report, err := svc.Report(context.Background(), stats.Query{
		Filter:    adoption.Filter{Technologies: []string{"Cloud Computing"}},
		Metric:    adoption.InvestmentMillions,
		Threshold: &threshold,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.KPIs.Rows)
	assert.Equal(t, "Cloud Computing", report.Query.Technology)
	assert.Equal(t, 1.0, report.Probability.Unconditional)
	assert.Equal(t, adoption.InvestmentMillions, report.Charts.Ranking.Attribute)
}

func TestService_EmptySelection(t *testing.T) {
	src := &mockSource{}
	src.On("Load", mock.Anything).Return(testDataset(), nil)
	svc := newTestService(t, src)

	report, err := svc.Report(context.Background(), stats.Query{Filter: adoption.Filter{Periods: []string{}}})
	require.NoError(t, err)

	assert.True(t, report.IsEmpty())
	assert.True(t, report.Summary.IsEmpty())
	assert.Equal(t, 0.0, report.Probability.Unconditional)
	assert.Empty(t, report.Charts.Trend)
}

func TestService_InvalidMetric(t *testing.T) {
	src := &mockSource{}
	src.On("Load", mock.Anything).Return(testDataset(), nil)
	svc := newTestService(t, src)

	_, err := svc.Ranking(context.Background(), stats.Query{Metric: "Receita"})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestService_TrendAndDistribution(t *testing.T) {
	src := &mockSource{}
	src.On("Load", mock.Anything).Return(testDataset(), nil)
	svc := newTestService(t, src)
	ctx := context.Background()

	all, err := svc.Trend(ctx, stats.Query{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := svc.Trend(ctx, stats.Query{Technology: "IoT"})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Len(t, one[0].Points, 2)

	dist, err := svc.Distribution(ctx, stats.Query{Metric: adoption.InvestmentMillions})
	require.NoError(t, err)
	assert.Equal(t, 4, dist.Histogram.Total)
	assert.Len(t, dist.Box.Groups, 2)

	corr, err := svc.Correlation(ctx, adoption.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 4, corr.N)

	opts, err := svc.Options(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1_2023", "Q2_2023"}, opts.Periods)
	assert.Equal(t, []string{"IoT", "Cloud Computing"}, opts.Technologies)
}

func TestLoadConclusions(t *testing.T) {
	md, rendered, err := LoadConclusions("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConclusions, md)
	assert.Contains(t, rendered, "<ul>")

	path := filepath.Join(t.TempDir(), "conclusions.md")
	require.NoError(t, os.WriteFile(path, []byte("## Findings\n\n*IoT* grows fast.\n"), 0o644))
	_, rendered, err = LoadConclusions(path)
	require.NoError(t, err)
	assert.Contains(t, rendered, "<em>IoT</em>")
	assert.Contains(t, rendered, "Findings</h2>")

	_, _, err = LoadConclusions(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

func TestRenderMarkdown_DropsRawHTML(t *testing.T) {
	out := RenderMarkdown([]byte("hello <script>alert(1)</script>"))
	assert.NotContains(t, out, "<script>")
}

func TestService_NilDatasetIsInternalError(t *testing.T) {
	src := &mockSource{}
	src.On("Load", mock.Anything).Return(nil, nil).Once()
	src.On("Load", mock.Anything).Return(testDataset(), nil).Once()
	svc := newTestService(t, src)

	_, err := svc.Dataset(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeInternalError, errors.GetCode(err))

	ds, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())
	src.AssertExpectations(t)
}
