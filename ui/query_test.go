package ui

import (
	stderrors "errors"
	"math"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adoptdash/domain/adoption"
	"adoptdash/domain/stats"
	"adoptdash/internal/errors"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		periods      []string
		technologies []string
	}{
		{"absent means unrestricted", "", nil, nil},
		{"repeated values", "period=Q1_2023&period=Q2_2023", []string{"Q1_2023", "Q2_2023"}, nil},
		{"empty value selects nothing", "technology=", nil, []string{}},
		{"hidden marker plus checked boxes", "technology=&technology=IoT", nil, []string{"IoT"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.raw)
			require.NoError(t, err)
			f := parseFilter(values)
			assert.Equal(t, tt.periods, f.Periods)
			assert.Equal(t, tt.technologies, f.Technologies)
		})
	}
}

func TestParseQuery(t *testing.T) {
	values, err := url.ParseQuery("metric=INVESTIMENTO_MILHOES&tech=IoT&threshold=55.5&baseline=Median")
	require.NoError(t, err)

	q, err := parseQuery(values)
	require.NoError(t, err)
	assert.Equal(t, adoption.InvestmentMillions, q.Metric)
	assert.Equal(t, "IoT", q.Technology)
	require.NotNil(t, q.Threshold)
	assert.Equal(t, 55.5, *q.Threshold)
	assert.Equal(t, stats.BaselineMedian, q.Baseline)
}

func TestParseQuery_Defaults(t *testing.T) {
	q, err := parseQuery(url.Values{})
	require.NoError(t, err)
	assert.Empty(t, q.Metric)
	assert.Nil(t, q.Threshold)
	assert.Empty(t, q.Baseline)
	assert.True(t, q.Filter.IsEmpty())
}

func TestParseQuery_RejectsNonFiniteThreshold(t *testing.T) {
	for _, raw := range []string{"NaN", "Inf", "forty"} {
		_, err := parseQuery(url.Values{"threshold": {raw}})
		assert.Error(t, err, raw)
	}
}

func TestEncodeQuery_RoundTrip(t *testing.T) {
	threshold := 30.0
	q := stats.Query{
		Filter:     adoption.Filter{Periods: []string{}, Technologies: []string{"IoT", "API REST"}},
		Metric:     adoption.AverageSatisfaction,
		Technology: "IoT",
		Threshold:  &threshold,
		Baseline:   stats.BaselineMedian,
	}
	values, err := url.ParseQuery(encodeQuery(q))
	require.NoError(t, err)

	back, err := parseQuery(values)
	require.NoError(t, err)
	assert.Equal(t, q, back)
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "1,234.57", display(1234.567))
	assert.Equal(t, "—", display(math.NaN()))
	assert.Equal(t, "∞", display(math.Inf(1)))
	assert.Equal(t, "33.33%", displayPercent(1.0/3.0))
}

func TestSummaryDTO_NonFiniteIsNull(t *testing.T) {
	dto := newSummaryDTO(stats.Summary{Rows: []stats.SummaryRow{{
		Attribute: adoption.AdoptionRatePercent,
		Count:     1,
		Mean:      12,
		StdDev:    math.NaN(),
		CVPercent: math.Inf(1),
	}}})

	row := dto.Rows[0]
	require.NotNil(t, row.Mean)
	assert.Equal(t, 12.0, *row.Mean)
	assert.Nil(t, row.StdDev)
	assert.Nil(t, row.CVPercent)
	assert.Equal(t, "—", row.Display["std"])
	assert.Equal(t, "∞", row.Display["cv_percent"])
	assert.Equal(t, "Adoption rate (%)", row.Label)
}

func TestErrorBody(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"plain error", stderrors.New("boom"), errors.CodeInternalError, http.StatusInternalServerError},
		{"invalid input", errors.InvalidInput("bad metric"), errors.CodeInvalidInput, http.StatusBadRequest},
		{"validation", errors.ValidationError("row 2: period and technology are required"), errors.CodeValidationError, http.StatusBadRequest},
		{"missing file", errors.MissingInputFile("data/database.csv", nil), errors.CodeMissingInputFile, http.StatusServiceUnavailable},
		{"database", errors.DatabaseError(stderrors.New("closed"), "failed to list observations"), errors.CodeDatabaseError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := newErrorBody(tt.err)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.err.Error(), body.Error)
			assert.Equal(t, tt.status, statusFor(tt.err))
		})
	}
}
