package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adoptdash/domain/adoption"
)

func TestHistogram_CountsSumToTotal(t *testing.T) {
	view := rateView(0, 5, 10, 15, 20, 25, 30, 35, 40, 45, 50, 100)

	h, err := Histogram(view, adoption.AdoptionRatePercent, DefaultBins)
	require.NoError(t, err)

	require.Len(t, h.Bins, DefaultBins)
	assert.Equal(t, 0.0, h.Bins[0].Lower)
	assert.Equal(t, 100.0, h.Bins[DefaultBins-1].Upper)
	sum := 0
	for _, b := range h.Bins {
		sum += b.Count
	}
	assert.Equal(t, 12, sum)
	assert.Equal(t, 12, h.Total)
	assert.Equal(t, 2, h.Bins[0].Count) // 0, 5
	assert.Equal(t, 1, h.Bins[DefaultBins-1].Count, "maximum falls in the closed last bin")
}

func TestHistogram_Degenerate(t *testing.T) {
	h, err := Histogram(rateView(7, 7, 7), adoption.AdoptionRatePercent, 0)
	require.NoError(t, err)
	require.Len(t, h.Bins, 1)
	assert.Equal(t, 3, h.Bins[0].Count)

	h, err = Histogram(adoption.View{}, adoption.AdoptionRatePercent, 10)
	require.NoError(t, err)
	assert.Empty(t, h.Bins)
	assert.Equal(t, 0, h.Total)
}

func TestBoxByTechnology(t *testing.T) {
	rows := []adoption.Observation{}
	for _, r := range []float64{1, 2, 3, 4, 5, 6, 7, 100} {
		rows = append(rows, obs("Q1_2024", "IoT", r, 1))
	}
	rows = append(rows, obs("Q1_2024", "Blockchain", 9, 1))

	box, err := BoxByTechnology(adoption.NewView(rows), adoption.AdoptionRatePercent)
	require.NoError(t, err)
	require.Len(t, box.Groups, 2)

	iot := box.Groups[0]
	assert.Equal(t, "IoT", iot.Group)
	assert.Equal(t, 8, iot.Count)
	assert.Equal(t, 2.5, iot.Q1)
	assert.Equal(t, 4.5, iot.Median)
	assert.Equal(t, 6.5, iot.Q3)
	assert.Equal(t, 1.0, iot.LowerWhisker)
	assert.Equal(t, 7.0, iot.UpperWhisker)
	assert.Equal(t, []float64{100}, iot.Outliers)
	assert.Equal(t, 100.0, iot.Max)

	single := box.Groups[1]
	assert.Equal(t, 9.0, single.Q1)
	assert.Equal(t, 9.0, single.Q3)
	assert.Equal(t, 9.0, single.LowerWhisker)
	assert.Empty(t, single.Outliers)
}

func TestScatter_SkipsMissing(t *testing.T) {
	view := pairView([]float64{10, math.NaN(), 30}, []float64{1, 2, 3})

	sc, err := Scatter(view, adoption.InvestmentMillions, adoption.AdoptionRatePercent)
	require.NoError(t, err)

	require.Len(t, sc.Points, 2)
	assert.Equal(t, 1.0, sc.Points[0].X)
	assert.Equal(t, 10.0, sc.Points[0].Y)
	assert.Equal(t, "API REST", sc.Points[1].Technology)
}
