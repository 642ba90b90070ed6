package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adoptdash/domain/adoption"
)

func sampleView() adoption.View {
	return adoption.NewView([]adoption.Observation{
		obs("Q2_2023", "IoT", 30, 4),
		obs("Q1_2023", "IoT", 20, 3),
		obs("Q1_2023", "Blockchain", 10, 2),
		obs("Q2_2023", "Blockchain", 12, 2),
		obs("Q1_2023", "Big Data", 20, 5),
		obs("Q2_2023", "Big Data", 30, 6),
		obs("Q2_2023", "IoT", 40, 4),
	})
}

func TestKPIs(t *testing.T) {
	k := KPIs(sampleView())
	assert.Equal(t, 7, k.Rows)
	assert.InDelta(t, 162.0/7, k.MeanAdoptionRate, 1e-12)
	assert.InDelta(t, 26.0/7, k.MeanInvestment, 1e-12)
	assert.InDelta(t, 7.5, k.MeanSatisfaction, 1e-12)

	empty := KPIs(adoption.View{})
	assert.Equal(t, 0, empty.Rows)
	assert.True(t, math.IsNaN(empty.MeanAdoptionRate))
}

func TestRankByTechnology_AscendingWithTiesByName(t *testing.T) {
	ranking, err := RankByTechnology(sampleView(), adoption.AdoptionRatePercent)
	require.NoError(t, err)

	require.Len(t, ranking.Entries, 3)
	assert.Equal(t, "Blockchain", ranking.Entries[0].Technology)
	assert.InDelta(t, 11.0, ranking.Entries[0].Value, 1e-12)
	assert.Equal(t, "Big Data", ranking.Entries[1].Technology)
	assert.Equal(t, "IoT", ranking.Entries[2].Technology)
	assert.Equal(t, 3, ranking.Entries[2].Count)

	tied, err := RankByTechnology(sampleView(), adoption.AverageSatisfaction)
	require.NoError(t, err)
	assert.Equal(t, "Big Data", tied.Entries[0].Technology)
	assert.Equal(t, "Blockchain", tied.Entries[1].Technology)
	assert.Equal(t, "IoT", tied.Entries[2].Technology)
}

func TestRankByTechnology_UnknownAttribute(t *testing.T) {
	_, err := RankByTechnology(sampleView(), "Periodo")
	assert.Error(t, err)
}

func TestTrend_ChronologicalAndAveraged(t *testing.T) {
	series := Trend(sampleView(), "IoT")

	require.Len(t, series.Points, 2)
	assert.Equal(t, "Q1_2023", series.Points[0].Period)
	assert.Equal(t, 20.0, series.Points[0].Value)
	assert.Equal(t, "Q2_2023", series.Points[1].Period)
	assert.Equal(t, 35.0, series.Points[1].Value)
	assert.Equal(t, 2, series.Points[1].Count)
}

func TestTrend_UnknownTechnologyIsEmpty(t *testing.T) {
	series := Trend(sampleView(), "Quantum")
	assert.Empty(t, series.Points)
	assert.Equal(t, "Quantum", series.Technology)
}

func TestTrendAll(t *testing.T) {
	all := TrendAll(sampleView())
	require.Len(t, all, 3)
	assert.Equal(t, "IoT", all[0].Technology)
	assert.Equal(t, "Blockchain", all[1].Technology)
	assert.Equal(t, "Big Data", all[2].Technology)
}
