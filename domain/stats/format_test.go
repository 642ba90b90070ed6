package stats

import (
	"math"
	"testing"

	"adoptdash/domain/adoption"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 1.24, Round(1.2351, 2))
	assert.Equal(t, -1.24, Round(-1.2351, 2))
	assert.Equal(t, 3.0, Round(2.999, 2))
	assert.True(t, math.IsNaN(Round(math.NaN(), 2)))
	assert.True(t, math.IsInf(Round(math.Inf(1), 2), 1))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "12.35", Format(12.345678, 2))
	assert.Equal(t, "0.50", Format(0.5, 2))
	assert.Equal(t, Missing, Format(math.NaN(), 2))
	assert.Equal(t, "∞", Format(math.Inf(1), 2))
	assert.Equal(t, "-∞", Format(math.Inf(-1), 2))
}

func TestFinite(t *testing.T) {
	assert.Nil(t, Finite(math.NaN()))
	assert.Nil(t, Finite(math.Inf(-1)))
	if p := Finite(2.5); assert.NotNil(t, p) {
		assert.Equal(t, 2.5, *p)
	}
}

func TestSummaryRounded_KeepsFullPrecisionSource(t *testing.T) {
	s := Summary{Rows: []SummaryRow{{
		Attribute: adoption.AdoptionRatePercent,
		Count:     3,
		Mean:      10.0 / 3.0,
		StdDev:    math.NaN(),
		CVPercent: math.Inf(1),
	}}}

	r := s.Rounded(2)

	assert.Equal(t, 3.33, r.Rows[0].Mean)
	assert.True(t, math.IsNaN(r.Rows[0].StdDev))
	assert.True(t, math.IsInf(r.Rows[0].CVPercent, 1))
	assert.Equal(t, 10.0/3.0, s.Rows[0].Mean)

	row, ok := r.Get(adoption.AdoptionRatePercent)
	assert.True(t, ok)
	assert.Equal(t, 3, row.Count)
	_, ok = r.Get(adoption.InvestmentMillions)
	assert.False(t, ok)
	assert.Len(t, r.Map(), 1)
}
