package analysis

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"adoptdash/domain/adoption"
	domainStats "adoptdash/domain/stats"
	"adoptdash/internal/errors"
)

// Correlate returns the Pearson correlation matrix of attrs (all numeric
// attributes when attrs is empty) over the rows where every attribute is
// present. With fewer than two complete rows every entry is NaN; a constant
// column gives NaN in its row and column.
func Correlate(view adoption.View, attrs []adoption.Attribute) (domainStats.CorrelationMatrix, error) {
	if len(attrs) == 0 {
		attrs = adoption.NumericAttributes
	}
	for _, attr := range attrs {
		if !attr.IsNumeric() {
			return domainStats.CorrelationMatrix{}, errors.InvalidInput("unknown attribute: " + string(attr))
		}
	}

	k := len(attrs)
	data := make([]float64, 0, view.Len()*k)
	n := 0
	view.Each(func(o adoption.Observation) {
		row := make([]float64, k)
		for j, attr := range attrs {
			row[j] = o.Value(attr)
			if math.IsNaN(row[j]) {
				return
			}
		}
		data = append(data, row...)
		n++
	})

	m := domainStats.CorrelationMatrix{
		Attributes: append([]adoption.Attribute(nil), attrs...),
		Values:     make([][]float64, k),
		N:          n,
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, k)
		for j := range m.Values[i] {
			m.Values[i][j] = math.NaN()
		}
	}
	if n < 2 {
		return m, nil
	}

	x := mat.NewDense(n, k, data)
	var corr mat.SymDense
	stat.CorrelationMatrix(&corr, x, nil)

	// gonum pins the diagonal to 1 even for a constant column.
	constant := make([]bool, k)
	col := make([]float64, n)
	for j := 0; j < k; j++ {
		mat.Col(col, j, x)
		constant[j] = stat.Variance(col, nil) == 0
	}
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			if constant[i] || constant[j] {
				continue
			}
			m.Values[i][j] = corr.At(i, j)
		}
	}
	return m, nil
}
