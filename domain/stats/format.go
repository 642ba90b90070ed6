package stats

import (
	"math"
	"strconv"
)

// Missing is shown for undefined statistics.
const Missing = "—"

// Round rounds half away from zero to places decimals. NaN and ±Inf pass
// through unchanged so degenerate statistics stay visible after rounding.
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Format renders v with a fixed number of decimals for display, using the
// non-finite markers "—" (NaN), "∞" and "-∞".
func Format(v float64, places int) string {
	switch {
	case math.IsNaN(v):
		return Missing
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	}
	return strconv.FormatFloat(Round(v, places), 'f', places, 64)
}

// Finite returns a pointer to v, or nil when v is not finite. It lets JSON
// encoders emit null for degenerate statistics.
func Finite(v float64) *float64 {
	if !IsFinite(v) {
		return nil
	}
	return &v
}
