package adoption

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input string
		key   int
		ok    bool
	}{
		{"Q1_2023", 20231, true},
		{"q4-2024", 20244, true},
		{"Q2 2025", 20252, true},
		{"2024Q3", 20243, true},
		{"2024-Q1", 20241, true},
		{"Q5_2023", 0, false},
		{"Jan 2023", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		key, ok := ParsePeriod(tt.input)
		assert.Equal(t, tt.ok, ok, tt.input)
		assert.Equal(t, tt.key, key, tt.input)
	}
}

func TestOrderPeriods_Chronological(t *testing.T) {
	seen := []string{"Q1_2024", "Q3_2023", "Q1_2023", "Q1_2025", "Q2_2023"}
	got := OrderPeriods(seen, nil)
	assert.Equal(t, []string{"Q1_2023", "Q2_2023", "Q3_2023", "Q1_2024", "Q1_2025"}, got)
}

func TestOrderPeriods_ExplicitOrderWins(t *testing.T) {
	seen := []string{"Q1_2023", "Baseline", "Q2_2023", "Pilot"}
	got := OrderPeriods(seen, []string{"Pilot", "Q2_2023", "Missing"})
	assert.Equal(t, []string{"Pilot", "Q2_2023", "Q1_2023", "Baseline"}, got)
}
