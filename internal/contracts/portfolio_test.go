package contracts

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightVector_IsValid(t *testing.T) {
	tests := []struct {
		name string
		w    WeightVector
		want bool
	}{
		{"sums to one", WeightVector{0.2, 0.3, 0.5}, true},
		{"single asset", WeightVector{1.0}, true},
		{"negative weight", WeightVector{-0.1, 0.6, 0.5}, false},
		{"sum below one", WeightVector{0.2, 0.3}, false},
		{"empty", WeightVector{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.w.IsValid())
		})
	}
}

func TestWeightVector_ByTicker(t *testing.T) {
	w := WeightVector{0.25, 0.75}
	got := w.ByTicker([]string{"AAA", "BBB"})

	assert.Equal(t, map[string]float64{"AAA": 0.25, "BBB": 0.75}, got)
}

func TestPriceMatrix_Validate(t *testing.T) {
	d0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d1 := d0.AddDate(0, 0, 1)

	ok := PriceMatrix{
		Tickers: []string{"A", "B"},
		Dates:   []time.Time{d0, d1},
		Rows:    [][]float64{{1, 2}, {1.1, 2.2}},
	}
	require.NoError(t, ok.Validate())
	assert.Equal(t, []float64{1, 1.1}, ok.Column(0))

	unordered := ok
	unordered.Dates = []time.Time{d1, d0}
	assert.ErrorIs(t, unordered.Validate(), ErrInvalidParameter)

	ragged := ok
	ragged.Rows = [][]float64{{1, 2}, {1.1}}
	assert.ErrorIs(t, ragged.Validate(), ErrInvalidParameter)

	nonFinite := ok
	nonFinite.Rows = [][]float64{{1, 2}, {math.NaN(), 2.2}}
	assert.ErrorIs(t, nonFinite.Validate(), ErrInvalidParameter)

	nonFinite.Rows = [][]float64{{1, math.Inf(1)}, {1.1, 2.2}}
	assert.ErrorIs(t, nonFinite.Validate(), ErrInvalidParameter)
}

func TestSelectionPolicy_Label(t *testing.T) {
	p := SelectionPolicy{Risk: RiskLow, Goal: GoalCapitalPreservation}
	assert.Equal(t, "Low Risk + Min Volatility", p.Label())

	p = SelectionPolicy{Risk: RiskHigh, Goal: GoalTier("unknown")}
	assert.Equal(t, "High Risk + Balanced", p.Label())
}

func TestFrequency_String(t *testing.T) {
	assert.Equal(t, "daily", FrequencyDaily.String())
	assert.Equal(t, "weekly", FrequencyWeekly.String())
	assert.Equal(t, "monthly", FrequencyMonthly.String())
	assert.Equal(t, "4/yr", Frequency(4).String())
}
