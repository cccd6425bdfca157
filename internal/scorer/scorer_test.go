package scorer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/pfopt/internal/contracts"
)

func testStats() contracts.AssetStatistics {
	return contracts.AssetStatistics{
		Tickers: []string{"A", "B"},
		Mean:    []float64{0.10, 0.05},
		Covariance: [][]float64{
			{0.04, 0.01},
			{0.01, 0.09},
		},
	}
}

func TestScore(t *testing.T) {
	s, err := New(testStats())
	require.NoError(t, err)

	got, err := s.Score(contracts.WeightVector{0.6, 0.4}, 0.02)
	require.NoError(t, err)

	// w·μ = 0.06 + 0.02 = 0.08
	// wᵀΣw = 0.36*0.04 + 2*0.24*0.01 + 0.16*0.09 = 0.0144 + 0.0048 + 0.0144 = 0.0336
	wantVol := math.Sqrt(0.0336)
	assert.InDelta(t, 0.08, got.Return, 1e-12)
	assert.InDelta(t, wantVol, got.Volatility, 1e-12)
	assert.InDelta(t, (0.08-0.02)/wantVol, got.Sharpe, 1e-12)
}

func TestScore_ZeroVolatility(t *testing.T) {
	stats := contracts.AssetStatistics{
		Mean:       []float64{0.05, 0.10},
		Covariance: [][]float64{{0, 0}, {0, 0.04}},
	}

	s, err := New(stats)
	require.NoError(t, err)

	got, err := s.Score(contracts.WeightVector{1, 0}, 0.02)
	require.NoError(t, err)

	assert.Equal(t, 0.0, got.Volatility)
	assert.Equal(t, 0.0, got.Sharpe)
	assert.InDelta(t, 0.05, got.Return, 1e-12)
}

func TestScore_WeightCountMismatch(t *testing.T) {
	s, err := New(testStats())
	require.NoError(t, err)

	_, err = s.Score(contracts.WeightVector{1}, 0.02)
	assert.ErrorIs(t, err, contracts.ErrInvalidParameter)
}

func TestNew_InvalidStatistics(t *testing.T) {
	tests := []struct {
		name  string
		stats contracts.AssetStatistics
	}{
		{"empty", contracts.AssetStatistics{}},
		{"covariance rows", contracts.AssetStatistics{
			Mean:       []float64{0.1, 0.2},
			Covariance: [][]float64{{0.1, 0}},
		}},
		{"ragged covariance", contracts.AssetStatistics{
			Mean:       []float64{0.1, 0.2},
			Covariance: [][]float64{{0.1, 0}, {0}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.stats)
			assert.ErrorIs(t, err, contracts.ErrInvalidParameter)
		})
	}
}

func TestFromMoments_ClampsNegativeVariance(t *testing.T) {
	got := fromMoments(0.05, -1e-18, 0.01)
	assert.Equal(t, 0.0, got.Volatility)
	assert.Equal(t, 0.0, got.Sharpe)
}

func TestSharpeRatio(t *testing.T) {
	assert.InDelta(t, 0.5, SharpeRatio(0.12, 0.2, 0.02), 1e-12)
	assert.Equal(t, 0.0, SharpeRatio(0.12, 0, 0.02))
}
