package horizon

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/pfopt/internal/contracts"
)

func TestParseHorizon(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"1Y", 1},
		{"3Y", 3},
		{"5Y", 5},
		{"10+Y", 10},
		{" 5y ", 5},
		{"", 1},
		{"forever", 1},
		{"0Y", 1},
		{"-3Y", 1},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHorizon(tt.label))
		})
	}
}

func TestScaleToHorizon_IdentityAtOneYear(t *testing.T) {
	const rf = 0.02
	records := []contracts.PortfolioRecord{
		{Trial: 0, Return: 0.12, Volatility: 0.20, Sharpe: (0.12 - rf) / 0.20, Weights: contracts.WeightVector{0.5, 0.5}},
		{Trial: 1, Return: -0.03, Volatility: 0.15, Sharpe: (-0.03 - rf) / 0.15, Weights: contracts.WeightVector{0.2, 0.8}},
		{Trial: 2, Return: 0.05, Volatility: 0, Sharpe: 0, Weights: contracts.WeightVector{1, 0}},
	}

	scaled := ScaleToHorizon(records, 1, rf)
	require.Len(t, scaled, len(records))

	for i, rec := range records {
		assert.Equal(t, rec.Trial, scaled[i].Trial)
		assert.InDelta(t, rec.Return, scaled[i].Return, 1e-12)
		assert.InDelta(t, rec.Volatility, scaled[i].Volatility, 1e-12)
		assert.InDelta(t, rec.Sharpe, scaled[i].Sharpe, 1e-12)
		assert.Equal(t, rec.Weights, scaled[i].Weights)
	}
}

func TestScaleToHorizon_FiveYears(t *testing.T) {
	records := []contracts.PortfolioRecord{{Trial: 4, Return: 0.10, Volatility: 0.20}}

	scaled := ScaleToHorizon(records, 5, 0.03)
	require.Len(t, scaled, 1)

	wantRet := math.Pow(1.10, 5) - 1
	wantVol := 0.20 * math.Sqrt(5)
	assert.InDelta(t, wantRet, scaled[0].Return, 1e-12)
	assert.InDelta(t, wantVol, scaled[0].Volatility, 1e-12)
	assert.InDelta(t, (wantRet-0.15)/wantVol, scaled[0].Sharpe, 1e-12)
	assert.Equal(t, 4, scaled[0].Trial)
}

func TestScaleToHorizon_ZeroVolatility(t *testing.T) {
	scaled := ScaleToHorizon([]contracts.PortfolioRecord{{Return: 0.05}}, 10, 0.02)
	assert.Equal(t, 0.0, scaled[0].Volatility)
	assert.Equal(t, 0.0, scaled[0].Sharpe)
}

func TestScaleToHorizon_Empty(t *testing.T) {
	assert.Empty(t, ScaleToHorizon(nil, 3, 0.02))
}
