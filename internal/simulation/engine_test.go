package simulation

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/pfopt/internal/contracts"
	"github.com/wonny/pfopt/internal/returns"
)

// 3 assets, 4 daily rows: A rising, B flat, C falling
func scenarioReturns(t *testing.T) contracts.ReturnMatrix {
	t.Helper()

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	prices := contracts.PriceMatrix{
		Tickers: []string{"A", "B", "C"},
		Dates:   []time.Time{start, start.AddDate(0, 0, 1), start.AddDate(0, 0, 2), start.AddDate(0, 0, 3)},
		Rows: [][]float64{
			{100, 50, 80},
			{102, 50, 78},
			{105, 50, 77},
			{107, 50, 74},
		},
	}

	r, err := returns.ComputeReturns(prices)
	require.NoError(t, err)
	return r
}

func TestSimulate_Scenario(t *testing.T) {
	r := scenarioReturns(t)
	engine := NewEngine(4)

	res, err := engine.Simulate(context.Background(), r, Params{RiskFreeRate: 0.02, N: 200, Seed: 42})
	require.NoError(t, err)

	require.Equal(t, 200, res.Len())
	assert.Equal(t, uint64(42), res.Seed)
	assert.Equal(t, contracts.FrequencyDaily, res.Frequency)
	assert.Equal(t, []string{"A", "B", "C"}, res.Tickers)

	for i, rec := range res.Records {
		assert.Equal(t, i, rec.Trial)
		require.Len(t, rec.Weights, 3)
		assert.InDelta(t, 1.0, rec.Weights.Sum(), contracts.WeightTolerance)
	}

	again, err := engine.Simulate(context.Background(), r, Params{RiskFreeRate: 0.02, N: 200, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, res.Records, again.Records)
}

func TestSimulate_UnseededRunsDiffer(t *testing.T) {
	r := scenarioReturns(t)
	engine := NewEngine(2)

	a, err := engine.Simulate(context.Background(), r, Params{RiskFreeRate: 0.02, N: 200})
	require.NoError(t, err)
	b, err := engine.Simulate(context.Background(), r, Params{RiskFreeRate: 0.02, N: 200})
	require.NoError(t, err)

	assert.NotZero(t, a.Seed)
	assert.NotEqual(t, a.Records, b.Records)
}

func TestSimulate_WorkerCountInvariant(t *testing.T) {
	r := scenarioReturns(t)
	engine := NewEngine(1)

	base, err := engine.Simulate(context.Background(), r, Params{RiskFreeRate: 0.02, N: 300, Seed: 7, Workers: 1})
	require.NoError(t, err)

	for _, workers := range []int{2, 3, 8, 64} {
		got, err := engine.Simulate(context.Background(), r, Params{RiskFreeRate: 0.02, N: 300, Seed: 7, Workers: workers})
		require.NoError(t, err)
		assert.Equal(t, base.Records, got.Records, "workers=%d", workers)
		assert.Equal(t, base.MaxSharpe, got.MaxSharpe)
		assert.Equal(t, base.MinVolatility, got.MinVolatility)
	}
}

func TestSimulate_InvalidParameters(t *testing.T) {
	r := scenarioReturns(t)
	single := contracts.ReturnMatrix{
		Tickers: []string{"A"},
		Dates:   r.Dates,
		Rows:    [][]float64{{0.01}, {0.02}, {0.03}},
	}

	tests := []struct {
		name   string
		r      contracts.ReturnMatrix
		params Params
	}{
		{"zero portfolios", r, Params{N: 0, Seed: 1}},
		{"negative portfolios", r, Params{N: -5, Seed: 1}},
		{"single asset", single, Params{N: 10, Seed: 1}},
	}

	engine := NewEngine(2)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Simulate(context.Background(), tt.r, tt.params)
			assert.ErrorIs(t, err, contracts.ErrInvalidParameter)
		})
	}
}

func TestSimulate_InsufficientReturns(t *testing.T) {
	r := contracts.ReturnMatrix{
		Tickers: []string{"A", "B"},
		Dates:   []time.Time{time.Now()},
		Rows:    [][]float64{{0.01, 0.02}},
	}

	_, err := NewEngine(1).Simulate(context.Background(), r, Params{N: 10, Seed: 1})
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestSimulate_TwoPriceRows(t *testing.T) {
	d0 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	prices := contracts.PriceMatrix{
		Tickers: []string{"A", "B", "C"},
		Dates:   []time.Time{d0, d0.AddDate(0, 0, 1)},
		Rows:    [][]float64{{100, 50, 20}, {101, 50, 19}},
	}

	// 가격 2행은 수익률 1행으로 변환되지만 공분산에는 부족
	r, err := returns.ComputeReturns(prices)
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())

	_, err = NewEngine(1).Simulate(context.Background(), r, Params{N: 10, Seed: 1})
	assert.ErrorIs(t, err, contracts.ErrInsufficientData)
}

func TestSimulate_ReferencePortfolios(t *testing.T) {
	r := scenarioReturns(t)

	res, err := NewEngine(4).Simulate(context.Background(), r, Params{RiskFreeRate: 0.02, N: 500, Seed: 99})
	require.NoError(t, err)

	for _, rec := range res.Records {
		assert.LessOrEqual(t, rec.Sharpe, res.MaxSharpe.Sharpe)
		assert.GreaterOrEqual(t, rec.Volatility, res.MinVolatility.Volatility)
	}
}

func TestReferencePortfolios_FirstOccurrenceWins(t *testing.T) {
	records := []contracts.PortfolioRecord{
		{Trial: 0, Sharpe: 1.0, Volatility: 0.3},
		{Trial: 1, Sharpe: 2.0, Volatility: 0.1},
		{Trial: 2, Sharpe: 2.0, Volatility: 0.1},
	}

	maxSharpe, minVol := referencePortfolios(records)
	assert.Equal(t, 1, maxSharpe.Trial)
	assert.Equal(t, 1, minVol.Trial)
}

func TestSimulate_Progress(t *testing.T) {
	r := scenarioReturns(t)

	var calls atomic.Int64
	var last atomic.Int64
	params := Params{
		RiskFreeRate: 0.02,
		N:            150,
		Seed:         3,
		Progress: func(completed, total int) {
			calls.Add(1)
			last.Store(int64(completed))
			assert.Equal(t, 150, total)
		},
	}

	_, err := NewEngine(4).Simulate(context.Background(), r, params)
	require.NoError(t, err)

	assert.Equal(t, int64(150), calls.Load())
	assert.Equal(t, int64(150), last.Load())
}

func TestSimulate_Cancelled(t *testing.T) {
	r := scenarioReturns(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(2).Simulate(ctx, r, Params{N: 1000, Seed: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
