package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/wonny/pfopt/internal/advisor"
	"github.com/wonny/pfopt/internal/contracts"
	"github.com/wonny/pfopt/internal/risk"
)

func sampleRecommendation() *advisor.Recommendation {
	records := []contracts.PortfolioRecord{
		{Trial: 0, Return: 0.10, Volatility: 0.20, Sharpe: 0.40, Weights: contracts.WeightVector{0.5, 0.3, 0.2}},
		{Trial: 1, Return: 0.08, Volatility: 0.10, Sharpe: 0.60, Weights: contracts.WeightVector{0.2, 0.2, 0.6}},
	}
	scaled := []contracts.HorizonScaledRecord{
		{Trial: 0, Return: 0.20, Volatility: 0.2828, Sharpe: 0.57, Weights: records[0].Weights},
		{Trial: 1, Return: 0.16, Volatility: 0.1414, Sharpe: 0.85, Weights: records[1].Weights},
	}
	return &advisor.Recommendation{
		RunID:        "run-1",
		CreatedAt:    time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC),
		Profile:      advisor.Profile{Name: "Ada", Country: "India", RiskTolerance: contracts.RiskLow, Goal: contracts.GoalCapitalPreservation, Horizon: contracts.Horizon3Y},
		Market:       advisor.MarketAssumptions{Country: "India", RiskFreeRate: 0.0692, ERP: 0.0726, CRP: 0.0293, MatureERP: 0.0433},
		HorizonYears: 2,
		Portfolios:   2,
		Seed:         7,
		Frequency:    contracts.FrequencyDaily,
		Observations: 30,
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC),
		Tickers:      []string{"AAA", "BBB", "CCC"},
		RiskLabel:    "Low Risk",
		GoalLabel:    "Min Volatility",
		Label:        "Low Risk + Min Volatility",
		Chosen:       scaled[1],
		Allocation:   scaled[1].Weights.ByTicker([]string{"AAA", "BBB", "CCC"}),
		Records:      records,
		Scaled:       scaled,
		Risk:         risk.Metrics{
			Observations: 29,
			Historical95: risk.VaRResult{Confidence: 0.95, VaR: 0.021, CVaR: 0.03},
			Historical99: risk.VaRResult{Confidence: 0.99, VaR: 0.035, CVaR: 0.035},
			MaxDrawdown:  0.08,
		},
		Notes: "You prefer a cautious approach.",
	}
}

func TestWriteCSV(t *testing.T) {
	rec := sampleRecommendation()
	result := &contracts.SimulationResult{Tickers: rec.Tickers, Records: rec.Records}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, result, rec.Scaled))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Return", "Volatility", "Sharpe", "AAA", "BBB", "CCC", "Return_h", "Volatility_h", "Sharpe_h"}, rows[0])
	assert.Equal(t, []string{"0.1", "0.2", "0.4", "0.5", "0.3", "0.2", "0.2", "0.2828", "0.57"}, rows[1])
	assert.Equal(t, "0.6", rows[2][5])
}

func TestWriteCSV_MismatchedTables(t *testing.T) {
	rec := sampleRecommendation()
	result := &contracts.SimulationResult{Tickers: rec.Tickers, Records: rec.Records}

	err := WriteCSV(&bytes.Buffer{}, result, rec.Scaled[:1])
	assert.ErrorIs(t, err, contracts.ErrInvalidParameter)

	swapped := []contracts.HorizonScaledRecord{rec.Scaled[1], rec.Scaled[0]}
	err = WriteCSV(&bytes.Buffer{}, result, swapped)
	assert.ErrorIs(t, err, contracts.ErrInvalidParameter)
}

func TestWriteXLSX(t *testing.T) {
	rec := sampleRecommendation()

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, rec))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSimulation, SheetRecommendation}, f.GetSheetList())

	sim, err := f.GetRows(SheetSimulation)
	require.NoError(t, err)
	require.Len(t, sim, 3)
	assert.Equal(t, Header(rec.Tickers), sim[0])

	summary, err := f.GetRows(SheetRecommendation)
	require.NoError(t, err)
	assert.Equal(t, "Run ID", summary[0][0])
	assert.Equal(t, "run-1", summary[0][1])

	// 비중 내림차순, 동률은 티커 순서 유지
	n := len(summary)
	assert.Equal(t, "CCC", summary[n-3][0])
	assert.Equal(t, "AAA", summary[n-2][0])
	assert.Equal(t, "BBB", summary[n-1][0])
}

func TestAllocationChart(t *testing.T) {
	png, err := AllocationChart(sampleRecommendation())
	require.NoError(t, err)
	require.Greater(t, len(png), 8)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestAllocationChart_Empty(t *testing.T) {
	_, err := AllocationChart(&advisor.Recommendation{})
	assert.Error(t, err)
}

func TestFrontierChart(t *testing.T) {
	png, err := FrontierChart(sampleRecommendation())
	require.NoError(t, err)
	require.Greater(t, len(png), 8)
	assert.Equal(t, []byte("\x89PNG"), png[:4])
}

func TestFrontierChart_Empty(t *testing.T) {
	_, err := FrontierChart(&advisor.Recommendation{})
	assert.ErrorIs(t, err, contracts.ErrInvalidParameter)
}

func TestSummary(t *testing.T) {
	s := Summary(sampleRecommendation())

	assert.Contains(t, s, "Portfolio Recommendation for Ada")
	assert.Contains(t, s, "Low Risk + Min Volatility")
	assert.Contains(t, s, "risk-free 6.92%")
	assert.Contains(t, s, "seed 7")
	assert.Contains(t, s, "You prefer a cautious approach.")
	assert.Contains(t, s, "per daily period, 29 observations")
	assert.Contains(t, s, "Max drawdown        8.00%")

	// 비중 내림차순
	assert.Less(t, strings.Index(s, "CCC"), strings.Index(s, "AAA"))
}
