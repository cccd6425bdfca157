package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/pfopt/internal/advisor"
	"github.com/wonny/pfopt/internal/contracts"
)

// Sheet names of the exported workbook
const (
	SheetSimulation     = "Simulation"
	SheetRecommendation = "Recommendation"
)

// WriteXLSX writes a workbook with the simulation table and the recommendation
func WriteXLSX(w io.Writer, rec *advisor.Recommendation) error {
	result := &contracts.SimulationResult{Tickers: rec.Tickers, Records: rec.Records}
	table, err := rows(result, rec.Scaled)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSimulation); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := setRow(f, SheetSimulation, 1, toCells(Header(rec.Tickers))); err != nil {
		return err
	}
	for i, row := range table {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := setRow(f, SheetSimulation, i+2, cells); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SheetRecommendation); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	for i, row := range recommendationRows(rec) {
		if err := setRow(f, SheetRecommendation, i+1, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func recommendationRows(rec *advisor.Recommendation) [][]interface{} {
	out := [][]interface{}{
		{"Run ID", rec.RunID},
		{"Name", rec.Profile.Name},
		{"Country", rec.Market.Country},
		{"Risk Tolerance", rec.RiskLabel},
		{"Goal", string(rec.Profile.Goal)},
		{"Horizon (years)", rec.HorizonYears},
		{"Selection", rec.Label},
		{"Risk-Free Rate", rec.Market.RiskFreeRate},
		{"Equity Risk Premium", rec.Market.ERP},
		{"Country Risk Premium", rec.Market.CRP},
		{"Portfolios", rec.Portfolios},
		{"Seed", fmt.Sprintf("%d", rec.Seed)},
		{"Expected Return (h)", rec.Chosen.Return},
		{"Volatility (h)", rec.Chosen.Volatility},
		{"Sharpe (h)", rec.Chosen.Sharpe},
		{"VaR 95% (period)", rec.Risk.Historical95.VaR},
		{"CVaR 95% (period)", rec.Risk.Historical95.CVaR},
		{"Max Drawdown", rec.Risk.MaxDrawdown},
		{},
		{"Ticker", "Weight"},
	}
	for _, a := range sortedAllocation(rec) {
		out = append(out, []interface{}{a.Ticker, a.Weight})
	}
	return out
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Allocation one ticker weight
type Allocation struct {
	Ticker string
	Weight float64
}

// sortedAllocation heaviest first, ticker order on ties
func sortedAllocation(rec *advisor.Recommendation) []Allocation {
	out := make([]Allocation, 0, len(rec.Tickers))
	for i, t := range rec.Tickers {
		if i < len(rec.Chosen.Weights) {
			out = append(out, Allocation{Ticker: t, Weight: rec.Chosen.Weights[i]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight > out[j].Weight })
	return out
}
