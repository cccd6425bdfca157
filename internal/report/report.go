// Package report exports simulation results and recommendations as CSV,
// XLSX, PNG charts and plain-text summaries.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/wonny/pfopt/internal/contracts"
)

// Header columns of the simulation table
func Header(tickers []string) []string {
	header := make([]string, 0, len(tickers)+6)
	header = append(header, "Return", "Volatility", "Sharpe")
	header = append(header, tickers...)
	header = append(header, "Return_h", "Volatility_h", "Sharpe_h")
	return header
}

// rows one row per trial; scaled[i] must belong to records[i]
func rows(result *contracts.SimulationResult, scaled []contracts.HorizonScaledRecord) ([][]float64, error) {
	if len(scaled) != len(result.Records) {
		return nil, fmt.Errorf("%w: %d records but %d scaled records",
			contracts.ErrInvalidParameter, len(result.Records), len(scaled))
	}

	out := make([][]float64, len(result.Records))
	for i, rec := range result.Records {
		s := scaled[i]
		if s.Trial != rec.Trial {
			return nil, fmt.Errorf("%w: scaled record %d belongs to trial %d, want %d",
				contracts.ErrInvalidParameter, i, s.Trial, rec.Trial)
		}

		row := make([]float64, 0, len(rec.Weights)+6)
		row = append(row, rec.Return, rec.Volatility, rec.Sharpe)
		row = append(row, rec.Weights...)
		row = append(row, s.Return, s.Volatility, s.Sharpe)
		out[i] = row
	}
	return out, nil
}

// WriteCSV writes the simulation table
func WriteCSV(w io.Writer, result *contracts.SimulationResult, scaled []contracts.HorizonScaledRecord) error {
	table, err := rows(result, scaled)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(Header(result.Tickers)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(result.Tickers)+6)
	for _, row := range table {
		for j, v := range row {
			record[j] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
