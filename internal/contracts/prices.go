package contracts

import (
	"fmt"
	"math"
	"time"
)

// PriceMatrix aligned price history, one column per ticker
// ⭐ 계약: 타임스탬프 오름차순, 결측 셀 없음 (정렬/정합은 ingest 레이어 책임)
type PriceMatrix struct {
	Tickers []string    `json:"tickers"`
	Dates   []time.Time `json:"dates"`
	Rows    [][]float64 `json:"rows"` // Rows[i][j] = price of Tickers[j] at Dates[i]
}

// NumAssets returns the number of columns
func (p *PriceMatrix) NumAssets() int {
	return len(p.Tickers)
}

// Len returns the number of observations
func (p *PriceMatrix) Len() int {
	return len(p.Rows)
}

// Validate checks the structural invariants of the matrix
func (p *PriceMatrix) Validate() error {
	if len(p.Dates) != len(p.Rows) {
		return fmt.Errorf("%w: %d dates for %d rows", ErrInvalidParameter, len(p.Dates), len(p.Rows))
	}
	for i, row := range p.Rows {
		if len(row) != len(p.Tickers) {
			return fmt.Errorf("%w: row %d has %d values, expected %d",
				ErrInvalidParameter, i, len(row), len(p.Tickers))
		}
		if i > 0 && !p.Dates[i].After(p.Dates[i-1]) {
			return fmt.Errorf("%w: dates not strictly increasing at row %d", ErrInvalidParameter, i)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite price for %s at row %d", ErrInvalidParameter, p.Tickers[j], i)
			}
		}
	}
	return nil
}

// Column returns the price series of asset j
func (p *PriceMatrix) Column(j int) []float64 {
	col := make([]float64, len(p.Rows))
	for i, row := range p.Rows {
		col[i] = row[j]
	}
	return col
}

// ReturnMatrix periodic simple returns derived from a PriceMatrix
// Dates[i] is the observation date of the later price in each pair
type ReturnMatrix struct {
	Tickers []string    `json:"tickers"`
	Dates   []time.Time `json:"dates"`
	Rows    [][]float64 `json:"rows"`
}

// NumAssets returns the number of columns
func (r *ReturnMatrix) NumAssets() int {
	return len(r.Tickers)
}

// Len returns the number of return periods
func (r *ReturnMatrix) Len() int {
	return len(r.Rows)
}

// Frequency periods per year used to annualise statistics
type Frequency float64

const (
	FrequencyDaily   Frequency = 252
	FrequencyWeekly  Frequency = 52
	FrequencyMonthly Frequency = 12
)

// String returns a human label for the frequency
func (f Frequency) String() string {
	switch f {
	case FrequencyDaily:
		return "daily"
	case FrequencyWeekly:
		return "weekly"
	case FrequencyMonthly:
		return "monthly"
	default:
		return fmt.Sprintf("%g/yr", float64(f))
	}
}

// AssetStatistics annualised mean vector and covariance matrix
// ⭐ 불변: 한 번 계산 후 읽기 전용 (시뮬레이션 루프 내 공유)
type AssetStatistics struct {
	Tickers    []string    `json:"tickers"`
	Frequency  Frequency   `json:"frequency"`
	Mean       []float64   `json:"mean"`
	Covariance [][]float64 `json:"covariance"`
}
