// Package returns turns aligned price history into periodic returns and
// annualised asset statistics.
package returns

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/pfopt/internal/contracts"
)

// ComputeReturns 가격 → 기간 수익률 (첫 행 제거)
// row i = (p[i] - p[i-1]) / p[i-1]
func ComputeReturns(prices contracts.PriceMatrix) (contracts.ReturnMatrix, error) {
	if prices.Len() < 2 {
		return contracts.ReturnMatrix{}, fmt.Errorf("%w: need at least 2 price observations, got %d",
			contracts.ErrInsufficientData, prices.Len())
	}
	if err := prices.Validate(); err != nil {
		return contracts.ReturnMatrix{}, err
	}

	rows := make([][]float64, prices.Len()-1)
	for i := 1; i < prices.Len(); i++ {
		prev, cur := prices.Rows[i-1], prices.Rows[i]
		row := make([]float64, len(cur))
		for j := range cur {
			if prev[j] == 0 {
				return contracts.ReturnMatrix{}, fmt.Errorf("%w: zero price for %s at %s",
					contracts.ErrInvalidParameter, prices.Tickers[j], prices.Dates[i-1].Format("2006-01-02"))
			}
			row[j] = (cur[j] - prev[j]) / prev[j]
		}
		rows[i-1] = row
	}

	dates := make([]time.Time, len(prices.Dates)-1)
	copy(dates, prices.Dates[1:])

	tickers := make([]string, len(prices.Tickers))
	copy(tickers, prices.Tickers)

	return contracts.ReturnMatrix{
		Tickers: tickers,
		Dates:   dates,
		Rows:    rows,
	}, nil
}

// InferFrequency classifies the sampling step of the timestamps
// median step (days): <=2 daily, 5-8 weekly, 28-31 monthly, otherwise daily
func InferFrequency(timestamps []time.Time) contracts.Frequency {
	if len(timestamps) < 2 {
		return contracts.FrequencyDaily
	}

	steps := make([]float64, 0, len(timestamps)-1)
	for i := 1; i < len(timestamps); i++ {
		steps = append(steps, timestamps[i].Sub(timestamps[i-1]).Hours()/24)
	}
	sort.Float64s(steps)

	var step float64
	mid := len(steps) / 2
	if len(steps)%2 == 1 {
		step = steps[mid]
	} else {
		step = (steps[mid-1] + steps[mid]) / 2
	}

	switch {
	case step <= 2:
		return contracts.FrequencyDaily
	case step >= 5 && step <= 8:
		return contracts.FrequencyWeekly
	case step >= 28 && step <= 31:
		return contracts.FrequencyMonthly
	default:
		return contracts.FrequencyDaily
	}
}

// ComputeStatistics 연율화 평균/공분산 (표본 공분산, N-1)
func ComputeStatistics(r contracts.ReturnMatrix, freq contracts.Frequency) (contracts.AssetStatistics, error) {
	n := r.NumAssets()
	if n == 0 {
		return contracts.AssetStatistics{}, fmt.Errorf("%w: no assets", contracts.ErrInvalidParameter)
	}
	if r.Len() < 2 {
		return contracts.AssetStatistics{}, fmt.Errorf("%w: need at least 2 return periods, got %d",
			contracts.ErrInsufficientData, r.Len())
	}
	if freq <= 0 || math.IsNaN(float64(freq)) {
		freq = contracts.FrequencyDaily
	}

	data := mat.NewDense(r.Len(), n, nil)
	for i, row := range r.Rows {
		if len(row) != n {
			return contracts.AssetStatistics{}, fmt.Errorf("%w: return row %d has %d values, expected %d",
				contracts.ErrInvalidParameter, i, len(row), n)
		}
		data.SetRow(i, row)
	}

	mean := make([]float64, n)
	for j := 0; j < n; j++ {
		mean[j] = stat.Mean(mat.Col(nil, j, data), nil) * float64(freq)
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, data, nil)
	cov.ScaleSym(float64(freq), &cov)

	covRows := make([][]float64, n)
	for i := 0; i < n; i++ {
		covRows[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			covRows[i][j] = cov.At(i, j)
		}
	}

	tickers := make([]string, n)
	copy(tickers, r.Tickers)

	return contracts.AssetStatistics{
		Tickers:    tickers,
		Frequency:  freq,
		Mean:       mean,
		Covariance: covRows,
	}, nil
}
