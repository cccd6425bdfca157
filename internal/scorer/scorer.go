// Package scorer computes annualised return, volatility and Sharpe ratio
// of a weight vector against asset statistics.
package scorer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/wonny/pfopt/internal/contracts"
)

// Score metrics of one weight vector
type Score struct {
	Return     float64 `json:"return"`
	Volatility float64 `json:"volatility"`
	Sharpe     float64 `json:"sharpe"`
}

// Scorer holds the statistics as gonum vectors so repeated scoring
// does not rebuild them per trial.
type Scorer struct {
	n    int
	mean *mat.VecDense
	cov  *mat.SymDense
}

// New builds a Scorer from annualised statistics
func New(stats contracts.AssetStatistics) (*Scorer, error) {
	n := len(stats.Mean)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty mean vector", contracts.ErrInvalidParameter)
	}
	if len(stats.Covariance) != n {
		return nil, fmt.Errorf("%w: covariance has %d rows, expected %d",
			contracts.ErrInvalidParameter, len(stats.Covariance), n)
	}

	cov := mat.NewSymDense(n, nil)
	for i, row := range stats.Covariance {
		if len(row) != n {
			return nil, fmt.Errorf("%w: covariance row %d has %d values, expected %d",
				contracts.ErrInvalidParameter, i, len(row), n)
		}
		for j := i; j < n; j++ {
			cov.SetSym(i, j, row[j])
		}
	}

	mean := make([]float64, n)
	copy(mean, stats.Mean)

	return &Scorer{
		n:    n,
		mean: mat.NewVecDense(n, mean),
		cov:  cov,
	}, nil
}

// Score scores w against the scorer's statistics
func (s *Scorer) Score(w contracts.WeightVector, riskFreeRate float64) (Score, error) {
	if len(w) != s.n {
		return Score{}, fmt.Errorf("%w: %d weights for %d assets",
			contracts.ErrInvalidParameter, len(w), s.n)
	}

	wv := mat.NewVecDense(s.n, []float64(w))
	ret := mat.Dot(wv, s.mean)
	variance := mat.Inner(wv, s.cov, wv)

	return fromMoments(ret, variance, riskFreeRate), nil
}

// SharpeRatio (ret - rf) / vol, 0 when vol is not positive
func SharpeRatio(ret, vol, riskFreeRate float64) float64 {
	if vol > 0 {
		return (ret - riskFreeRate) / vol
	}
	return 0.0
}

func fromMoments(ret, variance, riskFreeRate float64) Score {
	// 부동소수 오차로 인한 음수 분산 → 0
	if variance < 0 {
		variance = 0
	}
	vol := math.Sqrt(variance)

	return Score{
		Return:     ret,
		Volatility: vol,
		Sharpe:     SharpeRatio(ret, vol, riskFreeRate),
	}
}
