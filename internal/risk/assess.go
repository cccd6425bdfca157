package risk

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/wonny/pfopt/internal/contracts"
)

// PortfolioReturns per-period returns of the weighted portfolio
func PortfolioReturns(r contracts.ReturnMatrix, w contracts.WeightVector) ([]float64, error) {
	if len(w) != r.NumAssets() {
		return nil, fmt.Errorf("%w: %d weights for %d assets",
			contracts.ErrInvalidParameter, len(w), r.NumAssets())
	}

	out := make([]float64, r.Len())
	for i, row := range r.Rows {
		out[i] = floats.Dot(row, w)
	}
	return out, nil
}

// MaxDrawdown largest peak-to-trough decline of compounded returns
func MaxDrawdown(returns []float64) float64 {
	wealth, peak, maxDD := 1.0, 1.0, 0.0
	for _, r := range returns {
		wealth *= 1 + r
		if wealth > peak {
			peak = wealth
		}
		if dd := (peak - wealth) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// Assess historical and parametric tail risk of w over r
func Assess(r contracts.ReturnMatrix, w contracts.WeightVector) (Metrics, error) {
	rets, err := PortfolioReturns(r, w)
	if err != nil {
		return Metrics{}, err
	}
	if len(rets) == 0 {
		return Metrics{}, fmt.Errorf("%w: no returns to assess", contracts.ErrInsufficientData)
	}

	mean, std := stat.MeanStdDev(rets, nil)
	if math.IsNaN(std) {
		std = 0 // 관측치 1개
	}

	return Metrics{
		Observations: len(rets),
		Historical95: CalculateVaR(rets, Confidence95),
		Historical99: CalculateVaR(rets, Confidence99),
		Parametric95: CalculateParametricVaR(mean, std, Confidence95),
		MaxDrawdown:  MaxDrawdown(rets),
		WorstPeriod:  floats.Min(rets),
	}, nil
}
