// Package horizon projects single-period portfolio metrics to a multi-year holding period.
package horizon

import (
	"math"
	"strconv"
	"strings"

	"github.com/wonny/pfopt/internal/contracts"
	"github.com/wonny/pfopt/internal/scorer"
)

// DefaultYears fallback for unparseable horizon labels
const DefaultYears = 1

// ParseHorizon "1Y" / "3Y" / "5Y" / "10+Y" → years
// 파싱 불가 또는 1 미만 → DefaultYears
func ParseHorizon(label string) int {
	s := strings.ToUpper(strings.TrimSpace(label))
	s = strings.TrimSuffix(s, "Y")
	s = strings.TrimSuffix(s, "+")
	s = strings.TrimSpace(s)

	years, err := strconv.Atoi(s)
	if err != nil || years < 1 {
		return DefaultYears
	}
	return years
}

// ScaleToHorizon compounds return and scales volatility by sqrt(h).
//
//	return_h     = (1 + return)^h - 1
//	volatility_h = volatility * sqrt(h)
//	sharpe_h     = (return_h - rf*h) / volatility_h, 0 when volatility_h is 0
func ScaleToHorizon(records []contracts.PortfolioRecord, h int, riskFreeRate float64) []contracts.HorizonScaledRecord {
	if h < 1 {
		h = DefaultYears
	}
	years := float64(h)
	sqrtH := math.Sqrt(years)

	out := make([]contracts.HorizonScaledRecord, len(records))
	for i, rec := range records {
		ret := math.Pow(1+rec.Return, years) - 1
		vol := rec.Volatility * sqrtH

		out[i] = contracts.HorizonScaledRecord{
			Trial:      rec.Trial,
			Return:     ret,
			Volatility: vol,
			Sharpe:     scorer.SharpeRatio(ret, vol, riskFreeRate*years),
			Weights:    rec.Weights,
		}
	}
	return out
}
