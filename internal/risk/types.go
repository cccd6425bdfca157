// Package risk measures the historical tail risk of a weight vector over the
// observed return matrix.
package risk

// VaR 부호 규약
// ⭐ SSOT: Loss를 양수로 표현 (VaR=0.05 → 5% 손실 가능)

// Confidence levels reported in Metrics
const (
	Confidence95 = 0.95
	Confidence99 = 0.99
)

// VaRResult VaR 계산 결과
// - VaR=0.05 → 95% 신뢰수준에서 최대 5% 손실 가능
// - CVaR=0.07 → 5% tail에서 평균 7% 손실 예상
type VaRResult struct {
	Confidence float64 `json:"confidence"`
	VaR        float64 `json:"var"`  // Value at Risk (손실, 양수)
	CVaR       float64 `json:"cvar"` // Expected Shortfall (손실, 양수)
}

// Metrics per-period risk of a portfolio (period = data frequency)
type Metrics struct {
	Observations int       `json:"observations"`
	Historical95 VaRResult `json:"historical_95"`
	Historical99 VaRResult `json:"historical_99"`
	Parametric95 VaRResult `json:"parametric_95"`
	MaxDrawdown  float64   `json:"max_drawdown"` // 최고점 대비 최대 하락 (양수)
	WorstPeriod  float64   `json:"worst_period"` // 최악 단일 기간 수익률
}
