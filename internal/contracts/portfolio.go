package contracts

import "math"

// WeightTolerance absolute tolerance for the sum-to-one invariant
const WeightTolerance = 1e-9

// WeightVector one weight per asset, non-negative, summing to 1
type WeightVector []float64

// Sum returns the total weight
func (w WeightVector) Sum() float64 {
	var sum float64
	for _, v := range w {
		sum += v
	}
	return sum
}

// IsValid checks non-negativity and the sum-to-one invariant
func (w WeightVector) IsValid() bool {
	if len(w) == 0 {
		return false
	}
	for _, v := range w {
		if v < 0 || math.IsNaN(v) {
			return false
		}
	}
	return math.Abs(w.Sum()-1.0) <= WeightTolerance
}

// ByTicker maps weights onto their tickers
func (w WeightVector) ByTicker(tickers []string) map[string]float64 {
	out := make(map[string]float64, len(tickers))
	for i, t := range tickers {
		if i < len(w) {
			out[t] = w[i]
		}
	}
	return out
}

// PortfolioRecord one simulated trial
type PortfolioRecord struct {
	Trial      int          `json:"trial"`
	Return     float64      `json:"return"`
	Volatility float64      `json:"volatility"`
	Sharpe     float64      `json:"sharpe"`
	Weights    WeightVector `json:"weights"`
}

// SimulationResult all trials of a run in trial order
// ⭐ SSOT: 생성 후 불변, horizon/selection은 읽기 전용으로 사용
type SimulationResult struct {
	Tickers       []string          `json:"tickers"`
	Frequency     Frequency         `json:"frequency"`
	RiskFreeRate  float64           `json:"risk_free_rate"`
	Seed          uint64            `json:"seed"` // 실제 사용된 시드 (재현용)
	Statistics    AssetStatistics   `json:"statistics"`
	Records       []PortfolioRecord `json:"records"`
	MaxSharpe     PortfolioRecord   `json:"max_sharpe"`
	MinVolatility PortfolioRecord   `json:"min_volatility"`
}

// Len returns the number of trials
func (r *SimulationResult) Len() int {
	return len(r.Records)
}

// HorizonScaledRecord a PortfolioRecord projected to an H-year horizon
type HorizonScaledRecord struct {
	Trial      int          `json:"trial"` // 원본 PortfolioRecord.Trial
	Return     float64      `json:"return_h"`
	Volatility float64      `json:"volatility_h"`
	Sharpe     float64      `json:"sharpe_h"`
	Weights    WeightVector `json:"weights"`
}
